// Package progress persists in-progress set logs locally so an interrupted
// workout session can be resumed.
package progress

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/repsession/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store keeps one progress snapshot per session in a local SQLite database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// SnapshotInfo describes a stored snapshot without decoding it.
type SnapshotInfo struct {
	SessionID models.ID
	Version   int
	UpdatedAt time.Time
}

// Open opens (or creates) the progress database at dir/progress.db and
// applies pending migrations.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath, err := filepath.Abs(filepath.Join(dir, "progress.db"))
	if err != nil {
		return nil, fmt.Errorf("resolving state db path: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	// Single writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	return &Store{db: db, log: log, now: time.Now}, nil
}

func runMigrations(dbPath string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+filepath.ToSlash(dbPath))
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the saved progress for a session. The bool is false when no
// snapshot exists or the stored one cannot be used; unusable snapshots are
// logged and otherwise treated as absent. Only database failures are errors.
func (s *Store) Load(ctx context.Context, sessionID models.ID) (models.Progress, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM progress_snapshots WHERE key = ?`,
		Key(sessionID),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading snapshot: %w", err)
	}

	p, err := decodeSnapshot(sessionID, []byte(payload))
	if err != nil {
		s.log.Warn("ignoring stored progress", "session_id", sessionID, "error", err)
		return nil, false, nil
	}
	return p, true, nil
}

// Save overwrites the whole snapshot for a session.
func (s *Store) Save(ctx context.Context, sessionID models.ID, p models.Progress) error {
	now := s.now()
	payload, err := encodeSnapshot(sessionID, p, now)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO progress_snapshots (key, session_id, version, payload, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		Key(sessionID), sessionID.String(), SnapshotVersion, string(payload), now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot for a session. Clearing a missing snapshot is not an error.
func (s *Store) Clear(ctx context.Context, sessionID models.ID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM progress_snapshots WHERE key = ?`, Key(sessionID),
	); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}

// List returns all stored snapshots, most recently updated first.
func (s *Store) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, version, updated_at FROM progress_snapshots ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var result []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var id string
		if err := rows.Scan(&id, &info.Version, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		info.SessionID = models.ID(id)
		result = append(result, info)
	}
	return result, rows.Err()
}
