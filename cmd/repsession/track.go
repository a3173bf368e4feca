package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/claude/repsession/internal/models"
	"github.com/claude/repsession/internal/summary"
	"github.com/claude/repsession/internal/tracker"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run the current workout session interactively",
	Long: `Resolves today's session and runs it in the terminal.
Type "help" at the prompt for the list of commands. Quitting keeps progress
on disk; running track again resumes where you left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := newConsole(os.Stdin, cmd.OutOrStdout())
		sess, err := rt.openSession(ctx, c.onEvent)
		if err != nil {
			return err
		}
		defer sess.Close()

		c.tr = sess.Tracker
		if sess.Resumed {
			c.printf("Resumed saved progress.\n")
		}
		return c.run(ctx)
	},
}

// console is the line-oriented front end of a tracker.
type console struct {
	tr  *tracker.Tracker
	in  *bufio.Scanner
	mu  sync.Mutex
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewScanner(in), out: out}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// onEvent runs on timer goroutines.
func (c *console) onEvent(e tracker.Event) {
	switch e.Kind {
	case tracker.EventPhase:
		switch e.Phase {
		case tracker.PhaseRest:
			c.printf("Rest %s. Type \"skip\" to continue early.\n", summary.FormatDuration(e.RestRemaining))
		case tracker.PhaseWorkout:
			c.printf("Rest over.\n")
		}
	case tracker.EventRest:
		if e.RestRemaining <= 3 || e.RestRemaining%30 == 0 {
			c.printf("  rest %s\n", summary.FormatDuration(e.RestRemaining))
		}
	}
}

var errQuit = errors.New("quit")

// run reads commands until the session ends, input runs out or ctx is done.
func (c *console) run(ctx context.Context) error {
	c.show()
	lines := make(chan string)
	go func() {
		defer close(lines)
		for c.in.Scan() {
			lines <- c.in.Text()
		}
	}()

	for {
		c.printf("> ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			c.printf("\nProgress saved.\n")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			return nil
		}

		err := c.exec(ctx, line, lines)
		switch {
		case errors.Is(err, errQuit):
			c.printf("Progress saved.\n")
			return nil
		case err != nil:
			c.printf("error: %v\n", err)
		}

		st := c.tr.State()
		if st.Phase == tracker.PhaseSummary || st.Closed {
			return nil
		}
	}
}

func (c *console) exec(ctx context.Context, line string, lines <-chan string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		c.help()
	case "show", "s":
		c.show()
	case "next", "n":
		_, err := c.tr.Next()
		if err != nil {
			return err
		}
		c.show()
	case "prev", "p":
		_, err := c.tr.Prev()
		if err != nil {
			return err
		}
		c.show()
	case "go":
		i, err := intArg(args, 0)
		if err != nil {
			return err
		}
		if err := c.tr.Jump(i - 1); err != nil {
			return err
		}
		c.show()
	case "weight", "w", "reps", "r":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <set> <value>", cmd)
		}
		ex, idx, err := c.target(args)
		if err != nil {
			return err
		}
		if cmd[0] == 'w' {
			err = c.tr.UpdateWeight(ctx, ex.ID, idx, args[1])
		} else {
			err = c.tr.UpdateReps(ctx, ex.ID, idx, args[1])
		}
		if err != nil {
			return err
		}
		c.show()
	case "done", "d":
		ex, idx, err := c.target(args)
		if err != nil {
			return err
		}
		return c.tr.CompleteSet(ctx, ex.ID, idx)
	case "add", "a":
		ex, ok := c.tr.State().CurrentExercise()
		if !ok {
			return tracker.ErrIndex
		}
		if _, err := c.tr.AddSet(ctx, ex.ID); err != nil {
			return err
		}
		c.show()
	case "skip":
		if !c.tr.SkipRest() {
			c.printf("Not resting.\n")
		}
	case "finish", "f":
		sum, err := c.tr.Finish(ctx)
		if err != nil {
			return err
		}
		c.printSummary(sum)
	case "abandon":
		if !c.confirm(ctx, "Abandon this workout? Progress will be discarded. (y/n): ", lines) {
			c.printf("Not abandoned.\n")
			return nil
		}
		if err := c.tr.Abandon(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		c.printf("Workout abandoned.\n")
	case "quit", "q", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	return nil
}

// confirm reads a y/n answer. An interrupt counts as no.
func (c *console) confirm(ctx context.Context, prompt string, lines <-chan string) bool {
	c.printf("%s", prompt)
	select {
	case <-ctx.Done():
		c.printf("\n")
		return false
	case answer, ok := <-lines:
		return ok && strings.EqualFold(strings.TrimSpace(answer), "y")
	}
}

// target resolves a 1-based set number on the current exercise.
func (c *console) target(args []string) (models.Exercise, int, error) {
	n, err := intArg(args, 0)
	if err != nil {
		return models.Exercise{}, 0, err
	}
	ex, ok := c.tr.State().CurrentExercise()
	if !ok {
		return models.Exercise{}, 0, tracker.ErrIndex
	}
	return ex, n - 1, nil
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing number")
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", args[i])
	}
	return n, nil
}

func (c *console) show() {
	st := c.tr.State()
	ex, ok := st.CurrentExercise()
	if !ok {
		c.printf("No exercises today.\n")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  [%s]  %s\n", st.Session.DisplayDayName(), st.Elapsed, st.Phase)
	fmt.Fprintf(&b, "Exercise %d/%d: %s  (%d x %d, rest %ds)\n",
		st.CurrentIndex+1, len(st.Exercises), ex.Name, ex.TargetSets, ex.TargetReps, ex.RestSeconds)
	for _, s := range st.Sets[ex.ID] {
		mark := " "
		if s.Done {
			mark = "x"
		}
		weight := s.Weight
		if weight == "" {
			weight = "-"
		}
		fmt.Fprintf(&b, "  [%s] set %d: %s kg x %s\n", mark, s.SetIdx+1, weight, s.Reps)
	}
	c.printf("%s", b.String())
}

func (c *console) printSummary(s summary.Summary) {
	c.printf("Workout complete.\n  duration   %s\n  exercises  %s\n  sets       %d\n  volume     %.1f kg\n",
		s.Duration, s.ExercisesRatio(), s.SetsLogged, s.TotalVolume)
}

func (c *console) help() {
	c.printf(`Commands:
  show | s              show the current exercise
  next | n, prev | p    move between exercises
  go <n>                jump to exercise n
  weight | w <set> <v>  set the weight of a set
  reps | r <set> <v>    set the reps of a set
  done | d <set>        mark a set done and start resting
  add | a               add a set to the current exercise
  skip                  end the rest early
  finish | f            finish the workout
  abandon [reason]      abandon the workout (asks for confirmation)
  quit | q              leave; progress is kept
`)
}
