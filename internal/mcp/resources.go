package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

var resCurrentSession = mcp.NewResource(
	"repsession://session",
	"Current Session",
	mcp.WithResourceDescription("The live workout session state"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) currentSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	st, err := h.sess.GetState(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
