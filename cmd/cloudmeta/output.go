package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kompox/cloudmeta/internal/logging"
)

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONLines writes one compact JSON object per line.
func writeJSONLines[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// commandContext applies the --timeout flag to the command context.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := 10 * time.Minute
	if f := findFlag(cmd, "timeout"); f != nil {
		if d, err := time.ParseDuration(f.Value.String()); err == nil && d > 0 {
			timeout = d
		}
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

// withCmdRunLogger wraps a command run in a CMD span and tags the logger with
// the provider it acts on.
//
//	ctx, cleanup := withCmdRunLogger(ctx, "stop-all", provider)
//	defer func() { cleanup(err) }()
func withCmdRunLogger(ctx context.Context, operation, provider string) (context.Context, func(err error)) {
	if provider != "" {
		ctx = logging.With(ctx, "provider", provider)
	}
	return logging.Span(ctx, "cmd", operation)
}
