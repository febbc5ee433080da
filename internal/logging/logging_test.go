package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"Warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithWriter_Formats(t *testing.T) {
	if _, err := NewWithWriter("xml", slog.LevelInfo, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unsupported format")
	}

	var buf bytes.Buffer
	l, err := NewWithWriter("json", slog.LevelInfo, &buf)
	if err != nil {
		t.Fatal(err)
	}
	l.Debug(context.Background(), "hidden")
	l.With("provider", "os1").Info(context.Background(), "hello", "n", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "hello" || rec["provider"] != "os1" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l, _ := NewWithWriter("text", slog.LevelInfo, &buf)
	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info(ctx, "marker")
	if !strings.Contains(buf.String(), "marker") {
		t.Errorf("logger from context not used: %q", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Error("default logger should not be nil")
	}
}

func TestSpan(t *testing.T) {
	var buf bytes.Buffer
	l, _ := NewWithWriter("text", slog.LevelInfo, &buf)
	ctx := WithLogger(context.Background(), l)

	_, done := Span(ctx, "fleet", "StopAll")
	done(nil)
	_, done = Span(ctx, "fleet", "StopAll")
	done(errors.New("a very long error message that should be truncated"))

	out := buf.String()
	for _, want := range []string{
		"FLEET:StopAll:START",
		"FLEET:StopAll:END:OK",
		"FLEET:StopAll:END:FAILED",
		"component=fleet.StopAll",
		"a very long error message that s...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSpan_NestedReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	l, _ := NewWithWriter("json", slog.LevelInfo, &buf)
	ctx := WithLogger(context.Background(), l)

	ctx, outer := Span(ctx, "fleet", "StopAll")
	ctx = With(ctx, "provider", "os1")
	inner, done := Span(ctx, "meta", "CreateAdminDriver")
	FromContext(inner).Info(inner, "inside")
	done(nil)
	FromContext(ctx).Info(ctx, "after")
	outer(nil)

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if n := strings.Count(line, `"component":`); n != 1 {
			t.Errorf("line has %d component keys: %s", n, line)
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatal(err)
		}
		want := "fleet.StopAll"
		if strings.HasPrefix(rec["msg"].(string), "META:") || rec["msg"] == "inside" {
			want = "meta.CreateAdminDriver"
		}
		if rec["component"] != want {
			t.Errorf("%v: component = %v, want %s", rec["msg"], rec["component"], want)
		}
		if strings.HasPrefix(rec["msg"].(string), "FLEET:") {
			continue
		}
		if rec["provider"] != "os1" {
			t.Errorf("%v: provider = %v, want os1", rec["msg"], rec["provider"])
		}
	}
}
