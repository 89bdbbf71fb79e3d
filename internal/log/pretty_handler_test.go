package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func handleRecord(t *testing.T, h slog.Handler, r slog.Record) string {
	t.Helper()
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	ph, ok := h.(*prettyHandler)
	if !ok {
		t.Fatalf("handler is %T", h)
	}
	buf, ok := ph.out.(*bytes.Buffer)
	if !ok {
		t.Fatalf("writer is %T", ph.out)
	}
	return buf.String()
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	h := newPrettyHandler(&buf, nil)

	r := slog.NewRecord(time.Date(2026, 3, 9, 14, 2, 7, 0, time.UTC), slog.LevelInfo, "server started", 0)
	r.AddAttrs(slog.Int("port", 8080))
	line := handleRecord(t, h, r)

	for _, want := range []string{"14:02:07", "INFO", "server started", "port=", "8080"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %q", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("line not newline terminated: %q", line)
	}
}

func TestPrettyHandler_LevelTags(t *testing.T) {
	tests := []struct {
		level slog.Level
		tag   string
		color string
	}{
		{slog.LevelDebug, "DEBUG", ansiMagenta},
		{slog.LevelInfo, "INFO", ansiBlue},
		{slog.LevelWarn, "WARN", ansiYellow},
		{slog.LevelError, "ERROR", ansiRed},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			var buf bytes.Buffer
			h := newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			line := handleRecord(t, h, slog.NewRecord(time.Now(), tt.level, "msg", 0))
			if !strings.Contains(line, tt.color+tt.tag) {
				t.Errorf("want %q tag in %q", tt.tag, line)
			}
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := newPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	for level, want := range map[slog.Level]bool{
		slog.LevelDebug: false,
		slog.LevelInfo:  false,
		slog.LevelWarn:  true,
		slog.LevelError: true,
	} {
		if got := h.Enabled(context.Background(), level); got != want {
			t.Errorf("Enabled(%v) = %v, want %v", level, got, want)
		}
	}
}

func TestPrettyHandler_DefaultsToInfo(t *testing.T) {
	h := newPrettyHandler(&bytes.Buffer{}, nil)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be off without explicit options")
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be on without explicit options")
	}
}

func TestPrettyHandler_DropsBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")

	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Errorf("want 2 lines, got %d: %q", got, buf.String())
	}
}

func TestPrettyHandler_WithAttrsPreRendered(t *testing.T) {
	var buf bytes.Buffer
	base := newPrettyHandler(&buf, nil)

	h := base.WithAttrs([]slog.Attr{slog.String("component", "api")}).(*prettyHandler)
	if !strings.Contains(h.preset, "component=") {
		t.Fatalf("WithAttrs did not pre-render, preset = %q", h.preset)
	}

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "request", 0)
	r.AddAttrs(slog.Int("status", 200))
	line := handleRecord(t, h, r)

	if !strings.Contains(line, "component=") || !strings.Contains(line, "status=") {
		t.Errorf("line missing attrs: %q", line)
	}
}

func TestPrettyHandler_WithGroupPrefixesKeys(t *testing.T) {
	var buf bytes.Buffer
	h := newPrettyHandler(&buf, nil).WithGroup("http")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "request", 0)
	r.AddAttrs(slog.String("method", "GET"))
	line := handleRecord(t, h, r)

	if !strings.Contains(line, "http.method=") {
		t.Errorf("want http.method in %q", line)
	}
}

func TestPrettyHandler_EmptyGroupIsNoop(t *testing.T) {
	h := newPrettyHandler(&bytes.Buffer{}, nil)
	if h.WithGroup("") != slog.Handler(h) {
		t.Error("empty group should return the handler unchanged")
	}
}

func TestPrettyHandler_InlineGroupAttr(t *testing.T) {
	var buf bytes.Buffer
	h := newPrettyHandler(&buf, nil)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	r.AddAttrs(slog.Group("cache", slog.Int("hits", 3), slog.Int("misses", 1)))
	line := handleRecord(t, h, r)

	if !strings.Contains(line, "cache.hits=") || !strings.Contains(line, "cache.misses=") {
		t.Errorf("want dotted group keys in %q", line)
	}
}

func TestPrettyHandler_QuotesAwkwardStrings(t *testing.T) {
	var buf bytes.Buffer
	h := newPrettyHandler(&buf, nil)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	r.AddAttrs(
		slog.String("subreddit", "SaaS"),
		slog.String("title", "why is invoicing hard"),
	)
	line := handleRecord(t, h, r)

	if !strings.Contains(line, "subreddit="+ansiReset+"SaaS") {
		t.Errorf("plain value should stay unquoted: %q", line)
	}
	if !strings.Contains(line, `"why is invoicing hard"`) {
		t.Errorf("spaced value should be quoted: %q", line)
	}
}

func TestPrettyHandler_TintsErrorValues(t *testing.T) {
	var buf bytes.Buffer
	h := newPrettyHandler(&buf, nil)

	r := slog.NewRecord(time.Now(), slog.LevelWarn, "fetch failed", 0)
	r.AddAttrs(slog.String("error", "timeout"))
	line := handleRecord(t, h, r)

	if !strings.Contains(line, ansiRed+"timeout"+ansiReset) {
		t.Errorf("error value should be tinted red: %q", line)
	}
}
