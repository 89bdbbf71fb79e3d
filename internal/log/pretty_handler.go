package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset   = "\033[0m"
	ansiFaint   = "\033[2m"
	ansiRed     = "\033[31m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
)

// prettyHandler renders one human-readable line per record for local
// development:
//
//	10:30:45 INFO  server started port=8080
//
// Production deployments should run with LOG_FORMAT=json instead.
type prettyHandler struct {
	out   io.Writer
	mu    *sync.Mutex
	level slog.Leveler

	// preset holds attributes from WithAttrs, rendered once at handler
	// construction rather than on every record.
	preset string

	// prefix is the dotted group path applied to subsequent keys.
	prefix string
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	level := slog.Leveler(slog.LevelInfo)
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &prettyHandler{out: w, mu: &sync.Mutex{}, level: level}
}

func (h *prettyHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.Grow(160)
	b.WriteString(ansiFaint)
	b.WriteString(ts.Format(time.TimeOnly))
	b.WriteString(ansiReset)
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.preset)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.preset)
	for _, a := range attrs {
		writeAttr(&b, h.prefix, a)
	}
	clone := *h
	clone.preset = b.String()
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// levelTag returns the coloured, width-aligned level label.
func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return ansiRed + "ERROR" + ansiReset
	case l >= slog.LevelWarn:
		return ansiYellow + "WARN " + ansiReset
	case l >= slog.LevelInfo:
		return ansiBlue + "INFO " + ansiReset
	default:
		return ansiMagenta + "DEBUG" + ansiReset
	}
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, p, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(ansiFaint)
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(ansiReset)
	b.WriteString(renderValue(a.Key, a.Value))
}

// renderValue quotes strings that would blur the key=value structure and
// tints error values so failures stand out when scanning output.
func renderValue(key string, v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && strings.IndexFunc(s, needsQuoting) >= 0 {
		s = strconv.Quote(s)
	}
	if key == "error" {
		return ansiRed + s + ansiReset
	}
	return s
}

func needsQuoting(r rune) bool {
	return r == ' ' || r == '"' || r == '\\' || r < ' '
}
