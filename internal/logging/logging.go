package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

const timeLayout = "2006/01/02 15:04:05"

// textHandler writes lines like:
// 2025/09/06 21:11:44 level=WARN msg="refresh failed" method=POST endpoint=/auth/refresh-token status=401
type textHandler struct {
	out      io.Writer
	mu       *sync.Mutex
	minLevel slog.Leveler
	attrs    []slog.Attr
	group    string
}

func (h *textHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.minLevel.Level()
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '"' || r == '=' || r == '\\' {
			return true
		}
	}
	return false
}

func appendKeyVal(sb *strings.Builder, key string, val slog.Value) {
	sb.WriteByte(' ')
	sb.WriteString(key)
	sb.WriteByte('=')
	var s string
	switch val.Kind() {
	case slog.KindTime:
		s = val.Time().Format(time.RFC3339)
	case slog.KindDuration:
		s = val.Duration().String()
	default:
		s = fmt.Sprint(val.Any())
	}
	if needsQuoting(s) {
		s = fmt.Sprintf("%q", s)
	}
	sb.WriteString(s)
}

// Priority keys are printed first in this order if present.
var priority = []string{"method", "endpoint", "status", "request_id"}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var sb strings.Builder
	sb.Grow(256)
	sb.WriteString(ts.Format(timeLayout))
	sb.WriteString(" level=")
	sb.WriteString(r.Level.String())
	if r.Message != "" {
		sb.WriteString(" msg=")
		sb.WriteString(fmt.Sprintf("%q", r.Message))
	}

	values := make(map[string]slog.Value, len(h.attrs)+r.NumAttrs())
	var add func(prefix string, a slog.Attr)
	add = func(prefix string, a slog.Attr) {
		if a.Key == "" {
			return
		}
		key := prefix + a.Key
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			for _, ga := range v.Group() {
				add(key+".", ga)
			}
			return
		}
		values[key] = v
	}
	for _, a := range h.attrs {
		add("", a)
	}
	prefix := ""
	if h.group != "" {
		prefix = h.group + "."
	}
	r.Attrs(func(a slog.Attr) bool {
		add(prefix, a)
		return true
	})

	for _, k := range priority {
		if v, ok := values[k]; ok {
			appendKeyVal(&sb, k, v)
			delete(values, k)
		}
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		appendKeyVal(&sb, k, values[k])
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		prefixed = append(prefixed, a)
	}
	return &textHandler{out: h.out, mu: h.mu, minLevel: h.minLevel, attrs: prefixed, group: h.group}
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &textHandler{out: h.out, mu: h.mu, minLevel: h.minLevel, attrs: h.attrs, group: group}
}

// ParseLevel maps "debug", "info", "warn", "error" (case-insensitive) to a level;
// anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w, as JSON or as timestamp-prefixed key=value text.
func New(w io.Writer, level string, json bool) *slog.Logger {
	lvl := ParseLevel(level)
	if json {
		replace := func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				return slog.String(slog.TimeKey, a.Value.Time().Format(timeLayout))
			}
			return a
		}
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, ReplaceAttr: replace}))
	}
	return slog.New(&textHandler{out: w, mu: &sync.Mutex{}, minLevel: lvl})
}

// Setup configures slog's default logger. Logs go to stderr so command output on
// stdout stays machine-readable.
func Setup(level string, json bool) *slog.Logger {
	logger := New(os.Stderr, level, json)
	slog.SetDefault(logger)
	return logger
}
