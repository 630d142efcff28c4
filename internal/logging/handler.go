package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/mattn/go-isatty"
)

// handler is a slog.Handler that writes a compact, logfmt-style line per
// record: "LVL prefix: message  key=value key=value".
//
// Level labels are colored when the destination looks like a terminal.
type handler struct {
	lvl    slog.Leveler
	color  bool
	outMu  *sync.Mutex
	out    io.Writer
	attrs  []byte
	prefix string
}

var _ slog.Handler = (*handler)(nil)

func newHandler(out io.Writer) *handler {
	var isTTY bool
	if f, ok := out.(interface{ Fd() uintptr }); ok {
		isTTY = isatty.IsTerminal(f.Fd())
	}
	return &handler{
		lvl:   LevelInfo,
		color: isTTY,
		outMu: new(sync.Mutex),
		out:   out,
	}
}

func (h *handler) Enabled(_ context.Context, lvl slog.Level) bool {
	return h.lvl.Level() <= lvl
}

var levelColor = map[Level]string{
	LevelDebug: "\x1b[90m",
	LevelInfo:  "\x1b[36m",
	LevelWarn:  "\x1b[33m",
	LevelError: "\x1b[31m",
	LevelFatal: "\x1b[1;31m",
}

func (h *handler) Handle(_ context.Context, rec slog.Record) error {
	var buf bytes.Buffer

	lvl := Level(rec.Level)
	if h.color {
		buf.WriteString(levelColor[lvl])
		buf.WriteString(lvl.String())
		buf.WriteString("\x1b[0m")
	} else {
		buf.WriteString(lvl.String())
	}
	buf.WriteByte(' ')

	if h.prefix != "" {
		buf.WriteString(h.prefix)
		buf.WriteString(": ")
	}
	buf.WriteString(rec.Message)

	if len(h.attrs) > 0 || rec.NumAttrs() > 0 {
		buf.WriteString("  ")
		buf.Write(h.attrs)
	}

	first := len(h.attrs) == 0
	rec.Attrs(func(attr slog.Attr) bool {
		if !first {
			buf.WriteByte(' ')
		}
		first = false
		writeAttr(&buf, attr)
		return true
	})
	buf.WriteByte('\n')

	h.outMu.Lock()
	defer h.outMu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func writeAttr(buf *bytes.Buffer, attr slog.Attr) {
	buf.WriteString(attr.Key)
	buf.WriteByte('=')
	v := attr.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if needsQuote(s) {
			buf.WriteString(strconv.Quote(s))
		} else {
			buf.WriteString(s)
		}
	default:
		buf.WriteString(v.String())
	}
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '"' {
			return true
		}
	}
	return false
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer
	buf.Write(h.attrs)
	for _, attr := range attrs {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		writeAttr(&buf, attr)
	}

	newH := *h
	newH.attrs = buf.Bytes()
	return &newH
}

func (h *handler) WithGroup(string) slog.Handler {
	// Grouping is not supported; attributes are flattened.
	newH := *h
	return &newH
}

// WithLeveler returns a copy of the handler using lvl for level checks.
func (h *handler) WithLeveler(lvl slog.Leveler) *handler {
	newH := *h
	newH.lvl = lvl
	return &newH
}

// WithPrefix returns a copy of the handler that prefixes every message.
func (h *handler) WithPrefix(prefix string) *handler {
	newH := *h
	newH.prefix = prefix
	return &newH
}
