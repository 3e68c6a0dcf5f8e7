package terminal

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/martinwickman/tavs/internal/tmux"
)

const (
	esc = "\x1b"
	st  = esc + `\`
)

// Writer batches escape sequences, dropping any the terminal cannot handle,
// and emits them in a single write on Flush.
type Writer struct {
	out  io.Writer
	caps Capabilities
	buf  bytes.Buffer
}

// NewWriter returns a Writer that gates sequences on caps.
func NewWriter(out io.Writer, caps Capabilities) *Writer {
	return &Writer{out: out, caps: caps}
}

// SetTitle queues an OSC 0 title change. Control characters and embedded
// escape sequences are removed from title first.
func (w *Writer) SetTitle(title string) {
	w.buf.WriteString(esc + "]0;" + Sanitize(title) + st)
}

// SetBackground queues an OSC 11 background change. It reports false when the
// terminal does not support dynamic colors.
func (w *Writer) SetBackground(hex string) bool {
	if !w.caps.OSC10 {
		return false
	}
	w.color(esc + "]11;" + hex + st)
	return true
}

// ResetBackground queues OSC 111, restoring the profile background.
func (w *Writer) ResetBackground() bool {
	if !w.caps.OSC10 {
		return false
	}
	w.color(esc + "]111" + st)
	return true
}

// SetTabColor queues the iTerm2 tab color sequence.
func (w *Writer) SetTabColor(hex string) bool {
	if !w.caps.OSC1337 {
		return false
	}
	w.color(esc + "]1337;SetColors=tab=" + strings.TrimPrefix(hex, "#") + st)
	return true
}

// ResetTabColor restores the default tab color.
func (w *Writer) ResetTabColor() bool {
	if !w.caps.OSC1337 {
		return false
	}
	w.color(esc + "]6;1;bg;*;default" + st)
	return true
}

// SetPalette queues an OSC 4 change of one palette slot.
func (w *Writer) SetPalette(index int, hex string) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return
	}
	w.color(fmt.Sprintf("%s]4;%d;rgb:%s/%s/%s%s", esc, index, h[0:2], h[2:4], h[4:6], st))
}

// ResetPalette queues OSC 104, restoring the whole palette.
func (w *Writer) ResetPalette() {
	w.color(esc + "]104" + st)
}

func (w *Writer) color(seq string) {
	if w.caps.Tmux {
		seq = tmux.Wrap(seq)
	}
	w.buf.WriteString(seq)
}

// Pending reports the number of queued bytes.
func (w *Writer) Pending() int { return w.buf.Len() }

// Flush writes everything queued in one call and clears the queue.
func (w *Writer) Flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	defer w.buf.Reset()
	if _, err := w.out.Write(w.buf.Bytes()); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

// Sanitize strips escape sequences and C0, DEL and C1 control characters,
// leaving printable text including any Unicode.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			return -1
		}
		return r
	}, s)
}
