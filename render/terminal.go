package render

import (
	"bytes"
	"github.com/go-faster/errors"
	"github.com/gosuri/uilive"
	"io"
	"sync"
	"sync/atomic"
)

// Terminal redraws one block of text in place. Log output should go through
// Bypass so it does not get overwritten.
type Terminal struct {
	mu      *sync.Mutex
	out     *uilive.Writer
	enabled *atomic.Bool
}

func NewTerminal(w io.Writer) *Terminal {
	var terminal = new(Terminal)
	terminal.mu = new(sync.Mutex)
	terminal.out = uilive.New()
	terminal.out.Out = w
	terminal.enabled = new(atomic.Bool)
	terminal.enabled.Store(true)
	return terminal
}

func (t *Terminal) Bypass() io.Writer {
	return t.out.Bypass()
}

// Toggle flips whether Show draws anything and reports the new setting.
func (t *Terminal) Toggle() bool {
	for {
		var old = t.enabled.Load()
		if t.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (t *Terminal) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

func (t *Terminal) Enabled() bool {
	return t.enabled.Load()
}

// Show replaces the block with whatever draw writes. A failed draw leaves the
// previous block on screen.
func (t *Terminal) Show(draw func(w io.Writer) error) error {
	if !t.Enabled() {
		return nil
	}

	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return errors.Wrap(err, "draw")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.out.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "output.Write")
	}
	if err := t.out.Flush(); err != nil {
		return errors.Wrap(err, "output.Flush")
	}
	return nil
}
