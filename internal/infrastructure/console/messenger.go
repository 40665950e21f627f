package console

import (
	"context"
	"fmt"
	"io"
	"os"

	"IntelBriefing/internal/ports"
)

// Messenger prints briefings instead of delivering them; used for dry runs.
type Messenger struct {
	out io.Writer
}

var _ ports.Messenger = (*Messenger)(nil)

// NewMessenger writes to out, or stdout when out is nil.
func NewMessenger(out io.Writer) *Messenger {
	if out == nil {
		out = os.Stdout
	}
	return &Messenger{out: out}
}

// Send writes text followed by a newline.
func (m *Messenger) Send(_ context.Context, text string) error {
	if _, err := fmt.Fprintln(m.out, text); err != nil {
		return fmt.Errorf("write briefing: %w", err)
	}
	return nil
}
