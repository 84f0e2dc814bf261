package log

import (
	"io"
	"os"
)

// ConsoleOutput writes formatted entries to stderr, or to W when set.
type ConsoleOutput struct {
	W io.Writer
}

// NewConsoleOutput returns an Output writing to stderr.
func NewConsoleOutput() *ConsoleOutput { return &ConsoleOutput{W: os.Stderr} }

// newWriterOutput returns an Output writing to w.
func newWriterOutput(w io.Writer) *ConsoleOutput { return &ConsoleOutput{W: w} }

func (o *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	w := o.W
	if w == nil {
		w = os.Stderr
	}
	_, err := w.Write(formatted)
	return err
}

func (o *ConsoleOutput) Close() error { return nil }

// NullOutput discards everything.
type NullOutput struct{}

func (NullOutput) Write(*Entry, []byte) error { return nil }
func (NullOutput) Close() error               { return nil }
