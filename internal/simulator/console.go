package simulator

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// ConsoleOutput writes wire-format lines to a writer, one per reading.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

var _ Output = (*ConsoleOutput)(nil)

// NewConsoleOutput creates an output writing to stdout.
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{w: os.Stdout}
}

// NewConsoleOutputTo creates an output writing to w.
func NewConsoleOutputTo(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w}
}

// Emit implements Output.Emit.
func (o *ConsoleOutput) Emit(patientID int, tsMS int64, signal model.SignalType, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := fmt.Fprintln(o.w, FormatLine(patientID, tsMS, signal, value))
	return err
}

// Close implements Output.Close.
func (o *ConsoleOutput) Close() error { return nil }
