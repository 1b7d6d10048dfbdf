package simulator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// FileOutput appends readings to one file per signal under a base
// directory, named after the signal (for example Saturation.txt).
type FileOutput struct {
	baseDir string

	mu    sync.Mutex
	files map[model.SignalType]*os.File
}

var _ Output = (*FileOutput)(nil)

// NewFileOutput creates the base directory if needed.
func NewFileOutput(baseDir string) (*FileOutput, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &FileOutput{
		baseDir: baseDir,
		files:   make(map[model.SignalType]*os.File),
	}, nil
}

// Emit implements Output.Emit.
func (o *FileOutput) Emit(patientID int, tsMS int64, signal model.SignalType, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	f, ok := o.files[signal]
	if !ok {
		path := filepath.Join(o.baseDir, string(signal)+".txt")
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		o.files[signal] = f
	}

	_, err := fmt.Fprintln(f, FormatLine(patientID, tsMS, signal, value))
	return err
}

// Close implements Output.Close.
func (o *FileOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for _, f := range o.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	o.files = make(map[model.SignalType]*os.File)
	return errors.Join(errs...)
}
