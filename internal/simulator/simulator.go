// Package simulator produces synthetic vital-sign feeds for testing the
// monitor end to end.
//
// Generators emit wire-format lines through pluggable outputs, so the
// same simulated stream can go to the console, to per-signal files, or
// be served over TCP or WebSocket for the ingestion readers to consume.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
)

// Output receives generated readings.
type Output interface {
	// Emit delivers one reading. The value is pre-formatted because some
	// signals carry a unit suffix on the wire.
	Emit(patientID int, tsMS int64, signal model.SignalType, value string) error

	// Close releases any resources held by the output.
	Close() error
}

// Generator produces readings for one signal kind.
type Generator interface {
	// Generate emits the next reading for a patient.
	Generate(patientID int, out Output)

	// Interval is the cadence at which the generator runs.
	Interval() time.Duration
}

// FormatLine renders one reading in the wire format the readers parse.
func FormatLine(patientID int, tsMS int64, signal model.SignalType, value string) string {
	return fmt.Sprintf("%d,%d,%s,%s", patientID, tsMS, signal, value)
}

// MultiOutput fans each reading out to several outputs.
type MultiOutput struct {
	outputs []Output
}

// NewMultiOutput creates a fan-out over the given outputs.
func NewMultiOutput(outputs ...Output) *MultiOutput {
	return &MultiOutput{outputs: outputs}
}

// Emit implements Output.Emit.
func (m *MultiOutput) Emit(patientID int, tsMS int64, signal model.SignalType, value string) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Emit(patientID, tsMS, signal, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Output.Close.
func (m *MultiOutput) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Runner drives a set of generators over a patient population.
type Runner struct {
	patientCount int
	generators   []Generator
	output       Output

	logger logger.Logger
}

// NewRunner creates a runner for patientCount patients.
func NewRunner(patientCount int, output Output, generators ...Generator) *Runner {
	return &Runner{
		patientCount: patientCount,
		generators:   generators,
		output:       output,
		logger:       logger.Get().Named("simulator"),
	}
}

// Run drives every generator at its own cadence until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info(ctx, "simulation started",
		logger.Int("patients", r.patientCount),
		logger.Int("generators", len(r.generators)),
	)

	for _, g := range r.generators {
		go func(g Generator) {
			ticker := time.NewTicker(g.Interval())
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					for id := 1; id <= r.patientCount; id++ {
						g.Generate(id, r.output)
					}
				}
			}
		}(g)
	}

	<-ctx.Done()
	r.logger.Info(context.Background(), "simulation stopped")
}
