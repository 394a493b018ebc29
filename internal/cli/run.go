package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/bigraph"
)

// RunOptions configure a simulation run.
type RunOptions struct {
	Interval float64
	Queries  []string
	// Write persists the final document under this name when set.
	Write string
	// Emitted includes the emitter histories in the report.
	Emitted bool
}

// Report is what a run prints.
type Report struct {
	Time    float64                     `json:"time"`
	Results map[string]any              `json:"results"`
	Emitted map[string][]map[string]any `json:"emitted,omitempty"`
	Written string                      `json:"written,omitempty"`
}

// Run simulates the document of b for opts.Interval and writes a JSON report to w.
// An interrupted run still reports the state it reached.
func Run(ctx context.Context, b *bigraph.Builder, opts RunOptions, w io.Writer) error {
	runErr := b.Run(ctx, opts.Interval)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	results, err := b.Results(opts.Queries...)
	if err != nil {
		return err
	}
	report := Report{Results: results}
	if t, ok := b.Time(); ok {
		report.Time = t
	}
	if opts.Emitted {
		if report.Emitted, err = b.Emitted(); err != nil {
			return err
		}
	}
	if opts.Write != "" {
		if report.Written, err = b.Write(opts.Write); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return runErr
}
