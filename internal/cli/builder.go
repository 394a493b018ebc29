package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/bigraph"
	"github.com/aretw0/bigraph/internal/logging"
	"github.com/aretw0/bigraph/pkg/adapters/file"
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/processes"
	"github.com/aretw0/bigraph/pkg/registry"
)

// Options are the settings shared by every command.
type Options struct {
	// Document is the JSON or YAML document to load. Empty starts from an empty bigraph.
	Document string
	// OutDir is where written documents and diagrams go.
	OutDir string
	// Manifest lists extra processes to register before loading.
	Manifest string
	// Debug logs completion and runtime events to stderr.
	Debug bool
}

// DefaultOptions returns the options the flags default to.
func DefaultOptions() Options {
	return Options{
		OutDir:   file.DefaultDir,
		Manifest: registry.DefaultManifest,
	}
}

// NewBuilder creates a builder with the processes of the manifest registered and the
// document loaded.
func NewBuilder(opts Options, extra ...bigraph.Option) (*bigraph.Builder, error) {
	logger := createLogger(opts.Debug)
	builderOpts := []bigraph.Option{
		bigraph.WithLogger(logger),
		bigraph.WithOutDir(opts.OutDir),
	}
	if opts.Debug {
		builderOpts = append(builderOpts, bigraph.WithLifecycleHooks(createDebugHooks(logger)))
	}
	b := bigraph.New(append(builderOpts, extra...)...)

	if opts.Manifest != "" {
		if err := b.LoadProcesses(opts.Manifest); err != nil {
			return nil, err
		}
	}
	if opts.Document == "" {
		return b, nil
	}

	doc, err := file.ReadFile(opts.Document)
	if err != nil {
		return nil, err
	}
	if err := b.LoadDocument(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Document, err)
	}
	return b, nil
}

func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnComplete: func(ctx context.Context, e *domain.CompletionEvent) {
			if e.Err != nil {
				logger.Debug("Completion Failed", "duration", e.Duration, "err", e.Err)
				return
			}
			logger.Debug("Completion", "duration", e.Duration)
		},
		OnUpdate: func(ctx context.Context, e *domain.UpdateEvent) {
			logger.Debug("Update", "path", e.Edge.String(), "kind", e.Kind, "time", e.Time)
		},
		OnCycle: func(ctx context.Context, e *domain.CycleEvent) {
			logger.Debug("Cycle", "time", e.Time)
		},
	}
}

// BuiltinAddresses lists the "local:!" addresses the built-in catalog resolves,
// ready to be used in a process manifest.
func BuiltinAddresses() []string {
	locators := processes.Catalog().Locators()
	addresses := make([]string, len(locators))
	for i, l := range locators {
		addresses[i] = domain.ProtocolLocal + ":!" + l
	}
	return addresses
}
