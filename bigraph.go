package bigraph

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/bigraph/internal/logging"
	"github.com/aretw0/bigraph/internal/presentation/graph"
	"github.com/aretw0/bigraph/internal/runtime"
	"github.com/aretw0/bigraph/pkg/adapters/file"
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/observability"
	"github.com/aretw0/bigraph/pkg/ports"
	"github.com/aretw0/bigraph/pkg/processes"
	"github.com/aretw0/bigraph/pkg/registry"
	"github.com/aretw0/bigraph/pkg/schema"
	"github.com/aretw0/bigraph/pkg/tree"
	"github.com/prometheus/client_golang/prometheus"
)

// Builder owns a bigraph document: the canonical (schema, state) pair and the index
// of the locations addressed through it. Every successful completion replaces the
// pair wholesale; Node handles re-resolve by path so they never go stale.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	core       ports.TypeSystem
	runtime    ports.Runtime
	visualizer ports.Visualizer
	store      ports.DocumentStore
	locator    registry.Locator
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	metrics    prometheus.Registerer
	outDir     string
	lenient    bool

	schema    map[string]any
	state     map[string]any
	tree      *tree.Tree
	composite ports.Composite
}

// Option defines a functional option for configuring the Builder.
type Option func(*Builder)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithCore injects the type system. Its process registry is the one the builder
// registers into and the runtime resolves through.
func WithCore(core ports.TypeSystem) Option {
	return func(b *Builder) {
		b.core = core
	}
}

// WithRuntime injects the runtime composites are built with.
func WithRuntime(rt ports.Runtime) Option {
	return func(b *Builder) {
		b.runtime = rt
	}
}

// WithVisualizer injects the renderer used by Visualize.
func WithVisualizer(v ports.Visualizer) Option {
	return func(b *Builder) {
		b.visualizer = v
	}
}

// WithStore injects the store Write persists documents to.
func WithStore(s ports.DocumentStore) Option {
	return func(b *Builder) {
		b.store = s
	}
}

// WithLocator adds a locator for "local:!" addresses. The built-in processes stay
// reachable; entries of l take precedence.
func WithLocator(l registry.Locator) Option {
	return func(b *Builder) {
		b.locator = l
	}
}

// WithOutDir sets the directory Write and Visualize produce files in (default "out").
func WithOutDir(dir string) Option {
	return func(b *Builder) {
		b.outDir = dir
	}
}

// WithLenientPorts makes Connect log and ignore undeclared ports instead of failing.
func WithLenientPorts() Option {
	return func(b *Builder) {
		b.lenient = true
	}
}

// WithMetrics registers the prometheus collectors of the builder on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(b *Builder) {
		b.metrics = reg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// New creates an empty Builder. The built-in processes are registered in its registry.
func New(opts ...Option) *Builder {
	b := &Builder{
		outDir: file.DefaultDir,
		schema: map[string]any{},
		state:  map[string]any{},
		tree:   tree.New(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.metrics != nil {
		m, err := observability.NewMetrics(b.metrics)
		if err != nil {
			b.logger.Warn("metrics disabled", "err", err)
		} else {
			b.hooks = observability.Merge(b.hooks, m.Hooks())
		}
	}
	if b.core == nil {
		var locator registry.Locator = processes.Catalog()
		if b.locator != nil {
			locator = registry.Chain{b.locator, locator}
		}
		reg := registry.NewRegistry(registry.WithLocator(locator))
		b.core = schema.NewCore(schema.WithProcesses(reg))
	}
	if err := processes.Register(b.core.Processes()); err != nil {
		b.logger.Warn("built-in processes not registered", "err", err)
	}
	if b.runtime == nil {
		b.runtime = runtime.New(
			runtime.WithLogger(b.logger),
			runtime.WithLifecycleHooks(b.hooks),
			runtime.WithTypes(b.core.Types()),
		)
	}
	if b.visualizer == nil {
		b.visualizer = graph.New()
	}
	if b.store == nil {
		b.store = file.New(b.outDir)
	}
	return b
}

// Load creates a Builder from a serialized document and completes it.
func Load(doc domain.Document, opts ...Option) (*Builder, error) {
	b := New(opts...)
	if err := b.LoadDocument(doc); err != nil {
		return nil, err
	}
	return b, nil
}

// LoadDocument replaces the document of the builder with doc and completes it.
// On failure the builder keeps its previous document.
func (b *Builder) LoadDocument(doc domain.Document) error {
	prevSchema, prevState := b.schema, b.state
	b.schema, b.state = domain.CopyMap(doc.Schema), domain.CopyMap(doc.State)
	if err := b.Complete(); err != nil {
		b.schema, b.state = prevSchema, prevState
		return fmt.Errorf("failed to load document: %w", err)
	}
	b.tree = tree.New()
	return nil
}

// Root returns the handle of the document root.
func (b *Builder) Root() Node {
	return Node{builder: b, path: domain.Path{}}
}

// Get returns the node at keys, creating the index entries on the way. It never fails.
func (b *Builder) Get(keys ...string) Node {
	return b.Root().Get(keys...)
}

// Set writes value at keys and completes the document.
func (b *Builder) Set(value any, keys ...string) error {
	if err := b.Root().Set(value, keys...); err != nil {
		return err
	}
	return b.Complete()
}

// Complete reconciles the document through the type system. On success the canonical
// pair is replaced; on failure it is left as it was and the error is returned.
func (b *Builder) Complete() error {
	start := time.Now()
	s, st, err := b.core.Complete(b.schema, b.state)
	if b.hooks.OnComplete != nil {
		b.hooks.OnComplete(context.Background(), &domain.CompletionEvent{
			EventBase: domain.NewEventBase(domain.EventComplete),
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	if err != nil {
		b.logger.Debug("completion failed", "err", err)
		return err
	}
	b.schema, b.state = s, st
	b.composite = nil
	b.logger.Debug("document completed", "duration", time.Since(start))
	return nil
}

// RegisterProcess adds an implementation to the process registry.
func (b *Builder) RegisterProcess(name string, impl registry.Implementation) error {
	if err := b.core.Processes().Register(name, impl, false); err != nil {
		return err
	}
	b.logger.Info("process registered", "process", name)
	return nil
}

// RegisterProcessAddress registers the implementation an address denotes under name.
// "local:!pkg.Name" and "path:pkg.Name" are resolved through the locator.
func (b *Builder) RegisterProcessAddress(name, address string) error {
	if err := b.core.Processes().RegisterAddress(name, address, false); err != nil {
		return err
	}
	b.logger.Info("process registered", "process", name, "address", address)
	return nil
}

// LoadProcesses registers every entry of a process manifest. A missing file is not an error.
func (b *Builder) LoadProcesses(manifestPath string) error {
	m, err := registry.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	for _, entry := range m.Processes {
		if err := b.RegisterProcessAddress(entry.Name, entry.Address); err != nil {
			return fmt.Errorf("manifest entry %q: %w", entry.Name, err)
		}
	}
	return nil
}

// RegisterType adds a custom type to the type registry.
func (b *Builder) RegisterType(name string, t schema.Type) error {
	return b.core.Types().Register(name, t)
}

// ListTypes returns the registered type names.
func (b *Builder) ListTypes() []string {
	return b.core.Types().List()
}

// ListProcesses returns the registered process names.
func (b *Builder) ListProcesses() []string {
	return b.core.Processes().List()
}

// Processes returns the process registry.
func (b *Builder) Processes() *registry.Registry {
	return b.core.Processes()
}

// Generate builds a composite from the current pair without completing it first.
func (b *Builder) Generate() (ports.Composite, error) {
	doc := domain.Document{
		Schema: domain.CopyMap(b.schema),
		State:  domain.CopyMap(b.state),
	}
	composite, err := b.runtime.Build(doc, b.core.Processes())
	if err != nil {
		return nil, fmt.Errorf("failed to build composite: %w", err)
	}
	b.composite = composite
	return composite, nil
}

// Compile completes the document, builds a composite and adopts the composite's
// state and composition as the canonical pair.
func (b *Builder) Compile() (ports.Composite, error) {
	if err := b.Complete(); err != nil {
		return nil, err
	}
	composite, err := b.Generate()
	if err != nil {
		return nil, err
	}
	b.schema = composite.Composition()
	b.state = composite.State()
	b.logger.Info("document compiled")
	return composite, nil
}

// Run advances the simulation by interval, compiling first if the document changed
// since the last build. The canonical state follows the composite.
func (b *Builder) Run(ctx context.Context, interval float64) error {
	if b.composite == nil {
		if _, err := b.Compile(); err != nil {
			return err
		}
	}
	if err := b.composite.Run(ctx, interval); err != nil {
		return err
	}
	b.state = b.composite.State()
	return nil
}

// Results queries the state of the compiled composite with JSONPath expressions.
func (b *Builder) Results(queries ...string) (map[string]any, error) {
	if b.composite == nil {
		return nil, domain.ErrNotCompiled
	}
	return b.composite.GatherResults(queries...)
}

// Time returns the clock of the compiled composite.
func (b *Builder) Time() (float64, bool) {
	if b.composite == nil {
		return 0, false
	}
	return b.composite.Time(), true
}

// Emitted returns the histories recorded by emitter steps of the compiled composite.
func (b *Builder) Emitted() (map[string][]map[string]any, error) {
	if b.composite == nil {
		return nil, domain.ErrNotCompiled
	}
	return b.composite.Emitted(), nil
}

// Document returns the serialized form of the canonical pair.
func (b *Builder) Document() (domain.Document, error) {
	return b.core.Serialize(b.schema, b.state)
}

// Write persists the document under name and returns where it was written.
// With the default store the file lands in the out dir; the extension (.json,
// .yaml or .yml) picks the format and defaults to JSON.
func (b *Builder) Write(name string) (string, error) {
	doc, err := b.Document()
	if err != nil {
		return "", err
	}
	location, err := b.store.Save(context.Background(), name, doc)
	if err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	b.logger.Info("document written", "path", location)
	return location, nil
}

// Visualize renders the document into the out dir and returns the artifact path.
func (b *Builder) Visualize(filename string, opts ports.RenderOptions) (string, error) {
	return b.visualizer.Render(b.state, b.schema, b.core.Processes(), b.outDir, filepath.Base(filename), opts)
}

// OutDir returns the directory Write and Visualize use.
func (b *Builder) OutDir() string {
	return b.outDir
}
