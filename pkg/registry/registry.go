package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wehubfusion/Daedalus/pkg/concurrency"
	"github.com/wehubfusion/Daedalus/pkg/discovery"
	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/events"
	"github.com/wehubfusion/Daedalus/pkg/graph"
	"github.com/wehubfusion/Daedalus/pkg/lifecycle"
	"github.com/wehubfusion/Daedalus/pkg/metrics"
	"github.com/wehubfusion/Daedalus/pkg/unit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Config controls optional registry behavior.
type Config struct {
	// ReportErrors forwards unit execution failures to Sentry. The Sentry
	// SDK must be initialized by the embedding process.
	ReportErrors bool

	// Emitter receives lifecycle and execution events. Nil means no events.
	Emitter events.Emitter

	// MetricsRegisterer receives the registry's Prometheus instruments.
	// Nil means the instruments are created but not exported.
	MetricsRegisterer prometheus.Registerer

	// MaxConcurrentExecutions caps in-flight ExecuteUnit calls across all
	// units. Zero means unlimited.
	MaxConcurrentExecutions int
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() Config {
	return Config{}
}

// Registry owns every loaded unit plus the category and tag indexes derived
// from their descriptors. It is safe for concurrent use: the indexes are
// guarded by their own lock, independent from per-unit execution state.
type Registry struct {
	mu         sync.RWMutex
	units      map[string]*LoadedUnit
	byCategory map[string]map[string]struct{}
	byTag      map[string]map[string]struct{}
	graph      *graph.DependencyGraph

	scanner *discovery.Scanner
	static  *discovery.StaticSource
	watcher *discovery.Watcher

	config    Config
	logger    *zap.Logger
	tracer    trace.Tracer
	emitter   events.Emitter
	collector *metrics.Collector
	limiter   *concurrency.Limiter

	discoveryDuration time.Duration
	loadDuration      time.Duration
}

// New creates a registry with the given configuration. Discovery sources are
// attached with AddSource before calling Load; programmatic registration via
// Register works without any source.
func New(config Config, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	emitter := config.Emitter
	if emitter == nil {
		emitter = events.NewNopEmitter()
	}
	static := discovery.NewStaticSource(logger)
	var limiter *concurrency.Limiter
	if config.MaxConcurrentExecutions > 0 {
		limiter = concurrency.NewLimiter(config.MaxConcurrentExecutions)
	}
	return &Registry{
		units:      make(map[string]*LoadedUnit),
		byCategory: make(map[string]map[string]struct{}),
		byTag:      make(map[string]map[string]struct{}),
		graph:      graph.Build(nil),
		scanner:    discovery.NewScanner(logger, static),
		static:     static,
		config:     config,
		logger:     logger,
		tracer:     otel.Tracer("daedalus/registry"),
		emitter:    emitter,
		collector:  metrics.NewCollector(config.MetricsRegisterer),
		limiter:    limiter,
	}
}

// AddSource attaches a discovery source. Sources added later win id
// collisions against earlier ones.
func (r *Registry) AddSource(src discovery.Source) {
	r.scanner.AddSource(src)
}

// Load runs one full discovery and activation pass: scan, adapt, build the
// dependency graph, and drain it in dependency order. Load is meant to run
// once at process start; per-candidate failures degrade the result rather
// than aborting it.
func (r *Registry) Load(ctx context.Context) error {
	candidates, scanDuration := r.scanner.Scan(ctx)

	start := time.Now()
	pendings := make(map[string]*pendingUnit, len(candidates))
	deps := make(map[string][]string, len(candidates))
	for _, c := range candidates {
		p, err := r.buildPending(c)
		if err != nil {
			// Already logged with the reason; one bad candidate never
			// aborts the rest of the load.
			continue
		}
		pendings[p.descriptor.ID] = p
		deps[p.descriptor.ID] = p.descriptor.Dependencies
	}

	g := graph.Build(deps)
	result := activate(ctx, pendings, g, r.logger)

	r.mu.Lock()
	r.graph = g
	for id, lu := range result.loaded {
		r.installLocked(id, lu)
	}
	for id, lu := range result.disabled {
		r.installLocked(id, lu)
	}
	r.discoveryDuration = scanDuration
	r.loadDuration = time.Since(start)
	loaded, disabled := r.populationLocked()
	r.mu.Unlock()

	r.collector.SetPopulation(loaded, disabled)
	for id, lu := range result.loaded {
		r.emitter.Emit(events.Event{
			Type:      events.EventUnitLoaded,
			UnitID:    id,
			Category:  lu.descriptor.Category,
			Timestamp: time.Now().UTC(),
		})
	}
	for id, lu := range result.disabled {
		r.emitter.Emit(events.Event{
			Type:       events.EventUnitDisabled,
			UnitID:     id,
			Category:   lu.descriptor.Category,
			Diagnostic: lu.diagnostic,
			Timestamp:  time.Now().UTC(),
		})
	}

	r.logger.Info("registry load complete",
		zap.Int("loaded", len(result.loaded)),
		zap.Int("disabled", len(result.disabled)),
		zap.Duration("discovery", scanDuration),
		zap.Duration("activation", r.loadDuration))
	return nil
}

// buildPending constructs and adapts one candidate and resolves its
// descriptor. Errors are classified, logged, and returned so callers decide
// whether to skip (discovery) or surface (programmatic registration).
func (r *Registry) buildPending(c discovery.Candidate) (*pendingUnit, error) {
	raw, err := construct(c.Constructor)
	if err != nil {
		err = sdkerrors.NewError("CONSTRUCT_FAILED",
			fmt.Sprintf("cannot construct %q from %s", c.ID, c.Location),
			fmt.Errorf("%w: %v", sdkerrors.ErrDiscovery, err))
		r.logger.Error("skipping candidate", zap.String("unit", c.ID), zap.Error(err))
		return nil, err
	}

	instance, err := adapt(raw, c.ID)
	if err != nil {
		// Not a unit. Quiet skip during discovery.
		r.logger.Debug("candidate is not a unit",
			zap.String("unit", c.ID), zap.String("location", c.Location))
		return nil, err
	}

	desc := descriptorOf(instance, c.ID, c.Category, c.Descriptor)
	desc.ID = c.ID
	if err := desc.Validate(); err != nil {
		err = sdkerrors.NewError("DESCRIPTOR_INVALID", err.Error(), sdkerrors.ErrRegistration)
		r.logger.Error("skipping candidate with invalid metadata",
			zap.String("unit", c.ID), zap.Error(err))
		return nil, err
	}

	return &pendingUnit{candidate: c, instance: instance, descriptor: desc}, nil
}

// construct invokes a candidate constructor, converting panics into errors.
func construct(ctor unit.Constructor) (v interface{}, err error) {
	if ctor == nil {
		return nil, fmt.Errorf("nil constructor")
	}
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = fmt.Errorf("constructor panicked: %v", rec)
		}
	}()
	return ctor()
}

// installLocked adds a unit to the primary map and secondary indexes,
// replacing any previous registration under the same id.
func (r *Registry) installLocked(id string, lu *LoadedUnit) {
	if prev, exists := r.units[id]; exists {
		r.removeFromIndexesLocked(prev)
	}
	r.units[id] = lu
	if cat := lu.descriptor.Category; cat != "" {
		if r.byCategory[cat] == nil {
			r.byCategory[cat] = make(map[string]struct{})
		}
		r.byCategory[cat][id] = struct{}{}
	}
	for _, tag := range lu.descriptor.Tags {
		if r.byTag[tag] == nil {
			r.byTag[tag] = make(map[string]struct{})
		}
		r.byTag[tag][id] = struct{}{}
	}
}

func (r *Registry) removeFromIndexesLocked(lu *LoadedUnit) {
	id := lu.descriptor.ID
	if cat := lu.descriptor.Category; cat != "" {
		delete(r.byCategory[cat], id)
		if len(r.byCategory[cat]) == 0 {
			delete(r.byCategory, cat)
		}
	}
	for _, tag := range lu.descriptor.Tags {
		delete(r.byTag[tag], id)
		if len(r.byTag[tag]) == 0 {
			delete(r.byTag, tag)
		}
	}
}

func (r *Registry) populationLocked() (loaded, disabled int) {
	for _, lu := range r.units {
		if lu.State() == lifecycle.StateDisabled {
			disabled++
		} else {
			loaded++
		}
	}
	return loaded, disabled
}

// Get returns the loaded unit for an id. Unknown ids and disabled units come
// back as typed failures.
func (r *Registry) Get(id string) (*LoadedUnit, error) {
	r.mu.RLock()
	lu, ok := r.units[id]
	r.mu.RUnlock()
	if !ok {
		return nil, sdkerrors.NewError("UNIT_NOT_FOUND",
			fmt.Sprintf("no unit registered under %q", id), sdkerrors.ErrNotFound)
	}
	if lu.State() == lifecycle.StateDisabled {
		return nil, sdkerrors.NewError("UNIT_DISABLED",
			fmt.Sprintf("unit %q is disabled: %s", id, lu.diagnostic), sdkerrors.ErrDisabled)
	}
	return lu, nil
}

// GetByCategory returns every enabled unit in a category, sorted by id.
func (r *Registry) GetByCategory(category string) []*LoadedUnit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.byCategory[category])
}

// GetByTag returns every enabled unit carrying a tag, sorted by id.
func (r *Registry) GetByTag(tag string) []*LoadedUnit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.byTag[tag])
}

func (r *Registry) collectLocked(ids map[string]struct{}) []*LoadedUnit {
	out := make([]*LoadedUnit, 0, len(ids))
	for id := range ids {
		if lu := r.units[id]; lu != nil && lu.State() != lifecycle.StateDisabled {
			out = append(out, lu)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

var searchFolder = cases.Fold()

// Search returns every enabled unit whose id, name, description, or tags
// contain the query, case-insensitively. Results are sorted by id.
func (r *Registry) Search(query string) []*LoadedUnit {
	needle := searchFolder.String(query)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*LoadedUnit
	for _, lu := range r.units {
		if lu.State() == lifecycle.StateDisabled {
			continue
		}
		d := lu.descriptor
		if foldContains(d.ID, needle) ||
			foldContains(d.Name, needle) ||
			foldContains(d.Description, needle) {
			out = append(out, lu)
			continue
		}
		for _, tag := range d.Tags {
			if foldContains(tag, needle) {
				out = append(out, lu)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func foldContains(haystack, foldedNeedle string) bool {
	return strings.Contains(searchFolder.String(haystack), foldedNeedle)
}

// Register adds a unit programmatically, following the same capability
// adapter and lifecycle path as filesystem discovery. The constructed value
// is adapted, validated, activated against the currently loaded units, and
// indexed. Registering an existing id replaces it.
func (r *Registry) Register(ctx context.Context, id, category string, ctor unit.Constructor) error {
	c := discovery.Candidate{
		ID:          id,
		Category:    category,
		Location:    "programmatic:" + id,
		Constructor: ctor,
	}
	// Keep the static table current so a later Reload can rebuild the unit.
	r.static.RegisterCandidate(c)
	return r.activateOne(ctx, c, events.EventUnitLoaded)
}

// activateOne builds and activates a single candidate against the currently
// loaded population. Units whose dependencies are not loaded are quarantined,
// mirroring a full activation pass.
func (r *Registry) activateOne(ctx context.Context, c discovery.Candidate, event events.EventType) error {
	p, err := r.buildPending(c)
	if err != nil {
		return err
	}

	r.mu.Lock()
	missing := r.missingDepsLocked(p.descriptor.Dependencies)
	lu := newLoadedUnit(p.candidate, p.descriptor, p.instance)
	r.graph.Add(p.descriptor.ID, p.descriptor.Dependencies)

	var activationErr error
	if len(missing) > 0 {
		lu.diagnostic = "missing dependencies: " + strings.Join(missing, ", ")
		lu.tracker.Disable()
		activationErr = sdkerrors.NewError("DEPENDENCY_MISSING", lu.diagnostic, sdkerrors.ErrDependency)
	} else if err := initializeUnit(ctx, lu); err != nil {
		lu.diagnostic = fmt.Sprintf("initialize failed: %v", err)
		lu.tracker.Disable()
		activationErr = sdkerrors.NewError("INITIALIZE_FAILED", lu.diagnostic, sdkerrors.ErrRegistration)
	}
	r.installLocked(p.descriptor.ID, lu)
	loaded, disabled := r.populationLocked()
	r.mu.Unlock()

	r.collector.SetPopulation(loaded, disabled)
	if activationErr != nil {
		r.logger.Warn("unit registered but quarantined",
			zap.String("unit", p.descriptor.ID), zap.String("reason", lu.diagnostic))
		r.emitter.Emit(events.Event{
			Type:       events.EventUnitDisabled,
			UnitID:     p.descriptor.ID,
			Category:   p.descriptor.Category,
			Diagnostic: lu.diagnostic,
			Timestamp:  time.Now().UTC(),
		})
		return activationErr
	}

	r.logger.Info("unit registered", zap.String("unit", p.descriptor.ID))
	r.emitter.Emit(events.Event{
		Type:      event,
		UnitID:    p.descriptor.ID,
		Category:  p.descriptor.Category,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (r *Registry) missingDepsLocked(deps []string) []string {
	var missing []string
	for _, dep := range deps {
		lu, ok := r.units[dep]
		if !ok || lu.State() == lifecycle.StateDisabled {
			missing = append(missing, dep)
		}
	}
	return missing
}

// Disable quarantines a unit: its Cleanup hook runs, its state moves to
// DISABLED, and lookups fail until Enable. The unit keeps its statistics.
func (r *Registry) Disable(ctx context.Context, id string) error {
	r.mu.RLock()
	lu, ok := r.units[id]
	r.mu.RUnlock()
	if !ok {
		return sdkerrors.NewError("UNIT_NOT_FOUND",
			fmt.Sprintf("no unit registered under %q", id), sdkerrors.ErrNotFound)
	}

	runCleanup(ctx, lu.instance, r.logger, id)
	lu.tracker.Disable()
	lu.diagnostic = "disabled by caller"

	r.mu.RLock()
	loaded, disabled := r.populationLocked()
	r.mu.RUnlock()
	r.collector.SetPopulation(loaded, disabled)

	r.logger.Info("unit disabled", zap.String("unit", id))
	r.emitter.Emit(events.Event{
		Type:      events.EventUnitDisabled,
		UnitID:    id,
		Category:  lu.descriptor.Category,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// Enable returns a disabled unit to INITIALIZED, re-running its Initialize
// hook exactly once. Enabling a unit that is not disabled is an error.
func (r *Registry) Enable(ctx context.Context, id string) error {
	r.mu.RLock()
	lu, ok := r.units[id]
	r.mu.RUnlock()
	if !ok {
		return sdkerrors.NewError("UNIT_NOT_FOUND",
			fmt.Sprintf("no unit registered under %q", id), sdkerrors.ErrNotFound)
	}
	if lu.State() != lifecycle.StateDisabled {
		return sdkerrors.NewError("LIFECYCLE_TRANSITION",
			fmt.Sprintf("unit %q is not disabled", id), sdkerrors.ErrInvalidTransition)
	}

	if err := reinitialize(ctx, lu.instance); err != nil {
		lu.diagnostic = fmt.Sprintf("initialize failed: %v", err)
		r.logger.Error("unit failed to re-initialize",
			zap.String("unit", id), zap.Error(err))
		return sdkerrors.NewError("INITIALIZE_FAILED", lu.diagnostic, sdkerrors.ErrRegistration)
	}
	if err := lu.tracker.Enable(); err != nil {
		return err
	}
	lu.diagnostic = ""

	r.mu.RLock()
	loaded, disabled := r.populationLocked()
	r.mu.RUnlock()
	r.collector.SetPopulation(loaded, disabled)

	r.logger.Info("unit enabled", zap.String("unit", id))
	r.emitter.Emit(events.Event{
		Type:      events.EventUnitEnabled,
		UnitID:    id,
		Category:  lu.descriptor.Category,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// Reload disables a unit, discards its descriptor, instance, and graph edges,
// re-discovers it from its sources, and re-activates that single id. The
// replacement gets a fresh instance id and zeroed statistics.
func (r *Registry) Reload(ctx context.Context, id string) error {
	r.mu.Lock()
	lu, ok := r.units[id]
	if !ok {
		r.mu.Unlock()
		return sdkerrors.NewError("UNIT_NOT_FOUND",
			fmt.Sprintf("no unit registered under %q", id), sdkerrors.ErrNotFound)
	}
	r.removeFromIndexesLocked(lu)
	delete(r.units, id)
	r.graph.Remove(id)
	r.mu.Unlock()

	runCleanup(ctx, lu.instance, r.logger, id)
	lu.tracker.Disable()

	candidate, found := r.findCandidate(ctx, id)
	if !found {
		r.logger.Error("no source yields the reloaded unit", zap.String("unit", id))
		return sdkerrors.NewError("UNIT_NOT_FOUND",
			fmt.Sprintf("no source yields unit %q", id), sdkerrors.ErrNotFound)
	}

	if err := r.activateOne(ctx, candidate, events.EventUnitReloaded); err != nil {
		return err
	}
	r.logger.Info("unit reloaded", zap.String("unit", id))
	return nil
}

// findCandidate re-scans the sources for a single id, picking up manifest
// changes that happened since the original load.
func (r *Registry) findCandidate(ctx context.Context, id string) (discovery.Candidate, bool) {
	candidates, _ := r.scanner.Scan(ctx)
	for _, c := range candidates {
		if c.ID == id {
			return c, true
		}
	}
	return discovery.Candidate{}, false
}

// Units returns every enabled unit, sorted by id.
func (r *Registry) Units() []*LoadedUnit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*LoadedUnit
	for _, lu := range r.units {
		if lu.State() != lifecycle.StateDisabled {
			out = append(out, lu)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// DisabledUnits returns every disabled or quarantined unit, sorted by id.
func (r *Registry) DisabledUnits() []*LoadedUnit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*LoadedUnit
	for _, lu := range r.units {
		if lu.State() == lifecycle.StateDisabled {
			out = append(out, lu)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// PerformanceMetrics is the aggregate view over the whole registry.
type PerformanceMetrics struct {
	DiscoveryDurationMs int64 `json:"discovery_duration_ms"`
	LoadDurationMs      int64 `json:"load_duration_ms"`
	UnitCount           int   `json:"unit_count"`
	CategoryCount       int   `json:"category_count"`
	DisabledCount       int   `json:"disabled_count"`
	ErrorCount          int64 `json:"error_count"`
}

// Metrics returns the aggregate registry metrics: load timings, population
// counts, and the error count accumulated across all units.
func (r *Registry) Metrics() PerformanceMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := PerformanceMetrics{
		DiscoveryDurationMs: r.discoveryDuration.Milliseconds(),
		LoadDurationMs:      r.loadDuration.Milliseconds(),
		CategoryCount:       len(r.byCategory),
	}
	for _, lu := range r.units {
		if lu.State() == lifecycle.StateDisabled {
			m.DisabledCount++
		} else {
			m.UnitCount++
		}
		m.ErrorCount += lu.Stats().ErrorCount
	}
	return m
}

// Watch starts reload-on-change for the given manifest roots. Changed
// manifests trigger a Reload of the derived unit id.
func (r *Registry) Watch(roots []string) error {
	w, err := discovery.NewWatcher(roots, func(id string) {
		if err := r.Reload(context.Background(), id); err != nil {
			r.logger.Warn("auto-reload failed",
				zap.String("unit", id), zap.Error(err))
		}
	}, r.logger)
	if err != nil {
		return err
	}
	r.watcher = w
	return nil
}

// Close releases the registry's resources: the watcher, every unit's Cleanup
// hook, and the event emitter.
func (r *Registry) Close(ctx context.Context) error {
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
	r.mu.RLock()
	units := make([]*LoadedUnit, 0, len(r.units))
	for _, lu := range r.units {
		units = append(units, lu)
	}
	r.mu.RUnlock()
	for _, lu := range units {
		runCleanup(ctx, lu.instance, r.logger, lu.ID())
	}
	return r.emitter.Close()
}

// runCleanup invokes a unit's Cleanup hook if present, recovering panics.
func runCleanup(ctx context.Context, instance unit.Unit, logger *zap.Logger, id string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("cleanup panicked", zap.String("unit", id), zap.Any("panic", rec))
		}
	}()
	if c, ok := instance.(unit.Cleaner); ok {
		if err := c.Cleanup(ctx); err != nil {
			logger.Warn("cleanup failed", zap.String("unit", id), zap.Error(err))
		}
	}
}

// reinitialize re-runs a unit's Initialize hook, recovering panics.
func reinitialize(ctx context.Context, instance unit.Unit) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("initialize panicked: %v", rec)
		}
	}()
	if init, ok := instance.(unit.Initializer); ok {
		return init.Initialize(ctx)
	}
	return nil
}
