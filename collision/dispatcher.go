package collision

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
)

// TickStats describes one dispatcher tick.
type TickStats struct {
	Tick               uint64
	Backend            string
	Projectiles        int
	Receivers          int
	DroppedProjectiles int
	DroppedReceivers   int
	DroppedShapes      int
	PairsTested        int
	Matches            int
	Accepted           int
	DroppedGlobal      int
	DroppedReceiverCap int
	Enters             int
	Stays              int
	Exits              int
	Destroyed          int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for capacity and backend diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithHandler sets the collision event handler.
func WithHandler(h EventHandler) Option {
	return func(d *Dispatcher) { d.sink.SetHandler(h) }
}

// WithLifecycle sets the collaborator that destroys projectiles.
func WithLifecycle(l Lifecycle) Option {
	return func(d *Dispatcher) { d.lifecycle = l }
}

// WithBackend forces a specific backend instead of the configured mode.
func WithBackend(b Backend) Option {
	return func(d *Dispatcher) { d.forced = b }
}

// Dispatcher runs the per-tick collision pipeline: build buffers, run the
// selected backend, route matches to the event sink, then flush deferred
// projectile destruction. It is owned by one simulation goroutine.
type Dispatcher struct {
	cfg       Config
	tags      TagNames
	log       *slog.Logger
	registry  *Registry
	buffers   *FrameBuffers
	matches   *MatchBuffer
	backend   Backend
	forced    Backend
	sink      *EventSink
	lifecycle Lifecycle

	tick         uint64
	overCapacity bool
}

// NewDispatcher validates cfg and builds a dispatcher with an empty registry.
func NewDispatcher(cfg Config, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		log:      slog.Default(),
		registry: NewRegistry(),
		sink:     NewEventSink(nil),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.Configure(cfg); err != nil {
		return nil, err
	}
	return d, nil
}

// Configure applies a new configuration between ticks. Buffers are
// reallocated only when a capacity changed; the backend is re-selected.
func (d *Dispatcher) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if d.buffers == nil ||
		cfg.MaxProjectiles != d.cfg.MaxProjectiles ||
		cfg.MaxReceivers != d.cfg.MaxReceivers ||
		cfg.MaxShapesPerProjectile != d.cfg.MaxShapesPerProjectile {
		d.buffers = NewFrameBuffers(cfg.MaxProjectiles, cfg.MaxReceivers, cfg.MaxShapesPerProjectile)
	}
	if d.matches == nil ||
		cfg.MaxGlobalCollisionsPerTick != d.cfg.MaxGlobalCollisionsPerTick ||
		cfg.MaxReceivers != d.cfg.MaxReceivers {
		d.matches = NewMatchBuffer(cfg.MaxGlobalCollisionsPerTick, cfg.MaxReceivers)
	}
	d.cfg = cfg
	d.tags = cfg.TagNames()
	d.backend = d.selectBackend(cfg)
	d.log.Info("collision dispatcher configured",
		"backend", d.backend.Name(),
		"max_projectiles", cfg.MaxProjectiles,
		"max_receivers", cfg.MaxReceivers,
		"max_global_collisions", cfg.MaxGlobalCollisionsPerTick)
	return nil
}

func (d *Dispatcher) selectBackend(cfg Config) Backend {
	if d.forced != nil {
		return d.forced
	}
	lanes := parallelLanes(cfg.Workers)
	switch cfg.Backend {
	case BackendSequential:
		return SequentialBackend{}
	case BackendBatch:
		if lanes < 2 {
			d.log.Error("batch collision backend unavailable, falling back to sequential",
				"lanes", lanes)
			return SequentialBackend{}
		}
		return NewBatchBackend(lanes)
	default:
		if lanes < 2 {
			return SequentialBackend{}
		}
		return NewBatchBackend(lanes)
	}
}

// Config returns the active configuration
func (d *Dispatcher) Config() Config { return d.cfg }

// Backend returns the name of the active backend
func (d *Dispatcher) Backend() string { return d.backend.Name() }

// Tags returns the configured tag name table
func (d *Dispatcher) Tags() TagNames { return d.tags }

// Registry exposes the actor registry
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Sink exposes the event sink
func (d *Dispatcher) Sink() *EventSink { return d.sink }

// TickCount returns the number of completed ticks
func (d *Dispatcher) TickCount() uint64 { return d.tick }

// RegisterProjectile adds p to collision and returns its handle.
func (d *Dispatcher) RegisterProjectile(p *Projectile) (Handle, error) {
	return d.registry.AddProjectile(p)
}

// UnregisterProjectile removes h. Unknown handles are ignored.
func (d *Dispatcher) UnregisterProjectile(h Handle) bool {
	return d.registry.RemoveProjectile(h)
}

// RegisterReceiver adds r to collision and returns its handle.
func (d *Dispatcher) RegisterReceiver(r *Receiver) (Handle, error) {
	return d.registry.AddReceiver(r)
}

// UnregisterReceiver removes h. Unknown handles are ignored.
func (d *Dispatcher) UnregisterReceiver(h Handle) bool {
	return d.registry.RemoveReceiver(h)
}

// FindReceiversMatching returns receivers compatible with tags, for
// targeting logic such as homing bullets.
func (d *Dispatcher) FindReceiversMatching(tags TagSet) []Handle {
	return d.registry.QueryReceiversCompatibleWith(tags)
}

// Tick runs one collision pass.
func (d *Dispatcher) Tick() TickStats {
	d.tick++
	st := TickStats{Tick: d.tick, Backend: d.backend.Name()}

	rep := d.buffers.Build(d.registry)
	st.Projectiles, st.Receivers = rep.Projectiles, rep.Receivers
	st.DroppedProjectiles = rep.DroppedProjectiles
	st.DroppedReceivers = rep.DroppedReceivers
	st.DroppedShapes = rep.DroppedShapes
	d.reportCapacity(rep)

	d.matches.Reset(rep.Receivers)
	if rep.Projectiles > 0 && rep.Receivers > 0 {
		d.backend.Test(d.buffers, d.matches)
	}
	st.PairsTested = d.matches.PairsTested()
	st.DroppedGlobal = d.matches.DroppedGlobal()
	st.DroppedReceiverCap = d.matches.DroppedReceiver()

	found := d.matches.Matches()
	st.Matches = len(found)
	slices.SortFunc(found, func(a, b Match) int {
		if c := cmp.Compare(abs32(a.Receiver), abs32(b.Receiver)); c != 0 {
			return c
		}
		return cmp.Compare(a.Projectile, b.Projectile)
	})

	sr := d.sink.Process(d.buffers, found, d.registry.HasReceiver)
	st.Accepted = sr.Accepted
	st.DroppedReceiverCap += sr.DroppedReceiver
	st.Enters, st.Stays, st.Exits = sr.Enters, sr.Stays, sr.Exits
	st.Destroyed = len(sr.Destroyed)

	for _, h := range sr.Destroyed {
		if d.lifecycle != nil {
			d.lifecycle.DestroyProjectile(h)
		} else {
			d.registry.RemoveProjectile(h)
		}
	}
	return st
}

func (d *Dispatcher) reportCapacity(rep BuildReport) {
	over := rep.OverCapacity()
	switch {
	case over && !d.overCapacity:
		d.log.Warn("collision buffers over capacity, actors truncated",
			"tick", d.tick,
			"dropped_projectiles", rep.DroppedProjectiles,
			"dropped_receivers", rep.DroppedReceivers,
			"dropped_shapes", rep.DroppedShapes,
			"max_projectiles", d.cfg.MaxProjectiles,
			"max_receivers", d.cfg.MaxReceivers)
	case !over && d.overCapacity:
		d.log.Info("collision buffers back under capacity", "tick", d.tick)
	}
	d.overCapacity = over
}

// DescribeTags renders a TagSet with the configured names.
func (d *Dispatcher) DescribeTags(t TagSet) string {
	return strings.Join(d.tags.Describe(t), "|")
}
