package saving

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/surface"
)

const eventBufferSize = 64

// SurfaceSource yields the design-surface handle bound right now, or nil.
type SurfaceSource interface {
	Current() surface.Surface
}

// Transition is what observers see for every processed event.
type Transition struct {
	Event  Event
	Before Machine
	After  Machine
	// Stale is set for completions that belong to a superseded cycle; they never
	// change the state.
	Stale bool
}

// Observer is called on the orchestrator's loop goroutine and must not block.
type Observer func(Transition)

type ExportFunc func(ctx context.Context, s surface.Surface, campaignName string) (model.Content, error)

type Option func(*Orchestrator)

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, obs)
	}
}

// WithCampaignName sets where exported snapshots take their campaign name from.
func WithCampaignName(name func() string) Option {
	return func(o *Orchestrator) {
		o.campaignName = name
	}
}

// WithExportTimeout bounds each export effect. An expired export fails the cycle
// like any other export error.
func WithExportTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.exportTimeout = d
	}
}

// WithExporter replaces Export.
func WithExporter(fn ExportFunc) Option {
	return func(o *Orchestrator) {
		o.export = fn
	}
}

// Orchestrator owns the save state of one editor session.
type Orchestrator struct {
	source    SurfaceSource
	persister Persister

	log           zerolog.Logger
	observers     []Observer
	campaignName  func() string
	exportTimeout time.Duration
	export        ExportFunc

	events  chan Event
	machine Machine // owned by the loop goroutine
	latest  atomic.Pointer[Machine]

	ctx       context.Context
	cancel    context.CancelFunc
	loopDone  chan struct{}
	effects   sync.WaitGroup
	closeOnce sync.Once
}

// New mounts an orchestrator and starts its event loop. Close unmounts it.
func New(source SurfaceSource, persister Persister, opts ...Option) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())

	o := &Orchestrator{
		source:       source,
		persister:    persister,
		log:          zerolog.Nop(),
		campaignName: func() string { return "" },
		export:       Export,
		events:       make(chan Event, eventBufferSize),
		machine:      NewMachine(),
		ctx:          ctx,
		cancel:       cancel,
		loopDone:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}

	initial := o.machine
	o.latest.Store(&initial)

	go o.loop()
	return o
}

// SmartSave starts a cycle unless one is already active.
func (o *Orchestrator) SmartSave() {
	o.Dispatch(SaveRequested{Force: false})
}

// ForceSave always starts a new cycle, superseding any active one.
func (o *Orchestrator) ForceSave() {
	o.Dispatch(SaveRequested{Force: true})
}

// Dispatch queues an event for the reducer. Events sent after Close are dropped.
func (o *Orchestrator) Dispatch(e Event) {
	select {
	case <-o.ctx.Done():
		return
	default:
	}

	select {
	case o.events <- e:
	case <-o.ctx.Done():
	}
}

// ExportContent takes a snapshot outside the save cycle. It returns nil content
// when no design surface is bound.
func (o *Orchestrator) ExportContent(ctx context.Context) (model.Content, error) {
	h := o.source.Current()
	if h == nil {
		return nil, nil
	}
	return o.export(ctx, h, o.campaignName())
}

// Snapshot returns the machine as of the last processed event.
func (o *Orchestrator) Snapshot() Machine {
	return *o.latest.Load()
}

// Close stops the event loop and waits for running effects. Effects still in
// flight see their context cancelled and their results are discarded.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.cancel()
		<-o.loopDone
		o.effects.Wait()
	})
}

func (o *Orchestrator) loop() {
	defer close(o.loopDone)

	for {
		select {
		case <-o.ctx.Done():
			return
		case e := <-o.events:
			o.apply(e)
		}
	}
}

func (o *Orchestrator) apply(e Event) {
	before := o.machine
	stale := Stale(before, e)
	after := Reduce(before, e)

	o.machine = after
	snapshot := after
	o.latest.Store(&snapshot)

	o.logTransition(e, before, after, stale)

	t := Transition{Event: e, Before: before, After: after, Stale: stale}
	for _, obs := range o.observers {
		obs(t)
	}

	if entered(before, after) {
		o.react(after)
	}
}

func (o *Orchestrator) logTransition(e Event, before, after Machine, stale bool) {
	if stale {
		o.log.Debug().
			Str("event", e.Name()).
			Stringer("state", before).
			Msg("Dropping result of superseded save cycle")
		return
	}

	if f, ok := e.(Failure); ok && before.Process.Step() == f.FailedStep() {
		o.log.Warn().
			Err(f.Cause()).
			Str("step", string(f.FailedStep())).
			Uint64("generation", f.CycleGeneration()).
			Msg("Save cycle failed")
		return
	}

	o.log.Debug().
		Str("event", e.Name()).
		Stringer("from", before).
		Stringer("to", after).
		Msg("Save event")
}

// entered reports whether after is a different process state than before, so that
// each state gets exactly one reaction.
func entered(before, after Machine) bool {
	if before.Process.Step() != after.Process.Step() {
		return true
	}
	gb, _ := before.Active()
	ga, _ := after.Active()
	return gb != ga
}

func (o *Orchestrator) react(m Machine) {
	switch p := m.Process.(type) {
	case PreparingContent:
		o.spawn(func() { o.prepare(p.Generation) })
	case PostingContent:
		o.spawn(func() { o.post(p.Generation, p.Content) })
	}
}

func (o *Orchestrator) spawn(fn func()) {
	o.effects.Add(1)
	go func() {
		defer o.effects.Done()
		fn()
	}()
}

func (o *Orchestrator) prepare(generation uint64) {
	// The handle can change between the request and now, so it is read here.
	h := o.source.Current()
	if h == nil {
		o.Dispatch(ContentPrepared{Content: nil, Generation: generation})
		return
	}

	ctx := o.ctx
	if o.exportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.exportTimeout)
		defer cancel()
	}

	content, err := o.export(ctx, h, o.campaignName())
	if err != nil {
		o.Dispatch(PreparingFailed{Generation: generation, Err: err})
		return
	}
	o.Dispatch(ContentPrepared{Content: content, Generation: generation})
}

func (o *Orchestrator) post(generation uint64, content model.Content) {
	if err := o.persister.Persist(o.ctx, content); err != nil {
		o.Dispatch(PersistingFailed{Generation: generation, Err: err})
		return
	}
	o.Dispatch(ContentPersisted{Generation: generation})
}
