package agent

import (
	"fmt"
	"time"

	"lcgwalk/domain/core"
	"lcgwalk/domain/motion"
	"lcgwalk/domain/sequence"
	"lcgwalk/internal"
	"lcgwalk/internal/validation"
	"lcgwalk/internal/walk"
	"lcgwalk/ports"
)

// Config holds the walker's movement and validation parameters. The seed in
// Validation.Generator is replaced by the walker's seed source.
type Config struct {
	Validation   validation.ValidationConfig
	StepDuration time.Duration
	Threshold    float64
	WalkSpeed    float64
	PursuitSpeed float64
}

// DefaultConfig mirrors the defaults of the configuration layer.
func DefaultConfig() Config {
	return Config{
		Validation:   validation.DefaultValidationConfig(),
		StepDuration: 1500 * time.Millisecond,
		Threshold:    walk.DefaultThreshold,
		WalkSpeed:    1.5,
		PursuitSpeed: 2.0,
	}
}

// Option configures a Walker.
type Option func(*Walker)

// WithID sets the agent identifier.
func WithID(id core.AgentID) Option { return func(w *Walker) { w.id = id } }

// WithSeedSource overrides the clock-derived seed.
func WithSeedSource(src ports.SeedSource) Option { return func(w *Walker) { w.seeds = src } }

// WithSensor sets the perception component.
func WithSensor(s ports.TargetSensor) Option { return func(w *Walker) { w.sensor = s } }

// WithEngagement sets the engagement service notified on detection changes.
func WithEngagement(e ports.EngagementService) Option { return func(w *Walker) { w.engagement = e } }

// WithPosition sets the starting position.
func WithPosition(p motion.Vec2) Option { return func(w *Walker) { w.position = p } }

// WithObserver subscribes obs before validation runs, so it also sees the
// sequence-ready signal.
func WithObserver(obs Observer) Option {
	return func(w *Walker) { w.initial = append(w.initial, obs) }
}

// WithLogger sets the logger.
func WithLogger(l *internal.Logger) Option { return func(w *Walker) { w.logger = l } }

// WithValidationOptions passes options through to the orchestrator.
func WithValidationOptions(opts ...validation.Option) Option {
	return func(w *Walker) { w.validationOpts = append(w.validationOpts, opts...) }
}

// Walker is a random-walk movement behaviour driven by a validated LCG
// sequence. A walker is owned by one goroutine; Tick is not safe for
// concurrent use.
type Walker struct {
	id     core.AgentID
	config Config
	mapper walk.Mapper

	seeds          ports.SeedSource
	sensor         ports.TargetSensor
	engagement     ports.EngagementService
	logger         *internal.Logger
	validationOpts []validation.Option

	session *sequence.Session
	cursor  *walk.Cursor
	signals *Signals
	initial []Observer
	subs    []*Subscription

	position  motion.Vec2
	intent    motion.Intent
	facing    motion.Vec2
	detecting bool
	stopped   bool
}

// NewWalker validates config, derives a seed and runs the validation search
// to completion. Configuration errors are returned before the search starts;
// an exhausted search is not an error, the walker just holds position.
func NewWalker(config Config, opts ...Option) (*Walker, error) {
	mapper, err := walk.NewMapper(config.Threshold)
	if err != nil {
		return nil, err
	}
	if config.StepDuration <= 0 {
		return nil, fmt.Errorf("%w: got %s", core.ErrInvalidStepDuration, config.StepDuration)
	}

	w := &Walker{
		config:  config,
		mapper:  mapper,
		logger:  internal.DefaultLogger,
		signals: NewSignals(),
		facing:  motion.Down.Vector(),
		intent:  motion.Intent{Mode: motion.ModeIdle},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.id.String() == "" {
		w.id = core.NewAgentID()
	}
	if w.seeds == nil {
		w.seeds = NewClockSeed(w.id)
	}
	w.logger = w.logger.With("walker " + w.id.Short())

	vcfg := config.Validation
	vcfg.Generator = vcfg.Generator.WithSeed(w.seeds.NextSeed())

	orch, err := validation.NewValidationOrchestrator(vcfg, append([]validation.Option{validation.WithLogger(w.logger)}, w.validationOpts...)...)
	if err != nil {
		return nil, err
	}

	for _, obs := range w.initial {
		w.subs = append(w.subs, w.signals.Subscribe(obs))
	}

	w.session = orch.Run()
	if seq, ok := w.session.Sequence(); ok {
		w.cursor, err = walk.NewCursor(seq, w.mapper, config.StepDuration)
		if err != nil {
			return nil, err
		}
		w.signals.Emit(Event{Kind: EventSequenceReady, Agent: w.id, Session: w.session})
	} else {
		w.logger.Warn("%v; holding position", w.session.Err())
		w.signals.Emit(Event{Kind: EventSequenceExhausted, Agent: w.id, Session: w.session})
	}
	return w, nil
}

// ID returns the agent identifier.
func (w *Walker) ID() core.AgentID { return w.id }

// Session returns the finished validation session.
func (w *Walker) Session() *sequence.Session { return w.session }

// SequenceReady reports whether an accepted sequence drives the walk.
func (w *Walker) SequenceReady() bool { return w.cursor != nil }

// Intent returns the intent produced by the last tick.
func (w *Walker) Intent() motion.Intent { return w.intent }

// Direction returns the direction vector produced by the last tick.
func (w *Walker) Direction() motion.Vec2 { return w.intent.Direction }

// Facing returns the last non-zero movement direction, initially down.
func (w *Walker) Facing() motion.Vec2 { return w.facing }

// Position returns the walker's position.
func (w *Walker) Position() motion.Vec2 { return w.position }

// SetPosition lets the movement-application component report where the
// walker actually ended up.
func (w *Walker) SetPosition(p motion.Vec2) { w.position = p }

// Detecting reports whether the target was detected on the last tick.
func (w *Walker) Detecting() bool { return w.detecting }

// Cursor exposes the sequence cursor; nil when validation was exhausted.
func (w *Walker) Cursor() *walk.Cursor { return w.cursor }

// Subscribe registers obs for future events.
func (w *Walker) Subscribe(obs Observer) *Subscription {
	return w.signals.Subscribe(obs)
}

// Tick consults the sensor (if any) and advances one step of length dt.
func (w *Walker) Tick(dt time.Duration) motion.Intent {
	var p ports.Perception
	if w.sensor != nil && !w.stopped {
		p = w.sensor.Sense(w.position)
	}
	return w.Step(dt, p)
}

// Step advances one step of length dt with an explicit perception reading.
//
// A detected target overrides the walk: the walker heads straight for it at
// pursuit speed, the cursor does not advance and its timer is expired so the
// walk resumes with a fresh sample once the target is lost.
func (w *Walker) Step(dt time.Duration, p ports.Perception) motion.Intent {
	if w.stopped {
		w.setIntent(motion.Intent{Mode: motion.ModeIdle})
		return w.intent
	}

	var next motion.Intent
	switch {
	case p.TargetDetected:
		if w.cursor != nil {
			w.cursor.Expire()
		}
		next = motion.Intent{
			Direction: p.TargetPosition.Sub(w.position).Normalize(),
			Heading:   motion.Hold,
			Speed:     w.config.PursuitSpeed,
			Mode:      motion.ModePursuit,
		}
	case w.cursor != nil:
		heading, _ := w.cursor.Tick(dt)
		next = motion.Intent{Heading: heading, Mode: motion.ModeIdle}
		if heading != motion.Hold {
			next.Direction = heading.Vector()
			next.Speed = w.config.WalkSpeed
			next.Mode = motion.ModeWalk
		}
	default:
		next = motion.Intent{Mode: motion.ModeIdle}
	}

	w.setIntent(next)
	w.updateEngagement(p.TargetDetected)
	return w.intent
}

// Stop halts the walker for good and releases any engagement.
func (w *Walker) Stop() {
	if w.stopped {
		return
	}
	w.stopped = true
	w.updateEngagement(false)
	w.setIntent(motion.Intent{Mode: motion.ModeIdle})
}

// Stopped reports whether Stop was called.
func (w *Walker) Stopped() bool { return w.stopped }

// Close tears the walker down: it stops, releases engagement and drops every
// observer registration.
func (w *Walker) Close() error {
	w.Stop()
	for _, sub := range w.subs {
		sub.Unsubscribe()
	}
	w.subs = nil
	w.signals.Clear()
	return nil
}

// setIntent records next and announces it when the mode, the walk heading or
// the movement vector changed. Pursuit keeps Heading at Hold, so a target that
// moves is announced through the vector.
func (w *Walker) setIntent(next motion.Intent) {
	prev := w.intent
	w.intent = next
	if next.Direction.Len() > 0.1 {
		w.facing = next.Direction.Normalize()
	}
	if prev.Mode != next.Mode || prev.Heading != next.Heading || prev.Direction != next.Direction {
		w.signals.Emit(Event{Kind: EventDirectionChanged, Agent: w.id, Intent: next})
	}
}

func (w *Walker) updateEngagement(detecting bool) {
	if w.engagement != nil {
		switch {
		case detecting && !w.detecting:
			w.engagement.Request(w.id)
		case !detecting && w.detecting:
			w.engagement.Release(w.id)
		}
	}
	w.detecting = detecting
}
