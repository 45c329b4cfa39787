package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
)

// Simulator owns a body store and advances it through the fixed pipeline
// Force → Integrate → Collide → Trail. It is not safe for concurrent use.
type Simulator struct {
	store     *dynamo.Store
	params    dynamo.Params
	paused    bool
	ticks     int
	time      float64
	metrics   []Metric
	observers []Observer
}

func New(store *dynamo.Store, params dynamo.Params) *Simulator {
	if store == nil {
		store = dynamo.NewStore()
	}
	return &Simulator{
		store:     store,
		params:    params,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() dynamo.Params     { return s.params }
func (s *Simulator) SetParams(p dynamo.Params) { s.params = p }

func (s *Simulator) Insert(spec dynamo.BodySpec) (dynamo.BodyID, error) {
	return s.store.Insert(spec)
}

func (s *Simulator) Remove(id dynamo.BodyID) error { return s.store.Remove(id) }

// Query returns read-only copies of every body, trails included.
func (s *Simulator) Query() []dynamo.View { return s.store.Query() }

func (s *Simulator) States() []dynamo.State { return s.store.States() }
func (s *Simulator) Len() int               { return s.store.Len() }

// Reset drops every body and rewinds the clock.
func (s *Simulator) Reset() {
	s.store.Clear()
	s.ticks = 0
	s.time = 0
}

// SetTrailCapacity rebounds every existing trail.
func (s *Simulator) SetTrailCapacity(capacity int) {
	for _, b := range s.store.Bodies() {
		b.Trail.SetCapacity(capacity)
	}
}

func (s *Simulator) Pause()       { s.paused = true }
func (s *Simulator) Resume()      { s.paused = false }
func (s *Simulator) TogglePause() { s.paused = !s.paused }
func (s *Simulator) Paused() bool { return s.paused }

// Time is the simulated time elapsed; Ticks the number of ticks run.
func (s *Simulator) Time() float64 { return s.time }
func (s *Simulator) Ticks() int     { return s.ticks }

// Advance runs substeps ticks of dt with the given scheme. A paused
// simulator returns an empty report without touching any body.
func (s *Simulator) Advance(dt float64, scheme integrators.Scheme, substeps int) (Report, error) {
	if err := validateStep(dt, substeps); err != nil {
		return Report{}, err
	}
	if s.paused {
		return Report{}, nil
	}
	return s.advance(dt, scheme, substeps), nil
}

func (s *Simulator) advance(dt float64, scheme integrators.Scheme, substeps int) Report {
	var rep Report
	for i := 0; i < substeps; i++ {
		rep.Merges = append(rep.Merges, s.tick(dt, scheme)...)
		rep.Ticks++
	}
	return rep
}

// tick is one pass of the pipeline. Each phase returns only after every
// body is done, so the next phase sees complete results.
func (s *Simulator) tick(dt float64, scheme integrators.Scheme) []physics.Merge {
	workers := s.params.WorkerCount()

	physics.Accumulate(s.store, s.params)
	integrators.Apply(s.store, scheme, dt, workers)
	merges := physics.Resolve(s.store)
	physics.Track(s.store, workers)

	s.ticks++
	s.time += dt
	return merges
}

func validateStep(dt float64, substeps int) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", dynamo.ErrInvalidStep, dt)
	}
	if substeps < 1 {
		return fmt.Errorf("%w: got %d", dynamo.ErrInvalidSubsteps, substeps)
	}
	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if err := validateStep(cfg.Dt, cfg.Substeps); err != nil {
		return err
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record interval must not be negative, got %d", cfg.RecordEvery)
	}
	return nil
}

// Run advances the simulator for cfg.Duration of simulated time, recording
// frames, merges and metrics. The pause flag is ignored; pausing belongs to
// interactive drivers calling Advance.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	frameDt := cfg.Dt * float64(cfg.Substeps)
	frames := int(math.Round(cfg.Duration / frameDt))
	recordEvery := max(cfg.RecordEvery, 1)

	result := &Result{
		Frames:  make([]Frame, 0, frames/recordEvery+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	states := s.store.States()
	result.Frames = append(result.Frames, Frame{Time: s.time, Bodies: states})
	s.observe(states)
	initialEnergy := physics.TotalEnergy(states, s.params)

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		rep := s.advance(cfg.Dt, cfg.Scheme, cfg.Substeps)
		result.Merges = append(result.Merges, rep.Merges...)
		result.StepsTaken += rep.Ticks

		if cfg.ValidateState {
			if bad, ok := s.store.CheckFinite(); !ok {
				result.Errors = append(result.Errors, &dynamo.SimulationError{
					Step:    s.ticks,
					Time:    s.time,
					Body:    bad,
					Wrapped: dynamo.ErrInvalidState,
				})
				break
			}
		}

		states = s.store.States()
		s.observe(states)
		if (i+1)%recordEvery == 0 || i == frames-1 {
			result.Frames = append(result.Frames, Frame{Time: s.time, Bodies: states})
		}
	}

	finalEnergy := physics.TotalEnergy(s.store.States(), s.params)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) observe(states []dynamo.State) {
	for _, m := range s.metrics {
		m.Observe(states, s.time)
	}
	for _, obs := range s.observers {
		obs.OnFrame(states, s.time)
	}
}

// RunWithCallback advances frame by frame until the callback returns false,
// the context ends or cfg.Duration elapses.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(views []dynamo.View, t float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	end := s.time + cfg.Duration
	for s.time < end {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		if !callback(s.store.Query(), s.time) {
			return nil
		}

		s.advance(cfg.Dt, cfg.Scheme, cfg.Substeps)

		if cfg.ValidateState {
			if bad, ok := s.store.CheckFinite(); !ok {
				return &dynamo.SimulationError{Step: s.ticks, Time: s.time, Body: bad, Wrapped: dynamo.ErrInvalidState}
			}
		}
	}

	return nil
}
