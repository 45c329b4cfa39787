package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
)

func testParams() dynamo.Params {
	return dynamo.Params{G: 6.674, Epsilon: 1e-9, Workers: 2}
}

func mustInsert(t *testing.T, s *Simulator, spec dynamo.BodySpec) dynamo.BodyID {
	t.Helper()
	id, err := s.Insert(spec)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	return id
}

func findState(states []dynamo.State, id dynamo.BodyID) (dynamo.State, bool) {
	for _, st := range states {
		if st.ID == id {
			return st, true
		}
	}
	return dynamo.State{}, false
}

func TestAdvance_InvalidArguments(t *testing.T) {
	s := New(nil, testParams())

	tests := []struct {
		name     string
		dt       float64
		substeps int
		err      error
	}{
		{"zero dt", 0, 1, dynamo.ErrInvalidStep},
		{"negative dt", -0.1, 1, dynamo.ErrInvalidStep},
		{"NaN dt", math.NaN(), 1, dynamo.ErrInvalidStep},
		{"zero substeps", 0.1, 0, dynamo.ErrInvalidSubsteps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Advance(tt.dt, integrators.Verlet, tt.substeps); !errors.Is(err, tt.err) {
				t.Errorf("Advance() error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestAdvance_PairwiseAttraction(t *testing.T) {
	s := New(nil, testParams())
	heavy := mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{0, 0}, Mass: 100, Radius: 1})
	light := mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{50, 0}, Mass: 1, Radius: 1})

	if _, err := s.Advance(1, integrators.Euler, 1); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	states := s.States()
	h, _ := findState(states, heavy)
	l, _ := findState(states, light)

	if want := 6.674 * 1 / 2500; math.Abs(h.Vel[0]-want) > 1e-12 || h.Vel[1] != 0 {
		t.Errorf("heavy Vel = %v, want [%v 0]", h.Vel, want)
	}
	if want := -6.674 * 100 / 2500; math.Abs(l.Vel[0]-want) > 1e-12 || l.Vel[1] != 0 {
		t.Errorf("light Vel = %v, want [%v 0]", l.Vel, want)
	}
	if h.Pos[0] <= 0 || l.Pos[0] >= 50 {
		t.Errorf("bodies did not move toward each other: %v, %v", h.Pos, l.Pos)
	}
}

func TestAdvance_Paused(t *testing.T) {
	s := New(nil, testParams())
	id := mustInsert(t, s, dynamo.BodySpec{Vel: mgl64.Vec2{1, 0}, Mass: 1, Radius: 1})

	s.Pause()
	rep, err := s.Advance(1, integrators.Verlet, 5)
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if rep.Ticks != 0 || s.Ticks() != 0 || s.Time() != 0 {
		t.Errorf("paused advance ran %d ticks", rep.Ticks)
	}
	st, _ := findState(s.States(), id)
	if st.Pos != (mgl64.Vec2{}) {
		t.Errorf("paused body moved to %v", st.Pos)
	}

	s.TogglePause()
	if s.Paused() {
		t.Fatal("TogglePause() did not resume")
	}
	rep, _ = s.Advance(0.5, integrators.Verlet, 4)
	if rep.Ticks != 4 || s.Ticks() != 4 || math.Abs(s.Time()-2) > 1e-12 {
		t.Errorf("ticks = %d/%d time = %v, want 4/4 and 2", rep.Ticks, s.Ticks(), s.Time())
	}
}

func TestAdvance_TrailBound(t *testing.T) {
	const capacity, n = 5, 12
	s := New(nil, testParams())
	id := mustInsert(t, s, dynamo.BodySpec{Vel: mgl64.Vec2{1, 0}, Mass: 1, Radius: 1, TrailCapacity: capacity})

	for i := 0; i < n; i++ {
		if _, err := s.Advance(1, integrators.Euler, 1); err != nil {
			t.Fatal(err)
		}
	}

	var trail []mgl64.Vec2
	for _, v := range s.Query() {
		if v.ID == id {
			trail = v.Trail
		}
	}
	if len(trail) != capacity {
		t.Fatalf("trail length = %d, want %d", len(trail), capacity)
	}
	if want := float64(n - capacity + 1); trail[0][0] != want {
		t.Errorf("oldest point = %v, want position after tick %v", trail[0], want)
	}
}

func TestAdvance_MergeReport(t *testing.T) {
	s := New(nil, testParams())
	a := mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{0, 0}, Vel: mgl64.Vec2{1, 0}, Mass: 10, Radius: 2})
	b := mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{3, 0}, Vel: mgl64.Vec2{-1, 0}, Mass: 10, Radius: 2})

	rep, err := s.Advance(0.01, integrators.Verlet, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Merges) != 1 || rep.Merges[0].A != a || rep.Merges[0].B != b {
		t.Fatalf("merges = %+v, want one merge of %d and %d", rep.Merges, a, b)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	m := s.States()[0]
	if m.Mass != 20 || !m.Vel.ApproxEqualThreshold(mgl64.Vec2{}, 1e-12) {
		t.Errorf("merged = %+v, want mass 20 at rest", m)
	}
	if want := math.Cbrt(16); math.Abs(m.Radius-want) > 1e-12 {
		t.Errorf("merged radius = %v, want %v", m.Radius, want)
	}
}

func TestSimulator_RemoveAndReset(t *testing.T) {
	s := New(nil, testParams())
	id := mustInsert(t, s, dynamo.BodySpec{Mass: 1, Radius: 1})
	if err := s.Remove(id); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(id); !errors.Is(err, dynamo.ErrUnknownBody) {
		t.Errorf("Remove() twice error = %v, want ErrUnknownBody", err)
	}

	mustInsert(t, s, dynamo.BodySpec{Mass: 1, Radius: 1})
	_, _ = s.Advance(1, integrators.Verlet, 3)
	s.Reset()
	if s.Len() != 0 || s.Ticks() != 0 || s.Time() != 0 {
		t.Errorf("Reset() left len=%d ticks=%d time=%v", s.Len(), s.Ticks(), s.Time())
	}
}

func TestSimulator_SetTrailCapacity(t *testing.T) {
	s := New(nil, testParams())
	mustInsert(t, s, dynamo.BodySpec{Vel: mgl64.Vec2{1, 0}, Mass: 1, Radius: 1, TrailCapacity: 50})
	_, _ = s.Advance(1, integrators.Euler, 20)
	s.SetTrailCapacity(3)
	if got := len(s.Query()[0].Trail); got != 3 {
		t.Errorf("trail length = %d, want 3", got)
	}
}

type countMetric struct {
	frames int
	last   int
}

func (c *countMetric) Name() string { return "bodies" }
func (c *countMetric) Observe(states []dynamo.State, t float64) {
	c.frames++
	c.last = len(states)
}
func (c *countMetric) Value() float64 { return float64(c.last) }
func (c *countMetric) Reset()         { c.frames, c.last = 0, 0 }

func TestSimulatorRun(t *testing.T) {
	s := New(nil, testParams())
	mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{0, 0}, Mass: 1000, Radius: 5})
	mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{200, 0}, Vel: mgl64.Vec2{0, 5}, Mass: 1, Radius: 1})

	metric := &countMetric{}
	s.AddMetric(metric)

	cfg := Config{Dt: 0.1, Duration: 10, Substeps: 2, Scheme: integrators.Verlet, RecordEvery: 10, ValidateState: true}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// 10 / (0.1*2) = 50 frames, recorded every 10 plus the initial frame.
	if len(result.Frames) != 6 {
		t.Errorf("expected 6 recorded frames, got %d", len(result.Frames))
	}
	if result.StepsTaken != 100 {
		t.Errorf("expected 100 ticks, got %d", result.StepsTaken)
	}
	if metric.frames != 51 {
		t.Errorf("expected 51 observations, got %d", metric.frames)
	}
	if result.Metrics["bodies"] != 2 {
		t.Errorf("metric bodies = %v, want 2", result.Metrics["bodies"])
	}
	times := result.Times()
	if math.Abs(times[len(times)-1]-10) > 1e-9 {
		t.Errorf("final time = %v, want 10", times[len(times)-1])
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(nil, testParams())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0, Substeps: 1}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0, Substeps: 1}},
		{"zero duration", Config{Dt: 0.1, Duration: 0, Substeps: 1}},
		{"zero substeps", Config{Dt: 0.1, Duration: 1, Substeps: 0}},
		{"negative record interval", Config{Dt: 0.1, Duration: 1, Substeps: 1, RecordEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorRun_Canceled(t *testing.T) {
	s := New(nil, testParams())
	mustInsert(t, s, dynamo.BodySpec{Mass: 1, Radius: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, DefaultConfig())
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context cancellation", err)
	}
	if result == nil || len(result.Frames) != 1 {
		t.Error("canceled run should return the initial frame")
	}
}

func TestSimulatorRun_InvalidState(t *testing.T) {
	p := testParams()
	p.G = math.Inf(1)
	s := New(nil, p)
	mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{0, 0}, Mass: 1, Radius: 1})
	mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{10, 0}, Mass: 1, Radius: 1})

	result, err := s.Run(context.Background(), Config{Dt: 1, Duration: 5, Substeps: 1, ValidateState: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want one invalid-state error", result.Errors)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(result.Errors[0], &simErr) || !errors.Is(simErr, dynamo.ErrInvalidState) {
		t.Errorf("error = %v, want SimulationError wrapping ErrInvalidState", result.Errors[0])
	}
	if result.StepsTaken != 1 {
		t.Errorf("StepsTaken = %d, want run to stop after 1", result.StepsTaken)
	}
}

func TestRunWithCallback(t *testing.T) {
	s := New(nil, testParams())
	mustInsert(t, s, dynamo.BodySpec{Vel: mgl64.Vec2{1, 0}, Mass: 1, Radius: 1})

	calls := 0
	err := s.RunWithCallback(context.Background(), Config{Dt: 1, Duration: 100, Substeps: 1}, func(views []dynamo.View, t float64) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatalf("RunWithCallback() error = %v", err)
	}
	if calls != 5 || s.Ticks() != 4 {
		t.Errorf("calls = %d ticks = %d, want 5 and 4", calls, s.Ticks())
	}
}

func TestRunWithCallback_Canceled(t *testing.T) {
	s := New(nil, testParams())
	mustInsert(t, s, dynamo.BodySpec{Mass: 1, Radius: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.RunWithCallback(ctx, DefaultConfig(), func([]dynamo.View, float64) bool { return true })
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("RunWithCallback() error = %v, want context cancellation", err)
	}
	if s.Ticks() != 0 {
		t.Errorf("ticks = %d, want 0", s.Ticks())
	}
}

func TestPredict(t *testing.T) {
	s := New(nil, testParams())
	star := mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{0, 0}, Mass: 1000, Radius: 10})
	before := s.Query()

	spec := dynamo.BodySpec{Pos: mgl64.Vec2{100, 0}, Vel: mgl64.Vec2{0, 8}, Mass: 1, Radius: 1}
	path, err := s.Predict(spec, 0.1, integrators.Verlet, 50)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(path) != 51 {
		t.Errorf("path length = %d, want 51", len(path))
	}
	if path[0] != spec.Pos {
		t.Errorf("path starts at %v, want %v", path[0], spec.Pos)
	}
	if path[len(path)-1][1] <= 0 {
		t.Errorf("preview did not follow its velocity: %v", path[len(path)-1])
	}

	after := s.Query()
	if len(after) != 1 || after[0].ID != star || after[0].Pos != before[0].Pos || len(after[0].Trail) != len(before[0].Trail) {
		t.Error("Predict() modified the store")
	}
	if s.Ticks() != 0 {
		t.Error("Predict() advanced the clock")
	}
}

func TestPredict_StopsAtImpact(t *testing.T) {
	s := New(nil, testParams())
	mustInsert(t, s, dynamo.BodySpec{Pos: mgl64.Vec2{0, 0}, Mass: 1000, Radius: 10})

	path, err := s.Predict(dynamo.BodySpec{Pos: mgl64.Vec2{30, 0}, Vel: mgl64.Vec2{-5, 0}, Mass: 1, Radius: 1}, 0.05, integrators.Euler, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(path) >= 1001 {
		t.Errorf("path length = %d, want early stop at impact", len(path))
	}
	if last := path[len(path)-1]; last.Len() > 11 {
		t.Errorf("path ends at %v, outside the impact radius", last)
	}
}

func TestPredict_Invalid(t *testing.T) {
	s := New(nil, testParams())
	if _, err := s.Predict(dynamo.BodySpec{Mass: 1, Radius: 0}, 0.1, integrators.Verlet, 10); !errors.Is(err, dynamo.ErrInvalidRadius) {
		t.Errorf("Predict() error = %v, want ErrInvalidRadius", err)
	}
	if _, err := s.Predict(dynamo.BodySpec{Mass: 1, Radius: 1}, 0, integrators.Verlet, 10); !errors.Is(err, dynamo.ErrInvalidStep) {
		t.Errorf("Predict() error = %v, want ErrInvalidStep", err)
	}
	if _, err := s.Predict(dynamo.BodySpec{Mass: 1, Radius: 1}, 0.1, integrators.Verlet, -5); !errors.Is(err, dynamo.ErrInvalidSteps) {
		t.Errorf("Predict() error = %v, want ErrInvalidSteps", err)
	}

	path, err := s.Predict(dynamo.BodySpec{Pos: mgl64.Vec2{3, 4}, Mass: 1, Radius: 1}, 0.1, integrators.Verlet, 0)
	if err != nil {
		t.Fatalf("Predict() with zero steps error = %v", err)
	}
	if len(path) != 1 || path[0] != (mgl64.Vec2{3, 4}) {
		t.Errorf("zero-step path = %v, want only the start", path)
	}
}

func TestRunVariants(t *testing.T) {
	base := dynamo.NewStore()
	_, _ = base.Insert(dynamo.BodySpec{Pos: mgl64.Vec2{0, 0}, Mass: 1000, Radius: 5})
	_, _ = base.Insert(dynamo.BodySpec{Pos: mgl64.Vec2{100, 0}, Vel: mgl64.Vec2{0, 8}, Mass: 1, Radius: 1})

	euler := Config{Dt: 0.1, Duration: 5, Substeps: 1, Scheme: integrators.Euler, RecordEvery: 1}
	verlet := euler
	verlet.Scheme = integrators.Verlet

	results, err := RunVariants(context.Background(), base, testParams(), []Config{euler, verlet}, func() []Metric {
		return []Metric{&countMetric{}}
	})
	if err != nil {
		t.Fatalf("RunVariants() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 50 {
			t.Errorf("result %d StepsTaken = %d, want 50", i, r.StepsTaken)
		}
		if r.Metrics["bodies"] != 2 {
			t.Errorf("result %d missing metric", i)
		}
	}
	if base.States()[1].Pos != (mgl64.Vec2{100, 0}) {
		t.Error("RunVariants() mutated the base store")
	}

	_, err = RunVariants(context.Background(), base, testParams(), []Config{euler, {Dt: 0}}, nil)
	if err == nil {
		t.Error("RunVariants() with invalid config returned nil error")
	}
}
