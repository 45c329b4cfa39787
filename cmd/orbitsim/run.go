package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
)

var (
	watchFPS     int
	noSave       bool
	logFile      string
	benchSizes   []int
	benchTicksN  int
	probePos     []float64
	probeVel     []float64
	probeRadius  float64
	probeMass    float64
	probeSteps   int
	perturbation float64
	lyapunovBody uint64
)

func logMerge(m physics.Merge) {
	logger.Debug("merge",
		"a", m.A,
		"b", m.B,
		"into", m.Result.ID,
		"mass", m.Result.Mass,
		"radius", m.Result.Radius,
	)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = simulate(ctx, cfg)
	return err
}

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := config.LoadBatch(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(titleStyle.Render(fmt.Sprintf("batch %s: %d steps", batch.Name, len(batch.Steps))))
	if batch.Description != "" {
		fmt.Println(batch.Description)
	}

	var ids []string
	for i, cfg := range batch.Steps {
		fmt.Printf("\n[%d/%d] ", i+1, len(batch.Steps))
		id, err := simulate(ctx, cfg)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, cfg.Name, err)
		}
		if id != "" {
			ids = append(ids, id)
		}
		if ctx.Err() != nil {
			logger.Warn("batch interrupted", "completed", i+1, "steps", len(batch.Steps))
			break
		}
	}

	if len(ids) > 0 {
		fmt.Printf("\nsaved runs: %s\n", strings.Join(ids, ", "))
	}
	return nil
}

// simulate runs cfg to completion or cancellation and saves the result
// unless --no-save is set. It returns the run id when saved.
func simulate(ctx context.Context, cfg *config.Config) (string, error) {
	store, err := cfg.BuildStore()
	if err != nil {
		return "", err
	}

	initial := store.Len()
	params := cfg.Params()
	s := sim.New(store, params)
	for _, m := range metrics.Default(params) {
		s.AddMetric(m)
	}
	if watchFPS > 0 {
		printer := viz.NewFramePrinter(os.Stdout, cfg.Name, watchFPS)
		printer.Start()
		defer printer.Stop()
		s.AddObserver(printer)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("running %s (%d bodies, %s)", cfg.Name, initial, cfg.Scheme())))
	logger.Info("run started", "scenario", cfg.Name, "dt", cfg.Dt, "duration", cfg.Duration, "substeps", cfg.Substeps)
	start := time.Now()

	result, err := s.Run(ctx, cfg.SimConfig())
	if err != nil && !errors.Is(err, dynamo.ErrContextCanceled) {
		return "", err
	}
	if err != nil {
		logger.Warn("run interrupted", "err", err)
	}
	elapsed := time.Since(start)

	for _, m := range result.Merges {
		logMerge(m)
	}
	for _, e := range result.Errors {
		logger.Warn("run stopped early", "err", e)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("ticks: %d\n", result.StepsTaken)
	fmt.Printf("frames: %d\n", len(result.Frames))
	fmt.Printf("merges: %d\n", len(result.Merges))
	fmt.Printf("bodies: %d\n", s.Len())
	printMetrics(result.Metrics)

	if noSave {
		return "", nil
	}

	st := storage.New(dataDir)
	runID, err := st.Save(storage.RunMetadata{
		Name:       cfg.Name,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Substeps:   cfg.Substeps,
		Integrator: cfg.Scheme().String(),
		G:          params.G,
		K:          params.K,
		Bodies:     initial,
	}, result)
	if err != nil {
		return "", err
	}
	logger.Info("run saved", "id", runID, "dir", dataDir)
	fmt.Printf("run id: %s\n", runID)
	return runID, nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("preset") && configFile == "" {
		preset = "single"
	}
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	store, err := cfg.BuildStore()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so events go to a file or nowhere.
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = newLogger(f, true)
	} else {
		logger = newLogger(io.Discard, false)
	}

	m := viz.NewModel(sim.New(store, cfg.Params()), viz.SettingsFromConfig(cfg))
	m.OnMerge = logMerge

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		logger.Warn("live session ended with error", "err", fm.Err())
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	store, err := cfg.BuildStore()
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = integrators.Schemes()
	}

	cfgs := make([]sim.Config, 0, len(names))
	for _, name := range names {
		scheme, err := integrators.ParseScheme(name)
		if err != nil {
			return err
		}
		sc := cfg.SimConfig()
		sc.Scheme = scheme
		cfgs = append(cfgs, sc)
	}

	params := cfg.Params()
	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1f, %d bodies)\n\n", cfg.Name, cfg.Dt, cfg.Duration, store.Len())

	start := time.Now()
	results, err := sim.RunVariants(cmd.Context(), store, params, cfgs, func() []sim.Metric {
		return metrics.Default(params)
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("%-10s  %-14s  %-14s  %-14s  %-8s\n", "integrator", "energy_drift", "momentum_drift", "ang_mom_drift", "merges")
	fmt.Println(strings.Repeat("-", 68))
	for i, res := range results {
		fmt.Printf("%-10s  %14.4e  %14.4e  %14.4e  %8d\n",
			cfgs[i].Scheme,
			res.Metrics["energy_drift"],
			res.Metrics["momentum_drift"],
			res.Metrics["angular_momentum_drift"],
			len(res.Merges),
		)
	}
	fmt.Printf("\nall variants finished in %v\n", elapsed)
	return nil
}

func predictPath(cmd *cobra.Command, args []string) error {
	if len(probePos) != 2 || len(probeVel) != 2 {
		return fmt.Errorf("--pos and --vel take two values")
	}
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	store, err := cfg.BuildStore()
	if err != nil {
		return err
	}

	s := sim.New(store, cfg.Params())
	spec := dynamo.BodySpec{
		Pos:    mgl64.Vec2{probePos[0], probePos[1]},
		Vel:    mgl64.Vec2{probeVel[0], probeVel[1]},
		Mass:   probeMass,
		Radius: probeRadius,
	}
	path, err := s.Predict(spec, cfg.Dt, cfg.Scheme(), probeSteps)
	if err != nil {
		return err
	}

	end := path[len(path)-1]
	fmt.Printf("preview in %s: %d of %d steps\n", cfg.Name, len(path)-1, probeSteps)
	if len(path)-1 < probeSteps {
		fmt.Println("path ends in a collision")
	}
	fmt.Printf("final position: (%.3f, %.3f)\n\n", end[0], end[1])

	points := append([]mgl64.Vec2(nil), path...)
	for _, v := range s.Query() {
		points = append(points, v.Pos)
	}
	fmt.Print(analysis.TrajectoryToASCII(points, 70, 20))
	return nil
}

func estimateLyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	store, err := cfg.BuildStore()
	if err != nil {
		return err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	lambda, err := analysis.LyapunovExponent(store, cfg.Params(), cfg.Scheme(), dynamo.BodyID(lyapunovBody), cfg.Dt, steps, perturbation)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", cfg.Name)
	fmt.Printf("largest lyapunov exponent: %.6g\n", lambda)
	if lambda > 0 {
		fmt.Println("nearby configurations diverge")
	} else {
		fmt.Println("nearby configurations stay close")
	}
	return nil
}

// ring builds n bodies on a circle, each orbiting the centre of mass of the
// rest roughly.
func ring(n int) *dynamo.Store {
	store := dynamo.NewStore()
	const radius = 10000.0
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		dir := mgl64.Vec2{math.Cos(angle), math.Sin(angle)}
		store.Insert(dynamo.BodySpec{
			Pos:    dir.Mul(radius),
			Vel:    mgl64.Vec2{-dir[1], dir[0]}.Mul(2),
			Mass:   100,
			Radius: 1,
		})
	}
	return store
}

func benchTicks(cmd *cobra.Command, args []string) error {
	params := dynamo.DefaultParams()
	params.Workers = workers

	fmt.Printf("benchmarking %d ticks per size with %d workers\n\n", benchTicksN, params.WorkerCount())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tSCHEME\tTICKS\tTIME\tTICKS/SEC\tPAIRS/SEC")

	for _, n := range benchSizes {
		for _, scheme := range []integrators.Scheme{integrators.Euler, integrators.Verlet} {
			s := sim.New(ring(n), params)

			start := time.Now()
			if _, err := s.Advance(0.01, scheme, benchTicksN); err != nil {
				return err
			}
			elapsed := time.Since(start)

			tps := float64(benchTicksN) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.0f\t%.3g\n",
				n, scheme, benchTicksN, elapsed.Round(time.Microsecond), tps, tps*float64(n*(n-1)))
		}
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tINTEG\tDT\tSUBSTEPS\tDURATION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%g\t%d\t%g\n",
			name, len(cfg.BodySpecs()), cfg.Scheme(), cfg.Dt, cfg.Substeps, cfg.Duration)
	}
	return w.Flush()
}
