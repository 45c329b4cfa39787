package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/config"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	preset      string
	dt          float64
	duration    float64
	substeps    int
	integrator  string
	workers     int
	gravity     float64
	recordEvery int
	trailLength int

	logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbitsim",
		Short: "2d n-body gravity simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(os.Stderr, verbose)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbitsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log simulation events")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario and save the recorded frames",
		RunE:  runSimulation,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().IntVar(&watchFPS, "watch", 0, "redraw bodies in the terminal at this frame rate")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the run")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run every scenario in a batch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the runs")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive simulation in the terminal",
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)
	liveCmd.Flags().StringVar(&logFile, "log", "", "write event log to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and body count of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().Uint64Var(&plotBody, "body", 0, "also plot the coordinates of this body")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json or svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate the orbital period of a body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Uint64Var(&analyzeBody, "body", 2, "body to analyze")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput for growing body counts",
		RunE:  benchTicks,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "bodies", []int{10, 50, 100, 200, 400}, "body counts")
	benchCmd.Flags().IntVar(&benchTicksN, "ticks", 100, "ticks per size")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "run the same scenario with several integrators",
		RunE:  compareIntegrators,
	}
	scenarioFlags(compareCmd)

	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "preview the path of a body before placing it",
		RunE:  predictPath,
	}
	scenarioFlags(predictCmd)
	predictCmd.Flags().Float64SliceVar(&probePos, "pos", []float64{0, 0}, "probe position x,y")
	predictCmd.Flags().Float64SliceVar(&probeVel, "vel", []float64{0, 0}, "probe velocity vx,vy")
	predictCmd.Flags().Float64Var(&probeRadius, "radius", config.DefaultRadius, "probe radius")
	predictCmd.Flags().Float64Var(&probeMass, "mass", 1, "probe mass")
	predictCmd.Flags().IntVar(&probeSteps, "steps", 500, "preview steps")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate how sensitive a scenario is to a small nudge",
		RunE:  estimateLyapunov,
	}
	scenarioFlags(lyapunovCmd)
	lyapunovCmd.Flags().Uint64Var(&lyapunovBody, "body", 1, "body to perturb")
	lyapunovCmd.Flags().Float64Var(&perturbation, "delta", 1e-6, "initial displacement")

	rootCmd.AddCommand(runCmd, batchCmd, liveCmd, listCmd, plotCmd, exportCmd, analyzeCmd, benchCmd, presetsCmd, compareCmd, predictCmd, lyapunovCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scenario")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "ticks per frame")
	cmd.Flags().StringVar(&integrator, "integrator", "verlet", "euler or verlet")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	cmd.Flags().Float64Var(&gravity, "g", 0, "gravitational constant")
	cmd.Flags().IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "record every n-th frame")
	cmd.Flags().IntVar(&trailLength, "trail", 0, "trail length")
}

// loadScenario resolves preset, then config file, then explicitly set flags.
func loadScenario(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset == "" && configFile == "" {
		cfg = config.GetPreset("binary")
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("workers") {
		cfg.Physics.Workers = workers
	}
	if flags.Changed("g") {
		cfg.Physics.G = gravity
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if flags.Changed("trail") {
		cfg.TrailLength = trailLength
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
