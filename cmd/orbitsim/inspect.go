package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
)

var (
	plotBody     uint64
	analyzeBody  uint64
	outFile      string
	exportFormat string
)

const plotWidth = 70

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tINTEG\tDT\tBODIES\tMERGES\tENERGY DRIFT\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%d\t%.3e\t%s\n",
			r.ID, r.Name, r.Integrator, r.Dt, r.Bodies, r.Merges,
			r.Metrics["energy_drift"], r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// loadRun reads the metadata and frames of a stored run.
func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

func runParams(meta *storage.RunMetadata) dynamo.Params {
	p := dynamo.DefaultParams()
	p.G = meta.G
	p.K = meta.K
	return p
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s (%s, dt=%g)", meta.Name, meta.Integrator, meta.Dt)))
	fmt.Println()

	energy := analysis.EnergySeries(frames, runParams(meta))
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(12),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("total energy"),
	))
	fmt.Println()

	counts := analysis.CountSeries(frames)
	fmt.Println(asciigraph.Plot(counts,
		asciigraph.Height(6),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("bodies"),
	))

	if plotBody == 0 {
		return nil
	}

	_, points := analysis.Trajectory(frames, dynamo.BodyID(plotBody))
	if len(points) == 0 {
		return fmt.Errorf("body %d not found in run %s", plotBody, meta.ID)
	}
	fmt.Println()
	fmt.Println(asciigraph.PlotMany(
		[][]float64{analysis.Component(points, 0), analysis.Component(points, 1)},
		asciigraph.Height(12),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.Caption(fmt.Sprintf("body %d x (red), y (blue)", plotBody)),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	var write func(io.Writer, *storage.RunMetadata, []sim.Frame) error
	switch exportFormat {
	case "json":
		write = func(w io.Writer, meta *storage.RunMetadata, frames []sim.Frame) error {
			return storage.ExportJSON(w, *meta, frames)
		}
	case "svg":
		write = func(w io.Writer, _ *storage.RunMetadata, frames []sim.Frame) error {
			return storage.ExportSVG(w, frames, 800, 600)
		}
	default:
		return fmt.Errorf("unknown export format: %s", exportFormat)
	}

	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return write(os.Stdout, meta, frames)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := write(f, meta, frames); err != nil {
		return err
	}
	logger.Info("run exported", "id", meta.ID, "file", outFile, "format", exportFormat)
	fmt.Printf("exported %s to %s\n", meta.ID, outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	id := dynamo.BodyID(analyzeBody)
	times, points := analysis.Trajectory(frames, id)
	if len(points) < 4 {
		return fmt.Errorf("body %d has too few samples in run %s", analyzeBody, meta.ID)
	}
	if len(points) < len(frames) {
		logger.Warn("body disappears before the end of the run", "body", analyzeBody, "samples", len(points), "frames", len(frames))
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("body %d in %s", analyzeBody, meta.Name)))
	fmt.Printf("samples: %d over t=[%.2f, %.2f]\n", len(points), times[0], times[len(times)-1])

	xs := analysis.Component(points, 0)
	sample := (times[len(times)-1] - times[0]) / float64(len(times)-1)

	if period, ok := analysis.DominantPeriod(xs, sample); ok {
		fmt.Printf("period (spectrum):  %.4f\n", period)
	} else {
		fmt.Println("period (spectrum):  none")
	}
	if period, ok := analysis.CrossingPeriod(times, xs); ok {
		fmt.Printf("period (crossings): %.4f\n", period)
	} else {
		fmt.Println("period (crossings): none")
	}

	spectrum := analysis.PowerSpectrum(xs)
	if len(spectrum) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(spectrum[1:],
			asciigraph.Height(8),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("power spectrum of x"),
		))
	}

	fmt.Println()
	fmt.Print(analysis.TrajectoryToASCII(points, plotWidth, 20))
	return nil
}
