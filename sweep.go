package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"heatopt/model"
	"heatopt/report"
	"heatopt/sweep"
)

type sweepFlags struct {
	solver        string
	radii         string
	workDir       string
	keepArtifacts bool

	plot string
	html string
	csv  string
	json string
	yaml string
}

var sweepOpts sweepFlags

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Solve every radius and report mean bottom temperature",
	Long: `Runs one trial per radius, in order. The first failing trial aborts the
sweep. Results are plotted and optionally exported and stored.

Exports take a file name or "-" for stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runSweep(ctx, cmd, sweepOpts)
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	f := sweepCmd.Flags()
	f.StringVar(&sweepOpts.solver, "solver", "", "backend: abaqus, fdm or constant (default from [solver] Backend)")
	f.StringVar(&sweepOpts.radii, "radii", "", `radii as start:stop:step or a list, e.g. "0.01,0.02"`)
	f.StringVar(&sweepOpts.workDir, "work-dir", "", "directory for engine scripts and output")
	f.BoolVar(&sweepOpts.keepArtifacts, "keep-artifacts", false, "give every trial its own job name")
	f.StringVar(&sweepOpts.plot, "plot", "TvsR.png", "curve image (.png, .svg, .pdf), empty to skip")
	f.StringVar(&sweepOpts.html, "html", "", "interactive curve as HTML")
	f.StringVar(&sweepOpts.csv, "csv", "", "trial table as CSV")
	f.StringVar(&sweepOpts.json, "json", "", "full result as JSON")
	f.StringVar(&sweepOpts.yaml, "yaml", "", "full result as YAML")
}

func runSweep(ctx context.Context, cmd *cobra.Command, opts sweepFlags) error {
	c := *cfg
	sc := c.Sweep.Copy()
	if opts.solver != "" {
		c.Backend = opts.solver
	}
	if cmd.Flags().Changed("radii") {
		radii, err := sweep.ParseRadii(opts.radii)
		if err != nil {
			return err
		}
		sc.Radii = radii
	}
	if opts.workDir != "" {
		sc.Job.WorkDir = opts.workDir
	}
	if opts.keepArtifacts {
		sc.Job.KeepArtifacts = true
	}

	s, err := c.NewSolver()
	if err != nil {
		return err
	}

	d := sweep.NewDriver(s, sweep.LogListener{Total: len(sc.Radii)})
	res, err := d.Run(ctx, sc)
	if err != nil {
		return err
	}
	if len(res.Trials) == 0 {
		log.Warn("no radii configured, nothing to report")
		return nil
	}

	if best, ok := res.Best(); ok {
		log.WithFields(log.Fields{
			"run":    res.RunID,
			"radius": best.Radius,
			"mean":   best.MeanTemperature,
		}).Info("optimum radius")
	}

	if err := writeOutputs(res, opts, c.Report, cmd.OutOrStdout()); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		if err := st.SaveRun(ctx, res, sc); err != nil {
			return err
		}
	}
	return nil
}

func writeOutputs(res *model.SweepResult, opts sweepFlags, ro report.Options, stdout io.Writer) error {
	if opts.plot != "" {
		if err := report.PlotImage(res, opts.plot, ro); err != nil {
			return err
		}
		log.WithField("file", opts.plot).Info("plot written")
	}

	exports := []struct {
		path  string
		write func(io.Writer) error
	}{
		{opts.html, func(w io.Writer) error { return report.PlotHTML(res, w, ro) }},
		{opts.csv, func(w io.Writer) error { return report.WriteCSV(res, w) }},
		{opts.json, func(w io.Writer) error { return report.WriteJSON(res, w) }},
		{opts.yaml, func(w io.Writer) error { return report.WriteYAML(res, w) }},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := writeTo(e.path, stdout, e.write); err != nil {
			return fmt.Errorf("%s: %w", e.path, err)
		}
	}
	return nil
}

// writeTo writes to the named file, or to stdout for "-".
func writeTo(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	if path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return write(f)
}
