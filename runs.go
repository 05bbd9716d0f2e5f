package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"heatopt/report"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored sweeps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := requireStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.Runs(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSOLVER\tSTARTED\tTRIALS\tBEST R\tBEST MEAN")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%.3f\n",
				r.RunID, r.Solver, r.StartedAt.Local().Format(time.DateTime), r.Trials, r.BestRadius, r.BestMean)
		}
		return w.Flush()
	},
}

var plotOut string

var plotCmd = &cobra.Command{
	Use:   "plot <run-id>",
	Short: "Plot a stored sweep",
	Long:  `Redraws the curve of a stored run. An .html output gives the interactive chart.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return plotRun(cmd.Context(), args[0], plotOut)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd, plotCmd)
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "TvsR.png", "output file (.png, .svg, .pdf or .html)")
}

func plotRun(ctx context.Context, runID, out string) error {
	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := st.Load(ctx, runID)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(out), ".html") {
		err = writeTo(out, nil, func(w io.Writer) error { return report.PlotHTML(res, w, cfg.Report) })
	} else {
		err = report.PlotImage(res, out, cfg.Report)
	}
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"run": runID, "file": out}).Info("plot written")
	return nil
}
