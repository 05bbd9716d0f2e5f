package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"heatopt/model"
)

// NewLineChart builds the interactive version of the curve.
func NewLineChart(res *model.SweepResult, o Options) (*charts.Line, error) {
	if res == nil || len(res.Trials) == 0 {
		return nil, ErrNoData
	}
	o = o.withDefaults()

	x := make([]string, len(res.Trials))
	y := make([]opts.LineData, len(res.Trials))
	for i, t := range res.Trials {
		x[i] = formatRadius(t.Radius)
		y[i] = opts.LineData{Value: t.MeanTemperature, Name: fmt.Sprintf("r=%g", t.Radius)}
	}

	subtitle := fmt.Sprintf("solver=%s trials=%d", res.Solver, len(res.Trials))
	if best, ok := res.Best(); ok {
		subtitle += fmt.Sprintf(" best r=%g (%.3f)", best.Radius, best.MeanTemperature)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     "900px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xLabel, NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel, NameLocation: "middle", NameGap: 40, Min: o.YMin, Max: o.YMax}),
	)
	line.SetXAxis(x).
		AddSeries("mean "+res.Solver, y,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)
	return line, nil
}

// PlotHTML writes a self-contained HTML page with the interactive curve.
func PlotHTML(res *model.SweepResult, w io.Writer, o Options) error {
	line, err := NewLineChart(res, o)
	if err != nil {
		return err
	}
	return line.Render(w)
}
