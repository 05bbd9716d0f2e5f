// Package report turns a sweep result into the radius versus mean
// temperature curve and into tabular exports.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"heatopt/model"
)

var ErrNoData = errors.New("sweep result has no trials")

// Options fix the look of the curve. The y range is fixed so curves from
// different runs can be compared by eye.
type Options struct {
	Title  string
	YMin   float64
	YMax   float64
	Width  float64 // cm
	Height float64 // cm
}

func DefaultOptions() Options {
	return Options{Title: "TvsR", YMin: 20, YMax: 28, Width: 16, Height: 12}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Title == "" {
		o.Title = def.Title
	}
	if o.YMax <= o.YMin {
		o.YMin, o.YMax = def.YMin, def.YMax
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	return o
}

const (
	xLabel = "Inclusion radius (m)"
	yLabel = "Mean bottom temperature"
)

// Points returns the curve as x-y pairs in trial order.
func Points(res *model.SweepResult) (plotter.XYs, error) {
	if res == nil || len(res.Trials) == 0 {
		return nil, ErrNoData
	}
	pts := make(plotter.XYs, len(res.Trials))
	for i, t := range res.Trials {
		pts[i] = plotter.XY{X: t.Radius, Y: t.MeanTemperature}
	}
	return pts, nil
}

// NewPlot builds the curve with line and point glyphs and the fixed y range.
func NewPlot(res *model.SweepResult, opts Options) (*plot.Plot, error) {
	pts, err := Points(res)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}
	line.Width = vg.Points(1.5)
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	points.Shape = draw.CircleGlyph{}
	points.Color = line.Color
	p.Add(line, points)

	p.Y.Min = opts.YMin
	p.Y.Max = opts.YMax
	return p, nil
}

// PlotImage saves the curve to path. The format follows the extension
// (.png, .svg, .pdf, ...).
func PlotImage(res *model.SweepResult, path string, opts Options) error {
	p, err := NewPlot(res, opts)
	if err != nil {
		return err
	}
	opts = opts.withDefaults()
	if filepath.Ext(path) == "" {
		return fmt.Errorf("plot %s: missing file extension", path)
	}
	if err := p.Save(vg.Length(opts.Width)*vg.Centimeter, vg.Length(opts.Height)*vg.Centimeter, path); err != nil {
		return fmt.Errorf("plot %s: %w", path, err)
	}
	return nil
}

func formatRadius(r float64) string {
	s := fmt.Sprintf("%.4f", r)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
