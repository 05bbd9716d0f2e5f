// Package sweep runs the radius study: one problem per radius, solved in
// order, each reduced to the mean of the extracted nodal field.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"heatopt/model"
	"heatopt/problem"
	"heatopt/solver"
)

var ErrFieldMismatch = errors.New("solver returned a different field or node set")

type Driver struct {
	solver solver.Solver
	hub    *Hub
	now    func() time.Time
}

func NewDriver(s solver.Solver, ls ...Listener) *Driver {
	return &Driver{
		solver: s,
		hub:    NewHub(ls...),
		now:    time.Now,
	}
}

// Hub gives access to the progress listeners.
func (d *Driver) Hub() *Hub { return d.hub }

// Run solves every configured radius in order and returns one trial per
// radius. The first failure stops the run; nothing after it is solved and no
// partial result is returned.
func (d *Driver) Run(ctx context.Context, cfg model.SweepConfig) (*model.SweepResult, error) {
	cfg = cfg.Copy()
	res := &model.SweepResult{
		RunID:     uuid.New().String(),
		Solver:    d.solver.Name(),
		StartedAt: d.now(),
		Trials:    make([]model.TrialResult, 0, len(cfg.Radii)),
	}

	entry := log.WithFields(log.Fields{"run": res.RunID, "solver": res.Solver})
	entry.WithField("radii", FormatRadii(cfg.Radii)).Info("sweep started")

	for i, r := range cfg.Radii {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("trial %d (r=%g): %w", i, r, err)
		}
		d.hub.TrialStarted(i, r)

		t, err := d.trial(ctx, &cfg, i, r)
		if err != nil {
			entry.WithFields(log.Fields{"trial": i, "radius": r}).WithError(err).Error("trial failed")
			return nil, fmt.Errorf("trial %d (r=%g): %w", i, r, err)
		}
		res.Trials = append(res.Trials, t)
		d.hub.TrialFinished(t)
	}

	res.FinishedAt = d.now()
	if best, ok := res.Best(); ok {
		entry.WithFields(log.Fields{
			"best_radius": best.Radius,
			"best_mean":   best.MeanTemperature,
			"elapsed":     res.FinishedAt.Sub(res.StartedAt),
		}).Info("sweep finished")
	} else {
		entry.Info("sweep finished with no radii")
	}
	return res, nil
}

func (d *Driver) trial(ctx context.Context, cfg *model.SweepConfig, i int, r float64) (model.TrialResult, error) {
	p, err := problem.Build(cfg, r)
	if err != nil {
		return model.TrialResult{}, err
	}

	start := d.now()
	out, err := d.solver.Solve(ctx, p)
	if err != nil {
		return model.TrialResult{}, err
	}
	elapsed := d.now().Sub(start)

	if out == nil || len(out.Values) == 0 {
		return model.TrialResult{}, solver.ErrEmptyField
	}
	if out.Field != p.Job.Field || out.NodeSet != p.Job.NodeSet {
		return model.TrialResult{}, fmt.Errorf("%w: want %s over %s, got %s over %s",
			ErrFieldMismatch, p.Job.Field, p.Job.NodeSet, out.Field, out.NodeSet)
	}

	data := out.Data()
	return model.TrialResult{
		Index:           i,
		Radius:          r,
		MeanTemperature: stat.Mean(data, nil),
		Min:             floats.Min(data),
		Max:             floats.Max(data),
		Nodes:           len(data),
		Duration:        elapsed,
	}, nil
}
