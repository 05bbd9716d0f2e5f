// Package fdm is a licence-free preview backend. It relaxes the steady
// conduction problem on a node-centred finite-volume grid whose spacing
// follows the mesh seed, smearing properties over cells the inclusion
// boundary cuts through. Results are close to, not identical with, the CAE
// engine's.
package fdm

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"heatopt/model"
)

var ErrNotConverged = errors.New("relaxation did not converge")

// Options tune the relaxation.
type Options struct {
	Workers       int
	Tolerance     float64 // stop when the largest update falls below this
	MaxIterations int
	Omega         float64 // over-relaxation factor in (0, 2)
	Refine        int     // grid cells per mesh seed
	Samples       int     // per-axis samples for the inclusion fraction
}

// DefaultOptions match conf/config.ini.
func DefaultOptions() Options {
	return Options{
		Workers:       4,
		Tolerance:     1e-7,
		MaxIterations: 200000,
		Omega:         1.85,
		Refine:        1,
		Samples:       8,
	}
}

type Solver struct {
	opts Options
}

func New(opts Options) *Solver {
	def := DefaultOptions()
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Omega <= 0 || opts.Omega >= 2 {
		opts.Omega = def.Omega
	}
	if opts.Samples <= 0 {
		opts.Samples = def.Samples
	}
	return &Solver{opts: opts}
}

func (s *Solver) Name() string { return "fdm" }

// checkEvery is how many sweeps pass between context checks.
const checkEvery = 64

func (s *Solver) Solve(ctx context.Context, p *model.Problem) (*model.FieldOutput, error) {
	start := time.Now()
	g, err := newGrid(p, s.opts.Refine, s.opts.Samples)
	if err != nil {
		return nil, err
	}

	e := newExecutor(g, s.opts.Workers, s.opts.Omega)
	e.run()
	defer e.stop()

	var delta float64
	iter := 0
	for ; iter < s.opts.MaxIterations; iter++ {
		if iter%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		delta = e.sweep()
		if delta < s.opts.Tolerance {
			break
		}
	}
	if delta >= s.opts.Tolerance {
		return nil, fmt.Errorf("%w after %d iterations (last update %g)", ErrNotConverged, iter, delta)
	}

	log.WithFields(log.Fields{
		"nodes":      g.n * g.n,
		"iterations": iter + 1,
		"residual":   delta,
		"elapsed":    time.Since(start),
	}).Debug("fdm relaxation finished")

	return &model.FieldOutput{
		Field:   p.Job.Field,
		NodeSet: p.Job.NodeSet,
		Values:  g.bottomRow(),
	}, nil
}
