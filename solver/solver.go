// Package solver defines the boundary between the sweep driver and whatever
// actually computes a temperature field.
package solver

import (
	"context"
	"errors"

	"heatopt/model"
)

// Solver turns a problem description into the requested nodal field.
// Solve blocks until the computation has finished or failed.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *model.Problem) (*model.FieldOutput, error)
}

var ErrEmptyField = errors.New("solver returned no nodal values")

// Constant answers every problem with the same value on n nodes.
type Constant struct {
	Value float64
	Nodes int
}

func (c Constant) Name() string { return "constant" }

func (c Constant) Solve(ctx context.Context, p *model.Problem) (*model.FieldOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := c.Nodes
	if n <= 0 {
		n = 31
	}
	out := &model.FieldOutput{
		Field:   p.Job.Field,
		NodeSet: p.Job.NodeSet,
		Values:  make([]model.NodalValue, n),
	}
	for i := range out.Values {
		out.Values[i] = model.NodalValue{Label: i + 1, Value: c.Value}
	}
	return out, nil
}

// Func adapts a plain function. Useful for stubs with radius dependent fields.
type Func func(ctx context.Context, p *model.Problem) (*model.FieldOutput, error)

func (f Func) Name() string { return "func" }

func (f Func) Solve(ctx context.Context, p *model.Problem) (*model.FieldOutput, error) {
	return f(ctx, p)
}
