package fdm

import (
	"fmt"
	"math"

	"heatopt/model"
)

// grid is a node-centred finite-volume discretisation of the square.
// Node (i, j) sits at (i*h, j*h), row j = 0 is the bottom edge and row
// j = n-1 carries the fixed top temperature.
type grid struct {
	n int
	h float64

	// conductances to the east, west, north and south neighbour, zero on
	// insulated or missing faces
	aE, aW, aN, aS []float64
	aP             []float64
	b              []float64 // source: body heat + bottom flux, per unit depth

	t     []float64
	fixed []bool
}

func (g *grid) index(i, j int) int { return j*g.n + i }

// 等效导热系数, 两节点间取调和平均
func faceConductivity(k1, k2 float64) float64 {
	if k1+k2 == 0 {
		return 0
	}
	return 2 * k1 * k2 / (k1 + k2)
}

// cellSpan returns the extent of a control volume along one axis.
func cellSpan(i, n int, h float64) float64 {
	if i == 0 || i == n-1 {
		return h / 2
	}
	return h
}

// inclusionFraction samples the control volume [x0,x1]x[y0,y1] on an s x s
// lattice of midpoints.
func inclusionFraction(c model.Circle, x0, x1, y0, y1 float64, s int) float64 {
	if s < 1 {
		s = 1
	}
	dx, dy := (x1-x0)/float64(s), (y1-y0)/float64(s)
	in := 0
	for a := 0; a < s; a++ {
		for b := 0; b < s; b++ {
			if c.Contains(x0+(float64(a)+0.5)*dx, y0+(float64(b)+0.5)*dy) {
				in++
			}
		}
	}
	return float64(in) / float64(s*s)
}

func newGrid(p *model.Problem, refine, samples int) (*grid, error) {
	if refine < 1 {
		refine = 1
	}
	cells := int(math.Round(p.Domain.Side/p.Mesh.Seed)) * refine
	if cells < 2 {
		return nil, fmt.Errorf("seed %g too coarse for side %g", p.Mesh.Seed, p.Domain.Side)
	}

	n := cells + 1
	h := p.Domain.Side / float64(cells)
	size := n * n
	g := &grid{
		n:     n,
		h:     h,
		aE:    make([]float64, size),
		aW:    make([]float64, size),
		aN:    make([]float64, size),
		aS:    make([]float64, size),
		aP:    make([]float64, size),
		b:     make([]float64, size),
		t:     make([]float64, size),
		fixed: make([]bool, size),
	}

	k := make([]float64, size)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			x, y := float64(i)*h, float64(j)*h
			wx, wy := cellSpan(i, n, h), cellSpan(j, n, h)
			x0, x1 := math.Max(0, x-h/2), math.Min(p.Domain.Side, x+h/2)
			y0, y1 := math.Max(0, y-h/2), math.Min(p.Domain.Side, y+h/2)

			f := inclusionFraction(p.Inclusion, x0, x1, y0, y1, samples)
			mat := p.Matrix.Mix(p.InclusionMat, f)

			idx := g.index(i, j)
			k[idx] = mat.Conductivity
			g.b[idx] = mat.HeatGeneration * wx * wy
			if j == 0 {
				g.b[idx] += p.BottomFlux * wx
			}
			g.t[idx] = p.TopTemp
			if j == n-1 {
				g.fixed[idx] = true
			}
		}
	}

	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			idx := g.index(i, j)
			wx, wy := cellSpan(i, n, h), cellSpan(j, n, h)
			if i < n-1 {
				g.aE[idx] = faceConductivity(k[idx], k[g.index(i+1, j)]) * wy / h
			}
			if i > 0 {
				g.aW[idx] = faceConductivity(k[idx], k[g.index(i-1, j)]) * wy / h
			}
			if j < n-1 {
				g.aN[idx] = faceConductivity(k[idx], k[g.index(i, j+1)]) * wx / h
			}
			if j > 0 {
				g.aS[idx] = faceConductivity(k[idx], k[g.index(i, j-1)]) * wx / h
			}
			g.aP[idx] = g.aE[idx] + g.aW[idx] + g.aN[idx] + g.aS[idx]
		}
	}

	return g, nil
}

// relaxRows applies one SOR update to the nodes of the given colour in rows
// [start, end) and returns the largest change.
func (g *grid) relaxRows(start, end, color int, omega float64) float64 {
	n := g.n
	var maxDelta float64
	for j := start; j < end; j++ {
		for i := (j + color) % 2; i < n; i += 2 {
			idx := j*n + i
			if g.fixed[idx] || g.aP[idx] == 0 {
				continue
			}
			sum := g.b[idx]
			if i < n-1 {
				sum += g.aE[idx] * g.t[idx+1]
			}
			if i > 0 {
				sum += g.aW[idx] * g.t[idx-1]
			}
			if j < n-1 {
				sum += g.aN[idx] * g.t[idx+n]
			}
			if j > 0 {
				sum += g.aS[idx] * g.t[idx-n]
			}
			next := g.t[idx] + omega*(sum/g.aP[idx]-g.t[idx])
			if d := math.Abs(next - g.t[idx]); d > maxDelta {
				maxDelta = d
			}
			g.t[idx] = next
		}
	}
	return maxDelta
}

// bottomRow returns the bottom edge as labelled nodal values. Labels are
// 1-based, row-major from the bottom-left corner.
func (g *grid) bottomRow() []model.NodalValue {
	out := make([]model.NodalValue, g.n)
	for i := 0; i < g.n; i++ {
		idx := g.index(i, 0)
		out[i] = model.NodalValue{Label: idx + 1, Value: g.t[idx]}
	}
	return out
}
