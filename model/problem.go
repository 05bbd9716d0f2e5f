package model

import "math"

// Problem is the complete description of one trial handed to a solver:
// geometry, materials, loads, mesh settings and the extraction contract.
type Problem struct {
	Domain    Domain
	Inclusion Circle

	Matrix        Material
	InclusionMat  Material
	TopTemp       float64
	BottomFlux    float64
	Mesh          MeshConfig
	Job           JobConfig
	MatrixSet     string // element region names
	InclusionSet  string
	TopSet        string
	BottomSurface string
}

// 求解域
type Domain struct {
	Side float64
}

type Circle struct {
	CenterX float64
	CenterY float64
	Radius  float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c Circle) Contains(x, y float64) bool {
	dx, dy := x-c.CenterX, y-c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Area of the circle.
func (c Circle) Area() float64 {
	return math.Pi * c.Radius * c.Radius
}

// 节点输出
type NodalValue struct {
	Label int     `json:"label"`
	Value float64 `json:"data"`
}

// FieldOutput is a named nodal field sampled over a named node set.
type FieldOutput struct {
	Field   string       `json:"field"`
	NodeSet string       `json:"node_set"`
	Values  []NodalValue `json:"values"`
}

// Data returns the values in label order as given.
func (f *FieldOutput) Data() []float64 {
	out := make([]float64, len(f.Values))
	for i, v := range f.Values {
		out[i] = v.Value
	}
	return out
}
