package model

// 材料物性参数
// Material is one homogeneous conducting material. Specific heat and density
// enter the transient heat step only.
type Material struct {
	Name           string  `json:"name" yaml:"name" mapstructure:"name"`
	Conductivity   float64 `json:"conductivity" yaml:"conductivity" mapstructure:"conductivity"`
	SpecificHeat   float64 `json:"specific_heat" yaml:"specific_heat" mapstructure:"specific_heat"`
	Density        float64 `json:"density" yaml:"density" mapstructure:"density"`
	HeatGeneration float64 `json:"heat_generation" yaml:"heat_generation" mapstructure:"heat_generation"` // volumetric
}

// Mix returns the properties of a region holding fraction f of other and
// 1-f of m. Used by solvers that smear a partially covered cell.
func (m Material) Mix(other Material, f float64) Material {
	if f <= 0 {
		return m
	}
	if f >= 1 {
		return other
	}
	return Material{
		Name:           m.Name + "+" + other.Name,
		Conductivity:   m.Conductivity + f*(other.Conductivity-m.Conductivity),
		SpecificHeat:   m.SpecificHeat + f*(other.SpecificHeat-m.SpecificHeat),
		Density:        m.Density + f*(other.Density-m.Density),
		HeatGeneration: m.HeatGeneration + f*(other.HeatGeneration-m.HeatGeneration),
	}
}
