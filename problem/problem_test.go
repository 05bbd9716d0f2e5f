package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatopt/model"
)

func sweepConfig() *model.SweepConfig {
	return &model.SweepConfig{
		Side:      0.1,
		Matrix:    model.Material{Name: "Material-1", Conductivity: 17, HeatGeneration: 10},
		Inclusion: model.Material{Name: "Material-2", Conductivity: 100, HeatGeneration: 50000},
		TTop:      20,
		QBot:      1000,
		Mesh:      model.MeshConfig{QuadElement: "DC2D4", TriElement: "DC2D3"},
		Job:       model.JobConfig{Name: "heatOpt", Step: "heat", Field: "NT11", NodeSet: "BOT"},
	}
}

func TestBuildCentresInclusion(t *testing.T) {
	cfg := sweepConfig()
	p, err := Build(cfg, 0.02)
	require.NoError(t, err)

	assert.Equal(t, model.Circle{CenterX: 0.05, CenterY: 0.05, Radius: 0.02}, p.Inclusion)
	assert.Equal(t, 0.1, p.Domain.Side)
	assert.Equal(t, cfg.Matrix, p.Matrix)
	assert.Equal(t, cfg.Inclusion, p.InclusionMat)
	assert.Equal(t, 20.0, p.TopTemp)
	assert.Equal(t, 1000.0, p.BottomFlux)
	assert.InDelta(t, 0.1/30, p.Mesh.Seed, 1e-15)
	assert.Equal(t, "heatOpt", p.Job.Name)
	assert.Equal(t, MatrixSet, p.MatrixSet)
	assert.Equal(t, BottomSurface, p.BottomSurface)
}

func TestBuildRejectsRadius(t *testing.T) {
	cfg := sweepConfig()
	for _, r := range []float64{0, -0.01, 0.05, 0.2} {
		_, err := Build(cfg, r)
		assert.ErrorIs(t, err, ErrInvalidRadius, "r=%g", r)
	}
	_, err := Build(cfg, 0.0499)
	assert.NoError(t, err)
}

func TestBuildRejectsConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.SweepConfig)
	}{
		{"side", func(c *model.SweepConfig) { c.Side = 0 }},
		{"matrix conductivity", func(c *model.SweepConfig) { c.Matrix.Conductivity = 0 }},
		{"inclusion conductivity", func(c *model.SweepConfig) { c.Inclusion.Conductivity = -1 }},
		{"seed", func(c *model.SweepConfig) { c.Mesh.Seed = 1 }},
		{"job name", func(c *model.SweepConfig) { c.Job.Name = "" }},
		{"field", func(c *model.SweepConfig) { c.Job.Field = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sweepConfig()
			tt.mutate(cfg)
			_, err := Build(cfg, 0.01)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestBuildKeepArtifacts(t *testing.T) {
	cfg := sweepConfig()
	cfg.Job.KeepArtifacts = true
	p, err := Build(cfg, 0.0125)
	require.NoError(t, err)
	assert.Equal(t, "heatOpt-r0_0125", p.Job.Name)
	assert.Equal(t, "heatOpt", cfg.Job.Name)
}

func TestTrialJobName(t *testing.T) {
	assert.Equal(t, "heatOpt-r0_01", TrialJobName("heatOpt", 0.01))
	assert.Equal(t, "job-r0_045", TrialJobName("job", 0.045))
	assert.Equal(t, "heatOpt-r0_00001", TrialJobName("heatOpt", 1e-5))
	assert.NotEqual(t, TrialJobName("heatOpt", 0.01), TrialJobName("heatOpt", 0.01004))
}
