package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatopt/solver"
	"heatopt/solver/abaqus"
	"heatopt/solver/fdm"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	s := cfg.Sweep
	assert.Equal(t, 0.1, s.Side)
	assert.Equal(t, 17.0, s.Matrix.Conductivity)
	assert.Equal(t, 100.0, s.Inclusion.Conductivity)
	assert.Equal(t, 10.0, s.Matrix.HeatGeneration)
	assert.Equal(t, 50000.0, s.Inclusion.HeatGeneration)
	assert.Equal(t, 20.0, s.TTop)
	assert.Equal(t, 1000.0, s.QBot)
	assert.Equal(t, []float64{0.01, 0.015, 0.02, 0.025, 0.03, 0.035, 0.04}, s.Radii)
	assert.InDelta(t, 0.1/30, s.SeedSize(), 1e-15)
	assert.Equal(t, "heatOpt", s.Job.Name)
	assert.Equal(t, "NT11", s.Job.Field)
	assert.Equal(t, "BOT", s.Job.NodeSet)
	assert.Equal(t, BackendAbaqus, cfg.Backend)
	assert.Equal(t, 20.0, cfg.Report.YMin)
	assert.Equal(t, 28.0, cfg.Report.YMax)
	assert.Equal(t, ":9000", cfg.ServerAddr)
}

func TestLoadRepositoryConfig(t *testing.T) {
	cfg, err := Load("../conf/config.ini")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[problem]
KInc = 200
[sweep]
Radii = 0.01, 0.02
[job]
KeepArtifacts = true
[solver]
Backend = FDM
[fdm]
Workers = 2
[abaqus]
Command = abq2023
Args = -v
[store]
Path = runs.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200.0, cfg.Sweep.Inclusion.Conductivity)
	assert.Equal(t, []float64{0.01, 0.02}, cfg.Sweep.Radii)
	assert.True(t, cfg.Sweep.Job.KeepArtifacts)
	assert.Equal(t, BackendFDM, cfg.Backend)
	assert.Equal(t, 2, cfg.FDM.Workers)
	assert.Equal(t, "abq2023", cfg.Abaqus.Command)
	assert.Equal(t, []string{"-v"}, cfg.Abaqus.Args)
	assert.Equal(t, "runs.db", cfg.StorePath)
	// untouched keys keep their defaults
	assert.Equal(t, 17.0, cfg.Sweep.Matrix.Conductivity)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "[sweep]\nRadii = 0.01:x:0.1\n"))
	require.Error(t, err)
}

func TestNewSolver(t *testing.T) {
	cfg := Default()

	s, err := cfg.NewSolver()
	require.NoError(t, err)
	assert.IsType(t, &abaqus.Solver{}, s)

	cfg.Backend = BackendFDM
	s, err = cfg.NewSolver()
	require.NoError(t, err)
	assert.IsType(t, &fdm.Solver{}, s)

	cfg.Backend = BackendConstant
	s, err = cfg.NewSolver()
	require.NoError(t, err)
	assert.Equal(t, solver.Constant{Value: 20}, s)

	cfg.Backend = "ansys"
	_, err = cfg.NewSolver()
	require.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	require.NoError(t, cfg.SetupLogging())
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	cfg.LogLevel = "loud"
	require.Error(t, cfg.SetupLogging())

	cfg.LogLevel = "info"
	cfg.LogFormat = "xml"
	require.Error(t, cfg.SetupLogging())
}
