// Package config reads conf/config.ini. Every key has a default equal to the
// reference study, so a missing key or an empty file still gives a complete
// configuration.
package config

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"heatopt/model"
	"heatopt/report"
	"heatopt/solver"
	"heatopt/solver/abaqus"
	"heatopt/solver/fdm"
	"heatopt/sweep"
)

const DefaultPath = "conf/config.ini"

// 求解后端
const (
	BackendAbaqus   = "abaqus"
	BackendFDM      = "fdm"
	BackendConstant = "constant"
)

type Config struct {
	Sweep model.SweepConfig

	Backend  string
	Constant float64
	Abaqus   abaqus.Options
	FDM      fdm.Options

	Report report.Options

	StorePath  string
	ServerAddr string

	LogLevel  string
	LogFormat string
}

// Load reads the file at path.
func Load(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("配置文件读取错误，请检查文件路径: %w", err)
	}
	return loadCfg(file)
}

// Default is the configuration of an empty file.
func Default() *Config {
	cfg, err := loadCfg(ini.Empty())
	if err != nil {
		// the built-in radius range always parses
		panic(err)
	}
	return cfg
}

func loadCfg(file *ini.File) (*Config, error) {
	pb := file.Section("problem")
	specificHeat := pb.Key("SpecificHeat").MustFloat64(1)
	density := pb.Key("Density").MustFloat64(1)

	radii, err := sweep.ParseRadii(file.Section("sweep").Key("Radii").MustString("0.01:0.045:0.005"))
	if err != nil {
		return nil, fmt.Errorf("[sweep] Radii: %w", err)
	}

	mesh := file.Section("mesh")
	job := file.Section("job")
	fd := file.Section("fdm")
	rp := file.Section("report")

	cfg := &Config{
		Sweep: model.SweepConfig{
			Side: pb.Key("Side").MustFloat64(0.1),
			Matrix: model.Material{
				Name:           pb.Key("MatrixMaterial").MustString("Material-1"),
				Conductivity:   pb.Key("KMat").MustFloat64(17),
				SpecificHeat:   specificHeat,
				Density:        density,
				HeatGeneration: pb.Key("QGenMat").MustFloat64(10),
			},
			Inclusion: model.Material{
				Name:           pb.Key("InclusionMaterial").MustString("Material-2"),
				Conductivity:   pb.Key("KInc").MustFloat64(100),
				SpecificHeat:   specificHeat,
				Density:        density,
				HeatGeneration: pb.Key("QGenInc").MustFloat64(50000),
			},
			TTop:  pb.Key("TTop").MustFloat64(20),
			QBot:  pb.Key("QBot").MustFloat64(1000),
			Radii: radii,
			Mesh: model.MeshConfig{
				Seed:        mesh.Key("Seed").MustFloat64(0),
				QuadElement: mesh.Key("QuadElement").MustString("DC2D4"),
				TriElement:  mesh.Key("TriElement").MustString("DC2D3"),
			},
			Job: model.JobConfig{
				Name:          job.Key("Name").MustString("heatOpt"),
				Step:          job.Key("Step").MustString("heat"),
				Field:         job.Key("Field").MustString("NT11"),
				NodeSet:       job.Key("NodeSet").MustString("BOT"),
				WorkDir:       job.Key("WorkDir").MustString("."),
				KeepArtifacts: job.Key("KeepArtifacts").MustBool(false),
			},
		},

		Backend:  strings.ToLower(file.Section("solver").Key("Backend").MustString(BackendAbaqus)),
		Constant: file.Section("solver").Key("Constant").MustFloat64(20),
		Abaqus: abaqus.Options{
			Command: file.Section("abaqus").Key("Command").MustString("abaqus"),
			Args:    file.Section("abaqus").Key("Args").Strings(" "),
		},
		FDM: fdm.Options{
			Workers:       fd.Key("Workers").MustInt(4),
			Tolerance:     fd.Key("Tolerance").MustFloat64(1e-7),
			MaxIterations: fd.Key("MaxIterations").MustInt(200000),
			Omega:         fd.Key("Omega").MustFloat64(1.85),
			Refine:        fd.Key("Refine").MustInt(1),
			Samples:       fd.Key("Samples").MustInt(8),
		},

		Report: report.Options{
			Title:  rp.Key("Title").MustString("TvsR"),
			YMin:   rp.Key("YMin").MustFloat64(20),
			YMax:   rp.Key("YMax").MustFloat64(28),
			Width:  rp.Key("Width").MustFloat64(16),
			Height: rp.Key("Height").MustFloat64(12),
		},

		StorePath:  file.Section("store").Key("Path").String(),
		ServerAddr: file.Section("server").Key("Addr").MustString(":9000"),

		LogLevel:  file.Section("log").Key("Level").MustString("info"),
		LogFormat: file.Section("log").Key("Format").MustString("text"),
	}

	log.WithFields(log.Fields{
		"backend": cfg.Backend,
		"radii":   len(cfg.Sweep.Radii),
		"job":     cfg.Sweep.Job.Name,
	}).Debug("config loaded")
	return cfg, nil
}

// NewSolver builds the configured backend.
func (c *Config) NewSolver() (solver.Solver, error) {
	switch c.Backend {
	case BackendAbaqus:
		return abaqus.New(c.Abaqus), nil
	case BackendFDM:
		return fdm.New(c.FDM), nil
	case BackendConstant:
		return solver.Constant{Value: c.Constant}, nil
	}
	return nil, fmt.Errorf("unknown solver backend %q (want %s, %s or %s)",
		c.Backend, BackendAbaqus, BackendFDM, BackendConstant)
}

// SetupLogging applies the [log] section to the standard logrus logger.
func (c *Config) SetupLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
