package problem

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"heatopt/model"
)

// 区域名称
const (
	MatrixSet     = "matrix"
	InclusionSet  = "inclusion"
	TopSet        = "top"
	BottomSurface = "bot"
)

var (
	ErrInvalidRadius = errors.New("inclusion radius must be in (0, side/2)")
	ErrInvalidConfig = errors.New("invalid sweep configuration")
)

// Validate checks the parts of a config that do not depend on the radius.
func Validate(cfg *model.SweepConfig) error {
	switch {
	case cfg.Side <= 0:
		return fmt.Errorf("%w: side %g", ErrInvalidConfig, cfg.Side)
	case cfg.Matrix.Conductivity <= 0:
		return fmt.Errorf("%w: matrix conductivity %g", ErrInvalidConfig, cfg.Matrix.Conductivity)
	case cfg.Inclusion.Conductivity <= 0:
		return fmt.Errorf("%w: inclusion conductivity %g", ErrInvalidConfig, cfg.Inclusion.Conductivity)
	case cfg.SeedSize() <= 0 || cfg.SeedSize() > cfg.Side:
		return fmt.Errorf("%w: seed %g", ErrInvalidConfig, cfg.SeedSize())
	case cfg.Job.Name == "" || cfg.Job.Field == "" || cfg.Job.NodeSet == "":
		return fmt.Errorf("%w: job, field and node set names are required", ErrInvalidConfig)
	}
	return nil
}

// Build describes one trial: the square domain with a centred circular
// inclusion of the given radius, both materials, the heat step loads and the
// mesh and job settings.
func Build(cfg *model.SweepConfig, radius float64) (*model.Problem, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if radius <= 0 || radius >= cfg.Side/2 {
		return nil, fmt.Errorf("%w: r=%g side=%g", ErrInvalidRadius, radius, cfg.Side)
	}

	mesh := cfg.Mesh
	mesh.Seed = cfg.SeedSize()

	job := cfg.Job
	if job.KeepArtifacts {
		job.Name = TrialJobName(cfg.Job.Name, radius)
	}

	p := &model.Problem{
		Domain: model.Domain{Side: cfg.Side},
		Inclusion: model.Circle{
			CenterX: cfg.Side / 2,
			CenterY: cfg.Side / 2,
			Radius:  radius,
		},
		Matrix:        cfg.Matrix,
		InclusionMat:  cfg.Inclusion,
		TopTemp:       cfg.TTop,
		BottomFlux:    cfg.QBot,
		Mesh:          mesh,
		Job:           job,
		MatrixSet:     MatrixSet,
		InclusionSet:  InclusionSet,
		TopSet:        TopSet,
		BottomSurface: BottomSurface,
	}

	log.WithFields(log.Fields{
		"radius":  radius,
		"side":    p.Domain.Side,
		"kMat":    p.Matrix.Conductivity,
		"kInc":    p.InclusionMat.Conductivity,
		"qGenMat": p.Matrix.HeatGeneration,
		"qGenInc": p.InclusionMat.HeatGeneration,
		"tTop":    p.TopTemp,
		"qBot":    p.BottomFlux,
		"seed":    p.Mesh.Seed,
		"job":     p.Job.Name,
	}).Debug("problem built")

	return p, nil
}

// TrialJobName gives a per-radius job name, e.g. heatOpt-r0_0125. The radius
// is written in full so distinct radii never share a name.
func TrialJobName(base string, radius float64) string {
	r := strconv.FormatFloat(radius, 'f', -1, 64)
	return base + "-r" + strings.ReplaceAll(r, ".", "_")
}
