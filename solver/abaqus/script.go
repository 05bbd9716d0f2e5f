package abaqus

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"text/template"

	"heatopt/model"
)

//go:embed heat_opt.py.tmpl
var scriptSource string

var scriptTemplate = template.Must(template.New("heat_opt").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
}).Parse(scriptSource))

// names end up as bare identifiers or string literals inside the script
var (
	symbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	namePattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

// deltMax is the largest temperature change allowed per increment of the
// heat step.
const deltMax = 100.0

type materialEntry struct {
	Name     string
	Set      string
	Material model.Material
}

type scriptData struct {
	*model.Problem
	Script    string
	Handoff   string
	DeltMax   float64
	Materials []materialEntry
}

// ScriptName is the file the CAE script for a job is written to.
func ScriptName(job string) string { return job + ".py" }

// HandoffName is the JSON file the script writes its extracted values to.
func HandoffName(job, field string) string { return job + "_" + field + ".json" }

func checkNames(p *model.Problem) error {
	for _, s := range []string{p.Mesh.QuadElement, p.Mesh.TriElement} {
		if !symbolPattern.MatchString(s) {
			return fmt.Errorf("invalid element code %q", s)
		}
	}
	names := []string{
		p.Job.Name, p.Job.Step, p.Job.Field, p.Job.NodeSet,
		p.MatrixSet, p.InclusionSet, p.TopSet, p.BottomSurface,
		materialName(p.Matrix, p.MatrixSet), materialName(p.InclusionMat, p.InclusionSet),
	}
	for _, s := range names {
		if !namePattern.MatchString(s) {
			return fmt.Errorf("invalid name %q", s)
		}
	}
	return nil
}

func materialName(m model.Material, fallback string) string {
	if m.Name != "" {
		return m.Name
	}
	return fallback
}

// Render writes the CAE script that builds, meshes, solves and extracts one
// trial.
func Render(p *model.Problem) ([]byte, error) {
	if err := checkNames(p); err != nil {
		return nil, err
	}
	data := scriptData{
		Problem: p,
		Script:  ScriptName(p.Job.Name),
		Handoff: HandoffName(p.Job.Name, p.Job.Field),
		DeltMax: deltMax,
		Materials: []materialEntry{
			{Name: materialName(p.Matrix, p.MatrixSet), Set: p.MatrixSet, Material: p.Matrix},
			{Name: materialName(p.InclusionMat, p.InclusionSet), Set: p.InclusionSet, Material: p.InclusionMat},
		},
	}
	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render script: %w", err)
	}
	return buf.Bytes(), nil
}
