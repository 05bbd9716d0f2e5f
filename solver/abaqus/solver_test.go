package abaqus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatopt/model"
)

func testProblem(dir string) *model.Problem {
	return &model.Problem{
		Domain:    model.Domain{Side: 0.1},
		Inclusion: model.Circle{CenterX: 0.05, CenterY: 0.05, Radius: 0.0125},
		Matrix: model.Material{Name: "matrix", Conductivity: 17, SpecificHeat: 1, Density: 1,
			HeatGeneration: 10},
		InclusionMat: model.Material{Name: "inclusion", Conductivity: 100, SpecificHeat: 1, Density: 1,
			HeatGeneration: 50000},
		TopTemp:    20,
		BottomFlux: 1000,
		Mesh:       model.MeshConfig{Seed: 0.1 / 30, QuadElement: "DC2D4", TriElement: "DC2D3"},
		Job: model.JobConfig{Name: "heatOpt", Step: "heat", Field: "NT11", NodeSet: "BOT",
			WorkDir: dir},
		MatrixSet:     "matrix",
		InclusionSet:  "inclusion",
		TopSet:        "top",
		BottomSurface: "bot",
	}
}

func TestRender(t *testing.T) {
	script, err := Render(testProblem("."))
	require.NoError(t, err)
	s := string(script)

	for _, want := range []string{
		"RADIUS = 0.0125",
		"SIDE = 0.1",
		"JOB = 'heatOpt'",
		"STEP = 'heat'",
		"FIELD = 'NT11'",
		"NODE_SET = 'BOT'",
		"HANDOFF = 'heatOpt_NT11.json'",
		"mat.Conductivity(table=((17, ), ))",
		"mat.Conductivity(table=((100, ), ))",
		"magnitude=50000)",
		"magnitude=1000)",
		"elemCode=DC2D4",
		"elemCode=DC2D3",
		"noGUI=heatOpt.py",
	} {
		assert.Contains(t, s, want)
	}
	assert.NotContains(t, s, "<no value>")
}

func TestRenderRejectsInjectedNames(t *testing.T) {
	p := testProblem(".")
	p.Job.Name = "x'; import os #"
	_, err := Render(p)
	require.Error(t, err)

	p = testProblem(".")
	p.Mesh.QuadElement = "DC2D4)"
	_, err = Render(p)
	require.Error(t, err)
}

func TestReadHandoff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	raw := `{"field":"NT11","node_set":"BOT","values":[{"label":1,"data":21.5},{"label":2,"data":22.5}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	out, err := ReadHandoff(path)
	require.NoError(t, err)
	want := &model.FieldOutput{
		Field:   "NT11",
		NodeSet: "BOT",
		Values:  []model.NodalValue{{Label: 1, Value: 21.5}, {Label: 2, Value: 22.5}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("handoff mismatch (-want +got):\n%s", diff)
	}
}

func TestReadHandoffMissing(t *testing.T) {
	_, err := ReadHandoff(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrNoOutput)
}

func TestReadHandoffCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := ReadHandoff(path)
	require.ErrorIs(t, err, ErrNoOutput)
}

// fakeEngine runs this test binary in place of the engine.
func fakeEngine(mode string) *Solver {
	return New(Options{
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess", "--"},
		Env:     []string{"HEATOPT_FAKE_ENGINE=" + mode},
	})
}

var handoffLine = regexp.MustCompile(`(?m)^HANDOFF = '([^']+)'$`)

// TestHelperProcess is the fake engine: it reads the script named by
// noGUI=, finds the hand-off file name in it and writes a small field there.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv("HEATOPT_FAKE_ENGINE")
	if mode == "" {
		return
	}
	defer os.Exit(0)

	var script string
	for _, a := range os.Args {
		if strings.HasPrefix(a, "noGUI=") {
			script = strings.TrimPrefix(a, "noGUI=")
		}
	}
	switch mode {
	case "fail":
		fmt.Fprintln(os.Stderr, "Abaqus Error: license not available")
		os.Exit(3)
	case "silent":
		os.Exit(0)
	}

	raw, err := os.ReadFile(script)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	m := handoffLine.FindSubmatch(raw)
	if m == nil {
		fmt.Fprintln(os.Stderr, "no hand-off in script")
		os.Exit(2)
	}
	fmt.Println("Job heatOpt completed successfully")
	out := `{"field":"NT11","node_set":"BOT","values":[{"label":1,"data":24},{"label":2,"data":26}]}`
	if err := os.WriteFile(string(m[1]), []byte(out), 0o644); err != nil {
		os.Exit(2)
	}
}

func TestSolveWithFakeEngine(t *testing.T) {
	dir := t.TempDir()
	out, err := fakeEngine("ok").Solve(context.Background(), testProblem(dir))
	require.NoError(t, err)
	assert.Equal(t, []float64{24, 26}, out.Data())
	assert.FileExists(t, filepath.Join(dir, "heatOpt.py"))
	assert.FileExists(t, filepath.Join(dir, "heatOpt_NT11.json"))
}

func TestSolveEngineFailure(t *testing.T) {
	_, err := fakeEngine("fail").Solve(context.Background(), testProblem(t.TempDir()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "license not available")
}

func TestSolveNoHandoff(t *testing.T) {
	dir := t.TempDir()
	// stale output from an earlier trial must not be picked up
	stale := filepath.Join(dir, "heatOpt_NT11.json")
	require.NoError(t, os.WriteFile(stale, []byte(`{"values":[{"label":1,"data":1}]}`), 0o644))

	_, err := fakeEngine("silent").Solve(context.Background(), testProblem(dir))
	require.ErrorIs(t, err, ErrNoOutput)
}

func TestSolveMissingCommand(t *testing.T) {
	s := New(Options{Command: filepath.Join(t.TempDir(), "no-such-engine")})
	_, err := s.Solve(context.Background(), testProblem(t.TempDir()))
	require.Error(t, err)
}
