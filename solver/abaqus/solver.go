// Package abaqus drives the external CAE engine. Each Solve renders a script
// for the trial, runs the engine on it without a GUI, waits for the job to
// finish and reads the nodal values the script extracted from the output
// database.
package abaqus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"heatopt/model"
)

var ErrNoOutput = errors.New("engine produced no field output")

type Options struct {
	Command string   // engine executable
	Args    []string // placed before "cae noGUI=<script>"
	Env     []string // extra environment, KEY=VALUE
	WorkDir string   // overrides the problem's job work directory
}

func DefaultOptions() Options {
	return Options{Command: "abaqus"}
}

type Solver struct {
	opts Options
}

func New(opts Options) *Solver {
	if opts.Command == "" {
		opts.Command = DefaultOptions().Command
	}
	return &Solver{opts: opts}
}

func (s *Solver) Name() string { return "abaqus" }

func (s *Solver) workDir(p *model.Problem) string {
	switch {
	case s.opts.WorkDir != "":
		return s.opts.WorkDir
	case p.Job.WorkDir != "":
		return p.Job.WorkDir
	}
	return "."
}

func (s *Solver) Solve(ctx context.Context, p *model.Problem) (*model.FieldOutput, error) {
	script, err := Render(p)
	if err != nil {
		return nil, err
	}

	dir := s.workDir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("work dir: %w", err)
	}
	scriptPath := filepath.Join(dir, ScriptName(p.Job.Name))
	if err := os.WriteFile(scriptPath, script, 0o644); err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}
	// a hand-off left by an earlier trial under the same job name must not be
	// mistaken for this one's
	handoff := filepath.Join(dir, HandoffName(p.Job.Name, p.Job.Field))
	if err := os.Remove(handoff); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale output: %w", err)
	}

	if err := s.run(ctx, dir, ScriptName(p.Job.Name), p.Job.Name); err != nil {
		return nil, err
	}

	out, err := ReadHandoff(handoff)
	if err != nil {
		return nil, err
	}
	if out.Field == "" {
		out.Field = p.Job.Field
	}
	if out.NodeSet == "" {
		out.NodeSet = p.Job.NodeSet
	}
	return out, nil
}

func (s *Solver) run(ctx context.Context, dir, script, job string) error {
	args := append(append([]string{}, s.opts.Args...), "cae", "noGUI="+script)
	cmd := exec.CommandContext(ctx, s.opts.Command, args...)
	cmd.Dir = dir
	if len(s.opts.Env) > 0 {
		cmd.Env = append(os.Environ(), s.opts.Env...)
	}

	entry := log.WithFields(log.Fields{"job": job, "command": s.opts.Command})
	stdout := entry.WriterLevel(log.DebugLevel)
	defer stdout.Close()
	stderrLog := entry.WriterLevel(log.WarnLevel)
	defer stderrLog.Close()

	stderr := newLineTail(tailLines)
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, stderrLog)

	start := time.Now()
	entry.Info("submitting job")
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if msg := stderr.String(); msg != "" {
			return fmt.Errorf("job %s failed: %w: %s", job, err, msg)
		}
		return fmt.Errorf("job %s failed: %w", job, err)
	}
	entry.WithField("elapsed", time.Since(start)).Info("job completed")
	return nil
}

type handoff struct {
	Field   string             `json:"field"`
	NodeSet string             `json:"node_set"`
	Values  []model.NodalValue `json:"values"`
}

// ReadHandoff parses the JSON the CAE script writes after extraction.
func ReadHandoff(path string) (*model.FieldOutput, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s missing", ErrNoOutput, filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}
	var h handoff
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoOutput, filepath.Base(path), err)
	}
	return &model.FieldOutput{Field: h.Field, NodeSet: h.NodeSet, Values: h.Values}, nil
}
