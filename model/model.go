package model

import "time"

// 扫描配置
// SweepConfig holds every fixed physical parameter of the study plus the
// ordered radius sequence. It is not modified once a run has started.
type SweepConfig struct {
	Side float64 `json:"side" yaml:"side" mapstructure:"side"` // square domain side length

	Matrix    Material `json:"matrix" yaml:"matrix" mapstructure:"matrix"`
	Inclusion Material `json:"inclusion" yaml:"inclusion" mapstructure:"inclusion"`

	TTop float64 `json:"t_top" yaml:"t_top" mapstructure:"t_top"` // top edge temperature
	QBot float64 `json:"q_bot" yaml:"q_bot" mapstructure:"q_bot"` // heat flux into the bottom edge

	Radii []float64 `json:"radii" yaml:"radii" mapstructure:"radii"`

	Mesh MeshConfig `json:"mesh" yaml:"mesh" mapstructure:"mesh"`
	Job  JobConfig  `json:"job" yaml:"job" mapstructure:"job"`
}

// 网格参数
type MeshConfig struct {
	Seed        float64 `json:"seed" yaml:"seed" mapstructure:"seed"` // global seed size, <= 0 means Side/30
	QuadElement string  `json:"quad_element" yaml:"quad_element" mapstructure:"quad_element"`
	TriElement  string  `json:"tri_element" yaml:"tri_element" mapstructure:"tri_element"`
}

// 作业参数
type JobConfig struct {
	Name          string `json:"name" yaml:"name" mapstructure:"name"`
	Step          string `json:"step" yaml:"step" mapstructure:"step"`
	Field         string `json:"field" yaml:"field" mapstructure:"field"`
	NodeSet       string `json:"node_set" yaml:"node_set" mapstructure:"node_set"`
	WorkDir       string `json:"work_dir" yaml:"work_dir" mapstructure:"work_dir"`
	KeepArtifacts bool   `json:"keep_artifacts" yaml:"keep_artifacts" mapstructure:"keep_artifacts"`
}

// SeedSize returns the configured seed or the default Side/30.
func (c *SweepConfig) SeedSize() float64 {
	if c.Mesh.Seed > 0 {
		return c.Mesh.Seed
	}
	return c.Side / 30
}

// Copy returns a deep copy, so overrides never touch a config in use.
func (c SweepConfig) Copy() SweepConfig {
	radii := make([]float64, len(c.Radii))
	copy(radii, c.Radii)
	c.Radii = radii
	return c
}

// 单次计算结果
type TrialResult struct {
	Index           int           `json:"index" yaml:"index"`
	Radius          float64       `json:"radius" yaml:"radius"`
	MeanTemperature float64       `json:"mean_temperature" yaml:"mean_temperature"`
	Min             float64       `json:"min" yaml:"min"`
	Max             float64       `json:"max" yaml:"max"`
	Nodes           int           `json:"nodes" yaml:"nodes"`
	Duration        time.Duration `json:"duration" yaml:"duration"`
}

// SweepResult is the ordered trial sequence of one run.
type SweepResult struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	Solver     string        `json:"solver" yaml:"solver"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Trials     []TrialResult `json:"trials" yaml:"trials"`
}

// Best returns the trial with the highest mean temperature.
// ok is false for an empty result.
func (r *SweepResult) Best() (best TrialResult, ok bool) {
	for i, t := range r.Trials {
		if i == 0 || t.MeanTemperature > best.MeanTemperature {
			best = t
			ok = true
		}
	}
	return best, ok
}

// Radii returns the radius column in trial order.
func (r *SweepResult) Radii() []float64 {
	xs := make([]float64, len(r.Trials))
	for i, t := range r.Trials {
		xs[i] = t.Radius
	}
	return xs
}

// Means returns the mean temperature column in trial order.
func (r *SweepResult) Means() []float64 {
	ys := make([]float64, len(r.Trials))
	for i, t := range r.Trials {
		ys[i] = t.MeanTemperature
	}
	return ys
}

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// 消息类型
const (
	MsgEnv     = "env"
	MsgEnvSet  = "envSet"
	MsgStart   = "start"
	MsgStarted = "started"
	MsgTrial   = "trial"
	MsgDone    = "done"
	MsgStop    = "stop"
	MsgStopped = "stopped"
	MsgError   = "error"
)
