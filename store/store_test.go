package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatopt/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, started time.Time, means ...float64) *model.SweepResult {
	res := &model.SweepResult{
		RunID:      id,
		Solver:     "fdm",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
	}
	for i, m := range means {
		res.Trials = append(res.Trials, model.TrialResult{
			Index:           i,
			Radius:          0.01 + 0.005*float64(i),
			MeanTemperature: m,
			Min:             m - 1,
			Max:             m + 1,
			Nodes:           31,
			Duration:        time.Duration(i+1) * 250 * time.Millisecond,
		})
	}
	return res
}

func TestSaveAndLoad(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 123, time.UTC)
	run := sampleRun("a", t0, 23, 25, 24)
	cfg := model.SweepConfig{Side: 0.1, Radii: []float64{0.01, 0.015, 0.02}}

	require.NoError(t, s.SaveRun(ctx, run, cfg))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("loaded run differs (-saved +loaded):\n%s", diff)
	}

	gotCfg, err := s.LoadConfig(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, cfg.Radii, gotCfg.Radii)
}

func TestSaveEmptyRun(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleRun("empty", time.Unix(0, 0).UTC()), model.SweepConfig{}))
	got, err := s.Load(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got.Trials)
}

func TestDuplicateRun(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	run := sampleRun("dup", time.Now().UTC(), 21)
	require.NoError(t, s.SaveRun(ctx, run, model.SweepConfig{}))
	require.Error(t, s.SaveRun(ctx, run, model.SweepConfig{}))
}

func TestRuns(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, sampleRun("old", t0, 22, 26, 24), model.SweepConfig{}))
	require.NoError(t, s.SaveRun(ctx, sampleRun("new", t0.Add(time.Hour), 21), model.SweepConfig{}))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].RunID)
	assert.Equal(t, "old", runs[1].RunID)
	assert.Equal(t, 3, runs[1].Trials)
	assert.InDelta(t, 0.015, runs[1].BestRadius, 1e-12)
	assert.Equal(t, 26.0, runs[1].BestMean)
	assert.True(t, runs[1].StartedAt.Equal(t0))
}

func TestUnknownRun(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_, err := s.Load(ctx, "nope")
	require.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.LoadConfig(ctx, "nope")
	require.ErrorIs(t, err, ErrRunNotFound)
	require.ErrorIs(t, s.DeleteRun(ctx, "nope"), ErrRunNotFound)
}

func TestDeleteRun(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleRun("x", time.Now().UTC(), 20, 21), model.SweepConfig{}))
	require.NoError(t, s.DeleteRun(ctx, "x"))
	_, err := s.Load(ctx, "x")
	require.ErrorIs(t, err, ErrRunNotFound)

	var n int
	require.NoError(t, s.QueryRow(`SELECT COUNT(*) FROM trials`).Scan(&n))
	assert.Zero(t, n)
}

func TestInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleRun("m", time.Now().UTC(), 20), model.SweepConfig{}))
	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
