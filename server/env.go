package server

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"heatopt/model"
	"heatopt/problem"
	"heatopt/sweep"
)

// applyEnv merges the overrides of an "env" message into cfg. Content is a
// JSON object using the config's field names, e.g.
//
//	{"solver": "fdm", "radii": "0.01:0.03:0.005", "matrix": {"conductivity": "20"}}
//
// Values are decoded weakly, so numbers may arrive as strings. Nothing is
// changed when any part is invalid.
func applyEnv(cfg *model.SweepConfig, backend *string, content string) error {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return fmt.Errorf("env: %w", err)
	}

	nextBackend := *backend
	if v, ok := raw["solver"]; ok {
		s, ok := v.(string)
		if !ok || s == "" {
			return fmt.Errorf("env: solver must be a name")
		}
		nextBackend = s
		delete(raw, "solver")
	}

	next := cfg.Copy()
	if v, ok := raw["radii"]; ok {
		if s, ok := v.(string); ok {
			radii, err := sweep.ParseRadii(s)
			if err != nil {
				return fmt.Errorf("env: %w", err)
			}
			raw["radii"] = radii
		}
		// decoding into a longer slice keeps its tail
		next.Radii = nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &next,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	if err := problem.Validate(&next); err != nil {
		return fmt.Errorf("env: %w", err)
	}

	*cfg = next
	*backend = nextBackend
	return nil
}
