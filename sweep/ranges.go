package sweep

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxRadii caps generated sequences; every value costs one external solve.
const maxRadii = 10000

// RangeSpec is a half-open range start:stop:step.
type RangeSpec struct {
	Start float64
	Stop  float64
	Step  float64
}

// ParseRangeSpec parses "start:stop:step".
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return RangeSpec{}, fmt.Errorf("invalid range format %q: expected start:stop:step", s)
	}

	start, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid start value %q: %w", parts[0], err)
	}
	stop, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid stop value %q: %w", parts[1], err)
	}
	step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid step value %q: %w", parts[2], err)
	}
	if step <= 0 {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %g", step)
	}

	r := RangeSpec{Start: start, Stop: stop, Step: step}
	if n := r.Count(); n > maxRadii {
		return RangeSpec{}, fmt.Errorf("range %q has %d values, exceeds limit of %d", s, n, maxRadii)
	}
	return r, nil
}

// Count is the number of values the range expands to.
func (r RangeSpec) Count() int {
	if r.Step <= 0 || r.Stop <= r.Start {
		return 0
	}
	n := math.Ceil((r.Stop - r.Start) / r.Step)
	if math.IsNaN(n) || n <= 0 {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// Values expands the spec with Arange.
func (r RangeSpec) Values() []float64 {
	return Arange(r.Start, r.Stop, r.Step)
}

// Arange returns start, start+step, ... up to but excluding stop, with
// ceil((stop-start)/step) values like numpy's arange. Values are rounded to
// 1e-9 so 0.01+3*0.005 prints as 0.025. Returns nil for an empty range and
// for one longer than the cap; ParseRangeSpec reports the latter as an error.
func Arange(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return nil
	}
	n := math.Ceil((stop - start) / step)
	if n <= 0 || n > maxRadii || math.IsNaN(n) {
		return nil
	}

	out := make([]float64, 0, int(n))
	for i := 0; i < int(n); i++ {
		v := start + float64(i)*step
		out = append(out, math.Round(v*1e9)/1e9)
	}
	return out
}

// ParseRadii accepts either a range spec (contains ':') or a comma separated
// list. An empty string is an empty sequence.
func ParseRadii(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, ":") {
		spec, err := ParseRangeSpec(s)
		if err != nil {
			return nil, err
		}
		return spec.Values(), nil
	}

	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid radius '%s': %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) > maxRadii {
		return nil, fmt.Errorf("radius list exceeds limit of %d values", maxRadii)
	}
	return out, nil
}

// FormatRadii renders a sequence back to the comma form ParseRadii reads.
func FormatRadii(radii []float64) string {
	parts := make([]string, len(radii))
	for i, r := range radii {
		parts[i] = strconv.FormatFloat(r, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
