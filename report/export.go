package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"heatopt/model"
)

var csvHeader = []string{"index", "radius", "mean_temperature", "min", "max", "nodes", "duration_ms"}

// WriteCSV writes one row per trial in trial order.
func WriteCSV(res *model.SweepResult, w io.Writer) error {
	if res == nil || len(res.Trials) == 0 {
		return ErrNoData
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range res.Trials {
		row := []string{
			strconv.Itoa(t.Index),
			strconv.FormatFloat(t.Radius, 'g', -1, 64),
			strconv.FormatFloat(t.MeanTemperature, 'f', 6, 64),
			strconv.FormatFloat(t.Min, 'f', 6, 64),
			strconv.FormatFloat(t.Max, 'f', 6, 64),
			strconv.Itoa(t.Nodes),
			strconv.FormatInt(t.Duration.Milliseconds(), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(res *model.SweepResult, w io.Writer) error {
	if res == nil || len(res.Trials) == 0 {
		return ErrNoData
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func WriteYAML(res *model.SweepResult, w io.Writer) error {
	if res == nil || len(res.Trials) == 0 {
		return ErrNoData
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
