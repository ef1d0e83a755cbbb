package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Output is the benchmark run record written to disk and rendered by the
// report command.
type Output struct {
	RunType      string        `json:"run_type"`
	RunID        string        `json:"run_id"`
	Timestamp    time.Time     `json:"timestamp"`
	TotalQueries int           `json:"total_queries"`
	Failed       int           `json:"failed_queries"`
	Summary      Summary       `json:"summary"`
	Results      []QueryResult `json:"results"`
}

// Write serializes the output into dir, named by the run timestamp. Returns
// the written path.
func (o Output) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("bench-%s-%s.json", o.Timestamp.Format("20060102-150405"), o.RunID)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal benchmark output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write benchmark output: %w", err)
	}
	return path, nil
}

// Load reads a previously written benchmark output.
func Load(path string) (Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Output{}, fmt.Errorf("read benchmark output: %w", err)
	}

	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return Output{}, fmt.Errorf("parse benchmark output: %w", err)
	}
	return out, nil
}
