package judge

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// extractJSON trims a reply to its outermost JSON object: everything before
// the first brace and after the last brace is discarded. Providers wrap the
// score block in prose or markdown fences often enough that this is the
// normal case, not the exception.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parseScores decodes a score block and validates that every required key is
// present and numeric. Values are rounded to integers and clamped to [1, 5].
func parseScores(text string, keys []string) (map[string]int, error) {
	block, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("reply contains no JSON object")
	}

	var raw map[string]json.Number
	dec := json.NewDecoder(strings.NewReader(block))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("score block is not valid JSON: %w", err)
	}

	scores := make(map[string]int, len(keys))
	for _, key := range keys {
		num, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("score block missing %q", key)
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("score %q is not numeric: %w", key, err)
		}
		scores[key] = clampScore(int(math.Round(f)))
	}
	return scores, nil
}

func clampScore(s int) int {
	if s < 1 {
		return 1
	}
	if s > 5 {
		return 5
	}
	return s
}
