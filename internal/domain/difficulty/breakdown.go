package difficulty

import (
	"encoding/json"
	"fmt"
)

// summaryKey is the breakdown key holding the weighted totals.
const summaryKey = "summary"

// MetricScore is one scored metric.
type MetricScore struct {
	// Source names the value that was banded, e.g. "throughput".
	Source string  `json:"source,omitempty" yaml:"source,omitempty"`
	Value  float64 `json:"value" yaml:"value"`
	Score  float64 `json:"score" yaml:"score"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Summary holds the weighted totals. Ratio is zero when Max is zero.
type Summary struct {
	Achieved float64 `json:"achieved" yaml:"achieved"`
	Max      float64 `json:"max" yaml:"max"`
	Ratio    float64 `json:"ratio" yaml:"ratio"`
}

// Breakdown lists every scored metric plus the summary.
type Breakdown struct {
	Metrics map[Metric]MetricScore
	Summary Summary
}

func (b Breakdown) clone() Breakdown {
	out := Breakdown{Metrics: make(map[Metric]MetricScore, len(b.Metrics)), Summary: b.Summary}
	for k, v := range b.Metrics {
		out.Metrics[k] = v
	}
	return out
}

// MarshalJSON renders the breakdown as one object keyed by metric name with
// an extra "summary" key.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Metrics)+1)
	for m, s := range b.Metrics {
		out[string(m)] = s
	}
	out[summaryKey] = b.Summary
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode breakdown: %w", err)
	}
	b.Metrics = make(map[Metric]MetricScore, len(raw))
	for k, v := range raw {
		if k == summaryKey {
			if err := json.Unmarshal(v, &b.Summary); err != nil {
				return fmt.Errorf("decode breakdown summary: %w", err)
			}
			continue
		}
		var s MetricScore
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("decode breakdown metric %s: %w", k, err)
		}
		b.Metrics[Metric(k)] = s
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML reports.
func (b Breakdown) MarshalYAML() (any, error) {
	out := make(map[string]any, len(b.Metrics)+1)
	for m, s := range b.Metrics {
		out[string(m)] = s
	}
	out[summaryKey] = b.Summary
	return out, nil
}
