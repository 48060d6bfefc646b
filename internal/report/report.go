// Package report renders batch grading results.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/etude/internal/batch"
	"github.com/okian/etude/internal/domain/types"
)

// Format selects an output renderer.
type Format string

// Output formats.
const (
	FormatTable Format = "table"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSONL, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want table, jsonl or yaml)", ErrUnknownFormat, s)
	}
}

// Write renders outcomes and their summary to w.
func Write(w io.Writer, format Format, outcomes []batch.Outcome, sum batch.Summary) error {
	switch format {
	case FormatJSONL:
		return WriteJSONL(w, outcomes)
	case FormatYAML:
		return WriteYAML(w, outcomes, sum)
	case FormatTable:
		return WriteTable(w, outcomes, sum)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Views converts outcomes to their wire form.
func Views(outcomes []batch.Outcome) []types.ScoreView {
	views := make([]types.ScoreView, len(outcomes))
	for i := range outcomes {
		o := &outcomes[i]
		views[i] = types.NewScoreView(o.RecordID, o.Title, o.Result.Grade, o.Result.Metrics)
	}
	return views
}

// WriteJSONL writes one JSON object per outcome.
func WriteJSONL(w io.Writer, outcomes []batch.Outcome) error {
	enc := json.NewEncoder(w)
	for _, v := range Views(outcomes) {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode %s: %w", v.RecordID, err)
		}
	}
	return nil
}

type yamlDocument struct {
	Summary batch.Summary     `yaml:"summary"`
	Results []types.ScoreView `yaml:"results"`
}

// WriteYAML writes the summary followed by every result.
func WriteYAML(w io.Writer, outcomes []batch.Outcome, sum batch.Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDocument{Summary: sum, Results: Views(outcomes)}); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}
