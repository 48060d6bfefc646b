// Package record describes the score record consumed by the difficulty engine.
//
// A record is read-only input. Every numeric attribute is optional: an absent
// value means "not extracted" and is never read as zero.
package record

import (
	"math"
	"strings"
)

// Field names a record attribute. Values match the extractor's JSON keys.
type Field string

// Identity and classification fields.
const (
	Instruments Field = "instruments"
	HasVocal    Field = "has_vocal"
	Voicing     Field = "voicing"
	NumParts    Field = "num_parts"
)

// Raw extracted counts and measurements.
const (
	EventCount               Field = "event_count"
	DurationSeconds          Field = "duration_seconds"
	EstimatedDurationSeconds Field = "estimated_duration_seconds"
	MeasureCount             Field = "measure_count"
	ChordCount               Field = "chord_count"
	OffBeatCount             Field = "off_beat_count"
	LeapCount                Field = "leap_count"
	AmbitusSemitones         Field = "ambitus_semitones"
	LargestInterval          Field = "largest_interval"
	MaxChordSpan             Field = "max_chord_span"
	ChromaticRatio           Field = "chromatic_ratio"
	ChromaticNoteCount       Field = "chromatic_note_count"
	PitchCount               Field = "pitch_count"
	TrillCount               Field = "trill_count"
	MordentCount             Field = "mordent_count"
	TurnCount                Field = "turn_count"
)

// Attributes is nil-tolerant access to a record by field name.
// Implementations must report absence instead of inventing zero values.
type Attributes interface {
	// Text returns the trimmed text value, or "" when absent.
	Text(f Field) string
	// Number returns the numeric value and whether it is present.
	Number(f Field) (float64, bool)
	// Flag returns the boolean value and whether it is present.
	Flag(f Field) (bool, bool)
}

// Blank reports whether a text field is absent or whitespace only.
func Blank(a Attributes, f Field) bool {
	return strings.TrimSpace(a.Text(f)) == ""
}

// finite rejects NaN and infinities, which extraction can produce on empty scores.
func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
