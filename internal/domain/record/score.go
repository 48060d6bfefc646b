package record

import "strings"

// Score is the concrete score record produced by feature extraction.
// Pointer fields are nil when the extractor could not compute them.
type Score struct {
	ID               string `json:"id,omitempty" yaml:"id,omitempty" parquet:"id,optional"`
	Title            string `json:"title,omitempty" yaml:"title,omitempty" parquet:"title,optional"`
	FilePath         string `json:"file_path,omitempty" yaml:"file_path,omitempty" parquet:"file_path,optional"`
	ExtractionStatus string `json:"extraction_status,omitempty" yaml:"extraction_status,omitempty" parquet:"extraction_status,optional"`

	InstrumentList string `json:"instruments,omitempty" yaml:"instruments,omitempty" parquet:"instruments,optional"`
	Vocal          *bool  `json:"has_vocal,omitempty" yaml:"has_vocal,omitempty" parquet:"has_vocal,optional"`
	VoicingText    string `json:"voicing,omitempty" yaml:"voicing,omitempty" parquet:"voicing,optional"`
	Parts          *int64 `json:"num_parts,omitempty" yaml:"num_parts,omitempty" parquet:"num_parts,optional"`

	Events            *int64   `json:"event_count,omitempty" yaml:"event_count,omitempty" parquet:"event_count,optional"`
	Duration          *float64 `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty" parquet:"duration_seconds,optional"`
	EstimatedDuration *float64 `json:"estimated_duration_seconds,omitempty" yaml:"estimated_duration_seconds,omitempty" parquet:"estimated_duration_seconds,optional"`
	Measures          *int64   `json:"measure_count,omitempty" yaml:"measure_count,omitempty" parquet:"measure_count,optional"`
	Chords            *int64   `json:"chord_count,omitempty" yaml:"chord_count,omitempty" parquet:"chord_count,optional"`
	OffBeats          *int64   `json:"off_beat_count,omitempty" yaml:"off_beat_count,omitempty" parquet:"off_beat_count,optional"`
	Leaps             *int64   `json:"leap_count,omitempty" yaml:"leap_count,omitempty" parquet:"leap_count,optional"`
	Ambitus           *int64   `json:"ambitus_semitones,omitempty" yaml:"ambitus_semitones,omitempty" parquet:"ambitus_semitones,optional"`
	Interval          *int64   `json:"largest_interval,omitempty" yaml:"largest_interval,omitempty" parquet:"largest_interval,optional"`
	ChordSpan         *int64   `json:"max_chord_span,omitempty" yaml:"max_chord_span,omitempty" parquet:"max_chord_span,optional"`
	Chromatic         *float64 `json:"chromatic_ratio,omitempty" yaml:"chromatic_ratio,omitempty" parquet:"chromatic_ratio,optional"`
	ChromaticNotes    *int64   `json:"chromatic_note_count,omitempty" yaml:"chromatic_note_count,omitempty" parquet:"chromatic_note_count,optional"`
	Pitches           *int64   `json:"pitch_count,omitempty" yaml:"pitch_count,omitempty" parquet:"pitch_count,optional"`
	Trills            *int64   `json:"trill_count,omitempty" yaml:"trill_count,omitempty" parquet:"trill_count,optional"`
	Mordents          *int64   `json:"mordent_count,omitempty" yaml:"mordent_count,omitempty" parquet:"mordent_count,optional"`
	Turns             *int64   `json:"turn_count,omitempty" yaml:"turn_count,omitempty" parquet:"turn_count,optional"`
}

// Key returns the identifier used to store the record: ID, else FilePath.
func (s *Score) Key() string {
	if id := strings.TrimSpace(s.ID); id != "" {
		return id
	}
	return strings.TrimSpace(s.FilePath)
}

// Text implements Attributes.
func (s *Score) Text(f Field) string {
	switch f {
	case Instruments:
		return strings.TrimSpace(s.InstrumentList)
	case Voicing:
		return strings.TrimSpace(s.VoicingText)
	default:
		return ""
	}
}

// Flag implements Attributes.
func (s *Score) Flag(f Field) (bool, bool) {
	if f != HasVocal || s.Vocal == nil {
		return false, false
	}
	return *s.Vocal, true
}

// Number implements Attributes.
func (s *Score) Number(f Field) (float64, bool) {
	switch f {
	case DurationSeconds:
		return floatPtr(s.Duration)
	case EstimatedDurationSeconds:
		return floatPtr(s.EstimatedDuration)
	case ChromaticRatio:
		return floatPtr(s.Chromatic)
	}
	if p, ok := s.counts()[f]; ok {
		return intPtr(p)
	}
	return 0, false
}

func (s *Score) counts() map[Field]*int64 {
	return map[Field]*int64{
		NumParts:           s.Parts,
		EventCount:         s.Events,
		MeasureCount:       s.Measures,
		ChordCount:         s.Chords,
		OffBeatCount:       s.OffBeats,
		LeapCount:          s.Leaps,
		AmbitusSemitones:   s.Ambitus,
		LargestInterval:    s.Interval,
		MaxChordSpan:       s.ChordSpan,
		ChromaticNoteCount: s.ChromaticNotes,
		PitchCount:         s.Pitches,
		TrillCount:         s.Trills,
		MordentCount:       s.Mordents,
		TurnCount:          s.Turns,
	}
}

func floatPtr(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return finite(*p)
}

func intPtr(p *int64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return float64(*p), true
}

// Int64 returns a pointer to v. Handy for building records in code.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
