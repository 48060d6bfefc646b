package difficulty

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/etude/internal/domain/record"
)

// Instrument is the category that selects weights and band tables.
type Instrument string

// Instrument categories.
const (
	Keyboard Instrument = "keyboard"
	Strings  Instrument = "strings"
	Guitar   Instrument = "guitar"
	Wind     Instrument = "wind"
	Harp     Instrument = "harp"
	Voice    Instrument = "voice"
	Generic  Instrument = "generic"
)

// Instruments lists every category in detection priority order.
func Instruments() []Instrument {
	return []Instrument{Keyboard, Strings, Guitar, Wind, Harp, Voice, Generic}
}

// ParseInstrument maps a category name to an Instrument.
func ParseInstrument(s string) (Instrument, error) {
	want := Instrument(strings.ToLower(strings.TrimSpace(s)))
	for _, inst := range Instruments() {
		if inst == want {
			return inst, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInstrument, s)
}

// Keyword patterns are matched on whole words so that "lute" does not fire on
// "flute" and "bass" does not fire on "bassoon". Order is significant: the
// first category that matches wins.
var instrumentPatterns = []struct {
	inst Instrument
	re   *regexp.Regexp
}{
	{Keyboard, wordPattern("piano", "pianoforte", "fortepiano", "organ", "harpsichord", "keyboard", "clavichord")},
	{Strings, wordPattern("violin", "viola", "cello", "violoncello", "fiddle", "double bass", "contrabass", "string quartet", "strings")},
	{Guitar, wordPattern("guitar", "lute", "vihuela", "ukulele")},
	{Wind, wordPattern("flute", "oboe", "clarinet", "bassoon", "saxophone", "sax", "trumpet", "horn", "trombone", "tuba", "recorder")},
	{Harp, wordPattern("harp")},
}

var voicePattern = regexp.MustCompile(`(?i)\b(?:voices?|vocals?|choir|chorus|solo[\s-]?s|satb|ssa|ssaa|ttbb|sopranos?|mezzo|altos?|tenors?|baritones?|bass|basses)\b`)

func wordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)s?\b`)
}

// DetectInstrument classifies a record into exactly one category.
func DetectInstrument(rec record.Attributes) Instrument {
	text := rec.Text(record.Instruments)
	for _, p := range instrumentPatterns {
		if text != "" && p.re.MatchString(text) {
			return p.inst
		}
	}
	if vocal, ok := rec.Flag(record.HasVocal); ok && vocal {
		return Voice
	}
	if voicePattern.MatchString(text) || voicePattern.MatchString(rec.Text(record.Voicing)) {
		return Voice
	}
	return Generic
}
