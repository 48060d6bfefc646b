package difficulty

// Band is one row of a threshold table: values at or above Threshold score Score.
type Band struct {
	Threshold float64
	Score     float64
}

// Bands is a threshold table ordered from the highest threshold down.
type Bands []Band

// Lookup returns the score of the first band the value meets, or 0 when the
// value is below every band.
func (b Bands) Lookup(v float64) float64 {
	for _, band := range b {
		if v >= band.Threshold {
			return band.Score
		}
	}
	return 0
}

// Threshold tables. These are never mutated.
var (
	throughputBands = Bands{{8, 1.0}, {5, 0.7}, {2.9, 0.4}}
	densityBands    = Bands{{20, 0.7}, {15, 0.6}, {12, 0.5}, {10, 0.4}, {8, 0.3}, {6, 0.2}}

	keyboardChordSpanBands = Bands{{16, 1.0}, {14, 0.7}, {12, 0.3}}
	chordSpanBands         = Bands{{14, 1.0}, {12, 0.5}}

	keyboardIntervalBands = Bands{{24, 1.0}, {19, 0.6}, {15, 0.3}}
	stringsIntervalBands  = Bands{{15, 1.0}, {12, 0.7}, {7, 0.4}}
	intervalBands         = Bands{{15, 1.0}, {12, 0.5}, {7, 0.2}}

	chromaticBands = Bands{{0.2, 1.0}, {0.1, 0.7}, {0.05, 0.4}}

	guitarRangeBands = Bands{{40, 1.0}, {36, 0.5}, {30, 0.3}, {27, 0.15}}
	rangeBands       = Bands{{24, 1.0}, {18, 0.6}, {12, 0.3}}

	leapBands = Bands{{0.3, 1.0}, {0.2, 0.7}, {0.1, 0.4}}
)

// levelBands maps the achieved/max ratio to a difficulty level.
var levelBands = []struct {
	ratio float64
	level Level
}{{0.8, Expert}, {0.6, Advanced}, {0.4, Intermediate}, {0.2, Easy}}

func chordSpanTable(inst Instrument) Bands {
	if inst == Keyboard {
		return keyboardChordSpanBands
	}
	return chordSpanBands
}

func intervalTable(inst Instrument) Bands {
	switch inst {
	case Keyboard:
		return keyboardIntervalBands
	case Strings:
		return stringsIntervalBands
	default:
		return intervalBands
	}
}

func rangeTable(inst Instrument) Bands {
	if inst == Guitar {
		return guitarRangeBands
	}
	return rangeBands
}
