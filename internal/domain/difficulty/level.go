package difficulty

// Level is a difficulty grade from 1 (beginner) to 5 (expert).
type Level int

// Difficulty levels.
const (
	Beginner     Level = 1
	Easy         Level = 2
	Intermediate Level = 3
	Advanced     Level = 4
	Expert       Level = 5
)

// Label returns the human label for the level.
func (l Level) Label() string {
	switch l {
	case Beginner:
		return "beginner"
	case Easy:
		return "easy"
	case Intermediate:
		return "intermediate"
	case Advanced:
		return "advanced"
	case Expert:
		return "expert"
	default:
		return ""
	}
}

// RatioToDifficulty maps weighted points to a level. With no computable
// metric (maxPossible <= 0) the result is Beginner.
func RatioToDifficulty(achieved, maxPossible float64) Level {
	if maxPossible <= 0 {
		return Beginner
	}
	ratio := achieved / maxPossible
	for _, b := range levelBands {
		if ratio >= b.ratio {
			return b.level
		}
	}
	return Beginner
}
