package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/etude/internal/batch"
	"github.com/okian/etude/internal/domain/difficulty"
)

const (
	barWidth   = 20
	idMaxWidth = 48
)

type tableStyles struct {
	header   lipgloss.Style
	dim      lipgloss.Style
	levels   map[string]lipgloss.Style
	fallback lipgloss.Style
}

func newTableStyles(r *lipgloss.Renderer) tableStyles {
	return tableStyles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("8")),
		levels: map[string]lipgloss.Style{
			difficulty.Beginner.Label():     r.NewStyle().Foreground(lipgloss.Color("10")),
			difficulty.Easy.Label():         r.NewStyle().Foreground(lipgloss.Color("14")),
			difficulty.Intermediate.Label(): r.NewStyle().Foreground(lipgloss.Color("12")),
			difficulty.Advanced.Label():     r.NewStyle().Foreground(lipgloss.Color("3")),
			difficulty.Expert.Label():       r.NewStyle().Foreground(lipgloss.Color("9")),
		},
		fallback: r.NewStyle(),
	}
}

func (s tableStyles) level(label string) lipgloss.Style {
	if st, ok := s.levels[label]; ok {
		return st
	}
	return s.fallback
}

// WriteTable renders a console table and the level distribution. Colors
// follow w's terminal capabilities.
func WriteTable(w io.Writer, outcomes []batch.Outcome, sum batch.Summary) error {
	styles := newTableStyles(lipgloss.NewRenderer(w))
	views := Views(outcomes)

	idWidth := len("RECORD")
	for _, v := range views {
		idWidth = max(idWidth, min(len([]rune(v.RecordID)), idMaxWidth))
	}

	var b strings.Builder
	b.WriteString(styles.header.Render(strings.Join([]string{
		col("RECORD", idWidth), col("INSTRUMENT", 10), col("LEVEL", 5), col("LABEL", 12), col("RATIO", 6),
	}, "  ")))
	b.WriteByte('\n')

	for _, v := range views {
		if !v.Applicable {
			b.WriteString(styles.dim.Render(strings.Join([]string{
				col(v.RecordID, idWidth), col(v.Instrument, 10), col("-", 5), col("n/a", 12), v.Reason,
			}, "  ")))
			b.WriteByte('\n')
			continue
		}
		ratio := strconv.FormatFloat(v.Breakdown.Summary.Ratio, 'f', 3, 64)
		b.WriteString(strings.Join([]string{
			col(v.RecordID, idWidth),
			col(v.Instrument, 10),
			col(strconv.Itoa(v.Difficulty), 5),
			styles.level(v.Label).Render(col(v.Label, 12)),
			ratio,
		}, "  "))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(styles.header.Render(fmt.Sprintf("%d records, %d graded, %d not applicable",
		sum.Total, sum.Applicable, sum.Inapplicable)))
	b.WriteByte('\n')
	for l := difficulty.Beginner; l <= difficulty.Expert; l++ {
		label := l.Label()
		n := sum.ByLevel[label]
		fmt.Fprintf(&b, "  %s %s %d\n", col(label, 12), renderBar(n, sum.Applicable, styles.level(label), styles.dim), n)
	}
	for _, reason := range []difficulty.Reason{
		difficulty.ReasonAccompaniedVocal, difficulty.ReasonEnsemble, difficulty.ReasonNoInstrument,
	} {
		if n := sum.ByReason[string(reason)]; n > 0 {
			b.WriteString(styles.dim.Render(fmt.Sprintf("  skipped %s: %d", reason, n)))
			b.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// col pads or truncates s to width runes.
func col(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		r = append(r[:width-1], '…')
	}
	return string(r) + strings.Repeat(" ", width-len(r))
}

func renderBar(count, total int, fill, empty lipgloss.Style) string {
	if total == 0 {
		return empty.Render(strings.Repeat("░", barWidth))
	}
	filled := (count * barWidth) / total
	if count > 0 && filled == 0 {
		filled = 1
	}
	return fill.Render(strings.Repeat("█", filled)) + empty.Render(strings.Repeat("░", barWidth-filled))
}
