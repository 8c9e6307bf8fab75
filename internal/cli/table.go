package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lattice/pkg/scene"
)

// maxListed caps the node names shown in the Remeasured column.
const maxListed = 4

// frameTable renders one row per frame of rep.
func frameTable(rep *scene.Report) string {
	rows := make([][]string, 0, len(rep.Frames))
	for _, f := range rep.Frames {
		resized := ""
		if f.RootResized {
			resized = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(f.Index),
			f.Label,
			f.Size.String(),
			resized,
			listNames(f.Remeasured),
			strconv.Itoa(sum(f.Counts.Measures)),
			strconv.Itoa(sum(f.Counts.Relayouts)),
			fmtDuration(f.Duration),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Frame", "Size", "Resized", "Remeasured", "Measures", "Relayouts", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0, 7:
				return base.Foreground(colorDim)
			case 3:
				return base.Inherit(styleResized)
			case 4:
				if row < len(rep.Frames) && row > 0 && len(rep.Frames[row].Remeasured) > 0 {
					return base.Inherit(styleHot)
				}
			}
			return base
		})
	return t.Render()
}

// listNames joins names, eliding all but the first few.
func listNames(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	if len(names) <= maxListed {
		return strings.Join(names, " ")
	}
	return strings.Join(names[:maxListed], " ") + fmt.Sprintf(" +%d", len(names)-maxListed)
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func fmtDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return d.Round(10 * time.Microsecond).String()
}
