package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func formatSeed(seed uint32) string {
	return fmt.Sprintf("0x%08x", seed)
}

// parseSeed accepts a hex seed with or without the 0x prefix. Values up to
// 1<<32 are allowed so that an exclusive range end can cover 0xffffffff.
func parseSeed(s string) (uint64, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(h, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex seed %q", s)
	}
	if v > 1<<32 {
		return 0, fmt.Errorf("seed %q out of 32-bit range", s)
	}
	return v, nil
}

// formatDuration renders whole seconds as "[N days ]HH:MM:SS hours",
// "MM:SS minutes" or "SS seconds".
func formatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	days := total / 86400
	total -= days * 86400
	hours := total / 3600
	total -= hours * 3600
	minutes := total / 60
	seconds := total - minutes*60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%d days ", days)
	}
	switch {
	case hours > 0:
		fmt.Fprintf(&b, "%02d:%02d:%02d hours", hours, minutes, seconds)
	case minutes > 0:
		fmt.Fprintf(&b, "%02d:%02d minutes", minutes, seconds)
	default:
		fmt.Fprintf(&b, "%02d seconds", seconds)
	}
	return b.String()
}

// renderLeaderboard draws the best seeds as a table, fastest first.
func renderLeaderboard(best []SeedResult) string {
	rows := make([][]string, len(best))
	for i, r := range best {
		rows[i] = []string{strconv.Itoa(i + 1), formatSeed(r.Seed), fmt.Sprintf("%.2f", r.Time)}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Seed", "Time").
		Rows(rows...).
		String()
}

func levelNumbers(levels []int) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strconv.Itoa(l + 1)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatReport renders a seed report as text. Chapter and level numbers are
// 1-based.
func FormatReport(rep *SeedReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "seed: %s\n", formatSeed(rep.Seed))
	fmt.Fprintf(&b, "any%% par time: %.2f\n", rep.AnyPercent)
	fmt.Fprintf(&b, "full par time: %.2f\n", rep.Full)

	for ci := range rep.Chapters {
		cr := &rep.Chapters[ci]
		pacifiers := cr.Structure.Pacifiers
		slices.Sort(pacifiers[:])

		fmt.Fprintf(&b, "\nchapter %d - any%% par time %.2f\n", ci+1, cr.AnyPercent)
		fmt.Fprintf(&b, "\twarpzone: %d - pacifiers: %s\n", cr.Structure.Warpzone+1, levelNumbers(pacifiers[:]))
		for li := range cr.Levels {
			lr := &cr.Levels[li]
			var tags []string
			if lr.Warpzone {
				tags = append(tags, "warpzone")
			}
			if lr.Pacifier {
				tags = append(tags, "pacifier")
			}
			fmt.Fprintf(&b, "\t%d-%d: par time %.2f", ci+1, li+1, lr.ParTime)
			if len(tags) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(tags, ", "))
			}
			ids := make([]string, len(lr.Chunks))
			for i, c := range lr.Chunks {
				ids[i] = strconv.Itoa(c.ID)
			}
			fmt.Fprintf(&b, " chunks %s\n", strings.Join(ids, " "))
		}
	}
	return b.String()
}
