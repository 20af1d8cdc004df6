package cli

import (
	"fmt"
	"strings"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Static bar for achievement progress:
// [=========>....................]  12/25

const barWidth = 30 // Characters for the progress bar

func progressBar(current, target int64) string {
	if target <= 0 {
		return "[" + strings.Repeat("=", barWidth) + "]"
	}
	if current < 0 {
		current = 0
	}
	if current > target {
		current = target
	}

	filled := int(current * barWidth / target)
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}
	return "[" + bar + "]"
}

func progressLabel(current, target int64) string {
	return fmt.Sprintf("%d/%d", current, target)
}

// weekStrip renders the weekly calendar Sunday first: "S M T W T F S" with
// completed days in brackets.
func weekStrip(week [7]bool) string {
	days := [7]string{"S", "M", "T", "W", "T", "F", "S"}
	parts := make([]string, 7)
	for i, done := range week {
		if done {
			parts[i] = "[" + days[i] + "]"
		} else {
			parts[i] = " " + days[i] + " "
		}
	}
	return strings.Join(parts, "")
}

// remainingLabel prints the quota, spelling out the premium sentinel.
func remainingLabel(n int) string {
	if n < 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}
