package shared

import "fmt"

// FormatCompletionTime renders elapsed seconds the way the leaderboard
// displays them, e.g. 93 -> "1分33秒". Fractional seconds are truncated.
func FormatCompletionTime(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d分%d秒", total/60, total%60)
}
