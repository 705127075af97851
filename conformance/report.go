package conformance

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// RenderReport prints the per-scenario matrix, totals, and failure details.
func RenderReport(w io.Writer, results []Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Suite", "Scenario", "State", "Duration", "Detail"})
	table.SetAutoWrapText(false)

	for _, res := range results {
		detail := ""
		if res.Err != nil {
			detail = shorten(res.Err.Error(), 80)
		}
		table.Append([]string{
			res.Suite,
			res.Scenario,
			string(res.State),
			formatDuration(res),
			detail,
		})
	}
	table.Render()

	s := Summarize(results)
	fmt.Fprintf(w, "\nTotals | Scenarios: %d | Passed: %d | Failed: %d | Not run: %d\n",
		s.Total, s.Passed, s.Failed, s.NotRun)

	failures := false
	for _, res := range results {
		if res.State != StateFailed {
			continue
		}
		if !failures {
			fmt.Fprintln(w, "\nFailures:")
			failures = true
		}
		fmt.Fprintf(w, "- %s / %s [%s]: %s\n", res.Suite, res.Scenario, res.Kind, shorten(res.Err.Error(), 200))
	}
}

func formatDuration(res Result) string {
	if res.State == StateNotRun {
		return "-"
	}
	return res.Duration.Truncate(time.Millisecond).String()
}

// shorten trims whitespace and clamps the string to the provided rune length.
func shorten(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
