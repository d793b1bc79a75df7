package main

import (
	"fmt"
	"io"
	"strings"

	"logtab/calendar"
	"logtab/store/duck"
)

const barWidth = 40

func printSummary(wtr io.Writer, summary duck.Summary) {

	events := summary.Events
	if len(events) == 0 {
		fmt.Fprintln(wtr, "events over time: no timestamps")
	} else {
		peak := events[0]
		for _, point := range events {
			if point.Count > peak.Count {
				peak = point
			}
		}

		fmt.Fprintf(wtr, "events over time: %s .. %s, %d seconds, peak %d at %s\n",
			calendar.Timestamp(events[0].Seconds), calendar.Timestamp(events[len(events)-1].Seconds),
			len(events), peak.Count, calendar.Timestamp(peak.Seconds))
	}

	printCounts(wtr, "levels", summary.Levels)
	printCounts(wtr, "event codes", summary.EventCodes)
}

func printCounts(wtr io.Writer, title string, counts []duck.Count) {

	fmt.Fprintf(wtr, "%s:\n", title)

	most := 0
	for _, count := range counts {
		most = max(most, count.Count)
	}

	for _, count := range counts {
		value := count.Value
		if value == "" {
			value = "(none)"
		}
		bar := strings.Repeat("█", count.Count*barWidth/most)
		fmt.Fprintf(wtr, "  %-10s %6d %s\n", value, count.Count, bar)
	}
}
