package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/roster"
	"github.com/mattn/go-runewidth"
)

// FormatSummary renders a run summary as a two-column markdown table.
func FormatSummary(s roster.Summary) string {
	rows := [][2]string{
		{"Records", fmt.Sprint(s.TotalRecords)},
		{"Pages processed", fmt.Sprint(s.PagesProcessed)},
		{"Empty pages", fmt.Sprint(s.EmptyPages)},
		{"API extractions", fmt.Sprint(s.APIExtractions)},
		{"Embedded JSON extractions", fmt.Sprint(s.EmbeddedExtractions)},
		{"JSON-LD extractions", fmt.Sprint(s.StructuredExtractions)},
		{"HTML extractions", fmt.Sprint(s.HTMLExtractions)},
		{"Profile enrichments", fmt.Sprint(s.ProfileEnrichments)},
		{"Blocked requests", fmt.Sprint(s.BlockedRequests)},
		{"Duration", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String()},
	}
	return formatTable([2]string{"Metric", "Value"}, rows)
}

// formatTable pads cells by display width so wide runes stay aligned.
func formatTable(header [2]string, rows [][2]string) string {
	widths := [2]int{3, 3}
	for _, row := range append([][2]string{header}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	line := func(row [2]string) {
		b.WriteString("|")
		for i, cell := range row {
			b.WriteString(" ")
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	line(header)
	line([2]string{strings.Repeat("-", widths[0]), strings.Repeat("-", widths[1])})
	for _, row := range rows {
		line(row)
	}
	return b.String()
}
