package report

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"defaultpoetry/internal/merge"
)

// Summary counts decisions per action.
type Summary map[merge.Action]int

var summaryOrder = []merge.Action{
	merge.Merged,
	merge.AppendedArrayItem,
	merge.Overwrote,
	merge.SkippedKeyExists,
	merge.SkippedTypeConflict,
}

// Summarize counts decisions by action.
func Summarize(decisions []merge.Decision) Summary {
	s := make(Summary, len(summaryOrder))
	for _, d := range decisions {
		s[d.Action]++
	}
	return s
}

// Total returns the number of decisions counted.
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Changed reports whether any decision modified the target.
func (s Summary) Changed() bool {
	return s[merge.Merged]+s[merge.AppendedArrayItem]+s[merge.Overwrote] > 0
}

// SummaryTable renders the counts as a table with one row per action.
func SummaryTable(s Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(table.Row{"Action", "Count"})
	for _, action := range summaryOrder {
		tw.AppendRow(table.Row{action.String(), strconv.Itoa(s[action])})
	}
	tw.AppendFooter(table.Row{"total", strconv.Itoa(s.Total())})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

// LogDecisions writes every decision to logger at debug level.
func LogDecisions(ctx context.Context, logger *slog.Logger, decisions []merge.Decision) {
	if logger == nil {
		return
	}
	for _, d := range decisions {
		logger.LogAttrs(ctx, slog.LevelDebug, "merge decision",
			slog.String("component", "merge"),
			slog.String("action", d.Action.String()),
			slog.String("path", d.Path.String()),
			slog.String("source_kind", d.SourceKind.String()),
		)
	}
}
