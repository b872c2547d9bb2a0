// Package statistics summarizes the notes of a user by month.
package statistics

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/at-ishikawa/outliner/internal/caret"
	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/outline"
)

// PeriodStatistics holds statistics for one month, "2025-01".
type PeriodStatistics struct {
	Period       string
	NotesCreated int
	NotesUpdated int
}

// OutlineStatistics counts the contents of a forest, hidden nodes included.
type OutlineStatistics struct {
	Nodes          int
	MaxDepth       int
	Words          int
	ChecklistItems int
	ChecklistDone  int
}

// AggregateStatistics holds totals across the filtered notes.
type AggregateStatistics struct {
	Notes int
	OutlineStatistics
}

// StatisticsResult holds both per-period and aggregate statistics
type StatisticsResult struct {
	Periods   []PeriodStatistics
	Aggregate AggregateStatistics
}

// CountOutline walks f and counts its nodes, words and checklist items.
func CountOutline(f outline.Forest) OutlineStatistics {
	var stats OutlineStatistics
	f.Walk(func(n *outline.Node, depth int) bool {
		stats.Nodes++
		stats.MaxDepth = max(stats.MaxDepth, depth+1)
		stats.Words += countWords(n.Content)
		if n.Check.IsChecklist() {
			stats.ChecklistItems++
			if n.Check.Checked() {
				stats.ChecklistDone++
			}
		}
		return true
	})
	return stats
}

func countWords(content string) int {
	return len(strings.FieldsFunc(caret.PlainText(content), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))
}

// CalculateStatistics groups notes by the month they were created and last updated.
// It accepts optional year and month filters (0 means no filter). A note counts toward the
// aggregate when either of its dates matches the filter.
func CalculateStatistics(notes []note.Note, year, month int) StatisticsResult {
	periods := make(map[string]*PeriodStatistics)
	var aggregate AggregateStatistics

	for _, n := range notes {
		matched := false
		if !n.CreatedAt.IsZero() && matchesFilter(n.CreatedAt.Year(), int(n.CreatedAt.Month()), year, month) {
			ensurePeriodExists(periods, n.CreatedAt.Year(), int(n.CreatedAt.Month())).NotesCreated++
			matched = true
		}
		if !n.UpdatedAt.IsZero() && matchesFilter(n.UpdatedAt.Year(), int(n.UpdatedAt.Month()), year, month) {
			ensurePeriodExists(periods, n.UpdatedAt.Year(), int(n.UpdatedAt.Month())).NotesUpdated++
			matched = true
		}
		if !matched {
			continue
		}

		counts := CountOutline(n.RootNodes)
		aggregate.Notes++
		aggregate.Nodes += counts.Nodes
		aggregate.MaxDepth = max(aggregate.MaxDepth, counts.MaxDepth)
		aggregate.Words += counts.Words
		aggregate.ChecklistItems += counts.ChecklistItems
		aggregate.ChecklistDone += counts.ChecklistDone
	}

	result := StatisticsResult{
		Periods:   make([]PeriodStatistics, 0, len(periods)),
		Aggregate: aggregate,
	}
	for _, p := range periods {
		result.Periods = append(result.Periods, *p)
	}
	// Newest first
	sort.Slice(result.Periods, func(i, j int) bool {
		return result.Periods[i].Period > result.Periods[j].Period
	})
	return result
}

func ensurePeriodExists(periods map[string]*PeriodStatistics, year, month int) *PeriodStatistics {
	period := fmt.Sprintf("%d-%02d", year, month)
	if periods[period] == nil {
		periods[period] = &PeriodStatistics{Period: period}
	}
	return periods[period]
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}
