// Package stats computes the aggregate workshop figures shown to managers.
//
// Everything here is pure: callers assemble flat rows from storage and the
// functions fold them in a single pass. Histograms come back as ordered
// slices because their ordering (count descending, then label) is part of
// the presented contract.
package stats

import (
	"sort"
	"strings"
	"time"
)

// UnspecifiedLabel buckets records whose category is blank or missing.
const UnspecifiedLabel = "unspecified"

// Record is the flat per-request row the aggregator reads. Category fields
// carry display names already joined out of reference tables.
type Record struct {
	StartDate      time.Time
	CompletionDate *time.Time
	StatusIsFinal  bool
	EquipmentType  string
	IssueType      string
}

// CategoryCount is one histogram bucket.
type CategoryCount struct {
	Label string
	Count int
}

// Summary is the aggregate view over a set of repair requests.
//
// AverageRepairDays is nil when no completed request yields a usable
// duration. A request counts as completed when its status is final and a
// completion date is present; completed requests whose completion date
// precedes their start date still count as completed but are excluded from
// the average.
type Summary struct {
	TotalRequests     int
	CompletedRequests int
	AverageRepairDays *float64
	ByEquipmentType   []CategoryCount
	ByIssueType       []CategoryCount
}

// Summarize folds the rows into totals, the average repair duration and the
// per-category histograms. It never mutates its input and is safe to rerun
// on the same rows.
func Summarize(records []Record) Summary {
	var (
		summary    Summary
		equipment  = make(map[string]int)
		issues     = make(map[string]int)
		sampleDays int
		sampleSize int
	)

	for _, r := range records {
		summary.TotalRequests++

		equipment[normalizeLabel(r.EquipmentType)]++
		issues[normalizeLabel(r.IssueType)]++

		if !r.StatusIsFinal || r.CompletionDate == nil {
			continue
		}
		summary.CompletedRequests++

		days := wholeDaysBetween(r.StartDate, *r.CompletionDate)
		if days < 0 {
			continue
		}
		sampleDays += days
		sampleSize++
	}

	if sampleSize > 0 {
		avg := float64(sampleDays) / float64(sampleSize)
		summary.AverageRepairDays = &avg
	}
	summary.ByEquipmentType = sortedCounts(equipment)
	summary.ByIssueType = sortedCounts(issues)
	return summary
}

// Assignment is one (specialist, request) pairing with the finality of the
// request's current status.
type Assignment struct {
	SpecialistID   string
	SpecialistName string
	StatusIsFinal  bool
}

// LoadEntry is the number of open requests currently on one specialist.
type LoadEntry struct {
	SpecialistID   string
	SpecialistName string
	ActiveRequests int
}

// SpecialistLoad counts non-final assignments per specialist, busiest
// first, names ascending on ties. Specialists without open assignments do
// not appear.
func SpecialistLoad(rows []Assignment) []LoadEntry {
	type acc struct {
		name  string
		count int
	}
	byID := make(map[string]*acc)
	for _, row := range rows {
		if row.StatusIsFinal {
			continue
		}
		a, ok := byID[row.SpecialistID]
		if !ok {
			a = &acc{name: row.SpecialistName}
			byID[row.SpecialistID] = a
		}
		a.count++
	}

	entries := make([]LoadEntry, 0, len(byID))
	for id, a := range byID {
		entries = append(entries, LoadEntry{
			SpecialistID:   id,
			SpecialistName: a.name,
			ActiveRequests: a.count,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ActiveRequests != entries[j].ActiveRequests {
			return entries[i].ActiveRequests > entries[j].ActiveRequests
		}
		if entries[i].SpecialistName != entries[j].SpecialistName {
			return entries[i].SpecialistName < entries[j].SpecialistName
		}
		return entries[i].SpecialistID < entries[j].SpecialistID
	})
	return entries
}

func normalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return UnspecifiedLabel
	}
	return label
}

func wholeDaysBetween(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}

func sortedCounts(counts map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, CategoryCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
