package generation

import (
	"time"

	"deckforge/internal/deck"
)

// Statistics aggregates deck-wide status counts with the outcome of a run.
type Statistics struct {
	Total      int
	Pending    int
	Generating int
	Completed  int
	Failed     int

	CompletionPercent float64
	FailurePercent    float64

	Started  time.Time
	Finished time.Time
	Duration time.Duration

	// Errors collects the per-card failure messages from the run report.
	Errors []string
}

// BuildStatistics computes run statistics from store counts and an optional
// run report.
func BuildStatistics(counts map[deck.Status]int, report *Report) Statistics {
	stats := Statistics{
		Pending:    counts[deck.StatusPending],
		Generating: counts[deck.StatusGenerating],
		Completed:  counts[deck.StatusCompleted],
		Failed:     counts[deck.StatusFailed],
	}
	stats.Total = stats.Pending + stats.Generating + stats.Completed + stats.Failed
	if stats.Total > 0 {
		stats.CompletionPercent = 100 * float64(stats.Completed) / float64(stats.Total)
		stats.FailurePercent = 100 * float64(stats.Failed) / float64(stats.Total)
	}
	if report != nil {
		stats.Started = report.Started
		stats.Finished = report.Finished
		if !report.Finished.IsZero() {
			stats.Duration = report.Finished.Sub(report.Started)
		}
		for _, result := range report.Results {
			if !result.Success {
				stats.Errors = append(stats.Errors, result.Message)
			}
		}
	}
	return stats
}
