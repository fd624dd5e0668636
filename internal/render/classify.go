package render

import (
	"log/slog"
	"strings"
)

// Severity categorizes one line of renderer output. Classification is
// cosmetic logging only; exit codes and artifact checks decide failure.
type Severity string

const (
	SeveritySuccess    Severity = "success"
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeverityGenerating Severity = "generating"
	SeverityInfo       Severity = "info"
	SeverityDebug      Severity = "debug"
)

// defectKeywords are lowercase substrings the renderer emits when it detects
// its own output problems. They outrank the generic level markers below.
var defectKeywords = []string{
	"missing",
	"invalid",
	"corrupted",
	"black regions",
	"too dark",
}

// Classify maps one output line to a severity using substring heuristics.
func Classify(line string) Severity {
	switch {
	case strings.Contains(line, "SUCCESS"):
		return SeveritySuccess
	case strings.Contains(line, "ERROR"), strings.Contains(line, "Failed"):
		return SeverityError
	case containsDefectKeyword(line):
		return SeverityError
	case strings.Contains(line, "WARNING"):
		return SeverityWarning
	case strings.Contains(line, "Generating"):
		return SeverityGenerating
	case strings.Contains(line, "INFO"):
		return SeverityInfo
	case strings.Contains(line, "DEBUG"):
		return SeverityDebug
	default:
		return SeverityInfo
	}
}

func containsDefectKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, keyword := range defectKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Level maps the severity onto slog levels for structured output.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityError:
		return slog.LevelError
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
