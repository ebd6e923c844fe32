package parser

import (
	"regexp"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
	"github.com/creditdesk/cibil-extract/internal/normalize"
)

var dashRun = regexp.MustCompile(`^(-\s*){2,}$`)

// isJunkLine reports whether a line is pure page furniture: the page-break
// marker, a page number, or a watermark/banner fragment.
func isJunkLine(line string) bool {
	return line == normalize.PageBreak ||
		isPageNumberLine(line) ||
		strings.Contains(line, "Score Report") ||
		strings.Contains(line, "Cibil Dashboard") ||
		strings.Contains(line, "myscore.cibil.com") ||
		strings.Contains(line, "/CreditView/")
}

func isPageNumberLine(line string) bool {
	return pageNumber.MatchString(strings.TrimSpace(line))
}

// isPlaceholder treats "", "-", "--" and "NA" (any case) as absent values.
func isPlaceholder(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || value == "-" || value == "--" || strings.EqualFold(value, "NA")
}

// normalizeValue coerces placeholders and dash runs to the sentinel,
// otherwise returns the trimmed value.
func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "-" || value == "--" || strings.EqualFold(value, "NA") {
		return model.NA
	}
	if dashRun.MatchString(value) {
		return model.NA
	}
	return value
}

// matchLabel returns the first label the line starts with, or "".
func matchLabel(line string, labels []string) string {
	for _, label := range labels {
		if strings.HasPrefix(line, label) {
			return label
		}
	}
	return ""
}

// inlineValueForLabel extracts the remainder of "Label value..." when the
// line begins with the label, or "" when the line is the bare label.
func inlineValueForLabel(rawLine, label string) string {
	pat := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(label) + `\s+(.+)$`)
	if m := pat.FindStringSubmatch(rawLine); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// inlineDateForLabel extracts a dd/mm/yyyy date from an inline label value.
func inlineDateForLabel(rawLine, label string) string {
	value := inlineValueForLabel(rawLine, label)
	if value == "" {
		return ""
	}
	return dateInLine(value)
}

// dateInLine returns the first dd/mm/yyyy token in the line, or "".
func dateInLine(line string) string {
	if m := datePattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// findLineIndex locates the first occurrence of value at or after start,
// so a consumed lookahead value can be skipped by the caller's loop.
func findLineIndex(lines []string, start int, value string) int {
	for i := start; i < len(lines); i++ {
		if lines[i] == value {
			return i
		}
	}
	return start - 1
}
