package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
)

var (
	controlNumberPattern = regexp.MustCompile(`(?i)Control Number\s*:\s*([0-9,\.]+)`)
	reportDatePattern    = regexp.MustCompile(`(?i)Date\s*:\s*([0-9]{2}/[0-9]{2}/[0-9]{4})`)
	asOfDatePattern      = regexp.MustCompile(`(?i)as of Date\s*:\s*([0-9]{2}/[0-9]{2}/[0-9]{4})`)
	scoreSentence        = regexp.MustCompile(`(?i)Your CIBIL Score is\s+(\d{3})`)
	scoreSentenceLoose   = regexp.MustCompile(`(?i)CIBIL Score is\s+(\d{3})`)
	scoreSentenceBare    = regexp.MustCompile(`(?i)Your CIBIL Score is`)
	threeDigits          = regexp.MustCompile(`^\d{3}$`)
	nonDigit             = regexp.MustCompile(`[^0-9]`)
	helloName            = regexp.MustCompile(`(?i)Hello,\s*(.+)$`)
	dobGenderInline      = regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4})\s+(Male|Female|Other)`)
	dobLabelExact        = regexp.MustCompile(`(?i)^Date Of Birth\s+(\d{2}/\d{2}/\d{4})$`)
	dobLabelLoose        = regexp.MustCompile(`(?i)^Date Of Birth\s+(.+)$`)
	genderLabel          = regexp.MustCompile(`(?i)^Gender\s+(Male|Female|Other)$`)
	panPattern           = regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`)
)

// extractControlNumber finds the first "Control Number: ..." match in header
// then body order, keeping digits only.
func extractControlNumber(lines, headerLines []string) string {
	for _, line := range concat(headerLines, lines) {
		if m := controlNumberPattern.FindStringSubmatch(line); m != nil {
			return nonDigit.ReplaceAllString(m[1], "")
		}
	}
	return model.NA
}

func extractReportDate(lines, headerLines []string) string {
	for _, line := range concat(headerLines, lines) {
		if m := reportDatePattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if m := asOfDatePattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return model.NA
}

// extractScore prefers the explicit score sentence; failing that it looks
// for a standalone 3-digit value near the sentence, then anywhere in the
// first 80 lines. The literal scale markers 300 / 900 / "300 900" never
// count as a score.
func extractScore(lines, headerLines []string) string {
	sources := concat(headerLines, lines)
	for idx, line := range sources {
		if m := scoreSentence.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if m := scoreSentenceLoose.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if scoreSentenceBare.MatchString(line) {
			if candidate := nearbyScoreValue(sources, idx); candidate != "" {
				return candidate
			}
		}
	}

	limit := len(sources)
	if limit > 80 {
		limit = 80
	}
	for i := 0; i < limit; i++ {
		if candidate := parseStandaloneScore(sources[i]); candidate != "" {
			return candidate
		}
	}

	return model.NA
}

func nearbyScoreValue(lines []string, index int) string {
	start := index - 3
	if start < 0 {
		start = 0
	}
	end := index + 5
	if end > len(lines)-1 {
		end = len(lines) - 1
	}
	for i := start; i <= end; i++ {
		if candidate := parseStandaloneScore(lines[i]); candidate != "" {
			return candidate
		}
	}
	return ""
}

func parseStandaloneScore(line string) string {
	line = strings.TrimSpace(line)
	if line == "300 900" || line == "300" || line == "900" {
		return ""
	}
	if threeDigits.MatchString(line) {
		if v, err := strconv.Atoi(line); err == nil && v >= 300 && v <= 900 {
			return line
		}
	}
	return ""
}

func extractName(lines []string) string {
	for _, line := range lines {
		if m := helloName.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	for i := 0; i < len(lines)-1; i++ {
		if strings.EqualFold(lines[i], "NAME") {
			return lines[i+1]
		}
	}
	return model.NA
}

func extractDateOfBirth(lines []string) string {
	for _, line := range lines {
		if m := dobGenderInline.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	for _, line := range lines {
		if m := dobLabelExact.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if m := dobLabelLoose.FindStringSubmatch(line); m != nil {
			if date := dateInLine(strings.TrimSpace(m[1])); date != "" {
				return date
			}
		}
	}
	return model.NA
}

func extractGender(lines []string) string {
	for _, line := range lines {
		if m := dobGenderInline.FindStringSubmatch(line); m != nil {
			return m[2]
		}
	}
	for _, line := range lines {
		if m := genderLabel.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return model.NA
}

// extractPAN scans the whole document for a PAN-shaped token. Used as the
// fallback when the identification section yielded nothing.
func extractPAN(lines []string) string {
	for _, line := range lines {
		if m := panPattern.FindString(line); m != "" {
			return m
		}
	}
	return model.NA
}

func concat(a, b []string) []string {
	if len(a) == 0 {
		return b
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
