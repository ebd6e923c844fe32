// Package normalize turns raw page-break-delimited report text into a clean
// sequence of trimmed lines with section headers guaranteed to occupy their
// own line.
package normalize

import (
	"regexp"
	"strings"
)

// PageBreak is the marker the extractor inserts between logical pages.
const PageBreak = "--- PAGE BREAK ---"

// sectionMarkers are header keywords that upstream extraction frequently
// glues onto adjacent text. Each occurrence is forced onto its own line.
var sectionMarkers = []string{
	"IDENTIFICATION DETAILS",
	"ADDRESS DETAILS",
	"CONTACT DETAILS",
	"EMAIL DETAILS",
	"EMPLOYMENT DETAILS",
	"ALL ACCOUNTS",
	"OPEN ACCOUNTS",
	"CLOSED ACCOUNTS",
	"ACCOUNT DETAILS",
	"PAYMENT STATUS",
	"PAYMENT HISTORY",
	"ENQUIRY DETAILS",
}

var (
	markerPatterns    = compileMarkerPatterns()
	spaceRun          = regexp.MustCompile(`\s+`)
	pageNumberLine    = regexp.MustCompile(`^\d{1,2}/\d{2}$`)
	headerDateTime    = regexp.MustCompile(`(?i)^\d{1,2}/\d{1,2}/\d{2},\s*\d{1,2}:\d{2}\s*[AP]M$`)
	lineBreakSplitter = regexp.MustCompile(`\r\n|\r|\n`)
)

func compileMarkerPatterns() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(sectionMarkers))
	for _, marker := range sectionMarkers {
		m[marker] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(marker) + `\b`)
	}
	return m
}

// Normalize cleans raw extracted text: whitespace collapsed, boilerplate
// dropped, section markers isolated onto their own lines. Original line
// order is preserved; nothing is deduplicated.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, PageBreak, "\n"+PageBreak+"\n")

	var out []string
	for _, line := range lineBreakSplitter.Split(text, -1) {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if headerDateTime.MatchString(line) || pageNumberLine.MatchString(line) {
			continue
		}
		if strings.Contains(line, "myscore.cibil.com") ||
			strings.Contains(line, "Score Report") ||
			strings.Contains(line, "Cibil Dashboard") {
			continue
		}
		out = append(out, injectSectionMarkers(line))
	}

	return strings.Join(out, "\n")
}

func injectSectionMarkers(line string) string {
	for _, marker := range sectionMarkers {
		pat := markerPatterns[marker]
		if pat.MatchString(line) {
			line = pat.ReplaceAllString(line, "\n"+marker+"\n")
		}
	}
	return line
}

// IsPageNumberLine reports whether line is a bare dd/mm page-number token.
func IsPageNumberLine(line string) bool {
	return pageNumberLine.MatchString(strings.TrimSpace(line))
}
