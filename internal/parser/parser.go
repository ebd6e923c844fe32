// Package parser recovers a structured credit report from normalized,
// layout-derived text. It is a stateful line scanner: each section has its
// own sub-parser, and a "current record" builder is carried across lines and
// flushed when the next record's leading label (or a section boundary) is
// seen. Missing fields degrade silently to the sentinel; the validate
// package decides afterwards what is worth warning about.
package parser

import (
	"regexp"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
	"github.com/creditdesk/cibil-extract/internal/normalize"
)

// cleanMarkers are section keywords re-split inside the parser in case the
// input did not pass through the normalizer first.
var cleanMarkers = []string{
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

var cleanMarkerPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(cleanMarkers))
	for _, marker := range cleanMarkers {
		m[marker] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(marker) + `\b`)
	}
	return m
}()

var (
	spaceRun    = regexp.MustCompile(`\s+`)
	lineSplit   = regexp.MustCompile(`\r\n|\r|\n`)
	datePattern = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)
	pageNumber  = regexp.MustCompile(`^\d{1,2}/\d{2}$`)
)

// Parse scans the full report text (and the first-page header text, when
// available) and returns the extracted record. It never fails: fields that
// cannot be located stay at the sentinel.
func Parse(text, headerText string) *model.ExtractedReport {
	lines := cleanLines(text)
	var headerLines []string
	if headerText != "" {
		headerLines = cleanLines(headerText)
	}

	rep := model.NewReport()
	rep.ReportInformation = model.ReportInformation{
		Score:         extractScore(lines, headerLines),
		ReportDate:    extractReportDate(lines, headerLines),
		ControlNumber: extractControlNumber(lines, headerLines),
	}
	rep.PersonalInformation = model.PersonalInformation{
		Name:        extractName(lines),
		DateOfBirth: extractDateOfBirth(lines),
		Gender:      extractGender(lines),
	}

	ids := extractIdentifications(lines)
	if len(ids) == 0 {
		if pan := extractPAN(lines); pan != model.NA {
			ids = append(ids, model.Identification{
				Sequence:           "1",
				IdentificationType: "Income Tax ID Number (PAN)",
				IDNumber:           pan,
				IssueDate:          model.NA,
				ExpiryDate:         model.NA,
			})
		}
	}
	rep.IDAndContactInfo = model.IDAndContactInfo{
		Identifications: ids,
		ContactInformation: model.ContactInformation{
			Addresses:  extractAddresses(lines),
			Telephones: extractTelephones(lines),
			Emails:     extractEmails(lines),
		},
	}

	rep.EmploymentInformation = extractEmployment(lines)
	rep.Accounts = extractAccounts(lines)
	rep.Enquiries = extractEnquiries(lines)
	rep.AdditionalInformation = extractAdditionalInformation(lines)

	return rep
}

// cleanLines splits the text into trimmed, whitespace-collapsed lines with
// section markers isolated, dropping empty and watermark lines.
func cleanLines(text string) []string {
	text = strings.ReplaceAll(text, normalize.PageBreak, "\n"+normalize.PageBreak+"\n")

	var cleaned []string
	for _, line := range lineSplit.Split(text, -1) {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line == "" || strings.Contains(line, "myscore.cibil.com") {
			continue
		}
		for _, part := range splitByMarkers(line) {
			part = strings.TrimSpace(part)
			if part != "" {
				cleaned = append(cleaned, part)
			}
		}
	}
	return cleaned
}

func splitByMarkers(line string) []string {
	for _, marker := range cleanMarkers {
		pat := cleanMarkerPatterns[marker]
		if pat.MatchString(line) {
			line = pat.ReplaceAllString(line, "\n"+marker+"\n")
		}
	}
	return lineSplit.Split(line, -1)
}
