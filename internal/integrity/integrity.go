// Package integrity cross-checks a finished record against the source text
// and against its own XLSX projection. Issues are hard failures (the report
// is unusable without them); warnings flag drift worth a human look.
package integrity

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tealeg/xlsx/v2"

	"github.com/creditdesk/cibil-extract/internal/export"
	"github.com/creditdesk/cibil-extract/internal/model"
)

// Finding is one integrity issue or warning with a stable machine code.
type Finding struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Counts carries the expected and actual per-sheet data row counts of the
// workbook round-trip.
type Counts struct {
	Expected map[string]int `json:"expected"`
	Actual   map[string]int `json:"actual"`
}

// Result is the full outcome of an integrity check.
type Result struct {
	OK       bool      `json:"ok"`
	Issues   []Finding `json:"issues"`
	Warnings []Finding `json:"warnings"`
	Counts   Counts    `json:"counts"`
}

// Check validates the record against the extracted text it came from. The
// workbook is rendered, serialized and re-read so the row counts reflect
// what a consumer of the export will actually see.
func Check(rep *model.ExtractedReport, text string) Result {
	var issues, warnings []Finding

	issues = append(issues, checkRequiredFields(rep)...)
	issues = append(issues, checkCounts(rep)...)
	warnings = append(warnings, checkTextPresence(rep, text)...)

	excelIssues, excelWarnings, counts := checkWorkbookConsistency(rep)
	issues = append(issues, excelIssues...)
	warnings = append(warnings, excelWarnings...)

	return Result{
		OK:       len(issues) == 0,
		Issues:   issues,
		Warnings: warnings,
		Counts:   counts,
	}
}

func checkRequiredFields(rep *model.ExtractedReport) []Finding {
	var issues []Finding
	required := []struct {
		name  string
		value string
	}{
		{"Score", rep.ReportInformation.Score},
		{"ReportDate", rep.ReportInformation.ReportDate},
		{"ControlNumber", rep.ReportInformation.ControlNumber},
	}
	for _, field := range required {
		if field.value == "" || field.value == model.NA {
			issues = append(issues, Finding{
				Code:    "missing_report_" + strings.ToLower(field.name),
				Message: fmt.Sprintf("%s is missing from ReportInformation.", field.name),
			})
		}
	}
	return issues
}

func checkCounts(rep *model.ExtractedReport) []Finding {
	var issues []Finding
	if len(rep.IDAndContactInfo.ContactInformation.Addresses) == 0 {
		issues = append(issues, Finding{Code: "no_addresses", Message: "No addresses were captured."})
	}
	if len(rep.Accounts) == 0 {
		issues = append(issues, Finding{Code: "no_accounts", Message: "No accounts were captured."})
	}
	return issues
}

func checkTextPresence(rep *model.ExtractedReport, text string) []Finding {
	var warnings []Finding
	pan := ""
	if len(rep.IDAndContactInfo.Identifications) > 0 {
		pan = rep.IDAndContactInfo.Identifications[0].IDNumber
	}
	checks := []struct {
		label string
		value string
	}{
		{"ControlNumber", rep.ReportInformation.ControlNumber},
		{"ReportDate", rep.ReportInformation.ReportDate},
		{"Name", rep.PersonalInformation.Name},
		{"PAN", pan},
	}
	lowerText := strings.ToLower(text)
	for _, check := range checks {
		if check.value == "" || check.value == model.NA {
			continue
		}
		if text != "" && !strings.Contains(lowerText, strings.ToLower(check.value)) {
			warnings = append(warnings, Finding{
				Code:    "text_missing_" + strings.ToLower(check.label),
				Message: fmt.Sprintf("%s not found in extracted text.", check.label),
			})
		}
	}
	return warnings
}

func checkWorkbookConsistency(rep *model.ExtractedReport) (issues, warnings []Finding, counts Counts) {
	expected := ExpectedSheetCounts(rep)
	counts = Counts{Expected: expected, Actual: map[string]int{}}

	workbook, err := export.Workbook(rep)
	if err != nil {
		issues = append(issues, Finding{
			Code:    "excel_load_failed",
			Message: "Failed to build workbook for validation.",
		})
		return issues, warnings, counts
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		issues = append(issues, Finding{
			Code:    "excel_load_failed",
			Message: "Failed to serialize workbook for validation.",
		})
		return issues, warnings, counts
	}
	reloaded, err := xlsx.OpenBinary(buf.Bytes())
	if err != nil {
		issues = append(issues, Finding{
			Code:    "excel_load_failed",
			Message: "Failed to read generated workbook for validation.",
		})
		return issues, warnings, counts
	}

	for _, sheet := range reloaded.Sheets {
		rows := len(sheet.Rows) - 1
		if rows < 0 {
			rows = 0
		}
		counts.Actual[sheet.Name] = rows
	}

	for _, sheet := range sheetOrder {
		expectedCount, ok := expected[sheet]
		if !ok {
			continue
		}
		actual, ok := counts.Actual[sheet]
		if !ok {
			warnings = append(warnings, Finding{
				Code:    "excel_sheet_missing",
				Message: fmt.Sprintf("Expected sheet '%s' is missing.", sheet),
			})
			continue
		}
		if actual != expectedCount {
			warnings = append(warnings, Finding{
				Code:    "excel_count_mismatch",
				Message: fmt.Sprintf("Sheet '%s' has %d rows; expected %d.", sheet, actual, expectedCount),
			})
		}
	}
	return issues, warnings, counts
}

var sheetOrder = []string{
	export.SheetReportInformation,
	export.SheetPersonalInformation,
	export.SheetIdentificationDetails,
	export.SheetAddresses,
	export.SheetTelephones,
	export.SheetEmails,
	export.SheetEmployment,
	export.SheetAccounts,
	export.SheetPaymentStatus,
	export.SheetEnquiries,
	export.SheetAdditionalInformation,
}

// ExpectedSheetCounts derives the data row count each sheet must carry. An
// account with no payment history still occupies one Payment Status row.
func ExpectedSheetCounts(rep *model.ExtractedReport) map[string]int {
	paymentRows := 0
	for _, acc := range rep.Accounts {
		if n := len(acc.PaymentHistory); n > 0 {
			paymentRows += n
		} else {
			paymentRows++
		}
	}
	return map[string]int{
		export.SheetReportInformation:     1,
		export.SheetPersonalInformation:   1,
		export.SheetIdentificationDetails: len(rep.IDAndContactInfo.Identifications),
		export.SheetAddresses:             len(rep.IDAndContactInfo.ContactInformation.Addresses),
		export.SheetTelephones:            len(rep.IDAndContactInfo.ContactInformation.Telephones),
		export.SheetEmails:                len(rep.IDAndContactInfo.ContactInformation.Emails),
		export.SheetEmployment:            1,
		export.SheetAccounts:              len(rep.Accounts),
		export.SheetPaymentStatus:         paymentRows,
		export.SheetEnquiries:             len(rep.Enquiries),
		export.SheetAdditionalInformation: len(rep.AdditionalInformation),
	}
}
