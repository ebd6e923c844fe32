package parser

import (
	"regexp"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
)

// Payment-history lines arrive in several shapes depending on how the
// columns collapsed: "Mon yyyy dpd" on one line, a row of month-year pairs
// with the DPD row underneath, or the DPD pushed to a later line entirely.
// Entries built here carry an empty DaysPastDue until the account scanner
// resolves it.

var (
	historySingle = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{4})(?:\s+([A-Za-z]{3}|XXX|STD|DBT|SMA|SUB|LSS|\d{1,3}))?$`)
	historyLoose  = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{4}).*?(\d{1,3}|STD|XXX|DBT|SMA|SUB|LSS)\b`)
	monthToken    = regexp.MustCompile(`\b([A-Za-z]{3})\s+(\d{4})\b`)
	dpdToken      = regexp.MustCompile(`\b(\d{1,3}|STD|XXX|DBT|SMA|SUB|LSS)\b`)
	trailingFrac  = regexp.MustCompile(`\s+\d+/\d+\s*$`)
	monthYearLead = regexp.MustCompile(`^[A-Za-z]{3}\s+\d{4}\b`)

	stdExpanded  = regexp.MustCompile(`(?i)STD\s+Standard`)
	dbtExpanded  = regexp.MustCompile(`(?i)\bDBT[: ]+Doubtful\b`)
	colonDpd     = regexp.MustCompile(`^:\s*(STD|XXX|DBT|SMA|SUB|LSS)\b`)
	bareDpd      = regexp.MustCompile(`^(STD|XXX|DBT|SMA|SUB|LSS|\d{1,3})$`)
	bareDpdDigit = regexp.MustCompile(`^\d{1,3}$`)
)

// isHistoryLegendLine recognizes the DPD legend and its fragments.
func isHistoryLegendLine(line string) bool {
	return strings.Contains(line, "STD:") || strings.Contains(line, "DBT:") ||
		strings.Contains(line, "SMA:") || strings.Contains(line, "LSS:") ||
		strings.Contains(line, "SUB:") || strings.Contains(line, "###") ||
		strings.Contains(line, "Not Reported")
}

func isMonthYearLine(line string) bool {
	return monthYearLead.MatchString(strings.TrimSpace(line))
}

// normalizeHistoryLine drops a trailing page-fraction token glued onto the
// row by the layout pass.
func normalizeHistoryLine(line string) string {
	return strings.TrimSpace(trailingFrac.ReplaceAllString(line, ""))
}

// parsePaymentHistoryLine parses a single "Mon yyyy [dpd]" row, falling back
// to a loose scan when extra tokens sit between the year and the DPD.
func parsePaymentHistoryLine(line string) *model.PaymentEntry {
	line = normalizeHistoryLine(line)
	if m := historySingle.FindStringSubmatch(line); m != nil {
		return &model.PaymentEntry{Month: m[1], Year: m[2], DaysPastDue: m[3]}
	}
	if m := historyLoose.FindStringSubmatch(line); m != nil {
		return &model.PaymentEntry{Month: m[1], Year: m[2], DaysPastDue: m[3]}
	}
	return nil
}

// parsePaymentHistoryEntries extracts every month-year token on the line and
// zips them positionally with the DPD tokens found on the same line. A line
// with no month tokens degrades to the single-row parse.
func parsePaymentHistoryEntries(line string) []model.PaymentEntry {
	line = normalizeHistoryLine(line)
	months := monthToken.FindAllStringSubmatch(line, -1)
	if len(months) == 0 {
		if single := parsePaymentHistoryLine(line); single != nil {
			return []model.PaymentEntry{*single}
		}
		return nil
	}

	dpdTokens := extractHistoryDpdTokens(line)
	entries := make([]model.PaymentEntry, 0, len(months))
	for idx, m := range months {
		entry := model.PaymentEntry{Month: m[1], Year: m[2]}
		if idx < len(dpdTokens) {
			entry.DaysPastDue = dpdTokens[idx]
		}
		entries = append(entries, entry)
	}
	return entries
}

func extractHistoryDpdTokens(line string) []string {
	matches := dpdToken.FindAllStringSubmatch(line, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, m[1])
	}
	return tokens
}

// nextHistoryLabels stop a forward DPD scan before it crosses into the next
// field or account.
var nextHistoryLabels = []string{
	"Member Name",
	"Account Type",
	"Account Number",
	"Ownership",
	"Credit Limit",
	"Cash Limit",
	"High Credit",
	"Sanctioned Amount",
	"Current Balance",
	"Amount Overdue",
	"Rate of Interest",
	"Repayment Tenure",
	"EMI Amount",
	"Payment Frequency",
	"Actual Payment Amount",
	"Date Opened / Disbursed",
	"Date Closed",
	"Date of Last Payment",
	"Date Reported And Certified",
	"Value of Collateral",
	"Type of Collateral",
	"Suit - Filed / Willful Default",
	"Credit Facility Status",
	"Written-off Amount (Total)",
	"Written-off Amount (Principal)",
	"Settlement Amount",
	"Payment Start Date",
	"Payment End Date",
	"Payment History",
	"ENQUIRY DETAILS",
}

// nextHistoryValue scans forward for a stray DPD token belonging to the
// current history entry. It understands the legend-expanded forms ("STD
// Standard", "DBT: Doubtful"), a leading-colon token, and a bare token or
// number on its own line. The returned index lets the caller resume past the
// consumed line; a miss returns the original index.
func nextHistoryValue(lines []string, index int) (string, int) {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) {
			continue
		}
		if matchLabel(candidate, nextHistoryLabels) != "" {
			return "", index
		}
		if isPlaceholder(candidate) {
			continue
		}
		if isPageNumberLine(candidate) {
			continue
		}
		if isMonthYearLine(candidate) {
			return "", index
		}
		if stdExpanded.MatchString(candidate) {
			return "STD", i
		}
		if dbtExpanded.MatchString(candidate) {
			return "DBT", i
		}
		if m := colonDpd.FindStringSubmatch(candidate); m != nil {
			return m[1], i
		}
		if m := bareDpd.FindStringSubmatch(candidate); m != nil {
			return m[1], i
		}
		if isHistoryLegendLine(candidate) {
			continue
		}
		return "", index
	}
	return "", index
}

var paymentStatusStopLabels = []string{
	"Member Name",
	"Account Type",
	"Account Number",
	"Ownership",
	"Date Opened / Disbursed",
	"Date Reported And Certified",
	"Payment Start Date",
	"Payment End Date",
	"Payment History",
	"ENQUIRY DETAILS",
}

// nextPaymentStatusDpd scans forward from a bare PAYMENT STATUS marker for a
// standalone DPD number before the next field label.
func nextPaymentStatusDpd(lines []string, index int) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) || isHistoryLegendLine(candidate) {
			continue
		}
		if isPlaceholder(candidate) || isPageNumberLine(candidate) {
			continue
		}
		if matchLabel(candidate, paymentStatusStopLabels) != "" {
			return ""
		}
		if bareDpdDigit.MatchString(strings.TrimSpace(candidate)) {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}
