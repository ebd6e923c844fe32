package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
)

var (
	paymentStatusInline = regexp.MustCompile(`(?i)PAYMENT STATUS\s+(\d{1,3})\b`)
	dayMonthRest        = regexp.MustCompile(`^/\d{2}`)
)

// accountTextFields maps a field label to its destination for plain text
// values, which go through the label-lookalike filter and normalization.
var accountTextFields = map[string]func(*model.Account) *string{
	"Account Type":                   func(a *model.Account) *string { return &a.AccountType },
	"Account Number":                 func(a *model.Account) *string { return &a.AccountNumber },
	"Ownership":                      func(a *model.Account) *string { return &a.OwnershipType },
	"Rate of Interest":               func(a *model.Account) *string { return &a.RateOfInterest },
	"Repayment Tenure":               func(a *model.Account) *string { return &a.RepaymentTenure },
	"Payment Frequency":              func(a *model.Account) *string { return &a.PaymentFrequency },
	"Type of Collateral":             func(a *model.Account) *string { return &a.TypeOfCollateral },
	"Suit - Filed / Willful Default": func(a *model.Account) *string { return &a.SuitFiledWillfulDefault },
	"Credit Facility Status":         func(a *model.Account) *string { return &a.CreditFacilityStatus },
}

// accountAmountFields are the currency-bearing fields, cleaned of rupee
// signs and separators before normalization.
var accountAmountFields = map[string]func(*model.Account) *string{
	"Credit Limit":                   func(a *model.Account) *string { return &a.CreditLimit },
	"Cash Limit":                     func(a *model.Account) *string { return &a.CashLimit },
	"High Credit":                    func(a *model.Account) *string { return &a.HighCredit },
	"Sanctioned Amount":              func(a *model.Account) *string { return &a.SanctionedAmount },
	"Current Balance":                func(a *model.Account) *string { return &a.CurrentBalance },
	"Amount Overdue":                 func(a *model.Account) *string { return &a.AmountOverdue },
	"EMI Amount":                     func(a *model.Account) *string { return &a.EmiAmount },
	"Actual Payment Amount":          func(a *model.Account) *string { return &a.ActualPaymentAmount },
	"Value of Collateral":            func(a *model.Account) *string { return &a.ValueOfCollateral },
	"Written-off Amount (Total)":     func(a *model.Account) *string { return &a.WrittenOffAmountTotal },
	"Written-off Amount (Principal)": func(a *model.Account) *string { return &a.WrittenOffAmountPrincipal },
	"Settlement Amount":              func(a *model.Account) *string { return &a.SettlementAmount },
}

// accountDateFields only ever accept a dd/mm/yyyy token, inline or from a
// forward scan that stops at the next label.
var accountDateFields = map[string]func(*model.Account) *string{
	"Date Opened / Disbursed":     func(a *model.Account) *string { return &a.DateOpened },
	"Date Closed":                 func(a *model.Account) *string { return &a.DateClosed },
	"Date of Last Payment":        func(a *model.Account) *string { return &a.LastPaymentDate },
	"Date Reported And Certified": func(a *model.Account) *string { return &a.DateReportedAndCertified },
	"Payment Start Date":          func(a *model.Account) *string { return &a.PaymentStartDate },
	"Payment End Date":            func(a *model.Account) *string { return &a.PaymentEndDate },
}

// extractAccounts drives the account section state machine. A new record
// opens at each "Member Name" label (flushing the previous one when it holds
// real data), scalar fields resolve inline-or-lookahead, and the PAYMENT
// STATUS / Payment History machinery attaches month-level DPD entries to the
// record being built.
func extractAccounts(lines []string) []model.Account {
	var accounts []model.Account
	var current *model.Account
	sequence := 1
	inAccounts := false
	inPaymentStatus := false
	paymentStatusDpd := ""
	paymentStatusExplicit := false

	ensure := func() {
		if current == nil {
			current = model.NewAccount()
		}
	}

	for i := 0; i < len(lines); i++ {
		rawLine := lines[i]
		line := rawLine
		if matchLabel(line, []string{"ALL ACCOUNTS", "OPEN ACCOUNTS", "CLOSED ACCOUNTS"}) != "" {
			inAccounts = true
			continue
		}
		if inAccounts && strings.Contains(strings.ToUpper(line), "ENQUIRY") {
			break
		}
		if !inAccounts {
			continue
		}

		label := matchAccountLabel(line, accountLabels)
		if label == "" {
			label = line
		}

		if label == "Member Name" && i+1 < len(lines) {
			if current != nil && current.HasData() {
				current.Sequence = strconv.Itoa(sequence)
				sequence++
				accounts = append(accounts, *current)
				current = nil
			}
			ensure()
			current.MemberName = lines[i+1]
			inPaymentStatus = false
			paymentStatusDpd = ""
			paymentStatusExplicit = false
			continue
		}

		if set, ok := accountTextFields[label]; ok {
			ensure()
			value := inlineValueForLabel(rawLine, label)
			if value == "" {
				value = nextAccountValue(lines, i)
			}
			if value = sanitizeAccountValue(value, accountLabels); value != "" {
				*set(current) = normalizeValue(value)
			}
			continue
		}
		if set, ok := accountAmountFields[label]; ok {
			ensure()
			value := inlineValueForLabel(rawLine, label)
			if value == "" {
				value = nextAccountValue(lines, i)
			}
			if value = sanitizeAccountValue(value, accountLabels); value != "" {
				*set(current) = cleanAmountOrNA(value)
			}
			continue
		}
		if set, ok := accountDateFields[label]; ok {
			ensure()
			value := inlineDateForLabel(rawLine, label)
			if value == "" {
				value = nextDateValue(lines, i)
			}
			if value != "" {
				*set(current) = value
			}
			continue
		}

		if label == "PAYMENT STATUS" {
			inPaymentStatus = true
			paymentStatusExplicit = false
			paymentStatusDpd = ""
			// The inline DPD must not be the day of a dd/mm page token.
			if loc := paymentStatusInline.FindStringSubmatchIndex(rawLine); loc != nil && !dayMonthRest.MatchString(rawLine[loc[3]:]) {
				paymentStatusDpd = rawLine[loc[2]:loc[3]]
				paymentStatusExplicit = true
			} else {
				paymentStatusDpd = nextPaymentStatusDpd(lines, i)
				paymentStatusExplicit = paymentStatusDpd != ""
			}
			continue
		}

		if label == "Payment History" && i+1 < len(lines) {
			ensure()
			i = scanPaymentHistory(lines, i+1, current, &paymentStatusDpd, paymentStatusExplicit)
			continue
		}

		if inPaymentStatus && current != nil {
			if isJunkLine(line) || isHistoryLegendLine(line) || isPlaceholder(line) {
				continue
			}
			for _, entry := range parsePaymentHistoryEntries(line) {
				if entry.DaysPastDue == "" {
					if paymentStatusDpd != "" && paymentStatusExplicit && paymentStatusDpd != "0" {
						entry.DaysPastDue = paymentStatusDpd
						paymentStatusDpd = ""
					} else {
						entry.DaysPastDue = model.NA
					}
				}
				current.PaymentHistory = append(current.PaymentHistory, entry)
			}
		}
	}

	if current != nil && current.HasData() {
		current.Sequence = strconv.Itoa(sequence)
		accounts = append(accounts, *current)
	}

	return accounts
}

// scanPaymentHistory consumes the lines following a "Payment History" label
// and appends resolved entries to the account. It returns the index of the
// last consumed line so the caller's loop resumes after it.
//
// Missing DPDs resolve in order: the next line's DPD row when it covers
// every month on this row, then a forward token scan, then a single
// carry-over of the explicit non-zero PAYMENT STATUS DPD, then the sentinel.
func scanPaymentHistory(lines []string, start int, acc *model.Account, statusDpd *string, statusExplicit bool) int {
	j := start
	for j < len(lines) {
		historyLine := lines[j]
		if strings.Contains(strings.ToUpper(historyLine), "ENQUIRY") {
			j--
			break
		}
		if matchLabel(historyLine, accountLabels) != "" {
			j--
			break
		}
		if isJunkLine(historyLine) || strings.HasPrefix(historyLine, "Payment History") || isHistoryLegendLine(historyLine) {
			j++
			continue
		}

		entries := parsePaymentHistoryEntries(historyLine)
		if len(entries) == 0 {
			j++
			continue
		}

		allMissing := true
		for _, entry := range entries {
			if entry.DaysPastDue != "" {
				allMissing = false
				break
			}
		}
		if allMissing && j+1 < len(lines) {
			next := lines[j+1]
			if !isJunkLine(next) && !isHistoryLegendLine(next) {
				if tokens := extractHistoryDpdTokens(next); len(tokens) >= len(entries) {
					for idx := range entries {
						entries[idx].DaysPastDue = tokens[idx]
					}
					j++
				}
			}
		}

		for _, entry := range entries {
			if entry.DaysPastDue == "" {
				if value, idx := nextHistoryValue(lines, j); value != "" {
					entry.DaysPastDue = value
					j = idx
				}
			}
			if entry.DaysPastDue == "" {
				if *statusDpd != "" && statusExplicit && *statusDpd != "0" {
					entry.DaysPastDue = *statusDpd
					*statusDpd = ""
				} else {
					entry.DaysPastDue = model.NA
				}
			}
			acc.PaymentHistory = append(acc.PaymentHistory, entry)
		}
		j++
	}
	return j
}

var accountValueStopLabels = []string{
	"Member Name",
	"Account Type",
	"Account Number",
	"Ownership",
	"Sanctioned Amount",
	"Current Balance",
	"Amount Overdue",
	"Date Opened / Disbursed",
	"Date Reported And Certified",
	"Written-off Amount (Total)",
	"Written-off Amount (Principal)",
	"Suit - Filed / Willful Default",
	"Suit - Filed / Wilful Default",
	"Type of Collateral",
	"Credit Facility Status",
	"Settlement Amount",
	"Payment Start Date",
	"Payment End Date",
	"Payment History",
	"ENQUIRY DETAILS",
}

var accountValueStopKeys = canonicalKeys(accountValueStopLabels)

// nextAccountValue scans forward for the next plausible scalar value,
// skipping junk, placeholders, bare zeros, page numbers and anything that
// canonicalizes to (or swallows) a known label.
func nextAccountValue(lines []string, index int) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) {
			continue
		}
		if matchAccountLabel(candidate, accountValueStopLabels) != "" {
			return ""
		}
		if isPlaceholder(candidate) {
			continue
		}
		if strings.TrimSpace(candidate) == "0" {
			continue
		}
		if isPageNumberLine(candidate) {
			continue
		}
		candidateKey := CanonicalLabel(candidate)
		if candidateKey != "" {
			looksLikeLabel := false
			for _, labelKey := range accountValueStopKeys {
				if strings.Contains(candidateKey, labelKey) {
					looksLikeLabel = true
					break
				}
			}
			if looksLikeLabel {
				continue
			}
		}
		return candidate
	}
	return ""
}

var dateValueStopLabels = []string{
	"Member Name",
	"Account Type",
	"Account Number",
	"Ownership",
	"Sanctioned Amount",
	"Current Balance",
	"Amount Overdue",
	"Date Opened / Disbursed",
	"Date Closed",
	"Date of Last Payment",
	"Date Reported And Certified",
	"Payment Start Date",
	"Payment End Date",
	"Payment History",
	"ENQUIRY DETAILS",
}

// nextDateValue scans forward for the first dd/mm/yyyy token before the
// next field label.
func nextDateValue(lines []string, index int) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) {
			continue
		}
		if matchLabel(candidate, dateValueStopLabels) != "" {
			return ""
		}
		if isPlaceholder(candidate) || isPageNumberLine(candidate) {
			continue
		}
		if date := dateInLine(candidate); date != "" {
			return date
		}
	}
	return ""
}

var amountCleaner = strings.NewReplacer("₹", "", ",", "", "=", "", " ", "")

func cleanNumber(value string) string {
	return strings.TrimSpace(amountCleaner.Replace(value))
}

// cleanAmountOrNA strips currency decoration and coerces what remains
// through placeholder normalization.
func cleanAmountOrNA(value string) string {
	return normalizeValue(cleanNumber(value))
}
