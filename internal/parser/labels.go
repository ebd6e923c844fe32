package parser

import (
	"regexp"
	"strings"
)

// accountLabels is every field label that can appear inside an account
// block, plus the boundaries that terminate one. Lookahead scans stop on any
// of these; candidate values matching one are rejected as mis-scanned.
var accountLabels = []string{
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
	"Suit - Filed / Wilful Default",
	"Credit Facility Status",
	"Written-off Amount (Total)",
	"Written-off Amount (Principal)",
	"Settlement Amount",
	"Payment Start Date",
	"Payment End Date",
	"Payment History",
	"ENQUIRY DETAILS",
	"PAYMENT STATUS",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// CanonicalLabel lowercases a value and strips everything outside [a-z0-9],
// the shared key form for label comparisons.
func CanonicalLabel(value string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(value), "")
}

// canonicalKeys precomputes the canonical form of each label once.
func canonicalKeys(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	keys := make([]string, 0, len(labels))
	for _, label := range labels {
		key := CanonicalLabel(label)
		if key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

var accountLabelKeys = canonicalKeys(accountLabels)

// matchAccountLabel matches a line against the account label set by
// canonical prefix, tolerating punctuation and casing drift.
func matchAccountLabel(line string, labels []string) string {
	lineKey := CanonicalLabel(line)
	if lineKey == "" {
		return ""
	}
	for _, label := range labels {
		labelKey := CanonicalLabel(label)
		if labelKey != "" && strings.HasPrefix(lineKey, labelKey) {
			return label
		}
	}
	return ""
}

// sanitizeAccountValue rejects a candidate value whose canonical form
// matches or contains any known label key. Returns "" for rejected values.
func sanitizeAccountValue(value string, labels []string) string {
	if value == "" {
		return ""
	}
	candidateKey := CanonicalLabel(value)
	if candidateKey == "" {
		return ""
	}
	for _, label := range labels {
		labelKey := CanonicalLabel(label)
		if labelKey == "" {
			continue
		}
		if candidateKey == labelKey || strings.Contains(candidateKey, labelKey) {
			return ""
		}
	}
	return value
}

// fieldLabelKeys are the canonical keys of the per-field account labels
// (boundaries excluded), used by the validator's looks-like-label guard.
var fieldLabelKeys = []string{
	"membername",
	"accounttype",
	"accountnumber",
	"ownership",
	"creditlimit",
	"cashlimit",
	"highcredit",
	"sanctionedamount",
	"currentbalance",
	"amountoverdue",
	"rateofinterest",
	"repaymenttenure",
	"emiamount",
	"paymentfrequency",
	"actualpaymentamount",
	"dateopeneddisbursed",
	"dateclosed",
	"dateoflastpayment",
	"datereportedandcertified",
	"valueofcollateral",
	"typeofcollateral",
	"suitfiledwillfuldefault",
	"creditfacilitystatus",
	"writtenoffamounttotal",
	"writtenoffamountprincipal",
	"settlementamount",
	"paymentstartdate",
	"paymentenddate",
}

// LooksLikeLabel reports whether a value canonicalizes to a known account
// field label, which means a stray label token was scanned as data.
func LooksLikeLabel(value string) bool {
	key := CanonicalLabel(value)
	for _, labelKey := range fieldLabelKeys {
		if key == labelKey {
			return true
		}
	}
	return false
}
