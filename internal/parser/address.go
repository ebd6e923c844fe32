package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
	"github.com/creditdesk/cibil-extract/internal/normalize"
)

var (
	categoryInline  = regexp.MustCompile(`(?i)Category\s+(.+?)\s*(Residence Code|Date Reported|$)`)
	residenceInline = regexp.MustCompile(`(?i)Residence Code\s+(.+?)\s*(Date Reported|$)`)
	dateRepInline   = regexp.MustCompile(`(?i)Date Reported\s+(\d{2}/\d{2}/\d{4})`)
	trailingPageNum = regexp.MustCompile(`\s+\d{1,2}/\d{2}\s*$`)
)

// addressCategories are the category phrases that can end up folded into the
// free-text address when the layout merged them onto the same row.
var addressCategories = []string{
	"Permanent Address",
	"Residence Address",
	"Office Address",
	"Business Address",
	"Correspondence Address",
	"Current Address",
}

var addressSectionEnds = []string{
	"CONTACT DETAILS",
	"EMAIL DETAILS",
	"EMPLOYMENT DETAILS",
	"ALL ACCOUNTS",
	"OPEN ACCOUNTS",
}

// extractAddresses accumulates one multi-line free-text address per
// "Address" label, concatenating non-label lines until a Category /
// Residence Code / Date Reported label (inline or on its own line) is hit.
func extractAddresses(lines []string) []model.Address {
	var addresses []model.Address
	var current *model.Address
	inSection := false
	sequence := 1

	commit := func() {
		if current == nil {
			return
		}
		moveTrailingAddressCategory(current)
		current.Sequence = strconv.Itoa(sequence)
		sequence++
		addresses = append(addresses, *current)
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "ADDRESS DETAILS" {
			inSection = true
			continue
		}
		if inSection && contains(addressSectionEnds, line) {
			break
		}
		if !inSection {
			continue
		}

		if line == "Address" {
			commit()
			current = &model.Address{
				Type:          model.NA,
				ResidenceCode: model.NA,
				DateReported:  model.NA,
			}
			continue
		}

		if current == nil {
			continue
		}
		if line == normalize.PageBreak ||
			strings.Contains(line, "Score Report") ||
			strings.Contains(line, "Cibil Dashboard") ||
			strings.Contains(line, "myscore.cibil.com") ||
			strings.Contains(line, "/CreditView/") ||
			isPageNumberLine(line) {
			continue
		}

		if line == "Category" {
			if next := nextAddressValue(lines, i, false); next != "" {
				current.Type = next
				i = findLineIndex(lines, i+1, next)
				continue
			}
		}
		if line == "Residence Code" {
			if next := nextAddressValue(lines, i, false); next != "" {
				current.ResidenceCode = next
				i = findLineIndex(lines, i+1, next)
				continue
			}
		}
		if line == "Date Reported" {
			if next := nextAddressValue(lines, i, true); next != "" {
				current.DateReported = next
				i = findLineIndex(lines, i+1, next)
				continue
			}
		}

		inline := line
		if loc := categoryInline.FindStringSubmatchIndex(inline); loc != nil {
			value := strings.TrimSpace(inline[loc[2]:loc[3]])
			if !isPlaceholder(value) && !isPageNumberLine(value) {
				current.Type = value
			}
			inline = inline[:loc[0]] + inline[loc[3]:]
		}
		if loc := residenceInline.FindStringSubmatchIndex(inline); loc != nil {
			value := strings.TrimSpace(inline[loc[2]:loc[3]])
			if !isPlaceholder(value) && !isPageNumberLine(value) {
				current.ResidenceCode = value
			}
			inline = inline[:loc[0]] + inline[loc[3]:]
		}
		if m := dateRepInline.FindStringSubmatch(inline); m != nil {
			current.DateReported = m[1]
			inline = strings.Replace(inline, m[0], "", 1)
		}
		if line != "Category" && line != "Residence Code" && line != "Date Reported" {
			if addressLine := normalizeAddressLine(inline); addressLine != "" {
				current.Address = strings.TrimSpace(current.Address + " " + addressLine)
			}
		}
	}

	commit()
	return addresses
}

// nextAddressValue scans forward for the next value line, stopping at the
// next address field label. With dateOnly set, the first non-junk line must
// contain a dd/mm/yyyy token or the scan returns nothing.
func nextAddressValue(lines []string, index int, dateOnly bool) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if candidate == normalize.PageBreak || isPageNumberLine(candidate) || isJunkLine(candidate) {
			continue
		}
		if candidate == "Category" || candidate == "Residence Code" || candidate == "Date Reported" {
			return ""
		}
		if dateOnly && dateInLine(candidate) == "" {
			return ""
		}
		return candidate
	}
	return ""
}

// normalizeAddressLine drops a trailing dd/mm page-number token glued onto
// an address fragment.
func normalizeAddressLine(line string) string {
	return strings.TrimSpace(trailingPageNum.ReplaceAllString(line, ""))
}

// moveTrailingAddressCategory detects a category phrase accidentally folded
// into the end of the address text and moves it into Type when Type was
// never set explicitly.
func moveTrailingAddressCategory(addr *model.Address) {
	if addr.Address == "" {
		return
	}
	if addr.Type != model.NA && addr.Type != "" {
		return
	}
	for _, category := range addressCategories {
		pat := regexp.MustCompile(`(?i)\s+` + regexp.QuoteMeta(category) + `$`)
		if pat.MatchString(addr.Address) {
			addr.Address = strings.TrimSpace(pat.ReplaceAllString(addr.Address, ""))
			addr.Type = category
			return
		}
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
