package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
)

// phoneTypeAllowList is the fixed set of telephone type strings accepted
// (case-insensitive) before a following number token is trusted.
var phoneTypeAllowList = []string{
	"mobile phone",
	"mobile phone (e)",
	"mobile",
	"not classified",
	"not classified (e)",
	"office phone",
	"office phone (e)",
	"residence phone",
	"home phone",
	"telephone",
}

var (
	phoneTypeInline   = regexp.MustCompile(`(?i)^Telephone Number Type\s+(.+)$`)
	phoneNumberInline = regexp.MustCompile(`(?i)^Telephone Number\s+(.+)$`)
	phoneExtension    = regexp.MustCompile(`(?i)^Telephone Extension\b`)
	phoneTypeWord     = regexp.MustCompile(`^Type\b`)
	digitRun          = regexp.MustCompile(`^\d{6,}$`)
	nonDigitRun       = regexp.MustCompile(`\D+`)
)

// IsAllowedPhoneType reports whether a type string is on the allow-list.
// Shared with the validator.
func IsAllowedPhoneType(value string) bool {
	key := strings.ToLower(strings.TrimSpace(value))
	for _, allowed := range phoneTypeAllowList {
		if key == allowed {
			return true
		}
	}
	return false
}

// extractTelephones walks the contact section pairing recognized type lines
// with the next plausible number token. A number is only accepted when a
// recognized type is active.
func extractTelephones(lines []string) []model.Telephone {
	var telephones []model.Telephone
	inContact := false
	sequence := 1
	currentType := ""
	expectNumber := false

	appendPhone := func(number string) {
		telephones = append(telephones, model.Telephone{
			Sequence:  strconv.Itoa(sequence),
			Number:    number,
			Type:      currentType,
			Extension: model.NA,
		})
		sequence++
		expectNumber = false
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "CONTACT DETAILS" {
			inContact = true
			continue
		}
		if inContact && line == "EMAIL DETAILS" {
			break
		}
		if !inContact {
			continue
		}
		if isJunkLine(line) || isPageNumberLine(line) {
			continue
		}

		if line == "Telephone Number Type" {
			currentType = nextAllowedPhoneType(lines, i)
			continue
		}
		if line == "Telephone Number" {
			expectNumber = true
			continue
		}
		if m := phoneTypeInline.FindStringSubmatch(line); m != nil {
			if IsAllowedPhoneType(m[1]) {
				currentType = strings.TrimSpace(m[1])
			} else {
				currentType = ""
			}
			continue
		}
		if m := phoneNumberInline.FindStringSubmatch(line); m != nil && !phoneTypeWord.MatchString(strings.TrimSpace(m[1])) {
			number := strings.TrimSpace(m[1])
			if currentType != "" && number != "" {
				appendPhone(number)
				continue
			}
			expectNumber = true
			continue
		}
		if phoneExtension.MatchString(line) {
			expectNumber = false
			continue
		}
		if expectNumber && currentType != "" {
			if !digitRun.MatchString(nonDigitRun.ReplaceAllString(line, "")) {
				continue
			}
			appendPhone(line)
		}
	}

	return telephones
}

// nextAllowedPhoneType scans forward for the first line matching the type
// allow-list, skipping junk. Returns "" when none is found before the
// section runs out.
func nextAllowedPhoneType(lines []string, index int) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) || isPageNumberLine(candidate) {
			continue
		}
		if IsAllowedPhoneType(candidate) {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}
