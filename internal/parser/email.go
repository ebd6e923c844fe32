package parser

import (
	"net/mail"
	"strconv"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
)

// IsValidEmailAddress applies RFC-ish address validation. Shared with the
// validator.
func IsValidEmailAddress(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	// Reject display-name forms; the report only ever carries bare addresses.
	return addr.Address == value && strings.Contains(value, "@")
}

// extractEmails takes the label-anchored value after each "Email ID" line
// and additionally harvests subsequent lines that independently validate as
// email addresses, until a stop label is hit.
func extractEmails(lines []string) []model.Email {
	var emails []model.Email
	inEmail := false
	sequence := 1

	for index := 0; index < len(lines); index++ {
		line := lines[index]
		if line == "EMAIL DETAILS" {
			inEmail = true
			continue
		}
		if inEmail && line == "EMPLOYMENT DETAILS" {
			break
		}
		if !inEmail {
			continue
		}

		if line == "Email ID" && index+1 < len(lines) {
			value := nextEmailValue(lines, index)
			if value == "" {
				continue
			}
			emails = append(emails, model.Email{
				Sequence:     strconv.Itoa(sequence),
				EmailAddress: value,
			})
			sequence++

			for i := index + 2; i < len(lines); i++ {
				candidate := lines[i]
				if candidate == "EMPLOYMENT DETAILS" || candidate == "Email ID" {
					break
				}
				if isJunkLine(candidate) || isPageNumberLine(candidate) {
					continue
				}
				if IsValidEmailAddress(candidate) {
					emails = append(emails, model.Email{
						Sequence:     strconv.Itoa(sequence),
						EmailAddress: candidate,
					})
					sequence++
					continue
				}
				break
			}
		}
	}

	return emails
}

// nextEmailValue returns the first non-junk line after the label, or "" when
// the next real line is another label or the section end.
func nextEmailValue(lines []string, index int) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) || isPageNumberLine(candidate) {
			continue
		}
		if candidate == "Email ID" || candidate == "EMPLOYMENT DETAILS" {
			return ""
		}
		return candidate
	}
	return ""
}
