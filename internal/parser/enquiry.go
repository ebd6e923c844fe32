package parser

import (
	"strconv"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
)

var enquiryLabels = []string{"Member Name", "Date Of Enquiry", "Enquiry Purpose"}

var enquiryStopLabels = []string{"Member Name", "Date Of Enquiry", "Enquiry Purpose", "ENQUIRY DETAILS"}

// extractEnquiries walks the enquiry section, one record per member. A
// record only commits when it carries a member name plus at least one of
// date or purpose, which filters the header echoes the layout pass leaves
// behind. An unlabeled line directly above a "Date Of Enquiry" label is
// treated as the next record's member name.
func extractEnquiries(lines []string) []model.Enquiry {
	var enquiries []model.Enquiry
	sequence := 1
	inSection := false
	member, date, purpose := "", "", ""

	hasData := func() bool {
		m := strings.TrimSpace(member)
		if m == "" || strings.EqualFold(m, model.NA) {
			return false
		}
		d := strings.TrimSpace(date)
		p := strings.TrimSpace(purpose)
		return (d != "" && !strings.EqualFold(d, model.NA)) ||
			(p != "" && !strings.EqualFold(p, model.NA))
	}
	orNA := func(value string) string {
		if value == "" {
			return model.NA
		}
		return value
	}
	commit := func() {
		if !hasData() {
			return
		}
		enquiries = append(enquiries, model.Enquiry{
			Sequence:       strconv.Itoa(sequence),
			MemberName:     member,
			DateOfEnquiry:  orNA(date),
			EnquiryPurpose: orNA(purpose),
		})
		sequence++
	}
	reset := func() {
		member, date, purpose = "", "", ""
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if matchLabel(line, []string{"ENQUIRY DETAILS"}) != "" {
			inSection = true
			continue
		}
		if inSection && (strings.HasPrefix(line, "End of report") ||
			strings.HasPrefix(line, "Disclaimer:") ||
			strings.HasPrefix(line, "COPYRIGHT")) {
			break
		}
		if !inSection {
			continue
		}

		label := matchLabel(line, enquiryLabels)
		if label == "" {
			label = line
		}

		if label == "Member Name" && i+1 < len(lines) {
			commit()
			reset()
			if inline := inlineValueForLabel(line, "Member Name"); inline != "" {
				member = inline
				continue
			}
			if next := nextEnquiryValue(lines, i); next != "" {
				member = next
			}
			continue
		}
		if label == "Date Of Enquiry" && i+1 < len(lines) {
			if inline := inlineValueForLabel(line, "Date Of Enquiry"); inline != "" {
				date = inline
			} else if value := nextEnquiryDateValue(lines, i); value != "" {
				date = value
			}
			continue
		}
		if label == "Enquiry Purpose" && i+1 < len(lines) {
			if inline := inlineValueForLabel(line, "Enquiry Purpose"); inline != "" {
				purpose = inline
				continue
			}
			if value := nextEnquiryValue(lines, i); value != "" {
				purpose = value
			}
			continue
		}

		if isJunkLine(line) || isPageNumberLine(line) {
			continue
		}

		// A free-standing line right before "Date Of Enquiry" is the next
		// record's member name in the two-column layout.
		if !contains(enquiryLabels, label) && i+1 < len(lines) {
			if matchLabel(lines[i+1], enquiryLabels) == "Date Of Enquiry" {
				if hasData() {
					commit()
					reset()
				}
				member = line
			}
		}
	}

	commit()
	return enquiries
}

// nextEnquiryValue scans forward for the next value line, stopping at the
// next enquiry label.
func nextEnquiryValue(lines []string, index int) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) || isPageNumberLine(candidate) {
			continue
		}
		if matchLabel(candidate, enquiryStopLabels) != "" {
			return ""
		}
		if isPlaceholder(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

// nextEnquiryDateValue is nextEnquiryValue restricted to date-bearing lines.
func nextEnquiryDateValue(lines []string, index int) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) || isPageNumberLine(candidate) {
			continue
		}
		if matchLabel(candidate, enquiryStopLabels) != "" {
			return ""
		}
		if isPlaceholder(candidate) {
			continue
		}
		if date := dateInLine(candidate); date != "" {
			return date
		}
	}
	return ""
}
