package parser

import (
	"regexp"
	"strconv"

	"github.com/creditdesk/cibil-extract/internal/model"
)

var (
	idTypeInline   = regexp.MustCompile(`^Identification Type\s+(.+)$`)
	idNumberInline = regexp.MustCompile(`^ID Number\s+(.+)$`)
	issueInline    = regexp.MustCompile(`^Issue Date\s+(.+)$`)
	expiryInline   = regexp.MustCompile(`^Expiry Date\s+(.+)$`)
)

var identificationStopLabels = []string{
	"Identification Type",
	"ID Number",
	"Issue Date",
	"Expiry Date",
	"IDENTIFICATION DETAILS",
	"ADDRESS DETAILS",
}

// extractIdentifications collects one record per "Identification Type"
// label inside the identification section. A record is committed only when
// its type is not the sentinel.
func extractIdentifications(lines []string) []model.Identification {
	var ids []model.Identification
	var current *model.Identification
	inSection := false
	sequence := 1

	commit := func() {
		if current != nil && current.IdentificationType != model.NA {
			current.Sequence = strconv.Itoa(sequence)
			sequence++
			ids = append(ids, *current)
		}
	}

	blank := func() *model.Identification {
		return &model.Identification{
			IdentificationType: model.NA,
			IDNumber:           model.NA,
			IssueDate:          model.NA,
			ExpiryDate:         model.NA,
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "IDENTIFICATION DETAILS" {
			inSection = true
			continue
		}
		if inSection && line == "ADDRESS DETAILS" {
			break
		}
		if !inSection {
			continue
		}
		if isJunkLine(line) || isPageNumberLine(line) {
			continue
		}

		if m := idTypeInline.FindStringSubmatch(line); m != nil {
			commit()
			current = blank()
			current.IdentificationType = normalizeValue(m[1])
			continue
		}
		if current != nil {
			if m := idNumberInline.FindStringSubmatch(line); m != nil {
				current.IDNumber = normalizeValue(m[1])
				continue
			}
			if m := issueInline.FindStringSubmatch(line); m != nil {
				current.IssueDate = normalizeValue(m[1])
				continue
			}
			if m := expiryInline.FindStringSubmatch(line); m != nil {
				current.ExpiryDate = normalizeValue(m[1])
				continue
			}
		}

		switch line {
		case "Identification Type":
			commit()
			current = blank()
			if value := nextIdentificationValue(lines, i); value != "" {
				current.IdentificationType = normalizeValue(value)
			}
		case "ID Number":
			if current != nil {
				if value := nextIdentificationValue(lines, i); value != "" {
					current.IDNumber = normalizeValue(value)
				}
			}
		case "Issue Date":
			if current != nil {
				if value := nextIdentificationValue(lines, i); value != "" {
					current.IssueDate = normalizeValue(value)
				}
			}
		case "Expiry Date":
			if current != nil {
				if value := nextIdentificationValue(lines, i); value != "" {
					current.ExpiryDate = normalizeValue(value)
				}
			}
		}
	}

	commit()
	return ids
}

// nextIdentificationValue scans forward for the first real value line,
// skipping junk and stopping at the next label or section boundary.
func nextIdentificationValue(lines []string, index int) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) || isPageNumberLine(candidate) {
			continue
		}
		for _, label := range identificationStopLabels {
			if candidate == label {
				return ""
			}
		}
		return candidate
	}
	return ""
}
