package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
	"github.com/creditdesk/cibil-extract/internal/normalize"
)

var numberedReason = regexp.MustCompile(`^\d+\.\s+(.*)$`)

// extractAdditionalInformation picks up the free-form report tail: the
// numbered "NH" score-reason list and the closing disclaimer, which is
// collected to the end of the text as a single entry.
func extractAdditionalInformation(lines []string) []model.AdditionalInfo {
	var additional []model.AdditionalInfo
	sequence := 1
	inNh := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "Please note in some cases you might be displayed a CIBIL Score") {
			inNh = true
			continue
		}
		if inNh {
			if m := numberedReason.FindStringSubmatch(line); m != nil {
				additional = append(additional, model.AdditionalInfo{
					Sequence: strconv.Itoa(sequence),
					Label:    "CIBIL Score 'NH' Reason",
					Value:    m[1],
				})
				sequence++
				continue
			}
			if line == "PERSONAL DETAILS" {
				inNh = false
			}
		}

		if strings.HasPrefix(line, "Disclaimer:") || strings.HasPrefix(line, "All information contained in this credit report") {
			disclaimer := []string{line}
			for j := i + 1; j < len(lines); j++ {
				if lines[j] == normalize.PageBreak {
					continue
				}
				disclaimer = append(disclaimer, lines[j])
			}
			additional = append(additional, model.AdditionalInfo{
				Sequence: strconv.Itoa(sequence),
				Label:    "Report Disclaimer",
				Value:    strings.TrimSpace(strings.Join(disclaimer, " ")),
			})
			break
		}
	}

	return additional
}
