package ocr

import (
	"regexp"
	"strings"
)

// The text layer of browser-printed reports arrives with artifacts that
// confuse the section parser: print headers glued onto data lines, page
// numbers trailing real content, and payment history rows whose months and
// DPD values land on separate lines. Repair fixes these token-level faults
// before normalization; it knows nothing about sections.

var (
	multiSpace     = regexp.MustCompile(`\s+`)
	printHeader    = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2},\s+\d{1,2}:\d{2}\s+[AP]M\s+Score Report \| Cibil Dashboard$`)
	urlPageNo      = regexp.MustCompile(`^(https?://\S+)\s+(\d{1,2}/\d{2})$`)
	threeDigits    = regexp.MustCompile(`^\d{3}$`)
	statusWithDpd  = regexp.MustCompile(`^PAYMENT STATUS\s+(\d{1,3})$`)
	trailingPageNo = regexp.MustCompile(`^(.*\D)\s+(\d{1,2}/\d{2})$`)
	monthYearToken = regexp.MustCompile(`\b([A-Za-z]{3}\s+\d{4})\b`)
	dpdRepairToken = regexp.MustCompile(`\b(\d{1,3}|STD|XXX|DBT|SMA|SUB|LSS)\b`)
)

// Repair rewrites extracted text so each payment history observation and
// each header field sits on a line of its own. Two passes: the first cleans
// per-line artifacts, the second re-pairs months with their DPD values.
func Repair(text string) string {
	normalized := repairArtifacts(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
	return strings.Join(repairHistoryPairs(normalized), "\n")
}

func repairArtifacts(lines []string) []string {
	var normalized []string
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t\n\r")
		if line == "" {
			normalized = append(normalized, "")
			continue
		}

		line = multiSpace.ReplaceAllString(line, " ")

		// The browser print header lands on the same visual row as the
		// timestamp. Split them so neither pollutes a header lookup.
		if printHeader.MatchString(line) {
			idx := strings.Index(line, " Score Report | Cibil Dashboard")
			normalized = append(normalized, strings.TrimSpace(line[:idx]), "Score Report | Cibil Dashboard")
			continue
		}

		if m := urlPageNo.FindStringSubmatch(line); m != nil {
			normalized = append(normalized, m[1], m[2])
			continue
		}

		// The score gauge renders its bounds and needle on separate rows;
		// rejoin them so the score stays adjacent to its scale.
		if line == "300 900" && i+1 < len(lines) {
			next := strings.TrimSpace(multiSpace.ReplaceAllString(lines[i+1], " "))
			if threeDigits.MatchString(next) {
				normalized = append(normalized, "300 "+next+" 900")
				i++
				continue
			}
		}

		normalized = append(normalized, line)
	}
	return normalized
}

func repairHistoryPairs(normalized []string) []string {
	var final []string
	pendingDpd := ""
	havePending := false

	for i := 0; i < len(normalized); i++ {
		line := normalized[i]
		if line == "" {
			final = append(final, "")
			continue
		}

		if m := statusWithDpd.FindStringSubmatch(line); m != nil {
			pendingDpd = m[1]
			havePending = true
			final = append(final, "PAYMENT STATUS")
			continue
		}

		if m := trailingPageNo.FindStringSubmatch(line); m != nil {
			final = append(final, strings.TrimSpace(m[1]), m[2])
			continue
		}

		months := monthYearTokens(line)
		currentDpds := dpdTokens(line)

		// Several month labels followed by a row of DPD values: zip them
		// back into one observation per month.
		if len(months) > 1 && len(currentDpds) < len(months) && i+1 < len(normalized) {
			nextLine := normalized[i+1]
			if len(monthYearTokens(nextLine)) == 0 {
				if tokens := dpdTokens(nextLine); len(tokens) > 0 {
					for idx, month := range months {
						dpd := "N/A"
						if idx < len(tokens) {
							dpd = tokens[idx]
						}
						final = append(final, month+" "+dpd)
					}
					i++
					continue
				}
			}
		}

		if len(months) == 1 && len(currentDpds) == 0 && i+1 < len(normalized) {
			nextLine := normalized[i+1]
			if len(monthYearTokens(nextLine)) == 0 {
				if tokens := dpdTokens(nextLine); len(tokens) == 1 {
					final = append(final, months[0]+" "+tokens[0])
					i++
					continue
				}
			}
		}

		if havePending && len(months) == 1 {
			final = append(final, months[0]+" "+pendingDpd)
			havePending = false
			pendingDpd = ""
			continue
		}

		final = append(final, line)
	}
	return final
}

func monthYearTokens(line string) []string {
	var tokens []string
	for _, m := range monthYearToken.FindAllStringSubmatch(line, -1) {
		tokens = append(tokens, m[1])
	}
	return tokens
}

func dpdTokens(line string) []string {
	var tokens []string
	for _, m := range dpdRepairToken.FindAllStringSubmatch(line, -1) {
		tokens = append(tokens, m[1])
	}
	return tokens
}
