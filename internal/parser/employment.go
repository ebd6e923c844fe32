package parser

import (
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
)

var employmentLabels = []string{
	"Date Reported",
	"Account Type",
	"Occupation",
	"Income",
	"Monthly / Annual Income Indicator",
	"Net / Gross Income Indicator",
}

var employmentStopLabels = []string{
	"Date Reported",
	"Account Type",
	"Occupation",
	"Income",
	"Monthly / Annual Income Indicator",
	"Net / Gross Income Indicator",
	"ALL ACCOUNTS",
	"OPEN ACCOUNTS",
	"CLOSED ACCOUNTS",
}

// extractEmployment handles the employment block, where column pairs
// frequently arrive merged onto a single header line and the single value
// line underneath must be split positionally. Compound-label branches take
// priority over the single-label ones.
func extractEmployment(lines []string) model.EmploymentInformation {
	emp := model.NewEmployment()

	inEmployment := false
	for i := 0; i < len(lines); i++ {
		if matchLabel(lines[i], []string{"EMPLOYMENT DETAILS"}) != "" {
			inEmployment = true
			continue
		}
		if inEmployment && matchLabel(lines[i], []string{"ALL ACCOUNTS"}) != "" {
			break
		}
		if !inEmployment {
			continue
		}
		rawLine := lines[i]
		line := matchLabel(rawLine, employmentLabels)
		if line == "" {
			line = rawLine
		}

		if strings.Contains(rawLine, "Account Type") && strings.Contains(rawLine, "Date Reported") {
			if valueLine := nextEmploymentValue(lines, i); valueLine != "" {
				if date := dateInLine(valueLine); date != "" {
					emp.DateReported = date
					accountType := strings.TrimSpace(strings.Replace(valueLine, date, "", 1))
					if accountType != "" {
						emp.AccountType = normalizeValue(accountType)
					}
				}
			}
			continue
		}
		if strings.Contains(rawLine, "Occupation") && strings.Contains(rawLine, "Income") {
			if valueLine := nextEmploymentValue(lines, i); valueLine != "" {
				parts := strings.Fields(valueLine)
				if len(parts) >= 2 {
					income := parts[len(parts)-1]
					occupation := strings.Join(parts[:len(parts)-1], " ")
					emp.Occupation = normalizeValue(occupation)
					emp.Income = normalizeValue(income)
				} else {
					emp.Occupation = normalizeValue(valueLine)
				}
			}
			continue
		}
		if strings.Contains(line, "Monthly / Annual Income Indicator") && strings.Contains(line, "Net / Gross Income Indicator") {
			if valueLine := nextEmploymentValue(lines, i); valueLine != "" {
				parts := strings.Fields(valueLine)
				if len(parts) >= 2 {
					emp.MonthlyAnnualIncomeIndicator = normalizeValue(parts[0])
					emp.NetGrossIncomeIndicator = normalizeValue(parts[1])
				} else {
					emp.MonthlyAnnualIncomeIndicator = normalizeValue(valueLine)
				}
			}
			continue
		}

		switch line {
		case "Date Reported":
			if value := nextEmploymentValue(lines, i); value != "" && dateInLine(value) != "" {
				emp.DateReported = value
			}
		case "Account Type":
			if value := nextEmploymentValue(lines, i); value != "" {
				if dateInLine(value) != "" && i+2 < len(lines) {
					emp.DateReported = value
					emp.AccountType = normalizeValue(lines[i+2])
				} else {
					emp.AccountType = normalizeValue(value)
				}
			}
		case "Occupation":
			if value := nextEmploymentValue(lines, i); value != "" {
				emp.Occupation = normalizeValue(value)
			}
		case "Income":
			if value := nextEmploymentValue(lines, i); value != "" {
				emp.Income = normalizeValue(value)
			}
		case "Monthly / Annual Income Indicator":
			if value := nextEmploymentValue(lines, i); value != "" {
				monthlyAnnual, netGross := parseEmploymentIndicators(value)
				emp.MonthlyAnnualIncomeIndicator = normalizeValue(monthlyAnnual)
				if netGross != "" {
					emp.NetGrossIncomeIndicator = normalizeValue(netGross)
				}
			}
		case "Net / Gross Income Indicator":
			if value := nextEmploymentValue(lines, i); value != "" {
				monthlyAnnual, netGross := parseEmploymentIndicators(value)
				if monthlyAnnual != "" {
					emp.MonthlyAnnualIncomeIndicator = normalizeValue(monthlyAnnual)
				}
				if netGross != "" {
					emp.NetGrossIncomeIndicator = normalizeValue(netGross)
				} else {
					emp.NetGrossIncomeIndicator = normalizeValue(value)
				}
			}
		}
	}

	return emp
}

// parseEmploymentIndicators picks the Monthly/Annual and Net/Gross tokens
// out of a value line. When neither token is present the raw value is
// returned as the first indicator.
func parseEmploymentIndicators(value string) (monthlyAnnual, netGross string) {
	for _, token := range strings.Fields(value) {
		switch strings.ToUpper(token) {
		case "MONTHLY":
			monthlyAnnual = "Monthly"
		case "ANNUAL":
			monthlyAnnual = "Annual"
		case "NET":
			netGross = "Net"
		case "GROSS":
			netGross = "Gross"
		}
	}
	if monthlyAnnual == "" && netGross == "" {
		return value, ""
	}
	return monthlyAnnual, netGross
}

// nextEmploymentValue scans forward for the next real value, stopping at
// the next employment label or the accounts boundary.
func nextEmploymentValue(lines []string, index int) string {
	for i := index + 1; i < len(lines); i++ {
		candidate := lines[i]
		if isJunkLine(candidate) {
			continue
		}
		if matchLabel(candidate, employmentStopLabels) != "" {
			return ""
		}
		if isPlaceholder(candidate) {
			continue
		}
		return candidate
	}
	return ""
}
