// Package validate checks the parsed record field by field and repairs what
// it rejects. Every rejected value is demoted to the sentinel and produces
// exactly one warning naming the field path and the offending value, so a
// second pass over the repaired record is always warning-free.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
	"github.com/creditdesk/cibil-extract/internal/parser"
)

var (
	lexicalDate  = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	nonDigits    = regexp.MustCompile(`\D+`)
	nonAmount    = regexp.MustCompile(`[^0-9.]`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	monthPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
)

var allowedDpdCodes = []string{"STD", "XXX", "DBT", "SMA", "SUB", "LSS"}

type checker struct {
	warnings []string
}

func (c *checker) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// Apply runs every validation rule against the record, repairing it in
// place, and returns the warnings in rule order. Applying it again to the
// repaired record yields no warnings.
func Apply(rep *model.ExtractedReport) []string {
	c := &checker{}
	c.reportInfo(rep)
	c.personalInfo(rep)
	c.addresses(rep)
	c.phoneTypes(rep)
	c.phoneNumbers(rep)
	c.emails(rep)
	c.employmentIndicators(rep)
	c.accountDates(rep)
	c.accountNumbers(rep)
	c.accountAmounts(rep)
	c.scoreAndControl(rep)
	c.enquiries(rep)
	c.paymentHistory(rep)
	return c.warnings
}

// isValidDateValue accepts placeholders and anything shaped dd/mm/yyyy. The
// check is purely lexical; an impossible calendar date passes.
func isValidDateValue(value string) bool {
	trim := strings.TrimSpace(value)
	if trim == "" || trim == "-" || trim == "--" || strings.EqualFold(trim, model.NA) {
		return true
	}
	return lexicalDate.MatchString(trim)
}

func (c *checker) reportInfo(rep *model.ExtractedReport) {
	if !isValidDateValue(rep.ReportInformation.ReportDate) {
		c.warnf("ReportInformation.ReportDate invalid: %s", rep.ReportInformation.ReportDate)
		rep.ReportInformation.ReportDate = model.NA
	}
}

func (c *checker) personalInfo(rep *model.ExtractedReport) {
	if !isValidDateValue(rep.PersonalInformation.DateOfBirth) {
		c.warnf("PersonalInformation.DateOfBirth invalid: %s", rep.PersonalInformation.DateOfBirth)
		rep.PersonalInformation.DateOfBirth = model.NA
	}
}

func (c *checker) addresses(rep *model.ExtractedReport) {
	for idx := range rep.IDAndContactInfo.ContactInformation.Addresses {
		addr := &rep.IDAndContactInfo.ContactInformation.Addresses[idx]
		if !isValidDateValue(addr.DateReported) {
			c.warnf("Addresses[%d].DateReported invalid: %s", idx, addr.DateReported)
			addr.DateReported = model.NA
		}
	}
}

func (c *checker) phoneTypes(rep *model.ExtractedReport) {
	for idx := range rep.IDAndContactInfo.ContactInformation.Telephones {
		phone := &rep.IDAndContactInfo.ContactInformation.Telephones[idx]
		typeKey := strings.ToLower(strings.TrimSpace(phone.Type))
		if typeKey == "" || typeKey == "n/a" {
			continue
		}
		if !parser.IsAllowedPhoneType(phone.Type) {
			c.warnf("Telephones[%d].Type invalid: %s", idx, phone.Type)
			phone.Type = model.NA
		}
	}
}

func (c *checker) phoneNumbers(rep *model.ExtractedReport) {
	for idx := range rep.IDAndContactInfo.ContactInformation.Telephones {
		phone := &rep.IDAndContactInfo.ContactInformation.Telephones[idx]
		digits := nonDigits.ReplaceAllString(phone.Number, "")
		if digits == "" {
			c.warnf("Telephones[%d].Number missing.", idx)
			phone.Number = model.NA
			continue
		}
		if len(digits) < 8 || len(digits) > 15 {
			c.warnf("Telephones[%d].Number invalid length: %s", idx, phone.Number)
			phone.Number = model.NA
		}
	}
}

func (c *checker) emails(rep *model.ExtractedReport) {
	for idx := range rep.IDAndContactInfo.ContactInformation.Emails {
		email := &rep.IDAndContactInfo.ContactInformation.Emails[idx]
		value := strings.TrimSpace(email.EmailAddress)
		if value == "" || strings.EqualFold(value, model.NA) {
			continue
		}
		if !parser.IsValidEmailAddress(value) {
			c.warnf("Emails[%d].EmailAddress invalid: %s", idx, value)
			email.EmailAddress = model.NA
		}
	}
}

func (c *checker) employmentIndicators(rep *model.ExtractedReport) {
	emp := &rep.EmploymentInformation
	emp.MonthlyAnnualIncomeIndicator = c.normalizeIndicator(
		emp.MonthlyAnnualIncomeIndicator,
		[]string{"monthly", "annual"},
		"EmploymentInformation.MonthlyAnnualIncomeIndicator",
	)
	emp.NetGrossIncomeIndicator = c.normalizeIndicator(
		emp.NetGrossIncomeIndicator,
		[]string{"net", "gross"},
		"EmploymentInformation.NetGrossIncomeIndicator",
	)
}

// normalizeIndicator coerces an indicator to its canonical token, matching
// exactly first and by substring second. Anything else warns and demotes.
func (c *checker) normalizeIndicator(value string, allowed []string, path string) string {
	trim := strings.TrimSpace(value)
	if trim == "" || trim == "-" || trim == "--" || strings.EqualFold(trim, model.NA) {
		return model.NA
	}
	valueLower := strings.ToLower(trim)
	for _, token := range allowed {
		if valueLower == token {
			return ucfirst(token)
		}
	}
	for _, token := range allowed {
		if strings.Contains(valueLower, token) {
			return ucfirst(token)
		}
	}
	c.warnf("%s invalid: %s", path, value)
	return model.NA
}

func (c *checker) accountDates(rep *model.ExtractedReport) {
	for idx := range rep.Accounts {
		acc := &rep.Accounts[idx]
		for _, field := range model.DateFields {
			target := acc.DateField(field)
			if !isValidDateValue(*target) {
				c.warnf("Accounts[%d].%s invalid: %s", idx, field, *target)
				*target = model.NA
			}
		}
	}
}

func (c *checker) accountNumbers(rep *model.ExtractedReport) {
	for idx := range rep.Accounts {
		acc := &rep.Accounts[idx]
		value := strings.TrimSpace(acc.AccountNumber)
		if value == "" || strings.EqualFold(value, model.NA) {
			continue
		}
		if parser.LooksLikeLabel(value) {
			c.warnf("Accounts[%d].AccountNumber looks like label: %s", idx, value)
			acc.AccountNumber = model.NA
		}
	}
}

func (c *checker) accountAmounts(rep *model.ExtractedReport) {
	for idx := range rep.Accounts {
		acc := &rep.Accounts[idx]
		for _, field := range model.AmountFields {
			target := acc.AmountField(field)
			value := strings.TrimSpace(*target)
			if value == "" || value == "-" || value == "--" || strings.EqualFold(value, model.NA) {
				continue
			}
			digits := nonAmount.ReplaceAllString(value, "")
			if digits == "" || !isNumeric(digits) {
				c.warnf("Accounts[%d].%s invalid: %s", idx, field, *target)
				*target = model.NA
			}
		}
	}
}

func (c *checker) scoreAndControl(rep *model.ExtractedReport) {
	score := rep.ReportInformation.Score
	if score != model.NA {
		val, _ := strconv.Atoi(nonDigits.ReplaceAllString(score, ""))
		if val < 300 || val > 900 {
			c.warnf("ReportInformation.Score out of range: %s", score)
			rep.ReportInformation.Score = model.NA
		}
	}

	control := rep.ReportInformation.ControlNumber
	if control != model.NA && !digitsOnly.MatchString(control) {
		c.warnf("ReportInformation.ControlNumber invalid: %s", control)
		rep.ReportInformation.ControlNumber = model.NA
	}
}

func (c *checker) enquiries(rep *model.ExtractedReport) {
	for idx := range rep.Enquiries {
		enq := &rep.Enquiries[idx]
		if !isValidDateValue(enq.DateOfEnquiry) {
			c.warnf("Enquiries[%d].DateOfEnquiry invalid: %s", idx, enq.DateOfEnquiry)
			enq.DateOfEnquiry = model.NA
		}
	}
}

func (c *checker) paymentHistory(rep *model.ExtractedReport) {
	for aIdx := range rep.Accounts {
		acc := &rep.Accounts[aIdx]
		for hIdx := range acc.PaymentHistory {
			entry := &acc.PaymentHistory[hIdx]
			if !monthPattern.MatchString(entry.Month) {
				c.warnf("Accounts[%d].PaymentHistory[%d].Month invalid: %s", aIdx, hIdx, entry.Month)
				entry.Month = model.NA
			}
			if !yearPattern.MatchString(entry.Year) {
				c.warnf("Accounts[%d].PaymentHistory[%d].Year invalid: %s", aIdx, hIdx, entry.Year)
				entry.Year = model.NA
			}
			dpd := entry.DaysPastDue
			trim := strings.TrimSpace(dpd)
			if trim == "" || trim == "-" || trim == "--" || strings.EqualFold(trim, model.NA) {
				continue
			}
			if !isNumeric(dpd) && !isAllowedDpdCode(dpd) {
				c.warnf("Accounts[%d].PaymentHistory[%d].DaysPastDue invalid: %s", aIdx, hIdx, dpd)
				entry.DaysPastDue = model.NA
			}
		}
	}
}

func isAllowedDpdCode(value string) bool {
	upper := strings.ToUpper(value)
	for _, code := range allowedDpdCodes {
		if upper == code {
			return true
		}
	}
	return false
}

func isNumeric(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func ucfirst(token string) string {
	if token == "" {
		return token
	}
	return strings.ToUpper(token[:1]) + token[1:]
}
