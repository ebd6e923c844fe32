// Package sanitize is the final cleanup pass over a validated record. It
// guarantees the sentinel invariant (no scalar is ever blank) and applies
// per-field character cleanup that the parser deliberately leaves alone.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/creditdesk/cibil-extract/internal/model"
)

var accountNumberChars = regexp.MustCompile(`[^a-zA-Z0-9\-\s/.]`)

// Apply walks every scalar field of the record in place. It is idempotent.
func Apply(rep *model.ExtractedReport) {
	info := &rep.ReportInformation
	info.Score = ensureNA(info.Score)
	info.ReportDate = ensureNA(info.ReportDate)
	info.ControlNumber = strings.ReplaceAll(ensureNA(info.ControlNumber), ".", "")

	personal := &rep.PersonalInformation
	personal.Name = ensureNA(personal.Name)
	personal.DateOfBirth = ensureNA(personal.DateOfBirth)
	personal.Gender = ensureNA(personal.Gender)

	for i := range rep.IDAndContactInfo.Identifications {
		id := &rep.IDAndContactInfo.Identifications[i]
		id.Sequence = ensureNA(id.Sequence)
		id.IdentificationType = ensureNA(id.IdentificationType)
		id.IDNumber = ensureNA(id.IDNumber)
		id.IssueDate = ensureNA(id.IssueDate)
		id.ExpiryDate = ensureNA(id.ExpiryDate)
	}
	for i := range rep.IDAndContactInfo.ContactInformation.Addresses {
		addr := &rep.IDAndContactInfo.ContactInformation.Addresses[i]
		addr.Sequence = ensureNA(addr.Sequence)
		addr.Address = ensureNA(addr.Address)
		addr.Type = ensureNA(addr.Type)
		addr.ResidenceCode = ensureNA(addr.ResidenceCode)
		addr.DateReported = ensureNA(addr.DateReported)
	}
	for i := range rep.IDAndContactInfo.ContactInformation.Telephones {
		phone := &rep.IDAndContactInfo.ContactInformation.Telephones[i]
		phone.Sequence = ensureNA(phone.Sequence)
		phone.Number = ensureNA(phone.Number)
		phone.Type = ensureNA(phone.Type)
		phone.Extension = ensureNA(phone.Extension)
	}
	for i := range rep.IDAndContactInfo.ContactInformation.Emails {
		email := &rep.IDAndContactInfo.ContactInformation.Emails[i]
		email.Sequence = ensureNA(email.Sequence)
		email.EmailAddress = ensureNA(email.EmailAddress)
	}

	emp := &rep.EmploymentInformation
	emp.AccountType = ensureNA(emp.AccountType)
	emp.DateReported = ensureNA(emp.DateReported)
	emp.Occupation = ensureNA(emp.Occupation)
	emp.Income = cleanCurrency(emp.Income)
	emp.MonthlyAnnualIncomeIndicator = ensureNA(emp.MonthlyAnnualIncomeIndicator)
	emp.NetGrossIncomeIndicator = ensureNA(emp.NetGrossIncomeIndicator)

	for i := range rep.Accounts {
		sanitizeAccount(&rep.Accounts[i])
	}
	for i := range rep.Enquiries {
		enq := &rep.Enquiries[i]
		enq.Sequence = ensureNA(enq.Sequence)
		enq.MemberName = ensureNA(enq.MemberName)
		enq.DateOfEnquiry = ensureNA(enq.DateOfEnquiry)
		enq.EnquiryPurpose = ensureNA(enq.EnquiryPurpose)
	}
	for i := range rep.AdditionalInformation {
		add := &rep.AdditionalInformation[i]
		add.Sequence = ensureNA(add.Sequence)
		add.Label = ensureNA(add.Label)
		add.Value = ensureNA(add.Value)
	}
}

func sanitizeAccount(acc *model.Account) {
	acc.Sequence = ensureNA(acc.Sequence)
	acc.MemberName = ensureNA(acc.MemberName)
	acc.AccountType = ensureNA(acc.AccountType)
	acc.AccountNumber = cleanAccountNumber(acc.AccountNumber)
	acc.OwnershipType = ensureNA(acc.OwnershipType)
	acc.RateOfInterest = ensureNA(acc.RateOfInterest)
	acc.PaymentFrequency = ensureNA(acc.PaymentFrequency)
	acc.RepaymentTenure = ensureNA(acc.RepaymentTenure)
	acc.TypeOfCollateral = ensureNA(acc.TypeOfCollateral)
	acc.CreditFacilityStatus = ensureNA(acc.CreditFacilityStatus)
	acc.SuitFiledWillfulDefault = ensureNA(acc.SuitFiledWillfulDefault)
	for _, field := range model.DateFields {
		target := acc.DateField(field)
		*target = ensureNA(*target)
	}
	for _, field := range model.AmountFields {
		target := acc.AmountField(field)
		*target = cleanCurrency(*target)
	}
	for i := range acc.PaymentHistory {
		entry := &acc.PaymentHistory[i]
		entry.Month = ensureNA(entry.Month)
		entry.Year = ensureNA(entry.Year)
		entry.DaysPastDue = ensureNA(entry.DaysPastDue)
	}
}

// ensureNA turns a blank value into the sentinel, everything else into its
// trimmed form.
func ensureNA(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return model.NA
	}
	return trimmed
}

// cleanCurrency strips rupee signs and thousand separators from monetary
// values the parser may have captured verbatim.
func cleanCurrency(value string) string {
	str := ensureNA(value)
	if str == model.NA {
		return model.NA
	}
	str = strings.ReplaceAll(str, "₹", "")
	str = strings.ReplaceAll(str, ",", "")
	return strings.TrimSpace(str)
}

// cleanAccountNumber keeps only the characters an account identifier can
// legitimately contain.
func cleanAccountNumber(value string) string {
	str := strings.TrimSpace(value)
	if str == "" || strings.EqualFold(str, model.NA) {
		return model.NA
	}
	cleaned := strings.TrimSpace(accountNumberChars.ReplaceAllString(str, ""))
	if cleaned == "" {
		return model.NA
	}
	return cleaned
}
