package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditdesk/cibil-extract/internal/model"
)

func validReport() *model.ExtractedReport {
	rep := model.NewReport()
	rep.ReportInformation = model.ReportInformation{
		Score:         "756",
		ReportDate:    "15/01/2023",
		ControlNumber: "1234567",
	}
	rep.PersonalInformation = model.PersonalInformation{
		Name:        "RAHUL SHARMA",
		DateOfBirth: "01/01/1990",
		Gender:      "Male",
	}
	return rep
}

func TestApply_CleanReportNoWarnings(t *testing.T) {
	rep := validReport()
	assert.Empty(t, Apply(rep))
}

func TestApply_InvalidAmountDemoted(t *testing.T) {
	rep := validReport()
	acc := model.NewAccount()
	acc.MemberName = "HDFC BANK"
	acc.AmountOverdue = "abc"
	rep.Accounts = append(rep.Accounts, *acc)

	warnings := Apply(rep)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Accounts[0].AmountOverdue invalid: abc", warnings[0])
	assert.Equal(t, model.NA, rep.Accounts[0].AmountOverdue)
}

func TestApply_Idempotent(t *testing.T) {
	rep := validReport()
	acc := model.NewAccount()
	acc.AmountOverdue = "abc"
	acc.DateOpened = "June 2018"
	rep.Accounts = append(rep.Accounts, *acc)
	rep.ReportInformation.Score = "950"

	first := Apply(rep)
	require.NotEmpty(t, first)

	second := Apply(rep)
	assert.Empty(t, second, "repaired record must validate clean")
}

func TestApply_LexicalDateAccepted(t *testing.T) {
	// The date check is lexical; impossible calendar dates pass.
	rep := validReport()
	rep.PersonalInformation.DateOfBirth = "31/02/2020"
	assert.Empty(t, Apply(rep))
}

func TestApply_MalformedDateDemoted(t *testing.T) {
	rep := validReport()
	rep.ReportInformation.ReportDate = "January 15, 2023"

	warnings := Apply(rep)
	require.Len(t, warnings, 1)
	assert.Equal(t, "ReportInformation.ReportDate invalid: January 15, 2023", warnings[0])
	assert.Equal(t, model.NA, rep.ReportInformation.ReportDate)
}

func TestApply_ScoreOutOfRange(t *testing.T) {
	tests := []struct {
		score string
		valid bool
	}{
		{"300", true},
		{"900", true},
		{"756", true},
		{"299", false},
		{"901", false},
		{"1000", false},
	}
	for _, tt := range tests {
		rep := validReport()
		rep.ReportInformation.Score = tt.score
		warnings := Apply(rep)
		if tt.valid {
			assert.Empty(t, warnings, "score %s", tt.score)
		} else {
			require.Len(t, warnings, 1, "score %s", tt.score)
			assert.Equal(t, model.NA, rep.ReportInformation.Score)
		}
	}
}

func TestApply_ControlNumberDigitsOnly(t *testing.T) {
	rep := validReport()
	rep.ReportInformation.ControlNumber = "12AB34"

	warnings := Apply(rep)
	require.Len(t, warnings, 1)
	assert.Equal(t, "ReportInformation.ControlNumber invalid: 12AB34", warnings[0])
	assert.Equal(t, model.NA, rep.ReportInformation.ControlNumber)
}

func TestApply_PhoneNumberLength(t *testing.T) {
	rep := validReport()
	rep.IDAndContactInfo.ContactInformation.Telephones = []model.Telephone{
		{Sequence: "1", Number: "9876543210", Type: "Mobile Phone", Extension: model.NA},
		{Sequence: "2", Number: "12345", Type: "Mobile Phone", Extension: model.NA},
		{Sequence: "3", Number: "", Type: "Mobile Phone", Extension: model.NA},
	}

	warnings := Apply(rep)
	require.Len(t, warnings, 2)
	assert.Equal(t, "Telephones[1].Number invalid length: 12345", warnings[0])
	assert.Equal(t, "Telephones[2].Number missing.", warnings[1])
	assert.Equal(t, "9876543210", rep.IDAndContactInfo.ContactInformation.Telephones[0].Number)
	assert.Equal(t, model.NA, rep.IDAndContactInfo.ContactInformation.Telephones[1].Number)
}

func TestApply_PhoneTypeAllowList(t *testing.T) {
	rep := validReport()
	rep.IDAndContactInfo.ContactInformation.Telephones = []model.Telephone{
		{Sequence: "1", Number: "9876543210", Type: "Carrier Pigeon", Extension: model.NA},
	}

	warnings := Apply(rep)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Telephones[0].Type invalid: Carrier Pigeon", warnings[0])
	assert.Equal(t, model.NA, rep.IDAndContactInfo.ContactInformation.Telephones[0].Type)
}

func TestApply_EmailValidation(t *testing.T) {
	rep := validReport()
	rep.IDAndContactInfo.ContactInformation.Emails = []model.Email{
		{Sequence: "1", EmailAddress: "good@example.com"},
		{Sequence: "2", EmailAddress: "not-an-email"},
		{Sequence: "3", EmailAddress: model.NA},
	}

	warnings := Apply(rep)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Emails[1].EmailAddress invalid: not-an-email", warnings[0])
	assert.Equal(t, model.NA, rep.IDAndContactInfo.ContactInformation.Emails[1].EmailAddress)
}

func TestApply_IndicatorNormalization(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		warnings int
	}{
		{"Monthly", "Monthly", 0},
		{"monthly", "Monthly", 0},
		{"Monthly Income", "Monthly", 0},
		{"Annual", "Annual", 0},
		{model.NA, model.NA, 0},
		{"-", model.NA, 0},
		{"Weekly", model.NA, 1},
	}
	for _, tt := range tests {
		rep := validReport()
		rep.EmploymentInformation.MonthlyAnnualIncomeIndicator = tt.in
		warnings := Apply(rep)
		assert.Len(t, warnings, tt.warnings, "input %q", tt.in)
		assert.Equal(t, tt.want, rep.EmploymentInformation.MonthlyAnnualIncomeIndicator, "input %q", tt.in)
	}
}

func TestApply_AccountNumberLabelLookalike(t *testing.T) {
	rep := validReport()
	acc := model.NewAccount()
	acc.MemberName = "HDFC BANK"
	acc.AccountNumber = "Amount Overdue"
	rep.Accounts = append(rep.Accounts, *acc)

	warnings := Apply(rep)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Accounts[0].AccountNumber looks like label: Amount Overdue", warnings[0])
	assert.Equal(t, model.NA, rep.Accounts[0].AccountNumber)
}

func TestApply_PaymentHistory(t *testing.T) {
	rep := validReport()
	acc := model.NewAccount()
	acc.MemberName = "HDFC BANK"
	acc.PaymentHistory = []model.PaymentEntry{
		{Month: "Jan", Year: "2023", DaysPastDue: "0"},
		{Month: "Feb", Year: "2023", DaysPastDue: "STD"},
		{Month: "Mar", Year: "2023", DaysPastDue: model.NA},
		{Month: "January", Year: "23", DaysPastDue: "BAD"},
	}
	rep.Accounts = append(rep.Accounts, *acc)

	warnings := Apply(rep)
	require.Len(t, warnings, 3)
	assert.Equal(t, "Accounts[0].PaymentHistory[3].Month invalid: January", warnings[0])
	assert.Equal(t, "Accounts[0].PaymentHistory[3].Year invalid: 23", warnings[1])
	assert.Equal(t, "Accounts[0].PaymentHistory[3].DaysPastDue invalid: BAD", warnings[2])

	entry := rep.Accounts[0].PaymentHistory[3]
	assert.Equal(t, model.NA, entry.Month)
	assert.Equal(t, model.NA, entry.Year)
	assert.Equal(t, model.NA, entry.DaysPastDue)
}
