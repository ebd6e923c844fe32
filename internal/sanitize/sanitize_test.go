package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditdesk/cibil-extract/internal/model"
)

func TestApply_BlanksBecomeSentinel(t *testing.T) {
	rep := model.NewReport()
	rep.PersonalInformation.Name = ""
	rep.PersonalInformation.Gender = "   "
	rep.IDAndContactInfo.ContactInformation.Telephones = []model.Telephone{
		{Sequence: "1", Number: "9876543210"},
	}

	Apply(rep)

	assert.Equal(t, model.NA, rep.PersonalInformation.Name)
	assert.Equal(t, model.NA, rep.PersonalInformation.Gender)
	phone := rep.IDAndContactInfo.ContactInformation.Telephones[0]
	assert.Equal(t, "9876543210", phone.Number)
	assert.Equal(t, model.NA, phone.Type)
	assert.Equal(t, model.NA, phone.Extension)
}

func TestApply_TrimsValues(t *testing.T) {
	rep := model.NewReport()
	rep.PersonalInformation.Name = "  RAHUL SHARMA  "

	Apply(rep)

	assert.Equal(t, "RAHUL SHARMA", rep.PersonalInformation.Name)
}

func TestApply_CurrencyCleanup(t *testing.T) {
	rep := model.NewReport()
	acc := model.NewAccount()
	acc.CurrentBalance = "₹1,23,456"
	acc.AmountOverdue = " 2,500 "
	rep.Accounts = append(rep.Accounts, *acc)
	rep.EmploymentInformation.Income = "₹50,000"

	Apply(rep)

	assert.Equal(t, "123456", rep.Accounts[0].CurrentBalance)
	assert.Equal(t, "2500", rep.Accounts[0].AmountOverdue)
	assert.Equal(t, "50000", rep.EmploymentInformation.Income)
}

func TestApply_ControlNumberDotsRemoved(t *testing.T) {
	rep := model.NewReport()
	rep.ReportInformation.ControlNumber = "1.234.567"

	Apply(rep)

	assert.Equal(t, "1234567", rep.ReportInformation.ControlNumber)
}

func TestApply_PaymentHistoryBackfilled(t *testing.T) {
	rep := model.NewReport()
	acc := model.NewAccount()
	acc.PaymentHistory = []model.PaymentEntry{{Month: "Jan", Year: "2023", DaysPastDue: ""}}
	rep.Accounts = append(rep.Accounts, *acc)

	Apply(rep)

	require.Len(t, rep.Accounts[0].PaymentHistory, 1)
	assert.Equal(t, model.NA, rep.Accounts[0].PaymentHistory[0].DaysPastDue)
}

func TestApply_Idempotent(t *testing.T) {
	rep := model.NewReport()
	rep.ReportInformation.ControlNumber = "1.234"
	acc := model.NewAccount()
	acc.AccountNumber = "4111-XXXX@1111"
	acc.CurrentBalance = "₹9,000"
	rep.Accounts = append(rep.Accounts, *acc)

	Apply(rep)
	first := *rep
	Apply(rep)

	assert.Equal(t, first.ReportInformation, rep.ReportInformation)
	assert.Equal(t, first.Accounts[0], rep.Accounts[0])
}

func TestCleanCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"₹1,23,456", "123456"},
		{"2500", "2500"},
		{"", model.NA},
		{model.NA, model.NA},
		{"  1,000  ", "1000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanCurrency(tt.in), "input %q", tt.in)
	}
}

func TestCleanAccountNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4111XXXX1111", "4111XXXX1111"},
		{"4111-XXXX/11.11", "4111-XXXX/11.11"},
		{"4111@#XXXX", "4111XXXX"},
		{"@@##", model.NA},
		{"", model.NA},
		{"n/a", model.NA},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanAccountNumber(tt.in), "input %q", tt.in)
	}
}

func TestEnsureNA(t *testing.T) {
	assert.Equal(t, model.NA, ensureNA(""))
	assert.Equal(t, model.NA, ensureNA("   "))
	assert.Equal(t, "value", ensureNA(" value "))
}
