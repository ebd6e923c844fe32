package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditdesk/cibil-extract/internal/export"
	"github.com/creditdesk/cibil-extract/internal/model"
)

func completeReport() *model.ExtractedReport {
	rep := model.NewReport()
	rep.ReportInformation = model.ReportInformation{Score: "756", ReportDate: "15/01/2023", ControlNumber: "1234567"}
	rep.PersonalInformation = model.PersonalInformation{Name: "RAHUL SHARMA", DateOfBirth: "01/01/1990", Gender: "Male"}
	rep.IDAndContactInfo.Identifications = []model.Identification{
		{Sequence: "1", IdentificationType: "Income Tax ID Number (PAN)", IDNumber: "ABCDE1234F", IssueDate: model.NA, ExpiryDate: model.NA},
	}
	rep.IDAndContactInfo.ContactInformation.Addresses = []model.Address{
		{Sequence: "1", Address: "123 MG ROAD BENGALURU", Type: "Permanent Address", ResidenceCode: "Owned", DateReported: "15/01/2023"},
	}
	rep.IDAndContactInfo.ContactInformation.Telephones = []model.Telephone{
		{Sequence: "1", Number: "9876543210", Type: "Mobile Phone", Extension: model.NA},
	}
	rep.IDAndContactInfo.ContactInformation.Emails = []model.Email{
		{Sequence: "1", EmailAddress: "rahul@example.com"},
	}
	acc := model.NewAccount()
	acc.Sequence = "1"
	acc.MemberName = "HDFC BANK"
	acc.AccountNumber = "4111XXXX1111"
	acc.PaymentHistory = []model.PaymentEntry{{Month: "Jan", Year: "2023", DaysPastDue: "0"}}
	rep.Accounts = append(rep.Accounts, *acc)
	rep.Enquiries = []model.Enquiry{
		{Sequence: "1", MemberName: "AXIS BANK", DateOfEnquiry: "10/12/2022", EnquiryPurpose: "Credit Card"},
	}
	rep.AdditionalInformation = []model.AdditionalInfo{
		{Sequence: "1", Label: "CIBIL Remarks", Value: "None"},
	}
	return rep
}

const completeText = "CONSUMER CIR\nControl Number 1234567\nDate 15/01/2023\nRAHUL SHARMA\nPAN ABCDE1234F"

func TestCheck_CompleteReport(t *testing.T) {
	result := Check(completeReport(), completeText)

	assert.True(t, result.OK)
	assert.Empty(t, result.Issues)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, result.Counts.Expected, result.Counts.Actual)
}

func TestCheck_MissingControlNumber(t *testing.T) {
	rep := completeReport()
	rep.ReportInformation.ControlNumber = model.NA

	result := Check(rep, completeText)

	assert.False(t, result.OK)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "missing_report_controlnumber", result.Issues[0].Code)
}

func TestCheck_NoAddressesNoAccounts(t *testing.T) {
	rep := completeReport()
	rep.IDAndContactInfo.ContactInformation.Addresses = nil
	rep.Accounts = nil

	result := Check(rep, completeText)

	assert.False(t, result.OK)
	var codes []string
	for _, issue := range result.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, "no_addresses")
	assert.Contains(t, codes, "no_accounts")
}

func TestCheck_ValueAbsentFromText(t *testing.T) {
	result := Check(completeReport(), "some unrelated text")

	assert.True(t, result.OK, "text drift is a warning, not an issue")
	var codes []string
	for _, warning := range result.Warnings {
		codes = append(codes, warning.Code)
	}
	assert.Contains(t, codes, "text_missing_controlnumber")
	assert.Contains(t, codes, "text_missing_name")
	assert.Contains(t, codes, "text_missing_pan")
}

func TestCheck_EmptyTextSkipsPresenceChecks(t *testing.T) {
	result := Check(completeReport(), "")

	for _, warning := range result.Warnings {
		assert.NotContains(t, warning.Code, "text_missing")
	}
}

func TestCheck_OmittedSheetWarns(t *testing.T) {
	rep := completeReport()
	rep.Enquiries = nil

	result := Check(rep, completeText)

	assert.True(t, result.OK)
	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, "excel_sheet_missing", result.Warnings[0].Code)
	assert.Contains(t, result.Warnings[0].Message, export.SheetEnquiries)
}

func TestExpectedSheetCounts(t *testing.T) {
	rep := completeReport()
	rep.Accounts[0].PaymentHistory = nil
	second := model.NewAccount()
	second.Sequence = "2"
	second.PaymentHistory = []model.PaymentEntry{
		{Month: "Jan", Year: "2023", DaysPastDue: "0"},
		{Month: "Feb", Year: "2023", DaysPastDue: "30"},
	}
	rep.Accounts = append(rep.Accounts, *second)

	counts := ExpectedSheetCounts(rep)
	assert.Equal(t, 1, counts[export.SheetReportInformation])
	assert.Equal(t, 2, counts[export.SheetAccounts])
	assert.Equal(t, 3, counts[export.SheetPaymentStatus], "history-less account still takes one row")
	assert.Equal(t, 1, counts[export.SheetAddresses])
}
