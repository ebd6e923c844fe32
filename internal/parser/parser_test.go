package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditdesk/cibil-extract/internal/model"
)

var sampleReportText = strings.Join([]string{
	"Hello, RAHUL SHARMA",
	"Your CIBIL Score is 756",
	"Control Number: 1,234,567",
	"Date: 15/01/2023",
	"PERSONAL DETAILS",
	"NAME",
	"RAHUL SHARMA",
	"Date Of Birth 01/01/1990",
	"Gender Male",
	"IDENTIFICATION DETAILS",
	"Identification Type",
	"Income Tax ID Number (PAN)",
	"ID Number",
	"ABCDE1234F",
	"ADDRESS DETAILS",
	"Address",
	"123 MG Road",
	"Bengaluru 560001",
	"Category",
	"Permanent Address",
	"Residence Code",
	"Owned",
	"Date Reported",
	"15/01/2023",
	"CONTACT DETAILS",
	"Telephone Number Type",
	"Mobile Phone",
	"Telephone Number",
	"9876543210",
	"EMAIL DETAILS",
	"Email ID",
	"rahul@example.com",
	"EMPLOYMENT DETAILS",
	"Account Type",
	"Personal Loan",
	"Occupation",
	"Salaried",
	"Income",
	"50000",
	"Monthly / Annual Income Indicator",
	"Monthly Net",
	"ALL ACCOUNTS",
	"Member Name",
	"HDFC BANK",
	"Account Type",
	"Credit Card",
	"Account Number",
	"4111XXXX1111",
	"Ownership",
	"Individual",
	"Current Balance",
	"₹12,345",
	"Amount Overdue",
	"1,500",
	"Date Opened / Disbursed",
	"01/06/2018",
	"PAYMENT STATUS",
	"Payment History",
	"Jan 2023 0",
	"Feb 2023 30",
	"Mar 2023 STD",
	"ENQUIRY DETAILS",
	"Member Name",
	"AXIS BANK",
	"Date Of Enquiry",
	"10/12/2022",
	"Enquiry Purpose",
	"Credit Card",
}, "\n")

func TestParse_FullReport(t *testing.T) {
	rep := Parse(sampleReportText, "")

	assert.Equal(t, "756", rep.ReportInformation.Score)
	assert.Equal(t, "15/01/2023", rep.ReportInformation.ReportDate)
	assert.Equal(t, "1234567", rep.ReportInformation.ControlNumber)

	assert.Equal(t, "RAHUL SHARMA", rep.PersonalInformation.Name)
	assert.Equal(t, "01/01/1990", rep.PersonalInformation.DateOfBirth)
	assert.Equal(t, "Male", rep.PersonalInformation.Gender)

	require.Len(t, rep.IDAndContactInfo.Identifications, 1)
	id := rep.IDAndContactInfo.Identifications[0]
	assert.Equal(t, "Income Tax ID Number (PAN)", id.IdentificationType)
	assert.Equal(t, "ABCDE1234F", id.IDNumber)

	require.Len(t, rep.IDAndContactInfo.ContactInformation.Addresses, 1)
	addr := rep.IDAndContactInfo.ContactInformation.Addresses[0]
	assert.Equal(t, "123 MG Road Bengaluru 560001", addr.Address)
	assert.Equal(t, "Permanent Address", addr.Type)
	assert.Equal(t, "Owned", addr.ResidenceCode)
	assert.Equal(t, "15/01/2023", addr.DateReported)

	require.Len(t, rep.IDAndContactInfo.ContactInformation.Telephones, 1)
	phone := rep.IDAndContactInfo.ContactInformation.Telephones[0]
	assert.Equal(t, "9876543210", phone.Number)
	assert.Equal(t, "Mobile Phone", phone.Type)

	require.Len(t, rep.IDAndContactInfo.ContactInformation.Emails, 1)
	assert.Equal(t, "rahul@example.com", rep.IDAndContactInfo.ContactInformation.Emails[0].EmailAddress)

	assert.Equal(t, "Personal Loan", rep.EmploymentInformation.AccountType)
	assert.Equal(t, "Salaried", rep.EmploymentInformation.Occupation)
	assert.Equal(t, "50000", rep.EmploymentInformation.Income)
	assert.Equal(t, "Monthly", rep.EmploymentInformation.MonthlyAnnualIncomeIndicator)
	assert.Equal(t, "Net", rep.EmploymentInformation.NetGrossIncomeIndicator)

	require.Len(t, rep.Accounts, 1)
	acc := rep.Accounts[0]
	assert.Equal(t, "1", acc.Sequence)
	assert.Equal(t, "HDFC BANK", acc.MemberName)
	assert.Equal(t, "Credit Card", acc.AccountType)
	assert.Equal(t, "4111XXXX1111", acc.AccountNumber)
	assert.Equal(t, "Individual", acc.OwnershipType)
	assert.Equal(t, "12345", acc.CurrentBalance)
	assert.Equal(t, "1500", acc.AmountOverdue)
	assert.Equal(t, "01/06/2018", acc.DateOpened)

	require.Len(t, acc.PaymentHistory, 3)
	assert.Equal(t, model.PaymentEntry{Month: "Jan", Year: "2023", DaysPastDue: "0"}, acc.PaymentHistory[0])
	assert.Equal(t, model.PaymentEntry{Month: "Feb", Year: "2023", DaysPastDue: "30"}, acc.PaymentHistory[1])
	assert.Equal(t, model.PaymentEntry{Month: "Mar", Year: "2023", DaysPastDue: "STD"}, acc.PaymentHistory[2])

	require.Len(t, rep.Enquiries, 1)
	enq := rep.Enquiries[0]
	assert.Equal(t, "AXIS BANK", enq.MemberName)
	assert.Equal(t, "10/12/2022", enq.DateOfEnquiry)
	assert.Equal(t, "Credit Card", enq.EnquiryPurpose)
}

func TestParse_EmptyText(t *testing.T) {
	rep := Parse("", "")

	assert.Equal(t, model.NA, rep.ReportInformation.Score)
	assert.Equal(t, model.NA, rep.ReportInformation.ControlNumber)
	assert.Equal(t, model.NA, rep.PersonalInformation.Name)
	assert.Empty(t, rep.Accounts)
	assert.Empty(t, rep.Enquiries)
}

func TestParse_HeaderTextPreferredForControlNumber(t *testing.T) {
	body := "Control Number: 999"
	header := "Control Number: 111"

	rep := Parse(body, header)
	assert.Equal(t, "111", rep.ReportInformation.ControlNumber)
}

func TestExtractScore_FallbackNearSentence(t *testing.T) {
	lines := []string{
		"Your CIBIL Score is",
		"300 900",
		"742",
	}
	assert.Equal(t, "742", extractScore(lines, nil))
}

func TestExtractScore_ScaleMarkersNeverCount(t *testing.T) {
	lines := []string{"300 900", "300", "900"}
	assert.Equal(t, model.NA, extractScore(lines, nil))
}

func TestExtractScore_StandaloneWithinWindow(t *testing.T) {
	lines := []string{"some header", "651", "more text"}
	assert.Equal(t, "651", extractScore(lines, nil))
}

func TestParse_PANFallbackWhenNoIdentificationSection(t *testing.T) {
	text := strings.Join([]string{
		"Hello, RAHUL SHARMA",
		"Your CIBIL Score is 756",
		"PAN ABCDE1234F somewhere in the body",
	}, "\n")

	rep := Parse(text, "")
	require.Len(t, rep.IDAndContactInfo.Identifications, 1)
	id := rep.IDAndContactInfo.Identifications[0]
	assert.Equal(t, "Income Tax ID Number (PAN)", id.IdentificationType)
	assert.Equal(t, "ABCDE1234F", id.IDNumber)
	assert.Equal(t, "1", id.Sequence)
}

func TestExtractName_LabelFallback(t *testing.T) {
	lines := []string{"NAME", "PRIYA PATEL"}
	assert.Equal(t, "PRIYA PATEL", extractName(lines))
}

func TestCleanLines_IsolatesGluedMarkers(t *testing.T) {
	lines := cleanLines("some text ADDRESS DETAILS more text")
	assert.Equal(t, []string{"some text", "ADDRESS DETAILS", "more text"}, lines)
}

func TestCleanLines_DropsWatermarks(t *testing.T) {
	lines := cleanLines("real line\nhttps://myscore.cibil.com/page\nanother line")
	assert.Equal(t, []string{"real line", "another line"}, lines)
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"value", "value"},
		{"  padded  ", "padded"},
		{"", model.NA},
		{"-", model.NA},
		{"--", model.NA},
		{"NA", model.NA},
		{"na", model.NA},
		{"- - -", model.NA},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeValue(tt.in), "input %q", tt.in)
	}
}

func TestLooksLikeLabel(t *testing.T) {
	assert.True(t, LooksLikeLabel("Member Name"))
	assert.True(t, LooksLikeLabel("amount overdue"))
	assert.False(t, LooksLikeLabel("HDFC BANK"))
	assert.False(t, LooksLikeLabel("4111XXXX1111"))
}
