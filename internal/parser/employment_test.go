package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/creditdesk/cibil-extract/internal/model"
)

func TestExtractEmployment_CompoundAccountTypeDateReported(t *testing.T) {
	lines := []string{
		"EMPLOYMENT DETAILS",
		"Account Type Date Reported",
		"Personal Loan 15/01/2023",
		"ALL ACCOUNTS",
	}

	emp := extractEmployment(lines)
	assert.Equal(t, "Personal Loan", emp.AccountType)
	assert.Equal(t, "15/01/2023", emp.DateReported)
}

func TestExtractEmployment_CompoundOccupationIncome(t *testing.T) {
	lines := []string{
		"EMPLOYMENT DETAILS",
		"Occupation Income",
		"Self Employed 75000",
		"ALL ACCOUNTS",
	}

	emp := extractEmployment(lines)
	assert.Equal(t, "Self Employed", emp.Occupation)
	assert.Equal(t, "75000", emp.Income)
}

func TestExtractEmployment_CompoundIndicators(t *testing.T) {
	lines := []string{
		"EMPLOYMENT DETAILS",
		"Monthly / Annual Income Indicator Net / Gross Income Indicator",
		"Monthly Net",
		"ALL ACCOUNTS",
	}

	emp := extractEmployment(lines)
	assert.Equal(t, "Monthly", emp.MonthlyAnnualIncomeIndicator)
	assert.Equal(t, "Net", emp.NetGrossIncomeIndicator)
}

func TestExtractEmployment_SingleLabels(t *testing.T) {
	lines := []string{
		"EMPLOYMENT DETAILS",
		"Occupation",
		"Salaried",
		"Income",
		"50000",
		"ALL ACCOUNTS",
	}

	emp := extractEmployment(lines)
	assert.Equal(t, "Salaried", emp.Occupation)
	assert.Equal(t, "50000", emp.Income)
	assert.Equal(t, model.NA, emp.AccountType)
}

func TestExtractEmployment_NoSection(t *testing.T) {
	emp := extractEmployment([]string{"ALL ACCOUNTS", "Member Name", "HDFC BANK"})
	assert.Equal(t, model.NewEmployment(), emp)
}

func TestParseEmploymentIndicators(t *testing.T) {
	tests := []struct {
		in            string
		monthlyAnnual string
		netGross      string
	}{
		{"Monthly Net", "Monthly", "Net"},
		{"ANNUAL GROSS", "Annual", "Gross"},
		{"Monthly", "Monthly", ""},
		{"Gross", "", "Gross"},
		{"something else", "something else", ""},
	}
	for _, tt := range tests {
		monthlyAnnual, netGross := parseEmploymentIndicators(tt.in)
		assert.Equal(t, tt.monthlyAnnual, monthlyAnnual, "input %q", tt.in)
		assert.Equal(t, tt.netGross, netGross, "input %q", tt.in)
	}
}
