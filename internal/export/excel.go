// Package export renders a finished report record as a multi-sheet XLSX
// workbook. Sheets for empty collections are omitted entirely; the Payment
// Status sheet always carries at least one row per account so an account
// with no history is still visible.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/creditdesk/cibil-extract/internal/model"
)

// Sheet titles, also used by the integrity checker's expected-count table.
const (
	SheetReportInformation     = "Report Information"
	SheetPersonalInformation   = "Personal Information"
	SheetIdentificationDetails = "Identification Details"
	SheetAddresses             = "Addresses"
	SheetTelephones            = "Telephones"
	SheetEmails                = "Emails"
	SheetEmployment            = "Employment"
	SheetAccounts              = "Accounts"
	SheetPaymentStatus         = "Payment Status"
	SheetEnquiries             = "Enquiries"
	SheetAdditionalInformation = "Additional Information"
)

// Workbook builds the workbook for a report. The caller decides whether to
// save it or inspect it in memory.
func Workbook(rep *model.ExtractedReport) (*xlsx.File, error) {
	f := xlsx.NewFile()

	builders := []func(*xlsx.File, *model.ExtractedReport) error{
		addReportInformation,
		addPersonalInformation,
		addIdentifications,
		addAddresses,
		addTelephones,
		addEmails,
		addEmployment,
		addAccounts,
		addPaymentStatus,
		addEnquiries,
		addAdditionalInformation,
	}
	for _, build := range builders {
		if err := build(f, rep); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// WriteFile renders the workbook and saves it at path.
func WriteFile(rep *model.ExtractedReport, path string) error {
	f, err := Workbook(rep)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func addSheet(f *xlsx.File, title string, rows [][]string) error {
	sheet, err := f.AddSheet(title)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %q", title)
	}
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, value := range rowData {
			row.AddCell().SetString(value)
		}
	}
	return nil
}

func addReportInformation(f *xlsx.File, rep *model.ExtractedReport) error {
	info := rep.ReportInformation
	return addSheet(f, SheetReportInformation, [][]string{
		{"Score", "Report Date", "Control Number"},
		{info.Score, info.ReportDate, info.ControlNumber},
	})
}

func addPersonalInformation(f *xlsx.File, rep *model.ExtractedReport) error {
	personal := rep.PersonalInformation
	return addSheet(f, SheetPersonalInformation, [][]string{
		{"Name", "Date of Birth", "Gender"},
		{personal.Name, personal.DateOfBirth, personal.Gender},
	})
}

func addIdentifications(f *xlsx.File, rep *model.ExtractedReport) error {
	ids := rep.IDAndContactInfo.Identifications
	if len(ids) == 0 {
		return nil
	}
	rows := [][]string{{"Sequence", "Identification Type", "ID Number", "Issue Date", "Expiry Date"}}
	for _, id := range ids {
		rows = append(rows, []string{id.Sequence, id.IdentificationType, id.IDNumber, id.IssueDate, id.ExpiryDate})
	}
	return addSheet(f, SheetIdentificationDetails, rows)
}

func addAddresses(f *xlsx.File, rep *model.ExtractedReport) error {
	addresses := rep.IDAndContactInfo.ContactInformation.Addresses
	if len(addresses) == 0 {
		return nil
	}
	rows := [][]string{{"Sequence", "Address", "Type", "Residence Code", "Date Reported"}}
	for _, addr := range addresses {
		rows = append(rows, []string{addr.Sequence, addr.Address, addr.Type, addr.ResidenceCode, addr.DateReported})
	}
	return addSheet(f, SheetAddresses, rows)
}

func addTelephones(f *xlsx.File, rep *model.ExtractedReport) error {
	telephones := rep.IDAndContactInfo.ContactInformation.Telephones
	if len(telephones) == 0 {
		return nil
	}
	rows := [][]string{{"Sequence", "Telephone Number Type", "Telephone Number", "Telephone Extension"}}
	for _, tel := range telephones {
		rows = append(rows, []string{tel.Sequence, tel.Type, tel.Number, tel.Extension})
	}
	return addSheet(f, SheetTelephones, rows)
}

func addEmails(f *xlsx.File, rep *model.ExtractedReport) error {
	emails := rep.IDAndContactInfo.ContactInformation.Emails
	if len(emails) == 0 {
		return nil
	}
	rows := [][]string{{"Sequence", "Email Address"}}
	for _, email := range emails {
		rows = append(rows, []string{email.Sequence, email.EmailAddress})
	}
	return addSheet(f, SheetEmails, rows)
}

func addEmployment(f *xlsx.File, rep *model.ExtractedReport) error {
	emp := rep.EmploymentInformation
	return addSheet(f, SheetEmployment, [][]string{
		{"Account Type", "Date Reported", "Occupation", "Income", "Monthly / Annual Income Indicator", "Net / Gross Income Indicator"},
		{emp.AccountType, emp.DateReported, emp.Occupation, emp.Income, emp.MonthlyAnnualIncomeIndicator, emp.NetGrossIncomeIndicator},
	})
}

func addAccounts(f *xlsx.File, rep *model.ExtractedReport) error {
	if len(rep.Accounts) == 0 {
		return nil
	}
	rows := [][]string{{
		"Sequence", "Member Name", "Account Type", "Account Number", "Ownership type", "Credit Limit",
		"High Credit", "Sanctioned Amount", "Current Balance", "Cash Limit", "Amount Overdue", "Rate of Interest",
		"Repayment Tenure", "EMI Amount", "Payment Frequency", "Actual Payment Amount", "Date Opened", "Date Closed",
		"Last Payment Date", "Date Reported And Certified", "Value of Collateral", "Type of Collateral",
		"Suit - Filed / Willful Default", "Credit Facility Status", "Written-off Amount (Total)",
		"Written-off Amount (Principal)", "Settlement Amount", "Payment Start Date", "Payment End Date",
	}}
	for _, acc := range rep.Accounts {
		rows = append(rows, []string{
			acc.Sequence, acc.MemberName, acc.AccountType, acc.AccountNumber, acc.OwnershipType, acc.CreditLimit,
			acc.HighCredit, acc.SanctionedAmount, acc.CurrentBalance, acc.CashLimit, acc.AmountOverdue, acc.RateOfInterest,
			acc.RepaymentTenure, acc.EmiAmount, acc.PaymentFrequency, acc.ActualPaymentAmount, acc.DateOpened, acc.DateClosed,
			acc.LastPaymentDate, acc.DateReportedAndCertified, acc.ValueOfCollateral, acc.TypeOfCollateral,
			acc.SuitFiledWillfulDefault, acc.CreditFacilityStatus, acc.WrittenOffAmountTotal,
			acc.WrittenOffAmountPrincipal, acc.SettlementAmount, acc.PaymentStartDate, acc.PaymentEndDate,
		})
	}
	return addSheet(f, SheetAccounts, rows)
}

func addPaymentStatus(f *xlsx.File, rep *model.ExtractedReport) error {
	if len(rep.Accounts) == 0 {
		return nil
	}
	rows := [][]string{{
		"Account Sequence", "Member Name", "Account Number", "Payment Start Date", "Payment End Date",
		"Month", "Year", "DPD",
	}}
	for _, acc := range rep.Accounts {
		if len(acc.PaymentHistory) == 0 {
			rows = append(rows, []string{
				acc.Sequence, acc.MemberName, acc.AccountNumber, acc.PaymentStartDate, acc.PaymentEndDate,
				model.NA, model.NA, model.NA,
			})
			continue
		}
		for _, entry := range acc.PaymentHistory {
			rows = append(rows, []string{
				acc.Sequence, acc.MemberName, acc.AccountNumber, acc.PaymentStartDate, acc.PaymentEndDate,
				entry.Month, entry.Year, entry.DaysPastDue,
			})
		}
	}
	return addSheet(f, SheetPaymentStatus, rows)
}

func addEnquiries(f *xlsx.File, rep *model.ExtractedReport) error {
	if len(rep.Enquiries) == 0 {
		return nil
	}
	rows := [][]string{{"Sequence", "Member Name", "Date of Enquiry", "Enquiry Purpose"}}
	for _, enq := range rep.Enquiries {
		rows = append(rows, []string{enq.Sequence, enq.MemberName, enq.DateOfEnquiry, enq.EnquiryPurpose})
	}
	return addSheet(f, SheetEnquiries, rows)
}

func addAdditionalInformation(f *xlsx.File, rep *model.ExtractedReport) error {
	if len(rep.AdditionalInformation) == 0 {
		return nil
	}
	rows := [][]string{{"Sequence", "Label", "Value"}}
	for _, info := range rep.AdditionalInformation {
		rows = append(rows, []string{info.Sequence, info.Label, info.Value})
	}
	return addSheet(f, SheetAdditionalInformation, rows)
}
