// Package model defines the structured credit report record produced by the
// extraction pipeline.
package model

// NA is the sentinel used system-wide for absent or invalidated values.
// Every scalar field in a finished report is either a well-formed value or
// exactly this string, never empty and never a dash run.
const NA = "N/A"

// StoredReport is the full persisted payload for one upload: the inquiry
// envelope plus the extracted record.
type StoredReport struct {
	InquiryRequestInfo InquiryRequestInfo `json:"InquiryRequestInfo"`
	InputResponse      ExtractedReport    `json:"InputResponse"`
}

// InquiryRequestInfo identifies who requested the extraction.
type InquiryRequestInfo struct {
	UserID string `json:"UserId"`
}

// ExtractedReport is the structured record recovered from one CIBIL report.
type ExtractedReport struct {
	ReportInformation     ReportInformation     `json:"ReportInformation"`
	PersonalInformation   PersonalInformation   `json:"PersonalInformation"`
	IDAndContactInfo      IDAndContactInfo      `json:"IDAndContactInfo"`
	EmploymentInformation EmploymentInformation `json:"EmploymentInformation"`
	Accounts              []Account             `json:"Accounts"`
	Enquiries             []Enquiry             `json:"Enquiries"`
	AdditionalInformation []AdditionalInfo      `json:"AdditionalInformation"`
	Warnings              []string              `json:"Warnings"`
}

// ReportInformation holds the report-level header fields.
type ReportInformation struct {
	Score         string `json:"Score"`
	ReportDate    string `json:"ReportDate"`
	ControlNumber string `json:"ControlNumber"`
}

// PersonalInformation holds the consumer's identity fields.
type PersonalInformation struct {
	Name        string `json:"Name"`
	DateOfBirth string `json:"DateOfBirth"`
	Gender      string `json:"Gender"`
}

// IDAndContactInfo groups identification documents and contact details.
type IDAndContactInfo struct {
	Identifications    []Identification   `json:"Identifications"`
	ContactInformation ContactInformation `json:"ContactInformation"`
}

// Identification is one identity document (PAN, passport, voter ID, ...).
type Identification struct {
	Sequence           string `json:"Sequence"`
	IdentificationType string `json:"IdentificationType"`
	IDNumber           string `json:"IdNumber"`
	IssueDate          string `json:"IssueDate"`
	ExpiryDate         string `json:"ExpiryDate"`
}

// ContactInformation groups addresses, telephones and emails.
type ContactInformation struct {
	Addresses  []Address   `json:"Addresses"`
	Telephones []Telephone `json:"Telephones"`
	Emails     []Email     `json:"Emails"`
}

// Address is one reported address with its category and reporting date.
type Address struct {
	Sequence      string `json:"Sequence"`
	Address       string `json:"Address"`
	Type          string `json:"Type"`
	ResidenceCode string `json:"ResidenceCode"`
	DateReported  string `json:"DateReported"`
}

// Telephone is one reported phone number.
type Telephone struct {
	Sequence  string `json:"Sequence"`
	Number    string `json:"Number"`
	Type      string `json:"Type"`
	Extension string `json:"Extension"`
}

// Email is one reported email address.
type Email struct {
	Sequence     string `json:"Sequence"`
	EmailAddress string `json:"EmailAddress"`
}

// EmploymentInformation holds the single employment block reported by CIBIL.
type EmploymentInformation struct {
	AccountType                  string `json:"AccountType"`
	DateReported                 string `json:"DateReported"`
	Occupation                   string `json:"Occupation"`
	Income                       string `json:"Income"`
	MonthlyAnnualIncomeIndicator string `json:"MonthlyAnnualIncomeIndicator"`
	NetGrossIncomeIndicator      string `json:"NetGrossIncomeIndicator"`
}

// Account is one credit facility with its 48-month payment history.
type Account struct {
	Sequence                  string         `json:"Sequence"`
	MemberName                string         `json:"MemberName"`
	AccountType               string         `json:"AccountType"`
	AccountNumber             string         `json:"AccountNumber"`
	OwnershipType             string         `json:"OwnershipType"`
	DateOpened                string         `json:"DateOpened"`
	DateClosed                string         `json:"DateClosed"`
	LastPaymentDate           string         `json:"LastPaymentDate"`
	DateReportedAndCertified  string         `json:"DateReportedAndCertified"`
	CreditLimit               string         `json:"CreditLimit"`
	CashLimit                 string         `json:"CashLimit"`
	HighCredit                string         `json:"HighCredit"`
	SanctionedAmount          string         `json:"SanctionedAmount"`
	CurrentBalance            string         `json:"CurrentBalance"`
	AmountOverdue             string         `json:"AmountOverdue"`
	EmiAmount                 string         `json:"EmiAmount"`
	ActualPaymentAmount       string         `json:"ActualPaymentAmount"`
	RateOfInterest            string         `json:"RateOfInterest"`
	PaymentFrequency          string         `json:"PaymentFrequency"`
	PaymentStartDate          string         `json:"PaymentStartDate"`
	PaymentEndDate            string         `json:"PaymentEndDate"`
	RepaymentTenure           string         `json:"RepaymentTenure"`
	ValueOfCollateral         string         `json:"ValueOfCollateral"`
	TypeOfCollateral          string         `json:"TypeOfCollateral"`
	CreditFacilityStatus      string         `json:"CreditFacilityStatus"`
	SuitFiledWillfulDefault   string         `json:"SuitFiledWillfulDefault"`
	WrittenOffAmountTotal     string         `json:"WrittenOffAmountTotal"`
	WrittenOffAmountPrincipal string         `json:"WrittenOffAmountPrincipal"`
	SettlementAmount          string         `json:"SettlementAmount"`
	PaymentHistory            []PaymentEntry `json:"PaymentHistory"`
}

// PaymentEntry is one month of payment history. DaysPastDue is either a
// numeric string, an asset-classification token (STD/XXX/DBT/SMA/SUB/LSS),
// or the sentinel.
type PaymentEntry struct {
	Month       string `json:"Month"`
	Year        string `json:"Year"`
	DaysPastDue string `json:"DaysPastDue"`
}

// Enquiry is one credit enquiry made against the consumer.
type Enquiry struct {
	Sequence       string `json:"Sequence"`
	MemberName     string `json:"MemberName"`
	DateOfEnquiry  string `json:"DateOfEnquiry"`
	EnquiryPurpose string `json:"EnquiryPurpose"`
}

// AdditionalInfo is one free-text note (NH-score reason, disclaimer block).
type AdditionalInfo struct {
	Sequence string `json:"Sequence"`
	Label    string `json:"Label"`
	Value    string `json:"Value"`
}

// NewReport returns an ExtractedReport with every scalar field set to the
// sentinel and empty collections.
func NewReport() *ExtractedReport {
	return &ExtractedReport{
		ReportInformation:     ReportInformation{Score: NA, ReportDate: NA, ControlNumber: NA},
		PersonalInformation:   PersonalInformation{Name: NA, DateOfBirth: NA, Gender: NA},
		EmploymentInformation: NewEmployment(),
	}
}

// NewEmployment returns an EmploymentInformation with all fields sentineled.
func NewEmployment() EmploymentInformation {
	return EmploymentInformation{
		AccountType:                  NA,
		DateReported:                 NA,
		Occupation:                   NA,
		Income:                       NA,
		MonthlyAnnualIncomeIndicator: NA,
		NetGrossIncomeIndicator:      NA,
	}
}

// NewAccount returns an Account with every scalar field sentineled.
func NewAccount() *Account {
	return &Account{
		MemberName:                NA,
		AccountType:               NA,
		AccountNumber:             NA,
		OwnershipType:             NA,
		DateOpened:                NA,
		DateClosed:                NA,
		LastPaymentDate:           NA,
		DateReportedAndCertified:  NA,
		CreditLimit:               NA,
		CashLimit:                 NA,
		HighCredit:                NA,
		SanctionedAmount:          NA,
		CurrentBalance:            NA,
		AmountOverdue:             NA,
		EmiAmount:                 NA,
		ActualPaymentAmount:       NA,
		RateOfInterest:            NA,
		PaymentFrequency:          NA,
		PaymentStartDate:          NA,
		PaymentEndDate:            NA,
		RepaymentTenure:           NA,
		ValueOfCollateral:         NA,
		TypeOfCollateral:          NA,
		CreditFacilityStatus:      NA,
		SuitFiledWillfulDefault:   NA,
		WrittenOffAmountTotal:     NA,
		WrittenOffAmountPrincipal: NA,
		SettlementAmount:          NA,
	}
}

// HasData reports whether an account captured at least one of the fields
// that justify committing it to the output list.
func (a *Account) HasData() bool {
	return a.MemberName != NA || a.AccountNumber != NA || a.AccountType != NA
}

// AmountFields lists the account fields holding monetary values, in the
// order they are validated and exported.
var AmountFields = []string{
	"CreditLimit",
	"CashLimit",
	"HighCredit",
	"SanctionedAmount",
	"CurrentBalance",
	"AmountOverdue",
	"EmiAmount",
	"ActualPaymentAmount",
	"ValueOfCollateral",
	"WrittenOffAmountTotal",
	"WrittenOffAmountPrincipal",
	"SettlementAmount",
}

// DateFields lists the account fields holding dd/mm/yyyy dates.
var DateFields = []string{
	"DateOpened",
	"DateClosed",
	"LastPaymentDate",
	"DateReportedAndCertified",
	"PaymentStartDate",
	"PaymentEndDate",
}

// AmountField returns a pointer to the named monetary field, or nil.
func (a *Account) AmountField(name string) *string {
	switch name {
	case "CreditLimit":
		return &a.CreditLimit
	case "CashLimit":
		return &a.CashLimit
	case "HighCredit":
		return &a.HighCredit
	case "SanctionedAmount":
		return &a.SanctionedAmount
	case "CurrentBalance":
		return &a.CurrentBalance
	case "AmountOverdue":
		return &a.AmountOverdue
	case "EmiAmount":
		return &a.EmiAmount
	case "ActualPaymentAmount":
		return &a.ActualPaymentAmount
	case "ValueOfCollateral":
		return &a.ValueOfCollateral
	case "WrittenOffAmountTotal":
		return &a.WrittenOffAmountTotal
	case "WrittenOffAmountPrincipal":
		return &a.WrittenOffAmountPrincipal
	case "SettlementAmount":
		return &a.SettlementAmount
	}
	return nil
}

// DateField returns a pointer to the named date field, or nil.
func (a *Account) DateField(name string) *string {
	switch name {
	case "DateOpened":
		return &a.DateOpened
	case "DateClosed":
		return &a.DateClosed
	case "LastPaymentDate":
		return &a.LastPaymentDate
	case "DateReportedAndCertified":
		return &a.DateReportedAndCertified
	case "PaymentStartDate":
		return &a.PaymentStartDate
	case "PaymentEndDate":
		return &a.PaymentEndDate
	}
	return nil
}
