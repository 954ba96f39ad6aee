package dto

// SlipData is the type-specific record carried by a ParsedDocument.
// Exactly one implementation exists per DocumentType; every field is
// optional and nil means the value was not found in the text.
//
// Field tags named `slip` bind each struct field to a field extraction rule.
type SlipData interface {
	DocumentType() DocumentType
}

// NewSlipData returns an empty record of the variant for t, or nil when t is unknown.
func NewSlipData(t DocumentType) SlipData {
	switch t {
	case DocTypeEmployment:
		return &EmploymentData{}
	case DocTypeEmploymentQuebec:
		return &QuebecEmploymentData{}
	case DocTypeInvestment:
		return &InvestmentData{}
	case DocTypeTuition:
		return &TuitionData{}
	case DocTypeRetirement:
		return &RetirementData{}
	case DocTypeMedical:
		return &MedicalData{}
	case DocTypeDonation:
		return &DonationData{}
	case DocTypeBusinessExpense:
		return &BusinessExpenseData{}
	case DocTypeOther:
		return &OtherData{}
	}
	return nil
}

// EmploymentData is a federal statement of remuneration paid (T4).
type EmploymentData struct {
	EmployerName      *string  `json:"employer_name,omitempty" slip:"employer_name"`
	EmployerAccount   *string  `json:"employer_account,omitempty" slip:"employer_account"`
	EmployeeSIN       *string  `json:"employee_sin,omitempty" slip:"employee_sin"`
	EmploymentIncome  *float64 `json:"employment_income,omitempty" slip:"employment_income"`
	CPPContributions  *float64 `json:"cpp_contributions,omitempty" slip:"cpp_contributions"`
	EIPremiums        *float64 `json:"ei_premiums,omitempty" slip:"ei_premiums"`
	IncomeTaxWithheld *float64 `json:"income_tax_withheld,omitempty" slip:"income_tax_withheld"`
	PensionAdjustment *float64 `json:"pension_adjustment,omitempty" slip:"pension_adjustment"`
	UnionDues         *float64 `json:"union_dues,omitempty" slip:"union_dues"`
}

func (*EmploymentData) DocumentType() DocumentType { return DocTypeEmployment }

// QuebecEmploymentData is a Relevé 1 (employment and other income).
type QuebecEmploymentData struct {
	EmployerName          *string  `json:"employer_name,omitempty" slip:"employer_name"`
	EmployerNumber        *string  `json:"employer_number,omitempty" slip:"quebec_employer_number"`
	EmployeeSIN           *string  `json:"employee_sin,omitempty" slip:"employee_sin"`
	EmploymentIncome      *float64 `json:"employment_income,omitempty" slip:"quebec_employment_income"`
	QPPContributions      *float64 `json:"qpp_contributions,omitempty" slip:"qpp_contributions"`
	EIPremiums            *float64 `json:"ei_premiums,omitempty" slip:"quebec_ei_premiums"`
	QPIPPremiums          *float64 `json:"qpip_premiums,omitempty" slip:"qpip_premiums"`
	ProvincialTaxWithheld *float64 `json:"provincial_tax_withheld,omitempty" slip:"quebec_tax_withheld"`
}

func (*QuebecEmploymentData) DocumentType() DocumentType { return DocTypeEmploymentQuebec }

// InvestmentData is a statement of investment income (T5).
type InvestmentData struct {
	PayerName               *string  `json:"payer_name,omitempty" slip:"payer_name"`
	PayerID                 *string  `json:"payer_id,omitempty" slip:"payer_id"`
	RecipientID             *string  `json:"recipient_id,omitempty" slip:"recipient_sin"`
	ActualEligibleDividends *float64 `json:"actual_eligible_dividends,omitempty" slip:"actual_eligible_dividends"`
	TaxableDividends        *float64 `json:"taxable_dividends,omitempty" slip:"taxable_eligible_dividends"`
	InterestIncome          *float64 `json:"interest_income,omitempty" slip:"interest_income"`
	ForeignIncome           *float64 `json:"foreign_income,omitempty" slip:"foreign_income"`
}

func (*InvestmentData) DocumentType() DocumentType { return DocTypeInvestment }

// TuitionData is a tuition and enrolment certificate (T2202).
type TuitionData struct {
	InstitutionName *string  `json:"institution_name,omitempty" slip:"institution_name"`
	StudentNumber   *string  `json:"student_number,omitempty" slip:"student_number"`
	EligibleFees    *float64 `json:"eligible_fees,omitempty" slip:"eligible_tuition_fees"`
	PartTimeMonths  *int     `json:"part_time_months,omitempty" slip:"part_time_months"`
	FullTimeMonths  *int     `json:"full_time_months,omitempty" slip:"full_time_months"`
}

func (*TuitionData) DocumentType() DocumentType { return DocTypeTuition }

// RetirementData is an RRSP contribution receipt.
type RetirementData struct {
	InstitutionName    *string  `json:"institution_name,omitempty" slip:"rrsp_issuer"`
	ContributionAmount *float64 `json:"contribution_amount,omitempty" slip:"rrsp_contribution"`
	TaxYear            *int     `json:"tax_year,omitempty" slip:"tax_year"`
	ReceiptNumber      *string  `json:"receipt_number,omitempty" slip:"receipt_number"`
}

func (*RetirementData) DocumentType() DocumentType { return DocTypeRetirement }

type MedicalData struct {
	Provider    *string  `json:"provider,omitempty" slip:"medical_provider"`
	Amount      *float64 `json:"amount,omitempty" slip:"total_amount"`
	Date        *string  `json:"date,omitempty" slip:"date"`
	Description *string  `json:"description,omitempty" slip:"description"`
}

func (*MedicalData) DocumentType() DocumentType { return DocTypeMedical }

type DonationData struct {
	CharityName        *string  `json:"charity_name,omitempty" slip:"charity_name"`
	RegistrationNumber *string  `json:"registration_number,omitempty" slip:"charity_registration"`
	Amount             *float64 `json:"amount,omitempty" slip:"donation_amount"`
	Date               *string  `json:"date,omitempty" slip:"date"`
	Description        *string  `json:"description,omitempty" slip:"description"`
}

func (*DonationData) DocumentType() DocumentType { return DocTypeDonation }

type BusinessExpenseData struct {
	Vendor      *string  `json:"vendor,omitempty" slip:"vendor"`
	Category    *string  `json:"category,omitempty" slip:"expense_category"`
	Amount      *float64 `json:"amount,omitempty" slip:"total_amount"`
	Date        *string  `json:"date,omitempty" slip:"date"`
	Description *string  `json:"description,omitempty" slip:"description"`
}

func (*BusinessExpenseData) DocumentType() DocumentType { return DocTypeBusinessExpense }

// OtherData holds only an excerpt of the text of an unclassified document.
type OtherData struct {
	Excerpt string `json:"excerpt"`
}

func (*OtherData) DocumentType() DocumentType { return DocTypeOther }
