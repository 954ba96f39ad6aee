package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type DocumentType string

const (
	DocTypeEmployment       DocumentType = "employment-income"
	DocTypeEmploymentQuebec DocumentType = "employment-income-quebec"
	DocTypeInvestment       DocumentType = "investment-income"
	DocTypeTuition          DocumentType = "tuition"
	DocTypeRetirement       DocumentType = "retirement-contribution"
	DocTypeMedical          DocumentType = "medical-expense"
	DocTypeDonation         DocumentType = "donation"
	DocTypeBusinessExpense  DocumentType = "business-expense"
	DocTypeOther            DocumentType = "other"
)

// DocumentTypes lists every document type in classification priority order.
var DocumentTypes = []DocumentType{
	DocTypeEmploymentQuebec,
	DocTypeEmployment,
	DocTypeInvestment,
	DocTypeTuition,
	DocTypeRetirement,
	DocTypeMedical,
	DocTypeDonation,
	DocTypeBusinessExpense,
	DocTypeOther,
}

// Valid reports whether t is one of the closed set of document types.
func (t DocumentType) Valid() bool {
	for _, known := range DocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParsedDocument is the structured result of interpreting one uploaded file.
type ParsedDocument struct {
	ID          string       `json:"id"`
	Type        DocumentType `json:"type"`
	FileName    string       `json:"file_name"`
	UploadDate  time.Time    `json:"upload_date"`
	Data        SlipData     `json:"data"`
	Confidence  int          `json:"confidence"`
	NeedsReview bool         `json:"needs_review"`
	AdminNotes  string       `json:"admin_notes,omitempty"`
}

type parsedDocumentJSON struct {
	ID          string          `json:"id"`
	Type        DocumentType    `json:"type"`
	FileName    string          `json:"file_name"`
	UploadDate  time.Time       `json:"upload_date"`
	Data        json.RawMessage `json:"data"`
	Confidence  int             `json:"confidence"`
	NeedsReview bool            `json:"needs_review"`
	AdminNotes  string          `json:"admin_notes,omitempty"`
}

// UnmarshalJSON decodes Data into the variant selected by Type.
func (d *ParsedDocument) UnmarshalJSON(b []byte) error {
	var raw parsedDocumentJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	data, err := DecodeSlipData(raw.Type, raw.Data)
	if err != nil {
		return err
	}

	*d = ParsedDocument{
		ID:          raw.ID,
		Type:        raw.Type,
		FileName:    raw.FileName,
		UploadDate:  raw.UploadDate,
		Data:        data,
		Confidence:  raw.Confidence,
		NeedsReview: raw.NeedsReview,
		AdminNotes:  raw.AdminNotes,
	}
	return nil
}

// DecodeSlipData decodes a JSON data record into the variant for docType.
// An empty or null payload yields an empty record of the right variant;
// fields that belong to another variant are rejected.
func DecodeSlipData(docType DocumentType, payload []byte) (SlipData, error) {
	data := NewSlipData(docType)
	if data == nil {
		return nil, fmt.Errorf("unknown document type %q", docType)
	}
	if len(payload) == 0 || string(payload) == "null" {
		return data, nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(data); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", docType, err)
	}
	return data, nil
}

// TaxpayerProfile carries the non-document inputs of a return calculation.
type TaxpayerProfile struct {
	TaxpayerID       string        `json:"taxpayer_id"`
	Name             string        `json:"name,omitempty"`
	SIN              string        `json:"sin,omitempty"`
	Province         string        `json:"province"`
	MaritalStatus    MaritalStatus `json:"marital_status"`
	NumberOfChildren int           `json:"number_of_children"`
	ChildrenUnder6   int           `json:"children_under_6"`
	Year             int           `json:"year"`
}

type MaritalStatus string

const (
	MaritalSingle    MaritalStatus = "single"
	MaritalMarried   MaritalStatus = "married"
	MaritalCommonLaw MaritalStatus = "common-law"
	MaritalSeparated MaritalStatus = "separated"
	MaritalDivorced  MaritalStatus = "divorced"
	MaritalWidowed   MaritalStatus = "widowed"
)

func (m MaritalStatus) Valid() bool {
	switch m {
	case MaritalSingle, MaritalMarried, MaritalCommonLaw, MaritalSeparated, MaritalDivorced, MaritalWidowed:
		return true
	}
	return false
}

type ReturnStatus string

const (
	StatusDraft          ReturnStatus = "draft"
	StatusReadyForReview ReturnStatus = "ready-for-review"
	StatusApproved       ReturnStatus = "approved"
	StatusFiled          ReturnStatus = "filed"
)

type PersonalInfo struct {
	Name          string        `json:"name"`
	SIN           string        `json:"sin"`
	Province      string        `json:"province"`
	MaritalStatus MaritalStatus `json:"marital_status"`
}

type IncomeSummary struct {
	EmploymentIncome     float64 `json:"employment_income"`
	InvestmentIncome     float64 `json:"investment_income"`
	SelfEmploymentIncome float64 `json:"self_employment_income"`
	OtherIncome          float64 `json:"other_income"`
	TotalIncome          float64 `json:"total_income"`
}

type DeductionSummary struct {
	RetirementContributions float64 `json:"retirement_contributions"`
	UnionDues               float64 `json:"union_dues"`
	ChildCareExpenses       float64 `json:"child_care_expenses"`
	MovingExpenses          float64 `json:"moving_expenses"`
	TotalDeductions         float64 `json:"total_deductions"`
}

type CreditSummary struct {
	BasicPersonalAmount float64 `json:"basic_personal_amount"`
	EmploymentAmount    float64 `json:"employment_amount"`
	TuitionTransfer     float64 `json:"tuition_transfer"`
	MedicalExpenses     float64 `json:"medical_expenses"`
	Donations           float64 `json:"donations"`
	Contributions       float64 `json:"contributions"`
	TotalCredits        float64 `json:"total_credits"`
}

// JurisdictionTax is one jurisdiction's computation. RefundOrOwing is
// payable minus withheld: negative is a refund, positive is owing.
type JurisdictionTax struct {
	TaxableIncome   float64 `json:"taxable_income"`
	TaxBeforeCredit float64 `json:"tax_before_credits"`
	CreditsApplied  float64 `json:"credits_applied"`
	TaxPayable      float64 `json:"tax_payable"`
	TaxWithheld     float64 `json:"tax_withheld"`
	RefundOrOwing   float64 `json:"refund_or_owing"`
}

type TaxReturnPreview struct {
	TaxpayerID         string           `json:"taxpayer_id"`
	Year               int              `json:"year"`
	PersonalInfo       PersonalInfo     `json:"personal_info"`
	Income             IncomeSummary    `json:"income"`
	Deductions         DeductionSummary `json:"deductions"`
	Credits            CreditSummary    `json:"credits"`
	FederalTax         JurisdictionTax  `json:"federal_tax"`
	ProvincialTax      JurisdictionTax  `json:"provincial_tax"`
	TotalRefundOrOwing float64          `json:"total_refund_or_owing"`
	Status             ReturnStatus     `json:"status"`
}
