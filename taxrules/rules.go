// Package taxrules holds the versioned federal and provincial income tax
// tables used by the calculation engine. Tables are plain YAML data, one file
// per tax year, so a new year is a data change rather than a code release.
package taxrules

import "sort"

type SalesTaxType string

const (
	SalesTaxHST    SalesTaxType = "HST"
	SalesTaxGSTPST SalesTaxType = "GST+PST"
	SalesTaxGSTQST SalesTaxType = "GST+QST"
	SalesTaxGST    SalesTaxType = "GST"
)

// SalesTax describes a province's consumption tax. It is not used by the
// income tax computation.
type SalesTax struct {
	Type SalesTaxType `yaml:"type" json:"type"`
	GST  float64      `yaml:"gst,omitempty" json:"gst,omitempty"`
	PST  float64      `yaml:"pst,omitempty" json:"pst,omitempty"`
	HST  float64      `yaml:"hst,omitempty" json:"hst,omitempty"`
	QST  float64      `yaml:"qst,omitempty" json:"qst,omitempty"`
}

// Combined returns the total sales tax rate charged on a taxable purchase.
func (s SalesTax) Combined() float64 {
	if s.Type == SalesTaxHST {
		return s.HST
	}
	return s.GST + s.PST + s.QST
}

// Bracket applies Rate to income above Threshold, up to the next bracket.
type Bracket struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Rate      float64 `yaml:"rate" json:"rate"`
}

// Brackets is a progressive schedule ordered by increasing threshold.
type Brackets []Bracket

// LowestRate is the first bracket's rate.
func (b Brackets) LowestRate() float64 {
	if len(b) == 0 {
		return 0
	}
	return b[0].Rate
}

// MarginalRate returns the rate applying to the last dollar of income.
func (b Brackets) MarginalRate(income float64) float64 {
	i := sort.Search(len(b), func(i int) bool { return b[i].Threshold >= income })
	if i == 0 {
		return b.LowestRate()
	}
	return b[i-1].Rate
}

type FederalRules struct {
	Brackets            Brackets `yaml:"brackets" json:"brackets"`
	BasicPersonalAmount float64  `yaml:"basic_personal_amount" json:"basic_personal_amount"`
	CreditRate          float64  `yaml:"credit_rate" json:"credit_rate"`
	EmploymentAmount    float64  `yaml:"employment_amount" json:"employment_amount"`
	MedicalThreshold    float64  `yaml:"medical_threshold" json:"medical_threshold"`
	MedicalIncomeRate   float64  `yaml:"medical_income_rate" json:"medical_income_rate"`
	DonationLowLimit    float64  `yaml:"donation_low_limit" json:"donation_low_limit"`
	DonationHighRate    float64  `yaml:"donation_high_rate" json:"donation_high_rate"`
}

type ChildCareLimits struct {
	Under7 float64 `yaml:"limit_under_7" json:"limit_under_7"`
	Other  float64 `yaml:"limit_other" json:"limit_other"`
}

type ProvinceRules struct {
	Code                string   `yaml:"-" json:"-"`
	Name                string   `yaml:"name" json:"name"`
	SalesTax            SalesTax `yaml:"sales_tax" json:"sales_tax"`
	BasicPersonalAmount float64  `yaml:"basic_personal_amount" json:"basic_personal_amount"`
	CreditRate          float64  `yaml:"credit_rate" json:"credit_rate"`
	Brackets            Brackets `yaml:"brackets" json:"brackets"`
}

// Table is the complete rule set for one tax year.
type Table struct {
	Year      int                      `yaml:"year" json:"year"`
	Federal   FederalRules             `yaml:"federal" json:"federal"`
	ChildCare ChildCareLimits          `yaml:"child_care" json:"child_care"`
	Provinces map[string]ProvinceRules `yaml:"provinces" json:"provinces"`
}

// ProvinceCodes returns the table's province and territory codes, sorted.
func (t *Table) ProvinceCodes() []string {
	codes := make([]string, 0, len(t.Provinces))
	for code := range t.Provinces {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
