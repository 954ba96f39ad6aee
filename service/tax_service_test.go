package service

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/tax-slip-engine/dto"
	"github.com/Aashish23092/tax-slip-engine/taxrules"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func newTestTaxService(t *testing.T, opts ...TaxServiceOption) *TaxService {
	t.Helper()
	rules, err := taxrules.Default()
	require.NoError(t, err)
	return NewTaxService(rules, nil, opts...)
}

func profile(province string) dto.TaxpayerProfile {
	return dto.TaxpayerProfile{
		TaxpayerID:    "tp-1",
		Name:          "Jordan Tremblay",
		SIN:           "123 456 789",
		Province:      province,
		MaritalStatus: dto.MaritalSingle,
		Year:          2024,
	}
}

func doc(id string, data dto.SlipData) dto.ParsedDocument {
	return dto.ParsedDocument{ID: id, Type: data.DocumentType(), FileName: id + ".pdf", Data: data}
}

func t4(income, withheld float64) dto.ParsedDocument {
	return doc("t4", &dto.EmploymentData{
		EmploymentIncome:  f64(income),
		IncomeTaxWithheld: f64(withheld),
	})
}

func TestCalculateScenarioOntarioEmploymentSlip(t *testing.T) {
	s := newTestTaxService(t)

	preview, err := s.Calculate([]dto.ParsedDocument{t4(50000, 8000)}, profile("ON"))
	require.NoError(t, err)

	assert.Equal(t, 50000.0, preview.Income.EmploymentIncome)
	assert.Equal(t, 50000.0, preview.Income.TotalIncome)
	assert.Equal(t, dto.StatusDraft, preview.Status)
	assert.Equal(t, "ON", preview.PersonalInfo.Province)

	fed := preview.FederalTax
	assert.Equal(t, 50000.0, fed.TaxableIncome)
	assert.Equal(t, 7500.0, fed.TaxBeforeCredit)
	assert.Equal(t, 2570.70, fed.CreditsApplied)
	assert.Equal(t, 4929.30, fed.TaxPayable)
	assert.Equal(t, 8000.0, fed.TaxWithheld)
	assert.Equal(t, -3070.70, fed.RefundOrOwing)

	prov := preview.ProvincialTax
	assert.Equal(t, 50000.0, prov.TaxableIncome)
	assert.Equal(t, 2525.0, prov.TaxBeforeCredit)
	assert.Equal(t, 626.15, prov.CreditsApplied)
	assert.Equal(t, 1898.85, prov.TaxPayable)
	assert.Equal(t, 0.0, prov.TaxWithheld)
	assert.Equal(t, 1898.85, prov.RefundOrOwing)

	assert.Equal(t, -1171.85, preview.TotalRefundOrOwing)
}

func TestCalculateQuebecWithholdingIsProvincial(t *testing.T) {
	s := newTestTaxService(t)
	rl1 := doc("rl1", &dto.QuebecEmploymentData{
		EmploymentIncome:      f64(40000),
		ProvincialTaxWithheld: f64(3500),
	})

	preview, err := s.Calculate([]dto.ParsedDocument{rl1}, profile("QC"))
	require.NoError(t, err)

	assert.Equal(t, 40000.0, preview.Income.EmploymentIncome)
	assert.Equal(t, 3500.0, preview.ProvincialTax.TaxWithheld)
	assert.Equal(t, 0.0, preview.FederalTax.TaxWithheld)

	assert.Equal(t, 3429.30, preview.FederalTax.RefundOrOwing)
	assert.Equal(t, 5600.0, preview.ProvincialTax.TaxBeforeCredit)
	assert.Equal(t, 2527.84, preview.ProvincialTax.CreditsApplied)
	assert.Equal(t, -427.84, preview.ProvincialTax.RefundOrOwing)
	assert.Equal(t, 3001.46, preview.TotalRefundOrOwing)
}

func TestCalculateRejectsEmptyDocuments(t *testing.T) {
	s := newTestTaxService(t)

	preview, err := s.Calculate(nil, profile("ON"))
	assert.Nil(t, preview)
	assert.ErrorIs(t, err, dto.ErrNoDocuments)
	assert.True(t, dto.IsCalculationInputError(err))
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	s := newTestTaxService(t)

	badProfile := profile("ON")
	badProfile.ChildrenUnder6 = 2

	tests := []struct {
		name    string
		docs    []dto.ParsedDocument
		profile dto.TaxpayerProfile
		want    error
	}{
		{"unknown province", []dto.ParsedDocument{t4(1, 0)}, profile("ZZ"), dto.ErrUnknownProvince},
		{"unsupported year", []dto.ParsedDocument{t4(1, 0)}, func() dto.TaxpayerProfile { p := profile("ON"); p.Year = 1990; return p }(), dto.ErrUnsupportedTaxYear},
		{"negative amount", []dto.ParsedDocument{t4(-5, 0)}, profile("ON"), dto.ErrNegativeAmount},
		{"data mismatch", []dto.ParsedDocument{{ID: "x", Type: dto.DocTypeEmployment, Data: &dto.TuitionData{}}}, profile("ON"), dto.ErrDocumentDataMismatch},
		{"missing data", []dto.ParsedDocument{{ID: "x", Type: dto.DocTypeEmployment}}, profile("ON"), dto.ErrDocumentDataMismatch},
		{"invalid profile", []dto.ParsedDocument{t4(1, 0)}, badProfile, dto.ErrInvalidProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preview, err := s.Calculate(tt.docs, tt.profile)
			assert.Nil(t, preview)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCalculateWithheldEqualToPayableBalancesToZero(t *testing.T) {
	s := newTestTaxService(t)
	docs := []dto.ParsedDocument{
		t4(50000, 4929.30),
		doc("rl1", &dto.QuebecEmploymentData{ProvincialTaxWithheld: f64(4472.16)}),
	}

	preview, err := s.Calculate(docs, profile("QC"))
	require.NoError(t, err)

	assert.Equal(t, 4929.30, preview.FederalTax.TaxPayable)
	assert.Equal(t, 4472.16, preview.ProvincialTax.TaxPayable)
	assert.Zero(t, preview.FederalTax.RefundOrOwing)
	assert.Zero(t, preview.ProvincialTax.RefundOrOwing)
	assert.Zero(t, preview.TotalRefundOrOwing)
}

func mixedDocuments() []dto.ParsedDocument {
	return []dto.ParsedDocument{
		t4(61234.56, 9876.54),
		doc("t5", &dto.InvestmentData{
			ActualEligibleDividends: f64(1000),
			TaxableDividends:        f64(1380),
			InterestIncome:          f64(100.10),
			ForeignIncome:           f64(50),
		}),
		doc("t2202", &dto.TuitionData{EligibleFees: f64(4500)}),
		doc("rrsp", &dto.RetirementData{ContributionAmount: f64(3000.33)}),
		doc("pharmacy", &dto.MedicalData{Amount: f64(2999.99)}),
		doc("gift", &dto.DonationData{Amount: f64(1200)}),
		doc("daycare", &dto.BusinessExpenseData{Category: str("Daycare"), Amount: f64(10000)}),
		doc("misc", &dto.OtherData{Excerpt: "unrelated"}),
	}
}

func TestCalculateRoutesEveryDocumentType(t *testing.T) {
	s := newTestTaxService(t)
	p := profile("ON")
	p.NumberOfChildren = 1
	p.ChildrenUnder6 = 1

	preview, err := s.Calculate(mixedDocuments(), p)
	require.NoError(t, err)

	assert.Equal(t, 61234.56, preview.Income.EmploymentIncome)
	assert.Equal(t, 1480.10, preview.Income.InvestmentIncome)
	assert.Equal(t, 50.0, preview.Income.OtherIncome)
	assert.Equal(t, 62764.66, preview.Income.TotalIncome)

	assert.Equal(t, 3000.33, preview.Deductions.RetirementContributions)
	assert.Equal(t, 8000.0, preview.Deductions.ChildCareExpenses, "capped for one child under 7")
	assert.Equal(t, 11000.33, preview.Deductions.TotalDeductions)

	assert.Equal(t, 51764.33, preview.FederalTax.TaxableIncome)
	assert.Equal(t, 15705.0, preview.Credits.BasicPersonalAmount)
	assert.Equal(t, 1433.0, preview.Credits.EmploymentAmount)
	assert.Equal(t, 4500.0, preview.Credits.TuitionTransfer)
	assert.Equal(t, 1200.0, preview.Credits.Donations)
	// 3% of net income is below the fixed threshold.
	assert.Equal(t, 1447.06, preview.Credits.MedicalExpenses)
	assert.Equal(t, 9876.54, preview.FederalTax.TaxWithheld)
}

func TestCalculateIgnoresUncategorizedBusinessExpenses(t *testing.T) {
	s := newTestTaxService(t)
	docs := []dto.ParsedDocument{
		t4(50000, 8000),
		doc("office", &dto.BusinessExpenseData{Category: str("Office supplies"), Amount: f64(900)}),
		doc("movers", &dto.BusinessExpenseData{Category: str("Frais de déménagement"), Amount: f64(1200)}),
	}

	preview, err := s.Calculate(docs, profile("ON"))
	require.NoError(t, err)
	assert.Equal(t, 1200.0, preview.Deductions.MovingExpenses)
	assert.Equal(t, 1200.0, preview.Deductions.TotalDeductions)
}

func TestCalculateDonationCreditUsesTwoRates(t *testing.T) {
	s := newTestTaxService(t)
	docs := []dto.ParsedDocument{
		t4(50000, 8000),
		doc("gift", &dto.DonationData{Amount: f64(1200)}),
	}

	preview, err := s.Calculate(docs, profile("ON"))
	require.NoError(t, err)
	// 2570.70 base credits + 200 at 15% + 1000 at 29%
	assert.Equal(t, 2890.70, preview.FederalTax.CreditsApplied)
}

func TestCalculateIsIdempotent(t *testing.T) {
	s := newTestTaxService(t)
	docs := mixedDocuments()

	first, err := s.Calculate(docs, profile("BC"))
	require.NoError(t, err)
	second, err := s.Calculate(docs, profile("BC"))
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCalculateIsOrderIndependent(t *testing.T) {
	s := newTestTaxService(t)
	docs := mixedDocuments()

	want, err := s.Calculate(docs, profile("NS"))
	require.NoError(t, err)

	reversed := make([]dto.ParsedDocument, len(docs))
	for i, d := range docs {
		reversed[len(docs)-1-i] = d
	}
	rotated := append(append([]dto.ParsedDocument{}, docs[3:]...), docs[:3]...)

	for _, order := range [][]dto.ParsedDocument{reversed, rotated} {
		got, err := s.Calculate(order, profile("NS"))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCalculateTotalIsSumOfBalances(t *testing.T) {
	s := newTestTaxService(t)
	for _, code := range []string{"AB", "BC", "MB", "NB", "NL", "NS", "NT", "NU", "ON", "PE", "QC", "SK", "YT"} {
		preview, err := s.Calculate(mixedDocuments(), profile(code))
		require.NoError(t, err, code)
		assert.InDelta(t, preview.FederalTax.RefundOrOwing+preview.ProvincialTax.RefundOrOwing,
			preview.TotalRefundOrOwing, 0.001, code)
	}
}

func TestCalculateSplitCombinedWithholding(t *testing.T) {
	s := newTestTaxService(t, WithSplitCombinedWithholding(true))

	preview, err := s.Calculate([]dto.ParsedDocument{t4(50000, 8000)}, profile("ON"))
	require.NoError(t, err)

	assert.InDelta(t, 8000.0, preview.FederalTax.TaxWithheld+preview.ProvincialTax.TaxWithheld, 0.001)
	assert.Positive(t, preview.ProvincialTax.TaxWithheld)
	assert.Negative(t, preview.FederalTax.RefundOrOwing)
	assert.Negative(t, preview.ProvincialTax.RefundOrOwing)
	assert.Equal(t, -1171.85, preview.TotalRefundOrOwing)
}

func TestCalculateSplitLeavesQuebecAlone(t *testing.T) {
	s := newTestTaxService(t, WithSplitCombinedWithholding(true))

	preview, err := s.Calculate([]dto.ParsedDocument{t4(50000, 8000)}, profile("QC"))
	require.NoError(t, err)
	assert.Equal(t, 8000.0, preview.FederalTax.TaxWithheld)
	assert.Equal(t, 0.0, preview.ProvincialTax.TaxWithheld)
}

func TestBracketTax(t *testing.T) {
	rules, err := taxrules.Default()
	require.NoError(t, err)
	table, err := rules.Table(2024)
	require.NoError(t, err)

	// 55867 at 15% + 4133 at 20.5%
	got := bracketTax(decimal.NewFromInt(60000), table.Federal.Brackets)
	assert.Equal(t, "9227.315", got.String())
	assert.True(t, bracketTax(decimal.Zero, table.Federal.Brackets).IsZero())
}
