package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Aashish23092/tax-slip-engine/dto"
	"github.com/Aashish23092/tax-slip-engine/taxrules"
	"github.com/Aashish23092/tax-slip-engine/utils/slip"
)

const provinceQuebec = "QC"

var zero = decimal.Zero

// TaxService turns a taxpayer's parsed documents into a return preview.
// It holds no per-call state and is safe for concurrent use.
type TaxService struct {
	rules            *taxrules.Registry
	logger           *zap.Logger
	splitWithholding bool
}

type TaxServiceOption func(*TaxService)

// WithSplitCombinedWithholding allocates the income tax withheld on federal
// employment slips between the federal and provincial balances in
// proportion to each jurisdiction's payable tax. Quebec residents are not
// affected since their provincial withholding is reported separately.
func WithSplitCombinedWithholding(enabled bool) TaxServiceOption {
	return func(s *TaxService) { s.splitWithholding = enabled }
}

func NewTaxService(rules *taxrules.Registry, logger *zap.Logger, opts ...TaxServiceOption) *TaxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TaxService{rules: rules, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate computes the federal and provincial balances for one taxpayer
// and year. Invalid input is rejected with one of the dto calculation
// errors; no partial preview is ever returned.
func (s *TaxService) Calculate(docs []dto.ParsedDocument, profile dto.TaxpayerProfile) (*dto.TaxReturnPreview, error) {
	preview, err := s.calculate(docs, profile)
	if err != nil {
		s.logger.Info("tax calculation rejected",
			zap.String("taxpayer_id", profile.TaxpayerID),
			zap.Int("year", profile.Year),
			zap.Int("documents", len(docs)),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Debug("tax calculation complete",
		zap.String("taxpayer_id", profile.TaxpayerID),
		zap.Int("year", profile.Year),
		zap.Float64("total_refund_or_owing", preview.TotalRefundOrOwing),
	)
	return preview, nil
}

func (s *TaxService) calculate(docs []dto.ParsedDocument, profile dto.TaxpayerProfile) (*dto.TaxReturnPreview, error) {
	if len(docs) == 0 {
		return nil, dto.NewValidationError(dto.ErrNoDocuments, "documents", "upload at least one slip or receipt")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	table, province, err := s.rules.Lookup(profile.Year, profile.Province)
	if err != nil {
		return nil, err
	}

	var agg aggregate
	for i := range docs {
		if err := agg.add(&docs[i]); err != nil {
			return nil, err
		}
	}

	income := agg.income()
	deductions := agg.deductions(profile, table.ChildCare)
	taxable := decimal.Max(zero, income.total.Sub(deductions.total))

	credits := agg.credits(table.Federal, taxable)

	fed := jurisdiction{taxable: taxable}
	fed.before = round(bracketTax(taxable, table.Federal.Brackets))
	fed.credits = round(federalCredits(credits, agg.donations, table.Federal))
	fed.payable = decimal.Max(zero, fed.before.Sub(fed.credits))
	fed.withheld = round(agg.federalWithheld)

	prov := jurisdiction{taxable: taxable}
	prov.before = round(bracketTax(taxable, province.Brackets))
	prov.credits = round(provincialCredits(credits, province))
	prov.payable = decimal.Max(zero, prov.before.Sub(prov.credits))
	prov.withheld = round(agg.provincialWithheld)

	if s.splitWithholding && province.Code != provinceQuebec {
		splitWithholding(&fed, &prov)
	}

	fedTax := fed.result()
	provTax := prov.result()

	return &dto.TaxReturnPreview{
		TaxpayerID: profile.TaxpayerID,
		Year:       profile.Year,
		PersonalInfo: dto.PersonalInfo{
			Name:          profile.Name,
			SIN:           profile.SIN,
			Province:      province.Code,
			MaritalStatus: profile.MaritalStatus,
		},
		Income: dto.IncomeSummary{
			EmploymentIncome:     money(income.employment),
			InvestmentIncome:     money(income.investment),
			SelfEmploymentIncome: money(income.selfEmployment),
			OtherIncome:          money(income.other),
			TotalIncome:          money(income.total),
		},
		Deductions: dto.DeductionSummary{
			RetirementContributions: money(deductions.retirement),
			UnionDues:               money(deductions.unionDues),
			ChildCareExpenses:       money(deductions.childCare),
			MovingExpenses:          money(deductions.moving),
			TotalDeductions:         money(deductions.total),
		},
		Credits: dto.CreditSummary{
			BasicPersonalAmount: money(credits.basicPersonal),
			EmploymentAmount:    money(credits.employment),
			TuitionTransfer:     money(credits.tuition),
			MedicalExpenses:     money(credits.medical),
			Donations:           money(credits.donations),
			Contributions:       money(credits.contributions),
			TotalCredits:        money(credits.total()),
		},
		FederalTax:         fedTax,
		ProvincialTax:      provTax,
		TotalRefundOrOwing: money(fed.balance().Add(prov.balance())),
		Status:             dto.StatusDraft,
	}, nil
}

// aggregate accumulates document amounts by category. Sums are exact, so
// the result does not depend on document order.
type aggregate struct {
	employment decimal.Decimal
	investment decimal.Decimal
	other      decimal.Decimal

	retirement decimal.Decimal
	unionDues  decimal.Decimal
	childCare  decimal.Decimal
	moving     decimal.Decimal

	tuition       decimal.Decimal
	medical       decimal.Decimal
	donations     decimal.Decimal
	contributions decimal.Decimal

	federalWithheld    decimal.Decimal
	provincialWithheld decimal.Decimal
}

func (a *aggregate) add(doc *dto.ParsedDocument) error {
	if doc.Data == nil || doc.Data.DocumentType() != doc.Type {
		return dto.NewValidationError(dto.ErrDocumentDataMismatch, doc.ID, fmt.Sprintf("type %s", doc.Type))
	}
	amt := amountReader{doc: doc}

	switch d := doc.Data.(type) {
	case *dto.EmploymentData:
		a.employment = a.employment.Add(amt.read("employment_income", d.EmploymentIncome))
		a.federalWithheld = a.federalWithheld.Add(amt.read("income_tax_withheld", d.IncomeTaxWithheld))
		a.unionDues = a.unionDues.Add(amt.read("union_dues", d.UnionDues))
		a.contributions = a.contributions.
			Add(amt.read("cpp_contributions", d.CPPContributions)).
			Add(amt.read("ei_premiums", d.EIPremiums))
		amt.read("pension_adjustment", d.PensionAdjustment)
	case *dto.QuebecEmploymentData:
		a.employment = a.employment.Add(amt.read("employment_income", d.EmploymentIncome))
		a.provincialWithheld = a.provincialWithheld.Add(amt.read("provincial_tax_withheld", d.ProvincialTaxWithheld))
		a.contributions = a.contributions.
			Add(amt.read("qpp_contributions", d.QPPContributions)).
			Add(amt.read("ei_premiums", d.EIPremiums)).
			Add(amt.read("qpip_premiums", d.QPIPPremiums))
	case *dto.InvestmentData:
		dividends := amt.read("taxable_dividends", d.TaxableDividends)
		if d.TaxableDividends == nil {
			dividends = amt.read("actual_eligible_dividends", d.ActualEligibleDividends)
		} else {
			amt.read("actual_eligible_dividends", d.ActualEligibleDividends)
		}
		a.investment = a.investment.
			Add(dividends).
			Add(amt.read("interest_income", d.InterestIncome))
		a.other = a.other.Add(amt.read("foreign_income", d.ForeignIncome))
	case *dto.TuitionData:
		a.tuition = a.tuition.Add(amt.read("eligible_fees", d.EligibleFees))
	case *dto.RetirementData:
		a.retirement = a.retirement.Add(amt.read("contribution_amount", d.ContributionAmount))
	case *dto.MedicalData:
		a.medical = a.medical.Add(amt.read("amount", d.Amount))
	case *dto.DonationData:
		a.donations = a.donations.Add(amt.read("amount", d.Amount))
	case *dto.BusinessExpenseData:
		v := amt.read("amount", d.Amount)
		switch expenseCategory(d.Category) {
		case categoryUnionDues:
			a.unionDues = a.unionDues.Add(v)
		case categoryChildCare:
			a.childCare = a.childCare.Add(v)
		case categoryMoving:
			a.moving = a.moving.Add(v)
		}
	case *dto.OtherData:
	}
	return amt.err
}

// amountReader converts optional amounts and remembers the first negative one.
type amountReader struct {
	doc *dto.ParsedDocument
	err error
}

func (r *amountReader) read(field string, v *float64) decimal.Decimal {
	if v == nil {
		return zero
	}
	d := decimal.NewFromFloat(*v)
	if d.IsNegative() && r.err == nil {
		r.err = dto.NewValidationError(dto.ErrNegativeAmount, field,
			fmt.Sprintf("%s in %s (%s)", d.String(), r.doc.FileName, r.doc.ID))
	}
	return d
}

type incomeTotals struct {
	employment, investment, selfEmployment, other, total decimal.Decimal
}

func (a *aggregate) income() incomeTotals {
	t := incomeTotals{
		employment:     a.employment,
		investment:     a.investment,
		selfEmployment: zero,
		other:          a.other,
	}
	t.total = t.employment.Add(t.investment).Add(t.selfEmployment).Add(t.other)
	return t
}

type deductionTotals struct {
	retirement, unionDues, childCare, moving, total decimal.Decimal
}

func (a *aggregate) deductions(profile dto.TaxpayerProfile, limits taxrules.ChildCareLimits) deductionTotals {
	under6 := decimal.NewFromInt(int64(profile.ChildrenUnder6))
	older := decimal.NewFromInt(int64(profile.NumberOfChildren - profile.ChildrenUnder6))
	childCareCap := under6.Mul(decimal.NewFromFloat(limits.Under7)).
		Add(older.Mul(decimal.NewFromFloat(limits.Other)))

	t := deductionTotals{
		retirement: a.retirement,
		unionDues:  a.unionDues,
		childCare:  decimal.Min(a.childCare, childCareCap),
		moving:     a.moving,
	}
	t.total = t.retirement.Add(t.unionDues).Add(t.childCare).Add(t.moving)
	return t
}

// creditBases are the amounts credits are computed on, before conversion.
type creditBases struct {
	basicPersonal decimal.Decimal
	employment    decimal.Decimal
	tuition       decimal.Decimal
	medical       decimal.Decimal
	donations     decimal.Decimal
	contributions decimal.Decimal
}

func (c creditBases) total() decimal.Decimal {
	return c.basicPersonal.Add(c.employment).Add(c.tuition).Add(c.medical).Add(c.donations).Add(c.contributions)
}

func (a *aggregate) credits(fed taxrules.FederalRules, netIncome decimal.Decimal) creditBases {
	threshold := decimal.Min(
		netIncome.Mul(decimal.NewFromFloat(fed.MedicalIncomeRate)),
		decimal.NewFromFloat(fed.MedicalThreshold),
	)
	return creditBases{
		basicPersonal: decimal.NewFromFloat(fed.BasicPersonalAmount),
		employment:    decimal.Min(a.employment, decimal.NewFromFloat(fed.EmploymentAmount)),
		tuition:       a.tuition,
		medical:       decimal.Max(zero, a.medical.Sub(threshold)),
		donations:     a.donations,
		contributions: a.contributions,
	}
}

func federalCredits(c creditBases, donations decimal.Decimal, fed taxrules.FederalRules) decimal.Decimal {
	rate := decimal.NewFromFloat(fed.CreditRate)
	base := c.basicPersonal.Add(c.employment).Add(c.tuition).Add(c.medical).Add(c.contributions)

	lowLimit := decimal.NewFromFloat(fed.DonationLowLimit)
	low := decimal.Min(donations, lowLimit)
	high := decimal.Max(zero, donations.Sub(lowLimit))

	return base.Mul(rate).
		Add(low.Mul(rate)).
		Add(high.Mul(decimal.NewFromFloat(fed.DonationHighRate)))
}

// provincialCredits converts the shared pools at the province's credit
// rate. The Canada employment amount is federal only.
func provincialCredits(c creditBases, p taxrules.ProvinceRules) decimal.Decimal {
	base := decimal.NewFromFloat(p.BasicPersonalAmount).
		Add(c.tuition).
		Add(c.medical).
		Add(c.donations).
		Add(c.contributions)
	return base.Mul(decimal.NewFromFloat(p.CreditRate))
}

// bracketTax applies a progressive schedule to income.
func bracketTax(income decimal.Decimal, brackets taxrules.Brackets) decimal.Decimal {
	tax := zero
	for i, b := range brackets {
		lower := decimal.NewFromFloat(b.Threshold)
		if income.LessThanOrEqual(lower) {
			break
		}
		upper := income
		if i+1 < len(brackets) {
			upper = decimal.Min(income, decimal.NewFromFloat(brackets[i+1].Threshold))
		}
		tax = tax.Add(upper.Sub(lower).Mul(decimal.NewFromFloat(b.Rate)))
	}
	return tax
}

type jurisdiction struct {
	taxable  decimal.Decimal
	before   decimal.Decimal
	credits  decimal.Decimal
	payable  decimal.Decimal
	withheld decimal.Decimal
}

// balance is payable minus withheld: negative is a refund.
func (j jurisdiction) balance() decimal.Decimal {
	return j.payable.Sub(j.withheld)
}

func (j jurisdiction) result() dto.JurisdictionTax {
	return dto.JurisdictionTax{
		TaxableIncome:   money(j.taxable),
		TaxBeforeCredit: money(j.before),
		CreditsApplied:  money(j.credits),
		TaxPayable:      money(j.payable),
		TaxWithheld:     money(j.withheld),
		RefundOrOwing:   money(j.balance()),
	}
}

// splitWithholding moves part of the federal withheld amount to the
// provincial side so each share matches that jurisdiction's portion of the
// combined payable tax. The total withheld is unchanged.
func splitWithholding(fed, prov *jurisdiction) {
	combined := fed.payable.Add(prov.payable)
	if !combined.IsPositive() || !fed.withheld.IsPositive() {
		return
	}
	fedShare := round(fed.withheld.Mul(fed.payable).Div(combined))
	prov.withheld = prov.withheld.Add(fed.withheld.Sub(fedShare))
	fed.withheld = fedShare
}

type category int

const (
	categoryNone category = iota
	categoryUnionDues
	categoryChildCare
	categoryMoving
)

var categoryKeywords = []struct {
	category category
	words    []string
}{
	{categoryUnionDues, []string{"union", "syndica", "professional dues", "cotisation professionnelle"}},
	{categoryChildCare, []string{"child care", "childcare", "daycare", "day care", "garde d'enfant", "garderie"}},
	{categoryMoving, []string{"moving", "relocation", "demenagement"}},
}

// expenseCategory maps a free-text business expense category to the
// deduction it feeds, if any.
func expenseCategory(c *string) category {
	if c == nil {
		return categoryNone
	}
	folded := slip.Fold(*c)
	for _, k := range categoryKeywords {
		for _, w := range k.words {
			if strings.Contains(folded, w) {
				return k.category
			}
		}
	}
	return categoryNone
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// money rounds half away from zero to cents.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
