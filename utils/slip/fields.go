package slip

import (
	"fmt"
	"regexp"
	"strings"
)

// Shape is the kind of value a field holds, which decides the pattern that
// captures it and how the capture is converted.
type Shape int

const (
	ShapeAmount Shape = iota
	ShapeSIN
	ShapeBusinessNumber
	ShapeIdentifier
	ShapeText
	ShapeYear
	ShapeCount
	ShapeDate
)

// Amounts need cents, a thousands separator or a dollar sign, so a bare
// year or box number is never read as money. bareAmount is the exception,
// allowed only right after a label or a box number.
var shapePatterns = map[Shape]string{
	ShapeAmount:         `((?:\$\s*)?(?:\d{1,3}(?:[, ]\d{3})+(?:[.,]\d{1,2})?|\d+[.,]\d{2})|\$\s*\d+)`,
	ShapeSIN:            `(\d{3}[ \-]?\d{3}[ \-]?\d{3})`,
	ShapeBusinessNumber: `(\d{9}\s?[A-Za-z]{2}\s?\d{4})`,
	ShapeIdentifier:     `([A-Za-z]{0,4}[\-/]?\d[A-Za-z0-9\-/]{2,})`,
	ShapeText:           `([^\n]*[^\s:])`,
	ShapeYear:           `((?:19|20)\d{2})`,
	ShapeCount:          `(\d{1,2})`,
	ShapeDate:           `(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/]\d{1,2}[-/]\d{4}|[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})`,
}

const (
	amountEnd  = `(?:\D|$)`
	bareAmount = `(\d+)` + amountEnd
)

var yearLike = regexp.MustCompile(`^(?:19|20)\d{2}$`)

// Gaps between a label and its value. Numeric values may sit after a run
// of non-numeric filler (the other-language label) and one line break.
const (
	numericGap = `[^\d$\n]{0,80}?(?:\n[^\d$\n]{0,80}?)?`
	tightGap   = `[ \t]*(?:[:\-][ \t]*)?`
	textGap    = `[ \t]*(?:[:\-][ \t]*)?(?:\n[ \t]*)?`
	// "14 ", "(box 14): ", "Case A - "
	boxTail = `[\s:.)\]\-]*`
)

// FieldSpec declares how one field is found in slip text. Labels are
// written folded (lower case, no accents); Box is the optional box or
// case number printed next to the label. TrailingLabel marks text fields
// whose label may close the value, as in "Shoppers Drug Mart Pharmacy".
type FieldSpec struct {
	Name          string
	Labels        []string
	Box           string
	Shape         Shape
	TrailingLabel bool

	re    *regexp.Regexp
	boxRe *regexp.Regexp
}

// fieldSpecs is the extraction table. Struct fields of the dto slip
// records bind to entries here through their `slip` tag.
var fieldSpecs = []FieldSpec{
	// Statement of remuneration paid (T4)
	{Name: "employer_name", Shape: ShapeText, Labels: []string{"employer's name", "nom de l'employeur"}},
	{Name: "employer_account", Shape: ShapeBusinessNumber, Box: "54", Labels: []string{"employer's account number", "numero de compte de l'employeur"}},
	{Name: "employee_sin", Shape: ShapeSIN, Box: "12", Labels: []string{"social insurance number", "numero d'assurance sociale"}},
	{Name: "employment_income", Shape: ShapeAmount, Box: "14", Labels: []string{"employment income", "revenus d'emploi"}},
	{Name: "cpp_contributions", Shape: ShapeAmount, Box: "16", Labels: []string{"employee's cpp contributions", "cotisations de l'employe au rpc"}},
	{Name: "ei_premiums", Shape: ShapeAmount, Box: "18", Labels: []string{"employee's ei premiums", "cotisations de l'employe a l'ae"}},
	{Name: "income_tax_withheld", Shape: ShapeAmount, Box: "22", Labels: []string{"income tax deducted", "impot sur le revenu retenu"}},
	{Name: "union_dues", Shape: ShapeAmount, Box: "44", Labels: []string{"union dues", "cotisations syndicales"}},
	{Name: "pension_adjustment", Shape: ShapeAmount, Box: "52", Labels: []string{"pension adjustment", "facteur d'equivalence"}},

	// Releve 1
	{Name: "quebec_employer_number", Shape: ShapeIdentifier, Labels: []string{"numero d'identification de l'employeur", "no d'identification", "employer's identification number"}},
	{Name: "quebec_employment_income", Shape: ShapeAmount, Box: "a", Labels: []string{"revenus d'emploi", "employment income"}},
	{Name: "qpp_contributions", Shape: ShapeAmount, Box: "b", Labels: []string{"cotisation au rrq", "qpp contributions"}},
	{Name: "quebec_ei_premiums", Shape: ShapeAmount, Box: "c", Labels: []string{"cotisation a l'assurance emploi", "ei premiums"}},
	{Name: "quebec_tax_withheld", Shape: ShapeAmount, Box: "e", Labels: []string{"impot du quebec retenu", "quebec income tax withheld"}},
	{Name: "qpip_premiums", Shape: ShapeAmount, Box: "h", Labels: []string{"cotisation au rqap", "qpip premiums"}},

	// Statement of investment income (T5)
	{Name: "payer_name", Shape: ShapeText, Labels: []string{"payer's name", "nom du payeur"}},
	{Name: "payer_id", Shape: ShapeIdentifier, Labels: []string{"payer's identification number", "numero d'identification du payeur"}},
	{Name: "recipient_sin", Shape: ShapeSIN, Labels: []string{"recipient's identification number", "numero d'identification du beneficiaire", "social insurance number"}},
	{Name: "actual_eligible_dividends", Shape: ShapeAmount, Box: "24", Labels: []string{"actual amount of eligible dividends", "montant reel des dividendes determines"}},
	{Name: "taxable_eligible_dividends", Shape: ShapeAmount, Box: "25", Labels: []string{"taxable amount of eligible dividends", "montant imposable des dividendes determines"}},
	{Name: "interest_income", Shape: ShapeAmount, Box: "13", Labels: []string{"interest from canadian sources", "interets de source canadienne"}},
	{Name: "foreign_income", Shape: ShapeAmount, Box: "15", Labels: []string{"foreign income", "revenus etrangers"}},

	// Tuition and enrolment certificate (T2202)
	{Name: "institution_name", Shape: ShapeText, Labels: []string{"name of educational institution", "name and address of educational institution", "nom de l'etablissement d'enseignement"}},
	{Name: "student_number", Shape: ShapeIdentifier, Labels: []string{"student number", "numero d'etudiant"}},
	{Name: "eligible_tuition_fees", Shape: ShapeAmount, Box: "23", Labels: []string{"eligible tuition fees", "frais de scolarite admissibles"}},
	{Name: "part_time_months", Shape: ShapeCount, Box: "24", Labels: []string{"number of months part-time", "nombre de mois a temps partiel"}},
	{Name: "full_time_months", Shape: ShapeCount, Box: "26", Labels: []string{"number of months full-time", "nombre de mois a temps plein"}},

	// RRSP contribution receipt
	{Name: "rrsp_issuer", Shape: ShapeText, Labels: []string{"issuer", "financial institution", "emetteur", "institution financiere"}},
	{Name: "rrsp_contribution", Shape: ShapeAmount, Labels: []string{"contribution amount", "amount of contribution", "montant de la cotisation", "montant cotise"}},
	{Name: "tax_year", Shape: ShapeYear, Labels: []string{"tax year", "for the year", "annee d'imposition", "annee"}},
	{Name: "receipt_number", Shape: ShapeIdentifier, Labels: []string{"receipt number", "receipt no", "numero du recu", "no du recu"}},

	// Receipts: medical, donation, business expense
	{Name: "medical_provider", Shape: ShapeText, TrailingLabel: true, Labels: []string{"pharmacy", "clinic", "provider", "pharmacie", "clinique", "fournisseur"}},
	{Name: "charity_name", Shape: ShapeText, Labels: []string{"charity name", "name of charity", "organisme de bienfaisance", "nom de l'organisme"}},
	{Name: "charity_registration", Shape: ShapeIdentifier, Labels: []string{"registration number", "charitable registration", "numero d'enregistrement"}},
	{Name: "donation_amount", Shape: ShapeAmount, Labels: []string{"eligible amount of gift", "amount of gift", "donation amount", "montant admissible du don", "montant du don"}},
	{Name: "vendor", Shape: ShapeText, Labels: []string{"vendor", "sold by", "from", "fournisseur", "vendeur"}},
	{Name: "expense_category", Shape: ShapeText, Labels: []string{"category", "expense type", "categorie", "type de depense"}},
	{Name: "total_amount", Shape: ShapeAmount, Labels: []string{"amount paid", "total paid", "total", "amount", "montant paye", "montant"}},
	{Name: "date", Shape: ShapeDate, Labels: []string{"date of service", "date of gift", "date"}},
	{Name: "description", Shape: ShapeText, Labels: []string{"description", "item", "service", "article"}},
}

var fieldsByName map[string]*FieldSpec

func init() {
	fieldsByName = make(map[string]*FieldSpec, len(fieldSpecs))
	for i := range fieldSpecs {
		spec := &fieldSpecs[i]
		if _, dup := fieldsByName[spec.Name]; dup {
			panic(fmt.Sprintf("slip: duplicate field spec %q", spec.Name))
		}
		spec.re = regexp.MustCompile(spec.pattern())
		if spec.Box != "" && spec.Shape != ShapeText {
			spec.boxRe = regexp.MustCompile(spec.boxFirstPattern())
		}
		fieldsByName[spec.Name] = spec
	}
}

// LookupField returns the extraction rule for a field name.
func LookupField(name string) (*FieldSpec, bool) {
	spec, ok := fieldsByName[name]
	return spec, ok
}

// pattern matches a label followed by its value. For text fields group 1
// is the label and group 2 the value; for the other shapes every group is
// a value alternative and the first one set wins.
func (f *FieldSpec) pattern() string {
	labels := make([]string, 0, len(f.Labels))
	for _, l := range f.Labels {
		labels = append(labels, labelPattern(l))
	}

	var b strings.Builder
	b.WriteString(`(?i)(?:^|[^\p{L}\p{N}])`)

	if f.Shape == ShapeText {
		b.WriteString(`(` + strings.Join(labels, "|") + `)`)
		b.WriteString(textGap)
		b.WriteString(shapePatterns[f.Shape])
		return b.String()
	}

	b.WriteString(`(?:` + strings.Join(labels, "|") + `)`)
	optBox := ""
	if f.Box != "" {
		optBox = `(?:` + f.boxToken() + `)?`
	}
	if f.Shape != ShapeAmount {
		b.WriteString(numericGap + optBox + shapePatterns[f.Shape])
		return b.String()
	}

	b.WriteString(`(?:` + numericGap + optBox + shapePatterns[ShapeAmount] + amountEnd)
	if f.Box != "" {
		b.WriteString(`|` + numericGap + f.boxToken() + bareAmount)
	}
	b.WriteString(`|` + tightGap + bareAmount + `)`)
	return b.String()
}

// boxFirstPattern matches "Box 14: 50,000.00" where the label, if any,
// comes after the value.
func (f *FieldSpec) boxFirstPattern() string {
	value := shapePatterns[f.Shape]
	if f.Shape == ShapeAmount {
		value = `(?:` + shapePatterns[ShapeAmount] + amountEnd + `|` + bareAmount + `)`
	}
	return `(?i)(?:^|[^\p{L}\p{N}])(?:box|case)\s*` + regexp.QuoteMeta(f.Box) + `\b` + boxTail + value
}

// boxToken matches the box number. Letter boxes (Relevé 1) need the
// "case" or "box" keyword, a lone "a" is just a word.
func (f *FieldSpec) boxToken() string {
	box := regexp.QuoteMeta(f.Box)
	if strings.Trim(f.Box, "0123456789") != "" {
		return `(?:box|case)\s*` + box + `\b` + boxTail
	}
	return `(?:(?:box|case)\s*|\b)` + box + `\b` + boxTail
}

// Find returns the first value captured for the field, trimmed.
func (f *FieldSpec) Find(text string) (string, bool) {
	if f.Shape == ShapeText {
		return f.findText(text)
	}
	start, value := f.firstValue(f.re, text)
	if f.boxRe != nil {
		if boxStart, boxValue := f.firstValue(f.boxRe, text); boxStart >= 0 && (start < 0 || boxStart < start) {
			start, value = boxStart, boxValue
		}
	}
	return value, start >= 0
}

// firstValue returns the start offset and value of the first acceptable
// match of re, or -1. A bare amount that reads as a year or repeats the
// box number is skipped.
func (f *FieldSpec) firstValue(re *regexp.Regexp, text string) (int, string) {
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		for g := 1; g < len(m)/2; g++ {
			if m[2*g] < 0 {
				continue
			}
			v := strings.TrimSpace(text[m[2*g]:m[2*g+1]])
			if v == "" || (f.Shape == ShapeAmount && (yearLike.MatchString(v) || v == f.Box)) {
				break
			}
			return m[0], v
		}
	}
	return -1, ""
}

// findText handles bilingual label pairs printed on one line: when the
// text after a label is the other-language label, the value is taken
// from the next non-empty line.
func (f *FieldSpec) findText(text string) (string, bool) {
	for _, m := range f.re.FindAllStringSubmatchIndex(text, -1) {
		labelStart, labelEnd, valueStart, valueEnd := m[2], m[3], m[4], m[5]
		if f.TrailingLabel && strings.Contains(text[labelEnd:valueStart], "\n") {
			lineStart := strings.LastIndex(text[:labelStart], "\n") + 1
			if lead := strings.Trim(text[lineStart:labelStart], " \t-/|:"); lead != "" && !f.isLabel(lead) {
				return strings.Trim(text[lineStart:labelEnd], " \t-/|:"), true
			}
		}
		value := strings.Trim(text[valueStart:valueEnd], " \t-/|:")
		if value != "" && !f.isLabel(value) {
			return value, true
		}
		if next := nextLine(text[m[1]:]); next != "" && !f.isLabel(next) {
			return next, true
		}
	}
	return "", false
}

func (f *FieldSpec) isLabel(s string) bool {
	folded := Fold(s)
	for _, l := range f.Labels {
		if strings.Contains(folded, l) {
			return true
		}
	}
	return false
}

func nextLine(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == 0 {
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
