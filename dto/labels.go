package dto

import "golang.org/x/text/language"

var labelLanguages = []language.Tag{
	language.English,
	language.French,
	language.Spanish,
}

var labelMatcher = language.NewMatcher(labelLanguages)

var typeLabels = map[DocumentType][3]string{
	DocTypeEmployment:       {"Statement of Remuneration Paid (T4)", "État de la rémunération payée (T4)", "Estado de remuneración pagada (T4)"},
	DocTypeEmploymentQuebec: {"Relevé 1 - Employment Income", "Relevé 1 - Revenus d'emploi", "Relevé 1 - Ingresos laborales"},
	DocTypeInvestment:       {"Statement of Investment Income (T5)", "État des revenus de placement (T5)", "Estado de ingresos por inversiones (T5)"},
	DocTypeTuition:          {"Tuition and Enrolment Certificate (T2202)", "Certificat pour frais de scolarité (T2202)", "Certificado de matrícula (T2202)"},
	DocTypeRetirement:       {"RRSP Contribution Receipt", "Reçu de cotisation REER", "Recibo de aportación RRSP"},
	DocTypeMedical:          {"Medical Expense Receipt", "Reçu de frais médicaux", "Recibo de gastos médicos"},
	DocTypeDonation:         {"Donation Receipt", "Reçu de don", "Recibo de donación"},
	DocTypeBusinessExpense:  {"Business Expense", "Dépense d'entreprise", "Gasto de negocio"},
	DocTypeOther:            {"Unclassified Document", "Document non classé", "Documento sin clasificar"},
}

// Label returns the display label of t for an Accept-Language header value.
// English is used when nothing matches.
func (t DocumentType) Label(acceptLanguage string) string {
	labels, ok := typeLabels[t]
	if !ok {
		return string(t)
	}
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	_, idx, _ := labelMatcher.Match(tags...)
	return labels[idx]
}

// NewDocumentView pairs a document with its label.
func NewDocumentView(doc ParsedDocument, acceptLanguage string) DocumentView {
	return DocumentView{ParsedDocument: doc, TypeLabel: doc.Type.Label(acceptLanguage)}
}
