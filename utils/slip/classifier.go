package slip

import (
	"strings"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

// classificationRule matches when any of its marker groups is fully present.
// A group with several phrases requires all of them.
type classificationRule struct {
	Type    dto.DocumentType
	Markers [][]string
}

// Order is priority: official slip titles come before the generic
// receipt and invoice phrases, which would otherwise match most slips.
var classificationRules = []classificationRule{
	{Type: dto.DocTypeEmploymentQuebec, Markers: [][]string{
		{"releve 1"},
		{"rl-1"},
		{"revenus d'emploi et revenus divers"},
	}},
	{Type: dto.DocTypeEmployment, Markers: [][]string{
		{"statement of remuneration"},
		{"releve de la remuneration payee"},
		{"etat de la remuneration payee"},
	}},
	{Type: dto.DocTypeInvestment, Markers: [][]string{
		{"statement of investment"},
		{"etat des revenus de placement"},
	}},
	{Type: dto.DocTypeTuition, Markers: [][]string{
		{"t2202"},
		{"tuition", "enrolment"},
		{"tuition", "enrollment"},
		{"frais de scolarite", "inscription"},
	}},
	{Type: dto.DocTypeRetirement, Markers: [][]string{
		{"rrsp"},
		{"registered retirement"},
		{"regime enregistre d'epargne-retraite"},
	}},
	{Type: dto.DocTypeMedical, Markers: [][]string{
		{"medical"},
		{"prescription"},
		{"pharmacy"},
		{"pharmacie"},
		{"frais medicaux"},
	}},
	{Type: dto.DocTypeDonation, Markers: [][]string{
		{"official donation receipt"},
		{"donation"},
		{"charitable"},
		{"recu officiel de don"},
	}},
	{Type: dto.DocTypeBusinessExpense, Markers: [][]string{
		{"business expense"},
		{"invoice"},
		{"receipt"},
		{"facture"},
	}},
}

// Classify assigns exactly one document type to raw text. It never fails:
// text that matches no rule is dto.DocTypeOther.
func Classify(text string) dto.DocumentType {
	folded := Fold(text)
	for _, rule := range classificationRules {
		for _, group := range rule.Markers {
			if containsAll(folded, group) {
				return rule.Type
			}
		}
	}
	return dto.DocTypeOther
}

func containsAll(text string, phrases []string) bool {
	for _, p := range phrases {
		if !containsPhrase(text, p) {
			return false
		}
	}
	return true
}

// containsPhrase reports whether phrase occurs in text. A phrase ending in
// a digit must not run into another digit, so "releve 1" is not found in
// "releve 16".
func containsPhrase(text, phrase string) bool {
	if phrase == "" || !isDigit(phrase[len(phrase)-1]) {
		return strings.Contains(text, phrase)
	}
	for from := 0; ; {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return false
		}
		end := from + i + len(phrase)
		if end == len(text) || !isDigit(text[end]) {
			return true
		}
		from += i + 1
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
