package slip

import "github.com/Aashish23092/tax-slip-engine/dto"

// ReviewThreshold is the confidence under which a document always needs review.
const ReviewThreshold = 70

// minFieldsForTrust is the field count under which a document always needs review.
const minFieldsForTrust = 2

type confidenceTier struct {
	MinFields int // strictly more than this many fields earns High
	High      int
	Low       int
}

var confidenceTiers = map[dto.DocumentType]confidenceTier{
	dto.DocTypeEmployment:       {MinFields: 3, High: 80, Low: 50},
	dto.DocTypeEmploymentQuebec: {MinFields: 3, High: 80, Low: 50},
	dto.DocTypeInvestment:       {MinFields: 2, High: 75, Low: 45},
	dto.DocTypeTuition:          {MinFields: 2, High: 75, Low: 45},
	dto.DocTypeRetirement:       {MinFields: 2, High: 70, Low: 40},
}

const untieredConfidence = 30

// Score returns the confidence and review flag for a document of docType
// with fieldCount populated fields. The two review triggers are
// independent: low confidence or too few fields each suffice.
func Score(docType dto.DocumentType, fieldCount int) (int, bool) {
	confidence := untieredConfidence
	if tier, ok := confidenceTiers[docType]; ok {
		confidence = tier.Low
		if fieldCount > tier.MinFields {
			confidence = tier.High
		}
	}
	needsReview := confidence < ReviewThreshold || fieldCount < minFieldsForTrust
	return confidence, needsReview
}
