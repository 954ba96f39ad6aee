package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// FileFailure reports a file that could not be read, interpreted or stored.
type FileFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// BatchResult is the outcome of extracting a batch of uploaded files.
// Documents and Failures each keep the upload order.
type BatchResult struct {
	Documents []ParsedDocument `json:"documents"`
	Failures  []FileFailure    `json:"failures"`
}

// DocumentView decorates a ParsedDocument with a display label.
type DocumentView struct {
	ParsedDocument
	TypeLabel string `json:"type_label"`
}

type DocumentListResponse struct {
	Documents []DocumentView `json:"documents"`
	Failures  []FileFailure  `json:"failures,omitempty"`
}

// ProvinceRulesView summarizes one province's rules for a tax year.
type ProvinceRulesView struct {
	Code                string  `json:"code"`
	Name                string  `json:"name"`
	SalesTaxType        string  `json:"sales_tax_type"`
	SalesTaxRate        float64 `json:"sales_tax_rate"`
	LowestRate          float64 `json:"lowest_rate"`
	CreditRate          float64 `json:"credit_rate"`
	BasicPersonalAmount float64 `json:"basic_personal_amount"`
}

type TaxRulesView struct {
	Year                       int                 `json:"year"`
	FederalLowestRate          float64             `json:"federal_lowest_rate"`
	FederalBasicPersonalAmount float64             `json:"federal_basic_personal_amount"`
	Provinces                  []ProvinceRulesView `json:"provinces"`
}

// MarginalRatesView is the rate applying to the next dollar of income.
type MarginalRatesView struct {
	Year       int     `json:"year"`
	Province   string  `json:"province"`
	Income     float64 `json:"income"`
	Federal    float64 `json:"federal"`
	Provincial float64 `json:"provincial"`
	Combined   float64 `json:"combined"`
}
