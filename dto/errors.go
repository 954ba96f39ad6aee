package dto

import (
	"errors"
	"fmt"
)

// Calculation input errors. They are never recovered silently: a preview
// is not produced when any of them applies.
var (
	ErrNoDocuments          = errors.New("no parsed documents supplied")
	ErrUnknownProvince      = errors.New("unknown province code")
	ErrUnsupportedTaxYear   = errors.New("no tax rules for year")
	ErrNegativeAmount       = errors.New("negative amount in document")
	ErrInvalidProfile       = errors.New("invalid taxpayer profile")
	ErrDocumentDataMismatch = errors.New("document data does not match its type")
)

// Acquisition and storage errors.
var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNoTextExtracted     = errors.New("no text could be extracted from the document")
	ErrFileTooLarge        = errors.New("file exceeds maximum size")
)

// ValidationError attaches the offending field to one of the sentinel errors.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func NewValidationError(err error, field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", e.Err, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsCalculationInputError reports whether err is one of the calculation input errors.
func IsCalculationInputError(err error) bool {
	for _, target := range []error{
		ErrNoDocuments,
		ErrUnknownProvince,
		ErrUnsupportedTaxYear,
		ErrNegativeAmount,
		ErrInvalidProfile,
		ErrDocumentDataMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
