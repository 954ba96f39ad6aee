package dto

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// UploadedFile is one file handed to the text acquisition adapter.
type UploadedFile struct {
	FileName string
	MIMEType string
	Data     []byte
}

// NewUploadedFile reads a multipart file header into memory.
func NewUploadedFile(fh *multipart.FileHeader) (UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return UploadedFile{}, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return UploadedFile{}, err
	}

	return UploadedFile{
		FileName: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Data:     buf,
	}, nil
}

// Extension returns the lower-cased file extension.
func (f UploadedFile) Extension() string {
	return strings.ToLower(filepath.Ext(f.FileName))
}

// InterpretRequest carries raw text for the stateless interpret endpoint.
type InterpretRequest struct {
	FileName string `json:"file_name"`
	Text     string `json:"text" binding:"required"`
}

// PreviewRequest is the stateless preview body: documents plus profile.
type PreviewRequest struct {
	Profile   TaxpayerProfile  `json:"profile"`
	Documents []ParsedDocument `json:"documents"`
}

// ReviewUpdate is a staff edit of a stored document. Type corrects a
// misclassified document. Data, when present, replaces the extracted
// record and must match the resulting type; a type change without data
// starts from an empty record.
type ReviewUpdate struct {
	Type        *DocumentType   `json:"type"`
	AdminNotes  *string         `json:"admin_notes"`
	Data        json.RawMessage `json:"data"`
	NeedsReview *bool           `json:"needs_review"`
}

// ChangesData reports whether the update replaces the type or the record.
func (u ReviewUpdate) ChangesData() bool {
	return u.Type != nil || len(u.Data) > 0
}

// Apply edits doc in place. Nothing is changed when the type is unknown
// or the data does not decode.
func (u ReviewUpdate) Apply(doc *ParsedDocument) error {
	docType := doc.Type
	if u.Type != nil {
		if !u.Type.Valid() {
			return NewValidationError(ErrDocumentDataMismatch, "type", "unrecognized value "+string(*u.Type))
		}
		docType = *u.Type
	}
	data := doc.Data
	if len(u.Data) > 0 || docType != doc.Type {
		decoded, err := DecodeSlipData(docType, u.Data)
		if err != nil {
			return NewValidationError(ErrDocumentDataMismatch, "data", err.Error())
		}
		data = decoded
	}

	doc.Type = docType
	doc.Data = data
	if u.AdminNotes != nil {
		doc.AdminNotes = *u.AdminNotes
	}
	if u.NeedsReview != nil {
		doc.NeedsReview = *u.NeedsReview
	}
	return nil
}

// Validate validates a profile before it reaches the calculation engine.
func (p TaxpayerProfile) Validate() error {
	if strings.TrimSpace(p.TaxpayerID) == "" {
		return NewValidationError(ErrInvalidProfile, "taxpayer_id", "is required")
	}
	if p.Year <= 0 {
		return NewValidationError(ErrInvalidProfile, "year", "is required")
	}
	if !p.MaritalStatus.Valid() {
		return NewValidationError(ErrInvalidProfile, "marital_status", "unrecognized value "+string(p.MaritalStatus))
	}
	if p.NumberOfChildren < 0 || p.ChildrenUnder6 < 0 {
		return NewValidationError(ErrInvalidProfile, "number_of_children", "must not be negative")
	}
	if p.ChildrenUnder6 > p.NumberOfChildren {
		return NewValidationError(ErrInvalidProfile, "children_under_6", "exceeds number_of_children")
	}
	return nil
}
