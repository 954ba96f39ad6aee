// Package repository persists parsed documents keyed by taxpayer and tax year.
package repository

import (
	"context"
	"sort"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

// DocumentStore is the persistence collaborator of the extraction pipeline.
// Get, Update and Delete return dto.ErrDocumentNotFound for unknown ids.
// Update runs apply on a copy of the stored document and persists the
// result only when apply succeeds.
type DocumentStore interface {
	Save(ctx context.Context, taxpayerID string, year int, doc dto.ParsedDocument) error
	Get(ctx context.Context, id string) (dto.ParsedDocument, error)
	List(ctx context.Context, taxpayerID string, year int) ([]dto.ParsedDocument, error)
	Update(ctx context.Context, id string, apply func(*dto.ParsedDocument) error) (dto.ParsedDocument, error)
	Delete(ctx context.Context, id string) error
}

// sortDocuments orders by upload date, then id, so listings are stable.
func sortDocuments(docs []dto.ParsedDocument) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadDate.Equal(docs[j].UploadDate) {
			return docs[i].UploadDate.Before(docs[j].UploadDate)
		}
		return docs[i].ID < docs[j].ID
	})
}
