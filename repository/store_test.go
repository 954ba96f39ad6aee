package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

func f64(v float64) *float64 { return &v }

func sampleDocument(id string, uploaded time.Time) dto.ParsedDocument {
	name := "Maple Leaf Foods Inc."
	return dto.ParsedDocument{
		ID:         id,
		Type:       dto.DocTypeEmployment,
		FileName:   id + ".pdf",
		UploadDate: uploaded,
		Data: &dto.EmploymentData{
			EmployerName:      &name,
			EmploymentIncome:  f64(50000),
			IncomeTaxWithheld: f64(8000),
		},
		Confidence:  50,
		NeedsReview: true,
	}
}

func storeImplementations(t *testing.T) map[string]DocumentStore {
	t.Helper()
	sqlite, err := OpenSQL(context.Background(), "sqlite", filepath.Join(t.TempDir(), "slips.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]DocumentStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestDocumentStore(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 30, 0, 123456789, time.UTC)

	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			later := sampleDocument("b-doc", base.Add(time.Minute))
			earlier := sampleDocument("a-doc", base)
			otherYear := sampleDocument("c-doc", base)
			require.NoError(t, store.Save(ctx, "tp-1", 2024, later))
			require.NoError(t, store.Save(ctx, "tp-1", 2024, earlier))
			require.NoError(t, store.Save(ctx, "tp-1", 2023, otherYear))

			got, err := store.Get(ctx, "a-doc")
			require.NoError(t, err)
			assert.Equal(t, dto.DocTypeEmployment, got.Type)
			assert.True(t, base.Equal(got.UploadDate))
			data, ok := got.Data.(*dto.EmploymentData)
			require.True(t, ok)
			assert.Equal(t, 50000.0, *data.EmploymentIncome)
			assert.Nil(t, data.CPPContributions)

			list, err := store.List(ctx, "tp-1", 2024)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "a-doc", list[0].ID)
			assert.Equal(t, "b-doc", list[1].ID)

			empty, err := store.List(ctx, "tp-2", 2024)
			require.NoError(t, err)
			assert.Empty(t, empty)

			notes := "box 14 confirmed against paper copy"
			fees := 4500.0
			reviewed := false
			updated, err := store.Update(ctx, "a-doc", dto.ReviewUpdate{
				AdminNotes:  &notes,
				Data:        json.RawMessage(`{"employment_income": 51000, "income_tax_withheld": 8000}`),
				NeedsReview: &reviewed,
			}.Apply)
			require.NoError(t, err)
			assert.Equal(t, notes, updated.AdminNotes)
			assert.False(t, updated.NeedsReview)

			got, err = store.Get(ctx, "a-doc")
			require.NoError(t, err)
			assert.Equal(t, notes, got.AdminNotes)
			assert.Equal(t, 51000.0, *got.Data.(*dto.EmploymentData).EmploymentIncome)
			assert.Nil(t, got.Data.(*dto.EmploymentData).EmployerName)

			_, err = store.Update(ctx, "a-doc", dto.ReviewUpdate{
				Data: json.RawMessage(`{"eligible_fees": 4500}`),
			}.Apply)
			assert.ErrorIs(t, err, dto.ErrDocumentDataMismatch)

			_, err = store.Update(ctx, "b-doc", func(doc *dto.ParsedDocument) error {
				doc.Type = dto.DocTypeTuition
				doc.Data = &dto.TuitionData{EligibleFees: &fees}
				doc.Confidence = 75
				return nil
			})
			require.NoError(t, err)
			got, err = store.Get(ctx, "b-doc")
			require.NoError(t, err)
			assert.Equal(t, dto.DocTypeTuition, got.Type)
			assert.Equal(t, 75, got.Confidence)
			assert.Equal(t, 4500.0, *got.Data.(*dto.TuitionData).EligibleFees)

			require.NoError(t, store.Delete(ctx, "a-doc"))
			_, err = store.Get(ctx, "a-doc")
			assert.ErrorIs(t, err, dto.ErrDocumentNotFound)
			assert.ErrorIs(t, store.Delete(ctx, "a-doc"), dto.ErrDocumentNotFound)
			_, err = store.Update(ctx, "a-doc", dto.ReviewUpdate{AdminNotes: &notes}.Apply)
			assert.ErrorIs(t, err, dto.ErrDocumentNotFound)
		})
	}
}

func TestOpenSQLRejectsUnknownDriver(t *testing.T) {
	_, err := OpenSQL(context.Background(), "oracle", "", nil)
	assert.Error(t, err)
}
