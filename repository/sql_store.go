package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

const documentsTable = "parsed_documents"

// Fixed-width so the text column sorts chronologically.
const uploadDateLayout = "2006-01-02T15:04:05.000000000Z"

var documentColumns = []string{
	"id", "doc_type", "file_name", "upload_date", "data", "confidence", "needs_review", "admin_notes",
}

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS parsed_documents (
	id           TEXT PRIMARY KEY,
	taxpayer_id  TEXT NOT NULL,
	tax_year     INTEGER NOT NULL,
	doc_type     TEXT NOT NULL,
	file_name    TEXT NOT NULL,
	upload_date  TEXT NOT NULL,
	data         TEXT NOT NULL,
	confidence   INTEGER NOT NULL,
	needs_review BOOLEAN NOT NULL,
	admin_notes  TEXT NOT NULL DEFAULT ''
)`

const createTaxpayerIndex = `CREATE INDEX IF NOT EXISTS idx_parsed_documents_taxpayer_year
	ON parsed_documents (taxpayer_id, tax_year)`

// SQLStore keeps documents in Postgres or SQLite through database/sql.
type SQLStore struct {
	db     *sql.DB
	sb     squirrel.StatementBuilderType
	logger *zap.Logger
}

// OpenSQL opens a store for driver "postgres" (pgx) or "sqlite" (modernc)
// and creates the schema if needed.
func OpenSQL(ctx context.Context, driver, dsn string, logger *zap.Logger) (*SQLStore, error) {
	var (
		sqlDriver   string
		placeholder squirrel.PlaceholderFormat
	)
	switch driver {
	case "postgres":
		sqlDriver, placeholder = "pgx", squirrel.Dollar
	case "sqlite":
		sqlDriver, placeholder = "sqlite", squirrel.Question
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// A single connection avoids SQLITE_BUSY between concurrent writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	store := NewSQLStore(db, placeholder, logger)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewSQLStore(db *sql.DB, placeholder squirrel.PlaceholderFormat, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{
		db:     db,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		logger: logger,
	}
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createDocumentsTable, createTaxpayerIndex} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Save(ctx context.Context, taxpayerID string, year int, doc dto.ParsedDocument) error {
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("encode document data: %w", err)
	}

	query, args, err := s.sb.Insert(documentsTable).
		Columns("id", "taxpayer_id", "tax_year", "doc_type", "file_name", "upload_date", "data", "confidence", "needs_review", "admin_notes").
		Values(doc.ID, taxpayerID, year, string(doc.Type), doc.FileName, formatUploadDate(doc.UploadDate), string(data), doc.Confidence, doc.NeedsReview, doc.AdminNotes).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (dto.ParsedDocument, error) {
	query, args, err := s.sb.Select(documentColumns...).
		From(documentsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return dto.ParsedDocument{}, err
	}

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return dto.ParsedDocument{}, dto.ErrDocumentNotFound
	}
	return doc, err
}

func (s *SQLStore) List(ctx context.Context, taxpayerID string, year int) ([]dto.ParsedDocument, error) {
	query, args, err := s.sb.Select(documentColumns...).
		From(documentsTable).
		Where(squirrel.Eq{"taxpayer_id": taxpayerID, "tax_year": year}).
		OrderBy("upload_date", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []dto.ParsedDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, id string, apply func(*dto.ParsedDocument) error) (dto.ParsedDocument, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return dto.ParsedDocument{}, err
	}
	if err := apply(&doc); err != nil {
		return dto.ParsedDocument{}, err
	}
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return dto.ParsedDocument{}, fmt.Errorf("encode document data: %w", err)
	}

	query, args, err := s.sb.Update(documentsTable).
		Set("doc_type", string(doc.Type)).
		Set("data", string(data)).
		Set("confidence", doc.Confidence).
		Set("admin_notes", doc.AdminNotes).
		Set("needs_review", doc.NeedsReview).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return dto.ParsedDocument{}, err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return dto.ParsedDocument{}, fmt.Errorf("update document %s: %w", id, err)
	}
	s.logger.Info("document updated", zap.String("id", id), zap.String("type", string(doc.Type)))
	return doc, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	query, args, err := s.sb.Delete(documentsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return dto.ErrDocumentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (dto.ParsedDocument, error) {
	var (
		doc        dto.ParsedDocument
		docType    string
		uploadDate string
		data       string
	)
	if err := row.Scan(&doc.ID, &docType, &doc.FileName, &uploadDate, &data, &doc.Confidence, &doc.NeedsReview, &doc.AdminNotes); err != nil {
		return dto.ParsedDocument{}, err
	}

	doc.Type = dto.DocumentType(docType)
	slipData, err := dto.DecodeSlipData(doc.Type, []byte(data))
	if err != nil {
		return dto.ParsedDocument{}, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	doc.Data = slipData

	doc.UploadDate, err = time.Parse(uploadDateLayout, uploadDate)
	if err != nil {
		return dto.ParsedDocument{}, fmt.Errorf("document %s upload date: %w", doc.ID, err)
	}
	return doc, nil
}

func formatUploadDate(t time.Time) string {
	return t.UTC().Format(uploadDateLayout)
}
