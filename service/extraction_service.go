package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Aashish23092/tax-slip-engine/dto"
	"github.com/Aashish23092/tax-slip-engine/utils/slip"
)

// Acquirer turns an uploaded file into raw text.
type Acquirer interface {
	Acquire(ctx context.Context, file dto.UploadedFile) (string, error)
}

// ExtractionService classifies slip text, extracts its fields and scores
// the result.
type ExtractionService struct {
	acquirer    Acquirer
	workers     int
	fileTimeout time.Duration
	now         func() time.Time
	newID       func() string
	logger      *zap.Logger
}

type ExtractionOption func(*ExtractionService)

// WithWorkers bounds how many files of a batch are processed at once.
func WithWorkers(n int) ExtractionOption {
	return func(s *ExtractionService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithFileTimeout bounds the acquisition of each file of a batch.
func WithFileTimeout(d time.Duration) ExtractionOption {
	return func(s *ExtractionService) { s.fileTimeout = d }
}

func WithClock(now func() time.Time) ExtractionOption {
	return func(s *ExtractionService) { s.now = now }
}

func WithIDGenerator(newID func() string) ExtractionOption {
	return func(s *ExtractionService) { s.newID = newID }
}

func NewExtractionService(acquirer Acquirer, logger *zap.Logger, opts ...ExtractionOption) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExtractionService{
		acquirer: acquirer,
		workers:  4,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interpret turns already acquired text into a ParsedDocument. It never
// fails: text nothing matches becomes an unclassified document that needs
// review.
func (s *ExtractionService) Interpret(fileName, text string) dto.ParsedDocument {
	docType := slip.Classify(text)
	data, found := slip.Extract(docType, text)
	confidence, needsReview := slip.Score(docType, found)

	s.logger.Debug("document interpreted",
		zap.String("file", fileName),
		zap.String("type", string(docType)),
		zap.Int("fields", found),
		zap.Int("confidence", confidence),
	)

	return dto.ParsedDocument{
		ID:          s.newID(),
		Type:        docType,
		FileName:    fileName,
		UploadDate:  s.now().UTC(),
		Data:        data,
		Confidence:  confidence,
		NeedsReview: needsReview,
	}
}

// ApplyReview returns a store mutator for a staff edit. A corrected type
// or record is scored again from its filled fields; an explicit
// needs_review in the edit overrides the score's flag.
func ApplyReview(update dto.ReviewUpdate) func(*dto.ParsedDocument) error {
	return func(doc *dto.ParsedDocument) error {
		if err := update.Apply(doc); err != nil {
			return err
		}
		if !update.ChangesData() {
			return nil
		}
		confidence, needsReview := slip.Score(doc.Type, slip.CountFields(doc.Data))
		doc.Confidence = confidence
		if update.NeedsReview == nil {
			doc.NeedsReview = needsReview
		}
		return nil
	}
}

// ExtractBatch acquires and interprets files in parallel. A file that
// fails is reported in Failures and does not affect its siblings; both
// lists keep the order of files.
func (s *ExtractionService) ExtractBatch(ctx context.Context, files []dto.UploadedFile) dto.BatchResult {
	docs := make([]*dto.ParsedDocument, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range files {
		g.Go(func() error {
			doc, err := s.extractOne(ctx, files[i])
			if err != nil {
				errs[i] = err
				return nil
			}
			docs[i] = &doc
			return nil
		})
	}
	_ = g.Wait()

	result := dto.BatchResult{
		Documents: make([]dto.ParsedDocument, 0, len(files)),
		Failures:  []dto.FileFailure{},
	}
	for i, file := range files {
		if errs[i] != nil {
			s.logger.Warn("document extraction failed",
				zap.String("file", file.FileName),
				zap.Error(errs[i]),
			)
			result.Failures = append(result.Failures, dto.FileFailure{
				FileName: file.FileName,
				Error:    errs[i].Error(),
			})
			continue
		}
		result.Documents = append(result.Documents, *docs[i])
	}
	return result
}

func (s *ExtractionService) extractOne(ctx context.Context, file dto.UploadedFile) (dto.ParsedDocument, error) {
	if s.fileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fileTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return dto.ParsedDocument{}, err
	}

	text, err := s.acquirer.Acquire(ctx, file)
	if err != nil {
		return dto.ParsedDocument{}, err
	}
	return s.Interpret(strings.TrimSpace(file.FileName), text), nil
}
