package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Aashish23092/tax-slip-engine/client"
	"github.com/Aashish23092/tax-slip-engine/dto"
)

// A PDF whose text layer is shorter than this is treated as scanned.
const minTextLayerLength = 20

// OCR output shorter than this is treated as a failed recognition and the
// next engine is tried.
const minOCRTextLength = 10

// ImageRecognizer runs OCR on one encoded image.
type ImageRecognizer interface {
	Recognize(ctx context.Context, image []byte) (client.OCRResult, error)
}

type fileKind int

const (
	kindUnsupported fileKind = iota
	kindPDF
	kindImage
)

var kindByMIME = map[string]fileKind{
	"application/pdf": kindPDF,
	"image/png":       kindImage,
	"image/jpeg":      kindImage,
	"image/jpg":       kindImage,
	"image/tiff":      kindImage,
}

var kindByExtension = map[string]fileKind{
	".pdf":  kindPDF,
	".png":  kindImage,
	".jpg":  kindImage,
	".jpeg": kindImage,
	".tif":  kindImage,
	".tiff": kindImage,
}

// TextAcquirer recovers raw text from an uploaded PDF or image.
type TextAcquirer struct {
	pdfProcessor PDFProcessor
	barcode      BarcodeReader
	recognizers  []ImageRecognizer
	timeout      time.Duration
	maxFileSize  int64
	logger       *zap.Logger
}

// NewTextAcquirer builds an acquirer that tries recognizers in order for
// every image. A zero timeout or size disables that limit.
func NewTextAcquirer(
	pdfProcessor PDFProcessor,
	barcode BarcodeReader,
	timeout time.Duration,
	maxFileSize int64,
	logger *zap.Logger,
	recognizers ...ImageRecognizer,
) *TextAcquirer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextAcquirer{
		pdfProcessor: pdfProcessor,
		barcode:      barcode,
		recognizers:  recognizers,
		timeout:      timeout,
		maxFileSize:  maxFileSize,
		logger:       logger,
	}
}

// Acquire returns the text of file. The whole call, OCR included, is
// bounded by the acquirer's timeout.
func (a *TextAcquirer) Acquire(ctx context.Context, file dto.UploadedFile) (string, error) {
	if a.maxFileSize > 0 && int64(len(file.Data)) > a.maxFileSize {
		return "", dto.NewValidationError(dto.ErrFileTooLarge, file.FileName, fmt.Sprintf("%d bytes", len(file.Data)))
	}
	kind := detectKind(file)
	if kind == kindUnsupported {
		return "", dto.NewValidationError(dto.ErrUnsupportedFileType, file.FileName, file.MIMEType)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	var (
		text string
		err  error
	)
	switch kind {
	case kindPDF:
		text, err = a.acquirePDF(ctx, file)
	case kindImage:
		text, err = a.acquireImage(ctx, file)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", file.FileName, dto.ErrNoTextExtracted)
	}
	return text, nil
}

func (a *TextAcquirer) acquirePDF(ctx context.Context, file dto.UploadedFile) (string, error) {
	text, err := a.pdfProcessor.ExtractText(file.Data)
	if err != nil {
		a.logger.Warn("pdf text extraction failed", zap.String("file", file.FileName), zap.Error(err))
	}
	if len(strings.TrimSpace(text)) >= minTextLayerLength {
		return text, nil
	}

	a.logger.Info("pdf has no usable text layer, running OCR on page images", zap.String("file", file.FileName))
	images, imgErr := a.pdfProcessor.ExtractImages(file.Data)
	if imgErr != nil {
		return "", fmt.Errorf("%s: %w", file.FileName, errors.Join(dto.ErrNoTextExtracted, imgErr))
	}

	var combined strings.Builder
	for i, img := range images {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			a.logger.Warn("failed to encode page image", zap.String("file", file.FileName), zap.Int("image", i+1), zap.Error(err))
			continue
		}
		pageText, err := a.recognize(ctx, buf.Bytes())
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("%s: %w", file.FileName, ctx.Err())
			}
			a.logger.Warn("OCR failed for page image", zap.String("file", file.FileName), zap.Int("image", i+1), zap.Error(err))
		}
		combined.WriteString(pageText)
		combined.WriteString("\n")
		a.appendBarcode(&combined, img)
	}
	if strings.TrimSpace(combined.String()) == "" {
		// Keep whatever the short text layer had.
		return text, nil
	}
	return combined.String(), nil
}

func (a *TextAcquirer) acquireImage(ctx context.Context, file dto.UploadedFile) (string, error) {
	text, err := a.recognize(ctx, file.Data)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", file.FileName, ctx.Err())
		}
		a.logger.Warn("OCR failed", zap.String("file", file.FileName), zap.Error(err))
	}

	var combined strings.Builder
	combined.WriteString(text)
	// TIFF has no standard decoder, so only PNG and JPEG are scanned for codes.
	if img, decErr := decodeImage(file.Data); decErr == nil {
		a.appendBarcode(&combined, img)
	}
	if strings.TrimSpace(combined.String()) == "" && err != nil {
		return "", fmt.Errorf("%s: %w", file.FileName, errors.Join(dto.ErrNoTextExtracted, err))
	}
	return combined.String(), nil
}

// recognize tries each engine in turn and keeps the first useful result.
func (a *TextAcquirer) recognize(ctx context.Context, img []byte) (string, error) {
	if len(a.recognizers) == 0 {
		return "", errors.New("no OCR engine configured")
	}
	var (
		best    string
		lastErr error
	)
	for _, r := range a.recognizers {
		res, err := r.Recognize(ctx, img)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return best, ctx.Err()
			}
			continue
		}
		if len(strings.TrimSpace(res.Text)) >= minOCRTextLength {
			return res.Text, nil
		}
		if len(res.Text) > len(best) {
			best = res.Text
		}
	}
	if best != "" {
		return best, nil
	}
	return "", lastErr
}

func (a *TextAcquirer) appendBarcode(b *strings.Builder, img image.Image) {
	if a.barcode == nil {
		return
	}
	if payload, ok := a.barcode.Decode(img); ok {
		b.WriteString("\n")
		b.WriteString(payload)
		b.WriteString("\n")
	}
}

// detectKind uses the declared MIME type, then the extension, then the
// leading bytes of the file.
func detectKind(file dto.UploadedFile) fileKind {
	if mt, _, err := mime.ParseMediaType(file.MIMEType); err == nil {
		if kind, ok := kindByMIME[mt]; ok {
			return kind
		}
	}
	if kind, ok := kindByExtension[file.Extension()]; ok {
		return kind
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(file.Data))
	return kindByMIME[sniffed]
}
