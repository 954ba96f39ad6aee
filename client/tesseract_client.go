package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

type TesseractClient struct {
	dataPath  string
	languages []string
	logger    *zap.Logger
}

// NewTesseractClient creates a client for the given tessdata directory.
// Slips are bilingual, so the default languages are English and French.
func NewTesseractClient(dataPath string, languages []string, logger *zap.Logger) *TesseractClient {
	if len(languages) == 0 {
		languages = []string{"eng", "fra"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TesseractClient{
		dataPath:  dataPath,
		languages: languages,
		logger:    logger,
	}
}

// Recognize runs OCR on an encoded image (PNG, JPEG or TIFF). Tesseract
// cannot be interrupted, so on context expiry the call returns immediately
// and the recognition finishes in the background.
func (tc *TesseractClient) Recognize(ctx context.Context, image []byte) (OCRResult, error) {
	type outcome struct {
		res OCRResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := tc.recognize(image)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return OCRResult{}, fmt.Errorf("tesseract: %w", ctx.Err())
	case o := <-done:
		return o.res, o.err
	}
}

func (tc *TesseractClient) recognize(image []byte) (OCRResult, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		client.SetTessdataPrefix(tc.dataPath)
	}
	if err := client.SetLanguage(tc.languages...); err != nil {
		return OCRResult{}, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return OCRResult{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return OCRResult{}, fmt.Errorf("failed to extract text: %w", err)
	}

	// Word boxes only feed the confidence figure.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		tc.logger.Debug("tesseract bounding boxes unavailable", zap.Error(err))
		return OCRResult{Text: text}, nil
	}

	var total float64
	for _, box := range boxes {
		total += box.Confidence
	}
	res := OCRResult{Text: text}
	if len(boxes) > 0 {
		res.Confidence = total / float64(len(boxes))
	}
	return res, nil
}

func (tc *TesseractClient) String() string {
	return "tesseract(" + strings.Join(tc.languages, "+") + ")"
}
