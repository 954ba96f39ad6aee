package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrRemoteOCRDisabled is returned when no OCR service URL is configured.
var ErrRemoteOCRDisabled = errors.New("remote OCR is not configured")

// PaddleClient calls a PaddleOCR serving endpoint over HTTP
// (POST {"images": [base64]} returning {"results": [[{text, confidence}]]}).
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPaddleClient(apiURL string, timeout time.Duration, logger *zap.Logger) *PaddleClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaddleClient{
		apiURL:     strings.TrimSpace(apiURL),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Enabled reports whether a service URL is configured.
func (p *PaddleClient) Enabled() bool {
	return p != nil && p.apiURL != ""
}

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// Recognize sends one encoded image to the service.
func (p *PaddleClient) Recognize(ctx context.Context, image []byte) (OCRResult, error) {
	if !p.Enabled() {
		return OCRResult{}, ErrRemoteOCRDisabled
	}

	payload, err := json.Marshal(paddleRequest{Images: []string{base64.StdEncoding.EncodeToString(image)}})
	if err != nil {
		return OCRResult{}, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return OCRResult{}, fmt.Errorf("failed to build OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return OCRResult{}, fmt.Errorf("failed to call OCR service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return OCRResult{}, fmt.Errorf("OCR service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return OCRResult{}, fmt.Errorf("failed to decode OCR response: %w", err)
	}

	var text strings.Builder
	var total float64
	var lines int
	for _, page := range result.Results {
		for _, line := range page {
			text.WriteString(line.Text)
			text.WriteString("\n")
			total += line.Confidence
			lines++
		}
	}
	if lines == 0 {
		return OCRResult{}, errors.New("OCR service returned no text")
	}

	// The service reports 0-1 confidences.
	res := OCRResult{Text: text.String(), Confidence: total / float64(lines) * 100}
	p.logger.Debug("remote OCR complete", zap.Int("lines", lines), zap.Float64("confidence", res.Confidence))
	return res, nil
}
