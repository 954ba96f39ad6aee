package client

// OCRResult is the text recognized on one image. Confidence is the mean
// word confidence on a 0-100 scale, or 0 when the engine does not report one.
type OCRResult struct {
	Text       string
	Confidence float64
}
