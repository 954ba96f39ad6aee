package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/tax-slip-engine/client"
	"github.com/Aashish23092/tax-slip-engine/dto"
)

type fakePDF struct {
	text   string
	images []image.Image
	imgErr error
}

func (f fakePDF) ExtractText([]byte) (string, error) { return f.text, nil }

func (f fakePDF) ExtractImages([]byte) ([]image.Image, error) { return f.images, f.imgErr }

type fakeRecognizer struct {
	text  string
	err   error
	block bool
	calls atomic.Int32
}

func (f *fakeRecognizer) Recognize(ctx context.Context, _ []byte) (client.OCRResult, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return client.OCRResult{}, ctx.Err()
	}
	return client.OCRResult{Text: f.text, Confidence: 90}, f.err
}

func qrImage(t *testing.T, payload string) image.Image {
	t.Helper()
	m, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 240, 240, nil)
	require.NoError(t, err)
	return m
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAcquireRejectsUnsupportedType(t *testing.T) {
	a := NewTextAcquirer(fakePDF{}, nil, 0, 0, nil)

	_, err := a.Acquire(context.Background(), dto.UploadedFile{FileName: "notes.txt", MIMEType: "text/plain", Data: []byte("hello")})
	assert.ErrorIs(t, err, dto.ErrUnsupportedFileType)
}

func TestAcquireRejectsLargeFiles(t *testing.T) {
	a := NewTextAcquirer(fakePDF{}, nil, 0, 4, nil)

	_, err := a.Acquire(context.Background(), dto.UploadedFile{FileName: "t4.pdf", Data: []byte("%PDF-1.7 ...")})
	assert.ErrorIs(t, err, dto.ErrFileTooLarge)
}

func TestAcquirePDFUsesTextLayer(t *testing.T) {
	ocr := &fakeRecognizer{text: "should not be used"}
	a := NewTextAcquirer(fakePDF{text: sampleT4}, nil, time.Second, 0, nil, ocr)

	text, err := a.Acquire(context.Background(), dto.UploadedFile{FileName: "t4.pdf", MIMEType: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, sampleT4, text)
	assert.Zero(t, ocr.calls.Load())
}

func TestAcquireScannedPDFFallsBackToSecondEngine(t *testing.T) {
	remote := &fakeRecognizer{err: errors.New("service unavailable")}
	local := &fakeRecognizer{text: sampleT4}
	pdf := fakePDF{text: "  T4 ", images: []image.Image{image.NewGray(image.Rect(0, 0, 8, 8))}}
	a := NewTextAcquirer(pdf, nil, time.Second, 0, nil, remote, local)

	text, err := a.Acquire(context.Background(), dto.UploadedFile{FileName: "scan.pdf", MIMEType: "application/pdf"})
	require.NoError(t, err)
	assert.Contains(t, text, "Statement of Remuneration Paid")
	assert.Equal(t, int32(1), remote.calls.Load())
	assert.Equal(t, int32(1), local.calls.Load())
}

func TestAcquireImageSkipsShortOCRResult(t *testing.T) {
	remote := &fakeRecognizer{text: "T4"}
	local := &fakeRecognizer{text: sampleT4}
	a := NewTextAcquirer(fakePDF{}, nil, time.Second, 0, nil, remote, local)

	text, err := a.Acquire(context.Background(), dto.UploadedFile{FileName: "t4.jpg", Data: []byte("not really a jpeg")})
	require.NoError(t, err)
	assert.Equal(t, sampleT4, text)
}

func TestAcquireImageNoText(t *testing.T) {
	a := NewTextAcquirer(fakePDF{}, NewBarcodeReader(), time.Second, 0, nil, &fakeRecognizer{err: errors.New("blank page")})

	_, err := a.Acquire(context.Background(), dto.UploadedFile{FileName: "blank.png", MIMEType: "image/png", Data: []byte("garbage")})
	assert.ErrorIs(t, err, dto.ErrNoTextExtracted)
}

func TestAcquireTimesOut(t *testing.T) {
	a := NewTextAcquirer(fakePDF{}, nil, 30*time.Millisecond, 0, nil, &fakeRecognizer{block: true})

	start := time.Now()
	_, err := a.Acquire(context.Background(), dto.UploadedFile{FileName: "slow.png", MIMEType: "image/png"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAcquireAppendsBarcodePayload(t *testing.T) {
	payload := "DONATION|RECEIPT-8841|AMOUNT=250.00"
	data := pngBytes(t, qrImage(t, payload))
	ocr := &fakeRecognizer{text: "Official donation receipt for income tax purposes"}
	a := NewTextAcquirer(fakePDF{}, NewBarcodeReader(), time.Second, 0, nil, ocr)

	text, err := a.Acquire(context.Background(), dto.UploadedFile{FileName: "gift.png", MIMEType: "image/png", Data: data})
	require.NoError(t, err)
	assert.Contains(t, text, "Official donation receipt")
	assert.Contains(t, text, payload)
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		file dto.UploadedFile
		want fileKind
	}{
		{"declared pdf", dto.UploadedFile{FileName: "x", MIMEType: "application/pdf"}, kindPDF},
		{"declared with params", dto.UploadedFile{FileName: "x", MIMEType: "image/jpeg; q=0.9"}, kindImage},
		{"extension", dto.UploadedFile{FileName: "SLIP.TIFF", MIMEType: "application/octet-stream"}, kindImage},
		{"sniffed pdf", dto.UploadedFile{FileName: "upload", Data: []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3")}, kindPDF},
		{"unsupported", dto.UploadedFile{FileName: "a.docx", MIMEType: "application/msword", Data: []byte("PK")}, kindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectKind(tt.file))
		})
	}
}

func TestBarcodeReaderDecodesQR(t *testing.T) {
	text, ok := NewBarcodeReader().Decode(qrImage(t, "RL-1 2024 A=40000.00"))
	require.True(t, ok)
	assert.Equal(t, "RL-1 2024 A=40000.00", text)

	_, ok = NewBarcodeReader().Decode(image.NewGray(image.Rect(0, 0, 50, 50)))
	assert.False(t, ok)
}
