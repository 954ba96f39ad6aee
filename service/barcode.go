package service

import (
	"bytes"
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// BarcodeReader decodes a machine-readable payload printed on a slip.
// Some issuers print a QR code carrying the slip amounts.
type BarcodeReader interface {
	Decode(img image.Image) (string, bool)
}

type qrBarcodeReader struct{}

func NewBarcodeReader() BarcodeReader {
	return qrBarcodeReader{}
}

func (qrBarcodeReader) Decode(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(result.GetText())
	return text, text != ""
}

// decodeImage decodes PNG or JPEG bytes.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
