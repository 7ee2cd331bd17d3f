package scan

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Image decode errors
var (
	ErrNoCodeFound  = errors.New("no barcode found")
	ErrInvalidImage = errors.New("invalid image data")
)

// Decoded is the textual result of an optical decode
type Decoded struct {
	Text      string `json:"text"`
	Symbology string `json:"symbology"`
}

// ImageDecoder turns uploaded images into scan text using gozxing readers
type ImageDecoder struct {
	readers []gozxing.Reader
	formats []gozxing.BarcodeFormat
}

// NewImageDecoder creates a decoder trying Code128 first, since that is what the generator prints
func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{
		readers: []gozxing.Reader{
			oned.NewCode128Reader(),
			oned.NewCode39Reader(),
			oned.NewEAN13Reader(),
			oned.NewEAN8Reader(),
			oned.NewUPCAReader(),
			oned.NewITFReader(),
			qrcode.NewQRCodeReader(),
		},
		formats: []gozxing.BarcodeFormat{
			gozxing.BarcodeFormat_CODE_128,
			gozxing.BarcodeFormat_CODE_39,
			gozxing.BarcodeFormat_EAN_13,
			gozxing.BarcodeFormat_EAN_8,
			gozxing.BarcodeFormat_UPC_A,
			gozxing.BarcodeFormat_ITF,
			gozxing.BarcodeFormat_QR_CODE,
		},
	}
}

// DecodeBase64 accepts plain base64 or a data URL (data:image/png;base64,...)
func (d *ImageDecoder) DecodeBase64(imageData string) (*Decoded, error) {
	if idx := strings.Index(imageData, ";base64,"); strings.HasPrefix(imageData, "data:") && idx >= 0 {
		imageData = imageData[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: base64 decode failed: %v", ErrInvalidImage, err)
	}
	return d.DecodeBytes(data)
}

// DecodeBytes decodes a PNG or JPEG image
func (d *ImageDecoder) DecodeBytes(data []byte) (*Decoded, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return d.DecodeImage(img)
}

// DecodeImage runs each reader until one recognises a symbol
func (d *ImageDecoder) DecodeImage(img image.Image) (*Decoded, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_POSSIBLE_FORMATS: d.formats,
		gozxing.DecodeHintType_TRY_HARDER:       true,
	}

	for _, reader := range d.readers {
		result, decodeErr := reader.Decode(bmp, hints)
		if decodeErr == nil && result != nil {
			return &Decoded{
				Text:      result.GetText(),
				Symbology: formatName(result.GetBarcodeFormat()),
			}, nil
		}
	}
	return nil, ErrNoCodeFound
}

func formatName(format gozxing.BarcodeFormat) string {
	switch format {
	case gozxing.BarcodeFormat_CODE_128:
		return "CODE_128"
	case gozxing.BarcodeFormat_CODE_39:
		return "CODE_39"
	case gozxing.BarcodeFormat_EAN_13:
		return "EAN_13"
	case gozxing.BarcodeFormat_EAN_8:
		return "EAN_8"
	case gozxing.BarcodeFormat_UPC_A:
		return "UPC_A"
	case gozxing.BarcodeFormat_ITF:
		return "ITF"
	case gozxing.BarcodeFormat_QR_CODE:
		return "QR_CODE"
	default:
		return "UNKNOWN"
	}
}
