package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/skip2/go-qrcode"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/config"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/payload"
)

// ErrInvalidRef is returned for refs that cannot be printed as a product barcode
var ErrInvalidRef = errors.New("invalid product reference")

const minModuleWidth = 2

type BarcodeService struct {
	cfg config.BarcodeConfig
}

func NewBarcodeService(cfg config.BarcodeConfig) *BarcodeService {
	if cfg.Width <= 0 {
		cfg.Width = 400
	}
	if cfg.Height <= 0 {
		cfg.Height = 120
	}
	// Code128 needs at least ten modules of quiet zone on each side
	if cfg.QuietZone < 10 {
		cfg.QuietZone = 10
	}
	if cfg.QRSize <= 0 {
		cfg.QRSize = 256
	}
	return &BarcodeService{cfg: cfg}
}

// RefFromProduct builds the payload ref a product's barcode carries
func RefFromProduct(p models.Product) payload.ProductRef {
	return payload.ProductRef{SKU: p.SKU, Price: p.Price, Quantity: p.Quantity}
}

// ValidateRef checks that a ref can be printed: a non-empty SKU of printable
// ASCII without whitespace or the payload delimiter, a price within the payload
// limits and a non-negative quantity.
func ValidateRef(ref payload.ProductRef) error {
	sku := strings.TrimSpace(ref.SKU)
	if sku == "" {
		return fmt.Errorf("%w: sku is required", ErrInvalidRef)
	}
	if strings.Contains(sku, payload.Delimiter) {
		return payload.ErrDelimiterInSKU
	}
	for i := 0; i < len(sku); i++ {
		if c := sku[i]; c <= 0x20 || c > 0x7E {
			return fmt.Errorf("%w: sku %q contains whitespace or non-printable characters", ErrInvalidRef, sku)
		}
	}
	if err := payload.CheckPrice(ref.Price); err != nil {
		return fmt.Errorf("%w: price must be non-negative with at most %d integer digits and %d decimals",
			ErrInvalidRef, payload.MaxPriceIntegerDigits, payload.MaxPriceScale)
	}
	if ref.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidRef)
	}
	return nil
}

// EncodeRef validates a ref and returns its payload text
func (s *BarcodeService) EncodeRef(ref payload.ProductRef) (string, error) {
	if err := ValidateRef(ref); err != nil {
		return "", err
	}
	return payload.Encode(ref)
}

// RenderCode128 draws text as a Code128 symbol on a white canvas with a quiet zone.
// Modules are a whole number of pixels wide so the bars stay crisp.
func (s *BarcodeService) RenderCode128(text string) (image.Image, error) {
	bc, err := code128.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode barcode: %w", err)
	}

	modules := bc.Bounds().Dx()
	factor := s.cfg.Width / (modules + 2*s.cfg.QuietZone)
	if factor < minModuleWidth {
		factor = minModuleWidth
	}

	barHeight := s.cfg.Height - s.cfg.Height/5
	scaled, err := barcode.Scale(bc, modules*factor, barHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to scale barcode: %w", err)
	}

	pad := s.cfg.QuietZone * factor
	canvas := image.NewRGBA(image.Rect(0, 0, modules*factor+2*pad, s.cfg.Height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	offset := image.Pt(pad, (s.cfg.Height-barHeight)/2)
	draw.Draw(canvas, scaled.Bounds().Add(offset), scaled, scaled.Bounds().Min, draw.Src)
	return canvas, nil
}

// GenerateProductBarcode renders the Code128 PNG for a ref and returns it with the payload text
func (s *BarcodeService) GenerateProductBarcode(ref payload.ProductRef) ([]byte, string, error) {
	text, err := s.EncodeRef(ref)
	if err != nil {
		return nil, "", err
	}

	img, err := s.RenderCode128(text)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("failed to encode barcode as PNG: %w", err)
	}
	return buf.Bytes(), text, nil
}

// GenerateProductQR renders the same payload as a QR symbol
func (s *BarcodeService) GenerateProductQR(ref payload.ProductRef, size int) ([]byte, string, error) {
	text, err := s.EncodeRef(ref)
	if err != nil {
		return nil, "", err
	}
	if size <= 0 {
		size = s.cfg.QRSize
	}

	pngBytes, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create QR code: %w", err)
	}
	return pngBytes, text, nil
}

// PreviewDataURL returns the barcode as an inline data URL together with its payload
func (s *BarcodeService) PreviewDataURL(ref payload.ProductRef) (string, string, error) {
	pngBytes, text, err := s.GenerateProductBarcode(ref)
	if err != nil {
		return "", "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes), text, nil
}
