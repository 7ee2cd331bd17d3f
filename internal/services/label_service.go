package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
)

// Label sheet geometry: 3x7 grid on A4, in millimetres
const (
	sheetMargin   = 10.0
	labelWidth    = 63.0
	labelHeight   = 38.0
	labelsPerRow  = 3
	labelsPerCol  = 7
	labelsPerPage = labelsPerRow * labelsPerCol
)

// Label image size in pixels
const (
	labelPNGWidth  = 600
	labelPNGHeight = 300
)

type LabelService struct {
	barcodes *BarcodeService
}

func NewLabelService(barcodes *BarcodeService) *LabelService {
	return &LabelService{barcodes: barcodes}
}

func labelPrice(p models.Product) string {
	return "Price " + p.Price.StringFixed(2)
}

// truncate shortens s to max runes, ending in "..." when cut
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// LabelPNG renders one product label: barcode, SKU, name and price
func (s *LabelService) LabelPNG(p models.Product) ([]byte, error) {
	text, err := s.barcodes.EncodeRef(RefFromProduct(p))
	if err != nil {
		return nil, err
	}
	symbol, err := s.barcodes.RenderCode128(text)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, labelPNGWidth, labelPNGHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	drawRect(img, 4, 4, labelPNGWidth-8, labelPNGHeight-8, color.RGBA{200, 200, 200, 255})

	// nearest neighbour keeps module edges sharp
	barcodeRect := image.Rect(20, 20, labelPNGWidth-20, 180)
	xdraw.NearestNeighbor.Scale(img, barcodeRect, symbol, symbol.Bounds(), draw.Over, nil)

	black := color.RGBA{0, 0, 0, 255}
	drawText(img, p.SKU, 30, 210, black)
	drawText(img, truncate(p.DisplayName(), 70), 30, 240, black)
	drawText(img, labelPrice(p), 30, 270, black)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// LabelSheetPDF lays products out 21 to a page with their real Code128 symbols
func (s *LabelService) LabelSheetPDF(products []models.Product) ([]byte, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products for label sheet", ErrInvalidRef)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(sheetMargin, sheetMargin, sheetMargin)
	pdf.SetAutoPageBreak(false, 0)

	for pageStart := 0; pageStart < len(products); pageStart += labelsPerPage {
		pdf.AddPage()

		for i := 0; i < labelsPerPage && pageStart+i < len(products); i++ {
			row := i / labelsPerRow
			col := i % labelsPerRow
			x := sheetMargin + float64(col)*labelWidth
			y := sheetMargin + float64(row)*labelHeight

			if err := s.drawSheetLabel(pdf, products[pageStart+i], x, y); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *LabelService) drawSheetLabel(pdf *gofpdf.Fpdf, p models.Product, x, y float64) error {
	pngBytes, _, err := s.barcodes.GenerateProductBarcode(RefFromProduct(p))
	if err != nil {
		return fmt.Errorf("label for %s: %w", p.SKU, err)
	}

	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	name := "barcode-" + p.ProductID + "-" + FileName(p.SKU)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(pngBytes))
	pdf.ImageOptions(name, x+3, y+3, labelWidth-6, 18, false, opts, 0, "")

	pdf.SetXY(x+3, y+22)
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(labelWidth-6, 4, p.SKU, "", 0, "L", false, 0, "")

	pdf.SetXY(x+3, y+26)
	pdf.SetFont("Arial", "", 7)
	pdf.CellFormat(labelWidth-6, 4, truncate(p.DisplayName(), 34), "", 0, "L", false, 0, "")

	pdf.SetXY(x+3, y+30)
	pdf.CellFormat(labelWidth-6, 4, labelPrice(p), "", 0, "L", false, 0, "")

	return pdf.Error()
}

func drawRect(img *image.RGBA, x, y, width, height int, c color.RGBA) {
	for i := 0; i < width; i++ {
		img.Set(x+i, y, c)
		img.Set(x+i, y+height-1, c)
	}
	for i := 0; i < height; i++ {
		img.Set(x, y+i, c)
		img.Set(x+width-1, y+i, c)
	}
}

func drawText(img *image.RGBA, text string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: c},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
