package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/logger"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/payload"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/repository"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/services"
)

// ProductSource is the catalog access the barcode endpoints need
type ProductSource interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	UpdateBarcodeURL(ctx context.Context, id, url string) error
}

type BarcodeHandler struct {
	barcodes *services.BarcodeService
	labels   *services.LabelService
	store    *services.BarcodeStore
	products ProductSource
	log      *logger.StructuredLogger
}

func NewBarcodeHandler(barcodes *services.BarcodeService, labels *services.LabelService, store *services.BarcodeStore, products ProductSource, log *logger.StructuredLogger) *BarcodeHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &BarcodeHandler{
		barcodes: barcodes,
		labels:   labels,
		store:    store,
		products: products,
		log:      log.WithComponent("barcode"),
	}
}

type previewRequest struct {
	SKU      string          `json:"sku" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

type labelsRequest struct {
	ProductIDs []string `json:"productIds" binding:"required,min=1"`
}

func refError(c *gin.Context, err error) bool {
	if errors.Is(err, payload.ErrDelimiterInSKU) || errors.Is(err, services.ErrInvalidRef) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return true
	}
	return false
}

func (h *BarcodeHandler) productError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
		return
	}
	h.log.Error("Catalog lookup failed", err, map[string]interface{}{"path": c.FullPath()})
	c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Catalog unavailable"})
}

// GeneratePreview renders a barcode for an unsaved product
func (h *BarcodeHandler) GeneratePreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ref := payload.ProductRef{SKU: req.SKU, Price: req.Price, Quantity: req.Quantity}
	dataURL, text, err := h.barcodes.PreviewDataURL(ref)
	if err != nil {
		if refError(c, err) {
			return
		}
		h.log.Error("Barcode preview failed", err, map[string]interface{}{"sku": req.SKU})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate barcode"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"barcodePreview": dataURL,
			"payload":        text,
		},
	})
}

// GetProductBarcode returns a product's barcode PNG. Code128 images are also
// persisted and recorded as the product's barcode URL.
func (h *BarcodeHandler) GetProductBarcode(c *gin.Context) {
	id := c.Param("id")
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.productError(c, err)
		return
	}
	ref := services.RefFromProduct(*product)

	if c.Query("format") == "qr" {
		qrBytes, _, err := h.barcodes.GenerateProductQR(ref, 0)
		if err != nil {
			if refError(c, err) {
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "inline; filename="+services.FileName(product.SKU+"_qr"))
		c.Data(http.StatusOK, "image/png", qrBytes)
		return
	}

	pngBytes, text, err := h.barcodes.GenerateProductBarcode(ref)
	if err != nil {
		if refError(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if h.store != nil {
		url, err := h.store.Save(product.SKU, pngBytes)
		if err != nil {
			h.log.Warn("Barcode not persisted", map[string]interface{}{"sku": product.SKU, "error": err.Error()})
		} else if product.BarcodeURL == nil || *product.BarcodeURL != url {
			if err := h.products.UpdateBarcodeURL(c.Request.Context(), product.ProductID, url); err != nil {
				h.log.Warn("Barcode URL not recorded", map[string]interface{}{"product_id": product.ProductID, "error": err.Error()})
			}
		}
	}

	h.log.LogBusinessEvent("barcode_generated", "product", "generate", map[string]interface{}{
		"product_id": product.ProductID,
		"payload":    text,
	})
	c.Header("Content-Disposition", "inline; filename="+services.FileName(product.SKU))
	c.Data(http.StatusOK, "image/png", pngBytes)
}

// GetProductLabel returns a single printable label PNG
func (h *BarcodeHandler) GetProductLabel(c *gin.Context) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.productError(c, err)
		return
	}

	pngBytes, err := h.labels.LabelPNG(*product)
	if err != nil {
		if refError(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", pngBytes)
}

// GenerateLabels returns an A4 label sheet PDF for the requested products
func (h *BarcodeHandler) GenerateLabels(c *gin.Context) {
	var req labelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	products, err := h.products.GetByIDs(c.Request.Context(), req.ProductIDs)
	if err != nil {
		h.productError(c, err)
		return
	}

	pdfBytes, err := h.labels.LabelSheetPDF(products)
	if err != nil {
		if refError(c, err) {
			return
		}
		h.log.Error("Label sheet failed", err, map[string]interface{}{"count": len(products)})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate labels"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=product_labels.pdf")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
