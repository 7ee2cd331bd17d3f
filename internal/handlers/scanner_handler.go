package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/logger"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/payload"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/scan"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/session"
)

// Processor resolves raw scan text against the catalog
type Processor interface {
	Process(ctx context.Context, rawText, symbology string) scan.Attempt
}

// ScannerHandler exposes the resolve pipeline and the server-side image decoder
type ScannerHandler struct {
	processor     Processor
	decoder       *scan.ImageDecoder
	decodeEnabled bool
	maxImageBytes int
	log           *logger.StructuredLogger
}

func NewScannerHandler(processor Processor, decoder *scan.ImageDecoder, log *logger.StructuredLogger) *ScannerHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ScannerHandler{
		processor:     processor,
		decoder:       decoder,
		maxImageBytes: 4 << 20,
		log:           log.WithComponent("scanner"),
	}
}

// SetDecodeEnabled toggles POST /api/scan/decode
func (h *ScannerHandler) SetDecodeEnabled(enabled bool) {
	h.decodeEnabled = enabled
}

// SetMaxImageBytes bounds the size of uploaded image data
func (h *ScannerHandler) SetMaxImageBytes(n int) {
	if n > 0 {
		h.maxImageBytes = n
	}
}

type resolveRequest struct {
	RawText   string `json:"rawText" binding:"required"`
	Symbology string `json:"symbology"`
}

type decodeRequest struct {
	ImageData string `json:"imageData" binding:"required"`
}

type attemptResponse struct {
	Success        bool                `json:"success"`
	Outcome        scan.Outcome        `json:"outcome"`
	Match          scan.MatchKind      `json:"match"`
	Message        string              `json:"message,omitempty"`
	RawText        string              `json:"rawText"`
	Symbology      string              `json:"symbology,omitempty"`
	NormalizedText string              `json:"normalizedText"`
	Candidate      string              `json:"candidate"`
	Payload        *payload.ProductRef `json:"payload,omitempty"`
	PayloadError   string              `json:"payloadError,omitempty"`
	Product        *models.Product     `json:"product,omitempty"`
}

func respondAttempt(c *gin.Context, attempt scan.Attempt) {
	res := attemptResponse{
		Outcome:        attempt.Resolution.Outcome,
		Match:          attempt.Resolution.Match,
		RawText:        attempt.RawText,
		Symbology:      attempt.Symbology,
		NormalizedText: attempt.NormalizedText,
		Candidate:      attempt.Candidate,
		Payload:        attempt.Payload,
		Product:        attempt.Resolution.Product,
	}
	if attempt.DecodeErr != nil {
		res.PayloadError = attempt.DecodeErr.Error()
	}

	status := http.StatusOK
	switch attempt.Resolution.Outcome {
	case scan.Found:
		res.Success = true
	case scan.NotFound:
		status = http.StatusNotFound
		res.Message = session.MessageNotFound
	default:
		status = http.StatusServiceUnavailable
		res.Message = session.MessageScanError
	}
	c.JSON(status, res)
}

// Resolve maps scanned text onto a catalog product
func (h *ScannerHandler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "INVALID_REQUEST",
			"message": err.Error(),
		})
		return
	}

	respondAttempt(c, h.processor.Process(c.Request.Context(), req.RawText, req.Symbology))
}

// Decode reads a barcode from an uploaded image and resolves it
func (h *ScannerHandler) Decode(c *gin.Context) {
	if !h.decodeEnabled {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "FEATURE_DISABLED",
			"message": "Server-side decode is disabled",
		})
		return
	}

	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "INVALID_REQUEST",
			"message": err.Error(),
		})
		return
	}
	if len(req.ImageData) > h.maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "IMAGE_TOO_LARGE",
			"message": "Image data exceeds the upload limit",
		})
		return
	}

	decoded, err := h.decoder.DecodeBase64(req.ImageData)
	switch {
	case errors.Is(err, scan.ErrNoCodeFound):
		// valid request, nothing readable in the frame
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "NO_CODE_FOUND",
			"message": err.Error(),
		})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "INVALID_IMAGE",
			"message": err.Error(),
		})
		return
	}

	h.log.Debug("Image decoded", map[string]interface{}{"symbology": decoded.Symbology})
	respondAttempt(c, h.processor.Process(c.Request.Context(), decoded.Text, decoded.Symbology))
}

// Status reports whether server-side decoding is available
func (h *ScannerHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enabled":    h.decodeEnabled,
		"status":     "ready",
		"serverSide": true,
		"supportedFormats": []string{
			"CODE_128", "CODE_39", "EAN_13", "EAN_8",
			"UPC_A", "ITF", "QR_CODE",
		},
	})
}
