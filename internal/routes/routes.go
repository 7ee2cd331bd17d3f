package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/handlers"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Barcode *handlers.BarcodeHandler
	Scanner *handlers.ScannerHandler
	Health  *handlers.HealthHandler

	// DecodeMiddleware guards the image upload endpoint
	DecodeMiddleware []gin.HandlerFunc
}

// StaticDir serves generated barcode images
type StaticDir struct {
	URL string
	Dir string
}

// Setup registers the API routes
func Setup(r *gin.Engine, h Handlers, static *StaticDir) {
	r.GET("/health", h.Health.Health)

	if static != nil && static.URL != "" && static.Dir != "" {
		r.Static(static.URL, static.Dir)
	}

	products := r.Group("/api/products")
	{
		products.POST("/generate-barcode-preview", h.Barcode.GeneratePreview)
		products.POST("/labels", h.Barcode.GenerateLabels)
		products.GET("/:id/barcode", h.Barcode.GetProductBarcode)
		products.GET("/:id/label", h.Barcode.GetProductLabel)
	}

	scanAPI := r.Group("/api/scan")
	{
		scanAPI.POST("/resolve", h.Scanner.Resolve)
		decode := append(append([]gin.HandlerFunc{}, h.DecodeMiddleware...), h.Scanner.Decode)
		scanAPI.POST("/decode", decode...)
		scanAPI.GET("/status", h.Scanner.Status)
	}
}
