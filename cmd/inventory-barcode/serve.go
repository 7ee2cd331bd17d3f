package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/handlers"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/middleware"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/routes"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/scan"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/services"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(a)
		},
	}
}

func serve(a *app) error {
	products, err := a.catalog()
	if err != nil {
		return err
	}

	if a.cfg.Logging.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	barcodes := services.NewBarcodeService(a.cfg.Barcode)
	store := services.NewBarcodeStore(a.cfg.Barcode.StoreDir, a.cfg.Barcode.BaseURL)

	scanner := handlers.NewScannerHandler(a.scanService(products), scan.NewImageDecoder(), a.log)
	scanner.SetDecodeEnabled(a.cfg.Scanner.ImageDecodeEnabled)
	scanner.SetMaxImageBytes(a.cfg.Scanner.MaxImageBytes)

	r := gin.New()
	r.Use(gin.Recovery(), a.log.LoggingMiddleware(), middleware.SecurityHeaders(), middleware.SlowRequests(a.log, 2*time.Second))
	routes.Setup(r, routes.Handlers{
		Barcode: handlers.NewBarcodeHandler(barcodes, services.NewLabelService(barcodes), store, products, a.log),
		Scanner: scanner,
		Health:  handlers.NewHealthHandler(a.db, version),

		DecodeMiddleware: []gin.HandlerFunc{
			middleware.NewRateLimiter(60, time.Minute).Middleware(),
			middleware.RequestSizeLimit(int64(a.cfg.Scanner.MaxImageBytes) + 1024),
		},
	}, &routes.StaticDir{URL: store.BaseURL(), Dir: store.Dir()})

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.LogSystemEvent("http_listen", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case err := <-errc:
		return err
	case s := <-sigc:
		a.log.LogSystemEvent("shutdown_signal", map[string]interface{}{"signal": s.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	a.log.LogSystemEvent("server_stopped")
	return nil
}
