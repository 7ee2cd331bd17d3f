package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/config"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/logger"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/repository"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/scan"
)

var version = "dev"

type app struct {
	configPath string
	cfg        *config.Config
	log        *logger.StructuredLogger
	db         *repository.Database
}

func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       logger.ParseLevel(cfg.Logging.Level),
		Service:     "inventory-barcode",
		Version:     version,
		Environment: cfg.Logging.Environment,
		OutputPath:  cfg.Logging.File,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log
	logger.GlobalLogger = log
	return nil
}

// catalog opens the database lazily; only commands that read products need it
func (a *app) catalog() (*repository.ProductRepository, error) {
	if a.db == nil {
		db, err := repository.NewDatabase(&a.cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
	}
	return repository.NewProductRepository(a.db), nil
}

// scanService resolves scans with each catalog fetch bounded by the query timeout
func (a *app) scanService(products scan.Catalog) *scan.Service {
	svc := scan.NewService(products, a.log)
	svc.SetQueryTimeout(a.cfg.Database.QueryTimeout)
	return svc
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.log != nil {
		_ = a.log.Close()
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "inventory-barcode",
		Short:         "Barcode generation and scan resolution for the inventory catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (json, yaml or toml)")

	root.AddCommand(
		newServeCmd(a),
		newGenerateCmd(a),
		newLabelsCmd(a),
		newResolveCmd(a),
		newScanCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
