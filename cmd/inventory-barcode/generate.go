package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/payload"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/services"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		sku      string
		price    string
		quantity int64
		out      string
		qr       bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the barcode for a product reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price %q: %w", price, err)
			}
			ref := payload.ProductRef{SKU: sku, Price: p, Quantity: quantity}

			barcodes := services.NewBarcodeService(a.cfg.Barcode)
			var (
				img  []byte
				text string
			)
			if qr {
				img, text, err = barcodes.GenerateProductQR(ref, 0)
			} else {
				img, text, err = barcodes.GenerateProductBarcode(ref)
			}
			if err != nil {
				return err
			}

			location := out
			if location == "" {
				store := services.NewBarcodeStore(a.cfg.Barcode.StoreDir, a.cfg.Barcode.BaseURL)
				if _, err := store.Save(ref.SKU, img); err != nil {
					return err
				}
				location = store.Dir() + "/" + services.FileName(ref.SKU)
			} else if err := os.WriteFile(out, img, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			a.log.LogBusinessEvent("barcode_generated", "product", "generate", map[string]interface{}{
				"payload": text,
				"file":    location,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", text, location)
			return nil
		},
	}

	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	cmd.Flags().StringVar(&price, "price", "0", "unit price")
	cmd.Flags().Int64Var(&quantity, "quantity", 0, "stock quantity")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG path (defaults to the barcode store)")
	cmd.Flags().BoolVar(&qr, "qr", false, "render a QR code instead of Code128")
	_ = cmd.MarkFlagRequired("sku")
	return cmd
}

func newLabelsCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "labels [product ids...]",
		Short: "Write an A4 label sheet PDF for catalog products",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.catalog()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Database.QueryTimeout)
			defer cancel()
			list, err := products.GetByIDs(ctx, args)
			if err != nil {
				return err
			}

			pdfBytes, err := services.NewLabelService(services.NewBarcodeService(a.cfg.Barcode)).LabelSheetPDF(list)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, pdfBytes, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d labels -> %s\n", len(list), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "labels.pdf", "output PDF path")
	return cmd
}
