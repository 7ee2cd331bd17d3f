package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrBarcodeNotStored is returned when no image exists for a SKU
var ErrBarcodeNotStored = errors.New("barcode not stored")

// BarcodeStore keeps generated barcode images on disk as {dir}/{sku}.png
type BarcodeStore struct {
	dir     string
	baseURL string
}

func NewBarcodeStore(dir, baseURL string) *BarcodeStore {
	if dir == "" {
		dir = "barcodes"
	}
	if baseURL == "" {
		baseURL = "/barcodes"
	}
	return &BarcodeStore{dir: dir, baseURL: baseURL}
}

// Dir is the directory images are written to
func (s *BarcodeStore) Dir() string {
	return s.dir
}

// BaseURL is the URL prefix the directory is served under
func (s *BarcodeStore) BaseURL() string {
	return s.baseURL
}

// FileName maps a SKU onto a safe file name
func FileName(sku string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(sku))
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "_"
	}
	return name + ".png"
}

// Save writes the image and returns the URL recorded as the product's BarcodeURL
func (s *BarcodeStore) Save(sku string, pngBytes []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create barcode directory: %w", err)
	}

	name := FileName(sku)
	if err := os.WriteFile(filepath.Join(s.dir, name), pngBytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write barcode %s: %w", name, err)
	}
	return path.Join(s.baseURL, name), nil
}

// Load reads a stored image back
func (s *BarcodeStore) Load(sku string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, FileName(sku)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBarcodeNotStored, sku)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read barcode for %s: %w", sku, err)
	}
	return data, nil
}
