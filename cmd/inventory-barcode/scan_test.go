package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/scan"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/session"
)

type staticCatalog []models.Product

func (c staticCatalog) FetchAll(ctx context.Context) ([]models.Product, error) {
	return c, nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunScanLoop(t *testing.T) {
	catalog := staticCatalog{
		{ProductID: "p1", SKU: "SR1001", Name: "Banarasi Silk Saree", Price: decimal.NewFromInt(2500), Quantity: 50},
	}

	var out bytes.Buffer
	var events syncBuffer
	sess := session.New(scan.NewService(catalog, nil), session.Options{Observer: printState(&events)})
	defer sess.Close()

	in := strings.NewReader("\n  \nSR1001|2500|50\n")
	require.NoError(t, runScanLoop(in, &out, sess))

	got := events.String()
	assert.Contains(t, got, "ready")
	assert.Contains(t, got, "Processing scan...")
	assert.Contains(t, got, "Found Banarasi Silk Saree [SR1001] price 2500.00, qty 50")
	assert.Empty(t, out.String())
}
