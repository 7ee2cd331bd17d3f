package scan

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/payload"
)

func product(id, sku string, price, qty int64) models.Product {
	return models.Product{
		ProductID: id,
		SKU:       sku,
		Name:      "Product " + id,
		Price:     decimal.NewFromInt(price),
		Quantity:  qty,
	}
}

func sareeCatalog() []models.Product {
	return []models.Product{
		product("p1", "SR1001", 2500, 50),
		product("p2", "SR1002", 3200, 40),
		product("p3", "KU200", 900, 12),
	}
}

func TestResolveCleanPayload(t *testing.T) {
	attempt := Resolve("SR1001|2500|50", sareeCatalog())

	require.NotNil(t, attempt.Payload)
	assert.NoError(t, attempt.DecodeErr)
	assert.Equal(t, "SR1001", attempt.Candidate)
	assert.True(t, attempt.Payload.Price.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, int64(50), attempt.Payload.Quantity)

	assert.Equal(t, Found, attempt.Resolution.Outcome)
	assert.Equal(t, ExactMatch, attempt.Resolution.Match)
	require.NotNil(t, attempt.Resolution.Product)
	assert.Equal(t, "p1", attempt.Resolution.Product.ProductID)
}

func TestResolveMalformedPayloadFallsBackToBareSKU(t *testing.T) {
	attempt := Resolve("SR1001", sareeCatalog())

	assert.Nil(t, attempt.Payload)
	require.Error(t, attempt.DecodeErr)
	assert.True(t, errors.Is(attempt.DecodeErr, payload.ErrWrongFieldCount))
	assert.Equal(t, "SR1001", attempt.Candidate)
	assert.Equal(t, Found, attempt.Resolution.Outcome)
	assert.Equal(t, ExactMatch, attempt.Resolution.Match)
}

func TestResolveBadPriceStillMatchesWholeText(t *testing.T) {
	// Three fields with a bad price: the whole text becomes the candidate and
	// the fuzzy pass finds SR1001 inside it.
	attempt := Resolve("SR1001|abc|50", sareeCatalog())

	assert.Nil(t, attempt.Payload)
	assert.True(t, errors.Is(attempt.DecodeErr, payload.ErrInvalidPrice))
	assert.Equal(t, "SR1001|abc|50", attempt.Candidate)
	assert.Equal(t, Found, attempt.Resolution.Outcome)
	assert.Equal(t, FuzzyMatch, attempt.Resolution.Match)
	assert.Equal(t, "p1", attempt.Resolution.Product.ProductID)
}

func TestResolveFuzzyMatch(t *testing.T) {
	attempt := Resolve("SR10012", sareeCatalog())

	assert.Equal(t, Found, attempt.Resolution.Outcome)
	assert.Equal(t, FuzzyMatch, attempt.Resolution.Match)
	assert.Equal(t, "SR1001", attempt.Resolution.Product.SKU)
}

func TestResolveNotFound(t *testing.T) {
	attempt := Resolve("ZZZ999", sareeCatalog())

	assert.Equal(t, NotFound, attempt.Resolution.Outcome)
	assert.Equal(t, NoMatch, attempt.Resolution.Match)
	assert.Nil(t, attempt.Resolution.Product)
}

func TestMatchSKU(t *testing.T) {
	t.Run("exact is case insensitive", func(t *testing.T) {
		res := MatchSKU("sr1002", sareeCatalog())
		assert.Equal(t, ExactMatch, res.Match)
		assert.Equal(t, "p2", res.Product.ProductID)
	})

	t.Run("exact beats an earlier fuzzy candidate", func(t *testing.T) {
		catalog := []models.Product{
			product("a", "SR10", 1, 1),
			product("b", "SR1001", 2, 2),
		}
		res := MatchSKU("SR1001", catalog)
		assert.Equal(t, ExactMatch, res.Match)
		assert.Equal(t, "b", res.Product.ProductID)
	})

	t.Run("duplicate exact skus resolve to the first", func(t *testing.T) {
		catalog := []models.Product{
			product("first", "SR1001", 1, 1),
			product("second", "sr1001", 2, 2),
		}
		res := MatchSKU("SR1001", catalog)
		assert.Equal(t, "first", res.Product.ProductID)
	})

	t.Run("fuzzy is first wins in catalog order", func(t *testing.T) {
		catalog := []models.Product{
			product("x", "SR100", 1, 1),
			product("y", "SR1001", 2, 2),
		}
		res := MatchSKU("SR10019", catalog)
		assert.Equal(t, FuzzyMatch, res.Match)
		assert.Equal(t, "x", res.Product.ProductID)
	})

	t.Run("candidate contained in sku", func(t *testing.T) {
		res := MatchSKU("U20", sareeCatalog())
		assert.Equal(t, FuzzyMatch, res.Match)
		assert.Equal(t, "p3", res.Product.ProductID)
	})

	t.Run("empty candidate never matches", func(t *testing.T) {
		res := MatchSKU("   ", sareeCatalog())
		assert.Equal(t, NotFound, res.Outcome)
	})

	t.Run("empty catalog sku never fuzzy matches", func(t *testing.T) {
		catalog := []models.Product{product("blank", "", 1, 1)}
		res := MatchSKU("SR1001", catalog)
		assert.Equal(t, NotFound, res.Outcome)
	})

	t.Run("empty catalog", func(t *testing.T) {
		res := MatchSKU("SR1001", nil)
		assert.Equal(t, NotFound, res.Outcome)
	})
}

func TestResolvedProductIsACopy(t *testing.T) {
	catalog := sareeCatalog()
	res := MatchSKU("SR1001", catalog)
	res.Product.Name = "changed"
	assert.Equal(t, "Product p1", catalog[0].Name)
}

func TestOutcomeText(t *testing.T) {
	b, err := NotFound.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "not_found", string(b))
	assert.Equal(t, "fuzzy", FuzzyMatch.String())
}
