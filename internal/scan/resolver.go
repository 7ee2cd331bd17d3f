package scan

import (
	"errors"
	"strings"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/payload"
)

// ErrCatalogUnavailable marks a resolution that failed because the catalog could not be fetched
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Outcome is the result class of one scan attempt
type Outcome int

const (
	Pending Outcome = iota
	Found
	NotFound
	Error
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// MatchKind tells how a product was matched
type MatchKind int

const (
	NoMatch MatchKind = iota
	ExactMatch
	FuzzyMatch
)

func (m MatchKind) String() string {
	switch m {
	case ExactMatch:
		return "exact"
	case FuzzyMatch:
		return "fuzzy"
	default:
		return "none"
	}
}

func (m MatchKind) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Resolution is the resolver's verdict for one attempt
type Resolution struct {
	Outcome Outcome         `json:"outcome"`
	Product *models.Product `json:"product,omitempty"`
	Match   MatchKind       `json:"match"`
	Err     error           `json:"-"`
}

// Attempt is the ephemeral record of a single scan
type Attempt struct {
	RawText        string              `json:"rawText"`
	Symbology      string              `json:"symbology,omitempty"`
	NormalizedText string              `json:"normalizedText"`
	Payload        *payload.ProductRef `json:"payload,omitempty"`
	DecodeErr      error               `json:"-"`
	Candidate      string              `json:"candidate"`
	Resolution     Resolution          `json:"resolution"`
}

// Resolve maps normalized scan text onto one catalog product.
// A well-formed payload contributes only its SKU; anything else is matched as a bare SKU.
func Resolve(normalized string, snapshot []models.Product) Attempt {
	attempt := Attempt{
		NormalizedText: normalized,
		Candidate:      normalized,
	}

	ref, err := payload.Decode(normalized)
	if err == nil {
		attempt.Payload = &ref
		attempt.Candidate = ref.SKU
	} else {
		attempt.DecodeErr = err
	}

	attempt.Resolution = MatchSKU(attempt.Candidate, snapshot)
	return attempt
}

// MatchSKU finds the catalog product for a candidate SKU.
// Exact (case-insensitive, trimmed) matches take precedence; otherwise the first
// product, in catalog order, whose SKU contains or is contained in the candidate wins.
func MatchSKU(candidate string, snapshot []models.Product) Resolution {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return Resolution{Outcome: NotFound}
	}

	for i := range snapshot {
		if strings.EqualFold(strings.TrimSpace(snapshot[i].SKU), candidate) {
			return found(snapshot[i], ExactMatch)
		}
	}

	upper := strings.ToUpper(candidate)
	for i := range snapshot {
		sku := strings.ToUpper(strings.TrimSpace(snapshot[i].SKU))
		if sku == "" {
			continue
		}
		if strings.Contains(upper, sku) || strings.Contains(sku, upper) {
			return found(snapshot[i], FuzzyMatch)
		}
	}

	return Resolution{Outcome: NotFound}
}

func found(p models.Product, kind MatchKind) Resolution {
	product := p
	return Resolution{Outcome: Found, Product: &product, Match: kind}
}
