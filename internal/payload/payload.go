package payload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Delimiter separates the sku, price and quantity fields of a payload
const Delimiter = "|"

const fieldCount = 3

// Price limits for payloads. Prices are written as plain decimals, so
// exponent notation and oversized values are never valid.
const (
	MaxPriceIntegerDigits = 15
	MaxPriceScale         = 6

	// enough for every coefficient within the digit limits
	maxCoefficientBits = 128
)

// ProductRef is the identity and stock tuple embedded in a barcode
type ProductRef struct {
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// Equal compares two refs, prices by numeric value
func (r ProductRef) Equal(other ProductRef) bool {
	return r.SKU == other.SKU && r.Price.Equal(other.Price) && r.Quantity == other.Quantity
}

// ErrDelimiterInSKU is returned by Encode when the SKU cannot be represented
var ErrDelimiterInSKU = errors.New("sku contains payload delimiter")

// Decode error kinds
var (
	ErrWrongFieldCount = errors.New("wrong field count")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// DecodeError describes why scanned text is not a valid payload
type DecodeError struct {
	Kind  error
	Field string
	Input string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("payload decode: %v", e.Kind)
	}
	return fmt.Sprintf("payload decode: %v %q", e.Kind, e.Field)
}

// Unwrap exposes the kind so callers can use errors.Is
func (e *DecodeError) Unwrap() error {
	return e.Kind
}

// Encode renders a ref as "{sku}|{price}|{quantity}".
// The SKU is trimmed; a SKU containing the delimiter is a caller error.
func Encode(ref ProductRef) (string, error) {
	sku := strings.TrimSpace(ref.SKU)
	if strings.Contains(sku, Delimiter) {
		return "", fmt.Errorf("%w: %q", ErrDelimiterInSKU, sku)
	}

	return strings.Join([]string{
		sku,
		ref.Price.String(),
		strconv.FormatInt(ref.Quantity, 10),
	}, Delimiter), nil
}

// Decode parses payload text. It never panics; malformed input yields a *DecodeError.
func Decode(text string) (ProductRef, error) {
	fields := strings.Split(text, Delimiter)
	if len(fields) != fieldCount {
		return ProductRef{}, &DecodeError{Kind: ErrWrongFieldCount, Input: text}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	price, err := parsePrice(fields[1])
	if err != nil {
		return ProductRef{}, &DecodeError{Kind: ErrInvalidPrice, Field: fields[1], Input: text}
	}

	quantity, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || quantity < 0 {
		return ProductRef{}, &DecodeError{Kind: ErrInvalidQuantity, Field: fields[2], Input: text}
	}

	return ProductRef{
		SKU:      fields[0],
		Price:    price,
		Quantity: quantity,
	}, nil
}

func parsePrice(field string) (decimal.Decimal, error) {
	intPart, fracPart, hasPoint := strings.Cut(field, ".")
	if !allDigits(intPart) || len(intPart) > MaxPriceIntegerDigits {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	if hasPoint && (!allDigits(fracPart) || len(fracPart) > MaxPriceScale) {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	price, err := decimal.NewFromString(field)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return price, CheckPrice(price)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CheckPrice reports whether a price fits in a payload: non-negative, at most
// MaxPriceIntegerDigits before the point and MaxPriceScale after it.
// It never expands the value, so it is safe on untrusted input.
func CheckPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	exp := int64(price.Exponent())
	if exp > MaxPriceIntegerDigits || exp < -(MaxPriceScale+MaxPriceIntegerDigits) {
		return ErrInvalidPrice
	}
	coeff := price.Coefficient()
	if coeff.Sign() == 0 {
		return nil
	}
	if coeff.BitLen() > maxCoefficientBits {
		return ErrInvalidPrice
	}
	if exp < -MaxPriceScale {
		// trailing zeros past the scale are fine
		trimmed := price.Truncate(MaxPriceScale)
		if !trimmed.Equal(price) {
			return ErrInvalidPrice
		}
		coeff = trimmed.Coefficient()
		exp = int64(trimmed.Exponent())
	}
	if int64(len(coeff.String()))+exp > MaxPriceIntegerDigits {
		return ErrInvalidPrice
	}
	return nil
}
