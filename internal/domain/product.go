package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type Location string

const (
	LocationWarehouse Location = "WAREHOUSE"
	LocationStore     Location = "STORE"
)

func (l Location) IsValid() bool {
	return l == LocationWarehouse || l == LocationStore
}

type QuantityMode string

const (
	QuantityDiscrete    QuantityMode = "DISCRETE"
	QuantityLengthBased QuantityMode = "LENGTH_BASED"
)

func (m QuantityMode) IsValid() bool {
	return m == QuantityDiscrete || m == QuantityLengthBased
}

// Unit is the measure a stock movement is expressed in.
type Unit string

const (
	UnitPiece  Unit = "PIECE"
	UnitPack   Unit = "PACK"
	UnitLength Unit = "LENGTH"
)

func (u Unit) IsValid() bool {
	return u == UnitPiece || u == UnitPack || u == UnitLength
}

// Product is one stock record at a single location.
//
// For LENGTH_BASED products with a positive PackLength, LengthQty is the
// authoritative stock and Qty is the derived whole-pack count
// ceil(LengthQty / PackLength). A zero PackLength disables length tracking and
// Qty is authoritative.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Barcode      string          `json:"barcode,omitempty"`
	Location     Location        `json:"location"`
	QuantityMode QuantityMode    `json:"quantityMode"`
	Qty          int64           `json:"qty"`
	UnitPrice    Money           `json:"unitPrice"`
	PackLength   decimal.Decimal `json:"packLength"`
	LengthQty    decimal.Decimal `json:"lengthQty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TracksLength reports whether LengthQty is the authoritative stock.
func (p Product) TracksLength() bool {
	return p.QuantityMode == QuantityLengthBased && p.PackLength.IsPositive()
}

// MaxStock is the largest piece or pack count a product may hold; Qty is an
// int64.
var MaxStock = decimal.NewFromInt(math.MaxInt64)

// PackCount returns the whole-pack count covering the given length, without
// bounding it to MaxStock.
func (p Product) PackCount(length decimal.Decimal) decimal.Decimal {
	if !p.PackLength.IsPositive() || !length.IsPositive() {
		return decimal.Zero
	}
	return length.Div(p.PackLength).Ceil()
}

// PacksFor is PackCount as an int64. Callers keep length within MaxStock
// packs.
func (p Product) PacksFor(length decimal.Decimal) int64 {
	return p.PackCount(length).IntPart()
}

// IsEmpty reports whether stock reached zero in either representation.
func (p Product) IsEmpty() bool {
	if p.TracksLength() {
		return !p.LengthQty.IsPositive() || p.Qty <= 0
	}
	return p.Qty <= 0
}
