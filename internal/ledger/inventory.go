package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

// Deduction describes stock removed from a product by a sale or transfer.
// Amount is in the product's authoritative measure (length for length-tracked
// products, pieces otherwise); Pieces is the matching whole-unit count.
type Deduction struct {
	Amount decimal.Decimal
	Pieces int64
}

// measure converts qty expressed in unit into the product's authoritative
// measure.
func measure(p domain.Product, qty decimal.Decimal, unit domain.Unit) (decimal.Decimal, error) {
	if !unit.IsValid() {
		return decimal.Zero, fmt.Errorf("unit %q: %w", unit, domain.ErrValidation)
	}

	switch {
	case p.QuantityMode == domain.QuantityDiscrete:
		if unit == domain.UnitLength {
			return decimal.Zero, fmt.Errorf("product %s is counted in pieces, not length: %w", p.ID, domain.ErrValidation)
		}
		if !qty.IsInteger() {
			return decimal.Zero, fmt.Errorf("product %s needs a whole quantity, got %s: %w", p.ID, qty, domain.ErrValidation)
		}
		return qty, nil

	case !p.PackLength.IsPositive():
		if unit != domain.UnitPiece {
			return decimal.Zero, fmt.Errorf("product %s has no pack length, cannot use unit %s: %w", p.ID, unit, domain.ErrConfiguration)
		}
		if !qty.IsInteger() {
			return decimal.Zero, fmt.Errorf("product %s needs a whole quantity, got %s: %w", p.ID, qty, domain.ErrValidation)
		}
		return qty, nil

	case unit == domain.UnitLength:
		return qty, nil

	default:
		return qty.Mul(p.PackLength), nil
	}
}

// inUnit expresses an authoritative amount back in the unit a caller asked
// for, for messages.
func inUnit(p domain.Product, amount decimal.Decimal, unit domain.Unit) decimal.Decimal {
	if p.TracksLength() && unit != domain.UnitLength {
		return amount.Div(p.PackLength).Round(2)
	}
	return amount
}

func available(p domain.Product) decimal.Decimal {
	if p.TracksLength() {
		return p.LengthQty
	}
	return decimal.NewFromInt(p.Qty)
}

// withStock sets the authoritative stock and re-derives the other
// representation. Stock whose piece or pack count exceeds MaxStock is
// rejected.
func withStock(p domain.Product, amount decimal.Decimal) (domain.Product, error) {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	count := amount
	if p.TracksLength() {
		count = p.PackCount(amount)
	}
	if count.GreaterThan(domain.MaxStock) {
		return p, fmt.Errorf("product %s stock of %s exceeds the maximum of %s: %w",
			p.ID, count, domain.MaxStock, domain.ErrValidation)
	}
	if p.TracksLength() {
		p.LengthQty = amount
	}
	p.Qty = count.IntPart()
	return p, nil
}

// Receive adds qty (in unit) to the product's stock.
func Receive(p domain.Product, qty decimal.Decimal, unit domain.Unit) (domain.Product, error) {
	if !qty.IsPositive() {
		return p, fmt.Errorf("quantity must be greater than zero, got %s: %w", qty, domain.ErrValidation)
	}
	amount, err := measure(p, qty, unit)
	if err != nil {
		return p, err
	}
	return withStock(p, available(p).Add(amount))
}

// Deduct removes qty (in unit) from the product's stock. It fails with
// ErrInsufficientStock when qty exceeds what is available in that unit.
func Deduct(p domain.Product, qty decimal.Decimal, unit domain.Unit) (domain.Product, Deduction, error) {
	if !qty.IsPositive() {
		return p, Deduction{}, fmt.Errorf("quantity must be greater than zero, got %s: %w", qty, domain.ErrValidation)
	}
	amount, err := measure(p, qty, unit)
	if err != nil {
		return p, Deduction{}, err
	}

	avail := available(p)
	if amount.GreaterThan(avail) {
		return p, Deduction{}, fmt.Errorf("%w: requested %s, available %s",
			domain.ErrInsufficientStock, qty, inUnit(p, avail, unit))
	}

	d := Deduction{Amount: amount, Pieces: amount.IntPart()}
	if p.TracksLength() {
		d.Pieces = p.PacksFor(amount)
	}
	next, err := withStock(p, avail.Sub(amount))
	if err != nil {
		return p, Deduction{}, err
	}
	return next, d, nil
}

// Adjust applies a correction of delta (in unit). The result never goes
// below zero whatever the sign or size of delta.
func Adjust(p domain.Product, delta decimal.Decimal, unit domain.Unit) (domain.Product, error) {
	if delta.IsZero() {
		return p, fmt.Errorf("adjustment must not be zero: %w", domain.ErrValidation)
	}
	amount, err := measure(p, delta.Abs(), unit)
	if err != nil {
		return p, err
	}
	if delta.IsNegative() {
		amount = amount.Neg()
	}
	return withStock(p, decimal.Max(decimal.Zero, available(p).Add(amount)))
}

// packsIn converts an authoritative amount into priced units. Unit prices of
// length-tracked products are per pack.
func packsIn(p domain.Product, amount decimal.Decimal) decimal.Decimal {
	if p.TracksLength() {
		return amount.Div(p.PackLength)
	}
	return amount
}

func validateDefinition(p domain.Product) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("product id is required: %w", domain.ErrValidation)
	case p.Name == "":
		return fmt.Errorf("product name is required: %w", domain.ErrValidation)
	case !p.QuantityMode.IsValid():
		return fmt.Errorf("quantity mode %q: %w", p.QuantityMode, domain.ErrValidation)
	case !p.UnitPrice.Currency.IsValid():
		return fmt.Errorf("unit price currency %q: %w", p.UnitPrice.Currency, domain.ErrInvalidCurrency)
	case p.UnitPrice.IsNegative():
		return fmt.Errorf("unit price must not be negative: %w", domain.ErrValidation)
	case p.PackLength.IsNegative():
		return fmt.Errorf("pack length must not be negative: %w", domain.ErrValidation)
	}
	return nil
}

func locationOf(loc domain.Location) (domain.Location, error) {
	if !loc.IsValid() {
		return "", fmt.Errorf("location %q: %w", loc, domain.ErrValidation)
	}
	return loc, nil
}

func findProduct(s *State, loc domain.Location, id string) (int, domain.Product, error) {
	list := s.products(loc)
	i := indexProduct(list, id)
	if i < 0 {
		return -1, domain.Product{}, fmt.Errorf("product %s in %s: %w", id, loc, domain.ErrNotFound)
	}
	return i, list[i], nil
}

func receiveStock(s *State, a Action) (*State, error) {
	p, err := payloadAs[ReceiveStock](a)
	if err != nil {
		return s, err
	}
	loc, err := locationOf(p.Location)
	if err != nil {
		return s, err
	}

	list := s.products(loc)
	i := indexProduct(list, p.ProductID)
	var product domain.Product
	if i >= 0 {
		product = list[i]
	} else {
		if p.Product == nil {
			return s, fmt.Errorf("product %s in %s: %w", p.ProductID, loc, domain.ErrNotFound)
		}
		product = *p.Product
		product.ID = p.ProductID
		if err := validateDefinition(product); err != nil {
			return s, err
		}
		product.Location = loc
		product.Qty = 0
		product.LengthQty = decimal.Zero
		if product.CreatedAt.IsZero() {
			product.CreatedAt = a.At
		}
	}

	updated, err := Receive(product, p.Quantity, p.Unit)
	if err != nil {
		return s, err
	}

	if i >= 0 {
		return s.withProducts(loc, replaceAt(list, i, updated)), nil
	}
	return s.withProducts(loc, appendCopy(list, updated)), nil
}

func transferToStore(s *State, a Action) (*State, error) {
	p, err := payloadAs[TransferToStore](a)
	if err != nil {
		return s, err
	}

	si, source, err := findProduct(s, domain.LocationWarehouse, p.ProductID)
	if err != nil {
		return s, err
	}
	remaining, d, err := Deduct(source, p.Quantity, p.Unit)
	if err != nil {
		return s, err
	}

	store := s.Store
	di := indexProduct(store, p.ProductID)
	var dest domain.Product
	if di >= 0 {
		dest = store[di]
		if dest.QuantityMode != source.QuantityMode || !dest.PackLength.Equal(source.PackLength) {
			return s, fmt.Errorf("store record of %s has a different pack configuration: %w", p.ProductID, domain.ErrConfiguration)
		}
	} else {
		dest = source
		dest.Location = domain.LocationStore
		dest.Qty = 0
		dest.LengthQty = decimal.Zero
		dest.CreatedAt = a.At
	}
	dest, err = withStock(dest, available(dest).Add(d.Amount))
	if err != nil {
		return s, err
	}

	var warehouse []domain.Product
	if p.RemoveWhenEmpty && remaining.IsEmpty() {
		warehouse = removeAt(s.Warehouse, si)
	} else {
		warehouse = replaceAt(s.Warehouse, si, remaining)
	}
	if di >= 0 {
		store = replaceAt(store, di, dest)
	} else {
		store = appendCopy(store, dest)
	}

	next := s.clone()
	next.Warehouse = warehouse
	next.Store = store
	return next, nil
}

func sell(s *State, a Action) (*State, error) {
	p, err := payloadAs[Sell](a)
	if err != nil {
		return s, err
	}
	loc, err := locationOf(p.Location)
	if err != nil {
		return s, err
	}

	i, product, err := findProduct(s, loc, p.ProductID)
	if err != nil {
		return s, err
	}
	remaining, d, err := Deduct(product, p.Quantity, p.Unit)
	if err != nil {
		return s, err
	}

	value := product.UnitPrice.Mul(packsIn(product, d.Amount))
	if p.Total != nil {
		if !p.Total.Currency.IsValid() {
			return s, fmt.Errorf("sale total currency %q: %w", p.Total.Currency, domain.ErrInvalidCurrency)
		}
		if p.Total.IsNegative() {
			return s, fmt.Errorf("sale total must not be negative: %w", domain.ErrInvalidAmount)
		}
		value = *p.Total
	}

	list := s.products(loc)
	var next *State
	if p.RemoveWhenEmpty && remaining.IsEmpty() {
		next = s.withProducts(loc, removeAt(list, i))
	} else {
		next = s.withProducts(loc, replaceAt(list, i, remaining))
	}

	return creditSeller(next, p.Seller, value)
}

func adjustQty(s *State, a Action) (*State, error) {
	p, err := payloadAs[AdjustQty](a)
	if err != nil {
		return s, err
	}
	loc, err := locationOf(p.Location)
	if err != nil {
		return s, err
	}

	i, product, err := findProduct(s, loc, p.ProductID)
	if err != nil {
		return s, err
	}
	updated, err := Adjust(product, p.Delta, p.Unit)
	if err != nil {
		return s, err
	}
	return s.withProducts(loc, replaceAt(s.products(loc), i, updated)), nil
}

func deleteProduct(s *State, a Action) (*State, error) {
	p, err := payloadAs[DeleteProduct](a)
	if err != nil {
		return s, err
	}
	loc, err := locationOf(p.Location)
	if err != nil {
		return s, err
	}

	i, _, err := findProduct(s, loc, p.ProductID)
	if err != nil {
		return s, err
	}
	return s.withProducts(loc, removeAt(s.products(loc), i)), nil
}
