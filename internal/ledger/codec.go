package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

// document is the persisted shape of a State.
type document struct {
	Warehouse    []domain.Product    `json:"warehouse"`
	Store        []domain.Product    `json:"store"`
	Credits      []domain.Credit     `json:"credits"`
	Accounts     []domain.Account    `json:"accounts"`
	ExchangeRate decimal.NullDecimal `json:"exchangeRate"`
	Logs         []json.RawMessage   `json:"logs"`
}

// Dehydrate serializes s. Empty collections are written as [] so the
// document always carries every key.
func Dehydrate(s *State) ([]byte, error) {
	if s == nil {
		s = Empty()
	}
	doc := document{
		Warehouse:    nonNil(s.Warehouse),
		Store:        nonNil(s.Store),
		Credits:      nonNil(s.Credits),
		Accounts:     nonNil(s.Accounts),
		ExchangeRate: s.ExchangeRate,
		Logs:         nonNil(s.Logs),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("Dehydrate: %w", err)
	}
	return data, nil
}

// Hydrate parses a persisted document. It either returns a State that
// satisfies every ledger invariant or fails with ErrCorruptState; a partly
// valid document is never accepted. Missing collections are read as empty.
func Hydrate(data []byte) (*State, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("Hydrate: empty document: %w", domain.ErrCorruptState)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("Hydrate: %v: %w", err, domain.ErrCorruptState)
	}

	s := &State{
		Warehouse:    nonNil(doc.Warehouse),
		Store:        nonNil(doc.Store),
		Credits:      nonNil(doc.Credits),
		Accounts:     nonNil(doc.Accounts),
		ExchangeRate: doc.ExchangeRate,
		Logs:         nonNil(doc.Logs),
	}
	// Documents written before credits carried a direction or kind.
	for i := range s.Credits {
		if s.Credits[i].Direction == "" {
			s.Credits[i].Direction = domain.CreditReceivable
		}
		if s.Credits[i].Kind == "" {
			s.Credits[i].Kind = domain.CreditKindCash
		}
	}
	if err := Validate(s); err != nil {
		return nil, fmt.Errorf("Hydrate: %v: %w", err, domain.ErrCorruptState)
	}
	return s, nil
}

// Validate checks every invariant of the aggregate and reports all
// violations found.
func Validate(s *State) error {
	var errs []error

	for _, loc := range []domain.Location{domain.LocationWarehouse, domain.LocationStore} {
		seen := map[string]bool{}
		for _, p := range s.products(loc) {
			if seen[p.ID] {
				errs = append(errs, fmt.Errorf("duplicate product %s in %s", p.ID, loc))
				continue
			}
			seen[p.ID] = true
			if err := validateProduct(p, loc); err != nil {
				errs = append(errs, err)
			}
		}
	}

	seen := map[string]bool{}
	for _, c := range s.Credits {
		if seen[c.ID] {
			errs = append(errs, fmt.Errorf("duplicate credit %s", c.ID))
			continue
		}
		seen[c.ID] = true
		if err := validateCredit(c); err != nil {
			errs = append(errs, err)
		}
	}

	seen = map[string]bool{}
	for _, acc := range s.Accounts {
		switch {
		case acc.Username == "":
			errs = append(errs, errors.New("account without username"))
		case seen[acc.Username]:
			errs = append(errs, fmt.Errorf("duplicate account %s", acc.Username))
		case !acc.Role.IsValid():
			errs = append(errs, fmt.Errorf("account %s has role %q", acc.Username, acc.Role))
		}
		seen[acc.Username] = true
	}

	if s.ExchangeRate.Valid && !s.ExchangeRate.Decimal.IsPositive() {
		errs = append(errs, fmt.Errorf("exchange rate %s is not positive", s.ExchangeRate.Decimal))
	}

	return errors.Join(errs...)
}

func validateProduct(p domain.Product, loc domain.Location) error {
	if err := validateDefinition(p); err != nil {
		return fmt.Errorf("product %s: %w", p.ID, err)
	}
	switch {
	case p.Location != loc:
		return fmt.Errorf("product %s listed in %s but located in %s", p.ID, loc, p.Location)
	case p.Qty < 0:
		return fmt.Errorf("product %s has negative qty %d", p.ID, p.Qty)
	case p.LengthQty.IsNegative():
		return fmt.Errorf("product %s has negative length %s", p.ID, p.LengthQty)
	case p.TracksLength() && p.PackCount(p.LengthQty).GreaterThan(domain.MaxStock):
		return fmt.Errorf("product %s length %s exceeds the maximum pack count", p.ID, p.LengthQty)
	case p.TracksLength() && p.Qty != p.PacksFor(p.LengthQty):
		return fmt.Errorf("product %s: qty %d does not cover length %s in packs of %s",
			p.ID, p.Qty, p.LengthQty, p.PackLength)
	}
	return nil
}

func validateCredit(c domain.Credit) error {
	cur := c.Principal.Currency
	switch {
	case c.ID == "":
		return errors.New("credit without id")
	case !c.Direction.IsValid():
		return fmt.Errorf("credit %s direction %q", c.ID, c.Direction)
	case !c.Kind.IsValid():
		return fmt.Errorf("credit %s kind %q", c.ID, c.Kind)
	case !cur.IsValid():
		return fmt.Errorf("credit %s principal currency %q", c.ID, cur)
	case c.Remaining.Currency != cur:
		return fmt.Errorf("credit %s remaining is %s, principal is %s", c.ID, c.Remaining.Currency, cur)
	case c.DownPayment.Currency != "" && c.DownPayment.Currency != cur:
		return fmt.Errorf("credit %s down payment is %s, principal is %s", c.ID, c.DownPayment.Currency, cur)
	case !c.Principal.IsPositive():
		return fmt.Errorf("credit %s principal %s is not positive", c.ID, c.Principal.Amount)
	case c.Remaining.IsNegative():
		return fmt.Errorf("credit %s remaining %s is negative", c.ID, c.Remaining.Amount)
	case c.Remaining.Amount.GreaterThan(c.Principal.Amount):
		return fmt.Errorf("credit %s remaining %s exceeds principal %s", c.ID, c.Remaining.Amount, c.Principal.Amount)
	case c.Completed != c.Remaining.IsZero():
		return fmt.Errorf("credit %s completed=%t with remaining %s", c.ID, c.Completed, c.Remaining.Amount)
	}
	return nil
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

// Envelope is the wire form of an action: the kind, its JSON payload and an
// optional opaque audit record.
type Envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Audit   json.RawMessage `json:"audit,omitempty"`
}

var payloadTypes = map[Kind]func() Payload{
	KindReceiveStock:    func() Payload { return &ReceiveStock{} },
	KindTransferToStore: func() Payload { return &TransferToStore{} },
	KindSell:            func() Payload { return &Sell{} },
	KindAdjustQty:       func() Payload { return &AdjustQty{} },
	KindDeleteProduct:   func() Payload { return &DeleteProduct{} },
	KindOpenCredit:      func() Payload { return &OpenCredit{} },
	KindRecordPayment:   func() Payload { return &RecordPayment{} },
	KindCompleteCredit:  func() Payload { return &CompleteCredit{} },
	KindDeleteCredit:    func() Payload { return &DeleteCredit{} },
	KindEditCredit:      func() Payload { return &EditCredit{} },
	KindAddAccount:      func() Payload { return &AddAccount{} },
	KindEditAccount:     func() Payload { return &EditAccount{} },
	KindDeleteAccount:   func() Payload { return &DeleteAccount{} },
	KindSetExchangeRate: func() Payload { return &SetExchangeRate{} },
}

// DecodePayload parses raw into the payload type registered for kind.
func DecodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	newPayload, ok := payloadTypes[kind]
	if !ok {
		return nil, fmt.Errorf("DecodePayload: unknown action %q: %w", kind, domain.ErrValidation)
	}
	p := newPayload()
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("DecodePayload %s: %v: %w", kind, err, domain.ErrValidation)
		}
	}
	return p, nil
}

// Action resolves the envelope into an action submitted by actor at at.
func (e Envelope) Action(actor domain.Actor, at time.Time) (Action, error) {
	p, err := DecodePayload(e.Type, e.Payload)
	if err != nil {
		return Action{}, err
	}
	var audit json.RawMessage
	if len(bytes.TrimSpace(e.Audit)) > 0 && !bytes.Equal(bytes.TrimSpace(e.Audit), []byte("null")) {
		audit = e.Audit
	}
	return Action{Kind: e.Type, Actor: actor, At: at, Payload: p, Audit: audit}, nil
}
