package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/fx"
)

// NewCredit builds a credit from an OPEN_CREDIT payload. The down payment is
// converted into the principal currency; when that needs a rate the ledger
// does not have, the credit is refused rather than opened with a guessed
// value.
func NewCredit(p OpenCredit, rate decimal.NullDecimal, at time.Time) (domain.Credit, error) {
	if p.ID == "" {
		return domain.Credit{}, fmt.Errorf("credit id is required: %w", domain.ErrValidation)
	}
	if p.ClientID == "" {
		return domain.Credit{}, fmt.Errorf("client id is required: %w", domain.ErrValidation)
	}

	direction := p.Direction
	if direction == "" {
		direction = domain.CreditReceivable
	}
	if !direction.IsValid() {
		return domain.Credit{}, fmt.Errorf("credit direction %q: %w", direction, domain.ErrValidation)
	}
	kind := p.Kind
	if kind == "" {
		kind = domain.CreditKindCash
	}
	if !kind.IsValid() {
		return domain.Credit{}, fmt.Errorf("credit kind %q: %w", kind, domain.ErrValidation)
	}

	if !p.Principal.Currency.IsValid() {
		return domain.Credit{}, fmt.Errorf("principal currency %q: %w", p.Principal.Currency, domain.ErrInvalidCurrency)
	}
	if !p.Principal.IsPositive() {
		return domain.Credit{}, fmt.Errorf("principal: %w", domain.ErrInvalidAmount)
	}

	down := p.DownPayment
	if down.Currency == "" {
		down = domain.Zero(p.Principal.Currency)
	}
	if !down.Currency.IsValid() {
		return domain.Credit{}, fmt.Errorf("down payment currency %q: %w", down.Currency, domain.ErrInvalidCurrency)
	}
	if down.IsNegative() {
		return domain.Credit{}, fmt.Errorf("down payment must not be negative: %w", domain.ErrInvalidAmount)
	}

	converted := domain.Zero(p.Principal.Currency)
	if !down.IsZero() {
		var err error
		converted, err = fx.Convert(down, p.Principal.Currency, rate)
		if err != nil {
			return domain.Credit{}, fmt.Errorf("down payment: %w", err)
		}
	}
	if converted.Amount.GreaterThan(p.Principal.Amount) {
		return domain.Credit{}, fmt.Errorf("%w: down payment %s, principal %s",
			domain.ErrOverPayment, converted, p.Principal)
	}

	remaining, err := p.Principal.Sub(converted)
	if err != nil {
		return domain.Credit{}, err
	}

	c := domain.Credit{
		ID:                  p.ID,
		ClientID:            p.ClientID,
		ClientName:          p.ClientName,
		Direction:           direction,
		Kind:                kind,
		Principal:           p.Principal,
		DownPayment:         converted,
		DownPaymentOriginal: down,
		Remaining:           remaining,
		Note:                p.Note,
		CreatedAt:           at,
	}
	return settle(c, at), nil
}

// settle pins a paid-off credit to completed with zero remaining.
func settle(c domain.Credit, at time.Time) domain.Credit {
	if c.Remaining.Amount.IsPositive() {
		return c
	}
	c.Remaining = domain.Zero(c.Principal.Currency)
	if !c.Completed {
		c.Completed = true
		completedAt := at
		c.CompletedAt = &completedAt
	}
	return c
}

// Pay records a partial payment. The payment may be in either currency; it
// is converted into the credit's currency first.
func Pay(c domain.Credit, amount domain.Money, rate decimal.NullDecimal, at time.Time) (domain.Credit, error) {
	if c.Completed {
		return c, fmt.Errorf("credit %s: %w", c.ID, domain.ErrAlreadyCompleted)
	}
	if !amount.Currency.IsValid() {
		return c, fmt.Errorf("payment currency %q: %w", amount.Currency, domain.ErrInvalidCurrency)
	}
	if !amount.IsPositive() {
		return c, fmt.Errorf("payment %s: %w", amount.Amount, domain.ErrInvalidAmount)
	}

	converted, err := fx.Convert(amount, c.Principal.Currency, rate)
	if err != nil {
		return c, fmt.Errorf("payment: %w", err)
	}
	if !converted.IsPositive() {
		return c, fmt.Errorf("payment %s rounds to zero: %w", amount, domain.ErrInvalidAmount)
	}
	if converted.Amount.GreaterThan(c.Remaining.Amount) {
		return c, fmt.Errorf("%w: payment %s, remaining %s", domain.ErrOverPayment, converted, c.Remaining)
	}

	remaining, err := c.Remaining.Sub(converted)
	if err != nil {
		return c, err
	}
	c.Remaining = remaining
	c.Payments = appendCopy(c.Payments, domain.CreditPayment{Amount: converted, Original: amount, PaidAt: at})
	return settle(c, at), nil
}

// WriteOff force-completes a credit. Completing an already completed credit
// changes nothing.
func WriteOff(c domain.Credit, at time.Time) domain.Credit {
	if c.Completed {
		return c
	}
	c.Remaining = domain.Zero(c.Principal.Currency)
	return settle(c, at)
}

func findCredit(s *State, id string) (int, domain.Credit, error) {
	i := indexCredit(s.Credits, id)
	if i < 0 {
		return -1, domain.Credit{}, fmt.Errorf("credit %s: %w", id, domain.ErrNotFound)
	}
	return i, s.Credits[i], nil
}

func withCredits(s *State, credits []domain.Credit) *State {
	next := s.clone()
	next.Credits = credits
	return next
}

func openCredit(s *State, a Action) (*State, error) {
	p, err := payloadAs[OpenCredit](a)
	if err != nil {
		return s, err
	}
	if indexCredit(s.Credits, p.ID) >= 0 {
		return s, fmt.Errorf("credit %s already exists: %w", p.ID, domain.ErrValidation)
	}
	c, err := NewCredit(p, s.ExchangeRate, a.At)
	if err != nil {
		return s, err
	}
	return withCredits(s, appendCopy(s.Credits, c)), nil
}

func recordPayment(s *State, a Action) (*State, error) {
	p, err := payloadAs[RecordPayment](a)
	if err != nil {
		return s, err
	}
	i, c, err := findCredit(s, p.CreditID)
	if err != nil {
		return s, err
	}
	updated, err := Pay(c, p.Amount, s.ExchangeRate, a.At)
	if err != nil {
		return s, err
	}
	return withCredits(s, replaceAt(s.Credits, i, updated)), nil
}

func completeCredit(s *State, a Action) (*State, error) {
	p, err := payloadAs[CompleteCredit](a)
	if err != nil {
		return s, err
	}
	i, c, err := findCredit(s, p.CreditID)
	if err != nil {
		return s, err
	}
	return withCredits(s, replaceAt(s.Credits, i, WriteOff(c, a.At))), nil
}

func deleteCredit(s *State, a Action) (*State, error) {
	p, err := payloadAs[DeleteCredit](a)
	if err != nil {
		return s, err
	}
	i, _, err := findCredit(s, p.CreditID)
	if err != nil {
		return s, err
	}
	return withCredits(s, removeAt(s.Credits, i)), nil
}

func editCredit(s *State, a Action) (*State, error) {
	p, err := payloadAs[EditCredit](a)
	if err != nil {
		return s, err
	}
	i, c, err := findCredit(s, p.CreditID)
	if err != nil {
		return s, err
	}

	if p.ClientID != nil {
		if *p.ClientID == "" {
			return s, fmt.Errorf("client id is required: %w", domain.ErrValidation)
		}
		c.ClientID = *p.ClientID
	}
	if p.ClientName != nil {
		c.ClientName = *p.ClientName
	}
	if p.Note != nil {
		c.Note = *p.Note
	}
	if p.Kind != nil {
		if !p.Kind.IsValid() {
			return s, fmt.Errorf("credit kind %q: %w", *p.Kind, domain.ErrValidation)
		}
		c.Kind = *p.Kind
	}
	if p.Principal != nil {
		c, err = rebase(c, *p.Principal, a.At)
		if err != nil {
			return s, err
		}
	}

	return withCredits(s, replaceAt(s.Credits, i, c)), nil
}

// rebase changes the principal of an open credit while keeping every
// deduction already recorded against it.
func rebase(c domain.Credit, principal domain.Money, at time.Time) (domain.Credit, error) {
	if c.Completed {
		return c, fmt.Errorf("credit %s principal: %w", c.ID, domain.ErrAlreadyCompleted)
	}
	if principal.Currency != c.Principal.Currency {
		return c, fmt.Errorf("principal %s on a %s credit: %w", principal.Currency, c.Principal.Currency, domain.ErrCurrencyMismatch)
	}
	if !principal.IsPositive() {
		return c, fmt.Errorf("principal: %w", domain.ErrInvalidAmount)
	}

	deducted, err := c.Principal.Sub(c.Remaining)
	if err != nil {
		return c, err
	}
	remaining, err := principal.Sub(deducted)
	if err != nil {
		return c, err
	}
	if remaining.IsNegative() {
		return c, fmt.Errorf("%w: principal %s is below the %s already paid", domain.ErrOverPayment, principal, deducted)
	}

	c.Principal = principal
	c.Remaining = remaining
	return settle(c, at), nil
}
