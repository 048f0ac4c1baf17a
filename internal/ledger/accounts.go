package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/fx"
)

// creditSeller adds a sale's value, in BASE, to the seller's balance. Sales
// without a known seller leave every balance untouched.
func creditSeller(s *State, seller string, value domain.Money) (*State, error) {
	if seller == "" {
		return s, nil
	}
	i := indexAccount(s.Accounts, seller)
	if i < 0 {
		return s, nil
	}

	base, err := fx.Convert(value, domain.CurrencyBase, s.ExchangeRate)
	if err != nil {
		return s, fmt.Errorf("sale value: %w", err)
	}

	acc := s.Accounts[i]
	acc.BalanceBase = acc.BalanceBase.Add(base.Amount)
	next := s.clone()
	next.Accounts = replaceAt(s.Accounts, i, acc)
	return next, nil
}

func findAccount(s *State, username string) (int, domain.Account, error) {
	i := indexAccount(s.Accounts, username)
	if i < 0 {
		return -1, domain.Account{}, fmt.Errorf("account %s: %w", username, domain.ErrNotFound)
	}
	return i, s.Accounts[i], nil
}

func withAccounts(s *State, accounts []domain.Account) *State {
	next := s.clone()
	next.Accounts = accounts
	return next
}

func addAccount(s *State, a Action) (*State, error) {
	p, err := payloadAs[AddAccount](a)
	if err != nil {
		return s, err
	}
	if p.Username == "" {
		return s, fmt.Errorf("username is required: %w", domain.ErrValidation)
	}
	if !p.Role.IsValid() {
		return s, fmt.Errorf("role %q: %w", p.Role, domain.ErrValidation)
	}
	if indexAccount(s.Accounts, p.Username) >= 0 {
		return s, fmt.Errorf("account %s: %w", p.Username, domain.ErrAccountExists)
	}

	acc := domain.Account{
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Role:        p.Role,
		BalanceBase: decimal.Zero,
	}
	return withAccounts(s, appendCopy(s.Accounts, acc)), nil
}

func editAccount(s *State, a Action) (*State, error) {
	p, err := payloadAs[EditAccount](a)
	if err != nil {
		return s, err
	}
	i, acc, err := findAccount(s, p.Username)
	if err != nil {
		return s, err
	}

	if p.DisplayName != nil {
		acc.DisplayName = *p.DisplayName
	}
	if p.Role != nil {
		if !p.Role.IsValid() {
			return s, fmt.Errorf("role %q: %w", *p.Role, domain.ErrValidation)
		}
		acc.Role = *p.Role
	}
	return withAccounts(s, replaceAt(s.Accounts, i, acc)), nil
}

func deleteAccount(s *State, a Action) (*State, error) {
	p, err := payloadAs[DeleteAccount](a)
	if err != nil {
		return s, err
	}
	i, _, err := findAccount(s, p.Username)
	if err != nil {
		return s, err
	}
	return withAccounts(s, removeAt(s.Accounts, i)), nil
}

func setExchangeRate(s *State, a Action) (*State, error) {
	p, err := payloadAs[SetExchangeRate](a)
	if err != nil {
		return s, err
	}
	if p.Rate.Valid && !p.Rate.Decimal.IsPositive() {
		return s, fmt.Errorf("exchange rate must be greater than zero, got %s: %w", p.Rate.Decimal, domain.ErrValidation)
	}
	next := s.clone()
	next.ExchangeRate = p.Rate
	return next, nil
}

// touchesPrivileged reports whether an account action reads or writes an
// ADMIN account, either as it stands or as it would become.
func touchesPrivileged(s *State, a Action) bool {
	isAdmin := func(username string) bool {
		acc, ok := s.Account(username)
		return ok && acc.Role == domain.RoleAdmin
	}

	switch a.Kind {
	case KindAddAccount:
		p, err := payloadAs[AddAccount](a)
		return err == nil && p.Role == domain.RoleAdmin
	case KindEditAccount:
		p, err := payloadAs[EditAccount](a)
		return err == nil && (isAdmin(p.Username) || (p.Role != nil && *p.Role == domain.RoleAdmin))
	case KindDeleteAccount:
		p, err := payloadAs[DeleteAccount](a)
		return err == nil && isAdmin(p.Username)
	}
	return false
}
