// Package ledger holds the aggregate state of a shop and the pure transition
// function that applies actions to it. Every transition returns a new State;
// slices that did not change are shared with the previous value.
package ledger

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type State struct {
	Warehouse    []domain.Product
	Store        []domain.Product
	Credits      []domain.Credit
	Accounts     []domain.Account
	ExchangeRate decimal.NullDecimal
	Logs         []json.RawMessage
}

// Empty returns a valid aggregate with nothing in it.
func Empty() *State {
	return &State{
		Warehouse: []domain.Product{},
		Store:     []domain.Product{},
		Credits:   []domain.Credit{},
		Accounts:  []domain.Account{},
		Logs:      []json.RawMessage{},
	}
}

func (s *State) clone() *State {
	next := *s
	return &next
}

func (s *State) products(loc domain.Location) []domain.Product {
	if loc == domain.LocationStore {
		return s.Store
	}
	return s.Warehouse
}

func (s *State) withProducts(loc domain.Location, list []domain.Product) *State {
	next := s.clone()
	if loc == domain.LocationStore {
		next.Store = list
	} else {
		next.Warehouse = list
	}
	return next
}

func (s *State) withLog(entry json.RawMessage) *State {
	next := s.clone()
	logs := make([]json.RawMessage, len(s.Logs), len(s.Logs)+1)
	copy(logs, s.Logs)
	next.Logs = append(logs, append(json.RawMessage(nil), entry...))
	return next
}

// Product looks up a product by id at a location.
func (s *State) Product(loc domain.Location, id string) (domain.Product, bool) {
	if i := indexProduct(s.products(loc), id); i >= 0 {
		return s.products(loc)[i], true
	}
	return domain.Product{}, false
}

func (s *State) Credit(id string) (domain.Credit, bool) {
	if i := indexCredit(s.Credits, id); i >= 0 {
		return s.Credits[i], true
	}
	return domain.Credit{}, false
}

func (s *State) Account(username string) (domain.Account, bool) {
	if i := indexAccount(s.Accounts, username); i >= 0 {
		return s.Accounts[i], true
	}
	return domain.Account{}, false
}

func indexProduct(list []domain.Product, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexCredit(list []domain.Credit, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexAccount(list []domain.Account, username string) int {
	for i := range list {
		if list[i].Username == username {
			return i
		}
	}
	return -1
}

// replaceAt returns a copy of list with element i replaced.
func replaceAt[T any](list []T, i int, v T) []T {
	out := make([]T, len(list))
	copy(out, list)
	out[i] = v
	return out
}

func removeAt[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

func appendCopy[T any](list []T, v T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return append(out, v)
}
