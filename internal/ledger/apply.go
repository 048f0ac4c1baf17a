package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type handlerFunc func(*State, Action) (*State, error)

var handlers = map[Kind]handlerFunc{
	KindReceiveStock:    receiveStock,
	KindTransferToStore: transferToStore,
	KindSell:            sell,
	KindAdjustQty:       adjustQty,
	KindDeleteProduct:   deleteProduct,
	KindOpenCredit:      openCredit,
	KindRecordPayment:   recordPayment,
	KindCompleteCredit:  completeCredit,
	KindDeleteCredit:    deleteCredit,
	KindEditCredit:      editCredit,
	KindAddAccount:      addAccount,
	KindEditAccount:     editAccount,
	KindDeleteAccount:   deleteAccount,
	KindSetExchangeRate: setExchangeRate,
}

var required = map[Kind]domain.Capability{
	KindReceiveStock:    domain.CapManageInventory,
	KindTransferToStore: domain.CapManageInventory,
	KindSell:            domain.CapSell,
	KindAdjustQty:       domain.CapAdjustInventory,
	KindDeleteProduct:   domain.CapAdjustInventory,
	KindOpenCredit:      domain.CapManageCredit,
	KindRecordPayment:   domain.CapManageCredit,
	KindEditCredit:      domain.CapManageCredit,
	KindCompleteCredit:  domain.CapWriteOffCredit,
	KindDeleteCredit:    domain.CapWriteOffCredit,
	KindAddAccount:      domain.CapManageAccounts,
	KindEditAccount:     domain.CapManageAccounts,
	KindDeleteAccount:   domain.CapManageAccounts,
	KindSetExchangeRate: domain.CapSetExchangeRate,
}

// Known reports whether Apply has a transition for kind.
func Known(kind Kind) bool {
	_, ok := handlers[kind]
	return ok
}

// Required returns the capability an actor needs to submit kind.
func Required(kind Kind) (domain.Capability, bool) {
	c, ok := required[kind]
	return c, ok
}

// Apply runs one action against s and returns the resulting state. It never
// mutates s. On failure s itself is returned together with an error wrapping
// one of the domain sentinels; an unknown kind returns s unchanged with no
// error.
func Apply(s *State, a Action) (*State, error) {
	if s == nil {
		s = Empty()
	}
	handle, ok := handlers[a.Kind]
	if !ok {
		return s, nil
	}

	if err := authorize(s, a); err != nil {
		return s, fmt.Errorf("Apply %s: %w", a.Kind, err)
	}
	if len(a.Audit) > 0 && !json.Valid(a.Audit) {
		return s, fmt.Errorf("Apply %s: audit record is not valid JSON: %w", a.Kind, domain.ErrValidation)
	}

	next, err := handle(s, a)
	if err != nil {
		return s, fmt.Errorf("Apply %s: %w", a.Kind, err)
	}
	if len(a.Audit) > 0 {
		next = next.withLog(a.Audit)
	}
	return next, nil
}

func authorize(s *State, a Action) error {
	capability := required[a.Kind]
	if !a.Actor.Can(capability) {
		return fmt.Errorf("%s lacks %s: %w", actorName(a.Actor), capability, domain.ErrPermissionDenied)
	}
	if touchesPrivileged(s, a) && !a.Actor.Can(domain.CapManagePrivileged) {
		return fmt.Errorf("%s lacks %s: %w", actorName(a.Actor), domain.CapManagePrivileged, domain.ErrPermissionDenied)
	}
	return nil
}

func actorName(actor domain.Actor) string {
	if actor.Username == "" {
		return "anonymous actor"
	}
	return actor.Username
}

// payloadAs accepts both value and pointer payloads.
func payloadAs[T Payload](a Action) (T, error) {
	switch p := a.Payload.(type) {
	case T:
		return p, nil
	case *T:
		if p != nil {
			return *p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("payload %T for %s: %w", a.Payload, a.Kind, domain.ErrValidation)
}
