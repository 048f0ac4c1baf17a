package ledger

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type Kind string

const (
	KindReceiveStock    Kind = "RECEIVE_STOCK"
	KindTransferToStore Kind = "TRANSFER_TO_STORE"
	KindSell            Kind = "SELL"
	KindAdjustQty       Kind = "ADJUST_QTY"
	KindDeleteProduct   Kind = "DELETE_PRODUCT"
	KindOpenCredit      Kind = "OPEN_CREDIT"
	KindRecordPayment   Kind = "RECORD_PAYMENT"
	KindCompleteCredit  Kind = "COMPLETE_CREDIT"
	KindDeleteCredit    Kind = "DELETE_CREDIT"
	KindEditCredit      Kind = "EDIT_CREDIT"
	KindAddAccount      Kind = "ADD_ACCOUNT"
	KindEditAccount     Kind = "EDIT_ACCOUNT"
	KindDeleteAccount   Kind = "DELETE_ACCOUNT"
	KindSetExchangeRate Kind = "SET_EXCHANGE_RATE"
)

// Action is a tagged request to change the aggregate. Audit, when present,
// is appended verbatim to the state's logs on success.
type Action struct {
	Kind    Kind
	Actor   domain.Actor
	At      time.Time
	Payload any
	Audit   json.RawMessage
}

// Payload is implemented by every typed action body.
type Payload interface {
	ActionKind() Kind
}

// NewAction builds an action whose kind is taken from its payload.
func NewAction(actor domain.Actor, at time.Time, p Payload, audit json.RawMessage) Action {
	return Action{Kind: p.ActionKind(), Actor: actor, At: at, Payload: p, Audit: audit}
}

type ReceiveStock struct {
	Location  domain.Location `json:"location"`
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      domain.Unit     `json:"unit"`
	// Product defines the record to create when ProductID is not stocked yet.
	Product *domain.Product `json:"product,omitempty"`
}

type TransferToStore struct {
	ProductID       string          `json:"productId"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            domain.Unit     `json:"unit"`
	RemoveWhenEmpty bool            `json:"removeWhenEmpty"`
}

type Sell struct {
	Location  domain.Location `json:"location"`
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      domain.Unit     `json:"unit"`
	// Seller is the account credited with the sale, if known.
	Seller string `json:"seller,omitempty"`
	// Total overrides the list price when the sale was negotiated.
	Total           *domain.Money `json:"total,omitempty"`
	RemoveWhenEmpty bool          `json:"removeWhenEmpty"`
}

type AdjustQty struct {
	Location  domain.Location `json:"location"`
	ProductID string          `json:"productId"`
	Delta     decimal.Decimal `json:"delta"`
	Unit      domain.Unit     `json:"unit"`
}

type DeleteProduct struct {
	Location  domain.Location `json:"location"`
	ProductID string          `json:"productId"`
}

type OpenCredit struct {
	ID          string                 `json:"id"`
	ClientID    string                 `json:"clientId"`
	ClientName  string                 `json:"clientName,omitempty"`
	Direction   domain.CreditDirection `json:"direction"`
	Kind        domain.CreditKind      `json:"kind"`
	Principal   domain.Money           `json:"principal"`
	DownPayment domain.Money           `json:"downPayment"`
	Note        string                 `json:"note,omitempty"`
}

type RecordPayment struct {
	CreditID string       `json:"creditId"`
	Amount   domain.Money `json:"amount"`
}

type CompleteCredit struct {
	CreditID string `json:"creditId"`
}

type DeleteCredit struct {
	CreditID string `json:"creditId"`
}

// EditCredit changes the fields that are set.
type EditCredit struct {
	CreditID   string             `json:"creditId"`
	ClientID   *string            `json:"clientId,omitempty"`
	ClientName *string            `json:"clientName,omitempty"`
	Kind       *domain.CreditKind `json:"kind,omitempty"`
	Note       *string            `json:"note,omitempty"`
	Principal  *domain.Money      `json:"principal,omitempty"`
}

type AddAccount struct {
	Username    string      `json:"username"`
	DisplayName string      `json:"displayName,omitempty"`
	Role        domain.Role `json:"role"`
}

type EditAccount struct {
	Username    string       `json:"username"`
	DisplayName *string      `json:"displayName,omitempty"`
	Role        *domain.Role `json:"role,omitempty"`
}

type DeleteAccount struct {
	Username string `json:"username"`
}

// SetExchangeRate sets BASE units per FOREIGN unit. A null rate clears it.
type SetExchangeRate struct {
	Rate decimal.NullDecimal `json:"rate"`
}

func (ReceiveStock) ActionKind() Kind    { return KindReceiveStock }
func (TransferToStore) ActionKind() Kind { return KindTransferToStore }
func (Sell) ActionKind() Kind            { return KindSell }
func (AdjustQty) ActionKind() Kind       { return KindAdjustQty }
func (DeleteProduct) ActionKind() Kind   { return KindDeleteProduct }
func (OpenCredit) ActionKind() Kind      { return KindOpenCredit }
func (RecordPayment) ActionKind() Kind   { return KindRecordPayment }
func (CompleteCredit) ActionKind() Kind  { return KindCompleteCredit }
func (DeleteCredit) ActionKind() Kind    { return KindDeleteCredit }
func (EditCredit) ActionKind() Kind      { return KindEditCredit }
func (AddAccount) ActionKind() Kind      { return KindAddAccount }
func (EditAccount) ActionKind() Kind     { return KindEditAccount }
func (DeleteAccount) ActionKind() Kind   { return KindDeleteAccount }
func (SetExchangeRate) ActionKind() Kind { return KindSetExchangeRate }
