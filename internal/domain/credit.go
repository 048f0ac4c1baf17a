package domain

import "time"

type CreditKind string

const (
	CreditKindCash    CreditKind = "CASH"
	CreditKindProduct CreditKind = "PRODUCT"
)

func (k CreditKind) IsValid() bool {
	return k == CreditKindCash || k == CreditKindProduct
}

// CreditDirection tells whether the client owes the business (RECEIVABLE)
// or the business owes the client (PAYABLE).
type CreditDirection string

const (
	CreditReceivable CreditDirection = "RECEIVABLE"
	CreditPayable    CreditDirection = "PAYABLE"
)

func (d CreditDirection) IsValid() bool {
	return d == CreditReceivable || d == CreditPayable
}

type CreditPayment struct {
	Amount   Money     `json:"amount"`
	Original Money     `json:"original"`
	PaidAt   time.Time `json:"paidAt"`
}

// Credit is a "nasiya" record tracked down to a zero remaining balance.
// DownPayment is stored in the principal currency; DownPaymentOriginal keeps
// the amount as it was handed over, for audit only.
type Credit struct {
	ID                  string          `json:"id"`
	ClientID            string          `json:"clientId"`
	ClientName          string          `json:"clientName,omitempty"`
	Direction           CreditDirection `json:"direction"`
	Kind                CreditKind      `json:"kind"`
	Principal           Money           `json:"principal"`
	DownPayment         Money           `json:"downPayment"`
	DownPaymentOriginal Money           `json:"downPaymentOriginal"`
	Remaining           Money           `json:"remaining"`
	Completed           bool            `json:"completed"`
	Note                string          `json:"note,omitempty"`
	Payments            []CreditPayment `json:"payments,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	CompletedAt         *time.Time      `json:"completedAt,omitempty"`
}
