package domain

import "github.com/shopspring/decimal"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleSeller Role = "SELLER"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleSeller
}

// Account is a user of the shop. BalanceBase accumulates completed sales and
// is always denominated in the BASE currency.
type Account struct {
	Username    string          `json:"username"`
	DisplayName string          `json:"displayName,omitempty"`
	Role        Role            `json:"role"`
	BalanceBase decimal.Decimal `json:"balanceBase"`
}
