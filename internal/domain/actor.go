package domain

// Capability is a single permission an actor may hold.
type Capability string

const (
	CapManageInventory  Capability = "inventory:manage"
	CapAdjustInventory  Capability = "inventory:adjust"
	CapSell             Capability = "sales:create"
	CapManageCredit     Capability = "credit:manage"
	CapWriteOffCredit   Capability = "credit:write_off"
	CapManageAccounts   Capability = "accounts:manage"
	CapManagePrivileged Capability = "accounts:manage_privileged"
	CapSetExchangeRate  Capability = "fx:set_rate"
)

type Capabilities map[Capability]struct{}

func NewCapabilities(caps ...Capability) Capabilities {
	set := make(Capabilities, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

func (c Capabilities) Has(capability Capability) bool {
	_, ok := c[capability]
	return ok
}

func (c Capabilities) List() []Capability {
	out := make([]Capability, 0, len(c))
	for _, capability := range allCapabilities {
		if c.Has(capability) {
			out = append(out, capability)
		}
	}
	return out
}

var allCapabilities = []Capability{
	CapManageInventory,
	CapAdjustInventory,
	CapSell,
	CapManageCredit,
	CapWriteOffCredit,
	CapManageAccounts,
	CapManagePrivileged,
	CapSetExchangeRate,
}

// CapabilitiesFor resolves the permission set of a role. It is evaluated once
// per actor when a session is established.
func CapabilitiesFor(role Role) Capabilities {
	switch role {
	case RoleAdmin:
		return NewCapabilities(allCapabilities...)
	case RoleSeller:
		return NewCapabilities(CapManageInventory, CapSell, CapManageCredit)
	default:
		return NewCapabilities()
	}
}

// Actor is the already-resolved identity submitting an action.
type Actor struct {
	Username     string
	Role         Role
	Capabilities Capabilities
}

func NewActor(username string, role Role) Actor {
	return Actor{Username: username, Role: role, Capabilities: CapabilitiesFor(role)}
}

func (a Actor) Can(capability Capability) bool {
	return a.Capabilities.Has(capability)
}
