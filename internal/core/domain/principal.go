package domain

// Role is the coarse role of an authenticated actor.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendor Role = "vendor"
	// RoleSystem is used by integrations and background jobs.
	RoleSystem Role = "system"
)

// Principal is the authenticated actor of a request.
type Principal struct {
	ActorID  string `json:"actorID"`
	Role     Role   `json:"role"`
	VendorID string `json:"vendorID,omitempty"`
}

// SystemPrincipal returns the principal used by background processing.
func SystemPrincipal(actorID string) Principal {
	return Principal{ActorID: actorID, Role: RoleSystem}
}
