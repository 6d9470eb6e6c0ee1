package model

// Role is a vault-scoped or share-scoped permission level.
// Vault membership uses OWNER > ADMIN > EDITOR > READER; shares only
// carry EDITOR or READER. RoleNone means no relationship at all.
type Role string

const (
	RoleNone   Role = ""
	RoleReader Role = "READER"
	RoleEditor Role = "EDITOR"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

// ValidMemberRole reports whether r can be stored on a membership row.
// OWNER is reserved: ownership lives on the vault record, so delegated
// membership roles stop at ADMIN.
func ValidMemberRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleReader:
		return true
	}
	return false
}

// ValidShareRole reports whether r can be stored on a share row.
func ValidShareRole(r Role) bool {
	return r == RoleEditor || r == RoleReader
}

// VaultType distinguishes a user's personal vault from team vaults.
type VaultType string

const (
	VaultPersonal VaultType = "PERSONAL"
	VaultShared   VaultType = "SHARED"
)

func ValidVaultType(t VaultType) bool {
	return t == VaultPersonal || t == VaultShared
}

// BreachState tracks whether a credential is suspected or confirmed to
// have appeared in a breach.
type BreachState string

const (
	BreachNone      BreachState = "NONE"
	BreachSuspected BreachState = "SUSPECTED"
	BreachConfirmed BreachState = "CONFIRMED"
)

func ValidBreachState(s BreachState) bool {
	switch s {
	case BreachNone, BreachSuspected, BreachConfirmed:
		return true
	}
	return false
}

// ShareStatus is the share lifecycle state. REVOKED is not terminal:
// sharing again reactivates the grant.
type ShareStatus string

const (
	ShareActive  ShareStatus = "ACTIVE"
	ShareRevoked ShareStatus = "REVOKED"
)
