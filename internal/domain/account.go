package domain

import "time"

// AccountRole enumerates staff account roles.
type AccountRole string

const (
	// AccountRoleMaster may act as any verifier role, approve, and close.
	AccountRoleMaster AccountRole = "MASTER"
	// AccountRoleVerifier is bound to a single verifier role key.
	AccountRoleVerifier AccountRole = "VERIFIER"
)

// Account is a staff identity able to act on the verification ledger.
type Account struct {
	ID           string
	Email        string
	Name         string
	Role         AccountRole
	RoleKey      *string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
