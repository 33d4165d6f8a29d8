// Package policy is the explicit capability table consulted by every workflow
// operation, replacing inline role conditionals in the calling layers.
package policy

import "github.com/bem-portal/submission-service/internal/domain"

// Policy answers authorization questions for workflow transitions.
type Policy struct {
	verifierRoles map[string]struct{}
	approverRole  string
}

// New builds a policy from the configured verifier role keys and the
// designated top-level approver role.
func New(verifierRoles []string, approverRole string) *Policy {
	roles := make(map[string]struct{}, len(verifierRoles))
	for _, role := range verifierRoles {
		roles[role] = struct{}{}
	}
	return &Policy{verifierRoles: roles, approverRole: approverRole}
}

// KnownRole reports whether roleKey is one of the configured verifier roles.
func (p *Policy) KnownRole(roleKey string) bool {
	_, ok := p.verifierRoles[roleKey]
	return ok
}

// VerifierRoles returns the configured role keys.
func (p *Policy) VerifierRoles() []string {
	out := make([]string, 0, len(p.verifierRoles))
	for role := range p.verifierRoles {
		out = append(out, role)
	}
	return out
}

// CanVerifyAs reports whether the account may write the ledger entry for
// roleKey. Master accounts may act as any single role; verifier accounts only
// as their own.
func (p *Policy) CanVerifyAs(account *domain.Account, roleKey string) bool {
	if account == nil || !account.IsActive || !p.KnownRole(roleKey) {
		return false
	}
	if account.Role == domain.AccountRoleMaster {
		return true
	}
	return account.Role == domain.AccountRoleVerifier &&
		account.RoleKey != nil && *account.RoleKey == roleKey
}

// CanApprove reports whether the account holds the final-approval privilege.
func (p *Policy) CanApprove(account *domain.Account) bool {
	if account == nil || !account.IsActive {
		return false
	}
	if account.Role == domain.AccountRoleMaster {
		return true
	}
	return account.Role == domain.AccountRoleVerifier &&
		account.RoleKey != nil && *account.RoleKey == p.approverRole
}

// CanClose reports whether the account may attach the final response. The
// closing privilege tracks the approval privilege.
func (p *Policy) CanClose(account *domain.Account) bool {
	return p.CanApprove(account)
}
