package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bem-portal/submission-service/internal/domain"
)

var roles = []string{"sekjen", "kemenkeu", "kemendagri", "kominfo"}

func strPtr(s string) *string { return &s }

func masterAccount() *domain.Account {
	return &domain.Account{ID: "m1", Email: "master@bem.test", Role: domain.AccountRoleMaster, IsActive: true}
}

func verifierAccount(roleKey string) *domain.Account {
	return &domain.Account{
		ID: "v-" + roleKey, Email: roleKey + "@bem.test",
		Role: domain.AccountRoleVerifier, RoleKey: strPtr(roleKey), IsActive: true,
	}
}

func TestKnownRole(t *testing.T) {
	p := New(roles, "sekjen")
	assert.True(t, p.KnownRole("kemenkeu"))
	assert.False(t, p.KnownRole("unknown"))
}

func TestCanVerifyAs(t *testing.T) {
	p := New(roles, "sekjen")

	assert.True(t, p.CanVerifyAs(verifierAccount("kemenkeu"), "kemenkeu"))
	assert.False(t, p.CanVerifyAs(verifierAccount("kemenkeu"), "kemendagri"))
	assert.True(t, p.CanVerifyAs(masterAccount(), "kemendagri"))
	assert.False(t, p.CanVerifyAs(masterAccount(), "unknown"))
	assert.False(t, p.CanVerifyAs(nil, "kemenkeu"))

	disabled := verifierAccount("kemenkeu")
	disabled.IsActive = false
	assert.False(t, p.CanVerifyAs(disabled, "kemenkeu"))
}

func TestCanApprove(t *testing.T) {
	p := New(roles, "sekjen")

	assert.True(t, p.CanApprove(masterAccount()))
	assert.True(t, p.CanApprove(verifierAccount("sekjen")))
	assert.False(t, p.CanApprove(verifierAccount("kemenkeu")))
	assert.False(t, p.CanApprove(nil))
}

func TestCanCloseTracksApprove(t *testing.T) {
	p := New(roles, "sekjen")

	assert.True(t, p.CanClose(verifierAccount("sekjen")))
	assert.False(t, p.CanClose(verifierAccount("kominfo")))
}
