package service

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bem-portal/submission-service/internal/auth"
	"github.com/bem-portal/submission-service/internal/config"
	"github.com/bem-portal/submission-service/internal/domain"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

type fakeAccountRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Account
	nextID  int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byEmail: make(map[string]*domain.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[account.Email]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"}
	}
	r.nextID++
	account.ID = "acc-" + account.Email
	stored := *account
	r.byEmail[account.Email] = &stored
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.byEmail {
		if account.ID == id {
			out := *account
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *account
	return &out, nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}
}

func seedAccount(t *testing.T, repo *fakeAccountRepo, email, password string, role domain.AccountRole, roleKey *string) *domain.Account {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	account := &domain.Account{Email: email, Name: "Test", Role: role, RoleKey: roleKey, PasswordHash: hash, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), account))
	return account
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeAccountRepo()
	seedAccount(t, repo, "master@bem.test", "rahasia-123", domain.AccountRoleMaster, nil)
	svc := NewAuthService(testAuthConfig(), repo, testPolicy())

	token, expiresAt, account, err := svc.Login(context.Background(), "Master@bem.test ", "rahasia-123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())
	assert.Equal(t, domain.AccountRoleMaster, account.Role)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeAccountRepo()
	seedAccount(t, repo, "master@bem.test", "rahasia-123", domain.AccountRoleMaster, nil)
	svc := NewAuthService(testAuthConfig(), repo, testPolicy())

	_, _, _, err := svc.Login(context.Background(), "master@bem.test", "salah")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestLoginUnknownAccount(t *testing.T) {
	svc := NewAuthService(testAuthConfig(), newFakeAccountRepo(), testPolicy())

	_, _, _, err := svc.Login(context.Background(), "nobody@bem.test", "x")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestCreateAccountRequiresMaster(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAuthService(testAuthConfig(), repo, testPolicy())

	_, err := svc.CreateAccount(context.Background(), verifierAccount("kemenkeu"), AccountCreateInput{
		Email: "new@bem.test", Name: "New", Role: domain.AccountRoleVerifier,
		RoleKey: strPtr("kominfo"), Password: "panjang-sekali",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestCreateVerifierAccountRequiresKnownRoleKey(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAuthService(testAuthConfig(), repo, testPolicy())

	_, err := svc.CreateAccount(context.Background(), masterAccount(), AccountCreateInput{
		Email: "new@bem.test", Name: "New", Role: domain.AccountRoleVerifier,
		RoleKey: strPtr("kemenhub"), Password: "panjang-sekali",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestCreateAccountDuplicateEmailConflicts(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAuthService(testAuthConfig(), repo, testPolicy())

	input := AccountCreateInput{
		Email: "verifier@bem.test", Name: "Verifier", Role: domain.AccountRoleVerifier,
		RoleKey: strPtr("kemenkeu"), Password: "panjang-sekali",
	}
	_, err := svc.CreateAccount(context.Background(), masterAccount(), input)
	require.NoError(t, err)

	_, err = svc.CreateAccount(context.Background(), masterAccount(), input)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestCreateAccountNormalizesEmail(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAuthService(testAuthConfig(), repo, testPolicy())

	account, err := svc.CreateAccount(context.Background(), masterAccount(), AccountCreateInput{
		Email: "  Verifier@BEM.Test ", Name: "Verifier", Role: domain.AccountRoleVerifier,
		RoleKey: strPtr("kemenkeu"), Password: "panjang-sekali",
	})
	require.NoError(t, err)
	assert.Equal(t, "verifier@bem.test", account.Email)
	assert.NotEqual(t, "panjang-sekali", account.PasswordHash)
}
