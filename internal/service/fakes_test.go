package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/policy"
	"github.com/bem-portal/submission-service/internal/repository"
)

func testPolicy() *policy.Policy {
	return policy.New(testRoles, "sekjen")
}

// fakeSubmissionRepo mimics the conditional-write semantics of the Postgres
// repository, returning copies so callers never share memory with the store.
type fakeSubmissionRepo struct {
	mu            sync.Mutex
	byTicket      map[string]*domain.Submission
	nextID        int
	failCreate    bool
	forceConflict bool
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{byTicket: make(map[string]*domain.Submission)}
}

func copySubmission(s *domain.Submission) *domain.Submission {
	out := *s
	out.Fields = make(domain.FieldMap, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	out.Verifiers = make(map[string]domain.VerifierEntry, len(s.Verifiers))
	for k, v := range s.Verifiers {
		out.Verifiers[k] = v
	}
	if s.FinalResponse != nil {
		resp := *s.FinalResponse
		out.FinalResponse = &resp
	}
	return &out
}

func (r *fakeSubmissionRepo) Create(_ context.Context, submission *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return fmt.Errorf("connection refused")
	}
	r.nextID++
	submission.ID = fmt.Sprintf("sub-%d", r.nextID)
	submission.Revision = 0
	r.byTicket[submission.TicketID] = copySubmission(submission)
	return nil
}

func (r *fakeSubmissionRepo) GetByTicket(_ context.Context, ticketID string) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byTicket[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copySubmission(stored), nil
}

func (r *fakeSubmissionRepo) UpdateWithRevision(_ context.Context, submission *domain.Submission, expectedRevision int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceConflict {
		return repository.ErrRevisionConflict
	}
	stored, ok := r.byTicket[submission.TicketID]
	if !ok || stored.Revision != expectedRevision {
		return repository.ErrRevisionConflict
	}
	submission.Revision = expectedRevision + 1
	r.byTicket[submission.TicketID] = copySubmission(submission)
	return nil
}

func (r *fakeSubmissionRepo) ListWithFilter(_ context.Context, filter repository.SubmissionFilter) ([]domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Submission
	for _, stored := range r.byTicket {
		if len(filter.Statuses) > 0 && !statusIn(stored.OverallStatus, filter.Statuses) {
			continue
		}
		if filter.PendingRole != nil {
			entry, ok := stored.Verifiers[*filter.PendingRole]
			if !ok || entry.Status != domain.VerifierStatusPending {
				continue
			}
		}
		out = append(out, *copySubmission(stored))
	}
	return out, nil
}

func statusIn(status domain.SubmissionStatus, list []domain.SubmissionStatus) bool {
	for _, candidate := range list {
		if candidate == status {
			return true
		}
	}
	return false
}

// stored returns the persisted state for assertions.
func (r *fakeSubmissionRepo) stored(ticketID string) *domain.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byTicket[ticketID]; ok {
		return copySubmission(s)
	}
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = fmt.Sprintf("audit-%d", len(r.entries)+1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByTicket(_ context.Context, ticketID string, limit, offset int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.Action)
	}
	return out
}

// memoryStatusCache implements StatusCache over a map and records every
// invalidation for assertions.
type memoryStatusCache struct {
	mu          sync.Mutex
	views       map[string]*StatusView
	invalidated []string
}

func newMemoryStatusCache() *memoryStatusCache {
	return &memoryStatusCache{views: make(map[string]*StatusView)}
}

func (c *memoryStatusCache) Get(_ context.Context, ticketID string) (*StatusView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	view, ok := c.views[ticketID]
	return view, ok
}

func (c *memoryStatusCache) Set(_ context.Context, ticketID string, view *StatusView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[ticketID] = view
}

func (c *memoryStatusCache) Invalidate(_ context.Context, ticketID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, ticketID)
	c.invalidated = append(c.invalidated, ticketID)
}

func (c *memoryStatusCache) invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

type memorySequencer struct {
	mu    sync.Mutex
	count int64
}

func (s *memorySequencer) Next(context.Context, int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return s.count, nil
}

func strPtr(s string) *string { return &s }

func masterAccount() *domain.Account {
	return &domain.Account{ID: "acc-master", Email: "master@bem.test", Role: domain.AccountRoleMaster, IsActive: true}
}

func verifierAccount(roleKey string) *domain.Account {
	return &domain.Account{
		ID:       "acc-" + roleKey,
		Email:    roleKey + "@bem.test",
		Role:     domain.AccountRoleVerifier,
		RoleKey:  strPtr(roleKey),
		IsActive: true,
	}
}
