package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bem-portal/submission-service/internal/domain"
)

func TestLookupPopulatesAndServesCache(t *testing.T) {
	repo := newFakeSubmissionRepo()
	cache := newMemoryStatusCache()
	intake := newIntake(repo, &fakeAuditRepo{}, nil)
	submission, err := intake.CreateSubmission(context.Background(), intakeFields(), true)
	require.NoError(t, err)

	lookup := NewLookupService(repo, cache)
	view, err := lookup.GetStatusByTicket(context.Background(), submission.TicketID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStatusSubmitted, view.OverallStatus)

	cached, ok := cache.Get(context.Background(), submission.TicketID)
	require.True(t, ok, "first lookup must populate the cache")
	assert.Equal(t, view.TicketID, cached.TicketID)

	// Mutate the store behind the cache's back: the next lookup must still
	// be served from the cached view.
	verification := NewVerificationService(VerificationDependencies{
		SubmissionRepo: repo,
		Policy:         testPolicy(),
	})
	_, err = verification.RecordVerification(context.Background(), verifierAccount("kemenkeu"),
		submission.TicketID, "kemenkeu", domain.VerifierActionVerify, "")
	require.NoError(t, err)

	view, err = lookup.GetStatusByTicket(context.Background(), submission.TicketID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStatusSubmitted, view.OverallStatus)
}

func TestMutationsInvalidateLookupCache(t *testing.T) {
	repo := newFakeSubmissionRepo()
	cache := newMemoryStatusCache()
	intake := newIntake(repo, &fakeAuditRepo{}, nil)
	submission, err := intake.CreateSubmission(context.Background(), intakeFields(), true)
	require.NoError(t, err)

	lookup := NewLookupService(repo, cache)
	verification := NewVerificationService(VerificationDependencies{
		SubmissionRepo: repo,
		Policy:         testPolicy(),
		Cache:          cache,
	})

	_, err = lookup.GetStatusByTicket(context.Background(), submission.TicketID)
	require.NoError(t, err)

	for _, role := range testRoles {
		_, err = verification.RecordVerification(context.Background(), verifierAccount(role),
			submission.TicketID, role, domain.VerifierActionVerify, "")
		require.NoError(t, err)
	}
	_, ok := cache.Get(context.Background(), submission.TicketID)
	assert.False(t, ok, "recorded verification must drop the cached view")
	assert.Len(t, cache.invalidations(), len(testRoles))

	view, err := lookup.GetStatusByTicket(context.Background(), submission.TicketID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStatusUnderReview, view.OverallStatus)

	_, err = verification.ApproveSubmission(context.Background(), masterAccount(), submission.TicketID)
	require.NoError(t, err)
	_, ok = cache.Get(context.Background(), submission.TicketID)
	assert.False(t, ok, "approval must drop the cached view")

	_, err = lookup.GetStatusByTicket(context.Background(), submission.TicketID)
	require.NoError(t, err)
	_, err = verification.CloseSubmission(context.Background(), masterAccount(), submission.TicketID,
		domain.FinalResponse{Note: "selesai"})
	require.NoError(t, err)
	_, ok = cache.Get(context.Background(), submission.TicketID)
	assert.False(t, ok, "closing must drop the cached view")

	view, err = lookup.GetStatusByTicket(context.Background(), submission.TicketID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStatusDone, view.OverallStatus)
	require.NotNil(t, view.FinalResponse)
	assert.Equal(t, "selesai", view.FinalResponse.Note)
}
