package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/repository"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

func TestGetStatusUnknownTicket(t *testing.T) {
	repo := newFakeSubmissionRepo()
	lookup := NewLookupService(repo, nil)

	_, err := lookup.GetStatusByTicket(context.Background(), "BEM-2026-00042")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestGetStatusReturnsLedger(t *testing.T) {
	repo := newFakeSubmissionRepo()
	intake := newIntake(repo, &fakeAuditRepo{}, nil)
	submission, err := intake.CreateSubmission(context.Background(), intakeFields(), true)
	require.NoError(t, err)

	lookup := NewLookupService(repo, nil)
	view, err := lookup.GetStatusByTicket(context.Background(), submission.TicketID)
	require.NoError(t, err)

	assert.Equal(t, submission.TicketID, view.TicketID)
	assert.Equal(t, domain.SubmissionStatusSubmitted, view.OverallStatus)
	assert.False(t, view.Restricted)
	assert.Len(t, view.Verifiers, len(testRoles))
	assert.Nil(t, view.FinalResponse)
}

func TestGetStatusRestrictedView(t *testing.T) {
	repo := newFakeSubmissionRepo()
	intake := newIntake(repo, &fakeAuditRepo{}, nil)
	submission, err := intake.CreateSubmission(context.Background(), intakeFields(), false)
	require.NoError(t, err)

	lookup := NewLookupService(repo, nil)
	view, err := lookup.GetStatusByTicket(context.Background(), submission.TicketID)
	require.NoError(t, err)

	assert.True(t, view.Restricted)
	assert.Empty(t, view.Verifiers)
	assert.Nil(t, view.FinalResponse)
	assert.Equal(t, domain.SubmissionStatusSubmitted, view.OverallStatus)
}

func TestListSubmissionsByStatus(t *testing.T) {
	repo := newFakeSubmissionRepo()
	intake := newIntake(repo, &fakeAuditRepo{}, nil)
	for i := 0; i < 3; i++ {
		_, err := intake.CreateSubmission(context.Background(), intakeFields(), true)
		require.NoError(t, err)
	}

	lookup := NewLookupService(repo, nil)
	items, err := lookup.ListSubmissions(context.Background(), repository.SubmissionFilter{
		Statuses: []domain.SubmissionStatus{domain.SubmissionStatusSubmitted},
	})
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = lookup.ListSubmissions(context.Background(), repository.SubmissionFilter{
		Statuses: []domain.SubmissionStatus{domain.SubmissionStatusDone},
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListSubmissionsPendingRole(t *testing.T) {
	repo := newFakeSubmissionRepo()
	intake := newIntake(repo, &fakeAuditRepo{}, nil)
	submission, err := intake.CreateSubmission(context.Background(), intakeFields(), true)
	require.NoError(t, err)

	verification := NewVerificationService(VerificationDependencies{
		SubmissionRepo: repo,
		Policy:         testPolicy(),
	})
	_, err = verification.RecordVerification(context.Background(), verifierAccount("kemenkeu"),
		submission.TicketID, "kemenkeu", domain.VerifierActionVerify, "")
	require.NoError(t, err)

	lookup := NewLookupService(repo, nil)
	items, err := lookup.ListSubmissions(context.Background(), repository.SubmissionFilter{
		PendingRole: strPtr("kemenkeu"),
	})
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = lookup.ListSubmissions(context.Background(), repository.SubmissionFilter{
		PendingRole: strPtr("kominfo"),
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
