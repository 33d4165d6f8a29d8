package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bem-portal/submission-service/internal/api/http/handlers"
	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/repository"
	"github.com/bem-portal/submission-service/internal/service"
)

// deadlineProbeRepo records whether the context that reaches the data layer
// carries the request deadline.
type deadlineProbeRepo struct {
	sawDeadline bool
}

func (r *deadlineProbeRepo) Create(context.Context, *domain.Submission) error { return nil }

func (r *deadlineProbeRepo) GetByTicket(ctx context.Context, _ string) (*domain.Submission, error) {
	_, r.sawDeadline = ctx.Deadline()
	return nil, pgx.ErrNoRows
}

func (r *deadlineProbeRepo) UpdateWithRevision(context.Context, *domain.Submission, int64) error {
	return nil
}

func (r *deadlineProbeRepo) ListWithFilter(context.Context, repository.SubmissionFilter) ([]domain.Submission, error) {
	return nil, nil
}

func TestRequestDeadlineReachesDataLayer(t *testing.T) {
	repo := &deadlineProbeRepo{}
	lookup := service.NewLookupService(repo, nil)
	handler := handlers.NewSubmissionsHandler(nil, lookup)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 2*time.Second)
	app.Get("/status/:ticketId", handler.GetStatus)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/status/BEM-2026-00001", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, repo.sawDeadline, "request timeout must propagate to repository calls")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}
