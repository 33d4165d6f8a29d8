package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bem-portal/submission-service/internal/domain"
)

// ErrRevisionConflict is returned when a conditional write loses a race
// against a concurrent mutation of the same submission.
var ErrRevisionConflict = errors.New("submission revision conflict")

// SubmissionFilter captures staff worklist parameters.
type SubmissionFilter struct {
	Statuses    []domain.SubmissionStatus
	PendingRole *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// SubmissionRepository encapsulates submission persistence.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.Submission, error)
	// UpdateWithRevision writes the ledger, aggregate status and final
	// response in one conditional statement guarded by the expected
	// revision. It returns ErrRevisionConflict when the row moved on.
	UpdateWithRevision(ctx context.Context, submission *domain.Submission, expectedRevision int64) error
	ListWithFilter(ctx context.Context, filter SubmissionFilter) ([]domain.Submission, error)
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository instantiates repository.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

func (r *submissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	const query = `
        INSERT INTO submissions (ticket_id, fields, verifiers, overall_status, is_public)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, revision, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		submission.TicketID,
		submission.Fields,
		submission.Verifiers,
		submission.OverallStatus,
		submission.Public,
	).Scan(&submission.ID, &submission.Revision, &submission.CreatedAt, &submission.UpdatedAt)
}

func (r *submissionRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.Submission, error) {
	const query = `
        SELECT id, ticket_id, fields, verifiers, overall_status, final_response, is_public, revision, created_at, updated_at
        FROM submissions WHERE ticket_id=$1`
	var submission domain.Submission
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&submission.ID,
		&submission.TicketID,
		&submission.Fields,
		&submission.Verifiers,
		&submission.OverallStatus,
		&submission.FinalResponse,
		&submission.Public,
		&submission.Revision,
		&submission.CreatedAt,
		&submission.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) UpdateWithRevision(ctx context.Context, submission *domain.Submission, expectedRevision int64) error {
	const query = `
        UPDATE submissions
        SET verifiers=$1, overall_status=$2, final_response=$3, revision=revision+1, updated_at=NOW()
        WHERE id=$4 AND revision=$5
        RETURNING revision, updated_at`
	err := r.pool.QueryRow(ctx, query,
		submission.Verifiers,
		submission.OverallStatus,
		submission.FinalResponse,
		submission.ID,
		expectedRevision,
	).Scan(&submission.Revision, &submission.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRevisionConflict
	}
	return err
}

func (r *submissionRepository) ListWithFilter(ctx context.Context, filter SubmissionFilter) ([]domain.Submission, error) {
	base := `SELECT id, ticket_id, fields, verifiers, overall_status, final_response, is_public, revision, created_at, updated_at
             FROM submissions`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("overall_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.PendingRole != nil && *filter.PendingRole != "" {
		args = append(args, *filter.PendingRole)
		clauses = append(clauses, fmt.Sprintf("verifiers->$%d->>'status' = 'PENDING'", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func scanSubmissions(rows pgx.Rows) ([]domain.Submission, error) {
	var result []domain.Submission
	for rows.Next() {
		var submission domain.Submission
		if err := rows.Scan(
			&submission.ID,
			&submission.TicketID,
			&submission.Fields,
			&submission.Verifiers,
			&submission.OverallStatus,
			&submission.FinalResponse,
			&submission.Public,
			&submission.Revision,
			&submission.CreatedAt,
			&submission.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, submission)
	}
	return result, rows.Err()
}
