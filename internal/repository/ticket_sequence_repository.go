package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketSequenceRepository reserves strictly increasing ticket numbers per
// calendar year. The upsert increments and returns in one statement, so two
// concurrent intakes can never observe the same value.
type TicketSequenceRepository interface {
	Next(ctx context.Context, year int) (int64, error)
}

type ticketSequenceRepository struct {
	pool *pgxpool.Pool
}

// NewTicketSequenceRepository builds repository.
func NewTicketSequenceRepository(pool *pgxpool.Pool) TicketSequenceRepository {
	return &ticketSequenceRepository{pool: pool}
}

func (r *ticketSequenceRepository) Next(ctx context.Context, year int) (int64, error) {
	const query = `
        INSERT INTO ticket_counters (year, last_value) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET last_value = ticket_counters.last_value + 1
        RETURNING last_value`
	var value int64
	if err := r.pool.QueryRow(ctx, query, year).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
