// Package ticket generates human-readable submission ticket identifiers of
// the form PREFIX-YYYY-NNNNN, with NNNNN drawn from a strictly monotonic
// per-year sequence so that concurrent intakes can never collide.
package ticket

import (
	"context"
	"fmt"
	"time"
)

// Sequencer hands out strictly increasing numbers per calendar year.
type Sequencer interface {
	Next(ctx context.Context, year int) (int64, error)
}

// Generator builds ticket identifiers.
type Generator struct {
	prefix string
	seq    Sequencer
	now    func() time.Time
}

// NewGenerator constructs a generator with the given prefix and sequencer.
func NewGenerator(prefix string, seq Sequencer) *Generator {
	return &Generator{prefix: prefix, seq: seq, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate reserves the next sequence number for the current year and formats
// the ticket identifier.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	year := g.now().Year()
	n, err := g.seq.Next(ctx, year)
	if err != nil {
		return "", fmt.Errorf("reserve ticket number: %w", err)
	}
	return fmt.Sprintf("%s-%d-%05d", g.prefix, year, n), nil
}
