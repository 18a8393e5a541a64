package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-attendance/internal/identity"
)

// Store implements identity.Store on PostgreSQL. Matching still runs as an
// in-process linear scan over All; the database only provides durability
// and multi-instance sharing, not similarity search.
type Store struct {
	pool *Pool
}

// NewStore creates a PostgreSQL-backed identity store.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Enroll inserts or replaces the embedding for code.
func (s *Store) Enroll(ctx context.Context, code string, embedding []float32) error {
	query := `
		INSERT INTO identities (code, embedding, dim)
		VALUES ($1, $2::vector, $3)
		ON CONFLICT (code) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			dim = EXCLUDED.dim,
			enrolled_at = NOW()
	`

	vec := pgvector.NewVector(embedding)
	if _, err := s.pool.db.ExecContext(ctx, query, code, vec, len(embedding)); err != nil {
		return fmt.Errorf("enrolling identity: %w", err)
	}
	return nil
}

// All returns every enrolled identity, ordered by code.
func (s *Store) All(ctx context.Context) ([]identity.Identity, error) {
	rows, err := s.pool.db.QueryContext(ctx, "SELECT code, embedding FROM identities ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("querying identities: %w", err)
	}
	defer rows.Close()

	var identities []identity.Identity
	for rows.Next() {
		var id identity.Identity
		var vec pgvector.Vector
		if err := rows.Scan(&id.Code, &vec); err != nil {
			return nil, fmt.Errorf("scanning identity: %w", err)
		}
		id.Embedding = vec.Slice()
		identities = append(identities, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating identities: %w", err)
	}
	return identities, nil
}

// List returns all enrolled codes in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.db.QueryContext(ctx, "SELECT code FROM identities ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("querying identity codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scanning code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating codes: %w", err)
	}
	return codes, nil
}

// Count returns the number of enrolled identities.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting identities: %w", err)
	}
	return count, nil
}

// Reset removes all enrolled identities.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.db.ExecContext(ctx, "TRUNCATE identities"); err != nil {
		return fmt.Errorf("resetting identities: %w", err)
	}
	return nil
}

// Verify interface compliance.
var _ identity.Store = (*Store)(nil)
