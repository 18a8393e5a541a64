// Package identity stores enrolled face embeddings and matches probe
// embeddings against them.
package identity

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identity is one enrolled person: a unique code plus the mean of their
// enrollment-time embeddings. Embeddings are unit-norm vectors produced by
// the face model; the mean is stored as-is, without renormalization.
type Identity struct {
	Code      string
	Embedding []float32
}

// Store is the contract for enrolled-identity storage. Implementations must
// persist every mutation before reporting it as successful.
type Store interface {
	// Enroll inserts or replaces the embedding for code.
	Enroll(ctx context.Context, code string, embedding []float32) error
	// All returns every enrolled identity, ordered by code.
	All(ctx context.Context) ([]Identity, error)
	// List returns all enrolled codes in sorted order.
	List(ctx context.Context) ([]string, error)
	// Count returns the number of enrolled identities.
	Count(ctx context.Context) (int, error)
	// Reset removes all enrolled identities.
	Reset(ctx context.Context) error
}

// NormalizeCode trims surrounding whitespace and applies Unicode NFC
// normalization. iOS clients tend to submit NFD strings while Android
// submits NFC; without this the same code would enroll as two identities.
// Case is preserved: codes are case-sensitive keys.
func NormalizeCode(code string) string {
	return norm.NFC.String(strings.TrimSpace(code))
}

// MeanEmbedding returns the arithmetic per-dimension mean of the given
// embeddings. The result is intentionally not renormalized to unit length;
// matching treats the stored vector exactly as averaged.
func MeanEmbedding(embeddings [][]float32) []float32 {
	if len(embeddings) == 0 {
		return nil
	}
	dim := len(embeddings[0])
	sum := make([]float64, dim)
	for _, emb := range embeddings {
		for i, v := range emb {
			sum[i] += float64(v)
		}
	}
	mean := make([]float32, dim)
	n := float64(len(embeddings))
	for i, v := range sum {
		mean[i] = float32(v / n)
	}
	return mean
}
