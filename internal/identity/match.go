package identity

// matchSentinel is below any valid cosine similarity, so an empty store
// yields no match rather than a spurious one.
const matchSentinel = -1.0

// Match scans all identities and returns the code with the highest dot
// product against the probe, plus that score. Both vectors are unit-norm,
// so the dot product is cosine similarity in [-1, 1].
//
// The scan is O(n) by design: rosters hold tens to hundreds of identities,
// not biometric-scale populations, and a linear pass keeps the tie and
// ordering semantics trivial. Strict > keeps the first-seen code on an
// exact tie.
func Match(probe []float32, identities []Identity) (string, float64) {
	bestScore := matchSentinel
	bestCode := ""
	for _, id := range identities {
		s := dot(probe, id.Embedding)
		if s > bestScore {
			bestScore = s
			bestCode = id.Code
		}
	}
	return bestCode, bestScore
}

func dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
