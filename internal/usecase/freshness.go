package usecase

import (
	"time"

	"github.com/macrolens/basket/internal/domain"
)

// DefaultFreshnessWindow is how old a price may be before a candidate is dropped
const DefaultFreshnessWindow = 7 * 24 * time.Hour

// IsFresh reports whether the candidate's price data is no older than window at now.
// A candidate without a LastUpdated timestamp is never fresh.
func IsFresh(candidate domain.CandidateProduct, window time.Duration, now time.Time) bool {
	if candidate.LastUpdated.IsZero() {
		return false
	}
	return now.Sub(candidate.LastUpdated) <= window
}

// FilterFresh returns the candidates that pass IsFresh, keeping their order
func FilterFresh(candidates []domain.CandidateProduct, window time.Duration, now time.Time) []domain.CandidateProduct {
	fresh := make([]domain.CandidateProduct, 0, len(candidates))
	for _, c := range candidates {
		if IsFresh(c, window, now) {
			fresh = append(fresh, c)
		}
	}
	return fresh
}
