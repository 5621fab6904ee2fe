package usecase

import (
	"testing"
	"time"

	"github.com/macrolens/basket/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsFresh(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	window := 7 * 24 * time.Hour

	testCases := []struct {
		name        string
		lastUpdated time.Time
		want        bool
	}{
		{"updated just now", now, true},
		{"updated yesterday", now.Add(-24 * time.Hour), true},
		{"exactly at the window edge", now.Add(-window), true},
		{"one second past the window", now.Add(-window - time.Second), false},
		{"updated a month ago", now.AddDate(0, -1, 0), false},
		{"no timestamp", time.Time{}, false},
		{"timestamp in the future", now.Add(time.Hour), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := domain.CandidateProduct{ID: "p1", LastUpdated: tc.lastUpdated}
			assert.Equal(t, tc.want, IsFresh(c, window, now))
		})
	}
}

func TestFilterFresh(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	candidates := []domain.CandidateProduct{
		{ID: "a", LastUpdated: now.Add(-time.Hour)},
		{ID: "b", LastUpdated: now.AddDate(0, 0, -30)},
		{ID: "c", LastUpdated: now.Add(-48 * time.Hour)},
	}

	got := FilterFresh(candidates, DefaultFreshnessWindow, now)

	if assert.Len(t, got, 2) {
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "c", got[1].ID)
	}
}
