package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/macrolens/basket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sourceNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	localRef  = domain.StoreRef{ID: "local", Name: "Corner Grocer", Domain: "cornergrocer.example.com"}
)

// failingStore is a ProductStore whose reads always fail
type failingStore struct {
	*MemoryStore
	err error
}

func (f failingStore) All(ctx context.Context) ([]domain.CandidateProduct, error) {
	return nil, f.err
}

func seededSource(t *testing.T, products ...domain.CandidateProduct) *LocalSource {
	t.Helper()
	store := NewMemoryStore()
	for _, p := range products {
		if p.LastUpdated.IsZero() {
			p.LastUpdated = sourceNow.Add(-time.Hour)
		}
		require.NoError(t, store.Upsert(context.Background(), p))
	}
	src := NewLocalSource(store, localRef, 0)
	src.SetClock(func() time.Time { return sourceNow })
	return src
}

func ids(products []domain.CandidateProduct) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestLocalSource_Store(t *testing.T) {
	src := NewLocalSource(NewMemoryStore(), localRef, 0)
	assert.Equal(t, localRef, src.Store())
}

func TestLocalSource_SubstringMatch(t *testing.T) {
	src := seededSource(t,
		domain.CandidateProduct{ID: "1", Name: "Fresh Aubergine"},
		domain.CandidateProduct{ID: "2", Name: "Eggplant, Baby (Organic)"},
		domain.CandidateProduct{ID: "3", Name: "Milk Chocolate Bar"},
		domain.CandidateProduct{ID: "4", Name: "BRINJAL"},
	)

	got, err := src.Query(context.Background(), "eggplant", []string{"aubergine", "brinjal"}, domain.Constraints{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "4"}, ids(got))

	for _, p := range got {
		assert.Equal(t, localRef, p.Store)
	}
}

func TestLocalSource_KeepsExplicitStore(t *testing.T) {
	branch := domain.StoreRef{ID: "branch-2", Name: "Corner Grocer Uptown"}
	src := seededSource(t, domain.CandidateProduct{ID: "1", Name: "Sugar", Store: branch})

	got, err := src.Query(context.Background(), "sugar", nil, domain.Constraints{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, branch, got[0].Store)
}

func TestLocalSource_PushedDownFilters(t *testing.T) {
	src := seededSource(t,
		domain.CandidateProduct{ID: "cheap", Name: "Butter", Brand: "Kerrygold", Price: domain.Price(2.99)},
		domain.CandidateProduct{ID: "pricey", Name: "Butter", Brand: "Kerrygold", Price: domain.Price(4.99)},
		domain.CandidateProduct{ID: "other", Name: "Butter", Brand: "Store Brand", Price: domain.Price(1.99)},
		domain.CandidateProduct{ID: "unpriced", Name: "Butter", Brand: "Kerrygold"},
	)

	t.Run("price range", func(t *testing.T) {
		got, err := src.Query(context.Background(), "butter", nil, domain.Constraints{
			MinPrice: domain.Price(2), MaxPrice: domain.Price(3),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"cheap"}, ids(got))
	})

	t.Run("preferred brands", func(t *testing.T) {
		got, err := src.Query(context.Background(), "butter", nil, domain.Constraints{
			PreferredBrands: []string{"kerrygold"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"cheap", "pricey", "unpriced"}, ids(got))
	})
}

func TestLocalSource_Freshness(t *testing.T) {
	src := seededSource(t,
		domain.CandidateProduct{ID: "fresh", Name: "Salt", LastUpdated: sourceNow.AddDate(0, 0, -7)},
		domain.CandidateProduct{ID: "stale", Name: "Salt", LastUpdated: sourceNow.AddDate(0, 0, -7).Add(-time.Minute)},
	)

	got, err := src.Query(context.Background(), "salt", nil, domain.Constraints{})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids(got))
}

func TestLocalSource_CustomFreshnessWindow(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Upsert(context.Background(), domain.CandidateProduct{ID: "1", Name: "Salt", LastUpdated: sourceNow.Add(-3 * time.Hour)})

	src := NewLocalSource(store, localRef, 2*time.Hour)
	src.SetClock(func() time.Time { return sourceNow })

	got, err := src.Query(context.Background(), "salt", nil, domain.Constraints{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocalSource_EmptyTerms(t *testing.T) {
	src := seededSource(t, domain.CandidateProduct{ID: "1", Name: "Salt"})

	got, err := src.Query(context.Background(), "", []string{" "}, domain.Constraints{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLocalSource_StoreFailure(t *testing.T) {
	store := failingStore{MemoryStore: NewMemoryStore(), err: errors.New("disk on fire")}
	src := NewLocalSource(store, localRef, 0)

	_, err := src.Query(context.Background(), "salt", nil, domain.Constraints{})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "disk on fire")
}
