package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/macrolens/basket/internal/domain"
	"github.com/macrolens/basket/internal/usecase"
)

// LocalSource searches the internal catalog. Price range, preferred brands and
// freshness are applied here, before candidates reach the pipeline.
type LocalSource struct {
	store           domain.ProductStore
	ref             domain.StoreRef
	freshnessWindow time.Duration
	now             func() time.Time
}

// NewLocalSource creates a catalog source over store. A non-positive window
// falls back to usecase.DefaultFreshnessWindow.
func NewLocalSource(store domain.ProductStore, ref domain.StoreRef, freshnessWindow time.Duration) *LocalSource {
	if freshnessWindow <= 0 {
		freshnessWindow = usecase.DefaultFreshnessWindow
	}
	return &LocalSource{
		store:           store,
		ref:             ref,
		freshnessWindow: freshnessWindow,
		now:             time.Now,
	}
}

// SetClock replaces the clock used for the freshness check
func (s *LocalSource) SetClock(now func() time.Time) {
	s.now = now
}

// Store identifies the internal catalog
func (s *LocalSource) Store() domain.StoreRef {
	return s.ref
}

// Query returns catalog products whose canonical name contains the ingredient
// name or any synonym
func (s *LocalSource) Query(
	ctx context.Context,
	canonical string,
	synonyms []string,
	constraints domain.Constraints,
) ([]domain.CandidateProduct, error) {
	products, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	terms := searchTerms(canonical, synonyms)
	if len(terms) == 0 {
		return []domain.CandidateProduct{}, nil
	}

	matches := make([]domain.CandidateProduct, 0)
	for _, p := range products {
		if !containsAny(usecase.Canonicalize(p.Name), terms) {
			continue
		}
		if !constraints.PriceInRange(p.Price) || !constraints.BrandPreferred(p.Brand) {
			continue
		}
		if p.Store.ID == "" {
			p.Store = s.ref
		}
		matches = append(matches, p)
	}

	return usecase.FilterFresh(matches, s.freshnessWindow, s.now()), nil
}

// searchTerms drops empty terms; synonyms are expected to be canonical already
func searchTerms(canonical string, synonyms []string) []string {
	terms := make([]string, 0, 1+len(synonyms))
	for _, t := range append([]string{canonical}, synonyms...) {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

func containsAny(name string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}
