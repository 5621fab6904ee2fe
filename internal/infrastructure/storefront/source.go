package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/macrolens/basket/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProductSearcher looks products up on one storefront
type ProductSearcher interface {
	SearchProducts(ctx context.Context, term string) ([]RemoteProduct, error)
}

// Source is a catalog source backed by a third-party storefront. It does not
// apply price or brand constraints; the pipeline filters centrally.
type Source struct {
	searcher        ProductSearcher
	ref             domain.StoreRef
	defaultCurrency string
	now             func() time.Time
	logger          *zap.Logger
}

// NewSource creates a catalog source over a storefront searcher
func NewSource(searcher ProductSearcher, ref domain.StoreRef, defaultCurrency string, logger *zap.Logger) *Source {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		searcher:        searcher,
		ref:             ref,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
		logger:          logger,
	}
}

// SetClock replaces the clock used to stamp products without an update time
func (s *Source) SetClock(now func() time.Time) {
	s.now = now
}

// Store identifies the storefront
func (s *Source) Store() domain.StoreRef {
	return s.ref
}

// Query searches the storefront for the ingredient and each synonym.
// It fails only when every term lookup fails; products are de-duplicated by id.
func (s *Source) Query(
	ctx context.Context,
	canonical string,
	synonyms []string,
	constraints domain.Constraints,
) ([]domain.CandidateProduct, error) {
	terms := uniqueTerms(canonical, synonyms)
	if len(terms) == 0 {
		return []domain.CandidateProduct{}, nil
	}

	found := make([][]RemoteProduct, len(terms))
	errs := make([]error, len(terms))

	var g errgroup.Group
	for i, term := range terms {
		g.Go(func() error {
			found[i], errs[i] = s.searcher.SearchProducts(ctx, term)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			s.logger.Debug("storefront term lookup failed",
				zap.String("store", s.ref.ID), zap.String("term", terms[i]), zap.Error(err))
		}
	}
	if failed == len(terms) {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, s.ref.Name, errors.Join(errs...))
	}

	fetchedAt := s.now()
	seen := make(map[string]bool)
	products := make([]domain.CandidateProduct, 0)
	for _, batch := range found {
		for _, remote := range batch {
			if strings.TrimSpace(remote.Title) == "" {
				continue
			}
			p := MapProduct(remote, s.ref, s.defaultCurrency, fetchedAt)
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			products = append(products, p)
		}
	}

	return products, nil
}

// uniqueTerms returns the non-empty search terms, canonical name first
func uniqueTerms(canonical string, synonyms []string) []string {
	seen := make(map[string]bool, 1+len(synonyms))
	terms := make([]string, 0, 1+len(synonyms))
	for _, t := range append([]string{canonical}, synonyms...) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}
