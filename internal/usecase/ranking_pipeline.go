package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/macrolens/basket/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline defaults
const (
	DefaultScoreThreshold   = 0.1
	DefaultPerSourceTimeout = 5 * time.Second
	DefaultMaxResults       = 10
	DefaultBatchConcurrency = 4
	scoreTieBand            = 0.1
	scoreTieBandEpsilon     = 1e-9
)

// PipelineConfig holds configuration for the ranking pipeline
type PipelineConfig struct {
	FreshnessWindow   time.Duration
	ScoreThreshold    float64
	PerSourceTimeout  time.Duration
	DefaultMaxResults int
	BatchConcurrency  int
}

// RankingPipeline resolves an ingredient to ranked product candidates across
// every configured catalog source. It holds no per-search state and is safe
// for concurrent use.
type RankingPipeline struct {
	sources  []domain.CatalogSource
	resolver *SynonymResolver
	config   PipelineConfig
	logger   *zap.Logger
	now      func() time.Time
}

// BatchResult is the outcome of one query within SearchBatch
type BatchResult struct {
	Query   domain.IngredientQuery
	Outcome *domain.SearchOutcome
	Err     error
}

// sourceResult is what one source contributed to a search
type sourceResult struct {
	candidates []domain.CandidateProduct
	err        error
	elapsed    time.Duration
}

// NewRankingPipeline creates a pipeline over the given sources. Zero config
// values fall back to the package defaults; a nil resolver means no synonyms.
func NewRankingPipeline(
	sources []domain.CatalogSource,
	resolver *SynonymResolver,
	config PipelineConfig,
	logger *zap.Logger,
) *RankingPipeline {
	if config.FreshnessWindow <= 0 {
		config.FreshnessWindow = DefaultFreshnessWindow
	}
	if config.ScoreThreshold <= 0 {
		config.ScoreThreshold = DefaultScoreThreshold
	}
	if config.PerSourceTimeout <= 0 {
		config.PerSourceTimeout = DefaultPerSourceTimeout
	}
	if config.DefaultMaxResults <= 0 {
		config.DefaultMaxResults = DefaultMaxResults
	}
	if config.BatchConcurrency <= 0 {
		config.BatchConcurrency = DefaultBatchConcurrency
	}
	if resolver == nil {
		resolver = NewSynonymResolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RankingPipeline{
		sources:  append([]domain.CatalogSource(nil), sources...),
		resolver: resolver,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the clock used by the freshness filter
func (p *RankingPipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Config returns the effective configuration after defaults were applied
func (p *RankingPipeline) Config() PipelineConfig {
	return p.config
}

// Search finds, scores and ranks product candidates for one ingredient.
// Flow: canonicalize -> resolve synonyms -> query all sources -> score -> filter -> sort -> truncate
func (p *RankingPipeline) Search(ctx context.Context, query domain.IngredientQuery) (*domain.SearchOutcome, error) {
	canonical := Canonicalize(query.Name)
	if err := validateQuery(query, canonical); err != nil {
		return nil, err
	}

	if len(p.sources) == 0 {
		return nil, fmt.Errorf("%w: no catalog sources configured", domain.ErrSearchUnavailable)
	}

	synonyms := p.resolver.Resolve(canonical)
	constraints := query.ConstraintsOrEmpty()

	results := p.fanOut(ctx, canonical, synonyms, constraints)

	// The caller went away; every source saw the same cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	degraded := make([]domain.StoreRef, 0)
	var candidates []domain.CandidateProduct
	for i, res := range results {
		store := p.sources[i].Store()
		if res.err != nil {
			p.logger.Warn("catalog source degraded",
				zap.String("store", store.ID),
				zap.String("ingredient", canonical),
				zap.Duration("duration", res.elapsed),
				zap.Error(res.err))
			degraded = append(degraded, store)
			continue
		}
		candidates = append(candidates, res.candidates...)
	}

	if len(degraded) == len(p.sources) {
		return nil, fmt.Errorf("%w: all %d catalog sources failed", domain.ErrSearchUnavailable, len(p.sources))
	}

	terms := append([]string{canonical}, synonyms...)
	ranked := p.rank(candidates, terms, constraints)

	p.logger.Debug("ingredient search complete",
		zap.String("ingredient", canonical),
		zap.Strings("synonyms", synonyms),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(ranked)),
		zap.Int("degraded", len(degraded)))

	return &domain.SearchOutcome{
		Results:         ranked,
		DegradedSources: degraded,
	}, nil
}

// SearchBatch runs independent searches for a list of ingredients with bounded
// concurrency. Results keep the order of queries.
func (p *RankingPipeline) SearchBatch(ctx context.Context, queries []domain.IngredientQuery) []BatchResult {
	results := make([]BatchResult, len(queries))

	var g errgroup.Group
	g.SetLimit(p.config.BatchConcurrency)

	for i, q := range queries {
		g.Go(func() error {
			outcome, err := p.Search(ctx, q)
			results[i] = BatchResult{Query: q, Outcome: outcome, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// fanOut queries every source concurrently and waits for all of them to settle.
// results[i] belongs to p.sources[i] regardless of completion order.
func (p *RankingPipeline) fanOut(
	ctx context.Context,
	canonical string,
	synonyms []string,
	constraints domain.Constraints,
) []sourceResult {
	results := make([]sourceResult, len(p.sources))

	var g errgroup.Group
	for i, src := range p.sources {
		g.Go(func() error {
			results[i] = p.querySource(ctx, src, canonical, append([]string(nil), synonyms...), constraints)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// querySource invokes one source under its own timeout. A source that ignores
// its context is abandoned once the timeout fires.
func (p *RankingPipeline) querySource(
	ctx context.Context,
	src domain.CatalogSource,
	canonical string,
	synonyms []string,
	constraints domain.Constraints,
) sourceResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.config.PerSourceTimeout)
	defer cancel()

	done := make(chan sourceResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- sourceResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		candidates, err := src.Query(ctx, canonical, synonyms, constraints)
		done <- sourceResult{candidates: candidates, err: err}
	}()

	var res sourceResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = sourceResult{err: ctx.Err()}
	}
	res.elapsed = time.Since(start)

	if res.err != nil {
		res = sourceResult{
			err:     &domain.SourceError{Store: src.Store(), Err: res.err},
			elapsed: res.elapsed,
		}
	}
	return res
}

// rank scores, filters, sorts and truncates the merged candidates
func (p *RankingPipeline) rank(
	candidates []domain.CandidateProduct,
	terms []string,
	constraints domain.Constraints,
) []domain.ScoredCandidate {
	now := p.now()
	seen := make(map[string]bool, len(candidates))

	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := c.Store.ID + "\x00" + c.ID
		if seen[key] {
			continue
		}

		if !IsFresh(c, p.config.FreshnessWindow, now) {
			continue
		}
		if !constraints.PriceInRange(c.Price) {
			continue
		}
		if !constraints.BrandPreferred(c.Brand) {
			continue
		}

		score := BestScore(c.Name, terms)
		if score <= p.config.ScoreThreshold {
			continue
		}
		// only a copy that passed every filter claims the id
		seen[key] = true
		scored = append(scored, domain.ScoredCandidate{CandidateProduct: c, MatchScore: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return rankedBefore(scored[i], scored[j])
	})

	limit := p.config.DefaultMaxResults
	if constraints.MaxResults > 0 {
		limit = constraints.MaxResults
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	return scored
}

// rankedBefore orders candidates by score band (descending), then known price
// (ascending, priced before unpriced), then store name, then exact score, then
// name, store id and product id so the order is total.
func rankedBefore(a, b domain.ScoredCandidate) bool {
	if ba, bb := scoreBand(a.MatchScore), scoreBand(b.MatchScore); ba != bb {
		return ba > bb
	}

	aPriced, bPriced := a.Price != nil, b.Price != nil
	if aPriced && bPriced && *a.Price != *b.Price {
		return *a.Price < *b.Price
	}
	if aPriced != bPriced {
		return aPriced
	}

	if a.Store.Name != b.Store.Name {
		return a.Store.Name < b.Store.Name
	}
	if a.MatchScore != b.MatchScore {
		return a.MatchScore > b.MatchScore
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Store.ID != b.Store.ID {
		return a.Store.ID < b.Store.ID
	}
	return a.ID < b.ID
}

// scoreBand groups scores into 0.1-wide bands treated as ties
func scoreBand(score float64) int {
	return int(math.Floor(score/scoreTieBand + scoreTieBandEpsilon))
}

// validateQuery rejects queries before any source is contacted
func validateQuery(query domain.IngredientQuery, canonical string) error {
	if canonical == "" {
		return fmt.Errorf("%w: name %q has no searchable characters", domain.ErrInvalidQuery, query.Name)
	}
	if query.Quantity < 0 || math.IsNaN(query.Quantity) {
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidQuery)
	}
	c := query.ConstraintsOrEmpty()
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return fmt.Errorf("%w: minPrice %.2f exceeds maxPrice %.2f", domain.ErrInvalidQuery, *c.MinPrice, *c.MaxPrice)
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("%w: maxResults must not be negative", domain.ErrInvalidQuery)
	}
	return nil
}

// IsRetryable reports whether a search error may succeed when retried
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrSearchUnavailable)
}
