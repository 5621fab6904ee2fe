package domain

import "context"

// CatalogSource is a provider of candidate products for an ingredient.
// Implementations must honor ctx cancellation and return an error wrapping
// ErrSourceUnavailable when they cannot answer.
type CatalogSource interface {
	Store() StoreRef
	Query(ctx context.Context, canonical string, synonyms []string, constraints Constraints) ([]CandidateProduct, error)
}

// ProductStore holds the internal catalog
type ProductStore interface {
	Upsert(ctx context.Context, product CandidateProduct) error
	All(ctx context.Context) ([]CandidateProduct, error)
}
