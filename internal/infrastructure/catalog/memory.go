package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/macrolens/basket/internal/domain"
)

// MemoryStore is a thread-safe in-memory product catalog keyed by product id
type MemoryStore struct {
	data  map[string]domain.CandidateProduct
	mutex sync.RWMutex
}

// NewMemoryStore creates an empty in-memory catalog
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]domain.CandidateProduct),
	}
}

// Upsert stores a product, replacing any product with the same id
func (s *MemoryStore) Upsert(ctx context.Context, product domain.CandidateProduct) error {
	if product.ID == "" || product.Name == "" {
		return domain.ErrInvalidRequest
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[product.ID] = cloneProduct(product)
	return nil
}

// All returns a snapshot of every product, sorted by id
func (s *MemoryStore) All(ctx context.Context) ([]domain.CandidateProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	products := make([]domain.CandidateProduct, 0, len(s.data))
	for _, p := range s.data {
		products = append(products, cloneProduct(p))
	}
	s.mutex.RUnlock()

	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
	return products, nil
}

// Size returns the current number of products in the catalog
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// cloneProduct copies the price pointer so callers never share it with the store
func cloneProduct(p domain.CandidateProduct) domain.CandidateProduct {
	if p.Price != nil {
		p.Price = domain.Price(*p.Price)
	}
	return p
}
