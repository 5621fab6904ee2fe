package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/macrolens/basket/internal/domain"
)

// DefaultCurrency is used for catalog entries that do not name one
const DefaultCurrency = "USD"

// LoadFile reads a JSON array of products from path
func LoadFile(path string) ([]domain.CandidateProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	products, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return products, nil
}

// Load decodes a JSON array of products. Entries without an id or name are
// rejected; a missing currency becomes DefaultCurrency.
func Load(r io.Reader) ([]domain.CandidateProduct, error) {
	var products []domain.CandidateProduct
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(products))
	for i := range products {
		p := &products[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)

		if p.ID == "" {
			return nil, fmt.Errorf("%w: catalog entry %d has no id", domain.ErrInvalidRequest, i)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("%w: catalog entry %q has no name", domain.ErrInvalidRequest, p.ID)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate catalog id %q", domain.ErrInvalidRequest, p.ID)
		}
		seen[p.ID] = true

		if p.Currency == "" {
			p.Currency = DefaultCurrency
		}
	}

	return products, nil
}

// Seed upserts products into store
func Seed(ctx context.Context, store domain.ProductStore, products []domain.CandidateProduct) error {
	for _, p := range products {
		if err := store.Upsert(ctx, p); err != nil {
			return fmt.Errorf("failed to store product %q: %w", p.ID, err)
		}
	}
	return nil
}
