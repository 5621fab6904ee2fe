package domain

import "strings"

// IngredientQuery is a structured ingredient reference produced upstream
// (recipe parsing, OCR, manual entry). Quantity and Unit are informational.
type IngredientQuery struct {
	Name        string       `json:"name" binding:"required"`
	Quantity    float64      `json:"quantity" binding:"gte=0"`
	Unit        string       `json:"unit,omitempty"`
	Constraints *Constraints `json:"constraints,omitempty"`
}

// Constraints are optional caller filters applied to a search
type Constraints struct {
	MinPrice        *float64 `json:"minPrice,omitempty"`
	MaxPrice        *float64 `json:"maxPrice,omitempty"`
	PreferredBrands []string `json:"preferredBrands,omitempty"`
	MaxResults      int      `json:"maxResults,omitempty"`
}

// ConstraintsOrEmpty returns the query constraints, never nil
func (q IngredientQuery) ConstraintsOrEmpty() Constraints {
	if q.Constraints == nil {
		return Constraints{}
	}
	return *q.Constraints
}

// PriceInRange reports whether price satisfies the inclusive min/max bounds.
// An unknown price never satisfies a bound that is set.
func (c Constraints) PriceInRange(price *float64) bool {
	if c.MinPrice == nil && c.MaxPrice == nil {
		return true
	}
	if price == nil {
		return false
	}
	if c.MinPrice != nil && *price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && *price > *c.MaxPrice {
		return false
	}
	return true
}

// BrandPreferred reports whether brand is one of the preferred brands,
// ignoring case. Every brand is preferred when none are listed.
func (c Constraints) BrandPreferred(brand string) bool {
	if len(c.PreferredBrands) == 0 {
		return true
	}
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return false
	}
	for _, preferred := range c.PreferredBrands {
		if strings.EqualFold(strings.TrimSpace(preferred), brand) {
			return true
		}
	}
	return false
}
