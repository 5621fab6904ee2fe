package domain

import "time"

// StoreRef identifies the catalog a candidate came from
type StoreRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// CandidateProduct is a purchasable product returned by a catalog source
type CandidateProduct struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Currency    string    `json:"currency"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	ProductURL  string    `json:"productUrl"`
	Store       StoreRef  `json:"store"`
	PackageSize string    `json:"packageSize,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ScoredCandidate is a candidate with its relevance to the searched ingredient
type ScoredCandidate struct {
	CandidateProduct
	MatchScore float64 `json:"matchScore"` // 0-1
}

// SearchOutcome is the ranked result of one ingredient search.
// DegradedSources lists the stores that failed or timed out.
type SearchOutcome struct {
	Results         []ScoredCandidate `json:"results"`
	DegradedSources []StoreRef        `json:"degradedSources"`
}

// Price returns a pointer to p, for building candidates with a known price
func Price(p float64) *float64 {
	return &p
}
