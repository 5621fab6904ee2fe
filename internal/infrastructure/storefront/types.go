package storefront

import "time"

// RemoteProduct is a product as reported by a storefront search API
type RemoteProduct struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title"`
	Brand     string     `json:"brand,omitempty"`
	Price     *float64   `json:"price,omitempty"`
	Currency  string     `json:"currency,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	URL       string     `json:"url"`
	Size      string     `json:"size,omitempty"`
	Unit      string     `json:"unit,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Score     float64    `json:"score,omitempty"` // remote relevance, not used for ranking
}

// SearchResponse represents the response from a storefront search API
type SearchResponse struct {
	Products []RemoteProduct `json:"products"`
	Total    int             `json:"total"`
}
