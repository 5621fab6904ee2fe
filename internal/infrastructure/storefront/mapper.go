package storefront

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/macrolens/basket/internal/domain"
)

// DefaultCurrency is assumed when a storefront does not report one
const DefaultCurrency = "USD"

// MapProduct converts a storefront product to our domain CandidateProduct.
// Products without an id get a name-based UUID so the same remote product maps
// to the same id on every search.
func MapProduct(remote RemoteProduct, store domain.StoreRef, defaultCurrency string, fetchedAt time.Time) domain.CandidateProduct {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	productURL := absoluteURL(remote.URL, store.Domain)

	id := strings.TrimSpace(remote.ID)
	if id == "" {
		id = SyntheticID(store, remote.Title, productURL)
	}

	currency := strings.ToUpper(strings.TrimSpace(remote.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	lastUpdated := fetchedAt
	if remote.UpdatedAt != nil && !remote.UpdatedAt.IsZero() {
		lastUpdated = *remote.UpdatedAt
	}

	var price *float64
	if remote.Price != nil && *remote.Price >= 0 {
		price = domain.Price(*remote.Price)
	}

	return domain.CandidateProduct{
		ID:          id,
		Name:        strings.TrimSpace(remote.Title),
		Brand:       strings.TrimSpace(remote.Brand),
		Price:       price,
		Currency:    currency,
		ImageURL:    absoluteURL(remote.ImageURL, store.Domain),
		ProductURL:  productURL,
		Store:       store,
		PackageSize: remote.Size,
		Unit:        remote.Unit,
		LastUpdated: lastUpdated,
	}
}

// SyntheticID derives a stable id from the store and the product's name and URL
func SyntheticID(store domain.StoreRef, title, productURL string) string {
	key := store.ID + "|" + strings.ToLower(strings.TrimSpace(title)) + "|" + productURL
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// absoluteURL resolves a site-relative path against the store domain
func absoluteURL(raw, domainName string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || domainName == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return raw
	}
	return "https://" + domainName + raw
}
