package storefront

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/macrolens/basket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStore = domain.StoreRef{ID: "freshmart", Name: "FreshMart", Domain: "freshmart.example.com"}

func TestMapProduct(t *testing.T) {
	fetchedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2026, 3, 8, 9, 30, 0, 0, time.UTC)

	remote := RemoteProduct{
		ID:        " sku-42 ",
		Title:     "  Organic Zucchini ",
		Brand:     "Green Acres",
		Price:     domain.Price(1.79),
		Currency:  "eur",
		ImageURL:  "/img/sku-42.jpg",
		URL:       "https://freshmart.example.com/p/sku-42",
		Size:      "500",
		Unit:      "g",
		UpdatedAt: &updatedAt,
		Score:     0.99,
	}

	got := MapProduct(remote, testStore, "USD", fetchedAt)

	assert.Equal(t, "sku-42", got.ID)
	assert.Equal(t, "Organic Zucchini", got.Name)
	assert.Equal(t, "Green Acres", got.Brand)
	require.NotNil(t, got.Price)
	assert.Equal(t, 1.79, *got.Price)
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "https://freshmart.example.com/img/sku-42.jpg", got.ImageURL)
	assert.Equal(t, "https://freshmart.example.com/p/sku-42", got.ProductURL)
	assert.Equal(t, testStore, got.Store)
	assert.Equal(t, "500", got.PackageSize)
	assert.Equal(t, "g", got.Unit)
	assert.Equal(t, updatedAt, got.LastUpdated)
}

func TestMapProduct_Defaults(t *testing.T) {
	fetchedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	remote := RemoteProduct{Title: "Courgettes", URL: "/p/courgettes"}

	t.Run("default currency and fetch time", func(t *testing.T) {
		got := MapProduct(remote, testStore, "GBP", fetchedAt)
		assert.Equal(t, "GBP", got.Currency)
		assert.Equal(t, fetchedAt, got.LastUpdated)
		assert.Nil(t, got.Price)
	})

	t.Run("package default currency", func(t *testing.T) {
		got := MapProduct(remote, testStore, "", fetchedAt)
		assert.Equal(t, DefaultCurrency, got.Currency)
	})

	t.Run("synthetic id is a stable uuid", func(t *testing.T) {
		first := MapProduct(remote, testStore, "", fetchedAt)
		second := MapProduct(remote, testStore, "", fetchedAt.Add(time.Hour))

		_, err := uuid.Parse(first.ID)
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, SyntheticID(testStore, "Courgettes", "https://freshmart.example.com/p/courgettes"), first.ID)
	})

	t.Run("synthetic id differs across stores", func(t *testing.T) {
		other := domain.StoreRef{ID: "othermart", Domain: "othermart.example.com"}
		assert.NotEqual(t,
			MapProduct(remote, testStore, "", fetchedAt).ID,
			MapProduct(remote, other, "", fetchedAt).ID)
	})

	t.Run("negative price is treated as unknown", func(t *testing.T) {
		broken := remote
		broken.Price = domain.Price(-1)
		assert.Nil(t, MapProduct(broken, testStore, "", fetchedAt).Price)
	})
}

func TestAbsoluteURL(t *testing.T) {
	testCases := []struct {
		raw, domain, want string
	}{
		{"/p/1", "shop.example.com", "https://shop.example.com/p/1"},
		{"https://cdn.example.com/a.jpg", "shop.example.com", "https://cdn.example.com/a.jpg"},
		{"//cdn.example.com/a.jpg", "shop.example.com", "//cdn.example.com/a.jpg"},
		{"/p/1", "", "/p/1"},
		{"", "shop.example.com", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, absoluteURL(tc.raw, tc.domain))
		})
	}
}
