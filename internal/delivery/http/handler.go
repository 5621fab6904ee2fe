package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/macrolens/basket/internal/domain"
	"github.com/macrolens/basket/internal/usecase"
	"go.uber.org/zap"
)

// retryAfterSeconds is advertised when every catalog source is down
const retryAfterSeconds = 5

// statusClientClosedRequest is the non-standard status for a request the client abandoned
const statusClientClosedRequest = 499

// maxBatchSize bounds the ingredient list of one batch request
const maxBatchSize = 50

// ProductSearcher is the search surface the handlers depend on
type ProductSearcher interface {
	Search(ctx context.Context, query domain.IngredientQuery) (*domain.SearchOutcome, error)
	SearchBatch(ctx context.Context, queries []domain.IngredientQuery) []usecase.BatchResult
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher ProductSearcher
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher ProductSearcher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		searcher: searcher,
		logger:   logger,
	}
}

// BatchSearchRequest is the body of a batch search
type BatchSearchRequest struct {
	Ingredients []domain.IngredientQuery `json:"ingredients" binding:"required,min=1,dive"`
}

// BatchItem is the outcome of one ingredient in a batch search
type BatchItem struct {
	Ingredient      string                   `json:"ingredient"`
	Results         []domain.ScoredCandidate `json:"results"`
	DegradedSources []domain.StoreRef        `json:"degradedSources"`
	Error           string                   `json:"error,omitempty"`
}

// BatchSearchResponse is the body returned by a batch search
type BatchSearchResponse struct {
	Items []BatchItem `json:"items"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "basket",
		"version": "1.0.0",
	})
}

// SearchProducts resolves one ingredient to ranked store products
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.searcher == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "product search not configured"})
		return
	}

	var query domain.IngredientQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrInvalidRequest.Error(), Details: err.Error()})
		return
	}

	outcome, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, normalizeOutcome(outcome))
}

// SearchBatch resolves a list of ingredients, typically a whole recipe.
// Per-ingredient failures are reported inline; the request itself succeeds.
func (h *Handler) SearchBatch(c *gin.Context) {
	if h.searcher == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "product search not configured"})
		return
	}

	var req BatchSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrInvalidRequest.Error(), Details: err.Error()})
		return
	}
	if len(req.Ingredients) > maxBatchSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   domain.ErrInvalidRequest.Error(),
			Details: "at most " + strconv.Itoa(maxBatchSize) + " ingredients per batch",
		})
		return
	}

	results := h.searcher.SearchBatch(c.Request.Context(), req.Ingredients)

	resp := BatchSearchResponse{Items: make([]BatchItem, len(results))}
	for i, r := range results {
		item := BatchItem{
			Ingredient:      r.Query.Name,
			Results:         []domain.ScoredCandidate{},
			DegradedSources: []domain.StoreRef{},
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
		} else if r.Outcome != nil {
			outcome := normalizeOutcome(r.Outcome)
			item.Results = outcome.Results
			item.DegradedSources = outcome.DegradedSources
		}
		resp.Items[i] = item
	}

	c.JSON(http.StatusOK, resp)
}

// respondError maps search errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case usecase.IsRetryable(err):
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads this response
		h.logger.Debug("product search cancelled by client",
			zap.String("request_id", requestid.Get(c)))
		c.AbortWithStatus(statusClientClosedRequest)
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("product search deadline exceeded",
			zap.String("request_id", requestid.Get(c)))
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "search timed out"})
	default:
		h.logger.Error("product search failed",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// normalizeOutcome makes sure both lists serialize as arrays
func normalizeOutcome(outcome *domain.SearchOutcome) *domain.SearchOutcome {
	if outcome == nil {
		outcome = &domain.SearchOutcome{}
	}
	if outcome.Results == nil {
		outcome.Results = []domain.ScoredCandidate{}
	}
	if outcome.DegradedSources == nil {
		outcome.DegradedSources = []domain.StoreRef{}
	}
	return outcome
}
