package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/quotestore/internal/model"
	"github.com/vyrodovalexey/quotestore/internal/service"
)

// Version is the application version.
const Version = "1.0.0"

// DefaultPopularTagsLimit is used when a handler is built with a non-positive limit.
const DefaultPopularTagsLimit = 10

// errBadQuery marks malformed query parameters.
var errBadQuery = errors.New("invalid query parameter")

// RESTHandler handles REST API requests for quotes.
type RESTHandler struct {
	quotes       *service.QuoteService
	logger       *zap.Logger
	popularLimit int
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(quotes *service.QuoteService, logger *zap.Logger, popularLimit int) *RESTHandler {
	if popularLimit <= 0 {
		popularLimit = DefaultPopularTagsLimit
	}
	return &RESTHandler{
		quotes:       quotes,
		logger:       logger,
		popularLimit: popularLimit,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/quotes", h.ListQuotes).Methods(http.MethodGet)
	api.HandleFunc("/quotes", h.CreateQuote).Methods(http.MethodPost)
	api.HandleFunc("/quotes", h.ResetQuotes).Methods(http.MethodDelete)
	api.HandleFunc("/quotes/bulk", h.SaveQuotes).Methods(http.MethodPost)
	api.HandleFunc("/quotes/archive", h.ArchiveQuotes).Methods(http.MethodPost)
	api.HandleFunc("/quotes/search", h.SearchQuotes).Methods(http.MethodGet)
	api.HandleFunc("/quotes/match", h.MatchTags).Methods(http.MethodGet)
	api.HandleFunc("/quotes/{id:[0-9]+}", h.GetQuote).Methods(http.MethodGet)
	api.HandleFunc("/quotes/{id:[0-9]+}", h.UpdateQuote).Methods(http.MethodPut)
	api.HandleFunc("/quotes/{id:[0-9]+}", h.DeleteQuote).Methods(http.MethodDelete)
	api.HandleFunc("/tags", h.ListTags).Methods(http.MethodGet)
	api.HandleFunc("/tags/popular", h.PopularTags).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/stats/status", h.StatusCounts).Methods(http.MethodGet)
	api.HandleFunc("/stats/categories", h.CategoryGroups).Methods(http.MethodGet)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
		Quotes:  h.quotes.Count(),
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ListQuotes handles GET /api/v1/quotes requests.
//
// At most one filter is applied, checked in this order: status, category,
// tag, author, title, favorite, min_rating, from/to.
func (h *RESTHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.selectQuotes(r)
	if err != nil {
		h.logger.Warn("invalid list filter", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(quotes))
}

func (h *RESTHandler) selectQuotes(r *http.Request) ([]model.Quote, error) {
	q := r.URL.Query()

	switch {
	case q.Has("status"):
		status := model.Status(strings.ToUpper(q.Get("status")))
		if !status.Valid() {
			return nil, fmt.Errorf("%w: status %q", errBadQuery, q.Get("status"))
		}
		return h.quotes.FindByStatus(status), nil
	case q.Has("category"):
		return h.quotes.FindByCategory(q.Get("category")), nil
	case q.Has("tag"):
		return h.quotes.FindByTag(q.Get("tag")), nil
	case q.Has("author"):
		return h.quotes.FindByAuthor(q.Get("author")), nil
	case q.Has("title"):
		return h.quotes.FindByTitleContaining(q.Get("title")), nil
	case q.Has("favorite"):
		fav, err := strconv.ParseBool(q.Get("favorite"))
		if err != nil {
			return nil, fmt.Errorf("%w: favorite: %w", errBadQuery, err)
		}
		if !fav {
			return h.quotes.List(), nil
		}
		return h.quotes.FindFavorites(), nil
	case q.Has("min_rating"):
		minRating, err := strconv.ParseFloat(q.Get("min_rating"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: min_rating: %w", errBadQuery, err)
		}
		return h.quotes.FindByMinRating(minRating), nil
	case q.Has("from") || q.Has("to"):
		from, err := time.Parse(time.RFC3339, q.Get("from"))
		if err != nil {
			return nil, fmt.Errorf("%w: from: %w", errBadQuery, err)
		}
		to, err := time.Parse(time.RFC3339, q.Get("to"))
		if err != nil {
			return nil, fmt.Errorf("%w: to: %w", errBadQuery, err)
		}
		return h.quotes.FindByDateRange(from, to), nil
	default:
		return h.quotes.List(), nil
	}
}

// GetQuote handles GET /api/v1/quotes/{id} requests.
func (h *RESTHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}

	quote, found := h.quotes.Get(id)
	if !found {
		h.writeError(w, http.StatusNotFound, "quote not found")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(quote))
}

// CreateQuote handles POST /api/v1/quotes requests.
func (h *RESTHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var input model.Quote
	if !h.decode(w, r, &input) {
		return
	}

	quote, err := h.quotes.Create(input)
	if err != nil {
		h.handleServiceError(w, err, "create quote")
		return
	}

	h.writeJSON(w, http.StatusCreated, model.NewSuccessResponse(quote))
}

// UpdateQuote handles PUT /api/v1/quotes/{id} requests.
func (h *RESTHandler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}

	var input model.Quote
	if !h.decode(w, r, &input) {
		return
	}

	quote, err := h.quotes.Update(id, input)
	if err != nil {
		h.handleServiceError(w, err, "update quote")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(quote))
}

// DeleteQuote handles DELETE /api/v1/quotes/{id} requests.
func (h *RESTHandler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quoteID(w, r)
	if !ok {
		return
	}

	if err := h.quotes.Delete(id); err != nil {
		h.handleServiceError(w, err, "delete quote")
		return
	}

	h.writeJSON(w, http.StatusNoContent, nil)
}

// SaveQuotes handles POST /api/v1/quotes/bulk requests.
func (h *RESTHandler) SaveQuotes(w http.ResponseWriter, r *http.Request) {
	var input []model.Quote
	if !h.decode(w, r, &input) {
		return
	}

	saved, err := h.quotes.SaveAll(input)
	if err != nil {
		h.handleServiceError(w, err, "save quotes")
		return
	}

	h.writeJSON(w, http.StatusCreated, model.NewSuccessResponse(saved))
}

// ArchiveQuotes handles POST /api/v1/quotes/archive requests.
func (h *RESTHandler) ArchiveQuotes(w http.ResponseWriter, _ *http.Request) {
	n, err := h.quotes.ArchiveInactiveItems()
	if err != nil {
		h.handleServiceError(w, err, "archive quotes")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(model.ArchiveResult{Archived: n}))
}

// ResetQuotes handles DELETE /api/v1/quotes requests.
func (h *RESTHandler) ResetQuotes(w http.ResponseWriter, _ *http.Request) {
	h.quotes.Reset()
	h.writeJSON(w, http.StatusNoContent, nil)
}

// SearchQuotes handles GET /api/v1/quotes/search?q= requests.
func (h *RESTHandler) SearchQuotes(w http.ResponseWriter, r *http.Request) {
	results := h.quotes.Search(r.URL.Query().Get("q"))
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(results))
}

// MatchTags handles GET /api/v1/quotes/match?all=a,b and ?any=a,b requests.
func (h *RESTHandler) MatchTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var results []model.Quote
	switch {
	case q.Has("all"):
		results = h.quotes.FindByAllTags(splitList(q.Get("all"))...)
	case q.Has("any"):
		results = h.quotes.FindByAnyTag(splitList(q.Get("any"))...)
	default:
		h.writeError(w, http.StatusBadRequest, "one of all or any is required")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(results))
}

// ListTags handles GET /api/v1/tags requests.
func (h *RESTHandler) ListTags(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.quotes.UniqueTags()))
}

// PopularTags handles GET /api/v1/tags/popular?limit= requests.
func (h *RESTHandler) PopularTags(w http.ResponseWriter, r *http.Request) {
	limit := h.popularLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ranked, err := h.quotes.MostPopularTagCounts(limit)
	if err != nil {
		h.handleServiceError(w, err, "popular tags")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(ranked))
}

// ListCategories handles GET /api/v1/categories requests.
func (h *RESTHandler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.quotes.UniqueCategories()))
}

// StatusCounts handles GET /api/v1/stats/status requests.
func (h *RESTHandler) StatusCounts(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.quotes.CountByStatus()))
}

// CategoryGroups handles GET /api/v1/stats/categories requests.
func (h *RESTHandler) CategoryGroups(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.quotes.GroupByCategory()))
}

// quoteID parses the {id} path variable, writing a 400 on failure.
func (h *RESTHandler) quoteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid quote ID")
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into dst, writing a 400 on failure.
func (h *RESTHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// splitList splits a comma separated parameter, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// handleServiceError maps service errors to HTTP responses.
func (h *RESTHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case model.IsValidationError(err):
		h.logger.Warn("validation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "quote not found")
	case errors.Is(err, service.ErrInvalidLimit):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("service operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	response := model.ErrorResponse{
		Code:    status,
		Message: message,
	}
	h.writeJSON(w, status, response)
}
