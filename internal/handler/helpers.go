package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/atlas-forum/atlas/internal/domain"
	internal_errors "github.com/atlas-forum/atlas/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ParseQueryOptions reads page, search, sort and order from a query string.
// The page size always comes from the server.
func ParseQueryOptions(values url.Values, pageSize int) domain.QueryOptions {
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil {
		page = 1
	}
	opts := domain.NewQueryOptions(values.Get("search"), page, pageSize)
	if sort := values.Get("sort"); sort != "" {
		opts = opts.WithOrder(sort, !strings.EqualFold(values.Get("order"), "asc"))
	}
	return opts
}

// uuidParam parses a chi url parameter as an id. A malformed id cannot match anything, so it is a 404.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, internal_errors.NotFound("Invalid " + name)
	}
	return id, nil
}

func (h *Handler) queryOptions(r *http.Request) domain.QueryOptions {
	return ParseQueryOptions(r.URL.Query(), h.cfg.Public.PageSize)
}

func (h *Handler) searchOptions(r *http.Request) domain.QueryOptions {
	return ParseQueryOptions(r.URL.Query(), h.cfg.Public.SearchPageSize)
}
