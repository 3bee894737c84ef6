package publication

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wilber023/poust-microservicio/internal/api/handlers"
	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// HandleGet handles GET /publications/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetPublication(r.Context(), publicationID(r), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, view)
}

// HandleList handles GET /publications?authorId=&visibility=&page=&limit=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("authorId"))
}

// HandleListByAuthor handles GET /profiles/{userId}/publications
func (h *Handler) HandleListByAuthor(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "userId"))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, authorID string) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	result, err := h.service.ListPublications(r.Context(), publications.ListPublicationsRequest{
		AuthorID:   authorID,
		Visibility: r.URL.Query().Get("visibility"),
		ViewerID:   middleware.GetUserID(r),
		Page:       page,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleSearch handles GET /publications/search?q=&authorId=&type=&from=&to=
// from and to are RFC 3339 timestamps.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	q := r.URL.Query()
	criteria := publications.SearchCriteria{
		Query:    strings.TrimSpace(q.Get("q")),
		AuthorID: q.Get("authorId"),
		Type:     publications.PublicationType(q.Get("type")),
	}
	if criteria.From, err = parseTime(q.Get("from")); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "from must be an RFC 3339 timestamp")
		return
	}
	if criteria.To, err = parseTime(q.Get("to")); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "to must be an RFC 3339 timestamp")
		return
	}

	result, err := h.service.SearchPublications(r.Context(), publications.SearchRequest{Criteria: criteria, Page: page})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleLikedByUser handles GET /profiles/{userId}/liked
func (h *Handler) HandleLikedByUser(w http.ResponseWriter, r *http.Request) {
	page, err := handlers.ParsePage(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	result, err := h.service.GetLikedByUser(r.Context(), chi.URLParam(r, "userId"), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// HandleStats handles GET /publications/{id}/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetPublicationStats(r.Context(), publicationID(r), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, stats)
}

// HandleAuthorStats handles GET /profiles/{userId}/publications/stats
func (h *Handler) HandleAuthorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetAuthorStats(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, stats)
}

func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
