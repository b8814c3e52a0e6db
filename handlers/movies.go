package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinestream/models"
	"cinestream/services/library"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type movieService interface {
	Search(ctx context.Context, query string, page, pageSize int, userID string) (*models.PaginatedMovies, error)
	Popular(ctx context.Context, page, pageSize int, userID string) (*models.PaginatedMovies, error)
	GetByID(ctx context.Context, id, userID string) (*models.MovieDetails, error)
}

var _ movieService = (*library.Service)(nil)

type watchedService interface {
	Mark(userID, movieID string) error
	Unmark(userID, movieID string) error
}

// MoviesHandler exposes the aggregation engine over HTTP. Authentication
// lives in front of this service; the caller identity arrives as an
// X-User-ID header and an empty one simply skips the watched join.
type MoviesHandler struct {
	Service movieService
	Watched watchedService
}

func NewMoviesHandler(s movieService, w watchedService) *MoviesHandler {
	return &MoviesHandler{Service: s, Watched: w}
}

// Register mounts the movie routes on the router.
func (h *MoviesHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/movies/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/movies/popular", h.Popular).Methods(http.MethodGet)
	r.HandleFunc("/api/movies/{id}", h.GetByID).Methods(http.MethodGet)
	r.HandleFunc("/api/movies/{id}/watched", h.MarkWatched).Methods(http.MethodPost)
	r.HandleFunc("/api/movies/{id}/watched", h.UnmarkWatched).Methods(http.MethodDelete)
}

func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	page, pageSize := parsePagination(r)

	result, err := h.Service.Search(r.Context(), query, page, pageSize, userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MoviesHandler) Popular(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := h.Service.Popular(r.Context(), page, pageSize, userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MoviesHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	details, err := h.Service.GetByID(r.Context(), id, userID(r))
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "movie not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *MoviesHandler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	h.setWatched(w, r, true)
}

func (h *MoviesHandler) UnmarkWatched(w http.ResponseWriter, r *http.Request) {
	h.setWatched(w, r, false)
}

func (h *MoviesHandler) setWatched(w http.ResponseWriter, r *http.Request, watched bool) {
	user := userID(r)
	if user == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}
	id := mux.Vars(r)["id"]

	var err error
	if watched {
		err = h.Watched.Mark(user, id)
	} else {
		err = h.Watched.Unmark(user, id)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"watched": watched})
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func parsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = defaultPageSize
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
