// movie-service/internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"movie-service/internal/domain"
	"movie-service/internal/store"

	"github.com/gorilla/mux"
)

const (
	maxBodyBytes = 1 << 20
	readyTimeout = 2 * time.Second

	msgInvalidID     = "Invalid id"
	msgNotFound      = "Movie not found"
	msgInvalidCreate = "Invalid movie data"
	msgInvalidUpdate = "Invalid update data"
)

var errTrailingData = errors.New("unexpected data after JSON body")

// MovieHandler holds the dependencies of the HTTP handlers.
type MovieHandler struct {
	store     store.MovieStore
	logger    *slog.Logger
	validator *domain.Validator
}

func NewMovieHandler(s store.MovieStore, l *slog.Logger, v *domain.Validator) *MovieHandler {
	return &MovieHandler{
		store:     s,
		logger:    l,
		validator: v,
	}
}

func (h *MovieHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *MovieHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// respondStoreError maps a store error onto the error taxonomy. invalidMsg is
// used for payloads the store itself rejects, failMsg for everything that is
// not the caller's fault.
func (h *MovieHandler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, invalidMsg, failMsg string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		h.respondError(w, r, http.StatusBadRequest, msgInvalidID)
	case errors.Is(err, store.ErrMovieNotFound):
		h.respondError(w, r, http.StatusNotFound, msgNotFound)
	case errors.Is(err, store.ErrInvalidMovie):
		h.respondError(w, r, http.StatusBadRequest, invalidMsg)
	default:
		h.logger.ErrorContext(r.Context(), "Movie store call failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, failMsg)
	}
}

// decodeFields reads the request body. An empty body decodes to no fields;
// the body must hold exactly one JSON value.
func (h *MovieHandler) decodeFields(w http.ResponseWriter, r *http.Request) (domain.MovieFields, error) {
	var fields domain.MovieFields
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.MovieFields{}, nil
		}
		return domain.MovieFields{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.MovieFields{}, err
		}
		return domain.MovieFields{}, errTrailingData
	}
	return fields, nil
}

func decodeErrorDetail(err error) string {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrTypeMismatch):
		return err.Error()
	case errors.As(err, &maxErr):
		return "request body too large"
	default:
		return "malformed JSON body"
	}
}

// Health answers GET /.
func (h *MovieHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"message": "WS-5 Movie API running"})
}

// Ready answers GET /healthz by pinging the store.
func (h *MovieHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "Store ping failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *MovieHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, "Not found")
}

func (h *MovieHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}

// ListMovies returns up to store.DefaultListLimit movies in store order.
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movies, err := h.store.List(ctx, store.DefaultListLimit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list movies from store", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to fetch movies")
		return
	}
	if movies == nil {
		movies = []*domain.Movie{}
	}
	h.logger.DebugContext(ctx, "Movies list retrieved", slog.Int("count_returned", len(movies)))
	h.respondJSON(w, r, http.StatusOK, movies)
}

func (h *MovieHandler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	movieID := mux.Vars(r)["movieId"]
	movie, err := h.store.GetByID(r.Context(), movieID)
	if err != nil {
		h.respondStoreError(w, r, err, msgInvalidID, "Failed to fetch movie")
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}

// CreateMovie validates the payload before the store sees it; the store
// assigns the id and timestamps.
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fields, err := h.decodeFields(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to decode movie creation request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, msgInvalidCreate+": "+decodeErrorDetail(err))
		return
	}
	if res := h.validator.ValidateCreate(fields); !res.Valid() {
		h.logger.InfoContext(ctx, "Movie creation request validation failed", slog.Any("errors", res.Errors))
		h.respondError(w, r, http.StatusBadRequest, msgInvalidCreate+": "+res.Error())
		return
	}

	movie := fields.NewMovie()
	if err := h.store.Create(ctx, movie); err != nil {
		h.respondStoreError(w, r, err, msgInvalidCreate, "Failed to create movie")
		return
	}
	h.logger.InfoContext(ctx, "Movie created", slog.String("movieID", movie.ID))
	h.respondJSON(w, r, http.StatusCreated, movie)
}

// UpdateMovie applies a partial update and returns the record after the change.
func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movieID := mux.Vars(r)["movieId"]
	fields, err := h.decodeFields(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to decode movie update request body", slog.String("movieID", movieID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, msgInvalidUpdate+": "+decodeErrorDetail(err))
		return
	}
	if res := h.validator.ValidateUpdate(fields); !res.Valid() {
		h.logger.InfoContext(ctx, "Movie update request validation failed", slog.String("movieID", movieID), slog.Any("errors", res.Errors))
		h.respondError(w, r, http.StatusBadRequest, msgInvalidUpdate+": "+res.Error())
		return
	}

	if fields.Empty() {
		h.logger.DebugContext(ctx, "Empty movie update, refreshing updatedAt only", slog.String("movieID", movieID))
	}
	movie, err := h.store.Update(ctx, movieID, fields)
	if err != nil {
		h.respondStoreError(w, r, err, msgInvalidUpdate, "Failed to update movie")
		return
	}
	h.logger.InfoContext(ctx, "Movie updated", slog.String("movieID", movie.ID))
	h.respondJSON(w, r, http.StatusOK, movie)
}

func (h *MovieHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movieID := mux.Vars(r)["movieId"]
	movie, err := h.store.Delete(ctx, movieID)
	if err != nil {
		h.respondStoreError(w, r, err, msgInvalidID, "Failed to delete movie")
		return
	}
	h.logger.InfoContext(ctx, "Movie deleted", slog.String("movieID", movie.ID))
	h.respondJSON(w, r, http.StatusOK, map[string]string{"message": "Deleted", "id": movie.ID})
}
