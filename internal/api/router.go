// movie-service/internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires the movie routes and wraps them in CORS and the
// request-id, access-log and recovery middleware. Any origin may call the API.
func NewRouter(handler *MovieHandler, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	router.HandleFunc("/", handler.Health).Methods(http.MethodGet)
	router.HandleFunc("/healthz", handler.Ready).Methods(http.MethodGet)

	router.HandleFunc("/api/movies", handler.ListMovies).Methods(http.MethodGet)
	router.HandleFunc("/api/movies", handler.CreateMovie).Methods(http.MethodPost)
	router.HandleFunc("/api/movies/{movieId}", handler.GetMovieByID).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/{movieId}", handler.UpdateMovie).Methods(http.MethodPut)
	router.HandleFunc("/api/movies/{movieId}", handler.DeleteMovie).Methods(http.MethodDelete)

	return withMiddleware(cors.AllowAll().Handler(router), logger)
}

// withMiddleware wraps h so that every request, including one that panics,
// gets a request ID and an access-log line.
func withMiddleware(h http.Handler, logger *slog.Logger) http.Handler {
	h = RecoverMiddleware(logger, h)
	h = AccessLogMiddleware(logger, h)
	return RequestIDMiddleware(h)
}
