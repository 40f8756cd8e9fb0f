// movie-service/internal/grpc/server.go
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"movie-service/internal/domain"
	"movie-service/internal/store"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server implements MovieInterServiceServer on top of a MovieStore.
type Server struct {
	store  store.MovieStore
	logger *slog.Logger
}

// NewServer creates the gRPC service for the movie store.
func NewServer(movieStore store.MovieStore, logger *slog.Logger) *Server {
	return &Server{
		store:  movieStore,
		logger: logger,
	}
}

// movieToStruct flattens a movie into a Struct with the same keys as the
// HTTP JSON. Unset optional fields are omitted.
func movieToStruct(movie *domain.Movie) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"id":        movie.ID,
		"title":     movie.Title,
		"createdAt": movie.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": movie.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if movie.Year != nil {
		fields["year"] = *movie.Year
	}
	if movie.Director != nil {
		fields["director"] = *movie.Director
	}
	if movie.Rating != nil {
		fields["rating"] = *movie.Rating
	}
	return structpb.NewStruct(fields)
}

func (s *Server) lookup(ctx context.Context, method string, req *wrapperspb.StringValue) (*domain.Movie, error) {
	movieID := req.GetValue()
	if movieID == "" {
		s.logger.WarnContext(ctx, "gRPC call with empty movie id", slog.String("method", method))
		return nil, status.Error(codes.InvalidArgument, "movie id cannot be empty")
	}
	movie, err := s.store.GetByID(ctx, movieID)
	switch {
	case err == nil:
		return movie, nil
	case errors.Is(err, store.ErrInvalidID):
		return nil, status.Errorf(codes.InvalidArgument, "invalid movie id %q", movieID)
	case errors.Is(err, store.ErrMovieNotFound):
		return nil, err
	default:
		s.logger.ErrorContext(ctx, "Failed to get movie from store", slog.String("method", method), slog.String("movie_id", movieID), slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to retrieve movie")
	}
}

func (s *Server) GetMovieInfo(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	movie, err := s.lookup(ctx, "GetMovieInfo", req)
	if errors.Is(err, store.ErrMovieNotFound) {
		return nil, status.Errorf(codes.NotFound, "movie not found with id %s", req.GetValue())
	}
	if err != nil {
		return nil, err
	}
	out, err := movieToStruct(movie)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode movie: %v", err))
	}
	return out, nil
}

// CheckMovieExists reports false for a well-formed id with no record.
func (s *Server) CheckMovieExists(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	_, err := s.lookup(ctx, "CheckMovieExists", req)
	if errors.Is(err, store.ErrMovieNotFound) {
		return wrapperspb.Bool(false), nil
	}
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bool(true), nil
}
