package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"movie-service/internal/domain"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrInvalidID     = errors.New("invalid movie id")
	ErrInvalidMovie  = errors.New("movie violates store constraints")
)

// DefaultListLimit caps List results.
const DefaultListLimit = 50

// MovieStore is the persistence boundary behind the HTTP and gRPC handlers.
// Every method is a single-document operation.
type MovieStore interface {
	// List returns at most limit records in store order.
	List(ctx context.Context, limit int) ([]*domain.Movie, error)
	GetByID(ctx context.Context, id string) (*domain.Movie, error)
	// Create assigns ID, CreatedAt and UpdatedAt on movie and persists it.
	Create(ctx context.Context, movie *domain.Movie) error
	// Update applies the supplied fields atomically and returns the record
	// as it is after the update.
	Update(ctx context.Context, id string, fields domain.MovieFields) (*domain.Movie, error)
	// Delete removes the record and returns what was removed.
	Delete(ctx context.Context, id string) (*domain.Movie, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewID returns a fresh record identifier. All backends use ObjectID hex
// strings so that "malformed id" means the same thing everywhere.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// ParseID validates id and returns it as an ObjectID.
func ParseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// Open connects to the backend named by the URI scheme: mongodb and
// mongodb+srv, postgres and postgresql, or memory.
func Open(ctx context.Context, uri string, logger *slog.Logger) (MovieStore, error) {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, fmt.Errorf("store uri %q has no scheme", uri)
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		s, err := ConnectMongo(ctx, uri, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "postgresql":
		s, err := ConnectPostgres(ctx, uri, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryMovieStore(logger), nil
	default:
		return nil, fmt.Errorf("unsupported store uri scheme %q", scheme)
	}
}

func checkTitle(title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidMovie)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
