package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"movie-service/internal/domain"
)

// MemoryMovieStore keeps records in process memory in insertion order. It
// backs the memory:// URI and the handler tests.
type MemoryMovieStore struct {
	mu     sync.RWMutex
	movies map[string]*domain.Movie
	order  []string
	now    func() time.Time
	logger *slog.Logger
}

func NewMemoryMovieStore(logger *slog.Logger) *MemoryMovieStore {
	return &MemoryMovieStore{
		movies: make(map[string]*domain.Movie),
		now:    domain.Now,
		logger: logger,
	}
}

func (m *MemoryMovieStore) List(ctx context.Context, limit int) ([]*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limit = clampLimit(limit)
	m.logger.DebugContext(ctx, "Listing movies from memory", slog.Int("limit", limit), slog.Int("stored", len(m.order)))

	out := make([]*domain.Movie, 0, min(limit, len(m.order)))
	for _, id := range m.order {
		if len(out) == limit {
			break
		}
		out = append(out, m.movies[id].Clone())
	}
	return out, nil
}

func (m *MemoryMovieStore) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	movie, ok := m.movies[oid.Hex()]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return movie.Clone(), nil
}

func (m *MemoryMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	if err := checkTitle(movie.Title); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	movie.ID = NewID()
	movie.CreatedAt = m.now()
	movie.UpdatedAt = movie.CreatedAt
	m.movies[movie.ID] = movie.Clone()
	m.order = append(m.order, movie.ID)
	m.logger.DebugContext(ctx, "Movie created in memory", slog.String("movieID", movie.ID))
	return nil
}

func (m *MemoryMovieStore) Update(ctx context.Context, id string, fields domain.MovieFields) (*domain.Movie, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.movies[oid.Hex()]
	if !ok {
		return nil, ErrMovieNotFound
	}
	updated := existing.Clone()
	fields.ApplyTo(updated)
	if err := checkTitle(updated.Title); err != nil {
		return nil, err
	}
	if now := m.now(); now.After(updated.UpdatedAt) {
		updated.UpdatedAt = now
	}
	m.movies[updated.ID] = updated
	return updated.Clone(), nil
}

func (m *MemoryMovieStore) Delete(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := oid.Hex()
	movie, ok := m.movies[key]
	if !ok {
		return nil, ErrMovieNotFound
	}
	delete(m.movies, key)
	for i, v := range m.order {
		if v == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return movie, nil
}

func (m *MemoryMovieStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryMovieStore) Close(ctx context.Context) error {
	return nil
}
