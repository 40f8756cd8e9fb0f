// movie-service/internal/store/postgres_movie_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"movie-service/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// seq keeps insertion order for List, mirroring a document store's natural order.
const movieSchema = `CREATE TABLE IF NOT EXISTS movies (
	seq        BIGSERIAL,
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL CHECK (title <> ''),
	year       INTEGER,
	director   TEXT,
	rating     DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

const movieColumns = `id, title, year, director, rating, created_at, updated_at`

// PostgreSQL error codes we map to ErrInvalidMovie.
const (
	pqNotNullViolation = "23502"
	pqCheckViolation   = "23514"
)

// PostgresMovieStore implements MovieStore on a single PostgreSQL table.
type PostgresMovieStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// ConnectPostgres opens a pool, pings it and creates the movies table if it
// does not exist yet.
func ConnectPostgres(ctx context.Context, uri string, logger *slog.Logger) (*PostgresMovieStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s, err := NewPostgresMovieStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.InfoContext(ctx, "Connected to PostgreSQL movie store")
	return s, nil
}

func NewPostgresMovieStore(db *sqlx.DB, logger *slog.Logger) (*PostgresMovieStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresMovieStore{db: db, logger: logger, now: domain.Now}, nil
}

func (s *PostgresMovieStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, movieSchema); err != nil {
		return fmt.Errorf("failed to create movies table: %w", err)
	}
	return nil
}

func (s *PostgresMovieStore) List(ctx context.Context, limit int) ([]*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY seq LIMIT $1`
	movies := []*domain.Movie{}

	s.logger.DebugContext(ctx, "Executing List movies query", slog.Int("limit", clampLimit(limit)))
	if err := s.db.SelectContext(ctx, &movies, query, clampLimit(limit)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	for _, m := range movies {
		normalizeTimes(m)
	}
	return movies, nil
}

func (s *PostgresMovieStore) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`
	var movie domain.Movie
	if err := s.db.GetContext(ctx, &movie, query, oid.Hex()); err != nil {
		return nil, s.mapError(ctx, "get", id, err)
	}
	normalizeTimes(&movie)
	return &movie, nil
}

func (s *PostgresMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	if err := checkTitle(movie.Title); err != nil {
		return err
	}
	query := `INSERT INTO movies (` + movieColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	id := NewID()
	now := s.now()
	s.logger.DebugContext(ctx, "Executing Create movie query", slog.String("movieID", id), slog.String("title", movie.Title))
	_, err := s.db.ExecContext(ctx, query, id, movie.Title, movie.Year, movie.Director, movie.Rating, now, now)
	if err != nil {
		return s.mapError(ctx, "create", id, err)
	}
	movie.ID = id
	movie.CreatedAt = now
	movie.UpdatedAt = now
	s.logger.InfoContext(ctx, "Movie created successfully in DB", slog.String("movieID", id))
	return nil
}

func (s *PostgresMovieStore) Update(ctx context.Context, id string, fields domain.MovieFields) (*domain.Movie, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if fields.Title.Set {
		if err := checkTitle(fields.Title.Or("")); err != nil {
			return nil, err
		}
	}
	query, args := buildUpdate(oid.Hex(), fields, s.now())

	var movie domain.Movie
	s.logger.DebugContext(ctx, "Executing Update movie query", slog.String("movieID", id), slog.String("query", query))
	if err := s.db.GetContext(ctx, &movie, query, args...); err != nil {
		return nil, s.mapError(ctx, "update", id, err)
	}
	normalizeTimes(&movie)
	return &movie, nil
}

func (s *PostgresMovieStore) Delete(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	query := `DELETE FROM movies WHERE id = $1 RETURNING ` + movieColumns
	var movie domain.Movie
	if err := s.db.GetContext(ctx, &movie, query, oid.Hex()); err != nil {
		return nil, s.mapError(ctx, "delete", id, err)
	}
	normalizeTimes(&movie)
	return &movie, nil
}

func (s *PostgresMovieStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresMovieStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// buildUpdate renders a single UPDATE ... RETURNING statement for the
// supplied fields, so the change lands atomically on one row.
func buildUpdate(id string, fields domain.MovieFields, now time.Time) (string, []any) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if fields.Title.Set {
		add("title", fields.Title.Or(""))
	}
	if fields.Year.Set {
		add("year", fields.Year.Value)
	}
	if fields.Director.Set {
		add("director", fields.Director.Value)
	}
	if fields.Rating.Set {
		add("rating", fields.Rating.Value)
	}
	args = append(args, now)
	sets = append(sets, fmt.Sprintf("updated_at = GREATEST(updated_at, $%d)", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE movies SET %s WHERE id = $%d RETURNING %s", strings.Join(sets, ", "), len(args), movieColumns)
	return query, args
}

func normalizeTimes(m *domain.Movie) {
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
}

func (s *PostgresMovieStore) mapError(ctx context.Context, op, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.WarnContext(ctx, "Movie not found in DB", slog.String("op", op), slog.String("movieID", id))
		return ErrMovieNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && (pqErr.Code == pqCheckViolation || pqErr.Code == pqNotNullViolation) {
		s.logger.WarnContext(ctx, "Movie rejected by DB constraint", slog.String("op", op), slog.String("constraint", pqErr.Constraint))
		return fmt.Errorf("%w: %s", ErrInvalidMovie, pqErr.Message)
	}
	s.logger.ErrorContext(ctx, "Movie query failed", slog.String("op", op), slog.String("movieID", id), slog.String("error", err.Error()))
	return fmt.Errorf("failed to %s movie: %w", op, err)
}
