package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"movie-service/internal/domain"
)

func newTestMemoryStore() *MemoryMovieStore {
	return NewMemoryMovieStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMemoryStore_CreateAssignsIDAndTimestamps(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	movie := domain.MovieFields{Title: domain.Some("Inception"), Year: domain.Some(2010)}.NewMovie()
	if err := s.Create(ctx, movie); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if _, err := ParseID(movie.ID); err != nil {
		t.Fatalf("Create assigned malformed id %q", movie.ID)
	}
	if movie.CreatedAt.IsZero() || !movie.UpdatedAt.Equal(movie.CreatedAt) {
		t.Fatalf("timestamps=%v/%v", movie.CreatedAt, movie.UpdatedAt)
	}

	got, err := s.GetByID(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GetByID err=%v", err)
	}
	if got.Title != "Inception" || *got.Year != 2010 || !got.CreatedAt.Equal(movie.CreatedAt) {
		t.Fatalf("GetByID=%+v", got)
	}
}

func TestMemoryStore_CreateRejectsEmptyTitle(t *testing.T) {
	s := newTestMemoryStore()
	if err := s.Create(context.Background(), &domain.Movie{}); !errors.Is(err, ErrInvalidMovie) {
		t.Fatalf("err=%v, want ErrInvalidMovie", err)
	}
	movies, _ := s.List(context.Background(), DefaultListLimit)
	if len(movies) != 0 {
		t.Fatalf("rejected create persisted %d movies", len(movies))
	}
}

func TestMemoryStore_GetByID_Errors(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	if _, err := s.GetByID(ctx, "not-an-id"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("malformed id err=%v, want ErrInvalidID", err)
	}
	if _, err := s.GetByID(ctx, NewID()); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("unknown id err=%v, want ErrMovieNotFound", err)
	}
}

func TestMemoryStore_UpdateMergesAndRefreshesUpdatedAt(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	movie := domain.MovieFields{Title: domain.Some("Inception"), Director: domain.Some("Nolan")}.NewMovie()
	if err := s.Create(ctx, movie); err != nil {
		t.Fatalf("Create err=%v", err)
	}

	s.now = func() time.Time { return base.Add(time.Minute) }
	got, err := s.Update(ctx, movie.ID, domain.MovieFields{Rating: domain.Some(8.8)})
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if got.Title != "Inception" || got.Director == nil || *got.Director != "Nolan" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if got.Rating == nil || *got.Rating != 8.8 {
		t.Fatalf("rating=%v, want 8.8", got.Rating)
	}
	if !got.CreatedAt.Equal(base) || !got.UpdatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("timestamps=%v/%v", got.CreatedAt, got.UpdatedAt)
	}

	// a clock going backwards never moves updatedAt back
	s.now = func() time.Time { return base.Add(-time.Hour) }
	got, err = s.Update(ctx, movie.ID, domain.MovieFields{})
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if got.UpdatedAt.Before(got.CreatedAt) || !got.UpdatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("updatedAt=%v moved backwards", got.UpdatedAt)
	}
}

func TestMemoryStore_UpdateErrors(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	movie := &domain.Movie{Title: "Inception"}
	if err := s.Create(ctx, movie); err != nil {
		t.Fatalf("Create err=%v", err)
	}

	if _, err := s.Update(ctx, "123", domain.MovieFields{}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("malformed id err=%v", err)
	}
	if _, err := s.Update(ctx, NewID(), domain.MovieFields{}); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("unknown id err=%v", err)
	}
	if _, err := s.Update(ctx, movie.ID, domain.MovieFields{Title: domain.Null[string]()}); !errors.Is(err, ErrInvalidMovie) {
		t.Fatalf("null title err=%v", err)
	}
	got, _ := s.GetByID(ctx, movie.ID)
	if got.Title != "Inception" {
		t.Fatalf("rejected update was written: %+v", got)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	movie := &domain.Movie{Title: "Inception"}
	if err := s.Create(ctx, movie); err != nil {
		t.Fatalf("Create err=%v", err)
	}

	deleted, err := s.Delete(ctx, movie.ID)
	if err != nil || deleted.ID != movie.ID {
		t.Fatalf("Delete=%+v err=%v", deleted, err)
	}
	if _, err := s.GetByID(ctx, movie.ID); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("GetByID after delete err=%v", err)
	}
	if _, err := s.Delete(ctx, movie.ID); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("second Delete err=%v", err)
	}
	if _, err := s.Delete(ctx, "zzz"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("malformed Delete err=%v", err)
	}
}

func TestMemoryStore_ListKeepsInsertionOrderAndCaps(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	var ids []string
	for i := 0; i < DefaultListLimit+5; i++ {
		m := &domain.Movie{Title: "movie"}
		if err := s.Create(ctx, m); err != nil {
			t.Fatalf("Create err=%v", err)
		}
		ids = append(ids, m.ID)
	}

	movies, err := s.List(ctx, DefaultListLimit)
	if err != nil {
		t.Fatalf("List err=%v", err)
	}
	if len(movies) != DefaultListLimit {
		t.Fatalf("len=%d, want %d", len(movies), DefaultListLimit)
	}
	for i, m := range movies {
		if m.ID != ids[i] {
			t.Fatalf("movies[%d]=%s, want %s", i, m.ID, ids[i])
		}
	}

	if movies, _ := s.List(ctx, 1000); len(movies) != DefaultListLimit {
		t.Fatalf("List(1000) len=%d, want cap %d", len(movies), DefaultListLimit)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	movie := &domain.Movie{Title: "Inception"}
	if err := s.Create(ctx, movie); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	movie.Title = "mutated"
	got, _ := s.GetByID(ctx, movie.ID)
	got.Title = "mutated again"
	again, _ := s.GetByID(ctx, movie.ID)
	if again.Title != "Inception" {
		t.Fatalf("stored record mutated through a returned pointer: %q", again.Title)
	}
}
