package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"movie-service/internal/domain"
)

func TestUpdateDocument(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	fields := domain.MovieFields{
		Title:    domain.Some("Tenet"),
		Rating:   domain.Some(7.3),
		Director: domain.Null[string](),
	}

	got := updateDocument(fields, now)
	want := bson.D{
		{Key: "$max", Value: bson.D{{Key: "updatedAt", Value: now}}},
		{Key: "$set", Value: bson.D{{Key: "title", Value: "Tenet"}, {Key: "rating", Value: 7.3}}},
		{Key: "$unset", Value: bson.D{{Key: "director", Value: ""}}},
	}

	gotBytes, err := bson.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal(got) err=%v", err)
	}
	wantBytes, err := bson.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal(want) err=%v", err)
	}
	if string(gotBytes) != string(wantBytes) {
		t.Fatalf("updateDocument=%v, want %v", got, want)
	}
}

func TestUpdateDocument_EmptyPatchOnlyTouchesUpdatedAt(t *testing.T) {
	got := updateDocument(domain.MovieFields{}, time.Now())
	if len(got) != 1 || got[0].Key != "$max" {
		t.Fatalf("updateDocument(empty)=%v, want only $max", got)
	}
}

func TestMovieDocument_RoundTrip(t *testing.T) {
	now := domain.Now()
	year := 2010
	doc := movieDocument{ID: bson.NewObjectID(), Title: "Inception", Year: &year, CreatedAt: now, UpdatedAt: now}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal err=%v", err)
	}
	var back movieDocument
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal err=%v", err)
	}
	m := back.toDomain()
	if m.ID != doc.ID.Hex() || m.Title != "Inception" || m.Year == nil || *m.Year != 2010 {
		t.Fatalf("toDomain=%+v", m)
	}
	if m.Director != nil || m.Rating != nil {
		t.Fatalf("unset optional fields decoded as %v/%v", m.Director, m.Rating)
	}
	if !m.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt=%v, want %v", m.CreatedAt, now)
	}
}

func TestMongoStore_MapError(t *testing.T) {
	s := &MongoMovieStore{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	ctx := context.Background()

	if err := s.mapError(ctx, "get", "x", mongo.ErrNoDocuments); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("ErrNoDocuments mapped to %v", err)
	}
	validation := mongo.CommandError{Code: codeDocumentValidationFailure, Message: "Document failed validation"}
	if err := s.mapError(ctx, "update", "x", validation); !errors.Is(err, ErrInvalidMovie) {
		t.Fatalf("validation failure mapped to %v", err)
	}
	boom := errors.New("connection reset")
	err := s.mapError(ctx, "delete", "x", boom)
	if !errors.Is(err, boom) || errors.Is(err, ErrMovieNotFound) || errors.Is(err, ErrInvalidMovie) {
		t.Fatalf("infrastructure error mapped to %v", err)
	}
}
