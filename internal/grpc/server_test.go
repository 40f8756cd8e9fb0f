package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"movie-service/internal/domain"
	"movie-service/internal/store"
)

type failingStore struct {
	store.MovieStore
}

func (failingStore) GetByID(context.Context, string) (*domain.Movie, error) {
	return nil, errors.New("connection refused")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer serves s over an in-memory listener and returns a client for it.
func startServer(t *testing.T, s store.MovieStore) (*MovieClient, func()) {
	t.Helper()
	logger := discardLogger()
	lis := bufconn.Listen(1 << 20)
	g, hs := NewGRPCServer(NewServer(s, logger), logger)
	go func() { _ = g.Serve(lis) }()

	client, err := NewMovieClient("passthrough:///bufnet", logger,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("NewMovieClient: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
		g.Stop()
	})
	return client, hs.Shutdown
}

func seed(t *testing.T, s store.MovieStore) *domain.Movie {
	t.Helper()
	year, rating := 2010, 8.8
	m := &domain.Movie{Title: "Inception", Year: &year, Rating: &rating}
	if err := s.Create(context.Background(), m); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return m
}

func TestGetMovieInfo(t *testing.T) {
	s := store.NewMemoryMovieStore(discardLogger())
	m := seed(t, s)
	client, _ := startServer(t, s)

	info, err := client.GetMovieInfo(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMovieInfo: %v", err)
	}
	if info["id"] != m.ID || info["title"] != "Inception" || info["year"] != float64(2010) || info["rating"] != 8.8 {
		t.Fatalf("info=%v", info)
	}
	if _, ok := info["director"]; ok {
		t.Fatalf("unset director present: %v", info)
	}
	if info["createdAt"] == "" || info["updatedAt"] == "" {
		t.Fatalf("timestamps missing: %v", info)
	}
}

func TestGetMovieInfo_Errors(t *testing.T) {
	client, _ := startServer(t, store.NewMemoryMovieStore(discardLogger()))
	tests := []struct {
		id   string
		code codes.Code
	}{
		{"", codes.InvalidArgument},
		{"nope", codes.InvalidArgument},
		{store.NewID(), codes.NotFound},
	}
	for _, tt := range tests {
		_, err := client.GetMovieInfo(context.Background(), tt.id)
		if got := status.Code(err); got != tt.code {
			t.Fatalf("id %q: code=%v, want %v (err=%v)", tt.id, got, tt.code, err)
		}
	}
}

func TestCheckMovieExists(t *testing.T) {
	s := store.NewMemoryMovieStore(discardLogger())
	m := seed(t, s)
	client, _ := startServer(t, s)
	ctx := context.Background()

	if ok, err := client.CheckMovieExists(ctx, m.ID); err != nil || !ok {
		t.Fatalf("existing: ok=%v err=%v", ok, err)
	}
	if ok, err := client.CheckMovieExists(ctx, store.NewID()); err != nil || ok {
		t.Fatalf("missing: ok=%v err=%v", ok, err)
	}
	if _, err := client.CheckMovieExists(ctx, "zzz"); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("malformed: err=%v", err)
	}
}

func TestStoreFailureIsInternal(t *testing.T) {
	client, _ := startServer(t, failingStore{})
	_, err := client.CheckMovieExists(context.Background(), store.NewID())
	if status.Code(err) != codes.Internal {
		t.Fatalf("code=%v", status.Code(err))
	}
	if strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("store error leaked to caller: %v", err)
	}
}

func TestHealth(t *testing.T) {
	client, shutdown := startServer(t, store.NewMemoryMovieStore(discardLogger()))
	if err := client.Check(context.Background()); err != nil {
		t.Fatalf("Check while serving: %v", err)
	}
	shutdown()
	if err := client.Check(context.Background()); err == nil {
		t.Fatalf("Check after shutdown succeeded")
	}
}

func TestServerDirect(t *testing.T) {
	srv := NewServer(store.NewMemoryMovieStore(discardLogger()), discardLogger())
	_, err := srv.GetMovieInfo(context.Background(), wrapperspb.String(""))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("err=%v", err)
	}
}
