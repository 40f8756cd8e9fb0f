// movie-service/internal/grpc/client.go
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const callTimeout = 3 * time.Second

// MovieClient calls MovieInterService and the health service of a running
// movie service.
type MovieClient struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
	logger *slog.Logger
}

// NewMovieClient creates a client for addr, e.g. "localhost:9092". The
// connection is established lazily on the first call. Extra options are
// appended after the insecure transport credentials.
func NewMovieClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*MovieClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("create movie service client for %s: %w", addr, err)
	}
	return &MovieClient{
		conn:   conn,
		health: healthpb.NewHealthClient(conn),
		logger: logger,
	}, nil
}

// GetMovieInfo returns the record as a map with the HTTP JSON keys.
func (c *MovieClient) GetMovieInfo(ctx context.Context, movieID string) (map[string]interface{}, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, getMovieInfoMethod, wrapperspb.String(movieID), out); err != nil {
		c.logFailure(ctx, "GetMovieInfo", movieID, err)
		return nil, fmt.Errorf("grpc GetMovieInfo failed for movie id %s: %w", movieID, err)
	}
	return out.AsMap(), nil
}

func (c *MovieClient) CheckMovieExists(ctx context.Context, movieID string) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(callCtx, checkMovieExistsMethod, wrapperspb.String(movieID), out); err != nil {
		c.logFailure(ctx, "CheckMovieExists", movieID, err)
		return false, fmt.Errorf("grpc CheckMovieExists failed for movie id %s: %w", movieID, err)
	}
	return out.GetValue(), nil
}

// Check asks the health service about ServiceName and fails unless it is SERVING.
func (c *MovieClient) Check(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := c.health.Check(callCtx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("health check: service is %s", res.GetStatus())
	}
	return nil
}

func (c *MovieClient) Close() error {
	return c.conn.Close()
}

func (c *MovieClient) logFailure(ctx context.Context, method, movieID string, err error) {
	st, _ := status.FromError(err)
	level := slog.LevelError
	if st.Code() == codes.NotFound || st.Code() == codes.InvalidArgument {
		level = slog.LevelWarn
	}
	c.logger.LogAttrs(ctx, level, "MovieInterService call failed",
		slog.String("method", method),
		slog.String("movie_id", movieID),
		slog.String("code", st.Code().String()),
		slog.String("message", st.Message()),
	)
}
