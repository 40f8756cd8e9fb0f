// movie-service/internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"movie-service/internal/logging"
)

const (
	DefaultHTTPPort = "3000"
	DefaultGRPCPort = "9092"
	DefaultStoreURI = "mongodb://127.0.0.1:27017/ws5_movies"
)

// Config holds everything the service reads from its environment.
type Config struct {
	HTTPPort        string
	GRPCPort        string
	StoreURI        string
	LogLevel        string
	ConnectTimeout  time.Duration
	ShutdownTimeout time.Duration

	// StoreURIDefaulted is true when MONGODB_URI was not set and the local
	// default is in use.
	StoreURIDefaulted bool
}

// Load reads .env from the working directory when present, then the
// process environment, falling back to local defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	connectTimeout, err := envDuration("STORE_CONNECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:        envString("PORT", DefaultHTTPPort),
		GRPCPort:        envString("GRPC_PORT", DefaultGRPCPort),
		StoreURI:        envString("MONGODB_URI", ""),
		LogLevel:        envString("LOG_LEVEL", "info"),
		ConnectTimeout:  connectTimeout,
		ShutdownTimeout: shutdownTimeout,
	}
	if cfg.StoreURI == "" {
		cfg.StoreURI = DefaultStoreURI
		cfg.StoreURIDefaulted = true
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validatePort("PORT", c.HTTPPort); err != nil {
		return err
	}
	if err := validatePort("GRPC_PORT", c.GRPCPort); err != nil {
		return err
	}
	if c.HTTPPort == c.GRPCPort {
		return fmt.Errorf("PORT and GRPC_PORT must differ (both %s)", c.HTTPPort)
	}
	if strings.TrimSpace(c.StoreURI) == "" {
		return errors.New("MONGODB_URI is required")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("STORE_CONNECT_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func validatePort(name, v string) error {
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%s must be a port number, got %q", name, v)
	}
	return nil
}

// RedactURI hides the password of a connection string for logging.
func RedactURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil && u.Scheme != "" {
		return u.Redacted()
	}
	// multi-host mongodb URIs do not always parse as URLs
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return uri
	}
	user, _, _ := strings.Cut(rest[:at], ":")
	return scheme + "://" + user + ":xxxxx" + rest[at:]
}
