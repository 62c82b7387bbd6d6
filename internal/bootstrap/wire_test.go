package bootstrap

import (
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/parkwise/auth-service/internal/config"
	"github.com/parkwise/auth-service/internal/infrastructure/memory"
	"github.com/parkwise/auth-service/internal/logger"
	"github.com/parkwise/auth-service/internal/transport/http/router"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter(io.Discard)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Env:              "dev",
		HTTPAddr:         ":0",
		JWTSecret:        "test-secret",
		JWTIssuer:        "auth-service",
		AccessTokenTTL:   30 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		BcryptCost:       4,
		DBAddr:           "postgres://ignored",
		HTTPReadTimeout:  10 * time.Second,
		HTTPWriteTimeout: 30 * time.Second,
		HTTPIdleTimeout:  time.Minute,
	}
}

func testDeps(t *testing.T, cfg *config.Config) (Deps, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}

	return Deps{
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
		NewDB: func(addr string, debug bool) (DBCloser, error) {
			return db, nil
		},
		NewPublisher: func(rabbitURL, exchange string) (Publisher, error) {
			return memory.NewRecordingPublisher(), nil
		},
		NewRouter: router.New,
	}, mock
}

func TestNewServerWithDeps(t *testing.T) {
	cfg := testConfig()
	deps, mock := testDeps(t, cfg)
	mock.ExpectClose()

	srv, cleanup, err := NewServerWithDeps(deps)
	if err != nil {
		t.Fatalf("NewServerWithDeps: %v", err)
	}
	defer cleanup()

	if srv.Addr != cfg.HTTPAddr {
		t.Errorf("Addr = %q, want %q", srv.Addr, cfg.HTTPAddr)
	}
	if srv.Handler == nil {
		t.Error("nil handler")
	}
	if srv.ReadTimeout != cfg.HTTPReadTimeout || srv.WriteTimeout != cfg.HTTPWriteTimeout {
		t.Errorf("timeouts = %v/%v", srv.ReadTimeout, srv.WriteTimeout)
	}
}

func TestNewServerWithDeps_CleanupClosesDB(t *testing.T) {
	deps, mock := testDeps(t, testConfig())
	mock.ExpectClose()

	_, cleanup, err := NewServerWithDeps(deps)
	if err != nil {
		t.Fatalf("NewServerWithDeps: %v", err)
	}
	cleanup()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("db not closed: %v", err)
	}
}

func TestNewServerWithDeps_ConfigError(t *testing.T) {
	deps, _ := testDeps(t, testConfig())
	deps.LoadConfig = func() (*config.Config, error) {
		return nil, errors.New("missing required env var: JWT_SECRET")
	}

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected config error")
	}
}

func TestNewServerWithDeps_DBError(t *testing.T) {
	deps, _ := testDeps(t, testConfig())
	deps.NewDB = func(addr string, debug bool) (DBCloser, error) {
		return nil, errors.New("connection refused")
	}

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected db error")
	}
}

type fakeDBCloser struct{}

func (fakeDBCloser) Close() error { return nil }

func TestNewServerWithDeps_NonSQLDB(t *testing.T) {
	deps, _ := testDeps(t, testConfig())
	deps.NewDB = func(addr string, debug bool) (DBCloser, error) {
		return fakeDBCloser{}, nil
	}

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected error for non-sql DB")
	}
}

func TestNewServerWithDeps_PublisherFailure(t *testing.T) {
	t.Run("dev falls back to noop", func(t *testing.T) {
		cfg := testConfig()
		deps, _ := testDeps(t, cfg)
		deps.NewPublisher = func(rabbitURL, exchange string) (Publisher, error) {
			return nil, errors.New("dial tcp: connection refused")
		}

		srv, cleanup, err := NewServerWithDeps(deps)
		if err != nil {
			t.Fatalf("expected noop fallback, got: %v", err)
		}
		defer cleanup()
		if srv == nil {
			t.Fatal("nil server")
		}
	})

	t.Run("prod fails hard", func(t *testing.T) {
		cfg := testConfig()
		cfg.Env = "prod"
		deps, mock := testDeps(t, cfg)
		mock.ExpectClose()
		deps.NewPublisher = func(rabbitURL, exchange string) (Publisher, error) {
			return nil, errors.New("dial tcp: connection refused")
		}

		if _, _, err := NewServerWithDeps(deps); err == nil {
			t.Fatal("expected publisher error")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("db not closed on failure: %v", err)
		}
	})
}

func TestNewServerWithDeps_RouterError(t *testing.T) {
	deps, mock := testDeps(t, testConfig())
	mock.ExpectClose()
	deps.NewRouter = func(router.Deps) (http.Handler, error) {
		return nil, errors.New("nil Auth handler")
	}

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected router error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("db not closed on failure: %v", err)
	}
}
