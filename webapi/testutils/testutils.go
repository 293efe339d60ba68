// Package testutils builds fully wired HTTP apps for handler tests.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/accounts/infra"
	infra_cache "github.com/amirasaad/accounts/infra/cache"
	infrarepo "github.com/amirasaad/accounts/infra/repository"
	"github.com/amirasaad/accounts/infra/repository/memory"
	"github.com/amirasaad/accounts/pkg/app"
	"github.com/amirasaad/accounts/pkg/config"
	"github.com/amirasaad/accounts/pkg/lock"
	"github.com/amirasaad/accounts/pkg/repository"
	"github.com/amirasaad/accounts/pkg/utils"
	"github.com/amirasaad/accounts/webapi"
	"github.com/amirasaad/accounts/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
)

// TestConfig returns an App config with short lock waits and no auth.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Log:       &config.Log{},
		DB:        &config.DB{MaxOpenConns: 5, MaxIdleConns: 5, ConnMaxLifetime: time.Minute},
		Auth:      &config.Auth{Jwt: &config.Jwt{}},
		Redis:     &config.Redis{},
		Cache:     &config.Cache{TTL: time.Minute},
		Lock:      &config.Lock{Wait: 100 * time.Millisecond, ProbeWait: time.Millisecond},
		Account:   &config.Account{NumberLength: utils.DefaultAccountNumberLength},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
	}
}

// NewTestApp wires an app over uow with an in-memory cache and a fresh lock manager.
func NewTestApp(uow repository.UnitOfWork, cfg *config.App) (*fiber.App, *app.App) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := &app.Deps{
		Uow:       uow,
		Locks:     lock.NewManager(),
		Generator: utils.NewAccountNumberGenerator(cfg.Account.NumberLength),
		Cache:     infra_cache.NewMemoryCache(0),
		Logger:    logger,
	}
	a := app.New(deps, cfg)
	return webapi.SetupApp(a), a
}

// NewMemoryApp wires an app over the in-memory store.
func NewMemoryApp(cfg *config.App) (*fiber.App, *app.App) {
	return NewTestApp(memory.NewUoW(memory.NewStore()), cfg)
}

// MakeRequestWithApp is a helper for making HTTP requests in tests
func MakeRequestWithApp(app *fiber.App, method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 10000)
	if err != nil {
		panic(err) // For standalone tests, panic on error
	}
	return resp
}

// DecodeResponse reads a success envelope and decodes its data into out.
func DecodeResponse(resp *http.Response, out any) (common.Response, error) {
	defer resp.Body.Close() //nolint:errcheck
	var raw struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return common.Response{}, err
	}
	if out != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, out); err != nil {
			return common.Response{}, err
		}
	}
	return common.Response{Status: raw.Status, Message: raw.Message, Data: out}, nil
}

// DecodeProblem reads a problem document.
func DecodeProblem(resp *http.Response) (common.ProblemDetails, error) {
	defer resp.Body.Close() //nolint:errcheck
	var pd common.ProblemDetails
	err := json.NewDecoder(resp.Body).Decode(&pd)
	return pd, err
}

// E2ETestSuite provides a test suite with a real Postgres database using Testcontainers
type E2ETestSuite struct {
	suite.Suite
	pgContainer *tcpostgres.PostgresContainer
	App         *fiber.App
	Wired       *app.App
	Cfg         *config.App
}

func (s *E2ETestSuite) startPostgresContainer(ctx context.Context) (*tcpostgres.PostgresContainer, error) {
	return tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
}

// SetupSuite starts Postgres, migrates the accounts table and wires the app.
// The suite is skipped in short mode or when no container runtime is available.
func (s *E2ETestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping Postgres e2e suite in short mode")
	}
	ctx := context.Background()

	pg, err := s.startPostgresContainer(ctx)
	if err != nil {
		s.T().Skipf("postgres container unavailable: %v", err)
	}
	s.pgContainer = pg

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.Cfg = TestConfig()
	s.Cfg.DB.Url = dsn

	db, err := infra.OpenDB(postgres.Open(dsn), s.Cfg.DB, s.Cfg.Env)
	s.Require().NoError(err)
	s.Require().NoError(infra.Migrate(db))

	s.App, s.Wired = NewTestApp(infrarepo.NewUoW(db), s.Cfg)
}

// TearDownSuite cleans up the test suite resources
func (s *E2ETestSuite) TearDownSuite() {
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	return MakeRequestWithApp(s.App, method, path, body, token)
}
