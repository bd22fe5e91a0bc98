package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/config"
	"github.com/greenleaf-study/greenleaf/internal/mocks"
	"github.com/greenleaf-study/greenleaf/internal/service"
	"github.com/greenleaf-study/greenleaf/internal/service/auth"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/greenleaf-study/greenleaf/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:                   0,
			LogLevel:               "debug",
			ShutdownTimeoutSeconds: 1,
			AllowedOrigins:         []string{"https://app.greenleaf.test"},
			RequestsPerMinute:      1000,
			AuthRequestsPerMinute:  2,
		},
		Auth: config.AuthConfig{
			JWTSecret:                   "test-secret-that-is-at-least-32-characters",
			BcryptCost:                  4,
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 1440,
			TOTPIssuer:                  "Greenleaf",
		},
		Streak: config.StreakConfig{DayBoundary: config.DayBoundaryUTC},
		Worker: config.WorkerConfig{Count: 1, QueueSize: 8, TaskTimeoutSeconds: 1},
		Import: config.ImportConfig{MaxRows: 100, MaxUploadBytes: 1 << 20},
	}
}

// newTestApplication wires real services over mocked deck storage.
func newTestApplication(t *testing.T) (*application, *mocks.MockDeckStore) {
	t.Helper()
	cfg := testConfig()

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	decks := &mocks.MockDeckStore{}
	deckService, err := service.NewDeckService(
		mocks.NewTxDB(t), decks, &mocks.MockCardStore{}, &mocks.MockFriendStore{}, nil, discardLogger)
	require.NoError(t, err)

	return &application{
		config:      cfg,
		logger:      discardLogger,
		jwtService:  jwtService,
		deckService: deckService,
	}, decks
}

func TestHealth(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	for _, path := range []string{"/api/decks", "/api/cards/due", "/api/streak", "/api/friends", "/api/me"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAuthenticatedDeckList(t *testing.T) {
	app, decks := newTestApplication(t)
	router := app.setupRouter()

	userID := uuid.New()
	decks.On("ListByUser", mock.Anything, userID).Return([]store.DeckSummary{}, nil)
	token, err := app.jwtService.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/decks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	decks.AssertExpectations(t)
}

func TestCORSPreflight(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/decks", nil)
	req.Header.Set("Origin", "https://app.greenleaf.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.greenleaf.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthRateLimit(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		req.RemoteAddr = "203.0.113.7:4000"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Contains(t, last.Body.String(), "Too many requests")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	app, _ := newTestApplication(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, listener, app.setupRouter()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestCleanupDrainsBackgroundTasks(t *testing.T) {
	app, _ := newTestApplication(t)
	app.taskQueue = task.NewTaskQueue(4, discardLogger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{WorkerCount: 1}, discardLogger)
	app.workerPool.Start()

	ran := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, app.taskQueue.Enqueue(task.NewFunc("test", func(context.Context) error {
			ran <- struct{}{}
			return nil
		})))
	}

	app.cleanup()
	assert.Len(t, ran, 3)
	assert.ErrorIs(t, app.taskQueue.Enqueue(task.NewFunc("late", nil)), task.ErrQueueClosed)
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--migrate", "up", "--config", "prod.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "up", opts.migrate)
	assert.Equal(t, "prod.yaml", opts.configFile)
	assert.Equal(t, ".env", opts.envFile)

	_, err = parseFlags([]string{"--migrate=create"})
	assert.Error(t, err)

	opts, err = parseFlags([]string{"--migrate=create", "--name", "add_tags"})
	require.NoError(t, err)
	assert.Equal(t, "add_tags", opts.migrationName)

	_, err = parseFlags([]string{"--bogus"})
	assert.Error(t, err)
}

func TestRunMigrationsRejectsUnknownCommand(t *testing.T) {
	err := runMigrations(context.Background(), nil, "sideways", discardLogger)
	assert.ErrorContains(t, err, "unknown migration command")
}
