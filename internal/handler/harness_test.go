package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/config"
	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/handler"
	"github.com/lernix/lernix-web/internal/middleware"
	"github.com/lernix/lernix-web/internal/router"
	"github.com/lernix/lernix-web/internal/service"
	"github.com/lernix/lernix-web/internal/session"
	"github.com/lernix/lernix-web/internal/view"
)

type backendReply struct {
	status int
	body   string
}

// fakeBackend answers canned replies keyed by "METHOD /path". Activity time
// requests are keyed by their activity_type as well.
type fakeBackend struct {
	mu      sync.Mutex
	replies map[string]backendReply
	calls   map[string]int
	bodies  map[string][]byte
	auth    []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		replies: make(map[string]backendReply),
		calls:   make(map[string]int),
		bodies:  make(map[string][]byte),
	}
}

func (f *fakeBackend) on(key string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[key] = backendReply{status: status, body: body}
}

func (f *fakeBackend) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeBackend) body(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if kind := r.URL.Query().Get("activity_type"); kind != "" {
		key += "?" + kind
	}
	payload, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls[key]++
	f.bodies[key] = payload
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	reply, ok := f.replies[key]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not Found"}`)
		return
	}
	w.WriteHeader(reply.status)
	_, _ = io.WriteString(w, reply.body)
}

type harness struct {
	app      *fiber.App
	backend  *fakeBackend
	sessions *session.Manager
	mini     *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	fake := newFakeBackend()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	logger := zerolog.Nop()
	validate := dto.NewValidator()
	cfg := config.Config{AppName: "Lernix Web", AppEnv: "test", LoginPath: "/login", SessionCookie: "lernix_session"}

	sessions := session.NewManager(session.NewRedisStore(rdb, logger), time.Hour, logger)
	client := backend.New(backend.Options{BaseURL: server.URL, Logger: logger}, nil)

	insights := service.NewInsightsService(
		service.NewActivityTimeAggregator(logger),
		service.NewMCQPerformanceAggregator(logger),
		time.Hour,
		logger,
	)
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	guard := middleware.NewSessionGuard(middleware.SessionConfig{
		Manager:       sessions,
		Backend:       client,
		CookieName:    cfg.SessionCookie,
		LoginPath:     cfg.LoginPath,
		OnInvalidated: insights.Forget,
		Logger:        logger,
	})

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	router.Register(app, cfg, router.Dependencies{
		Guard:         guard,
		AuthHandler:   handler.NewAuthHandler(client, sessions, guard, insights, validate, logger),
		CourseHandler: handler.NewCourseHandler(service.NewCourseService(validate, logger), service.NewChapterService(validate, logger), guard, logger),
		StudyHandler:  handler.NewStudyHandler(service.NewStudyService(validate, logger), service.NewUploadService(1, logger), guard, logger),
		InsightsHandler: handler.NewInsightsHandler(insights, renderer, guard, validate, handler.InsightsPageConfig{
			AppName:    cfg.AppName,
			PagePath:   "/insights",
			LogoutPath: "/api/v1/auth/logout",
		}, logger),
		HealthChecks: map[string]handler.Pinger{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		AuthRateLimit: 100,
	})

	return &harness{app: app, backend: fake, sessions: sessions, mini: mini}
}

// newSession stores a session directly, as a successful login would.
func (h *harness) newSession(t *testing.T) string {
	t.Helper()
	sess, err := h.sessions.Create(context.Background(), "tok-test")
	require.NoError(t, err)
	return sess.ID()
}

type requestOption func(*http.Request)

func withSession(id string) requestOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "lernix_session", Value: id})
	}
}

func withHeader(key, value string) requestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

func (h *harness) do(t *testing.T, method, path string, body io.Reader, opts ...requestOption) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for _, opt := range opts {
		opt(req)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (h *harness) doJSON(t *testing.T, method, path string, payload interface{}, opts ...requestOption) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	opts = append([]requestOption{withHeader("Content-Type", fiber.MIMEApplicationJSON)}, opts...)
	return h.do(t, method, path, bytes.NewReader(raw), opts...)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}
