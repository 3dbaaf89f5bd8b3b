package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ecohistorias/eco-api/internal/codinome"
	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/ecohistorias/eco-api/internal/credentials"
	"github.com/ecohistorias/eco-api/internal/mail"
	"github.com/ecohistorias/eco-api/internal/metrics"
	"github.com/ecohistorias/eco-api/internal/repository"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/ecohistorias/eco-api/internal/testutil"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryTokens is an in-process TokenStore for tests.
type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: map[string]string{}}
}

func (m *memoryTokens) Issue(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := uuid.NewString()
	m.tokens[token] = userID
	return token, nil
}

func (m *memoryTokens) Resolve(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.tokens[token]; ok {
		return id, nil
	}
	return "", credentials.ErrUnknownToken
}

func (m *memoryTokens) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *memoryTokens
	outbox *outbox
	reset  *services.PasswordResetService
}

func setupTestEnv(t *testing.T, opts ...codinome.Option) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ecoRepo := repository.NewEcoRepository(db)
	sussurroRepo := repository.NewSussurroRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	tokens := newMemoryTokens()
	box := &outbox{}
	m := metrics.New()
	reset := services.NewPasswordResetService(userRepo, resetRepo, box, "https://ecohistorias.com.br", 2*time.Hour)

	gen, err := codinome.New(opts...)
	require.NoError(t, err)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-session-secret-0123"))))
	RegisterRoutes(r, Routes{
		Auth:     NewAuthHandler(services.NewAuthService(userRepo), tokens, m),
		Eco:      NewEcoHandler(services.NewEcoService(ecoRepo, tagRepo, sussurroRepo), m),
		Sussurro: NewSussurroHandler(services.NewSussurroService(sussurroRepo, ecoRepo), m),
		Tag:      NewTagHandler(services.NewTagService(tagRepo)),
		Password: NewPasswordHandler(reset, m),
		Codinome: NewCodinomeHandler(gen, 3, m),
		Health:   NewHealthHandler(nil),
		Tokens:   tokens,
		Metrics:  m,
	})

	return &testEnv{db: db, router: r, tokens: tokens, outbox: box, reset: reset}
}

// request sends a JSON request. A non-empty token is sent as a bearer credential.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// tokenFor issues a bearer token for an existing user.
func (e *testEnv) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.tokens.Issue(context.Background(), userID)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
