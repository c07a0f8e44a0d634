package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appcontext "github.com/SeakMengs/AutoSign/internal/app_context"
	"github.com/SeakMengs/AutoSign/internal/auth"
	"github.com/SeakMengs/AutoSign/internal/config"
	"github.com/SeakMengs/AutoSign/internal/controller"
	"github.com/SeakMengs/AutoSign/internal/middleware"
	"github.com/SeakMengs/AutoSign/internal/model"
	ratelimiter "github.com/SeakMengs/AutoSign/internal/rate_limiter"
	"github.com/SeakMengs/AutoSign/internal/route"
	"github.com/SeakMengs/AutoSign/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret"

type noDocuments struct {
	service.OwnedDocumentStore
}

func (noDocuments) GetForOwner(context.Context, *gorm.DB, string, string) (*model.Document, error) {
	return nil, gorm.ErrRecordNotFound
}

type noSessions struct {
	service.SessionStore
}

func (noSessions) GetByTokenHash(context.Context, *gorm.DB, string) (*model.SigningSession, error) {
	return nil, gorm.ErrRecordNotFound
}

type testServer struct {
	app    *appcontext.Application
	router *gin.Engine
}

func newTestServer(t *testing.T, signerLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop().Sugar()
	stores := service.Stores{Sessions: noSessions{}}
	app := &appcontext.Application{
		Config: &config.Config{
			RateLimiter: config.RateLimiterConfig{Enabled: signerLimit > 0},
		},
		Logger:     logger,
		JWTService: auth.NewJwt(config.AuthConfig{JWT_SECRET: testSecret}, logger),
		Services: appcontext.Services{
			Document: service.NewDocumentService(noDocuments{}, stores, nil, logger),
			Signing:  service.NewSigningService(stores, nil, time.UTC, logger),
		},
	}

	var signerLimiter ratelimiter.Limiter
	if signerLimit > 0 {
		signerLimiter = ratelimiter.NewFixedWindowLimiter(signerLimit, time.Minute)
	}

	c := controller.NewController(app)
	m := middleware.NewMiddleware(app, nil, signerLimiter)
	r := gin.New()
	route.Ops(r, c.Index, nil)
	route.V1_Documents(&r.RouterGroup, c.Document, c.Field, c.Session, m)
	route.V1_Sign(&r.RouterGroup, c.Signing, m)

	return &testServer{app: app, router: r}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func responseCode(resp map[string]any) string {
	data, _ := resp["data"].(map[string]any)
	code, _ := data["code"].(string)
	return code
}

func TestHealthzWithoutDatabase(t *testing.T) {
	s := newTestServer(t, 0)

	w, resp := s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
}

func TestSigningViewUnknownToken(t *testing.T) {
	s := newTestServer(t, 0)

	w, resp := s.do(t, http.MethodGet, "/v1/sign/not-a-real-token", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "INVALID_OR_EXPIRED_TOKEN", responseCode(resp))
}

func TestRecordValueRequiresValue(t *testing.T) {
	s := newTestServer(t, 0)

	w, resp := s.do(t, http.MethodPut, "/v1/sign/some-token/fields/f1", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestDocumentRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t, 0)

	w, resp := s.do(t, http.MethodGet, "/v1/documents/doc-1", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, resp["success"])

	w, _ = s.do(t, http.MethodGet, "/v1/documents/doc-1", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDocumentNotOwned(t *testing.T) {
	s := newTestServer(t, 0)

	token, err := s.app.JWTService.GenerateAccessToken(auth.JWTPayload{
		ID:    "agent-1",
		Email: "agent@realty.com",
		Name:  "Alex Agent",
	}, time.Minute)
	require.NoError(t, err)

	w, resp := s.do(t, http.MethodGet, "/v1/documents/doc-1", "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", responseCode(resp))
}

func TestSignerRateLimit(t *testing.T) {
	s := newTestServer(t, 1)

	w, _ := s.do(t, http.MethodGet, "/v1/sign/some-token", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp := s.do(t, http.MethodGet, "/v1/sign/some-token", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, false, resp["success"])
}
