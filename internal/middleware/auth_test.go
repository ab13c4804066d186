package middleware

import (
	"mentora_backend/internal/config"
	"mentora_backend/internal/model"
	"mentora_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "middleware-test-secret-0123456789-01234"
	cfg.JWT.ExpireTime = time.Hour
	return cfg
}

func testToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	user := &model.User{Username: "mwuser"}
	user.ID = 42
	token, err := util.GenerateJWT(user, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	require.NoError(t, err)
	return token
}

func newMiddlewareRouter(cfg *config.Config, handler gin.HandlerFunc, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/")
	group.Use(mw...)
	group.GET("/probe", handler)
	return router
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	cfg := testConfig()
	var gotUserID uint
	router := newMiddlewareRouter(cfg, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		require.NotNil(t, claims)
		gotUserID = claims.UserID
		c.Status(http.StatusOK)
	}, AuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, cfg))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), gotUserID)
}

func TestAuthMiddlewareAcceptsQueryToken(t *testing.T) {
	cfg := testConfig()
	router := newMiddlewareRouter(cfg, func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, AuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/probe?token="+testToken(t, cfg), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	cfg := testConfig()
	router := newMiddlewareRouter(cfg, func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, AuthMiddleware(cfg))

	// 无令牌
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 伪造令牌
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 错误密钥签发的令牌
	other := testConfig()
	other.JWT.Secret = "another-secret-entirely-0123456789-0123"
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, other))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTryAuthMiddlewareNeverAborts(t *testing.T) {
	cfg := testConfig()
	var sawClaims bool
	router := newMiddlewareRouter(cfg, func(c *gin.Context) {
		sawClaims = util.GetUserFromContext(c) != nil
		c.Status(http.StatusOK)
	}, TryAuthMiddleware(cfg))

	// 匿名放行
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, sawClaims)

	// 有效令牌写入声明
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, cfg))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, sawClaims)

	// 无效令牌按匿名处理
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, sawClaims)
}
