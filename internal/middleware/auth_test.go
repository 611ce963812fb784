package middleware

import (
	"algo_prep_backend/internal/config"
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return cfg
}

func testToken(t *testing.T, cfg *config.Config, tier model.SubscriptionTier) string {
	t.Helper()
	token, err := util.GenerateJWT(&model.User{
		UUIDBase: model.UUIDBase{ID: "user-1"},
		Tier:     tier,
	}, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func whoami(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		c.JSON(http.StatusOK, gin.H{"user": ""})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": claims.UserID})
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	router := gin.New()
	router.GET("/private", AuthMiddleware(cfg), whoami)

	// 无令牌 → 401
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// 伪造令牌 → 401
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus token, got %d", w.Code)
	}

	// 有效令牌放行
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, cfg, model.TierFree))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", w.Code)
	}
}

func TestTryAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	router := gin.New()
	router.GET("/public", TryAuthMiddleware(cfg), whoami)

	// 游客放行，无身份注入
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous, got %d", w.Code)
	}
	if w.Body.String() != `{"user":""}` {
		t.Fatalf("anonymous request must not carry identity: %s", w.Body.String())
	}

	// 坏令牌按游客处理，不是 401
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for bogus token, got %d", w.Code)
	}

	// 有效令牌注入身份
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, cfg, model.TierPremium))
	router.ServeHTTP(w, req)
	if w.Body.String() != `{"user":"user-1"}` {
		t.Fatalf("expected identity injected: %s", w.Body.String())
	}
}
