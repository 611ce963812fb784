package util

import (
	"algo_prep_backend/internal/model"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		UUIDBase: model.UUIDBase{ID: "user-1"},
		Email:    "alice@example.com",
		Tier:     model.TierPremium,
	}

	token, err := GenerateJWT(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" || claims.Tier != model.TierPremium {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	user := &model.User{UUIDBase: model.UUIDBase{ID: "user-1"}}
	token, err := GenerateJWT(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	user := &model.User{UUIDBase: model.UUIDBase{ID: "user-1"}}
	token, err := GenerateJWT(user, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestCallerTierAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if tier := CallerTier(c); tier != model.TierNone {
		t.Fatalf("anonymous caller should be TierNone, got %s", tier)
	}

	c.Set("user", &Claims{UserID: "user-1", Tier: model.TierFree})
	if tier := CallerTier(c); tier != model.TierFree {
		t.Fatalf("expected TierFree, got %s", tier)
	}
}
