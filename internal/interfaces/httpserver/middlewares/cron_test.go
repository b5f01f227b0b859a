package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"meetscribe-server/internal/domain"
	"meetscribe-server/internal/interfaces/httpserver/middlewares"
)

func newCronRouter(secret string) (*gin.Engine, *domain.Principal) {
	gin.SetMode(gin.TestMode)
	captured := &domain.Principal{}
	r := gin.New()
	r.Use(middlewares.CronAuthMiddleware(secret, zerolog.Nop()))
	r.GET("/internal/cron/schedule-bots", func(c *gin.Context) {
		if p, ok := middlewares.PrincipalFromContext(c); ok {
			*captured = p
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r, captured
}

func TestCronAuthAcceptsValidSecret(t *testing.T) {
	r, principal := newCronRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/internal/cron/schedule-bots", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if principal.UserID != "system:cron" {
		t.Errorf("principal = %q, want system:cron", principal.UserID)
	}
	if !principal.IsCron() {
		t.Error("principal should be a cron principal")
	}
}

func TestCronAuthRejectsWrongSecret(t *testing.T) {
	r, _ := newCronRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/internal/cron/schedule-bots", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCronAuthRejectsMissingHeader(t *testing.T) {
	r, _ := newCronRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/internal/cron/schedule-bots", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCronAuthRejectsWhenSecretUnset(t *testing.T) {
	r, _ := newCronRouter("")

	req := httptest.NewRequest(http.MethodGet, "/internal/cron/schedule-bots", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
