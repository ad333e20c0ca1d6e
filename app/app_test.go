package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func Test_Actor_ReadsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Actor())
	r.GET("/who", func(c *gin.Context) { c.String(http.StatusOK, ActorID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(ActorHeader, "  clerk-7 ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "clerk-7", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, DefaultActor, w.Body.String())
}

func Test_loadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "SIGNATURE_BASE_URL", "IDEMPOTENCY_TTL_SECONDS", "EFFECT_WORKERS", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := loadConfig()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "/uploads/signatures", cfg.SignatureBaseURL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 4, cfg.EffectWorkers)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func Test_loadConfig_Overrides(t *testing.T) {
	t.Setenv("SIGNATURE_BASE_URL", "https://cdn.example.com/sig/")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("EFFECT_WORKERS", "-3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := loadConfig()

	assert.Equal(t, "https://cdn.example.com/sig", cfg.SignatureBaseURL)
	assert.Equal(t, time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, 4, cfg.EffectWorkers, "non-positive falls back to default")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}
