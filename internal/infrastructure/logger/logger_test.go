package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"register_server/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_AppliesDefaults(t *testing.T) {
	cfg := &config.LogConfig{LogPath: t.TempDir()}
	require.NoError(t, Init(cfg, "release"))
	defer zap.ReplaceGlobals(zap.NewNop())

	assert.Equal(t, filepath.Join(cfg.LogPath, "register.log"), cfg.FileName)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 100, cfg.MaxSize)
}

func TestInit_BadLevel(t *testing.T) {
	cfg := &config.LogConfig{LogPath: t.TempDir(), Level: "loud"}
	assert.Error(t, Init(cfg, "release"))
	assert.Error(t, Init(nil, "release"))
}

func TestGinRecovery_ReturnsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinLogger(), GinRecovery(false))
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
}

func TestIsBrokenPipeError(t *testing.T) {
	assert.True(t, isBrokenPipeError(errors.New("write: broken pipe")))
	assert.True(t, isBrokenPipeError(errors.New("read: Connection reset by peer")))
	assert.False(t, isBrokenPipeError(errors.New("timeout")))
	assert.False(t, isBrokenPipeError(nil))
}
