package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/justinnewbold/86d-game-sub000/internal/config"
	"github.com/justinnewbold/86d-game-sub000/internal/logger"
)

func newTestServer(t *testing.T, origins []string) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	cfg.Server.CORSOrigins = origins
	cfg.Data.DataDir = t.TempDir()

	s, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, cfg.Data.DataDir
}

// TestNewServerInitializesData 测试启动时建库并创建默认存档
func TestNewServerInitializesData(t *testing.T) {
	s, dataDir := newTestServer(t, nil)

	for _, p := range []string{"history.db", "saves.json", "exports"} {
		if _, err := os.Stat(filepath.Join(dataDir, p)); err != nil {
			t.Errorf("%s not created: %v", p, err)
		}
	}
	if s.saves.ActiveID() == "" {
		t.Error("default save should be active")
	}
	if s.Addr() != ":20286" {
		t.Errorf("Addr = %q, want :20286", s.Addr())
	}
}

// TestServerMiddleware 测试请求 ID 与 CORS
func TestServerMiddleware(t *testing.T) {
	t.Run("允许所有来源", func(t *testing.T) {
		s, _ := newTestServer(t, []string{"*"})
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Origin", "http://example.com")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
		if w.Header().Get(logger.RequestIDHeader) == "" {
			t.Error("missing request id header")
		}
	})

	t.Run("限定来源", func(t *testing.T) {
		s, _ := newTestServer(t, []string{"http://allowed.test"})
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Origin", "http://other.test")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403 for disallowed origin", w.Code)
		}
	})

	t.Run("未知路由", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

// TestServerCloseSavesState 测试关闭时落盘
func TestServerCloseSavesState(t *testing.T) {
	s, dataDir := newTestServer(t, nil)
	id := s.saves.ActiveID()
	if err := s.SaveNow(); err != nil {
		t.Fatalf("SaveNow failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "saves", id, "state.json")); err != nil {
		t.Errorf("state.json not written: %v", err)
	}
}
