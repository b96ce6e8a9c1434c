package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/justinnewbold/86d-game-sub000/internal/config"
	"github.com/justinnewbold/86d-game-sub000/internal/service/project"
	svcstore "github.com/justinnewbold/86d-game-sub000/internal/service/store"
	"github.com/justinnewbold/86d-game-sub000/internal/service/week"
	"github.com/justinnewbold/86d-game-sub000/internal/store"
)

type testEnv struct {
	router  *gin.Engine
	handler *Handler
	saves   *project.Manager
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	history, err := store.New(filepath.Join(dataDir, "history.db"), nil)
	if err != nil {
		t.Fatalf("init history: %v", err)
	}
	t.Cleanup(func() { _ = history.Close() })

	locations := svcstore.NewMemoryStore()
	saves, err := project.NewManager(dataDir, locations, nil)
	if err != nil {
		t.Fatalf("init saves: %v", err)
	}
	t.Cleanup(func() { _ = saves.Close() })

	cfg := config.DefaultConfig()
	if _, err := saves.EnsureActive(cfg.Data.DefaultSaveName); err != nil {
		t.Fatalf("ensure active save: %v", err)
	}

	h := NewHandler(Deps{
		Config:    cfg,
		Locations: locations,
		Saves:     saves,
		History:   history,
		Runner:    week.NewRunner(locations, history, saves, nil),
		ExportDir: filepath.Join(dataDir, "exports"),
	})
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return &testEnv{router: r, handler: h, saves: saves, dataDir: dataDir}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, w.Body.String())
	}
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// 每周：收入 30000，食材 6750，人工 8000，房租 2000，水电保险 800
func healthyOps() map[string]any {
	return map[string]any{
		"weeklyCovers":    1000,
		"avgTicket":       30,
		"menuFoodCostPct": 0.30,
		"labor":           map[string]any{"hourlyWages": 6000, "salaries": 2000},
		"overhead":        map[string]any{"weeklyRent": 2000, "weeklyUtilities": 500, "weeklyInsurance": 300},
	}
}
