package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/api"
	"github.com/justinnewbold/86d-game-sub000/internal/config"
	"github.com/justinnewbold/86d-game-sub000/internal/logger"
	"github.com/justinnewbold/86d-game-sub000/internal/service/project"
	svcstore "github.com/justinnewbold/86d-game-sub000/internal/service/store"
	"github.com/justinnewbold/86d-game-sub000/internal/service/week"
	"github.com/justinnewbold/86d-game-sub000/internal/store"
)

// Server HTTP服务器
type Server struct {
	cfg     *config.AppConfig
	logger  *zap.Logger
	router  *gin.Engine
	http    *http.Server
	history *store.Store
	saves   *project.Manager
}

// NewServer 创建服务器：打开历史库、恢复存档并注册路由
func NewServer(cfg *config.AppConfig, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	historyPath := cfg.Data.HistoryDB
	if !filepath.IsAbs(historyPath) {
		historyPath = filepath.Join(dataDir, historyPath)
	}
	history, err := store.New(historyPath, log.Named("history"))
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	locations := svcstore.NewMemoryStore()
	saves, err := project.NewManager(dataDir, locations, log.Named("saves"))
	if err != nil {
		history.Close()
		return nil, fmt.Errorf("load saves: %w", err)
	}
	if _, err := saves.EnsureActive(cfg.Data.DefaultSaveName); err != nil {
		history.Close()
		return nil, fmt.Errorf("open default save: %w", err)
	}

	handler := api.NewHandler(api.Deps{
		Config:    cfg,
		Locations: locations,
		Saves:     saves,
		History:   history,
		Runner:    week.NewRunner(locations, history, saves, log.Named("week")),
		Logger:    log,
		ExportDir: filepath.Join(dataDir, "exports"),
	})

	s := &Server{
		cfg:     cfg,
		logger:  log,
		router:  gin.New(),
		history: history,
		saves:   saves,
	}
	s.setupRoutes(handler)
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("server initialized",
		zap.String("dataDir", dataDir),
		zap.String("historyDb", historyPath),
		zap.String("saveId", saves.ActiveID()),
		zap.Int("locations", locations.Count()),
	)
	return s, nil
}

// setupRoutes 设置中间件与路由
func (s *Server) setupRoutes(h *api.Handler) {
	s.router.Use(logger.GinMiddleware(s.logger))
	s.router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if allowAll(s.cfg.Server.CORSOrigins) {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.Server.CORSOrigins
	}
	s.router.Use(cors.New(corsCfg))

	h.RegisterRoutes(s.router.Group("/api"))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// allowAll 未配置来源或包含 * 时放开所有来源
func allowAll(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Handler 路由处理器（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 监听地址
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run 启动服务器，Shutdown 后返回 nil
func (s *Server) Run() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接收请求，等待进行中的请求完成
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// SaveNow 立即保存当前存档
func (s *Server) SaveNow() error {
	return s.saves.SaveNow()
}

// Close 落盘存档并关闭历史库
func (s *Server) Close() error {
	err := s.saves.Close()
	if cerr := s.history.Close(); err == nil {
		err = cerr
	}
	return err
}
