package api

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/config"
	"github.com/justinnewbold/86d-game-sub000/internal/exporter"
	"github.com/justinnewbold/86d-game-sub000/internal/service/project"
	svcstore "github.com/justinnewbold/86d-game-sub000/internal/service/store"
	"github.com/justinnewbold/86d-game-sub000/internal/service/week"
	"github.com/justinnewbold/86d-game-sub000/internal/store"
)

// Deps Handler 依赖
type Deps struct {
	Config    *config.AppConfig
	Locations *svcstore.MemoryStore
	Saves     *project.Manager
	History   *store.Store
	Runner    *week.Runner
	Logger    *zap.Logger
	// ExportDir 流式导出的临时文件目录，为空时使用系统临时目录
	ExportDir string
}

// Handler API 处理器
type Handler struct {
	cfg       *config.AppConfig
	locations *svcstore.MemoryStore
	saves     *project.Manager
	history   *store.Store
	runner    *week.Runner
	exporter  *exporter.Exporter
	logger    *zap.Logger
	exportDir string
	downloads *exportDownloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exportDir := d.ExportDir
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	cfg := d.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handler{
		cfg:       cfg,
		locations: d.Locations,
		saves:     d.Saves,
		history:   d.History,
		runner:    d.Runner,
		exporter:  exporter.NewExporter(d.History),
		logger:    logger,
		exportDir: exportDir,
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 无状态计算
	router.POST("/calc/pl", h.CalcPL)
	router.POST("/calc/break-even", h.CalcBreakEven)
	router.POST("/cashflow/bills", h.CashFlowBills)
	router.POST("/cashflow/runway", h.CashFlowRunway)
	router.POST("/cashflow/process", h.CashFlowProcess)
	router.POST("/cashflow/explain", h.CashFlowExplain)
	router.POST("/menu/analyze", h.MenuAnalyze)
	router.POST("/menu/classify", h.MenuClassify)
	router.POST("/menu/recipe-cost", h.MenuRecipeCost)
	router.POST("/menu/suggest-price", h.MenuSuggestPrice)

	// 门店
	router.POST("/locations", h.CreateLocation)
	router.GET("/locations", h.ListLocations)
	router.GET("/locations/:id", h.GetLocation)
	router.PATCH("/locations/:id", h.UpdateLocation)
	router.DELETE("/locations/:id", h.DeleteLocation)
	router.PUT("/locations/:id/menu", h.ReplaceMenu)
	router.POST("/locations/:id/menu/import", h.ImportMenu)
	router.POST("/locations/:id/advance", h.AdvanceWeek)
	router.GET("/locations/:id/history", h.GetHistory)

	// 数据导出
	router.GET("/locations/:id/export", h.Export)
	router.POST("/locations/:id/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)

	// 存档
	router.GET("/saves", h.ListSaves)
	router.GET("/saves/current", h.CurrentSave)
	router.POST("/saves", h.CreateSave)
	router.POST("/saves/:id/select", h.SelectSave)
	router.DELETE("/saves/:id", h.DeleteSave)
}
