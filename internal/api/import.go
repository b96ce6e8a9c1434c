package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/logger"
	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/parser"
	"github.com/justinnewbold/86d-game-sub000/internal/service/menu"
)

// ImportMenu 从上传的工作簿导入菜单，替换门店现有菜单
// POST /api/locations/:id/menu/import
func (h *Handler) ImportMenu(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.locations.GetLocation(id); err != nil {
		h.respondError(c, err)
		return
	}

	uploaded, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload field \"file\""})
		return
	}
	src, err := uploaded.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer src.Close()

	items, report, err := parser.ParseMenuReader(src, uploaded.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "report": report})
		return
	}

	applyFoodCost := c.DefaultPostForm("applyFoodCost", "false") == "true"
	analysis := menu.AnalyzeMenu(items)
	loc, err := h.runner.Update(id, func(loc *model.Location) error {
		loc.Menu = analysis.Items
		if applyFoodCost && analysis.Summary.TotalRevenue > 0 {
			loc.Operations.MenuFoodCostPct = analysis.Summary.AvgFoodCostPercentage
		}
		return nil
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	logger.FromGin(c, h.logger).Info("menu imported",
		zap.String("locationId", id),
		zap.String("file", uploaded.Filename),
		zap.Int("items", len(items)),
		zap.Int("errorRows", report.ErrorRows),
	)
	c.JSON(http.StatusOK, gin.H{
		"location": loc,
		"analysis": analysis,
		"report":   report,
	})
}
