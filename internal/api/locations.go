package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/logger"
	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/service/calculator"
	"github.com/justinnewbold/86d-game-sub000/internal/service/menu"
	"github.com/justinnewbold/86d-game-sub000/internal/service/week"
)

type createLocationRequest struct {
	Name            string                `json:"name"`
	Operations      model.OperatingInputs `json:"operations"`
	Menu            []model.MenuItem      `json:"menu"`
	RecurringBills  []model.RecurringBill `json:"recurringBills"`
	StartingCash    *float64              `json:"startingCash"`
	CreditLineLimit *float64              `json:"creditLineLimit"`
	CreditLineRate  *float64              `json:"creditLineRate"`
}

// CreateLocation 新开门店
// POST /api/locations
func (h *Handler) CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if !bindJSON(c, &req) {
		return
	}

	defaults := week.Defaults{
		StartingCash:    h.cfg.Business.StartingCash,
		CreditLineLimit: h.cfg.Business.CreditLineLimit,
		CreditLineRate:  h.cfg.Business.CreditLineRate,
	}
	if req.StartingCash != nil {
		defaults.StartingCash = *req.StartingCash
	}
	if req.CreditLineLimit != nil {
		defaults.CreditLineLimit = *req.CreditLineLimit
	}
	if req.CreditLineRate != nil {
		defaults.CreditLineRate = *req.CreditLineRate
	}

	loc, err := week.NewLocation(req.Name, req.Operations, defaults)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if len(req.Menu) > 0 {
		loc.Menu = menu.AnalyzeMenu(req.Menu).Items
	}
	if len(req.RecurringBills) > 0 {
		loc.RecurringBills = week.WithRecurringIDs(req.RecurringBills)
	}

	// 门店必须落在某个存档里
	if _, err := h.saves.EnsureActive(h.cfg.Data.DefaultSaveName); err != nil {
		h.respondError(c, err)
		return
	}
	h.locations.AddLocation(loc)
	h.saves.ScheduleSave()

	logger.FromGin(c, h.logger).Info("location created",
		zap.String("locationId", loc.ID), zap.String("name", loc.Name))
	c.JSON(http.StatusCreated, loc)
}

// ListLocations 门店列表
// GET /api/locations
func (h *Handler) ListLocations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.locations.ListLocations()})
}

// GetLocation 门店详情
// GET /api/locations/:id
func (h *Handler) GetLocation(c *gin.Context) {
	loc, err := h.locations.GetLocation(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

type updateLocationRequest struct {
	Name           *string                `json:"name"`
	Operations     *model.OperatingInputs `json:"operations"`
	RecurringBills []model.RecurringBill  `json:"recurringBills"`
}

// UpdateLocation 修改门店名称、经营数据或周期账单，下一次推进生效
// PATCH /api/locations/:id
func (h *Handler) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if !bindJSON(c, &req) {
		return
	}

	loc, err := h.runner.Update(c.Param("id"), func(loc *model.Location) error {
		if req.Name != nil {
			if *req.Name == "" {
				return fmt.Errorf("%w: name is required", calculator.ErrInvalidInput)
			}
			loc.Name = *req.Name
		}
		if req.Operations != nil {
			if _, err := calculator.CalculateWeeklyPL(*req.Operations); err != nil {
				return err
			}
			loc.Operations = *req.Operations
		}
		if req.RecurringBills != nil {
			loc.RecurringBills = week.WithRecurringIDs(req.RecurringBills)
		}
		return nil
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// DeleteLocation 关闭门店并清理其历史
// DELETE /api/locations/:id
func (h *Handler) DeleteLocation(c *gin.Context) {
	id := c.Param("id")
	if err := h.runner.Remove(id); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.history.DeleteLocation(id); err != nil {
		logger.FromGin(c, h.logger).Warn("delete location history failed",
			zap.String("locationId", id), zap.Error(err))
	}
	h.saves.ScheduleSave()
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type replaceMenuRequest struct {
	Items []model.MenuItem `json:"items"`
	// ApplyFoodCost 为 true 时用菜单的整体食材成本率覆盖经营数据
	ApplyFoodCost bool `json:"applyFoodCost"`
}

// ReplaceMenu 替换门店菜单，返回菜单工程分析
// PUT /api/locations/:id/menu
func (h *Handler) ReplaceMenu(c *gin.Context) {
	var req replaceMenuRequest
	if !bindJSON(c, &req) {
		return
	}

	analysis := menu.AnalyzeMenu(req.Items)
	loc, err := h.runner.Update(c.Param("id"), func(loc *model.Location) error {
		loc.Menu = analysis.Items
		if req.ApplyFoodCost && analysis.Summary.TotalRevenue > 0 {
			loc.Operations.MenuFoodCostPct = analysis.Summary.AvgFoodCostPercentage
		}
		return nil
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"location": loc,
		"analysis": analysis,
	})
}

// AdvanceWeek 结算门店当前周
// POST /api/locations/:id/advance
func (h *Handler) AdvanceWeek(c *gin.Context) {
	res, err := h.runner.AdvanceWeek(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetHistory 门店的周损益与现金流历史
// GET /api/locations/:id/history
func (h *Handler) GetHistory(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.locations.GetLocation(id); err != nil {
		h.respondError(c, err)
		return
	}

	pls, err := h.history.ListPL(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	flows, err := h.history.ListCashFlow(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pl":       pls,
		"cashFlow": flows,
	})
}
