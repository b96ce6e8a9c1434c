package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
	"github.com/justinnewbold/86d-game-sub000/internal/service/calculator"
	"github.com/justinnewbold/86d-game-sub000/internal/service/cashflow"
	"github.com/justinnewbold/86d-game-sub000/internal/service/menu"
)

// CalcPL 计算周损益并给出分析
// POST /api/calc/pl
func (h *Handler) CalcPL(c *gin.Context) {
	var in model.OperatingInputs
	if !bindJSON(c, &in) {
		return
	}
	pl, err := calculator.CalculateWeeklyPL(in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pl":       pl,
		"analysis": calculator.AnalyzePL(pl),
	})
}

type breakEvenRequest struct {
	FixedCostsMonthly float64 `json:"fixedCostsMonthly"`
	AvgTicket         float64 `json:"avgTicket"`
	FoodCostPct       float64 `json:"foodCostPct"`
	LaborCostPct      float64 `json:"laborCostPct"`
}

// CalcBreakEven 计算保本点
// POST /api/calc/break-even
func (h *Handler) CalcBreakEven(c *gin.Context) {
	var req breakEvenRequest
	if !bindJSON(c, &req) {
		return
	}
	be, err := calculator.CalculateBreakEven(req.FixedCostsMonthly, req.AvgTicket, req.FoodCostPct, req.LaborCostPct)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, be)
}

// CashFlowBills 生成未来的周期账单
// POST /api/cashflow/bills
func (h *Handler) CashFlowBills(c *gin.Context) {
	var in cashflow.BillScheduleInput
	if !bindJSON(c, &in) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": cashflow.GenerateUpcomingBills(in)})
}

type runwayRequest struct {
	CashOnHand     float64      `json:"cashOnHand"`
	WeeklyBurnRate float64      `json:"weeklyBurnRate"`
	Bills          []model.Bill `json:"bills"`
}

// CashFlowRunway 计算现金跑道周数
// POST /api/cashflow/runway
func (h *Handler) CashFlowRunway(c *gin.Context) {
	var req runwayRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"weeksOfRunway": cashflow.CalculateRunway(req.CashOnHand, req.WeeklyBurnRate, req.Bills),
	})
}

// CashFlowProcess 结算一周现金流
// POST /api/cashflow/process
func (h *Handler) CashFlowProcess(c *gin.Context) {
	var in cashflow.WeeklyCashFlowInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := cashflow.ProcessWeeklyCashFlow(in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":      res,
		"explanation": cashflow.ExplainCashFlowGap(res.WeekFlow),
	})
}

// CashFlowExplain 解释会计利润与现金的差异
// POST /api/cashflow/explain
func (h *Handler) CashFlowExplain(c *gin.Context) {
	var record model.WeeklyCashFlow
	if !bindJSON(c, &record) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"explanation": cashflow.ExplainCashFlowGap(record)})
}

type menuRequest struct {
	Items []model.MenuItem `json:"items"`
}

// MenuAnalyze 菜单工程分析
// POST /api/menu/analyze
func (h *Handler) MenuAnalyze(c *gin.Context) {
	var req menuRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, menu.AnalyzeMenu(req.Items))
}

type classifyRequest struct {
	Item                  model.MenuItem `json:"item"`
	AvgContributionMargin float64        `json:"avgContributionMargin"`
	AvgMenuMix            float64        `json:"avgMenuMix"`
}

// MenuClassify 单个菜品的四象限归类
// POST /api/menu/classify
func (h *Handler) MenuClassify(c *gin.Context) {
	var req classifyRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profitability": menu.ClassifyMenuItem(req.Item, req.AvgContributionMargin, req.AvgMenuMix),
	})
}

type recipeCostRequest struct {
	Ingredients []model.RecipeIngredient `json:"ingredients"`
}

// MenuRecipeCost 计算配方成本
// POST /api/menu/recipe-cost
func (h *Handler) MenuRecipeCost(c *gin.Context) {
	var req recipeCostRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, menu.CalculateRecipeCost(req.Ingredients))
}

type suggestPriceRequest struct {
	Cost              float64  `json:"cost"`
	TargetFoodCostPct float64  `json:"targetFoodCostPct"`
	CompetitorPrice   *float64 `json:"competitorPrice"`
}

// MenuSuggestPrice 按目标食材成本率给出建议售价
// POST /api/menu/suggest-price
func (h *Handler) MenuSuggestPrice(c *gin.Context) {
	var req suggestPriceRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := menu.SuggestPrice(req.Cost, req.TargetFoodCostPct, req.CompetitorPrice)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
