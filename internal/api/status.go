package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var statusPrinter = message.NewPrinter(language.English)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool    `json:"initialized"`    // 是否已有当前存档
	ActiveSaveID   string  `json:"activeSaveId"`   // 当前存档
	LocationCount  int     `json:"locationCount"`  // 门店数
	LatestWeek     int     `json:"latestWeek"`     // 已结算的最大周
	TotalCash      float64 `json:"totalCash"`      // 所有门店现金合计
	TotalCashLabel string  `json:"totalCashLabel"` // 千分位格式，如 $1,234.00
	CrunchCount    int     `json:"crunchCount"`    // 处于现金预警的门店数
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{ActiveSaveID: h.saves.ActiveID()}
	resp.Initialized = resp.ActiveSaveID != ""

	for _, loc := range h.locations.ListLocations() {
		resp.LocationCount++
		resp.TotalCash += loc.CashFlow.CashOnHand
		if w := loc.CurrentWeek - 1; w > resp.LatestWeek {
			resp.LatestWeek = w
		}
		if loc.CashFlow.CashCrunchWarning {
			resp.CrunchCount++
		}
	}
	resp.TotalCashLabel = cashLabel(resp.TotalCash)

	c.JSON(http.StatusOK, resp)
}

func cashLabel(v float64) string {
	if v < 0 {
		return statusPrinter.Sprintf("-$%.2f", -v)
	}
	return statusPrinter.Sprintf("$%.2f", v)
}
