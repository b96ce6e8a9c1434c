package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/logger"
)

// ListSaves 存档列表
// GET /api/saves
func (h *Handler) ListSaves(c *gin.Context) {
	c.JSON(http.StatusOK, h.saves.ListSaves())
}

// CurrentSave 当前存档
// GET /api/saves/current
func (h *Handler) CurrentSave(c *gin.Context) {
	cur, err := h.saves.Current()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cur)
}

type createSaveRequest struct {
	Name string `json:"name"`
}

// CreateSave 新建存档并切换过去
// POST /api/saves
func (h *Handler) CreateSave(c *gin.Context) {
	var req createSaveRequest
	if !bindJSON(c, &req) {
		return
	}
	summary, err := h.saves.CreateSave(req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// SelectSave 切换存档
// POST /api/saves/:id/select
func (h *Handler) SelectSave(c *gin.Context) {
	summary, err := h.saves.SelectSave(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteSave 删除存档及其门店历史
// DELETE /api/saves/:id
func (h *Handler) DeleteSave(c *gin.Context) {
	id := c.Param("id")
	locationIDs, err := h.saves.DeleteSave(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	log := logger.FromGin(c, h.logger)
	for _, locID := range locationIDs {
		if err := h.history.DeleteLocation(locID); err != nil {
			log.Warn("delete location history failed", zap.String("locationId", locID), zap.Error(err))
		}
	}
	log.Info("save deleted", zap.String("saveId", id), zap.Int("locations", len(locationIDs)))
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
