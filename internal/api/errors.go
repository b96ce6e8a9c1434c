package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justinnewbold/86d-game-sub000/internal/logger"
	"github.com/justinnewbold/86d-game-sub000/internal/service/calculator"
	"github.com/justinnewbold/86d-game-sub000/internal/service/cashflow"
	"github.com/justinnewbold/86d-game-sub000/internal/service/menu"
	"github.com/justinnewbold/86d-game-sub000/internal/service/project"
	svcstore "github.com/justinnewbold/86d-game-sub000/internal/service/store"
)

// statusFor 把领域错误映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, calculator.ErrInvalidInput),
		errors.Is(err, cashflow.ErrInvalidInput),
		errors.Is(err, menu.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, calculator.ErrNoContributionMargin):
		return http.StatusUnprocessableEntity
	case errors.Is(err, svcstore.ErrLocationNotFound),
		errors.Is(err, project.ErrSaveNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromGin(c, h.logger).Error("request failed", zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON 解析请求体，失败时直接返回 400
func bindJSON(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}
