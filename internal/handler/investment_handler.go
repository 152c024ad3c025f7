package handler

import (
	"net/http"
	"strconv"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InvestmentHandler 投资记录查询处理器（只读）
type InvestmentHandler struct {
	investmentLogic *logic.InvestmentLogic
}

// NewInvestmentHandler 创建投资记录查询处理器
func NewInvestmentHandler(db *gorm.DB) *InvestmentHandler {
	return &InvestmentHandler{
		investmentLogic: logic.NewInvestmentLogic(db),
	}
}

// GetInvestorInvestments 获取投资人的投资记录
func (h *InvestmentHandler) GetInvestorInvestments(c *gin.Context) {
	investorId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid investor id")
		return
	}

	page, pageSize := parsePagination(c)

	investments, total, err := h.investmentLogic.GetInvestorInvestments(c.Request.Context(), investorId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       investments,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
