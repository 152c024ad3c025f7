package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProjectHandler 项目查询处理器（只读）
type ProjectHandler struct {
	projectLogic    *logic.ProjectLogic
	investmentLogic *logic.InvestmentLogic
}

// NewProjectHandler 创建项目查询处理器
func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectLogic:    logic.NewProjectLogic(db),
		investmentLogic: logic.NewInvestmentLogic(db),
	}
}

// ListProjects 获取项目列表
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	page, pageSize := parsePagination(c)

	projects, total, err := h.projectLogic.ListProjects(c.Request.Context(), page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       projects,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// GetProject 获取单个项目（含募集总额与同步游标）
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := h.projectLogic.GetProject(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, "project not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", project)
}

// GetProjectInvestments 获取项目的投资记录
func (h *ProjectHandler) GetProjectInvestments(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid project id")
		return
	}

	page, pageSize := parsePagination(c)

	investments, total, err := h.investmentLogic.GetProjectInvestments(c.Request.Context(), id, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       investments,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
