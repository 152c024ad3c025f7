package handler

import (
	"net/http"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/logic"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/sync"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SyncHandler 对账引擎运行状态（运维可见性）
type SyncHandler struct {
	engine       *sync.Engine
	projectLogic *logic.ProjectLogic
	skippedLogic *logic.SkippedEventLogic
}

// NewSyncHandler 创建对账状态处理器
func NewSyncHandler(db *gorm.DB, engine *sync.Engine) *SyncHandler {
	return &SyncHandler{
		engine:       engine,
		projectLogic: logic.NewProjectLogic(db),
		skippedLogic: logic.NewSkippedEventLogic(db),
	}
}

// GetStatus 获取对账引擎状态
func (h *SyncHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	projects, err := h.projectLogic.DeployedProjects(ctx)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	cursors := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		cursors = append(cursors, gin.H{
			"project_id":           p.Id,
			"contract_address":     p.ContractAddress,
			"last_processed_block": p.LastProcessedBlock,
			"raised_total":         p.RaisedTotal,
		})
	}

	pendingSkipped, err := h.skippedLogic.CountPending(ctx)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"counters":        h.engine.Stats().Snapshot(),
		"cursors":         cursors,
		"pending_skipped": pendingSkipped,
	})
}
