package task

import (
	"context"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/config"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/logger"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/sync"
	"github.com/go-co-op/gocron/v2"
)

// ScanJob 链上事件追赶扫描任务
// 每个周期把所有已部署项目的游标从上次落点推进到链头。
type ScanJob struct {
	engine *sync.Engine
	config *config.Config
}

// NewScanJob 创建扫描任务
func NewScanJob(engine *sync.Engine, cfg *config.Config) *ScanJob {
	return &ScanJob{
		engine: engine,
		config: cfg,
	}
}

// GetName 任务名称
func (j *ScanJob) GetName() string {
	return "invest_event_scan"
}

// GetSchedule 调度周期
func (j *ScanJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.config.Sync.ScanIntervalDuration())
}

// Execute 执行一轮扫描
func (j *ScanJob) Execute() {
	if err := j.engine.ScanOnce(context.Background()); err != nil {
		logger.Error("Invest event scan failed: %v", err)
	}
}
