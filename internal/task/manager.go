package task

import (
	"github.com/X-spec7/circle-integration-backend-sub000/internal/config"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/logger"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/logic"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/sync"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Manager 定时任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	engine    *sync.Engine
	reader    sync.ChainReader
	config    *config.Config
}

// NewManager 创建定时任务管理器
func NewManager(db *gorm.DB, engine *sync.Engine, reader sync.ChainReader, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		db:        db,
		engine:    engine,
		reader:    reader,
		config:    cfg,
	}
}

// Start 注册所有任务并启动调度器
func (m *Manager) Start() {
	m.RegisterJobs()
	m.scheduler.Start()
	logger.Info("Task manager started successfully")
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册链上事件追赶扫描任务
	m.registerJob(NewScanJob(m.engine, m.config))

	// 注册跳过事件回补任务
	if m.config.Sync.BackfillEnabled {
		m.registerJob(NewBackfillJob(
			logic.NewSkippedEventLogic(m.db),
			logic.NewWalletLogic(m.db),
			logic.NewInvestmentLogic(m.db),
			m.reader,
			m.engine.Stats(),
		))
	}
}

// Job 定时任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// registerJob 注册单个任务
// SingletonMode保证上一轮没跑完时不并发触发下一轮。
func (m *Manager) registerJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
		return
	}
	logger.Info("Registered job: %s", job.GetName())
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
