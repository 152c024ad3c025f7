package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/chain"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/logger"
	"github.com/panjf2000/ants/v2"
)

// Engine 对账引擎
// 持有共享的对账器与统计，拉起每个已部署项目的实时监听协程，
// 并把追赶扫描暴露给定时任务调用。
type Engine struct {
	reader     ChainReader
	reconciler *Reconciler
	scanner    *Scanner
	ledger     Ledger
	projects   ProjectSource
	cfg        EngineConfig
	stats      *Stats

	pool   *ants.Pool
	cancel context.CancelFunc
	wg     stdsync.WaitGroup
}

// EngineConfig 引擎参数
type EngineConfig struct {
	Scanner       ScannerConfig
	WatchInterval int // 实时监听轮询间隔（毫秒）
}

// NewEngine 创建对账引擎
func NewEngine(reader ChainReader, wallets WalletDirectory, ledger Ledger, projects ProjectSource, skipped SkippedStore, cfg EngineConfig) *Engine {
	stats := &Stats{}
	reconciler := NewReconciler(reader, wallets, skipped, stats)
	scanner := NewScanner(reader, reconciler, ledger, projects, cfg.Scanner, stats)

	return &Engine{
		reader:     reader,
		reconciler: reconciler,
		scanner:    scanner,
		ledger:     ledger,
		projects:   projects,
		cfg:        cfg,
		stats:      stats,
	}
}

// Start 启动引擎：为每个已部署项目拉起一个实时监听协程
func (e *Engine) Start(ctx context.Context) error {
	projects, err := e.projects.DeployedProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load deployed projects: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	poolSize := len(projects)
	if poolSize == 0 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create watcher pool: %w", err)
	}
	e.pool = pool

	interval := watchInterval(e.cfg.WatchInterval)
	for _, project := range projects {
		watcher := NewWatcher(e.reader, e.reconciler, e.ledger, project, interval, e.stats)
		e.wg.Add(1)
		err := pool.Submit(func() {
			defer e.wg.Done()
			watcher.Run(ctx)
		})
		if err != nil {
			e.wg.Done()
			logger.Error("Failed to submit watcher for project %d: %v", project.Id, err)
		}
	}

	logger.Info("Reconciliation engine started with %d live watchers", len(projects))
	return nil
}

// ScanOnce 执行一轮追赶扫描（由定时任务驱动）
func (e *Engine) ScanOnce(ctx context.Context) error {
	return e.scanner.ScanOnce(ctx)
}

// Stats 运行计数器
func (e *Engine) Stats() *Stats {
	return e.stats
}

// Stop 停止引擎并等待所有监听协程退出
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
	if e.pool != nil {
		e.pool.Release()
	}
	logger.Info("Reconciliation engine stopped")
}

// NewChainReader 把chain.Client适配成ChainReader
func NewChainReader(client *chain.Client) ChainReader {
	return &clientReader{client: client}
}

type clientReader struct {
	client *chain.Client
}

func (c *clientReader) LatestBlockNumber(ctx context.Context) (int64, error) {
	return c.client.LatestBlockNumber(ctx)
}

func (c *clientReader) FilterInvestEvents(ctx context.Context, contractAddress string, fromBlock, toBlock int64) ([]*chain.InvestEvent, error) {
	return c.client.FilterInvestEvents(ctx, contractAddress, fromBlock, toBlock)
}

func (c *clientReader) BlockTimestamp(ctx context.Context, blockNumber int64) (time.Time, error) {
	return c.client.BlockTimestamp(ctx, blockNumber)
}

func (c *clientReader) WatchInvestEvents(ctx context.Context, contractAddress string) (EventFilter, error) {
	return c.client.WatchInvestEvents(ctx, contractAddress)
}

func watchInterval(ms int) time.Duration {
	if ms <= 0 {
		return time.Second
	}
	return time.Duration(ms) * time.Millisecond
}
