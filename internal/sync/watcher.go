package sync

import (
	"context"
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/logger"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
)

// Watcher 实时事件监听器，每个已部署合约的项目一个
// 与追赶扫描相互独立：不碰游标，重复事件靠台账的幂等插入吸收。
type Watcher struct {
	reader       ChainReader
	reconciler   *Reconciler
	ledger       Ledger
	project      model.Project
	pollInterval time.Duration
	errorPause   time.Duration
	stats        *Stats
}

// NewWatcher 创建实时监听器
func NewWatcher(reader ChainReader, reconciler *Reconciler, ledger Ledger, project model.Project, pollInterval time.Duration, stats *Stats) *Watcher {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Watcher{
		reader:       reader,
		reconciler:   reconciler,
		ledger:       ledger,
		project:      project,
		pollInterval: pollInterval,
		errorPause:   5 * time.Second,
		stats:        stats,
	}
}

// Run 运行监听循环直到ctx取消
// 轮询出错时暂停片刻并重建过滤器，循环本身不因错误退出。
func (w *Watcher) Run(ctx context.Context) {
	logger.Info("Starting live watcher for project %d (contract %s)",
		w.project.Id, w.project.ContractAddress)

	filter := w.openFilter(ctx)
	if filter == nil {
		return
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Live watcher stopped for project %d", w.project.Id)
			return
		case <-ticker.C:
			events, err := filter.Poll(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("Watcher poll failed for project %d: %v, recreating filter", w.project.Id, err)
				w.stats.WatcherRestarts.Add(1)
				if err := sleepCtx(ctx, w.errorPause); err != nil {
					return
				}
				filter = w.openFilter(ctx)
				if filter == nil {
					return
				}
				continue
			}

			for _, event := range events {
				if err := w.reconciler.ApplyLive(ctx, &w.project, event, w.ledger); err != nil {
					logger.Error("Watcher failed to reconcile event %s for project %d: %v",
						event.TxHash, w.project.Id, err)
				}
			}
		}
	}
}

// openFilter 创建过滤器，失败时退避重试直到成功或ctx取消
func (w *Watcher) openFilter(ctx context.Context) EventFilter {
	for {
		filter, err := w.reader.WatchInvestEvents(ctx, w.project.ContractAddress)
		if err == nil {
			return filter
		}
		if ctx.Err() != nil {
			return nil
		}
		logger.Error("Failed to open invest filter for project %d: %v", w.project.Id, err)
		if sleepCtx(ctx, w.errorPause) != nil {
			return nil
		}
	}
}
