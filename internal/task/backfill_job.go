package task

import (
	"context"
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/logger"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/sync"
	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
)

// 单轮回补处理的最大事件数
const backfillBatchSize = 100

// SkippedQueue 跳过事件留存的读端与回执
// 由logic.SkippedEventLogic实现，测试时用内存假实现替换。
type SkippedQueue interface {
	PendingSkipped(ctx context.Context, limit int) ([]model.SkippedEvent, error)
	MarkRetried(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
}

// BackfillJob 跳过事件回补任务
// 周期性重试因钱包未注册而跳过的事件，映射补齐后写入台账并删除留存行。
type BackfillJob struct {
	skipped SkippedQueue
	wallets sync.WalletDirectory
	ledger  sync.Ledger
	reader  sync.ChainReader
	stats   *sync.Stats
}

// NewBackfillJob 创建回补任务
func NewBackfillJob(skipped SkippedQueue, wallets sync.WalletDirectory, ledger sync.Ledger, reader sync.ChainReader, stats *sync.Stats) *BackfillJob {
	return &BackfillJob{
		skipped: skipped,
		wallets: wallets,
		ledger:  ledger,
		reader:  reader,
		stats:   stats,
	}
}

// GetName 任务名称
func (j *BackfillJob) GetName() string {
	return "skipped_event_backfill"
}

// GetSchedule 调度周期
func (j *BackfillJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(5 * time.Minute)
}

// Execute 执行一轮回补
func (j *BackfillJob) Execute() {
	ctx := context.Background()

	pending, err := j.skipped.PendingSkipped(ctx, backfillBatchSize)
	if err != nil {
		logger.Error("Backfill failed to load pending skipped events: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	recovered := 0
	for i := range pending {
		if j.backfillOne(ctx, &pending[i]) {
			recovered++
		}
	}

	if recovered > 0 {
		logger.Info("Backfilled %d of %d skipped events", recovered, len(pending))
	}
}

// backfillOne 尝试回补单条跳过的事件
func (j *BackfillJob) backfillOne(ctx context.Context, event *model.SkippedEvent) bool {
	investorId, found, err := j.wallets.ResolveInvestor(ctx, event.InvestorAddress)
	if err != nil {
		logger.Error("Backfill failed to resolve %s: %v", event.InvestorAddress, err)
		return false
	}
	if !found {
		// 钱包仍未注册，留到下一轮
		if err := j.skipped.MarkRetried(ctx, event.Id); err != nil {
			logger.Error("Backfill failed to mark retry for event %d: %v", event.Id, err)
		}
		return false
	}

	usdcRaw, err := decimal.NewFromString(event.UsdcAmountRaw)
	if err != nil {
		logger.Error("Backfill found invalid usdc amount %q for event %d: %v", event.UsdcAmountRaw, event.Id, err)
		return false
	}
	tokenRaw, err := decimal.NewFromString(event.TokenAmountRaw)
	if err != nil {
		logger.Error("Backfill found invalid token amount %q for event %d: %v", event.TokenAmountRaw, event.Id, err)
		return false
	}

	var investedAt *time.Time
	if ts, err := j.reader.BlockTimestamp(ctx, event.BlockNumber); err != nil {
		logger.Warn("Backfill failed to get timestamp for block %d: %v", event.BlockNumber, err)
	} else {
		investedAt = &ts
	}

	investment := &model.Investment{
		ProjectId:   event.ProjectId,
		InvestorId:  investorId,
		UsdcAmount:  usdcRaw.Shift(-sync.UsdcDecimals),
		TokenAmount: tokenRaw.Shift(-sync.TokenDecimals),
		TxHash:      event.TxHash,
		BlockNumber: event.BlockNumber,
		InvestedAt:  investedAt,
		Status:      model.InvestmentStatusConfirmed,
	}

	inserted, err := j.ledger.InsertInvestment(ctx, investment)
	if err != nil {
		logger.Error("Backfill failed to insert investment %s: %v", event.TxHash, err)
		return false
	}
	if inserted {
		j.stats.Reconciled.Add(1)
		logger.Info("Backfilled investment %s for project %d (investor %d)",
			event.TxHash, event.ProjectId, investorId)
	}

	if err := j.skipped.Remove(ctx, event.Id); err != nil {
		logger.Error("Backfill failed to remove skipped event %d: %v", event.Id, err)
	}
	return inserted
}
