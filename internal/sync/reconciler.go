package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/chain"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/logger"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// 链上定点金额的小数位数，由合约的代币精度固定
const (
	UsdcDecimals  = 6
	TokenDecimals = 18
)

// Outcome 单个事件的对账结果
type Outcome int

const (
	OutcomeReconciled Outcome = iota // 生成了待写入的投资记录
	OutcomeDuplicate                 // 已由另一条路径对账，静默吸收
	OutcomeSkipped                   // 投资人身份无法解析，已留存待回补
)

// Reconciler 对账器：把一条链上事件转换为至多一条投资记录
// 扫描与实时监听两条路径共用。
type Reconciler struct {
	reader  ChainReader
	wallets WalletDirectory
	skipped SkippedStore
	stats   *Stats
}

// NewReconciler 创建对账器
func NewReconciler(reader ChainReader, wallets WalletDirectory, skipped SkippedStore, stats *Stats) *Reconciler {
	return &Reconciler{
		reader:  reader,
		wallets: wallets,
		skipped: skipped,
		stats:   stats,
	}
}

// Apply 对账单个事件
// 解析投资人身份、做幂等预检、换算金额、补齐区块时间戳，
// 返回尚未落库的投资记录；落库由调用方按各自的提交粒度完成。
func (r *Reconciler) Apply(ctx context.Context, project *model.Project, event *chain.InvestEvent, ledger Ledger) (*model.Investment, Outcome, error) {
	addr := strings.ToLower(event.InvestorAddress)

	// 解析投资人身份
	investorId, found, err := r.wallets.ResolveInvestor(ctx, addr)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve investor %s: %w", addr, err)
	}
	if !found {
		r.recordSkipped(ctx, project, event, addr)
		return nil, OutcomeSkipped, nil
	}

	// 幂等预检：唯一索引兜底，这里只是提前跳过后续RPC开销
	exists, err := ledger.ExistsInvestment(ctx, project.Id, event.TxHash, investorId)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to check existing investment: %w", err)
	}
	if exists {
		r.stats.Duplicates.Add(1)
		return nil, OutcomeDuplicate, nil
	}

	// 金额换算：定点整数转十进制
	usdcAmount := decimal.NewFromBigInt(event.UsdcAmountRaw, -UsdcDecimals)
	tokenAmount := decimal.NewFromBigInt(event.TokenAmountRaw, -TokenDecimals)

	// 区块时间戳：取不到时记录仍然写入，时间留空
	var investedAt *time.Time
	if ts, err := r.reader.BlockTimestamp(ctx, event.BlockNumber); err != nil {
		logger.Warn("Failed to get timestamp for block %d: %v", event.BlockNumber, err)
	} else {
		investedAt = &ts
	}

	return &model.Investment{
		ProjectId:   project.Id,
		InvestorId:  investorId,
		UsdcAmount:  usdcAmount,
		TokenAmount: tokenAmount,
		TxHash:      event.TxHash,
		BlockNumber: event.BlockNumber,
		InvestedAt:  investedAt,
		Status:      model.InvestmentStatusConfirmed,
	}, OutcomeReconciled, nil
}

// ApplyLive 实时监听路径：对账并立即单条落库
func (r *Reconciler) ApplyLive(ctx context.Context, project *model.Project, event *chain.InvestEvent, ledger Ledger) error {
	investment, outcome, err := r.Apply(ctx, project, event, ledger)
	if err != nil {
		return err
	}
	if outcome != OutcomeReconciled {
		return nil
	}

	inserted, err := ledger.InsertInvestment(ctx, investment)
	if err != nil {
		return fmt.Errorf("failed to insert investment %s: %w", event.TxHash, err)
	}
	if !inserted {
		// 与扫描路径并发写入时输给了对方
		r.stats.Duplicates.Add(1)
		return nil
	}

	r.stats.Reconciled.Add(1)
	logger.Info("Reconciled investment %s for project %d at block %d (live)",
		event.TxHash, project.Id, event.BlockNumber)
	return nil
}

// recordSkipped 留存身份无法解析的事件，等待回补
func (r *Reconciler) recordSkipped(ctx context.Context, project *model.Project, event *chain.InvestEvent, addr string) {
	r.stats.Skipped.Add(1)
	logger.Warn("No user found for investor address %s (project %d, tx %s), event deferred",
		addr, project.Id, event.TxHash)

	skipped := &model.SkippedEvent{
		ProjectId:       project.Id,
		InvestorAddress: addr,
		UsdcAmountRaw:   event.UsdcAmountRaw.String(),
		TokenAmountRaw:  event.TokenAmountRaw.String(),
		TxHash:          event.TxHash,
		BlockNumber:     event.BlockNumber,
		Reason:          "investor address not registered",
	}
	if err := r.skipped.RecordSkipped(ctx, skipped); err != nil {
		logger.Error("Failed to record skipped event %s: %v", event.TxHash, err)
	}
}
