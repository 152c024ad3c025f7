package sync

import (
	"context"
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/chain"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
)

// ChainReader 链只读访问接口
// 由chain.Client实现，测试时用内存假实现替换。
type ChainReader interface {
	// LatestBlockNumber 当前最新区块号
	LatestBlockNumber(ctx context.Context) (int64, error)
	// FilterInvestEvents 按区块范围获取合约的投资事件，升序返回
	FilterInvestEvents(ctx context.Context, contractAddress string, fromBlock, toBlock int64) ([]*chain.InvestEvent, error)
	// BlockTimestamp 区块时间戳（UTC）
	BlockTimestamp(ctx context.Context, blockNumber int64) (time.Time, error)
	// WatchInvestEvents 创建实时事件过滤器
	WatchInvestEvents(ctx context.Context, contractAddress string) (EventFilter, error)
}

// EventFilter 实时事件过滤器，出错后由调用方重建
type EventFilter interface {
	Poll(ctx context.Context) ([]*chain.InvestEvent, error)
}

// Ledger 投资台账写入接口
// 实现必须在存储层保证自然键唯一与募集总额的原子累加。
type Ledger interface {
	InsertInvestment(ctx context.Context, investment *model.Investment) (bool, error)
	CommitRange(ctx context.Context, projectId int64, investments []*model.Investment, toBlock int64) error
	ExistsInvestment(ctx context.Context, projectId int64, txHash string, investorId int64) (bool, error)
}

// WalletDirectory 钱包地址归属解析接口
type WalletDirectory interface {
	ResolveInvestor(ctx context.Context, address string) (int64, bool, error)
}

// ProjectSource 可对账项目来源
type ProjectSource interface {
	DeployedProjects(ctx context.Context) ([]model.Project, error)
}

// SkippedStore 跳过事件留存接口
type SkippedStore interface {
	RecordSkipped(ctx context.Context, event *model.SkippedEvent) error
}
