package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/chain"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// fakeReader 可编程的链读取假实现
type fakeReader struct {
	head   int64
	events []*chain.InvestEvent // 按区块号升序
	// 每次FilterInvestEvents调用前回调，返回非nil则该次调用失败
	filterErr func(call int, fromBlock, toBlock int64) error

	timestamps     map[int64]time.Time
	timestampErr   error
	timestampCalls int

	filterCalls []blockRange
	watchErr    error
	watchQueue  []EventFilter // WatchInvestEvents逐次弹出；耗尽后返回空过滤器
	watchCalls  int
}

type blockRange struct {
	from, to int64
}

func (r *fakeReader) LatestBlockNumber(ctx context.Context) (int64, error) {
	return r.head, nil
}

func (r *fakeReader) FilterInvestEvents(ctx context.Context, contractAddress string, fromBlock, toBlock int64) ([]*chain.InvestEvent, error) {
	call := len(r.filterCalls)
	r.filterCalls = append(r.filterCalls, blockRange{from: fromBlock, to: toBlock})
	if r.filterErr != nil {
		if err := r.filterErr(call, fromBlock, toBlock); err != nil {
			return nil, err
		}
	}

	var out []*chain.InvestEvent
	for _, ev := range r.events {
		if ev.BlockNumber >= fromBlock && ev.BlockNumber <= toBlock {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *fakeReader) BlockTimestamp(ctx context.Context, blockNumber int64) (time.Time, error) {
	r.timestampCalls++
	if r.timestampErr != nil {
		return time.Time{}, r.timestampErr
	}
	if ts, ok := r.timestamps[blockNumber]; ok {
		return ts, nil
	}
	return time.Unix(1700000000+blockNumber, 0).UTC(), nil
}

func (r *fakeReader) WatchInvestEvents(ctx context.Context, contractAddress string) (EventFilter, error) {
	r.watchCalls++
	if r.watchErr != nil {
		return nil, r.watchErr
	}
	if len(r.watchQueue) > 0 {
		f := r.watchQueue[0]
		r.watchQueue = r.watchQueue[1:]
		return f, nil
	}
	return &fakeFilter{}, nil
}

// fakeFilter 按脚本逐次返回轮询结果
type fakeFilter struct {
	mu      stdsync.Mutex
	batches []pollResult
	cursor  int
}

type pollResult struct {
	events []*chain.InvestEvent
	err    error
}

func (f *fakeFilter) Poll(ctx context.Context) ([]*chain.InvestEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cursor >= len(f.batches) {
		return nil, nil
	}
	res := f.batches[f.cursor]
	f.cursor++
	return res.events, res.err
}

// memLedger 内存台账，语义与存储层实现一致：
// 自然键唯一、聚合原子累加、区间提交整体生效、游标只增不减。
type memLedger struct {
	mu          stdsync.Mutex
	rows        map[string]*model.Investment
	raisedTotal map[int64]decimal.Decimal
	cursors     map[int64]int64
	insertErr   error
	commitErr   error
}

func newMemLedger() *memLedger {
	return &memLedger{
		rows:        make(map[string]*model.Investment),
		raisedTotal: make(map[int64]decimal.Decimal),
		cursors:     make(map[int64]int64),
	}
}

func ledgerKey(projectId int64, txHash string, investorId int64) string {
	return fmt.Sprintf("%d/%s/%d", projectId, txHash, investorId)
}

func (l *memLedger) InsertInvestment(ctx context.Context, inv *model.Investment) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.insertErr != nil {
		return false, l.insertErr
	}
	return l.insertLocked(inv), nil
}

func (l *memLedger) insertLocked(inv *model.Investment) bool {
	key := ledgerKey(inv.ProjectId, inv.TxHash, inv.InvestorId)
	if _, ok := l.rows[key]; ok {
		return false
	}
	copied := *inv
	l.rows[key] = &copied
	l.raisedTotal[inv.ProjectId] = l.raisedTotal[inv.ProjectId].Add(inv.UsdcAmount)
	return true
}

func (l *memLedger) CommitRange(ctx context.Context, projectId int64, invs []*model.Investment, toBlock int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.commitErr != nil {
		return l.commitErr
	}
	for _, inv := range invs {
		l.insertLocked(inv)
	}
	if toBlock > l.cursors[projectId] {
		l.cursors[projectId] = toBlock
	}
	return nil
}

func (l *memLedger) ExistsInvestment(ctx context.Context, projectId int64, txHash string, investorId int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.rows[ledgerKey(projectId, txHash, investorId)]
	return ok, nil
}

func (l *memLedger) rowCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

func (l *memLedger) raised(projectId int64) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.raisedTotal[projectId]
}

func (l *memLedger) cursor(projectId int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursors[projectId]
}

// fakeWallets 两级钱包目录：显式映射优先，资料字段回退
type fakeWallets struct {
	mappings map[string]int64 // 显式钱包映射（小写地址）
	profiles map[string]int64 // 用户资料钱包字段（小写地址）
}

func (w *fakeWallets) ResolveInvestor(ctx context.Context, address string) (int64, bool, error) {
	if id, ok := w.mappings[address]; ok {
		return id, true, nil
	}
	if id, ok := w.profiles[address]; ok {
		return id, true, nil
	}
	return 0, false, nil
}

// fakeProjects 固定项目列表；游标由测试通过memLedger回查
type fakeProjects struct {
	ledger   *memLedger
	projects []model.Project
}

func (p *fakeProjects) DeployedProjects(ctx context.Context) ([]model.Project, error) {
	out := make([]model.Project, len(p.projects))
	copy(out, p.projects)
	if p.ledger != nil {
		// 模拟扫描器每轮从存储重新加载游标
		for i := range out {
			if c := p.ledger.cursor(out[i].Id); c > 0 {
				cursor := c
				out[i].LastProcessedBlock = &cursor
			}
		}
	}
	return out, nil
}

// fakeSkipped 记录跳过事件
type fakeSkipped struct {
	mu     stdsync.Mutex
	events []*model.SkippedEvent
}

func (s *fakeSkipped) RecordSkipped(ctx context.Context, event *model.SkippedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *fakeSkipped) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
