package chain

import (
	"context"
)

// InvestFilter 实时事件过滤器
// 记住上次轮询到的链头，每次Poll只返回其后的新事件。
// 出错后由调用方重建，不在内部做恢复。
type InvestFilter struct {
	client          *Client
	contractAddress string
	lastSeenBlock   int64
}

// Poll 拉取自上次轮询以来的新事件
func (f *InvestFilter) Poll(ctx context.Context) ([]*InvestEvent, error) {
	head, err := f.client.LatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	if head <= f.lastSeenBlock {
		return nil, nil
	}

	events, err := f.client.FilterInvestEvents(ctx, f.contractAddress, f.lastSeenBlock+1, head)
	if err != nil {
		return nil, err
	}

	f.lastSeenBlock = head
	return events, nil
}

// ContractAddress 过滤器监听的合约地址
func (f *InvestFilter) ContractAddress() string {
	return f.contractAddress
}
