package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// 单次RPC调用的超时上限
const requestTimeout = 15 * time.Second

// Client 链读取客户端，封装ethclient的只读操作
type Client struct {
	client  *ethclient.Client
	chainId int64
}

// Init 创建链读取客户端并验证连接
func Init(cfg config.ChainConfig) (*Client, error) {
	if cfg.RpcUrl == "" {
		return nil, fmt.Errorf("no RPC URL configured")
	}

	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain client: %w", err)
	}

	c := &Client{
		client:  client,
		chainId: cfg.ChainId,
	}

	// 测试连接
	if _, err := c.LatestBlockNumber(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("chain client connection test failed: %w", err)
	}

	return c, nil
}

// NewClient 用已有的ethclient构建客户端
func NewClient(client *ethclient.Client, chainId int64) *Client {
	return &Client{client: client, chainId: chainId}
}

// LatestBlockNumber 获取当前最新区块号
func (c *Client) LatestBlockNumber(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Int64(), nil
}

// FilterInvestEvents 获取指定区块范围内某合约的Invested事件，按区块及日志顺序升序返回
func (c *Client) FilterInvestEvents(ctx context.Context, contractAddress string, fromBlock, toBlock int64) ([]*InvestEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   big.NewInt(toBlock),
		Addresses: []common.Address{common.HexToAddress(contractAddress)},
		Topics:    [][]common.Hash{{investedEventID}},
	}

	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, err
	}

	events := make([]*InvestEvent, 0, len(logs))
	for _, l := range logs {
		event, err := ParseInvestLog(l)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log at block %d: %w", l.BlockNumber, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// BlockTimestamp 获取区块时间戳（UTC）
func (c *Client) BlockTimestamp(ctx context.Context, blockNumber int64) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	header, err := c.client.HeaderByNumber(ctx, big.NewInt(blockNumber))
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil
}

// WatchInvestEvents 为某合约创建实时事件过滤器，从当前链头之后开始
func (c *Client) WatchInvestEvents(ctx context.Context, contractAddress string) (*InvestFilter, error) {
	head, err := c.LatestBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create invest filter: %w", err)
	}

	return &InvestFilter{
		client:          c,
		contractAddress: contractAddress,
		lastSeenBlock:   head,
	}, nil
}

// GetChainId 获取链ID
func (c *Client) GetChainId() int64 {
	return c.chainId
}

// Close 关闭客户端
func (c *Client) Close() {
	c.client.Close()
}
