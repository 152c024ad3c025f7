package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// 募资合约ABI定义（只含本服务消费的事件）
const offeringABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "investor", "type": "address"},
			{"indexed": false, "name": "usdcAmount", "type": "uint256"},
			{"indexed": false, "name": "tokenAmount", "type": "uint256"}
		],
		"name": "Invested",
		"type": "event"
	}
]`

// InvestEvent 链上投资事件，在链边界解码一次后以固定字段结构体流转
type InvestEvent struct {
	InvestorAddress string   // 投资人地址（保留原始大小写，匹配时统一小写）
	UsdcAmountRaw   *big.Int // USDC定点整数金额（6位小数）
	TokenAmountRaw  *big.Int // 代币定点整数金额（18位小数）
	TxHash          string   // 交易哈希
	BlockNumber     int64    // 区块号
	LogIndex        uint     // 日志序号
}

var (
	parsedABI       abi.ABI
	investedEventID common.Hash
)

func init() {
	var err error
	parsedABI, err = abi.JSON(strings.NewReader(offeringABI))
	if err != nil {
		panic(fmt.Sprintf("Failed to parse offering ABI: %v", err))
	}
	investedEventID = parsedABI.Events["Invested"].ID
}

// InvestedEventID Invested事件的签名哈希
func InvestedEventID() common.Hash {
	return investedEventID
}

// ParseInvestLog 解析单条Invested事件日志
func ParseInvestLog(l types.Log) (*InvestEvent, error) {
	if len(l.Topics) < 2 {
		return nil, fmt.Errorf("invalid Invested event: insufficient topics")
	}
	if l.Topics[0] != investedEventID {
		return nil, fmt.Errorf("unknown event signature: %s", l.Topics[0].Hex())
	}

	// 解析非索引参数（usdcAmount, tokenAmount）
	values, err := parsedABI.Events["Invested"].Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack Invested event data: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("invalid Invested event: expected 2 data fields, got %d", len(values))
	}

	usdcAmount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid Invested event: usdcAmount is not uint256")
	}
	tokenAmount, ok := values[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid Invested event: tokenAmount is not uint256")
	}

	return &InvestEvent{
		InvestorAddress: common.BytesToAddress(l.Topics[1].Bytes()).Hex(),
		UsdcAmountRaw:   usdcAmount,
		TokenAmountRaw:  tokenAmount,
		TxHash:          l.TxHash.Hex(),
		BlockNumber:     int64(l.BlockNumber),
		LogIndex:        l.Index,
	}, nil
}
