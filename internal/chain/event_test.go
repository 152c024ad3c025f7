package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func investedLog(investor common.Address, usdcRaw, tokenRaw *big.Int, txHash string, block uint64, index uint) types.Log {
	data := make([]byte, 0, 64)
	data = append(data, common.LeftPadBytes(usdcRaw.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(tokenRaw.Bytes(), 32)...)

	return types.Log{
		Address: common.HexToAddress("0x00000000000000000000000000000000000000c1"),
		Topics: []common.Hash{
			InvestedEventID(),
			common.BytesToHash(common.LeftPadBytes(investor.Bytes(), 32)),
		},
		Data:        data,
		TxHash:      common.HexToHash(txHash),
		BlockNumber: block,
		Index:       index,
	}
}

func TestParseInvestLog(t *testing.T) {
	investor := common.HexToAddress("0xAaA0000000000000000000000000000000000aAa")
	tokenRaw, ok := new(big.Int).SetString("100000000000000000000", 10)
	require.True(t, ok)

	l := investedLog(investor, big.NewInt(100000000), tokenRaw, "0xdeadbeef", 120, 3)

	event, err := ParseInvestLog(l)
	require.NoError(t, err)
	require.Equal(t, investor.Hex(), event.InvestorAddress)
	require.Equal(t, "100000000", event.UsdcAmountRaw.String())
	require.Equal(t, "100000000000000000000", event.TokenAmountRaw.String())
	require.Equal(t, int64(120), event.BlockNumber)
	require.Equal(t, uint(3), event.LogIndex)
	require.Equal(t, l.TxHash.Hex(), event.TxHash)
}

func TestParseInvestLogZeroAmounts(t *testing.T) {
	investor := common.HexToAddress("0xbbb0000000000000000000000000000000000bbb")
	l := investedLog(investor, big.NewInt(0), big.NewInt(0), "0x01", 1, 0)

	event, err := ParseInvestLog(l)
	require.NoError(t, err)
	require.Equal(t, "0", event.UsdcAmountRaw.String())
	require.Equal(t, "0", event.TokenAmountRaw.String())
}

func TestParseInvestLogInsufficientTopics(t *testing.T) {
	l := types.Log{Topics: []common.Hash{InvestedEventID()}}
	_, err := ParseInvestLog(l)
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient topics")
}

func TestParseInvestLogUnknownSignature(t *testing.T) {
	l := types.Log{Topics: []common.Hash{
		common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111"),
		common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222"),
	}}
	_, err := ParseInvestLog(l)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown event signature")
}

func TestParseInvestLogTruncatedData(t *testing.T) {
	investor := common.HexToAddress("0xccc0000000000000000000000000000000000ccc")
	l := investedLog(investor, big.NewInt(1), big.NewInt(1), "0x02", 1, 0)
	l.Data = l.Data[:32] // 砍掉tokenAmount

	_, err := ParseInvestLog(l)
	require.Error(t, err)
}
