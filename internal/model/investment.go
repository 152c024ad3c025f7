package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment 投资记录
// 自然键为 (project_id, tx_hash, investor_id)，由唯一索引保证幂等：
// 扫描与实时监听两条路径重复投递同一事件时，至多写入一行。
type Investment struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId  int64 `json:"project_id" gorm:"not null;uniqueIndex:idx_investment_event,priority:1;index"`
	InvestorId int64 `json:"investor_id" gorm:"not null;uniqueIndex:idx_investment_event,priority:3;index"`

	// 金额（链上定点整数换算后的十进制值）
	UsdcAmount  decimal.Decimal `json:"usdc_amount" gorm:"type:numeric(24,6);not null"`
	TokenAmount decimal.Decimal `json:"token_amount" gorm:"type:numeric(44,18);not null"`

	// 区块链信息
	TxHash      string     `json:"tx_hash" gorm:"type:varchar(66);not null;uniqueIndex:idx_investment_event,priority:2"`
	BlockNumber int64      `json:"block_number"`
	InvestedAt  *time.Time `json:"invested_at"`

	Status InvestmentStatus `json:"status" gorm:"default:'confirmed'"`
}

// InvestmentStatus 投资记录状态
// 仅 confirmed 由本服务写入；后续状态流转归写路径所有
type InvestmentStatus string

const (
	InvestmentStatusConfirmed InvestmentStatus = "confirmed" // 已确认
	InvestmentStatusClaimed   InvestmentStatus = "claimed"   // 已领取代币
	InvestmentStatusRefunded  InvestmentStatus = "refunded"  // 已退款
)

// TableName 自定义表名
func (Investment) TableName() string {
	return "investment"
}
