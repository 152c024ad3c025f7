package model

import (
	"time"
)

// SkippedEvent 对账时因无法解析投资人身份而跳过的链上事件
// 留存原始数据，等待钱包映射补齐后由回补任务重放。
type SkippedEvent struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId       int64  `json:"project_id" gorm:"not null;uniqueIndex:idx_skipped_event,priority:1"`
	InvestorAddress string `json:"investor_address" gorm:"type:varchar(42);not null;uniqueIndex:idx_skipped_event,priority:3"`

	// 原始定点整数金额，十进制字符串
	UsdcAmountRaw  string `json:"usdc_amount_raw" gorm:"type:numeric(78);not null"`
	TokenAmountRaw string `json:"token_amount_raw" gorm:"type:numeric(78);not null"`

	TxHash      string `json:"tx_hash" gorm:"type:varchar(66);not null;uniqueIndex:idx_skipped_event,priority:2"`
	BlockNumber int64  `json:"block_number"`

	Reason     string `json:"reason"`
	RetryCount int    `json:"retry_count" gorm:"default:0"`
}

// TableName 自定义表名
func (SkippedEvent) TableName() string {
	return "skipped_event"
}
