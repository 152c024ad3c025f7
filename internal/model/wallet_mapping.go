package model

import (
	"time"
)

// WalletMapping 钱包地址到用户的显式映射
// 由投资写路径在用户绑定钱包时创建，本服务只读。
// 地址统一以小写形式存储，比较不区分大小写。
type WalletMapping struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserId  int64  `json:"user_id" gorm:"not null;index"`
	Address string `json:"address" gorm:"type:varchar(42);not null;uniqueIndex"`
}

// TableName 自定义表名
func (WalletMapping) TableName() string {
	return "wallet_mapping"
}
