package model

import (
	"time"
)

// User 用户模型
// 本服务只读：wallet_address 作为钱包映射缺失时的回退匹配字段
type User struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email string `json:"email" gorm:"uniqueIndex"`
	Name  string `json:"name"`

	// 用户资料里的钱包地址（历史字段，可能为空）
	WalletAddress string `json:"wallet_address" gorm:"type:varchar(42);index"`
}

// TableName 自定义表名
func (User) TableName() string {
	return "users"
}
