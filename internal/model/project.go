package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project 募资项目模型
type Project struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	// 状态
	Status ProjectStatus `json:"status" gorm:"default:'pending'"`

	// 区块链信息
	ContractAddress string `json:"contract_address" gorm:"type:varchar(42);index"`
	DeployBlock     int64  `json:"deploy_block"`

	// 同步游标：最后一个已完整对账的区块号，只增不减
	LastProcessedBlock *int64 `json:"last_processed_block"`

	// 已募集总额（USDC），仅由存储层原子累加
	RaisedTotal decimal.Decimal `json:"raised_total" gorm:"type:numeric(24,6);default:0"`
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusPending  ProjectStatus = "pending"  // 待上链
	ProjectStatusActive   ProjectStatus = "active"   // 募资中
	ProjectStatusEnded    ProjectStatus = "ended"    // 已结束
	ProjectStatusCanceled ProjectStatus = "canceled" // 已取消
)

// Deployed 合约是否已部署上链
func (p *Project) Deployed() bool {
	return p.ContractAddress != ""
}

// NextScanBlock 下一个待扫描的区块号
func (p *Project) NextScanBlock() int64 {
	if p.LastProcessedBlock == nil {
		return p.DeployBlock
	}
	return *p.LastProcessedBlock + 1
}

// TableName 自定义表名
func (Project) TableName() string {
	return "project"
}
