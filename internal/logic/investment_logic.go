package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvestmentLogic 投资台账业务逻辑
// 幂等性由 investment 表的唯一索引兜底：插入一律走 ON CONFLICT DO NOTHING，
// 募集总额只用存储层表达式累加，避免扫描与实时监听并发提交时丢失更新。
type InvestmentLogic struct {
	db *gorm.DB
}

// NewInvestmentLogic 创建投资台账逻辑
func NewInvestmentLogic(db *gorm.DB) *InvestmentLogic {
	return &InvestmentLogic{db: db}
}

// InsertInvestment 写入单条投资记录并累加项目募集总额
// 自然键冲突时不写入、不累加，返回 inserted=false。
func (l *InvestmentLogic) InsertInvestment(ctx context.Context, investment *model.Investment) (bool, error) {
	if err := l.validateInvestment(investment); err != nil {
		return false, err
	}

	inserted := false
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(investment)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 已由另一条路径对账，静默吸收
			return nil
		}
		inserted = true

		return tx.Model(&model.Project{}).
			Where("id = ?", investment.ProjectId).
			Update("raised_total", gorm.Expr("raised_total + ?", investment.UsdcAmount)).Error
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// CommitRange 提交一个扫描区间：所有投资记录与游标推进在同一事务内落库
// 游标带单调性保护，只允许前进到更大的区块号。
func (l *InvestmentLogic) CommitRange(ctx context.Context, projectId int64, investments []*model.Investment, toBlock int64) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, investment := range investments {
			if err := l.validateInvestment(investment); err != nil {
				return err
			}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(investment)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				continue
			}
			if err := tx.Model(&model.Project{}).
				Where("id = ?", investment.ProjectId).
				Update("raised_total", gorm.Expr("raised_total + ?", investment.UsdcAmount)).Error; err != nil {
				return err
			}
		}

		// 推进游标，只增不减
		return tx.Model(&model.Project{}).
			Where("id = ? AND (last_processed_block IS NULL OR last_processed_block < ?)", projectId, toBlock).
			Update("last_processed_block", toBlock).Error
	})
}

// ExistsInvestment 按自然键检查投资记录是否已存在
func (l *InvestmentLogic) ExistsInvestment(ctx context.Context, projectId int64, txHash string, investorId int64) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&model.Investment{}).
		Where("project_id = ? AND tx_hash = ? AND investor_id = ?", projectId, txHash, investorId).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetProjectInvestments 获取项目的投资记录
func (l *InvestmentLogic) GetProjectInvestments(ctx context.Context, projectId int64, page, pageSize int) ([]model.Investment, int64, error) {
	var investments []model.Investment
	var total int64

	if err := l.db.WithContext(ctx).Model(&model.Investment{}).
		Where("project_id = ?", projectId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := l.db.WithContext(ctx).Where("project_id = ?", projectId).
		Offset(offset).
		Limit(pageSize).
		Order("block_number DESC, id DESC").
		Find(&investments).Error; err != nil {
		return nil, 0, err
	}

	return investments, total, nil
}

// GetInvestorInvestments 获取投资人的投资记录
func (l *InvestmentLogic) GetInvestorInvestments(ctx context.Context, investorId int64, page, pageSize int) ([]model.Investment, int64, error) {
	var investments []model.Investment
	var total int64

	if err := l.db.WithContext(ctx).Model(&model.Investment{}).
		Where("investor_id = ?", investorId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := l.db.WithContext(ctx).Where("investor_id = ?", investorId).
		Offset(offset).
		Limit(pageSize).
		Order("block_number DESC, id DESC").
		Find(&investments).Error; err != nil {
		return nil, 0, err
	}

	return investments, total, nil
}

// validateInvestment 验证投资记录
func (l *InvestmentLogic) validateInvestment(investment *model.Investment) error {
	if investment.ProjectId == 0 {
		return errors.New("project id is required")
	}
	if investment.InvestorId == 0 {
		return errors.New("investor id is required")
	}
	if investment.TxHash == "" {
		return errors.New("tx hash is required")
	}
	if investment.UsdcAmount.IsNegative() {
		return fmt.Errorf("invalid usdc amount: %s", investment.UsdcAmount)
	}
	return nil
}
