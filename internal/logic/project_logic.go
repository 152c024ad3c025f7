package logic

import (
	"context"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
	"gorm.io/gorm"
)

// ProjectLogic 项目业务逻辑（本服务只读）
type ProjectLogic struct {
	db *gorm.DB
}

// NewProjectLogic 创建项目逻辑
func NewProjectLogic(db *gorm.DB) *ProjectLogic {
	return &ProjectLogic{db: db}
}

// DeployedProjects 获取所有已部署合约的项目
func (p *ProjectLogic) DeployedProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := p.db.WithContext(ctx).
		Where("contract_address <> ''").
		Order("id ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject 按ID获取项目
func (p *ProjectLogic) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	var project model.Project
	if err := p.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects 分页获取项目列表
func (p *ProjectLogic) ListProjects(ctx context.Context, page, pageSize int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	if err := p.db.WithContext(ctx).Model(&model.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := p.db.WithContext(ctx).
		Offset(offset).
		Limit(pageSize).
		Order("id ASC").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}
