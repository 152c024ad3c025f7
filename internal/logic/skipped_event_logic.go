package logic

import (
	"context"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkippedEventLogic 跳过事件留存与回补
type SkippedEventLogic struct {
	db *gorm.DB
}

// NewSkippedEventLogic 创建跳过事件逻辑
func NewSkippedEventLogic(db *gorm.DB) *SkippedEventLogic {
	return &SkippedEventLogic{db: db}
}

// RecordSkipped 留存一条跳过的事件
// 同一事件被两条路径各跳过一次时只留一行。
func (s *SkippedEventLogic) RecordSkipped(ctx context.Context, event *model.SkippedEvent) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event).Error
}

// PendingSkipped 获取待回补的跳过事件
func (s *SkippedEventLogic) PendingSkipped(ctx context.Context, limit int) ([]model.SkippedEvent, error) {
	var events []model.SkippedEvent
	err := s.db.WithContext(ctx).
		Order("block_number ASC, id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// MarkRetried 累加重试次数
func (s *SkippedEventLogic) MarkRetried(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Model(&model.SkippedEvent{}).
		Where("id = ?", id).
		Update("retry_count", gorm.Expr("retry_count + 1")).Error
}

// Remove 回补成功后删除留存行
func (s *SkippedEventLogic) Remove(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&model.SkippedEvent{}, id).Error
}

// CountPending 待回补事件总数
func (s *SkippedEventLogic) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.SkippedEvent{}).Count(&count).Error
	return count, err
}
