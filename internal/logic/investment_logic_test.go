package logic

import (
	"context"
	"fmt"
	"testing"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 打开内存sqlite库并迁移表结构
// 唯一索引与ON CONFLICT语义和postgres一致，足以验证幂等路径。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存库随连接销毁，限制单连接避免连接池拿到空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Project{}, &model.Investment{}))
	return db
}

func seedProject(t *testing.T, db *gorm.DB) *model.Project {
	t.Helper()
	project := &model.Project{
		Name:            "Test Offering",
		Status:          model.ProjectStatusActive,
		ContractAddress: "0x00000000000000000000000000000000000000aa",
		DeployBlock:     100,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func reloadProject(t *testing.T, db *gorm.DB, id int64) *model.Project {
	t.Helper()
	var project model.Project
	require.NoError(t, db.First(&project, id).Error)
	return &project
}

func testInvestment(projectId, investorId int64, txHash string, usdc int64) *model.Investment {
	return &model.Investment{
		ProjectId:   projectId,
		InvestorId:  investorId,
		UsdcAmount:  decimal.NewFromInt(usdc),
		TokenAmount: decimal.NewFromInt(usdc),
		TxHash:      txHash,
		BlockNumber: 120,
		Status:      model.InvestmentStatusConfirmed,
	}
}

func TestInsertInvestmentDoubleDelivery(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db)
	l := NewInvestmentLogic(db)
	ctx := context.Background()

	inserted, err := l.InsertInvestment(ctx, testInvestment(project.Id, 42, "0xaaa", 100))
	require.NoError(t, err)
	require.True(t, inserted)

	// 扫描与实时监听投递同一事件，第二次必须被唯一索引吸收
	inserted, err = l.InsertInvestment(ctx, testInvestment(project.Id, 42, "0xaaa", 100))
	require.NoError(t, err)
	require.False(t, inserted)

	var count int64
	require.NoError(t, db.Model(&model.Investment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	raised := reloadProject(t, db, project.Id).RaisedTotal
	require.True(t, raised.Equal(decimal.NewFromInt(100)), "raised_total = %s", raised)
}

func TestInsertInvestmentAccumulatesAcrossEvents(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db)
	l := NewInvestmentLogic(db)
	ctx := context.Background()

	for i, usdc := range []int64{100, 50, 25} {
		inserted, err := l.InsertInvestment(ctx, testInvestment(project.Id, 42, fmt.Sprintf("0xtx%d", i), usdc))
		require.NoError(t, err)
		require.True(t, inserted)
	}

	raised := reloadProject(t, db, project.Id).RaisedTotal
	require.True(t, raised.Equal(decimal.NewFromInt(175)), "raised_total = %s", raised)
}

func TestCommitRangeIdempotentReplay(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db)
	l := NewInvestmentLogic(db)
	ctx := context.Background()

	batch := func() []*model.Investment {
		return []*model.Investment{
			testInvestment(project.Id, 42, "0xaaa", 100),
			testInvestment(project.Id, 7, "0xbbb", 50),
		}
	}

	require.NoError(t, l.CommitRange(ctx, project.Id, batch(), 2000))

	// 游标回退后的重扫：同一区间重放不得产生新行或重复累加
	require.NoError(t, db.Model(&model.Project{}).Where("id = ?", project.Id).
		Update("last_processed_block", nil).Error)
	require.NoError(t, l.CommitRange(ctx, project.Id, batch(), 2000))

	var count int64
	require.NoError(t, db.Model(&model.Investment{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	reloaded := reloadProject(t, db, project.Id)
	require.True(t, reloaded.RaisedTotal.Equal(decimal.NewFromInt(150)), "raised_total = %s", reloaded.RaisedTotal)
	require.NotNil(t, reloaded.LastProcessedBlock)
	require.Equal(t, int64(2000), *reloaded.LastProcessedBlock)
}

func TestCommitRangeCursorMonotonic(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db)
	l := NewInvestmentLogic(db)
	ctx := context.Background()

	// 初始游标为空，首次提交落到目标区块
	require.NoError(t, l.CommitRange(ctx, project.Id, nil, 2000))
	reloaded := reloadProject(t, db, project.Id)
	require.NotNil(t, reloaded.LastProcessedBlock)
	require.Equal(t, int64(2000), *reloaded.LastProcessedBlock)

	// 过期的提交不得把游标拉回去
	require.NoError(t, l.CommitRange(ctx, project.Id, nil, 1500))
	reloaded = reloadProject(t, db, project.Id)
	require.Equal(t, int64(2000), *reloaded.LastProcessedBlock)

	require.NoError(t, l.CommitRange(ctx, project.Id, nil, 2500))
	reloaded = reloadProject(t, db, project.Id)
	require.Equal(t, int64(2500), *reloaded.LastProcessedBlock)
}

func TestCommitRangeRejectsInvalidRecord(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db)
	l := NewInvestmentLogic(db)
	ctx := context.Background()

	bad := testInvestment(project.Id, 42, "0xaaa", 100)
	bad.InvestorId = 0

	err := l.CommitRange(ctx, project.Id, []*model.Investment{bad}, 2000)
	require.Error(t, err)

	// 整个区间回滚：没有行，游标不动
	var count int64
	require.NoError(t, db.Model(&model.Investment{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
	require.Nil(t, reloadProject(t, db, project.Id).LastProcessedBlock)
}
