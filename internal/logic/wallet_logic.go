package logic

import (
	"context"
	"errors"
	"strings"

	"github.com/X-spec7/circle-integration-backend-sub000/internal/model"
	"gorm.io/gorm"
)

// WalletLogic 钱包地址归属解析
type WalletLogic struct {
	db *gorm.DB
}

// NewWalletLogic 创建钱包逻辑
func NewWalletLogic(db *gorm.DB) *WalletLogic {
	return &WalletLogic{db: db}
}

// ResolveInvestor 根据链上地址解析投资人
// 优先查显式的钱包映射表，未命中时回退到用户资料里的钱包字段。
// 地址比较一律不区分大小写。未解析到时返回 found=false，不视为错误。
func (w *WalletLogic) ResolveInvestor(ctx context.Context, address string) (int64, bool, error) {
	addr := strings.ToLower(address)

	var mapping model.WalletMapping
	err := w.db.WithContext(ctx).Where("LOWER(address) = ?", addr).First(&mapping).Error
	if err == nil {
		return mapping.UserId, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	// 回退：匹配用户资料的钱包地址字段
	var user model.User
	err = w.db.WithContext(ctx).Where("wallet_address <> '' AND LOWER(wallet_address) = ?", addr).First(&user).Error
	if err == nil {
		return user.Id, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	return 0, false, nil
}
