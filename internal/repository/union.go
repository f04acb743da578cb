package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"familytree_go/internal/model"
)

// GetUnion 根据ID获取联姻记录
func (db *DB) GetUnion(ctx context.Context, id uint) (*model.Union, error) {
	var union model.Union
	if err := db.WithContext(ctx).First(&union, id).Error; err != nil {
		return nil, err
	}
	return &union, nil
}

// ListUnions 获取所有联姻记录
func (db *DB) ListUnions(ctx context.Context) ([]*model.Union, error) {
	var unions []*model.Union
	err := db.WithContext(ctx).Order("id").Find(&unions).Error
	return unions, err
}

// UnionsInvolving 查询成员参与的全部联姻，按创建顺序返回
func (db *DB) UnionsInvolving(ctx context.Context, memberID uint) ([]*model.Union, error) {
	var unions []*model.Union
	err := db.WithContext(ctx).
		Where("member1_id = ? OR member2_id = ?", memberID, memberID).
		Order("id").
		Find(&unions).Error
	return unions, err
}

// UnionBetween 查询两个成员之间的联姻记录，不区分成员槽位顺序。
// 未找到时返回(nil, nil)。
func (db *DB) UnionBetween(ctx context.Context, a, b uint) (*model.Union, error) {
	var union model.Union
	err := db.WithContext(ctx).
		Where("(member1_id = ? AND member2_id = ?) OR (member1_id = ? AND member2_id = ?)", a, b, b, a).
		Order("id").
		First(&union).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &union, nil
}

// CreateUnion 创建联姻记录
func (db *DB) CreateUnion(ctx context.Context, union *model.Union) error {
	return db.WithContext(ctx).Create(union).Error
}

// UpdateUnion 更新联姻记录字段
func (db *DB) UpdateUnion(ctx context.Context, union *model.Union, updates map[string]interface{}) error {
	return db.WithContext(ctx).Model(union).Updates(updates).Error
}

// DeleteUnion 删除联姻记录
func (db *DB) DeleteUnion(ctx context.Context, id uint) error {
	return db.WithContext(ctx).Delete(&model.Union{}, id).Error
}
