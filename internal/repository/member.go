package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"familytree_go/internal/model"
)

// 父/母槽位列名
const (
	SlotFather = "father_id"
	SlotMother = "mother_id"
)

// ParentKey 父/母槽位的标记键：已知成员或未知。
// 按值比较，可作为map键使用，避免依赖可空指针的比较语义。
type ParentKey struct {
	ID    uint
	Known bool
}

// Known 已知成员的父/母键
func Known(id uint) ParentKey {
	return ParentKey{ID: id, Known: true}
}

// Unknown 未知父/母键
var Unknown = ParentKey{}

// ParentKeyOf 从可空的外键字段构造ParentKey
func ParentKeyOf(id *uint) ParentKey {
	if id == nil {
		return Unknown
	}
	return Known(*id)
}

// scopeParent 按ParentKey过滤指定的父/母槽位
func scopeParent(q *gorm.DB, column string, key ParentKey) *gorm.DB {
	if key.Known {
		return q.Where(column+" = ?", key.ID)
	}
	return q.Where(column + " IS NULL")
}

// GetMember 根据ID获取家族成员
func (db *DB) GetMember(ctx context.Context, id uint) (*model.Member, error) {
	var member model.Member
	if err := db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// MemberExists 检查成员是否存在
func (db *DB) MemberExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Member{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListMembers 获取所有家族成员
func (db *DB) ListMembers(ctx context.Context) ([]*model.Member, error) {
	var members []*model.Member
	err := db.WithContext(ctx).Order("last_name, first_name").Find(&members).Error
	return members, err
}

// ChildrenOf 按父母键对查询子女，按创建顺序返回
func (db *DB) ChildrenOf(ctx context.Context, father, mother ParentKey) ([]*model.Member, error) {
	var children []*model.Member
	q := db.WithContext(ctx).Model(&model.Member{})
	q = scopeParent(q, SlotFather, father)
	q = scopeParent(q, SlotMother, mother)
	err := q.Order("id").Find(&children).Error
	return children, err
}

// ChildrenOfParent 查询指定槽位等于某成员的全部子女，按创建顺序返回
func (db *DB) ChildrenOfParent(ctx context.Context, slot string, parentID uint) ([]*model.Member, error) {
	var children []*model.Member
	err := db.WithContext(ctx).
		Where(slot+" = ?", parentID).
		Order("id").
		Find(&children).Error
	return children, err
}

// ChildrenOfPair 查询父母为{a, b}的子女，不区分哪一方为父哪一方为母
func (db *DB) ChildrenOfPair(ctx context.Context, a, b uint) ([]*model.Member, error) {
	var children []*model.Member
	err := db.WithContext(ctx).
		Where("(father_id = ? AND mother_id = ?) OR (father_id = ? AND mother_id = ?)", a, b, b, a).
		Order("id").
		Find(&children).Error
	return children, err
}

// CreateMember 创建家族成员
func (db *DB) CreateMember(ctx context.Context, member *model.Member) error {
	return db.WithContext(ctx).Create(member).Error
}

// UpdateMember 更新家族成员字段
func (db *DB) UpdateMember(ctx context.Context, member *model.Member, updates map[string]interface{}) error {
	return db.WithContext(ctx).Model(member).Updates(updates).Error
}

// DeleteMember 删除家族成员，并清理指向它的依赖引用：
// 子女的父/母外键置空，涉及该成员的联姻一并删除。
func (db *DB) DeleteMember(ctx context.Context, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Member{}).Where("father_id = ?", id).Update("father_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Member{}).Where("mother_id = ?", id).Update("mother_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("member1_id = ? OR member2_id = ?", id, id).Delete(&model.Union{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Member{}, id).Error
	})
}

// IsNotFound 判断是否为记录不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
