package service

import (
	"context"
	"strings"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
)

// MemberSearchQuery 成员搜索查询
type MemberSearchQuery struct {
	Query    string // 按姓名/出生地模糊匹配
	Gender   string // 按性别过滤，空表示不过滤
	Deceased *bool  // 按是否已故过滤，nil表示不过滤
	Limit    int    // 最大结果数，0表示不限制
}

// MemberSearch 成员搜索服务
type MemberSearch struct {
	db     *repository.DB
	logger *Logger
}

// NewMemberSearch 创建成员搜索服务实例
func NewMemberSearch(db *repository.DB, logger *Logger) *MemberSearch {
	return &MemberSearch{
		db:     db,
		logger: logger,
	}
}

// Search 搜索家族成员，结果按姓氏、名字排序
func (s *MemberSearch) Search(ctx context.Context, query *MemberSearchQuery) ([]*model.Member, error) {
	q := s.db.WithContext(ctx).Model(&model.Member{})

	if term := strings.TrimSpace(query.Query); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(birth_place) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if query.Gender != "" {
		q = q.Where("gender = ?", query.Gender)
	}
	if query.Deceased != nil {
		if *query.Deceased {
			q = q.Where("death_date IS NOT NULL")
		} else {
			q = q.Where("death_date IS NULL")
		}
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var members []*model.Member
	if err := q.Order("last_name, first_name").Find(&members).Error; err != nil {
		return nil, NewError(ErrDatabase, "member search failed", err)
	}
	return members, nil
}
