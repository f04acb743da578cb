package graph

import (
	"context"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
	"familytree_go/internal/service"
)

// Resolver 关系解析器：给定焦点成员，从存储中还原其一跳关系邻域。
// 只解析直接关系，不做跨代递归，环状数据不会导致无限解析。
type Resolver struct {
	db     *repository.DB
	logger *service.Logger
}

// NewResolver 创建关系解析器实例
func NewResolver(db *repository.DB, logger *service.Logger) *Resolver {
	return &Resolver{
		db:     db,
		logger: logger,
	}
}

// Resolve 解析焦点成员的关系快照。
// 焦点成员不存在时返回ErrMemberNotFound；其余查询失败一律降级为
// nil/空子结构，保证尽可能多地返回可知的部分。
func (r *Resolver) Resolve(ctx context.Context, personID uint) (*Snapshot, error) {
	person, err := r.db.GetMember(ctx, personID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, service.NewError(service.ErrMemberNotFound, "member not found", err).
				WithContext("member_id", personID)
		}
		return nil, service.NewError(service.ErrDatabase, "failed to load member", err)
	}

	snap := &Snapshot{
		Person:            person,
		Siblings:          []*model.Member{},
		MotherOtherUnions: []*UnionGroup{},
		FatherOtherUnions: []*UnionGroup{},
		OwnUnions:         []*UnionGroup{},
	}

	// 父母：悬挂引用降级为nil，不视为错误
	snap.Father = r.lookupMember(ctx, person.FatherID)
	snap.Mother = r.lookupMember(ctx, person.MotherID)

	// 同胞匹配使用存储中的外键值；双方同为空视为相等
	fatherKey := repository.ParentKeyOf(person.FatherID)
	motherKey := repository.ParentKeyOf(person.MotherID)

	// 全同胞：父母键对完全相同；双亲都未知时为空
	if fatherKey.Known || motherKey.Known {
		children, err := r.db.ChildrenOf(ctx, fatherKey, motherKey)
		if err != nil {
			r.logger.Warn("failed to load siblings of member %d: %v", personID, err)
		} else {
			for _, c := range children {
				if c.ID != person.ID {
					snap.Siblings = append(snap.Siblings, c)
				}
			}
		}
	}

	// 父母之间的联姻，不区分成员槽位顺序
	if snap.Father != nil && snap.Mother != nil {
		union, err := r.db.UnionBetween(ctx, snap.Father.ID, snap.Mother.ID)
		if err != nil {
			r.logger.Warn("failed to load parent union of member %d: %v", personID, err)
		} else {
			snap.ParentUnion = union
		}
	}

	// 父母各自的其他伴侣关系
	if snap.Mother != nil {
		snap.MotherOtherUnions = r.otherUnions(ctx, snap.Mother, repository.SlotMother, fatherKey)
	}
	if snap.Father != nil {
		snap.FatherOtherUnions = r.otherUnions(ctx, snap.Father, repository.SlotFather, motherKey)
	}

	// 焦点成员自己的联姻及子女
	snap.OwnUnions = r.ownUnions(ctx, person)

	return snap, nil
}

// lookupMember 查询可空引用指向的成员，不存在或查询失败时返回nil
func (r *Resolver) lookupMember(ctx context.Context, id *uint) *model.Member {
	if id == nil {
		return nil
	}
	member, err := r.db.GetMember(ctx, *id)
	if err != nil {
		if !repository.IsNotFound(err) {
			r.logger.Warn("failed to load member %d: %v", *id, err)
		}
		return nil
	}
	return member
}

// otherUnions 推导某个父/母的其他伴侣关系。
// 将该父/母的全部子女按另一侧父/母键分组（按首次出现顺序），
// 排除等于焦点成员另一侧父/母的分组（已由siblings/parentUnion覆盖）。
// Unknown分组合并为一条Partner/Union均为nil的记录。
func (r *Resolver) otherUnions(ctx context.Context, parent *model.Member, slot string, coParent repository.ParentKey) []*UnionGroup {
	children, err := r.db.ChildrenOfParent(ctx, slot, parent.ID)
	if err != nil {
		r.logger.Warn("failed to load children of member %d: %v", parent.ID, err)
		return []*UnionGroup{}
	}

	var order []repository.ParentKey
	partitions := make(map[repository.ParentKey][]*model.Member)
	for _, c := range children {
		var key repository.ParentKey
		if slot == repository.SlotMother {
			key = repository.ParentKeyOf(c.FatherID)
		} else {
			key = repository.ParentKeyOf(c.MotherID)
		}
		if key == coParent {
			continue
		}
		if _, seen := partitions[key]; !seen {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], c)
	}

	groups := []*UnionGroup{}
	for _, key := range order {
		group := &UnionGroup{Children: partitions[key]}
		if key.Known {
			group.Partner = r.lookupMember(ctx, &key.ID)
			union, err := r.db.UnionBetween(ctx, parent.ID, key.ID)
			if err != nil {
				r.logger.Warn("failed to load union between %d and %d: %v", parent.ID, key.ID, err)
			} else {
				group.Union = union
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// ownUnions 查询焦点成员的全部联姻、对方伴侣及共同子女。
// 子女匹配不区分焦点成员是父还是母。
func (r *Resolver) ownUnions(ctx context.Context, person *model.Member) []*UnionGroup {
	unions, err := r.db.UnionsInvolving(ctx, person.ID)
	if err != nil {
		r.logger.Warn("failed to load unions of member %d: %v", person.ID, err)
		return []*UnionGroup{}
	}

	groups := []*UnionGroup{}
	for _, union := range unions {
		partnerID := union.OtherMember(person.ID)
		group := &UnionGroup{
			Union:    union,
			Children: []*model.Member{},
		}
		group.Partner = r.lookupMember(ctx, &partnerID)
		if group.Partner != nil {
			children, err := r.db.ChildrenOfPair(ctx, person.ID, partnerID)
			if err != nil {
				r.logger.Warn("failed to load children of union %d: %v", union.ID, err)
			} else {
				group.Children = children
			}
		}
		groups = append(groups, group)
	}
	return groups
}
