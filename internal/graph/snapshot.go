package graph

import (
	"familytree_go/internal/model"
)

// UnionGroup 一段伴侣关系及其子女。
// Union为nil表示没有登记的联姻记录；Partner为nil表示共同抚养人未知，
// 此时Children为单亲子女。两者语义不同，调用方需要区分。
type UnionGroup struct {
	Union    *model.Union    `json:"union"`
	Partner  *model.Member   `json:"partner"`
	Children []*model.Member `json:"children"`
}

// Snapshot 以某个成员为焦点的一跳关系快照。
// 所有子记录都是完整记录，消费方不需要二次查询。
type Snapshot struct {
	Person            *model.Member   `json:"person"`
	Father            *model.Member   `json:"father"`
	Mother            *model.Member   `json:"mother"`
	Siblings          []*model.Member `json:"siblings"`
	ParentUnion       *model.Union    `json:"parentUnion"`
	MotherOtherUnions []*UnionGroup   `json:"motherOtherUnions"`
	FatherOtherUnions []*UnionGroup   `json:"fatherOtherUnions"`
	OwnUnions         []*UnionGroup   `json:"ownUnions"`
}
