package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
	"familytree_go/internal/service"
)

func setupDB(t *testing.T) *repository.DB {
	t.Helper()
	db, err := repository.InitDB(repository.DriverSQLite, ":memory:")
	require.NoError(t, err)
	return db
}

func newTestResolver(t *testing.T) (*Resolver, *repository.DB) {
	t.Helper()
	db := setupDB(t)
	return NewResolver(db, service.NewDefaultLogger()), db
}

func addMember(t *testing.T, db *repository.DB, first string, father, mother *uint) *model.Member {
	t.Helper()
	m := &model.Member{
		FirstName: first,
		LastName:  "Durand",
		FatherID:  father,
		MotherID:  mother,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func addUnion(t *testing.T, db *repository.DB, a, b uint, unionType string) *model.Union {
	t.Helper()
	u := &model.Union{
		Member1ID: a,
		Member2ID: b,
		UnionType: unionType,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestResolveNotFound(t *testing.T) {
	resolver, _ := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, service.IsCode(err, service.ErrMemberNotFound))
}

func TestResolveParents(t *testing.T) {
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	father := addMember(t, db, "Pierre", nil, nil)
	mother := addMember(t, db, "Marie", nil, nil)
	child := addMember(t, db, "Luc", &father.ID, &mother.ID)

	snap, err := resolver.Resolve(ctx, child.ID)
	require.NoError(t, err)

	require.NotNil(t, snap.Father)
	require.NotNil(t, snap.Mother)
	assert.Equal(t, father.ID, snap.Father.ID)
	assert.Equal(t, father.FirstName, snap.Father.FirstName)
	assert.Equal(t, mother.ID, snap.Mother.ID)
	assert.Nil(t, snap.ParentUnion)
}

func TestResolveParentUnionOrderIndependent(t *testing.T) {
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	father := addMember(t, db, "Pierre", nil, nil)
	mother := addMember(t, db, "Marie", nil, nil)
	// 联姻记录的成员槽位顺序与父母字段相反
	union := addUnion(t, db, mother.ID, father.ID, model.UnionTypeMarriage)
	child := addMember(t, db, "Luc", &father.ID, &mother.ID)

	snap, err := resolver.Resolve(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.ParentUnion)
	assert.Equal(t, union.ID, snap.ParentUnion.ID)
}

func TestResolveFullSiblingSymmetry(t *testing.T) {
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	father := addMember(t, db, "Pierre", nil, nil)
	mother := addMember(t, db, "Marie", nil, nil)
	a := addMember(t, db, "Luc", &father.ID, &mother.ID)
	b := addMember(t, db, "Jeanne", &father.ID, &mother.ID)

	snapA, err := resolver.Resolve(ctx, a.ID)
	require.NoError(t, err)
	snapB, err := resolver.Resolve(ctx, b.ID)
	require.NoError(t, err)

	require.Len(t, snapA.Siblings, 1)
	require.Len(t, snapB.Siblings, 1)
	assert.Equal(t, b.ID, snapA.Siblings[0].ID)
	assert.Equal(t, a.ID, snapB.Siblings[0].ID)
}

func TestResolveSingleParentChildrenAreFullSiblings(t *testing.T) {
	// A无父母，B、C的母亲都是A、父亲都未知：
	// B和C互为全同胞，motherOtherUnions为空
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	a := addMember(t, db, "Anne", nil, nil)
	b := addMember(t, db, "Bruno", nil, &a.ID)
	c := addMember(t, db, "Claire", nil, &a.ID)

	snap, err := resolver.Resolve(ctx, b.ID)
	require.NoError(t, err)

	require.Len(t, snap.Siblings, 1)
	assert.Equal(t, c.ID, snap.Siblings[0].ID)
	assert.Empty(t, snap.MotherOtherUnions)
	assert.Nil(t, snap.Father)
}

func TestResolveHalfSiblingsViaOtherFather(t *testing.T) {
	// 母亲M与F1育有B，与F2育有C：
	// resolve(B)无全同胞，motherOtherUnions有一条F2的记录，子女为[C]
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	m := addMember(t, db, "Marie", nil, nil)
	f1 := addMember(t, db, "Pierre", nil, nil)
	f2 := addMember(t, db, "Jean", nil, nil)
	b := addMember(t, db, "Bruno", &f1.ID, &m.ID)
	c := addMember(t, db, "Claire", &f2.ID, &m.ID)

	snap, err := resolver.Resolve(ctx, b.ID)
	require.NoError(t, err)

	assert.Empty(t, snap.Siblings)
	require.Len(t, snap.MotherOtherUnions, 1)
	group := snap.MotherOtherUnions[0]
	require.NotNil(t, group.Partner)
	assert.Equal(t, f2.ID, group.Partner.ID)
	assert.Nil(t, group.Union)
	require.Len(t, group.Children, 1)
	assert.Equal(t, c.ID, group.Children[0].ID)
}

func TestResolveUnknownCoParentGroup(t *testing.T) {
	// 母亲M与F育有B，另有单亲子女C（父未知）：
	// resolve(B)的motherOtherUnions有一条Partner/Union为nil的记录
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	m := addMember(t, db, "Marie", nil, nil)
	f := addMember(t, db, "Pierre", nil, nil)
	b := addMember(t, db, "Bruno", &f.ID, &m.ID)
	c := addMember(t, db, "Claire", nil, &m.ID)

	snap, err := resolver.Resolve(ctx, b.ID)
	require.NoError(t, err)

	assert.Empty(t, snap.Siblings)
	require.Len(t, snap.MotherOtherUnions, 1)
	group := snap.MotherOtherUnions[0]
	assert.Nil(t, group.Partner)
	assert.Nil(t, group.Union)
	require.Len(t, group.Children, 1)
	assert.Equal(t, c.ID, group.Children[0].ID)
}

func TestResolveFatherOtherUnions(t *testing.T) {
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	f := addMember(t, db, "Pierre", nil, nil)
	m1 := addMember(t, db, "Marie", nil, nil)
	m2 := addMember(t, db, "Sophie", nil, nil)
	u := addUnion(t, db, f.ID, m2.ID, model.UnionTypeCouple)
	b := addMember(t, db, "Bruno", &f.ID, &m1.ID)
	c := addMember(t, db, "Claire", &f.ID, &m2.ID)

	snap, err := resolver.Resolve(ctx, b.ID)
	require.NoError(t, err)

	require.Len(t, snap.FatherOtherUnions, 1)
	group := snap.FatherOtherUnions[0]
	require.NotNil(t, group.Partner)
	assert.Equal(t, m2.ID, group.Partner.ID)
	require.NotNil(t, group.Union)
	assert.Equal(t, u.ID, group.Union.ID)
	require.Len(t, group.Children, 1)
	assert.Equal(t, c.ID, group.Children[0].ID)
}

func TestResolveOwnUnions(t *testing.T) {
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	p := addMember(t, db, "Luc", nil, nil)
	s := addMember(t, db, "Eva", nil, nil)
	u := addUnion(t, db, s.ID, p.ID, model.UnionTypeMarriage)
	// 子女的父母槽位与联姻槽位顺序无关
	k := addMember(t, db, "Kim", &p.ID, &s.ID)

	snap, err := resolver.Resolve(ctx, p.ID)
	require.NoError(t, err)

	require.Len(t, snap.OwnUnions, 1)
	group := snap.OwnUnions[0]
	assert.Equal(t, u.ID, group.Union.ID)
	require.NotNil(t, group.Partner)
	assert.Equal(t, s.ID, group.Partner.ID)
	require.Len(t, group.Children, 1)
	assert.Equal(t, k.ID, group.Children[0].ID)
}

func TestResolveDanglingParentReference(t *testing.T) {
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	f := addMember(t, db, "Pierre", nil, nil)
	b := addMember(t, db, "Bruno", &f.ID, nil)
	// 绕过删除清理，制造悬挂引用
	require.NoError(t, db.Unscoped().Delete(&model.Member{}, f.ID).Error)

	snap, err := resolver.Resolve(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, snap.Father)
	assert.Empty(t, snap.FatherOtherUnions)
}

func TestResolveEmptySlicesNotNil(t *testing.T) {
	resolver, db := newTestResolver(t)
	ctx := context.Background()

	p := addMember(t, db, "Luc", nil, nil)
	snap, err := resolver.Resolve(ctx, p.ID)
	require.NoError(t, err)

	assert.NotNil(t, snap.Siblings)
	assert.NotNil(t, snap.MotherOtherUnions)
	assert.NotNil(t, snap.FatherOtherUnions)
	assert.NotNil(t, snap.OwnUnions)
	assert.Empty(t, snap.Siblings)
}
