package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree_go/internal/model"
	"familytree_go/internal/service"
)

func TestExpandIdempotent(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	father := addMember(t, db, "Pierre", nil, nil)
	mother := addMember(t, db, "Marie", nil, nil)
	child := addMember(t, db, "Luc", &father.ID, &mother.ID)

	first, err := session.Expand(ctx, child.ID, Origin)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Persons)

	posBefore := session.Persons()
	second, err := session.Expand(ctx, child.ID, Vec3{X: 50})
	require.NoError(t, err)
	assert.Empty(t, second.Persons)
	assert.Empty(t, second.Unions)
	assert.Empty(t, second.Edges)

	// 已跟踪的位置保持不变
	posAfter := session.Persons()
	require.Equal(t, len(posBefore), len(posAfter))
	for i := range posBefore {
		assert.Equal(t, posBefore[i].Pos, posAfter[i].Pos)
	}
}

func TestExpandPlacesParentsAndUnion(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	father := addMember(t, db, "Pierre", nil, nil)
	mother := addMember(t, db, "Marie", nil, nil)
	addUnion(t, db, father.ID, mother.ID, model.UnionTypeMarriage)
	child := addMember(t, db, "Luc", &father.ID, &mother.ID)

	delta, err := session.Expand(ctx, child.ID, Origin)
	require.NoError(t, err)

	assert.Len(t, delta.Persons, 3)
	require.Len(t, delta.Unions, 1)
	// 联姻节点位于父母中点，下沉半代
	assert.InDelta(t, 0, delta.Unions[0].Pos.X, 0.01)
	assert.InDelta(t, unionDrop, delta.Unions[0].Pos.Y, 0.01)
	// 父→联姻、母→联姻、联姻→锚点
	assert.Len(t, delta.Edges, 3)
}

func TestExpandSingleParentDirectEdge(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	mother := addMember(t, db, "Marie", nil, nil)
	child := addMember(t, db, "Luc", nil, &mother.ID)

	delta, err := session.Expand(ctx, child.ID, Origin)
	require.NoError(t, err)

	assert.Len(t, delta.Persons, 2)
	assert.Empty(t, delta.Unions)
	require.Len(t, delta.Edges, 1)
	assert.Equal(t, fmt.Sprintf("e-p-%d-%d", mother.ID, child.ID), delta.Edges[0].ID)
}

func TestCollisionInvariant(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	// 三代小型家系：祖父母、父母、同胞、配偶、子女
	gf := addMember(t, db, "Henri", nil, nil)
	gm := addMember(t, db, "Louise", nil, nil)
	father := addMember(t, db, "Pierre", &gf.ID, &gm.ID)
	mother := addMember(t, db, "Marie", nil, nil)
	addUnion(t, db, father.ID, mother.ID, model.UnionTypeMarriage)
	focal := addMember(t, db, "Luc", &father.ID, &mother.ID)
	addMember(t, db, "Jeanne", &father.ID, &mother.ID)
	spouse := addMember(t, db, "Eva", nil, nil)
	addUnion(t, db, focal.ID, spouse.ID, model.UnionTypeCouple)
	addMember(t, db, "Kim", &focal.ID, &spouse.ID)

	_, err := session.Expand(ctx, focal.ID, Origin)
	require.NoError(t, err)
	_, err = session.Expand(ctx, father.ID, Vec3{X: -parentOffsetX, Y: generationY})
	require.NoError(t, err)
	_, err = session.Expand(ctx, spouse.ID, Vec3{X: partnerRadius})
	require.NoError(t, err)

	persons := session.Persons()
	for i := 0; i < len(persons); i++ {
		for j := i + 1; j < len(persons); j++ {
			a, b := persons[i].Pos, persons[j].Pos
			dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
			distSq := dx*dx + dy*dy + dz*dz
			assert.GreaterOrEqual(t, distSq, minSeparationSq-1e-9,
				"members %d and %d are closer than the minimum separation", persons[i].ID, persons[j].ID)
		}
	}
}

func TestSiblingEdgeDeduplicatedAcrossExpansions(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	father := addMember(t, db, "Pierre", nil, nil)
	mother := addMember(t, db, "Marie", nil, nil)
	addUnion(t, db, father.ID, mother.ID, model.UnionTypeMarriage)
	x := addMember(t, db, "Luc", &father.ID, &mother.ID)
	y := addMember(t, db, "Jeanne", &father.ID, &mother.ID)

	_, err := session.Expand(ctx, x.ID, Origin)
	require.NoError(t, err)
	yPos := session.Persons()
	_, err = session.Expand(ctx, y.ID, findPos(yPos, y.ID))
	require.NoError(t, err)

	// 联姻节点到Y的边恰好一条，与展开顺序无关
	count := 0
	for _, e := range session.Edges() {
		if e.ID == fmt.Sprintf("e-c-u-%d-%d", unionIDOf(t, session), y.ID) {
			count++
		}
	}
	assert.Equal(t, 1, count)
	// 节点也没有重复
	assert.Len(t, session.Unions(), 1)
	assert.Len(t, session.Persons(), 4)
}

func TestSpouseExpansionReusesUnion(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	p := addMember(t, db, "Luc", nil, nil)
	s := addMember(t, db, "Eva", nil, nil)
	addUnion(t, db, p.ID, s.ID, model.UnionTypeMarriage)
	addMember(t, db, "Kim", &p.ID, &s.ID)

	_, err := session.Expand(ctx, p.ID, Origin)
	require.NoError(t, err)
	require.Len(t, session.Unions(), 1)
	pPos := findPos(session.Persons(), p.ID)

	// 第二次展开配偶：P的位置不变，联姻节点不重复
	delta, err := session.Expand(ctx, s.ID, findPos(session.Persons(), s.ID))
	require.NoError(t, err)
	assert.Empty(t, delta.Persons)
	assert.Empty(t, delta.Unions)
	assert.Len(t, session.Unions(), 1)
	assert.Equal(t, pPos, findPos(session.Persons(), p.ID))
}

func TestHalfSiblingPlacement(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	m := addMember(t, db, "Marie", nil, nil)
	f1 := addMember(t, db, "Pierre", nil, nil)
	f2 := addMember(t, db, "Jean", nil, nil)
	addUnion(t, db, m.ID, f2.ID, model.UnionTypeCouple)
	b := addMember(t, db, "Bruno", &f1.ID, &m.ID)
	c := addMember(t, db, "Claire", &f2.ID, &m.ID)

	delta, err := session.Expand(ctx, b.ID, Origin)
	require.NoError(t, err)

	// B、父母、F2、C全部就位；两个联姻节点（父母合成连接+母亲的另一段联姻）
	assert.Len(t, delta.Persons, 5)
	assert.Len(t, delta.Unions, 2)

	// 焦点与半同胞之间有虚线边
	var dashed int
	for _, e := range session.Edges() {
		if e.Dashed {
			dashed++
			assert.Equal(t, halfSiblingEdgeKey(b.ID, c.ID), e.ID)
		}
	}
	assert.Equal(t, 1, dashed)
}

func TestUnknownPartnerChildrenDirectEdges(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	m := addMember(t, db, "Marie", nil, nil)
	f := addMember(t, db, "Pierre", nil, nil)
	b := addMember(t, db, "Bruno", &f.ID, &m.ID)
	c := addMember(t, db, "Claire", nil, &m.ID)

	delta, err := session.Expand(ctx, b.ID, Origin)
	require.NoError(t, err)

	// 父未知的子女直接挂在母亲下，不新建联姻节点
	assert.Len(t, delta.Persons, 4)
	require.Len(t, delta.Unions, 1) // 仅父母之间的合成连接节点

	var direct bool
	for _, e := range session.Edges() {
		if e.ID == parentEdgeKey(m.ID, c.ID) {
			direct = true
		}
	}
	assert.True(t, direct)
}

func TestResetDiscardsState(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	p := addMember(t, db, "Luc", nil, nil)
	_, err := session.Expand(ctx, p.ID, Vec3{X: 42})
	require.NoError(t, err)
	require.Len(t, session.Persons(), 1)

	session.Reset()
	assert.Empty(t, session.Persons())
	assert.Empty(t, session.Unions())
	assert.Empty(t, session.Edges())

	// 重置后Select从原点重新展开
	delta, err := session.Select(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, delta.Persons, 1)
	assert.Equal(t, Origin, delta.Persons[0].Pos)
}

func TestOwnUnionChildrenGenerations(t *testing.T) {
	resolver, db := newTestResolver(t)
	session := NewLayoutSession(resolver, service.NewDefaultLogger())
	ctx := context.Background()

	p := addMember(t, db, "Luc", nil, nil)
	s := addMember(t, db, "Eva", nil, nil)
	addUnion(t, db, p.ID, s.ID, model.UnionTypeMarriage)
	k := addMember(t, db, "Kim", &p.ID, &s.ID)

	delta, err := session.Expand(ctx, p.ID, Origin)
	require.NoError(t, err)

	require.Len(t, delta.Unions, 1)
	uPos := delta.Unions[0].Pos
	assert.InDelta(t, -unionDrop, uPos.Y, 0.01)

	kPos := findPos(session.Persons(), k.ID)
	assert.InDelta(t, uPos.Y-generationY, kPos.Y, 0.01)
}

// findPos 返回成员节点的当前位置
func findPos(persons []*PersonNode, id uint) Vec3 {
	for _, p := range persons {
		if p.ID == id {
			return p.Pos
		}
	}
	return Vec3{}
}

// unionIDOf 返回会话中唯一联姻节点的记录ID
func unionIDOf(t *testing.T, s *LayoutSession) uint {
	t.Helper()
	unions := s.Unions()
	if len(unions) != 1 || unions[0].Union == nil {
		t.Fatalf("expected exactly one recorded union node, got %d", len(unions))
	}
	return unions[0].Union.ID
}
