package graph

import (
	"context"
	"fmt"
	"math"
	"sync"

	"familytree_go/internal/model"
	"familytree_go/internal/service"
)

// 布局常量。单位为渲染空间坐标，渲染端不做二次缩放。
const (
	// MinSeparation 任意两个节点之间的最小间距
	MinSeparation   = 7.0
	minSeparationSq = MinSeparation * MinSeparation

	maxRings            = 16 // 避碰环搜索的最大环数
	maxParentShiftSteps = 24 // 父母横移搜索的最大步数

	parentOffsetX = 7.0 // 父母相对锚点的横向偏移
	generationY   = 9.0 // 一代人的纵向高度
	unionDrop     = 4.5 // 联姻节点相对上一代的下沉量

	siblingOffsetX = 9.0  // 同胞列相对锚点的横向偏移
	siblingPitch   = 8.0  // 同胞/子女在深度轴上的间距
	partnerRadius  = 13.0 // 配偶弧线半径

	extraPartnerPitchX = 14.0 // 额外伴侣的横向间距
	extraPartnerPitchZ = 8.0  // 额外伴侣的深度间距
)

// Vec3 三维坐标。2D渲染端忽略Z即可。
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Origin 画布原点，切换焦点成员后的初始锚点
var Origin = Vec3{}

// PersonNode 已定位的成员节点
type PersonNode struct {
	ID       uint          `json:"id"`
	Member   *model.Member `json:"member"`
	Pos      Vec3          `json:"pos"`
	Expanded bool          `json:"expanded"`
}

// UnionNode 已定位的联姻节点。Union为nil表示父母已知但没有登记联姻，
// 此时ID为由父母对派生的合成键。
type UnionNode struct {
	ID    string       `json:"id"`
	Union *model.Union `json:"union"`
	Pos   Vec3         `json:"pos"`
}

// Edge 连接边。ID由端点标识和关系类别派生，保证幂等插入。
// Dashed表示半同胞之间的虚线关联。
type Edge struct {
	ID     string `json:"id"`
	From   Vec3   `json:"from"`
	To     Vec3   `json:"to"`
	Dashed bool   `json:"dashed"`
}

// Delta 一次展开新增的节点和边，调用方追加到已有集合而非替换
type Delta struct {
	Persons []*PersonNode `json:"persons"`
	Unions  []*UnionNode  `json:"unions"`
	Edges   []*Edge       `json:"edges"`
}

// LayoutSession 树视图布局会话。
// 持有一次浏览会话内跨多次展开累积的全部节点、边和占位状态；
// 每个会话独立实例化，互不干扰。所有展开都经过去重：
// 已定位的标识不会重复放置，已展开的成员再次展开是空操作。
type LayoutSession struct {
	resolver *Resolver
	logger   *service.Logger

	mu         sync.Mutex
	generation uint64

	expanded  map[uint]bool
	personPos map[uint]Vec3
	unionPos  map[string]Vec3
	edgeKeys  map[string]bool
	occupied  []Vec3

	persons     []*PersonNode
	personIndex map[uint]*PersonNode
	unions      []*UnionNode
	edges       []*Edge
}

// NewLayoutSession 创建布局会话实例
func NewLayoutSession(resolver *Resolver, logger *service.Logger) *LayoutSession {
	s := &LayoutSession{
		resolver: resolver,
		logger:   logger,
	}
	s.resetLocked()
	return s
}

// Reset 丢弃全部累积状态并递增代数。
// 递增代数使仍在途的展开结果在返回时被识别为过期并丢弃。
func (s *LayoutSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.resetLocked()
}

func (s *LayoutSession) resetLocked() {
	s.expanded = make(map[uint]bool)
	s.personPos = make(map[uint]Vec3)
	s.unionPos = make(map[string]Vec3)
	s.edgeKeys = make(map[string]bool)
	s.occupied = nil
	s.persons = nil
	s.personIndex = make(map[uint]*PersonNode)
	s.unions = nil
	s.edges = nil
}

// Select 切换焦点成员：重置会话并从原点展开
func (s *LayoutSession) Select(ctx context.Context, personID uint) (*Delta, error) {
	s.Reset()
	return s.Expand(ctx, personID, Origin)
}

// Persons 返回累积的成员节点集合
func (s *LayoutSession) Persons() []*PersonNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*PersonNode, len(s.persons))
	copy(out, s.persons)
	return out
}

// Unions 返回累积的联姻节点集合
func (s *LayoutSession) Unions() []*UnionNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*UnionNode, len(s.unions))
	copy(out, s.unions)
	return out
}

// Edges 返回累积的边集合
func (s *LayoutSession) Edges() []*Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Expand 展开焦点成员：解析其关系快照并合并进会话图状态。
// 对同一成员重复调用是空操作。存储查询全部完成后才开始修改图状态，
// 外部观察不到部分合并的中间态；期间若发生Reset，结果按过期丢弃。
func (s *LayoutSession) Expand(ctx context.Context, personID uint, anchor Vec3) (*Delta, error) {
	s.mu.Lock()
	if s.expanded[personID] {
		s.mu.Unlock()
		return &Delta{}, nil
	}
	gen := s.generation
	s.mu.Unlock()

	snap, err := s.resolver.Resolve(ctx, personID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding stale expansion of member %d (generation %d != %d)", personID, gen, s.generation)
		return &Delta{}, nil
	}
	if s.expanded[personID] {
		return &Delta{}, nil
	}
	s.expanded[personID] = true

	return s.merge(snap, anchor), nil
}

// merge 将一份快照合并进图状态，返回新增增量。调用方必须持有锁。
func (s *LayoutSession) merge(snap *Snapshot, anchor Vec3) *Delta {
	delta := &Delta{}
	personID := snap.Person.ID

	addPerson := func(m *model.Member, desired Vec3) Vec3 {
		if pos, ok := s.personPos[m.ID]; ok {
			return pos
		}
		actual := s.findFreePos(desired)
		s.personPos[m.ID] = actual
		s.occupied = append(s.occupied, actual)
		node := &PersonNode{ID: m.ID, Member: m, Pos: actual}
		s.persons = append(s.persons, node)
		s.personIndex[m.ID] = node
		delta.Persons = append(delta.Persons, node)
		return actual
	}

	addUnion := func(id string, u *model.Union, desired Vec3) Vec3 {
		if pos, ok := s.unionPos[id]; ok {
			return pos
		}
		s.unionPos[id] = desired
		node := &UnionNode{ID: id, Union: u, Pos: desired}
		s.unions = append(s.unions, node)
		delta.Unions = append(delta.Unions, node)
		return desired
	}

	addEdge := func(id string, from, to Vec3, dashed bool) {
		if s.edgeKeys[id] {
			return
		}
		s.edgeKeys[id] = true
		edge := &Edge{ID: id, From: from, To: to, Dashed: dashed}
		s.edges = append(s.edges, edge)
		delta.Edges = append(delta.Edges, edge)
	}

	// 锚点：已定位则沿用原位置，否则在期望位置避碰放置
	selfPos := addPerson(snap.Person, anchor)
	s.personIndex[personID].Expanded = true

	// 父母：围绕锚点对称放置在上一代。两者都是新节点时，
	// 沿深度轴左右交替搜索一个让双方同时无冲突的横移量。
	fatherNew := snap.Father != nil && !s.placed(snap.Father.ID)
	motherNew := snap.Mother != nil && !s.placed(snap.Mother.ID)

	zShift := 0.0
	if fatherNew || motherNew {
		for i := 0; i <= maxParentShiftSteps; i++ {
			z := 0.0
			if i > 0 {
				z = math.Ceil(float64(i)/2) * MinSeparation
				if i%2 == 0 {
					z = -z
				}
			}
			fatherOK := !fatherNew || !s.conflicts(Vec3{selfPos.X - parentOffsetX, selfPos.Y + generationY, selfPos.Z + z})
			motherOK := !motherNew || !s.conflicts(Vec3{selfPos.X + parentOffsetX, selfPos.Y + generationY, selfPos.Z + z})
			if fatherOK && motherOK {
				zShift = z
				break
			}
		}
	}

	var fatherPos, motherPos *Vec3
	if snap.Father != nil {
		p := addPerson(snap.Father, Vec3{selfPos.X - parentOffsetX, selfPos.Y + generationY, selfPos.Z + zShift})
		fatherPos = &p
	}
	if snap.Mother != nil {
		p := addPerson(snap.Mother, Vec3{selfPos.X + parentOffsetX, selfPos.Y + generationY, selfPos.Z + zShift})
		motherPos = &p
	}

	// 父母联姻节点：双亲都在位时放在两人横向/深度中点。
	// 没有登记联姻时用父母对的合成键，仍然给出连接节点。
	var parentUnionPos *Vec3
	if fatherPos != nil && motherPos != nil {
		key := unionKey(snap.ParentUnion, snap.Father.ID, snap.Mother.ID)
		mid := Vec3{(fatherPos.X + motherPos.X) / 2, selfPos.Y + unionDrop, (fatherPos.Z + motherPos.Z) / 2}
		p := addUnion(key, snap.ParentUnion, mid)
		parentUnionPos = &p
		addEdge(spouseEdgeKey(snap.Father.ID, key), *fatherPos, p, false)
		addEdge(spouseEdgeKey(snap.Mother.ID, key), *motherPos, p, false)
		addEdge(childEdgeKey(key, personID), p, selfPos, false)
	} else if fatherPos != nil {
		addEdge(parentEdgeKey(snap.Father.ID, personID), *fatherPos, selfPos, false)
	} else if motherPos != nil {
		addEdge(parentEdgeKey(snap.Mother.ID, personID), *motherPos, selfPos, false)
	}

	// 全同胞：沿深度轴在锚点两侧交替放置，距离递增
	for i, sib := range snap.Siblings {
		desired := Vec3{
			selfPos.X - siblingOffsetX,
			selfPos.Y,
			selfPos.Z + alternate(i)*siblingPitch,
		}
		sibPos := addPerson(sib, desired)
		if parentUnionPos != nil {
			key := unionKey(snap.ParentUnion, snap.Father.ID, snap.Mother.ID)
			addEdge(childEdgeKey(key, sib.ID), *parentUnionPos, sibPos, false)
		} else {
			addEdge(siblingEdgeKey(personID, sib.ID), selfPos, sibPos, false)
		}
	}

	// 父母各自的其他伴侣关系及半同胞
	if motherPos != nil {
		s.mergeOtherUnions(delta, snap.MotherOtherUnions, snap.Mother, *motherPos, selfPos, personID, +1, addPerson, addUnion, addEdge)
	}
	if fatherPos != nil {
		s.mergeOtherUnions(delta, snap.FatherOtherUnions, snap.Father, *fatherPos, selfPos, personID, -1, addPerson, addUnion, addEdge)
	}

	// 焦点成员自己的联姻：新联姻的配偶沿弧线分布在锚点同代，
	// 联姻节点下沉半代，子女再下沉一代。
	var newOwn []*UnionGroup
	for _, g := range snap.OwnUnions {
		if g.Partner == nil {
			s.logger.Warn("skipping union %d of member %d: partner record missing", g.Union.ID, personID)
			continue
		}
		if _, ok := s.unionPos[unionKey(g.Union, personID, g.Partner.ID)]; ok {
			continue
		}
		newOwn = append(newOwn, g)
	}

	n := len(newOwn)
	totalArc := 0.0
	if n > 1 {
		totalArc = math.Min(float64(n-1)*0.65, math.Pi*0.75)
	}
	for j, g := range newOwn {
		angle := 0.0
		if n > 1 {
			angle = -totalArc/2 + float64(j)*(totalArc/float64(n-1))
		}
		partnerPos := addPerson(g.Partner, Vec3{
			selfPos.X + partnerRadius*math.Cos(angle),
			selfPos.Y,
			selfPos.Z + partnerRadius*math.Sin(angle),
		})

		key := unionKey(g.Union, personID, g.Partner.ID)
		mid := Vec3{(selfPos.X + partnerPos.X) / 2, selfPos.Y - unionDrop, (selfPos.Z + partnerPos.Z) / 2}
		uPos := addUnion(key, g.Union, mid)
		addEdge(spouseEdgeKey(personID, key), selfPos, uPos, false)
		addEdge(spouseEdgeKey(g.Partner.ID, key), partnerPos, uPos, false)

		for ci, child := range g.Children {
			childPos := addPerson(child, Vec3{
				uPos.X,
				uPos.Y - generationY,
				uPos.Z + alternate(ci)*siblingPitch,
			})
			addEdge(childEdgeKey(key, child.ID), uPos, childPos, false)
		}
	}

	return delta
}

// mergeOtherUnions 合并某一侧父/母的其他伴侣分组。
// sign决定伴侣向哪一侧展开（母亲侧+1，父亲侧-1）。
// Partner为nil的分组是单亲子女：直接挂在已知父/母下，不生成联姻节点；
// Partner已知时在父/母与伴侣的中点生成联姻节点（与主联姻节点错开一层），
// 其子女放在联姻节点下一代，并与焦点成员之间补一条半同胞虚线。
func (s *LayoutSession) mergeOtherUnions(
	delta *Delta,
	groups []*UnionGroup,
	parent *model.Member,
	parentPos, selfPos Vec3,
	personID uint,
	sign float64,
	addPerson func(*model.Member, Vec3) Vec3,
	addUnion func(string, *model.Union, Vec3) Vec3,
	addEdge func(string, Vec3, Vec3, bool),
) {
	for idx, g := range groups {
		if g.Partner == nil {
			for ci, child := range g.Children {
				childPos := addPerson(child, Vec3{
					parentPos.X + sign*siblingOffsetX,
					parentPos.Y - generationY,
					parentPos.Z + alternate(ci)*siblingPitch,
				})
				addEdge(parentEdgeKey(parent.ID, child.ID), parentPos, childPos, false)
				addEdge(halfSiblingEdgeKey(personID, child.ID), selfPos, childPos, true)
			}
			continue
		}

		partnerPos := addPerson(g.Partner, Vec3{
			parentPos.X + sign*float64(idx+1)*extraPartnerPitchX,
			parentPos.Y,
			parentPos.Z + float64(idx+1)*extraPartnerPitchZ,
		})

		key := unionKey(g.Union, parent.ID, g.Partner.ID)
		mid := Vec3{(parentPos.X + partnerPos.X) / 2, parentPos.Y, (parentPos.Z + partnerPos.Z) / 2}
		uPos := addUnion(key, g.Union, mid)
		addEdge(spouseEdgeKey(parent.ID, key), parentPos, uPos, false)
		addEdge(spouseEdgeKey(g.Partner.ID, key), partnerPos, uPos, false)

		for ci, child := range g.Children {
			childPos := addPerson(child, Vec3{
				uPos.X,
				uPos.Y - generationY,
				uPos.Z + alternate(ci)*siblingPitch,
			})
			addEdge(childEdgeKey(key, child.ID), uPos, childPos, false)
			addEdge(halfSiblingEdgeKey(personID, child.ID), selfPos, childPos, true)
		}
	}
}

// placed 判断成员是否已定位。调用方必须持有锁。
func (s *LayoutSession) placed(id uint) bool {
	_, ok := s.personPos[id]
	return ok
}

// conflicts 判断位置是否与任何已占位置冲突（平方距离比较）
func (s *LayoutSession) conflicts(p Vec3) bool {
	for _, e := range s.occupied {
		dx, dy, dz := p.X-e.X, p.Y-e.Y, p.Z-e.Z
		if dx*dx+dy*dy+dz*dz < minSeparationSq {
			return true
		}
	}
	return false
}

// findFreePos 避碰搜索：期望位置冲突时在同一水平面上按
// 半径递增的圆环搜索空位，每环8·r个方向；搜索耗尽时接受重叠。
func (s *LayoutSession) findFreePos(desired Vec3) Vec3 {
	if !s.conflicts(desired) {
		return desired
	}
	for r := 1; r <= maxRings; r++ {
		n := r * 8
		for i := 0; i < n; i++ {
			angle := float64(i) / float64(n) * 2 * math.Pi
			candidate := Vec3{
				desired.X + float64(r)*MinSeparation*math.Cos(angle),
				desired.Y,
				desired.Z + float64(r)*MinSeparation*math.Sin(angle),
			}
			if !s.conflicts(candidate) {
				return candidate
			}
		}
	}
	s.logger.Warn("collision search exhausted near (%.1f, %.1f, %.1f), accepting overlap", desired.X, desired.Y, desired.Z)
	return desired
}

// alternate 交替偏移序列：0→+1，1→-1，2→+2，3→-2 …
func alternate(i int) float64 {
	d := math.Ceil(float64(i+1) / 2)
	if i%2 == 1 {
		return -d
	}
	return d
}

// unionKey 联姻节点键：有登记记录时用记录ID，
// 否则用成员对派生的合成键（与槽位顺序无关）。
func unionKey(u *model.Union, a, b uint) string {
	if u != nil {
		return fmt.Sprintf("u-%d", u.ID)
	}
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("pu-%d-%d", a, b)
}

// spouseEdgeKey 成员连向联姻节点的边键
func spouseEdgeKey(memberID uint, unionKey string) string {
	return fmt.Sprintf("e-s-%d-%s", memberID, unionKey)
}

// childEdgeKey 联姻节点连向子女的边键
func childEdgeKey(unionKey string, childID uint) string {
	return fmt.Sprintf("e-c-%s-%d", unionKey, childID)
}

// parentEdgeKey 单亲直连子女的边键
func parentEdgeKey(parentID, childID uint) string {
	return fmt.Sprintf("e-p-%d-%d", parentID, childID)
}

// siblingEdgeKey 无父母联姻节点时锚点与同胞之间的边键（无序对）
func siblingEdgeKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("e-sib-%d-%d", a, b)
}

// halfSiblingEdgeKey 半同胞虚线边键（无序对）
func halfSiblingEdgeKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("e-h-%d-%d", a, b)
}
