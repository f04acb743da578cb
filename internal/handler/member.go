package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
	"familytree_go/internal/service"
)

// 成员缓存有效期
const memberCacheTTL = 10 * time.Minute

// MemberInput 成员创建/更新请求
type MemberInput struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Gender     string `json:"gender"`
	BirthDate  string `json:"birth_date"`
	DeathDate  string `json:"death_date"`
	BirthPlace string `json:"birth_place"`
	PhotoURL   string `json:"photo_url"`
	Bio        string `json:"bio"`
	FatherID   *uint  `json:"father_id"`
	MotherID   *uint  `json:"mother_id"`
}

// validate 校验成员输入字段
func (in *MemberInput) validate() error {
	v := service.NewValidator()
	v.Required(in.FirstName, "first_name").
		MaxLength(in.FirstName, "first_name", 100).
		Required(in.LastName, "last_name").
		MaxLength(in.LastName, "last_name", 100).
		Gender(in.Gender, "gender").
		Date(in.BirthDate, "birth_date").
		Date(in.DeathDate, "death_date").
		DateOrder(in.BirthDate, in.DeathDate, "birth/death").
		MaxLength(in.BirthPlace, "birth_place", 200)
	return v.Validate()
}

// checkParents 校验父/母引用：必须指向已存在的成员且不能指向自己。
// selfID为0表示创建场景，不做自引用检查。
func (h *Handler) checkParents(c *gin.Context, in *MemberInput, selfID uint) error {
	for _, ref := range []struct {
		id   *uint
		name string
	}{
		{in.FatherID, "father_id"},
		{in.MotherID, "mother_id"},
	} {
		if ref.id == nil {
			continue
		}
		if selfID != 0 && *ref.id == selfID {
			return service.NewError(service.ErrInvalidParent, ref.name+" cannot reference the member itself", nil)
		}
		exists, err := h.db.MemberExists(c.Request.Context(), *ref.id)
		if err != nil {
			return service.NewError(service.ErrDatabase, "failed to check parent", err)
		}
		if !exists {
			return service.NewError(service.ErrInvalidParent, ref.name+" does not reference an existing member", nil)
		}
	}
	return nil
}

// ListMembers 获取成员列表，支持q/gender/deceased过滤
func (h *Handler) ListMembers(c *gin.Context) {
	query := &service.MemberSearchQuery{
		Query:  c.Query("q"),
		Gender: c.Query("gender"),
	}
	if d := c.Query("deceased"); d != "" {
		deceased := d == "true"
		query.Deceased = &deceased
	}

	members, err := h.search.Search(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// GetMember 根据ID获取成员，命中缓存时直接返回
func (h *Handler) GetMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var cached model.Member
	if err := h.cache.Get(c.Request.Context(), service.MemberKey(id), &cached); err == nil {
		c.JSON(http.StatusOK, &cached)
		return
	} else if err != service.ErrCacheMiss {
		h.logger.Warn("member cache read failed: %v", err)
	}

	member, err := h.db.GetMember(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	if err := h.cache.Set(c.Request.Context(), service.MemberKey(id), member, memberCacheTTL); err != nil {
		h.logger.Warn("member cache write failed: %v", err)
	}
	c.JSON(http.StatusOK, member)
}

// CreateMember 创建成员
func (h *Handler) CreateMember(c *gin.Context) {
	var input MemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := input.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.checkParents(c, &input, 0); err != nil {
		h.respondError(c, err)
		return
	}

	birthDate, _ := parseDate(input.BirthDate)
	deathDate, _ := parseDate(input.DeathDate)

	member := &model.Member{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Gender:     input.Gender,
		BirthDate:  birthDate,
		DeathDate:  deathDate,
		BirthPlace: input.BirthPlace,
		PhotoURL:   input.PhotoURL,
		Bio:        input.Bio,
		FatherID:   input.FatherID,
		MotherID:   input.MotherID,
	}
	if err := h.db.CreateMember(c.Request.Context(), member); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// UpdateMember 更新成员
func (h *Handler) UpdateMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	member, err := h.db.GetMember(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	var input MemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := input.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.checkParents(c, &input, id); err != nil {
		h.respondError(c, err)
		return
	}

	birthDate, _ := parseDate(input.BirthDate)
	deathDate, _ := parseDate(input.DeathDate)

	updates := map[string]interface{}{
		"first_name":  input.FirstName,
		"last_name":   input.LastName,
		"gender":      input.Gender,
		"birth_date":  birthDate,
		"death_date":  deathDate,
		"birth_place": input.BirthPlace,
		"photo_url":   input.PhotoURL,
		"bio":         input.Bio,
		"father_id":   input.FatherID,
		"mother_id":   input.MotherID,
	}
	if err := h.db.UpdateMember(c.Request.Context(), member, updates); err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateMember(c, id)
	c.JSON(http.StatusOK, member)
}

// DeleteMember 删除成员，依赖引用由存储层清理
func (h *Handler) DeleteMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.db.DeleteMember(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateMember(c, id)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// invalidateMember 清除成员缓存
func (h *Handler) invalidateMember(c *gin.Context, id uint) {
	if err := h.cache.Delete(c.Request.Context(), service.MemberKey(id)); err != nil {
		h.logger.Warn("member cache invalidation failed: %v", err)
	}
}
