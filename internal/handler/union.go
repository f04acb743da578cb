package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
	"familytree_go/internal/service"
)

// UnionInput 联姻创建/更新请求
type UnionInput struct {
	Member1ID      uint   `json:"member1_id"`
	Member2ID      uint   `json:"member2_id"`
	UnionType      string `json:"union_type"`
	UnionDate      string `json:"union_date"`
	SeparationDate string `json:"separation_date"`
}

// validateUnion 校验联姻输入：类型、日期及成员对
func (h *Handler) validateUnion(c *gin.Context, in *UnionInput) error {
	v := service.NewValidator()
	v.UnionType(in.UnionType, "union_type").
		Date(in.UnionDate, "union_date").
		Date(in.SeparationDate, "separation_date").
		DateOrder(in.UnionDate, in.SeparationDate, "union/separation")
	if err := v.Validate(); err != nil {
		return service.NewError(service.ErrValidation, err.Error(), nil)
	}

	if in.Member1ID == in.Member2ID {
		return service.NewError(service.ErrInvalidUnion, "a union requires two distinct members", nil)
	}
	for _, id := range []uint{in.Member1ID, in.Member2ID} {
		exists, err := h.db.MemberExists(c.Request.Context(), id)
		if err != nil {
			return service.NewError(service.ErrDatabase, "failed to check union member", err)
		}
		if !exists {
			return service.NewError(service.ErrInvalidUnion, "union member does not exist", nil)
		}
	}
	return nil
}

// ListUnions 获取联姻列表，支持member_id过滤
func (h *Handler) ListUnions(c *gin.Context) {
	if raw := c.Query("member_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "member_id must be a numeric id"})
			return
		}
		unions, err := h.db.UnionsInvolving(c.Request.Context(), uint(id))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, unions)
		return
	}

	unions, err := h.db.ListUnions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unions)
}

// CreateUnion 创建联姻
func (h *Handler) CreateUnion(c *gin.Context) {
	var input UnionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validateUnion(c, &input); err != nil {
		h.respondError(c, err)
		return
	}

	unionDate, _ := parseDate(input.UnionDate)
	separationDate, _ := parseDate(input.SeparationDate)

	union := &model.Union{
		Member1ID:      input.Member1ID,
		Member2ID:      input.Member2ID,
		UnionType:      input.UnionType,
		UnionDate:      unionDate,
		SeparationDate: separationDate,
	}
	if err := h.db.CreateUnion(c.Request.Context(), union); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, union)
}

// UpdateUnion 更新联姻
func (h *Handler) UpdateUnion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	union, err := h.db.GetUnion(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "union not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	var input UnionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validateUnion(c, &input); err != nil {
		h.respondError(c, err)
		return
	}

	unionDate, _ := parseDate(input.UnionDate)
	separationDate, _ := parseDate(input.SeparationDate)

	updates := map[string]interface{}{
		"member1_id":      input.Member1ID,
		"member2_id":      input.Member2ID,
		"union_type":      input.UnionType,
		"union_date":      unionDate,
		"separation_date": separationDate,
	}
	if err := h.db.UpdateUnion(c.Request.Context(), union, updates); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, union)
}

// DeleteUnion 删除联姻
func (h *Handler) DeleteUnion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteUnion(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
