package model

import (
	"time"

	"gorm.io/gorm"
)

// Member 家族成员模型
type Member struct {
	gorm.Model
	FirstName  string     `gorm:"size:100;not null" json:"first_name"`
	LastName   string     `gorm:"size:100;not null" json:"last_name"`
	Gender     string     `gorm:"size:10" json:"gender"` // male/female/other，空表示未知
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	DeathDate  *time.Time `json:"death_date,omitempty"`
	BirthPlace string     `gorm:"size:200" json:"birth_place"`
	PhotoURL   string     `gorm:"size:500" json:"photo_url"`
	Bio        string     `gorm:"type:text" json:"bio"`

	// 关系字段
	FatherID *uint   `json:"father_id"`
	Father   *Member `gorm:"foreignKey:FatherID" json:"father,omitempty"`
	MotherID *uint   `json:"mother_id"`
	Mother   *Member `gorm:"foreignKey:MotherID" json:"mother,omitempty"`
}

// IsDeceased 是否已故
func (m *Member) IsDeceased() bool {
	return m.DeathDate != nil
}

// 联姻类型
const (
	UnionTypeCouple   = "couple"   // 非正式伴侣
	UnionTypeMarriage = "marriage" // 正式婚姻
)

// Union 联姻模型，连接两个家族成员（无序对）
type Union struct {
	gorm.Model
	Member1ID      uint       `gorm:"not null;index" json:"member1_id"`
	Member1        *Member    `gorm:"foreignKey:Member1ID" json:"member1,omitempty"`
	Member2ID      uint       `gorm:"not null;index" json:"member2_id"`
	Member2        *Member    `gorm:"foreignKey:Member2ID" json:"member2,omitempty"`
	UnionType      string     `gorm:"size:20;not null;default:'couple'" json:"union_type"`
	UnionDate      *time.Time `json:"union_date,omitempty"`
	SeparationDate *time.Time `json:"separation_date,omitempty"`
}

// IsSeparated 联姻是否已结束
func (u *Union) IsSeparated() bool {
	return u.SeparationDate != nil
}

// OtherMember 返回联姻中另一方的ID
func (u *Union) OtherMember(memberID uint) uint {
	if u.Member1ID == memberID {
		return u.Member2ID
	}
	return u.Member1ID
}

// Involves 判断成员是否参与该联姻
func (u *Union) Involves(memberID uint) bool {
	return u.Member1ID == memberID || u.Member2ID == memberID
}
