package service

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// Validator 数据验证服务
type Validator struct {
	errors []string
}

// NewValidator 创建验证器实例
func NewValidator() *Validator {
	return &Validator{
		errors: make([]string, 0),
	}
}

// Validate 执行验证并返回错误
func (v *Validator) Validate() error {
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(v.errors, "; "))
	}
	return nil
}

// Required 必填字段验证
func (v *Validator) Required(value string, fieldName string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors = append(v.errors, fmt.Sprintf("%s is required", fieldName))
	}
	return v
}

// MaxLength 最大长度验证
func (v *Validator) MaxLength(value string, fieldName string, max int) *Validator {
	if len(value) > max {
		v.errors = append(v.errors, fmt.Sprintf("%s must be at most %d characters", fieldName, max))
	}
	return v
}

// Email 邮箱格式验证
func (v *Validator) Email(value string, fieldName string) *Validator {
	emailRegex := regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	if !emailRegex.MatchString(strings.ToLower(value)) {
		v.errors = append(v.errors, fmt.Sprintf("%s must be a valid email address", fieldName))
	}
	return v
}

// Date 日期格式验证，空值跳过
func (v *Validator) Date(value string, fieldName string) *Validator {
	if value == "" {
		return v
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		v.errors = append(v.errors, fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", fieldName))
	}
	return v
}

// DateOrder 日期先后验证，任一为空时跳过
func (v *Validator) DateOrder(earlier, later string, fieldName string) *Validator {
	if earlier == "" || later == "" {
		return v
	}
	start, err1 := time.Parse(DateLayout, earlier)
	end, err2 := time.Parse(DateLayout, later)
	if err1 != nil || err2 != nil {
		return v
	}
	if end.Before(start) {
		v.errors = append(v.errors, fmt.Sprintf("%s dates are out of order", fieldName))
	}
	return v
}

// Gender 性别验证，空值表示未知，允许
func (v *Validator) Gender(value string, fieldName string) *Validator {
	if value == "" {
		return v
	}
	validGenders := map[string]bool{
		"male":   true,
		"female": true,
		"other":  true,
	}
	if !validGenders[value] {
		v.errors = append(v.errors, fmt.Sprintf("%s must be one of male, female, other", fieldName))
	}
	return v
}

// UnionType 联姻类型验证
func (v *Validator) UnionType(value string, fieldName string) *Validator {
	if value != "couple" && value != "marriage" {
		v.errors = append(v.errors, fmt.Sprintf("%s must be either 'couple' or 'marriage'", fieldName))
	}
	return v
}

// FileType 文件类型验证
func (v *Validator) FileType(filename string, fieldName string, allowedTypes []string) *Validator {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	allowed := false
	for _, t := range allowedTypes {
		if t == ext {
			allowed = true
			break
		}
	}

	if !allowed {
		v.errors = append(v.errors, fmt.Sprintf("%s must be one of the following types: %s",
			fieldName, strings.Join(allowedTypes, ", ")))
	}
	return v
}

// FileSize 文件大小验证
func (v *Validator) FileSize(size int64, fieldName string, maxSize int64) *Validator {
	if size > maxSize {
		v.errors = append(v.errors, fmt.Sprintf("%s must be smaller than %d bytes", fieldName, maxSize))
	}
	return v
}
