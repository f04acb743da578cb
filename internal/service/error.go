package service

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorCode 错误码类型
type ErrorCode int

const (
	// 系统级错误码 (1-999)
	ErrSystem ErrorCode = iota + 1
	ErrConfig
	ErrDatabase
	ErrValidation
	ErrAuthentication
	ErrAuthorization
	ErrNotFound
	ErrDuplicate
	ErrInvalidInput
	ErrInternal

	// 业务级错误码 (1000-9999)
	ErrUserNotFound ErrorCode = iota + 1000
	ErrUserExists
	ErrInvalidPassword
	ErrInvalidToken
	ErrMemberNotFound
	ErrUnionNotFound
	ErrInvalidUnion
	ErrInvalidParent
	ErrUploadFailed
)

// AppError 应用程序错误
type AppError struct {
	Code    ErrorCode              // 错误码
	Message string                 // 错误消息
	Err     error                  // 原始错误
	Stack   string                 // 堆栈信息
	Context map[string]interface{} // 上下文信息
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现errors.Unwrap接口
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建新的应用程序错误
func NewError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Stack:   getStack(),
		Context: make(map[string]interface{}),
	}
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// HTTPStatus 错误码对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrNotFound, ErrUserNotFound, ErrMemberNotFound, ErrUnionNotFound:
		return http.StatusNotFound
	case ErrValidation, ErrInvalidInput, ErrInvalidUnion, ErrInvalidParent:
		return http.StatusBadRequest
	case ErrAuthentication, ErrInvalidPassword, ErrInvalidToken:
		return http.StatusUnauthorized
	case ErrAuthorization:
		return http.StatusForbidden
	case ErrDuplicate, ErrUserExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf 提取应用程序错误码，非AppError返回ErrInternal
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode 判断错误是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// getStack 获取调用堆栈
func getStack() string {
	var sb strings.Builder
	for i := 2; i < 8; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", fn.Name(), file, line))
	}
	return sb.String()
}
