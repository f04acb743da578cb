package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// 上传限制
const (
	MaxPhotoSize = 5 << 20 // 照片最大5MB
)

// 允许的照片扩展名
var allowedPhotoExts = []string{"jpg", "jpeg", "png", "gif", "webp"}

// UploadService 文件上传服务
type UploadService struct {
	uploadDir string
	logger    *Logger
}

// NewUploadService 创建上传服务实例
func NewUploadService(uploadDir string, logger *Logger) (*UploadService, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %v", err)
	}
	return &UploadService{uploadDir: uploadDir, logger: logger}, nil
}

// UploadPhoto 上传成员照片，校验类型和大小后以唯一文件名落盘
func (s *UploadService) UploadPhoto(file *multipart.FileHeader) (string, error) {
	v := NewValidator()
	v.FileType(file.Filename, "photo", allowedPhotoExts).
		FileSize(file.Size, "photo", MaxPhotoSize)
	if err := v.Validate(); err != nil {
		return "", NewError(ErrValidation, err.Error(), nil)
	}

	// 生成唯一文件名
	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return "", NewError(ErrUploadFailed, "failed to create file", err)
	}
	defer dst.Close()

	src, err := file.Open()
	if err != nil {
		return "", NewError(ErrUploadFailed, "failed to open file", err)
	}
	defer src.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", NewError(ErrUploadFailed, "failed to copy file", err)
	}

	s.logger.Info("uploaded photo %s", filename)
	return s.GetFileURL(filename), nil
}

// DeleteFile 删除文件
func (s *UploadService) DeleteFile(url string) error {
	filename := filepath.Base(url)
	return os.Remove(filepath.Join(s.uploadDir, filename))
}

// GetFileURL 获取文件公开URL
func (s *UploadService) GetFileURL(filename string) string {
	return fmt.Sprintf("/uploads/%s", filename)
}
