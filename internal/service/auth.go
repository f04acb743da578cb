package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
)

// AuthConfig 认证配置
type AuthConfig struct {
	SecretKey     string        // JWT密钥
	TokenDuration time.Duration // Token有效期
}

// Claims JWT声明
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Auth 认证服务
type Auth struct {
	config *AuthConfig
	db     *repository.DB
	logger *Logger
}

// NewAuth 创建认证服务实例
func NewAuth(config *AuthConfig, db *repository.DB, logger *Logger) *Auth {
	if config.TokenDuration == 0 {
		config.TokenDuration = 24 * time.Hour
	}
	return &Auth{
		config: config,
		db:     db,
		logger: logger,
	}
}

// GenerateToken 生成JWT令牌
func (a *Auth) GenerateToken(user *model.User) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.SecretKey))
}

// ValidateToken 验证JWT令牌
func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil {
		return nil, NewError(ErrInvalidToken, "invalid token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, NewError(ErrInvalidToken, "invalid token claims", nil)
	}
	return claims, nil
}

// Register 用户注册。密码由User模型的BeforeSave钩子加密。
func (a *Auth) Register(ctx context.Context, username, email, password, fullName string) (*model.User, error) {
	var count int64
	if err := a.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, NewError(ErrDatabase, "failed to check existing user", err)
	}
	if count > 0 {
		return nil, NewError(ErrUserExists, "username or email already exists", nil)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     model.RoleUser,
	}
	if err := a.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, NewError(ErrDatabase, "failed to create user", err)
	}

	a.logger.Info("registered user %s", username)
	return user, nil
}

// Login 用户登录，校验通过后签发令牌
func (a *Auth) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	var user model.User
	err := a.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return "", nil, NewError(ErrInvalidPassword, "invalid username or password", nil)
	}

	if !user.CheckPassword(password) {
		return "", nil, NewError(ErrInvalidPassword, "invalid username or password", nil)
	}

	token, err := a.GenerateToken(&user)
	if err != nil {
		return "", nil, NewError(ErrInternal, "failed to generate token", err)
	}
	return token, &user, nil
}

// RefreshToken 刷新令牌
func (a *Auth) RefreshToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := a.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	var user model.User
	if err := a.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		return "", NewError(ErrUserNotFound, "user not found", err)
	}
	return a.GenerateToken(&user)
}
