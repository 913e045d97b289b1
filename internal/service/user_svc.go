package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"etsy_insights_v1/internal/api/dto"
	"etsy_insights_v1/internal/middleware"
	"etsy_insights_v1/internal/model"
	"etsy_insights_v1/internal/repository"
)

// 密码最短长度，低于此值按弱密码拒绝
const minPasswordLen = 6

// 重置令牌有效期
const resetTokenTTL = 24 * time.Hour

// ==================== ResetMailer 重置邮件发送 ====================

// ResetMailer 密码重置通知的外发接口
// 生产环境接邮件服务商；默认实现只写日志
type ResetMailer interface {
	SendResetToken(ctx context.Context, email, token string) error
}

// LogMailer 把重置令牌打到日志的兜底实现
type LogMailer struct{}

func (LogMailer) SendResetToken(_ context.Context, email, token string) error {
	log.Printf("[Mailer] 密码重置令牌 email=%s token=%s", email, token)
	return nil
}

// ==================== UserService 用户服务 ====================

// UserService 账号服务
type UserService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.ResetTokenRepository
	mailer    ResetMailer

	now func() time.Time
}

// NewUserService 创建账号服务
func NewUserService(userRepo repository.UserRepository, tokenRepo repository.ResetTokenRepository, mailer ResetMailer) *UserService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		now:       time.Now,
	}
}

// ==================== 认证相关 ====================

// Register 注册新账号
// 新账号固定 role=user status=active，管理员只能由管理面板创建
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	if len(req.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     model.UserRoleUser,
		Status:   model.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.toUserInfo(user), nil
}

// Login 邮箱密码登录
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 凭证正确但账号被停用
	if user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}

	// 生成 Token
	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	// 更新最后登录时间
	_ = s.userRepo.UpdateLastLogin(ctx, user.ID, s.now())

	cfg := middleware.GetJWTConfig()
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().Add(cfg.AccessTokenTTL),
		User:         s.toUserInfo(user),
	}, nil
}

// RefreshToken 刷新 Token
func (s *UserService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// 验证是否为 Refresh Token
	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	// 确认用户仍然有效
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	cfg := middleware.GetJWTConfig()
	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().Add(cfg.AccessTokenTTL),
	}, nil
}

// ChangePassword 修改自己的密码
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return ErrInvalidOldPassword
	}

	if len(req.NewPassword) < minPasswordLen {
		return ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword))
}

// ==================== 密码重置 ====================

// RequestPasswordReset 申请密码重置
// 未注册邮箱直接报错；已注册则落一枚一次性令牌并交给 mailer 外发
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotRegistered
	}

	token := &model.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(resetTokenTTL),
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return err
	}

	return s.mailer.SendResetToken(ctx, user.Email, token.Token)
}

// ConfirmPasswordReset 按令牌设置新密码，令牌一次性作废
func (s *UserService) ConfirmPasswordReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error {
	token, err := s.tokenRepo.GetByToken(ctx, req.Token)
	if err != nil {
		return err
	}
	if token == nil || !token.Usable(s.now()) {
		return ErrInvalidResetToken
	}

	if len(req.NewPassword) < minPasswordLen {
		return ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, token.UserID, string(hashedPassword)); err != nil {
		return err
	}

	return s.tokenRepo.MarkUsed(ctx, token.ID, s.now())
}

// ==================== 用户管理（管理员） ====================

// CreateUser 管理员创建账号
func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserInfo, error) {
	if len(req.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     req.Role,
		Status:   model.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.toUserInfo(user), nil
}

// UpdateUser 管理员更新账号 (姓名/邮箱/角色/状态)
func (s *UserService) UpdateUser(ctx context.Context, userID int64, req *dto.UpdateUserRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// 检查邮箱是否被其他用户使用
	if req.Email != "" && req.Email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, ErrEmailExists
		}
		user.Email = req.Email
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Status != "" {
		user.Status = req.Status
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.toUserInfo(user), nil
}

// DeleteUser 管理员删除账号档案
// 管理员账号不可删除；软删除保留凭证行，同邮箱不会被二次注册
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.IsAdmin() {
		return ErrCannotDeleteAdmin
	}

	return s.userRepo.Delete(ctx, userID)
}

// ListUsers 用户列表
func (s *UserService) ListUsers(ctx context.Context, req *dto.UserListRequest) (*dto.UserListResponse, error) {
	users, total, err := s.userRepo.List(ctx, repository.UserFilter{
		Keyword:  req.Keyword,
		Role:     req.Role,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*dto.UserInfo, len(users))
	for i, u := range users {
		list[i] = s.toUserInfo(&u)
	}

	return &dto.UserListResponse{
		List:  list,
		Total: total,
	}, nil
}

// GetUserByID 获取用户详情
func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.toUserInfo(user), nil
}

// EnsureAdmin 用户表为空时种一个默认管理员
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     model.UserRoleAdmin,
		Status:   model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("[Init] 已创建默认管理员: %s", email)
	return nil
}

// ==================== 辅助方法 ====================

// toUserInfo 转换为 DTO
func (s *UserService) toUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
	if user.LastLoginAt != nil {
		info.LastLoginAt = *user.LastLoginAt
	}
	return info
}

// ==================== 错误定义 ====================

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserDisabled       = errors.New("账号已停用")
	ErrInvalidToken       = errors.New("Token 无效")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidOldPassword = errors.New("旧密码错误")
	ErrEmailExists        = errors.New("邮箱已注册")
	ErrWeakPassword       = errors.New("密码长度不足 6 位")
	ErrNotRegistered      = errors.New("该邮箱未注册")
	ErrInvalidResetToken  = errors.New("重置令牌无效或已过期")
	ErrCannotDeleteAdmin  = errors.New("不能删除管理员账号")
)
