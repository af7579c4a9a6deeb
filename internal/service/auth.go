package service

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"Attendly/config"
	"Attendly/internal/model"
	"Attendly/internal/model/dto"
	"Attendly/internal/queue"
	"Attendly/internal/repository"
	"Attendly/pkg/errors"
	"Attendly/pkg/logger"
	"Attendly/pkg/token"
	"Attendly/storage/database"
	"Attendly/utils"
)

const (
	bcryptCost    = 10
	resetTokenTTL = 15 * time.Minute
	tokenType     = "Bearer"
)

// 用户不存在时也做一次 bcrypt 比较，避免通过响应时间枚举邮箱
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("attendly-dummy-password"), bcryptCost)

// ResetMailer 投递重置密码邮件，由 queue.Producer 实现
type ResetMailer interface {
	EnqueueResetPassword(ctx context.Context, m model.ResetPasswordMail) error
}

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = NewAuthService(
			database.NewUserRepo(database.DB()),
			token.Default(),
			queue.NewProducer(),
			config.Cfg.FrontendResetURL,
		)
	})
	return authService
}

type AuthService struct {
	users    repository.UserRepository
	issuer   *token.Issuer
	mailer   ResetMailer
	resetURL string
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, issuer *token.Issuer, mailer ResetMailer, resetURL string) *AuthService {
	return &AuthService{
		users:    users,
		issuer:   issuer,
		mailer:   mailer,
		resetURL: resetURL,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.EmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: string(hash),
	}
	if req.Role != "" {
		role := model.UserRole(req.Role)
		u.Role = &role
	}

	if err := s.users.Create(ctx, u); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateKey) {
			return nil, errors.EmailAlreadyRegistered
		}
		return nil, err
	}

	return s.issueTokens(ctx, u)
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(req.Password))
		return nil, errors.InvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.InvalidCredentials
	}

	return s.issueTokens(ctx, u)
}

// Refresh 校验 refresh token 并轮换，旧 token 随即失效
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil || u.RefreshTokenHash == nil {
		return nil, errors.RefreshTokenInvalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*u.RefreshTokenHash), []byte(utils.SHA256Hex(refreshToken))); err != nil {
		return nil, errors.RefreshTokenMismatch
	}

	return s.issueTokens(ctx, u)
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.users.UpdateFields(ctx, userID, map[string]interface{}{
		"refresh_token_hash": nil,
	})
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.Unauthorized.WithMessage("User not found")
	}
	return u, nil
}

// ForgotPassword 无论邮箱是否存在都返回成功
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	raw, err := utils.RandomToken(32)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(resetTokenTTL)

	if err := s.users.UpdateFields(ctx, u.ID, map[string]interface{}{
		"reset_token_hash":       utils.SHA256Hex(raw),
		"reset_token_expires_at": expiresAt,
	}); err != nil {
		return err
	}

	if err := s.mailer.EnqueueResetPassword(ctx, model.ResetPasswordMail{
		Email:     u.Email,
		ResetURL:  s.resetURL + "?token=" + raw,
		ExpiresAt: utils.FormatISO(expiresAt),
	}); err != nil {
		// 返回错误会暴露邮箱存在与否
		logger.Ctx(ctx).Error("Failed to enqueue reset password email",
			zap.String("user_id", u.ID),
			zap.Error(err),
		)
		return nil
	}

	logger.Ctx(ctx).Info("Queued reset password email", zap.String("user_id", u.ID))
	return nil
}

// ResetPassword 成功后清除重置 token 和 refresh token，已登录的会话需要重新登录
func (s *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	u, err := s.users.FindByResetTokenHash(ctx, utils.SHA256Hex(req.Token))
	if err != nil {
		return err
	}
	if u == nil {
		return errors.ResetTokenInvalid
	}

	if u.ResetTokenExpiresAt == nil || u.ResetTokenExpiresAt.Before(s.now()) {
		if err := s.users.UpdateFields(ctx, u.ID, map[string]interface{}{
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
		}); err != nil {
			return err
		}
		return errors.ResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return err
	}

	return s.users.UpdateFields(ctx, u.ID, map[string]interface{}{
		"password_hash":          string(hash),
		"reset_token_hash":       nil,
		"reset_token_expires_at": nil,
		"refresh_token_hash":     nil,
	})
}

// issueTokens 签发新 token 对并保存 refresh token 摘要
// 先 sha256 再 bcrypt，绕开 bcrypt 72 字节的截断
func (s *AuthService) issueTokens(ctx context.Context, u *model.User) (*dto.AuthResponse, error) {
	pair, err := s.issuer.IssuePair(u.ID, u.Email, u.RoleString())
	if err != nil {
		return nil, err
	}

	refreshHash, err := bcrypt.GenerateFromPassword([]byte(utils.SHA256Hex(pair.RefreshToken)), bcryptCost)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateFields(ctx, u.ID, map[string]interface{}{
		"refresh_token_hash": string(refreshHash),
	}); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:         dto.NewUserResponse(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenType,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
