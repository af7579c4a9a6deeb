package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hertz-contrib/jwt"

	"Attendly/config"
	"Attendly/pkg/errors"
)

const (
	IdentityKey = "sub"

	refreshType = "refresh"
)

var (
	// 这个实例会被 middleware 和 token 包共同使用
	sharedGenerator *jwt.HertzJWTMiddleware
	defaultIssuer   *Issuer
)

// AccessClaims access token 载荷
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwtv5.RegisteredClaims
}

// RefreshClaims refresh token 载荷，jti 保证每次签发的 token 都不同
type RefreshClaims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwtv5.RegisteredClaims
}

// Pair 一次签发的 token 对
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Issuer 负责签发与校验 token，两类 token 使用不同的密钥
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func Init() error {
	accessTTL := time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute
	refreshTTL := time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour

	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     accessTTL,
		MaxRefresh:  refreshTTL,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	defaultIssuer = NewIssuer(config.Cfg.JWTSecret, config.Cfg.JWTRefreshSecret, accessTTL, refreshTTL)
	return nil
}

// GetGenerator 获取共享的 token 生成器（供 middleware 使用）
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// Default 返回按配置初始化的 Issuer，需先调用 Init
func Default() *Issuer {
	return defaultIssuer
}

// IssuePair 生成 access token 和 refresh token
func (i *Issuer) IssuePair(userID, email, role string) (Pair, error) {
	now := i.now()
	expiresAt := now.Add(i.accessTTL)

	access := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, AccessClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
		},
	})
	accessToken, err := access.SignedString(i.accessSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, RefreshClaims{
		Email: email,
		Type:  refreshType,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(i.refreshTTL)),
		},
	})
	refreshToken, err := refresh.SignedString(i.refreshSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(i.accessTTL.Seconds()),
	}, nil
}

// ParseRefresh 校验 refresh token 的签名、有效期与类型
func (i *Issuer) ParseRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.parse(tokenString, claims, i.refreshSecret, errors.RefreshTokenInvalid); err != nil {
		return nil, err
	}

	if claims.Type != refreshType || claims.Subject == "" {
		return nil, errors.RefreshTokenInvalid
	}
	return claims, nil
}

// ParseAccess 校验 access token
func (i *Issuer) ParseAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(tokenString, claims, i.accessSecret, errors.Unauthorized); err != nil {
		return nil, err
	}
	return claims, nil
}

func (i *Issuer) parse(tokenString string, claims jwtv5.Claims, secret []byte, invalid errors.Definition) error {
	token, err := jwtv5.ParseWithClaims(tokenString, claims, func(token *jwtv5.Token) (interface{}, error) {
		return secret, nil
	},
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", invalid, err)
	}
	if !token.Valid {
		return invalid
	}
	return nil
}
