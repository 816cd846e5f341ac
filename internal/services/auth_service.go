package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"storeops/internal/caching"
	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles accounts and JWT token management
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string, claims *TokenClaims) error
	Me(ctx context.Context, tenantID, userID uuid.UUID) (*models.AuthResponse, error)
	ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, req *models.ChangePasswordRequest) error

	GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error)
	ValidateToken(token string) (*TokenClaims, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	users      repositories.UserRepository
	tenants    repositories.TenantRepository
	cacheSvc   caching.CacheService
	cfg        AuthConfig
	secret     []byte
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(users repositories.UserRepository, tenants repositories.TenantRepository, cacheSvc caching.CacheService, cfg AuthConfig, logger *zap.Logger) AuthService {
	return &authService{
		users:      users,
		tenants:    tenants,
		cacheSvc:   cacheSvc,
		cfg:        cfg,
		secret:     []byte(cfg.Secret),
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
}

func refreshKey(hash string) string {
	return caching.Key("refresh", hash)
}

func revokedKey(tokenID string) string {
	return caching.Key("revoked", tokenID)
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, common.ErrAlreadyExists.WithDetails(map[string]string{"field": "email"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var document *string
	if req.CompanyDocument != nil {
		document = common.StringPtr(common.OnlyDigits(*req.CompanyDocument))
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	tenant := &models.Tenant{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.CompanyName),
		Document: document,
		Email:    email,
		Phone:    req.CompanyPhone,
		Active:   true,
	}
	admin := &models.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	setting := models.DefaultSetting(tenant.ID, tenant.Name)
	setting.CompanyDocument = document
	setting.CompanyEmail = &email
	setting.CompanyPhone = req.CompanyPhone

	if err := s.tenants.Register(ctx, tenant, admin, setting); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists.WithDetails(map[string]string{"field": "email"})
		}
		return nil, fmt.Errorf("failed to register tenant: %w", err)
	}

	s.logger.Info("tenant registered", zap.String("tenant_id", tenant.ID.String()), zap.String("user_id", admin.ID.String()))

	tokens, err := s.GenerateTokens(ctx, admin)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{TokenResponse: tokens, User: admin, Tenant: tenant}, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, common.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, common.ErrUnauthorized.WithMessage("user is inactive")
	}

	tenant, err := s.tenants.GetByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.Active {
		return nil, common.ErrUnauthorized.WithMessage("tenant is inactive")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	now := time.Now().UTC()
	user.LastLoginAt = &now

	tokens, err := s.GenerateTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{TokenResponse: tokens, User: user, Tenant: tenant}, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new pair issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	data, err := s.cacheSvc.Take(ctx, refreshKey(hashToken(refreshToken)))
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if data == "" {
		return nil, common.ErrInvalidToken
	}

	parts := strings.Split(data, ":")
	if len(parts) != 2 {
		return nil, common.ErrInvalidToken
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	tenantID, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	if !user.Active {
		return nil, common.ErrUnauthorized.WithMessage("user is inactive")
	}
	return s.GenerateTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string, claims *TokenClaims) error {
	if refreshToken != "" {
		if err := s.cacheSvc.Delete(ctx, refreshKey(hashToken(refreshToken))); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.cacheSvc.SetString(ctx, revokedKey(claims.ID), "revoked", ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*models.AuthResponse, error) {
	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user, Tenant: tenant}, nil
}

func (s *authService) ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, req *models.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return common.ErrInvalidCredentials.WithMessage("current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, tenantID, userID, string(hash))
}

// GenerateTokens issues a signed access token and stores a hashed refresh token in redis.
func (s *authService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now().UTC()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:   user.ID.String(),
		TenantID: user.TenantID.String(),
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	refreshToken := generateSecureToken()
	value := user.ID.String() + ":" + user.TenantID.String()
	if err := s.cacheSvc.SetString(ctx, refreshKey(hashToken(refreshToken)), value, s.cfg.RefreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.cfg.AccessTTL.Seconds()),
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		TenantID:     user.TenantID.String(),
		Role:         user.Role,
		TokenID:      tokenID,
		IssuedAt:     now,
	}, nil
}

func (s *authService) ValidateToken(token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.cfg.Issuer))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *authService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.cacheSvc.Exists(ctx, revokedKey(tokenID))
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// hashToken creates a SHA-256 hash of the token for secure storage
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
