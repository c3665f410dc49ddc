package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/grcworks/requirement-gathering-backend/config"
	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
	"github.com/grcworks/requirement-gathering-backend/utils"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Service interface {
	Login(input LoginInput) (*TokenPair, *User, error)
	Refresh(refreshToken string) (string, error)
	GetUserByID(userID uint) (*User, error)

	RequestPasswordReset(email string) error
	ResetPassword(token string, newPassword string) error

	CreateUser(input CreateUserInput) (*UserResponse, error)
	ListUsers() ([]UserResponse, error)
	ListTenantUsers(tenantID uint) ([]UserResponse, error)
	UpdateUserStatus(userID uint, status string) error
}

type service struct {
	repo          *Repository
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(r *Repository, cfg *config.Config) Service {
	return &service{
		repo:          r,
		accessSecret:  cfg.JWTAccessSecret,
		refreshSecret: cfg.JWTRefreshSecret,
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
	}
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *service) Login(in LoginInput) (*TokenPair, *User, error) {
	user, err := s.repo.FindByUsername(in.Username)
	if err != nil {
		return nil, nil, apperrors.Validationf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, nil, apperrors.Validationf("invalid credentials")
	}

	if user.Status == "inactive" {
		return nil, nil, apperrors.Forbiddenf("account is inactive")
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

func (s *service) generateAccessToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(s.accessTTL).Unix(),
	}
	if user.TenantID != nil {
		claims["tenant_id"] = *user.TenantID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.accessSecret))
	if err != nil {
		return "", apperrors.Upstreamf("sign access token: %v", err)
	}
	return signed, nil
}

func (s *service) generateRefreshToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.refreshTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.refreshSecret))
	if err != nil {
		return "", apperrors.Upstreamf("sign refresh token: %v", err)
	}
	return signed, nil
}

func (s *service) Refresh(refreshToken string) (string, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.refreshSecret), nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Validationf("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil {
		return "", apperrors.Validationf("invalid token claims")
	}

	userID := uint(claims["user_id"].(float64))
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return "", err
	}

	return s.generateAccessToken(user)
}

func (s *service) GetUserByID(userID uint) (*User, error) {
	return s.repo.FindByID(userID)
}

// =============================
// Forgot / reset password
// =============================

func (s *service) RequestPasswordReset(email string) error {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return err
	}

	resetToken := generateSecureToken()
	key := fmt.Sprintf("reset_token:%s", resetToken)

	if err := utils.SetToken(key, fmt.Sprint(user.ID), 15*time.Minute); err != nil {
		return apperrors.Upstreamf("save reset token: %v", err)
	}

	if err := utils.SendResetLink(user.Email, resetToken); err != nil {
		return apperrors.Upstreamf("send reset email: %v", err)
	}

	return nil
}

func (s *service) ResetPassword(token string, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.Validationf("password must be at least 8 characters")
	}

	key := fmt.Sprintf("reset_token:%s", token)
	val, err := utils.GetToken(key)
	if err != nil {
		return apperrors.Validationf("invalid or expired token")
	}

	var userID uint
	if _, err := fmt.Sscan(val, &userID); err != nil {
		return apperrors.Validationf("invalid token data")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Upstreamf("hash password: %v", err)
	}

	if err := s.repo.UpdatePassword(userID, string(hash)); err != nil {
		return err
	}

	_ = utils.DeleteToken(key)
	return nil
}

// =============================
// Admin user management
// =============================

func (s *service) CreateUser(in CreateUserInput) (*UserResponse, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !ValidRole(role) {
		return nil, apperrors.Validationf("unknown role %q", in.Role)
	}

	// Customers are always bound to exactly one tenant.
	if role == RoleCustomer {
		if in.TenantID == nil {
			return nil, apperrors.Validationf("customer user requires a tenant_id")
		}
		exists, err := s.repo.TenantExists(*in.TenantID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.NotFoundf("tenant %d", *in.TenantID)
		}
	} else if in.TenantID != nil {
		exists, err := s.repo.TenantExists(*in.TenantID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.NotFoundf("tenant %d", *in.TenantID)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Upstreamf("hash password: %v", err)
	}

	user := &User{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		TenantID:     in.TenantID,
		Status:       "active",
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	log.Printf("User created: %s (role=%s)", user.Username, user.Role)
	resp := toUserResponse(*user)
	return &resp, nil
}

func (s *service) ListUsers() ([]UserResponse, error) {
	users, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

func (s *service) ListTenantUsers(tenantID uint) ([]UserResponse, error) {
	users, err := s.repo.ListByTenant(tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

func (s *service) UpdateUserStatus(userID uint, status string) error {
	if status != "active" && status != "inactive" {
		return apperrors.Validationf("status must be active or inactive")
	}
	return s.repo.UpdateStatus(userID, status)
}

func generateSecureToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
