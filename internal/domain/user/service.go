// internal/domain/user/service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db          *gorm.DB
	jwtManager  *auth.JWTManager
	passwordMgr *auth.PasswordManager
	logger      *logrus.Logger
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		jwtManager:  auth.NewJWTManager(cfg),
		passwordMgr: auth.NewPasswordManager(cfg),
		logger:      logger,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	AddressStreet *string `json:"address_street"`
	AddressCity   *string `json:"address_city"`
	AddressArea   *string `json:"address_area"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new user account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("user with email %s already exists", email)
	}

	hash, err := s.passwordMgr.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return s.issueTokens(&user)
}

// Login authenticates a user
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user User
	err := s.db.Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invalid email or password")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.passwordMgr.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	now := time.Now().UTC()
	s.db.Model(&user).Update("last_login_at", &now)

	return s.issueTokens(&user)
}

// RefreshToken exchanges a refresh token for a new token pair
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	var user User
	err = s.db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("user not found or inactive")
	}

	return s.issueTokens(&user)
}

// GetProfile retrieves a user's profile
func (s *Service) GetProfile(userID uint) (*User, error) {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates the provided profile fields
func (s *Service) UpdateProfile(userID uint, req *UpdateProfileRequest) (*User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.AddressStreet != nil {
		updates["address_street"] = strings.TrimSpace(*req.AddressStreet)
	}
	if req.AddressCity != nil {
		updates["address_city"] = strings.TrimSpace(*req.AddressCity)
	}
	if req.AddressArea != nil {
		updates["address_area"] = strings.TrimSpace(*req.AddressArea)
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return user, nil
}

// ChangePassword changes a user's password after verifying the current one
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	if err := s.passwordMgr.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	hash, err := s.passwordMgr.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.db.Model(user).Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	return nil
}

func (s *Service) issueTokens(user *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
