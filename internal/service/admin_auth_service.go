package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/toystore_api/internal/models"
	"github.com/GTDGit/toystore_api/internal/utils"
)

type AdminAuthService struct {
	adminRepo AdminUserStore
	jwt       *utils.JWTManager
	now       func() time.Time
}

func NewAdminAuthService(adminRepo AdminUserStore, jwt *utils.JWTManager) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo, jwt: jwt, now: time.Now}
}

// LoginResult is returned on successful admin login.
type LoginResult struct {
	Token string    `json:"token"`
	User  AdminInfo `json:"user"`
}

// AdminInfo is the public view of an admin account.
type AdminInfo struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, utils.NewInvalid("Email and password are required")
	}
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().Str("email", email).Msg("Unknown admin email")
			return nil, utils.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive() {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return nil, utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return nil, utils.ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	if err := s.adminRepo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("Failed to update last login")
	}

	log.Info().Str("email", email).Msg("Login successful")

	return &LoginResult{
		Token: token,
		User: AdminInfo{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	}, nil
}

// CreateAdmin stores a new active admin with a bcrypt-hashed password.
func (s *AdminAuthService) CreateAdmin(ctx context.Context, email, password, name, role string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, utils.NewInvalid("Email and a password of at least 8 characters are required")
	}
	if role == "" {
		role = models.RoleAdmin
	}
	role = strings.ToUpper(role)
	if !models.IsAdminRole(role) {
		return nil, utils.NewInvalid("Role must be ADMIN or SUPER_ADMIN")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         role,
		Status:       models.AccountStatusActive,
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
