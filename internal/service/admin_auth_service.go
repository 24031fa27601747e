package service

import (
	"courtbooking/internal/auth"
	"courtbooking/internal/config"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = time.Hour

type AdminAuthService interface {
	Login(email, password string) (string, error)
}

// adminAuthService checks the single configured operator account.
type adminAuthService struct {
	cfg *config.Config
}

func NewAdminAuthService(cfg *config.Config) AdminAuthService {
	return &adminAuthService{cfg: cfg}
}

func (s *adminAuthService) Login(email, password string) (string, error) {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPasswordHash == "" {
		return "", errors.New("admin account not configured")
	}
	if !strings.EqualFold(strings.TrimSpace(email), s.cfg.AdminEmail) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return auth.IssueToken(s.cfg.JWTSecret, s.cfg.AdminEmail, tokenTTL)
}

// HashPassword produces the value expected in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
