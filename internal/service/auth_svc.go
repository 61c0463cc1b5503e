package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Fraol-12/WhisperBox/internal/apperr"
	"github.com/Fraol-12/WhisperBox/internal/auth"
	"github.com/Fraol-12/WhisperBox/internal/model"
	"github.com/Fraol-12/WhisperBox/internal/repository"
)

// AuthService authenticates department admins and verifies their
// credentials.
type AuthService struct {
	admins AdminStore
	signer *auth.Signer
	logger zerolog.Logger
}

func NewAuthService(admins AdminStore, signer *auth.Signer, logger zerolog.Logger) *AuthService {
	return &AuthService{admins: admins, signer: signer, logger: logger}
}

// Login checks email and password and issues a department-scoped token.
// An unknown email and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("MISSING_FIELDS", "Email and password are required")
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err)
	}

	hash := ""
	if admin != nil {
		hash = admin.PasswordHash
	}
	if !auth.CheckPasswordOrDummy(hash, password) {
		s.logger.Info().Msg("admin login rejected")
		return nil, apperr.ErrInvalidCredentials
	}

	token, _, err := s.signer.Issue(admin.ID, string(admin.Department))
	if err != nil {
		return nil, apperr.Persistence("Failed to issue token", err)
	}

	s.logger.Info().Str("admin_id", admin.ID).Str("department", string(admin.Department)).Msg("admin logged in")
	return &model.LoginResponse{
		Token: token,
		Admin: model.AdminView{
			ID:         admin.ID,
			Name:       admin.Name,
			Department: admin.Department,
			Email:      admin.Email,
		},
	}, nil
}

// Authorize verifies a bearer token and returns the admin it speaks for.
func (s *AuthService) Authorize(token string) (*model.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.ErrMissingToken
	}
	claims, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired
		}
		return nil, apperr.ErrInvalidToken
	}
	dept, ok := model.ParseDepartment(claims.Department)
	if !ok {
		return nil, apperr.ErrInvalidToken
	}
	return &model.Principal{AdminID: claims.AdminID, Department: dept}, nil
}
