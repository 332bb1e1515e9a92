package service

import (
	"context"
	"errors"
	"fmt"

	"socio-service/internal/domain"
	"socio-service/internal/repository"
	"socio-service/internal/token"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 4
	minPasswordLength = 6
)

type AuthServiceInterface interface {
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.StaffUser, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.StaffUser, error)
	EnsureAdmin(ctx context.Context, username, email, password string) error
}

type AuthService struct {
	staffRepository repository.StaffRepository
	tokens          *token.Service
}

func NewAuthService(staffRepository repository.StaffRepository, tokens *token.Service) *AuthService {
	return &AuthService{
		staffRepository: staffRepository,
		tokens:          tokens,
	}
}

func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.StaffUser, error) {
	if req.Username == "" || req.Password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.staffRepository.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrStaffNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up staff user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	signed, err := s.tokens.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	log.WithFields(log.Fields{
		"staff_id": user.ID,
		"username": user.Username,
	}).Info("Staff user successfully authenticated")

	return signed, user, nil
}

func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.StaffUser, error) {
	if len(req.Username) < minUsernameLength {
		return nil, fmt.Errorf("username must be at least %d characters", minUsernameLength)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if err := domain.ValidateEmail(req.Email); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleOperator
	}
	if err := domain.ValidateRole(role); err != nil {
		return nil, err
	}

	existing, err := s.staffRepository.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, domain.ErrStaffNotFound) {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrStaffExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.StaffUser{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.staffRepository.Create(ctx, user); err != nil {
		log.WithError(err).WithField("username", req.Username).Error("Failed to register staff user")
		return nil, fmt.Errorf("failed to register staff user: %w", err)
	}

	log.WithFields(log.Fields{
		"staff_id": user.ID,
		"username": user.Username,
		"role":     user.Role,
	}).Info("Staff user successfully registered")

	return user, nil
}

// EnsureAdmin seeds the initial admin account on first boot.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	count, err := s.staffRepository.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admin users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		log.Warn("No admin user exists and ADMIN_PASS is not set, skipping admin seed")
		return nil
	}

	_, err = s.Register(ctx, domain.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.WithField("username", username).Info("Initial admin user created")
	return nil
}
