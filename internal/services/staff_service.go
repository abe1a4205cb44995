package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/repositories"
	"github.com/doujindesk/doujindesk-api/pkg/auth"
	"github.com/doujindesk/doujindesk-api/pkg/token"
)

// StaffIDPrefix prefixes every staff id.
const StaffIDPrefix = "STF"

// RegisterStaffInput adds a crew member.
type RegisterStaffInput struct {
	Name     string           `json:"name" validate:"notblank,max=120"`
	Email    string           `json:"email" validate:"required,email"`
	Passcode string           `json:"passcode" validate:"required,min=6,max=72"`
	Role     models.StaffRole `json:"role" validate:"required,oneof=admin coordinator gate"`
	Gate     string           `json:"gate,omitempty" validate:"max=64"`
}

// LoginInput is a crew login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Passcode string `json:"passcode" validate:"required"`
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Staff     *models.Staff `json:"staff"`
}

// StaffService manages the crew roster and staff sessions.
type StaffService struct {
	repo      *repositories.StaffRepository
	jwtConfig *auth.JWTConfig
	hashCost  int
	logger    *log.Logger
	now       func() time.Time
}

func NewStaffService(repo *repositories.StaffRepository, jwtConfig *auth.JWTConfig, logger *log.Logger) *StaffService {
	return &StaffService{
		repo:      repo,
		jwtConfig: jwtConfig,
		hashCost:  auth.HashCost,
		logger:    logger,
		now:       time.Now,
	}
}

// Register adds an active crew member with a bcrypt-hashed passcode.
func (s *StaffService) Register(ctx context.Context, input *RegisterStaffInput) (*models.Staff, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashWithCost(input.Passcode, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash passcode: %w", err)
	}

	now := s.now()
	id, err := token.GenerateID(StaffIDPrefix, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate staff id: %w", err)
	}

	staff := &models.Staff{
		BaseModel:    models.BaseModel{ID: id},
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Role:         input.Role,
		Gate:         input.Gate,
		PasscodeHash: hash,
		Active:       true,
	}
	staff.Initialize(now)

	if err := s.repo.Create(staff); err != nil {
		return nil, fmt.Errorf("register %s: %w", staff.Email, err)
	}

	s.logger.Printf("✅ Staff %s registered as %s", staff.Email, staff.Role)
	return staff, nil
}

// EnsureAdmin registers input as an administrator when the roster is empty.
// It reports whether a member was created.
func (s *StaffService) EnsureAdmin(ctx context.Context, input *RegisterStaffInput) (bool, error) {
	if len(s.repo.List()) > 0 {
		return false, nil
	}

	admin := *input
	admin.Role = models.StaffRoleAdmin
	if _, err := s.Register(ctx, &admin); err != nil {
		return false, err
	}
	return true, nil
}

// Login checks the passcode and issues a staff token. Unknown emails,
// wrong passcodes and deactivated members all fail with
// ErrInvalidCredentials.
func (s *StaffService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	staff, err := s.repo.FindByEmail(input.Email)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if !staff.Active || !auth.Check(input.Passcode, staff.PasscodeHash) {
		s.logger.Printf("⚠️  Failed login for %s", staff.Email)
		return nil, models.ErrInvalidCredentials
	}

	if auth.NeedsRehash(staff.PasscodeHash) && s.hashCost >= auth.HashCost {
		if hash, err := auth.HashWithCost(input.Passcode, s.hashCost); err == nil {
			_, _ = s.repo.Update(staff.ID, func(m *models.Staff) error {
				m.PasscodeHash = hash
				return nil
			})
		}
	}

	tokenString, err := auth.GenerateToken(staff.ID, staff.Email, string(staff.Role), staff.Gate, s.jwtConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{
		Token:     tokenString,
		ExpiresAt: s.now().Add(s.jwtConfig.ExpirationTime),
		Staff:     staff,
	}, nil
}

// Authenticate parses a staff token and checks the member is still active.
func (s *StaffService) Authenticate(ctx context.Context, tokenString string) (*auth.JWTClaims, error) {
	claims, err := auth.ParseToken(tokenString, s.jwtConfig)
	if err != nil {
		return nil, models.NewAppError(models.KindUnauthorized, "INVALID_TOKEN", err.Error())
	}

	staff, err := s.repo.FindByID(claims.StaffID)
	if err != nil || !staff.Active {
		return nil, models.NewAppError(models.KindUnauthorized, "INVALID_TOKEN", "staff member is not active")
	}
	return claims, nil
}

func (s *StaffService) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	staff, err := s.repo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("staff %s: %w", id, err)
	}
	return staff, nil
}

func (s *StaffService) List(ctx context.Context) []*models.Staff {
	return s.repo.List()
}

// SetActive enables or disables a crew member. Disabled members cannot log
// in and their tokens stop working.
func (s *StaffService) SetActive(ctx context.Context, id string, active bool) (*models.Staff, error) {
	staff, err := s.repo.Update(id, func(m *models.Staff) error {
		m.Active = active
		m.Touch(s.now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("staff %s: %w", id, err)
	}
	return staff, nil
}
