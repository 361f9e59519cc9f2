package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/climatecare/repairdesk/internal/auth"
	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/rbac"
	"github.com/climatecare/repairdesk/internal/repository"
	"github.com/climatecare/repairdesk/internal/validate"
	apperrors "github.com/climatecare/repairdesk/pkg/util"
)

// UserService manages account administration.
type UserService struct {
	users repository.UserRepository
}

// UserDependencies encapsulates repo requirements for the user service.
type UserDependencies struct {
	UserRepo repository.UserRepository
}

// UserCreateInput describes the account creation payload.
type UserCreateInput struct {
	FullName string
	Phone    string
	Login    string
	Password string
	Role     string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{users: deps.UserRepo}
}

// Create registers a new account. Only managers administer accounts.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !rbac.CanManageUsers(actor.Role) {
		return nil, apperrors.NewForbidden("manager role required")
	}

	var v validate.Errors
	fullName := v.RequiredString("full_name", input.FullName, "full name is required")
	login := v.RequiredString("login", input.Login, "login is required")
	role := domain.Role(strings.TrimSpace(input.Role))
	if !role.Valid() {
		v.Add("role", "unknown role")
	}
	if strings.TrimSpace(input.Password) == "" {
		v.Add("password", "password is required")
	}
	if !v.Empty() {
		return nil, apperrors.NewValidationError("invalid user payload", v.Details())
	}

	if _, err := s.users.GetByLogin(ctx, login); err == nil {
		return nil, apperrors.NewConflict("login already taken", map[string]any{"login": login})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := &domain.User{
		FullName:     fullName,
		Phone:        strings.TrimSpace(input.Phone),
		Login:        login,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns accounts, optionally narrowed to one role. Managers list
// everyone; operators only get the role-narrowed pickers request forms
// need.
func (s *UserService) List(ctx context.Context, actor *domain.User, role *domain.Role) ([]domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if role != nil && !role.Valid() {
		return nil, apperrors.NewValidationError("invalid user filter", map[string]any{"role": "unknown role"})
	}
	allowed := rbac.CanManageUsers(actor.Role) ||
		(role != nil && rbac.CanAssignSpecialist(actor.Role))
	if !allowed {
		return nil, apperrors.NewForbidden("cannot list accounts")
	}
	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
