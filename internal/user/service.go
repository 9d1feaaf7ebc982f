package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/auth"
	"github.com/frahmantamala/hr-directory/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/user"
)

type Repository interface {
	Create(ctx context.Context, u *userDatamodel.User, role *string) error
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	List(ctx context.Context, q ListQuery) ([]*userDatamodel.User, error)
	GroupsOf(ctx context.Context, userIDs ...int64) (map[int64][]string, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	ReplaceRole(ctx context.Context, userID int64, role *string) error
	EnsureGroups(ctx context.Context, names []string) (int, error)
}

type Service struct {
	repo       Repository
	abac       *auth.ABACPolicy
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		abac:       auth.NewABACPolicy(),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var conflicts []internal.ValidationError
	taken, err := s.repo.UsernameTaken(ctx, dto.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		conflicts = append(conflicts, UsernameTaken)
	}
	taken, err = s.repo.EmailTaken(ctx, dto.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		conflicts = append(conflicts, EmailTaken)
	}
	if len(conflicts) > 0 {
		return nil, NewConflictError(conflicts...)
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := &userDatamodel.User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		IsActive:     true,
	}
	// a concurrent registration can still lose at the unique index
	if err := s.repo.Create(ctx, row, dto.Role); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", row.ID, "username", row.Username,
		"actor_id", internal.UserIDFromContext(ctx))
	return s.Profile(ctx, row.ID)
}

// Profile loads a user together with its groups.
func (s *Service) Profile(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	groups, err := s.repo.GroupsOf(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	return FromDataModel(row, groups[id]), nil
}

func (s *Service) ChangePassword(ctx context.Context, id int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(row.PasswordHash, dto.OldPassword); err != nil {
		return internal.NewValidationFieldError("old_password", "Old password is not correct", internal.ErrCodeWrongPassword)
	}

	hash, err := auth.HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", id)
	return nil
}

// ListUsers returns accounts newest first.
func (s *Service) ListUsers(ctx context.Context, q ListQuery) ([]*User, error) {
	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	groups, err := s.repo.GroupsOf(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row, groups[row.ID]))
	}
	return users, nil
}

// AssignRole replaces the target's HR group. Callers can never change their
// own role.
func (s *Service) AssignRole(ctx context.Context, actorID, targetID int64, dto AssignRoleDTO) (*User, error) {
	if err := s.abac.CanModifyAccount(actorID, targetID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceRole(ctx, targetID, dto.Role); err != nil {
		return nil, fmt.Errorf("replace role: %w", err)
	}

	role := auth.RoleNone
	if dto.Role != nil {
		role = *dto.Role
	}
	s.logger.InfoContext(ctx, "role assigned", "user_id", targetID, "role", role, "actor_id", actorID)
	return s.Profile(ctx, targetID)
}

// EnsureRoleGroups creates the HR groups that do not exist yet.
func (s *Service) EnsureRoleGroups(ctx context.Context) (int, error) {
	created, err := s.repo.EnsureGroups(ctx, auth.RoleGroups)
	if err != nil {
		return 0, fmt.Errorf("ensure role groups: %w", err)
	}
	return created, nil
}

// EnsureSuperuser creates a superuser account unless the username is
// already taken. It reports whether an account was created.
func (s *Service) EnsureSuperuser(ctx context.Context, username, email, password string) (bool, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)

	v := validation.NewValidator()
	v.Field("username", username).
		Required("This field is required.").
		NoSpaces("Username cannot contain spaces.").
		MinLength(MinUsernameLength, "Username must be at least 3 characters long.")
	v.Field("email", email).
		Required("This field is required.").
		Email()
	if err := v.Validate(); err != nil {
		return false, err
	}

	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return false, nil
	}
	if err := passwordStrength("password")(password); err != nil {
		return false, internal.NewValidationFieldErrors([]internal.ValidationError{*err})
	}
	taken, err = s.repo.EmailTaken(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return false, NewConflictError(EmailTaken)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	row := &userDatamodel.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsStaff:      true,
		IsSuperuser:  true,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, row, nil); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return false, appErr
		}
		return false, fmt.Errorf("create superuser: %w", err)
	}
	s.logger.InfoContext(ctx, "superuser created", "user_id", row.ID, "username", username)
	return true, nil
}
