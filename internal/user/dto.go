package user

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/auth"
	"github.com/frahmantamala/hr-directory/internal/core/common/validation"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

type UserResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	IsActive    bool       `json:"is_active"`
	DateJoined  time.Time  `json:"date_joined"`
	LastLogin   *time.Time `json:"last_login"`
	Role        string     `json:"role"`
	Groups      []string   `json:"groups"`
}

type MessageResponse struct {
	User    *UserResponse `json:"user,omitempty"`
	Message string        `json:"message"`
}

type RegisterDTO struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Password2 string  `json:"password2"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      *string `json:"role"`
}

func (d *RegisterDTO) Normalize() {
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.TrimSpace(d.Email)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	if d.Role != nil && strings.TrimSpace(*d.Role) == "" {
		d.Role = nil
	}
}

func (d RegisterDTO) Validate() *internal.AppError {
	v := validation.NewValidator()

	v.Field("username", d.Username).
		Required("This field is required.").
		NoSpaces("Username cannot contain spaces.").
		MinLength(MinUsernameLength, "Username must be at least 3 characters long.").
		MaxLength(150)
	v.Field("email", d.Email).
		Required("This field is required.").
		Email().
		MaxLength(254)
	v.Field("password", d.Password).
		Required("This field is required.").
		Custom(passwordStrength("password"))
	v.Field("password2", d.Password2).
		Required("This field is required.")
	v.Field("first_name", d.FirstName).
		Required("This field is required.").
		MaxLength(150)
	v.Field("last_name", d.LastName).
		Required("This field is required.").
		MaxLength(150)
	v.Field("role", d.Role).
		OneOf(auth.RoleGroups...)

	if d.Password != "" && d.Password2 != "" && d.Password != d.Password2 {
		v.Add("password", "Password fields didn't match.", internal.ErrCodePasswordMismatch)
	}

	return v.Validate()
}

type ChangePasswordDTO struct {
	OldPassword  string `json:"old_password"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}

func (d ChangePasswordDTO) Validate() *internal.AppError {
	v := validation.NewValidator()

	v.Field("old_password", d.OldPassword).Required("This field is required.")
	v.Field("new_password", d.NewPassword).
		Required("This field is required.").
		Custom(passwordStrength("new_password"))
	v.Field("new_password2", d.NewPassword2).Required("This field is required.")

	if d.NewPassword != "" && d.NewPassword2 != "" && d.NewPassword != d.NewPassword2 {
		v.Add("new_password", "New password fields didn't match.", internal.ErrCodePasswordMismatch)
	}

	return v.Validate()
}

// AssignRoleDTO replaces a user's HR role; a null role clears it.
type AssignRoleDTO struct {
	Role *string `json:"role"`
}

func (d AssignRoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("role", d.Role).OneOf(auth.RoleGroups...)
	return v.Validate()
}

type ListQuery struct {
	IsActive *bool
}

func passwordStrength(field string) func(interface{}) *internal.ValidationError {
	return func(value interface{}) *internal.ValidationError {
		pw, _ := value.(string)
		if len([]rune(pw)) < MinPasswordLength {
			return &internal.ValidationError{
				Field:   field,
				Message: "This password is too short. It must contain at least 8 characters.",
				Code:    string(internal.ErrCodeWeakPassword),
			}
		}
		if strings.Trim(pw, "0123456789") == "" {
			return &internal.ValidationError{
				Field:   field,
				Message: "This password is entirely numeric.",
				Code:    string(internal.ErrCodeWeakPassword),
			}
		}
		return nil
	}
}
