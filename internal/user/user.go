package user

import (
	"time"

	"github.com/frahmantamala/hr-directory/internal/auth"
	userDatamodel "github.com/frahmantamala/hr-directory/internal/core/datamodel/user"
)

// User is an account that can sign in to the directory.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	DateJoined   time.Time
	LastLogin    *time.Time
	Groups       []string
}

// Role reports the effective HR role the same way the authorization policy
// sees it.
func (u *User) Role() string {
	return auth.EffectiveRole(u.principal())
}

func (u *User) principal() *auth.Principal {
	return &auth.Principal{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Superuser: u.IsSuperuser,
		Staff:     u.IsStaff,
		Active:    u.IsActive,
		LastLogin: u.LastLogin,
		Groups:    u.Groups,
	}
}

func (u *User) ToResponse() UserResponse {
	groups := u.Groups
	if groups == nil {
		groups = []string{}
	}
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		DateJoined:  u.DateJoined,
		LastLogin:   u.LastLogin,
		Role:        u.Role(),
		Groups:      groups,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsStaff:      u.IsStaff,
		IsSuperuser:  u.IsSuperuser,
		IsActive:     u.IsActive,
		DateJoined:   u.DateJoined,
		LastLogin:    u.LastLogin,
	}
}

func FromDataModel(u *userDatamodel.User, groups []string) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsStaff:      u.IsStaff,
		IsSuperuser:  u.IsSuperuser,
		IsActive:     u.IsActive,
		DateJoined:   u.DateJoined,
		LastLogin:    u.LastLogin,
		Groups:       groups,
	}
}
