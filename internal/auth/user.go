package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Principal is the authenticated caller loaded for one request.
type Principal struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Superuser bool       `json:"is_superuser"`
	Staff     bool       `json:"is_staff"`
	Active    bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	Groups    []string   `json:"groups"`
}

func (p *Principal) IsSuperuser() bool {
	return p.Superuser
}

func (p *Principal) GroupNames() []string {
	return p.Groups
}

func (p *Principal) Role() string {
	return EffectiveRole(p)
}

// Credentials is the login lookup result.
type Credentials struct {
	UserID       int64
	PasswordHash string
	IsActive     bool
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
