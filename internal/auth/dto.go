package auth

import (
	"strings"

	"github.com/frahmantamala/hr-directory/internal"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh and blacklist requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate checks required fields.
func (d LoginDTO) Validate() *internal.AppError {
	var errs []internal.ValidationError
	if strings.TrimSpace(d.Username) == "" {
		errs = append(errs, internal.ValidationError{Field: "username", Message: "This field is required.", Code: string(internal.ErrCodeRequired)})
	}
	if d.Password == "" {
		errs = append(errs, internal.ValidationError{Field: "password", Message: "This field is required.", Code: string(internal.ErrCodeRequired)})
	}
	if len(errs) > 0 {
		return internal.NewValidationFieldErrors(errs)
	}
	return nil
}

func (d RefreshTokenDTO) Validate() *internal.AppError {
	if strings.TrimSpace(d.RefreshToken) == "" {
		return internal.NewValidationFieldError("refresh_token", "This field is required.", internal.ErrCodeRequired)
	}
	return nil
}
