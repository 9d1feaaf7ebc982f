package user

import "github.com/frahmantamala/hr-directory/internal"

var (
	UsernameTaken = internal.ValidationError{
		Field: "username", Message: "A user with this username already exists.", Code: string(internal.ErrCodeUsernameTaken),
	}
	EmailTaken = internal.ValidationError{
		Field: "email", Message: "A user with this email already exists.", Code: string(internal.ErrCodeEmailConflict),
	}
)

// NewConflictError is a 409 keyed by every taken field. Its code is the
// first field's.
func NewConflictError(taken ...internal.ValidationError) *internal.AppError {
	return internal.NewConflictError(taken[0].Message, internal.ErrorCode(taken[0].Code)).
		WithDetails(internal.ValidationErrors{Errors: taken})
}
