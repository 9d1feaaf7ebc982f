package user

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/auth"
	"github.com/frahmantamala/hr-directory/internal/transport"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*User, error)
	Profile(ctx context.Context, id int64) (*User, error)
	ChangePassword(ctx context.Context, id int64, dto ChangePasswordDTO) error
	ListUsers(ctx context.Context, q ListQuery) ([]*User, error)
	AssignRole(ctx context.Context, actorID, targetID int64, dto AssignRoleDTO) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	if base == nil {
		base = transport.NewBaseHandler(nil)
	}
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	u, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp := u.ToResponse()
	h.WriteJSON(w, http.StatusCreated, MessageResponse{User: &resp, Message: "User registered successfully"})
}

// Profile handles GET /profile and GET /me
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrAuthenticationRequired)
		return
	}

	u, err := h.Service.Profile(r.Context(), principal.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToResponse())
}

// ChangePassword handles POST /change-password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrAuthenticationRequired)
		return
	}

	var dto ChangePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), principal.ID, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var q ListQuery
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.WriteAppError(w, internal.NewValidationFieldError("is_active", "Must be a valid boolean.", internal.ErrCodeValidationFailed))
			return
		}
		q.IsActive = &active
	}

	users, err := h.Service.ListUsers(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, u.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// AssignRole handles PUT /users/{id}/role
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	targetID, appErr := h.PathID(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var dto AssignRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	u, err := h.Service.AssignRole(r.Context(), internal.UserIDFromContext(r.Context()), targetID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToResponse())
}
