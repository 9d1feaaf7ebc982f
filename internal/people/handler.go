package people

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hr-directory/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, in *PersonInput) (*Person, error)
	Get(ctx context.Context, id int64) (*Person, error)
	List(ctx context.Context, q ListQuery) ([]*Person, error)
	Update(ctx context.Context, id int64, in *PersonInput, partial bool) (*Person, error)
	Delete(ctx context.Context, id int64) error
	FilterDirectory(ctx context.Context, department, status string) ([]*Person, error)
	ListHumanResources(ctx context.Context) ([]*Person, error)
	ListByDepartment(ctx context.Context, department string) ([]*Person, error)
	DeleteByIdentifier(ctx context.Context, id Identifier) (*Person, error)
	UpdateByIdentifier(ctx context.Context, id Identifier, in *PersonInput) (*Person, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// List handles GET /people?search=&ordering=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	people, err := h.Service.List(r.Context(), ListQuery{
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponses(people))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, appErr := DecodePersonInput(r.Body)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	p, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p.ToResponse())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

// Replace handles PUT /people/{id}.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// Patch handles PATCH /people/{id}.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, appErr := h.PathID(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	in, appErr := DecodePersonInput(r.Body)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	p, err := h.Service.Update(r.Context(), id, in, partial)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FilterEmployees handles GET /people/filter_employees?department=&status=
func (h *Handler) FilterEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	people, err := h.Service.FilterDirectory(r.Context(), q.Get("department"), q.Get("status"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponses(people))
}

func (h *Handler) HumanResources(w http.ResponseWriter, r *http.Request) {
	people, err := h.Service.ListHumanResources(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponses(people))
}

func (h *Handler) ByDepartment(w http.ResponseWriter, r *http.Request) {
	people, err := h.Service.ListByDepartment(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponses(people))
}

// DeleteByIdentifier handles DELETE /people/delete_by_identifier?email=|full_name=
func (h *Handler) DeleteByIdentifier(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.Service.DeleteByIdentifier(r.Context(), NewIdentifier(q.Get("email"), q.Get("full_name")))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DeletedResponse{
		Message: "Successfully deleted " + p.FullName,
		Person:  p.ToResponse(),
	})
}

// UpdateByIdentifier handles PATCH /people/update_by_identifier?email=|full_name=
func (h *Handler) UpdateByIdentifier(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := NewIdentifier(q.Get("email"), q.Get("full_name"))

	in, appErr := DecodePersonInput(r.Body)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	p, err := h.Service.UpdateByIdentifier(r.Context(), id, in)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}
