package department

import (
	"context"
	"net/http"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, id internal.Identity, companyID int64) ([]Summary, error)
	Create(ctx context.Context, id internal.Identity, dto CreateDepartmentDTO) (*Department, error)
	Update(ctx context.Context, id internal.Identity, dto UpdateDepartmentDTO) error
	Delete(ctx context.Context, id internal.Identity, dto DeleteDepartmentDTO) error
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

func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	companyID, err := h.QueryInt64(r, "companyId", internal.ErrInvalidCompanyID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	departments, err := h.Service.List(r.Context(), id, companyID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{Departments: departments})
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	d, err := h.Service.Create(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DepartmentResponse{Department: d})
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto UpdateDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Update(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	var dto DeleteDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
