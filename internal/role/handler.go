package role

import (
	"context"
	"net/http"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, id internal.Identity, companyID int64) ([]Summary, error)
	Create(ctx context.Context, id internal.Identity, dto CreateRoleDTO) (*Role, error)
	Update(ctx context.Context, id internal.Identity, dto UpdateRoleDTO) error
	Delete(ctx context.Context, id internal.Identity, dto DeleteRoleDTO) error
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

func (h *Handler) GetRoles(w http.ResponseWriter, r *http.Request) {
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

	roles, err := h.Service.List(r.Context(), id, companyID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto CreateRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	created, err := h.Service.Create(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RoleResponse{Role: created})
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var dto UpdateRoleDTO
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

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	var dto DeleteRoleDTO
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
