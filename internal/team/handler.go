package team

import (
	"context"
	"net/http"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, id internal.Identity, companyID int64) ([]Member, error)
	Add(ctx context.Context, id internal.Identity, dto AddMemberDTO) (string, error)
	Edit(ctx context.Context, id internal.Identity, dto EditMemberDTO) error
	Remove(ctx context.Context, id internal.Identity, dto RemoveMemberDTO) error
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

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.Service.List(r.Context(), id, companyID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, TeamResponse{Team: members})
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	var dto AddMemberDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	msg, err := h.Service.Add(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

func (h *Handler) EditMember(w http.ResponseWriter, r *http.Request) {
	var dto EditMemberDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Edit(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: MessageEdited})
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	var dto RemoveMemberDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Remove(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
