package competence

import (
	"context"
	"net/http"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/transport"
)

type ServiceAPI interface {
	Add(ctx context.Context, id internal.Identity, dto AddCompetenceDTO) (*Competence, error)
	Update(ctx context.Context, id internal.Identity, dto UpdateCompetenceDTO) error
	Delete(ctx context.Context, id internal.Identity, dto DeleteCompetenceDTO) error
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

func (h *Handler) AddCompetence(w http.ResponseWriter, r *http.Request) {
	var dto AddCompetenceDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.Add(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AddedResponse{Message: MessageAdded, Competence: *c})
}

func (h *Handler) UpdateCompetence(w http.ResponseWriter, r *http.Request) {
	var dto UpdateCompetenceDTO
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
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: MessageUpdated})
}

func (h *Handler) DeleteCompetence(w http.ResponseWriter, r *http.Request) {
	var dto DeleteCompetenceDTO
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
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: MessageDeleted})
}
