package feedback

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, id internal.Identity, companyID, userID int64) ([]Feedback, error)
	Add(ctx context.Context, id internal.Identity, dto AddFeedbackDTO) (*Feedback, error)
	Delete(ctx context.Context, id internal.Identity, dto DeleteFeedbackDTO) error
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

func (h *Handler) GetFeedbacks(w http.ResponseWriter, r *http.Request) {
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

	// userId is an optional filter.
	var userID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			h.HandleServiceError(w, r, internal.ErrInvalidUserID)
			return
		}
	}

	feedbacks, err := h.Service.List(r.Context(), id, companyID, userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FeedbacksResponse{Feedbacks: feedbacks})
}

func (h *Handler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	var dto AddFeedbackDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	f, err := h.Service.Add(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AddedResponse{Message: MessageAdded, Feedback: f})
}

func (h *Handler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	var dto DeleteFeedbackDTO
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
