package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/auth"
	"github.com/frahmantamala/mastersight/internal/storage"
	"github.com/frahmantamala/mastersight/internal/transport"
)

type ServiceAPI interface {
	Me(ctx context.Context, id internal.Identity) (*User, error)
	Create(ctx context.Context, dto CreateUserDTO) (*User, *auth.Session, error)
	Update(ctx context.Context, id internal.Identity, dto UpdateUserDTO) (*User, error)
	UpdatePassword(ctx context.Context, id internal.Identity, dto UpdatePasswordDTO) error
	Companies(ctx context.Context, id internal.Identity) ([]CompanyAccess, error)
	TouchLastAccess(ctx context.Context, id internal.Identity, dto CompanyRefDTO) error
	Invites(ctx context.Context, id internal.Identity) ([]Invite, error)
	AcceptInvite(ctx context.Context, id internal.Identity, dto CompanyRefDTO) error
	DeclineInvite(ctx context.Context, id internal.Identity, dto CompanyRefDTO) error
}

type ImageStore interface {
	FromRequest(w http.ResponseWriter, r *http.Request, folder storage.Folder) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Sessions *auth.SessionResolver
	Images   ImageStore
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, sessions *auth.SessionResolver, images ImageStore) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Sessions:    sessions,
		Images:      images,
	}
}

// GetCurrentUser handles GET /users
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Me(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UserResponse{User: u})
}

// CreateUser registers an account and signs it in.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, session, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.Sessions.SetCookie(w, session.Token, session.ExpiresAt)
	h.WriteJSON(w, http.StatusOK, UserResponse{User: u})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var dto UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UserResponse{User: u})
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var dto UpdatePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.UpdatePassword(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Identity(r); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	name, err := h.Images.FromRequest(w, r, storage.FolderUsers)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UploadResponse{Hash: name})
}

func (h *Handler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	companies, err := h.Service.Companies(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CompaniesResponse{Companies: companies})
}

func (h *Handler) TouchLastAccess(w http.ResponseWriter, r *http.Request) {
	h.companyAction(w, r, h.Service.TouchLastAccess)
}

func (h *Handler) GetInvites(w http.ResponseWriter, r *http.Request) {
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	invites, err := h.Service.Invites(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, InvitesResponse{Invites: invites})
}

func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	h.companyAction(w, r, h.Service.AcceptInvite)
}

func (h *Handler) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	h.companyAction(w, r, h.Service.DeclineInvite)
}

func (h *Handler) companyAction(w http.ResponseWriter, r *http.Request, action func(context.Context, internal.Identity, CompanyRefDTO) error) {
	var dto CompanyRefDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := action(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
