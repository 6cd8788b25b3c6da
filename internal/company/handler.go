package company

import (
	"context"
	"net/http"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/storage"
	"github.com/frahmantamala/mastersight/internal/transport"
)

type ServiceAPI interface {
	Get(ctx context.Context, id internal.Identity, companyID int64) (*Details, error)
	Update(ctx context.Context, id internal.Identity, dto UpdateCompanyDTO) (*Company, error)
}

type ImageStore interface {
	FromRequest(w http.ResponseWriter, r *http.Request, folder storage.Folder) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Images  ImageStore
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, images ImageStore) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Images:      images,
	}
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	companyID, err := h.QueryInt64(r, "id", ErrInvalidID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	details, err := h.Service.Get(r.Context(), id, companyID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DetailsResponse{Company: details})
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var dto UpdateCompanyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.Identity(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CompanyResponse{Company: c})
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Identity(r); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	name, err := h.Images.FromRequest(w, r, storage.FolderCompanies)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UploadResponse{Hash: name})
}
