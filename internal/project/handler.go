package project

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]ProjectResponse, error)
	Get(ctx context.Context, id string) (*ProjectResponse, error)
	Create(ctx context.Context, actor *internal.Principal, dto CreateProjectDTO) (*ProjectResponse, error)
	Delete(ctx context.Context, actor *internal.Principal, id string, confirmer internal.Confirmer) error
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

func (h *Handler) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ProjectsResponse{
		Projects: projects,
	})
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	var dto CreateProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.Create(r.Context(), principal, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(r.Context(), principal, id, transport.RequestConfirmer(r)); err != nil {
		h.Log(r).Info("DeleteProject: not deleted", "project_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
