package entry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/export"
	"github.com/frahmantamala/timesheet/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor *internal.Principal, dto CreateEntryDTO) (*CreateEntryResponse, error)
	Approve(ctx context.Context, actor *internal.Principal, id string) (*EntryResponse, error)
	Reject(ctx context.Context, actor *internal.Principal, id string) (*EntryResponse, error)
	Delete(ctx context.Context, actor *internal.Principal, id string, confirmer internal.Confirmer) error
	ListMine(ctx context.Context, actor *internal.Principal) ([]timesheet.Entry, error)
	ListFiltered(ctx context.Context, actor *internal.Principal, f Filter) ([]timesheet.Entry, error)
	ListPending(ctx context.Context, actor *internal.Principal) ([]timesheet.Entry, error)
	ExportSet(ctx context.Context, actor *internal.Principal, f Filter) ([]timesheet.Entry, error)
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

func filterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	return Filter{
		ProjectID: q.Get("project"),
		UserEmail: q.Get("user"),
		Status:    q.Get("status"),
	}
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	var dto CreateEntryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Log(r).Warn("CreateEntry: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Create(r.Context(), principal, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetMyEntries(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	entries, err := h.Service.ListMine(r.Context(), principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponses(entries))
}

// GetEntries handles GET /entries?project=&user=&status=
func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	entries, err := h.Service.ListFiltered(r.Context(), principal, filterFromQuery(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponses(entries))
}

func (h *Handler) GetPendingEntries(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	entries, err := h.Service.ListPending(r.Context(), principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponses(entries))
}

func (h *Handler) ApproveEntry(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	e, err := h.Service.Approve(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) RejectEntry(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	e, err := h.Service.Reject(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(r.Context(), principal, id, transport.RequestConfirmer(r)); err != nil {
		h.Log(r).Info("DeleteEntry: not deleted", "entry_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportEntries handles GET /entries/export and streams the CSV file.
func (h *Handler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	entries, err := h.Service.ExportSet(r.Context(), principal, filterFromQuery(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	body := export.Format(entries)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.Log(r).Error("ExportEntries: failed to write body", "error", err)
	}
}
