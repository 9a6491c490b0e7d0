package report

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/transport"
)

type ServiceAPI interface {
	WeeklyHours(ctx context.Context, actor *internal.Principal, wk string) (*WeeklyHoursResponse, error)
	Stats(ctx context.Context, actor *internal.Principal, startWeek, endWeek string) (*StatsResponse, error)
	Totals(ctx context.Context, actor *internal.Principal) (*Totals, error)
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

// GetWeeklyHours handles GET /reports/weekly-hours?week=
func (h *Handler) GetWeeklyHours(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	resp, err := h.Service.WeeklyHours(r.Context(), principal, r.URL.Query().Get("week"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// GetStats handles GET /reports/stats?start_week=&end_week=
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())
	q := r.URL.Query()

	resp, err := h.Service.Stats(r.Context(), principal, q.Get("start_week"), q.Get("end_week"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.PrincipalFromContext(r.Context())

	resp, err := h.Service.Totals(r.Context(), principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
