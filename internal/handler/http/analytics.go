package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-insight-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AnalyticsHandler interface {
	GetKPI(w http.ResponseWriter, r *http.Request)
	GetHourlyActivity(w http.ResponseWriter, r *http.Request)
	GetTopWorkload(w http.ResponseWriter, r *http.Request)
	GetLatestLocations(w http.ResponseWriter, r *http.Request)
	ListExceptions(w http.ResponseWriter, r *http.Request)
	GetShiftHistory(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
}

type analyticsHandlerImpl struct {
	analyticsService punch.AnalyticsService
	refreshService   punch.RefreshService
}

func NewAnalyticsHandler(analyticsService punch.AnalyticsService, refreshService punch.RefreshService) AnalyticsHandler {
	return &analyticsHandlerImpl{
		analyticsService: analyticsService,
		refreshService:   refreshService,
	}
}

// GetKPI implements AnalyticsHandler.
func (h *analyticsHandlerImpl) GetKPI(w http.ResponseWriter, r *http.Request) {
	filter := punch.DashboardFilter{
		Date: r.URL.Query().Get("date"),
	}

	result, err := h.analyticsService.KPISnapshot(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetHourlyActivity implements AnalyticsHandler.
func (h *analyticsHandlerImpl) GetHourlyActivity(w http.ResponseWriter, r *http.Request) {
	// An absent end_hour means the rest of the day; an explicit end_hour=0
	// keeps only the midnight bucket.
	filter := punch.HourlyFilter{
		Date:    r.URL.Query().Get("date"),
		EndHour: 23,
	}
	if v := r.URL.Query().Get("start_hour"); v != "" {
		hour, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "start_hour must be a number", nil)
			return
		}
		filter.StartHour = hour
	}
	if v := r.URL.Query().Get("end_hour"); v != "" {
		hour, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "end_hour must be a number", nil)
			return
		}
		filter.EndHour = hour
	}

	result, err := h.analyticsService.HourlyActivity(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetTopWorkload implements AnalyticsHandler.
func (h *analyticsHandlerImpl) GetTopWorkload(w http.ResponseWriter, r *http.Request) {
	filter := punch.WorkloadFilter{
		Date: r.URL.Query().Get("date"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "limit must be a number", nil)
			return
		}
		filter.Limit = limit
	}

	result, err := h.analyticsService.TopWorkload(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetLatestLocations implements AnalyticsHandler.
func (h *analyticsHandlerImpl) GetLatestLocations(w http.ResponseWriter, r *http.Request) {
	filter := punch.DashboardFilter{
		Date: r.URL.Query().Get("date"),
	}

	result, err := h.analyticsService.LatestLocations(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListExceptions implements AnalyticsHandler.
func (h *analyticsHandlerImpl) ListExceptions(w http.ResponseWriter, r *http.Request) {
	filter := punch.ExceptionFilter{
		Date: r.URL.Query().Get("date"),
	}
	if v := r.URL.Query().Get("severity"); v != "" {
		filter.Severity = &v
	}
	if v := r.URL.Query().Get("type"); v != "" {
		filter.Type = &v
	}
	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "page must be a number", nil)
			return
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "limit must be a number", nil)
			return
		}
		filter.Limit = limit
	}

	result, err := h.analyticsService.ListExceptions(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Exceptions, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: int64(result.TotalCount),
		TotalPages: result.TotalPages,
	})
}

// GetShiftHistory implements AnalyticsHandler.
func (h *analyticsHandlerImpl) GetShiftHistory(w http.ResponseWriter, r *http.Request) {
	filter := punch.ShiftHistoryFilter{
		EmployeeID: chi.URLParam(r, "employeeID"),
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}

	result, err := h.analyticsService.ShiftHistory(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Refresh implements AnalyticsHandler.
func (h *analyticsHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.refreshService.Refresh(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Source refreshed", result)
}
