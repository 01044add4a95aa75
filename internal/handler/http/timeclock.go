package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
	"github.com/fieldtrack/timeclock-backend-go/internal/handler/http/response"
)

type TimeClockHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	WaiveMealBreak(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	ListMyEntries(w http.ResponseWriter, r *http.Request)
}

type timeClockHandlerImpl struct {
	timeClockService timeclock.TimeClockService
}

func NewTimeClockHandler(timeClockService timeclock.TimeClockService) TimeClockHandler {
	return &timeClockHandlerImpl{
		timeClockService: timeClockService,
	}
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getStringQueryParam gets a string query parameter as a pointer, nil when absent
func getStringQueryParam(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}

// ClockIn implements TimeClockHandler.
func (h *timeClockHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req timeclock.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.timeClockService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements TimeClockHandler.
func (h *timeClockHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req timeclock.ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.timeClockService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// StartBreak implements TimeClockHandler.
func (h *timeClockHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	var req timeclock.StartBreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.timeClockService.StartBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break started", result)
}

// EndBreak implements TimeClockHandler.
func (h *timeClockHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	result, err := h.timeClockService.EndBreak(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break ended", result)
}

// WaiveMealBreak implements TimeClockHandler.
func (h *timeClockHandlerImpl) WaiveMealBreak(w http.ResponseWriter, r *http.Request) {
	result, err := h.timeClockService.WaiveMealBreak(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Meal break waived", result)
}

// Status implements TimeClockHandler.
func (h *timeClockHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.timeClockService.GetStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListMyEntries implements TimeClockHandler.
func (h *timeClockHandlerImpl) ListMyEntries(w http.ResponseWriter, r *http.Request) {
	filter := timeclock.EntryFilter{
		StartDate: getStringQueryParam(r, "start_date"),
		EndDate:   getStringQueryParam(r, "end_date"),
		Status:    getStringQueryParam(r, "status"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 20),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}

	result, err := h.timeClockService.ListMyEntries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Entries, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}
