package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/compliance"
	"github.com/fieldtrack/timeclock-backend-go/internal/handler/http/response"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/sse"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type ComplianceHandler interface {
	EvaluateEntry(w http.ResponseWriter, r *http.Request)
	EvaluateWeek(w http.ResponseWriter, r *http.Request)
	ListAlerts(w http.ResponseWriter, r *http.Request)
	AcknowledgeAlert(w http.ResponseWriter, r *http.Request)

	// SSE
	Stream(w http.ResponseWriter, r *http.Request)
}

type complianceHandlerImpl struct {
	complianceService compliance.ComplianceService
	hub               *sse.Hub
}

func NewComplianceHandler(complianceService compliance.ComplianceService, hub *sse.Hub) ComplianceHandler {
	return &complianceHandlerImpl{
		complianceService: complianceService,
		hub:               hub,
	}
}

// getCompanyIDFromContext extracts company_id from JWT context
func getCompanyIDFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if companyID, ok := claims["company_id"].(string); ok {
		return companyID
	}
	return ""
}

// EvaluateEntry implements ComplianceHandler.
func (h *complianceHandlerImpl) EvaluateEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(entryID) {
		response.BadRequest(w, "A valid time entry ID is required", nil)
		return
	}

	result, err := h.complianceService.EvaluateEntry(r.Context(), entryID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// EvaluateWeek implements ComplianceHandler.
func (h *complianceHandlerImpl) EvaluateWeek(w http.ResponseWriter, r *http.Request) {
	result, err := h.complianceService.EvaluateWeek(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListAlerts implements ComplianceHandler.
func (h *complianceHandlerImpl) ListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := compliance.AlertFilter{
		WorkerID: getStringQueryParam(r, "worker_id"),
		Severity: getStringQueryParam(r, "severity"),
		Page:     getIntQueryParam(r, "page", 1),
		Limit:    getIntQueryParam(r, "limit", 20),
	}

	result, err := h.complianceService.ListAlerts(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Alerts, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// AcknowledgeAlert implements ComplianceHandler.
func (h *complianceHandlerImpl) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(alertID) {
		response.BadRequest(w, "A valid alert ID is required", nil)
		return
	}

	if err := h.complianceService.AcknowledgeAlert(r.Context(), alertID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Alert acknowledged", nil)
}

// Stream handles SSE connection for real-time compliance alerts. The token
// arrives as a query parameter because EventSource cannot set headers.
func (h *complianceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	companyID := getCompanyIDFromContext(r)
	if companyID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(companyID)
	defer cleanup()

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"company_id\":\"%s\"}\n\n", companyID)
	flusher.Flush()

	// Stream events
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			// Send keepalive ping
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
