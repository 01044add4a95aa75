package timeclock

import (
	"strings"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/attestation"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/validator"
)

// ========================================
// TIME CLOCK DTOs
// ========================================

// LocationPayload is the wire form of a geolocation snapshot. Coordinates are
// captured by the device; the engine only validates ranges and stores them.
type LocationPayload struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AccuracyMeters *float64 `json:"accuracy_meters,omitempty"`
	CapturedAt     string   `json:"captured_at"` // ISO-8601 with timezone
}

func (l *LocationPayload) validate(errs validator.ValidationErrors, field string) validator.ValidationErrors {
	if l.Latitude < -90 || l.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   field + ".latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   field + ".longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	if l.CapturedAt != "" {
		if _, ok := validator.IsValidDateTime(l.CapturedAt); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".captured_at",
				Message: "captured_at must be an ISO-8601 timestamp with timezone",
			})
		}
	}
	return errs
}

// ToLocation converts the payload to the domain snapshot. Call only after
// Validate has passed.
func (l *LocationPayload) ToLocation() *Location {
	capturedAt := time.Now().UTC()
	if l.CapturedAt != "" {
		if t, ok := validator.IsValidDateTime(l.CapturedAt); ok {
			capturedAt = t
		}
	}
	return &Location{
		Latitude:       l.Latitude,
		Longitude:      l.Longitude,
		AccuracyMeters: l.AccuracyMeters,
		CapturedAt:     capturedAt,
	}
}

type ClockInRequest struct {
	JobID    *string          `json:"job_id,omitempty"`
	Location *LocationPayload `json:"location,omitempty"`
	PhotoRef *string          `json:"photo_ref,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.JobID != nil && validator.IsEmpty(*r.JobID) {
		errs = append(errs, validator.ValidationError{
			Field:   "job_id",
			Message: "job_id must not be blank when provided",
		})
	}

	if r.Location != nil {
		errs = r.Location.validate(errs, "location")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StartBreakRequest struct {
	BreakType string `json:"break_type"`
}

func (r *StartBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(strings.ToLower(r.BreakType), []string{string(BreakTypeMeal), string(BreakTypeRest)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "break_type",
			Message: "break_type must be one of: meal, rest",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClockOutRequest struct {
	Location    *LocationPayload     `json:"location,omitempty"`
	PhotoRef    *string              `json:"photo_ref,omitempty"`
	Attestation *attestation.Payload `json:"attestation,omitempty"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Location != nil {
		errs = r.Location.validate(errs, "location")
	}

	// Attestation presence is a state-machine precondition
	// (ErrAttestationRequired), and its contents are validated by the
	// attestation workflow itself, so neither is checked here.

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LocationResponse struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AccuracyMeters *float64 `json:"accuracy_meters,omitempty"`
	CapturedAt     string   `json:"captured_at"`
}

type BreakResponse struct {
	ID         string  `json:"id"`
	BreakType  string  `json:"break_type"`
	BreakStart string  `json:"break_start"`
	BreakEnd   *string `json:"break_end,omitempty"`
	Waived     bool    `json:"waived"`
}

type TimeEntryResponse struct {
	ID                   string            `json:"id"`
	WorkerID             string            `json:"worker_id"`
	JobID                *string           `json:"job_id,omitempty"`
	ClockIn              string            `json:"clock_in"`
	ClockOut             *string           `json:"clock_out,omitempty"`
	ClockInLocation      *LocationResponse `json:"clock_in_location,omitempty"`
	ClockOutLocation     *LocationResponse `json:"clock_out_location,omitempty"`
	ClockInPhotoRef      *string           `json:"clock_in_photo_ref,omitempty"`
	ClockOutPhotoRef     *string           `json:"clock_out_photo_ref,omitempty"`
	BreakMinutesAccrued  int               `json:"break_minutes_accrued"`
	HoursWorked          float64           `json:"hours_worked"`
	Status               string            `json:"status"`
	AttestationCompleted bool              `json:"attestation_completed"`
	AttestationAt        *string           `json:"attestation_at,omitempty"`
	MissedMealBreak      bool              `json:"missed_meal_break"`
	MissedRestBreak      bool              `json:"missed_rest_break"`
	Breaks               []BreakResponse   `json:"breaks,omitempty"`
}

// EntryStatusResponse summarizes the worker's current clock state for the
// mobile client.
type EntryStatusResponse struct {
	HasActiveEntry bool               `json:"has_active_entry"`
	ActiveEntry    *TimeEntryResponse `json:"active_entry,omitempty"`
	OnBreak        bool               `json:"on_break"`
	CanClockIn     bool               `json:"can_clock_in"`
	CanClockOut    bool               `json:"can_clock_out"`
}

type EntryFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // clock_in, clock_out, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *EntryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil {
		validStatuses := []string{string(StatusActive), string(StatusCompleted), string(StatusEdited)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: active, completed, edited",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"clock_in", "clock_out", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: clock_in, clock_out, status",
			})
		}
	} else {
		f.SortBy = "clock_in" // Default sort
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListEntriesResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Entries    []TimeEntryResponse `json:"entries"`
}
