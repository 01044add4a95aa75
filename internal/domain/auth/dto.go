package auth

import (
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	CompanyID  string `json:"company_id"`
	WorkerCode string `json:"worker_code"`
	PIN        string `json:"pin"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_id",
			Message: "company_id is required",
		})
	}
	if validator.IsEmpty(r.WorkerCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_code",
			Message: "worker_code is required",
		})
	} else if !validator.IsValidWorkerCode(r.WorkerCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_code",
			Message: "worker_code must match the badge format 0000-0000",
		})
	}
	if validator.IsEmpty(r.PIN) {
		errs = append(errs, validator.ValidationError{
			Field:   "pin",
			Message: "pin is required",
		})
	} else if !validator.IsNumeric(r.PIN) {
		errs = append(errs, validator.ValidationError{
			Field:   "pin",
			Message: "pin must contain digits only",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
	WorkerID    string `json:"worker_id"`
	WorkerName  string `json:"worker_name"`
}
