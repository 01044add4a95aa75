package auth

import (
	"errors"
	"testing"

	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginValidationErrors(t *testing.T, req LoginRequest) map[string]string {
	t.Helper()

	err := req.Validate()
	require.Error(t, err)

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	return errs.ToMap()
}

func TestLoginRequestValidate_Valid(t *testing.T) {
	req := LoginRequest{CompanyID: "comp-1", WorkerCode: "1234-5678", PIN: "4321"}

	assert.NoError(t, req.Validate())
}

func TestLoginRequestValidate_MissingFields(t *testing.T) {
	details := loginValidationErrors(t, LoginRequest{})

	assert.Contains(t, details, "company_id")
	assert.Contains(t, details, "worker_code")
	assert.Contains(t, details, "pin")
}

func TestLoginRequestValidate_BadWorkerCodeFormat(t *testing.T) {
	for _, code := range []string{"12345678", "1234-567", "abcd-efgh", "1234 5678"} {
		details := loginValidationErrors(t, LoginRequest{
			CompanyID:  "comp-1",
			WorkerCode: code,
			PIN:        "4321",
		})

		assert.Contains(t, details, "worker_code", "code %q", code)
	}
}

func TestLoginRequestValidate_NonNumericPIN(t *testing.T) {
	details := loginValidationErrors(t, LoginRequest{
		CompanyID:  "comp-1",
		WorkerCode: "1234-5678",
		PIN:        "43a1",
	})

	assert.Contains(t, details, "pin")
}
