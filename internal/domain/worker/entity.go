package worker

import (
	"time"
)

// Worker is a field-service employee who clocks time. Kiosk devices
// authenticate workers by worker code + PIN; the PIN is stored as a bcrypt
// hash and never returned to clients.
type Worker struct {
	ID         string
	CompanyID  string
	FullName   string
	WorkerCode string
	PINHash    string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
