package compliance

import "errors"

var (
	ErrAlertNotFound       = errors.New("compliance alert not found")
	ErrAlreadyAcknowledged = errors.New("compliance alert has already been acknowledged")
)
