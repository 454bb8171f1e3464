package models

import (
	"strings"

	dErrors "civreg/pkg/domain-errors"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Display returns the display-cased form used on rendered certificates.
func (s Status) Display() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s)[:1]) + string(s)[1:]
}

// ParseDecision validates a review decision. Only approved and rejected are
// decisions; pending is a creation-time state, never a review target.
func ParseDecision(raw string) (Status, error) {
	switch Status(raw) {
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "invalid decision")
	}
}
