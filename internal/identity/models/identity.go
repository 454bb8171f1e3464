package models

import (
	"time"

	dErrors "civreg/pkg/domain-errors"
)

// Role is the single mutable field of an Identity. Everyone defaults to
// citizen; only an operator provisioning path grants superuser.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleSuperuser Role = "superuser"
)

func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleSuperuser
}

// Identity is a verified subject known to the system.
//
// Invariants:
//   - UID is non-empty, externally issued, and immutable
//   - Role is always a valid Role value
//   - Identities are never deleted
type Identity struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Identity) IsSuperuser() bool {
	return i.Role == RoleSuperuser
}

func NewIdentity(uid, email string, role Role, now time.Time) (*Identity, error) {
	if uid == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject identifier cannot be empty")
	}
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return &Identity{
		UID:       uid,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
