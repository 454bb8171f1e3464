package models

import (
	"strings"
	"time"

	dErrors "civreg/pkg/domain-errors"
)

// Application is the aggregate root of the registration lifecycle. The UID is
// both primary key and foreign key to the Identity that submitted it: at most
// one application exists per identity.
//
// Invariants:
//   - Status is always a valid Status value; creation always starts pending
//   - ArtifactRef is non-empty iff the most recent status-setting transition
//     was an approval. Rejection after approval deliberately retains the
//     reference (administrative correction may re-approve); resubmission
//     clears it because the application returns to pending
//   - PhotoRef and DocumentRef are set together by the submission path
type Application struct {
	UID         string    `json:"uid"`
	FullName    string    `json:"fullName"`
	DOB         string    `json:"dob"`
	Address     string    `json:"address"`
	PhotoRef    string    `json:"photoURL"`
	DocumentRef string    `json:"certURL"`
	Status      Status    `json:"status"`
	ArtifactRef string    `json:"qrCodeURL,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (a *Application) IsApproved() bool {
	return a.Status == StatusApproved
}

// Submission carries everything a citizen provides when applying. The dob is
// an opaque string: presence is validated, format is not parsed.
type Submission struct {
	FullName    string
	DOB         string
	Address     string
	PhotoRef    string
	DocumentRef string
}

// Validate reports every missing field at once so the caller can fix the
// whole form in one round trip.
func (s Submission) Validate() error {
	var missing []string
	if strings.TrimSpace(s.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(s.DOB) == "" {
		missing = append(missing, "dob")
	}
	if strings.TrimSpace(s.Address) == "" {
		missing = append(missing, "address")
	}
	if s.PhotoRef == "" {
		missing = append(missing, "photo")
	}
	if s.DocumentRef == "" {
		missing = append(missing, "document")
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// NewApplication creates a pending application from a validated submission.
func NewApplication(uid string, sub Submission, now time.Time) (*Application, error) {
	if uid == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject identifier cannot be empty")
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return &Application{
		UID:         uid,
		FullName:    sub.FullName,
		DOB:         sub.DOB,
		Address:     sub.Address,
		PhotoRef:    sub.PhotoRef,
		DocumentRef: sub.DocumentRef,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ApplyResubmission overwrites the personal fields and file references and
// returns the application to pending. A prior approval or rejection is
// superseded, so any stale artifact reference is cleared along with it.
func (a *Application) ApplyResubmission(sub Submission, now time.Time) {
	a.FullName = sub.FullName
	a.DOB = sub.DOB
	a.Address = sub.Address
	a.PhotoRef = sub.PhotoRef
	a.DocumentRef = sub.DocumentRef
	a.Status = StatusPending
	a.ArtifactRef = ""
	a.UpdatedAt = now
}

// ApplyEdit overwrites only the personal fields. Absent fields arrive as
// empty strings and overwrite to empty; status, file references, and the
// artifact reference are untouched.
func (a *Application) ApplyEdit(fullName, dob, address string, now time.Time) {
	a.FullName = fullName
	a.DOB = dob
	a.Address = address
	a.UpdatedAt = now
}

// ApplyApproval sets approved and binds the verification artifact. Callers
// must have generated the artifact first; approval without an artifact is a
// status/artifact mismatch.
func (a *Application) ApplyApproval(artifactRef string, now time.Time) error {
	if artifactRef == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "approval requires a verification artifact")
	}
	a.Status = StatusApproved
	a.ArtifactRef = artifactRef
	a.UpdatedAt = now
	return nil
}

// ApplyRejection sets rejected. Any transition may reject, including an
// already rejected application (no-op correction). The artifact reference is
// deliberately retained: re-approval reuses the same deterministic location.
func (a *Application) ApplyRejection(now time.Time) {
	a.Status = StatusRejected
	a.UpdatedAt = now
}
