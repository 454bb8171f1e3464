package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civreg/pkg/domain-errors"
)

func validSubmission() Submission {
	return Submission{
		FullName:    "Ada Lovelace",
		DOB:         "1815-12-10",
		Address:     "12 St James's Square, London",
		PhotoRef:    "uploads/photo_u1_abc.png",
		DocumentRef: "uploads/document_u1_def.pdf",
	}
}

func TestSubmissionValidate(t *testing.T) {
	t.Run("valid submission passes", func(t *testing.T) {
		require.NoError(t, validSubmission().Validate())
	})

	t.Run("reports all missing fields at once", func(t *testing.T) {
		err := Submission{}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "missing required fields: fullName, dob, address, photo, document", err.Error())
	})

	t.Run("whitespace-only text fields count as missing", func(t *testing.T) {
		sub := validSubmission()
		sub.FullName = "   "
		err := sub.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fullName")
	})
}

func TestNewApplication(t *testing.T) {
	now := time.Now()

	app, err := NewApplication("u1", validSubmission(), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, app.Status)
	assert.Empty(t, app.ArtifactRef)
	assert.Equal(t, now, app.CreatedAt)

	_, err = NewApplication("", validSubmission(), now)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestApplyResubmission(t *testing.T) {
	now := time.Now()
	app, err := NewApplication("u1", validSubmission(), now)
	require.NoError(t, err)
	require.NoError(t, app.ApplyApproval("static/qr_codes/u1.png", now))

	later := now.Add(time.Hour)
	next := validSubmission()
	next.FullName = "Ada King"
	next.PhotoRef = "uploads/photo_u1_new.png"
	app.ApplyResubmission(next, later)

	assert.Equal(t, StatusPending, app.Status)
	assert.Empty(t, app.ArtifactRef, "resubmission must clear the stale artifact reference")
	assert.Equal(t, "Ada King", app.FullName)
	assert.Equal(t, "uploads/photo_u1_new.png", app.PhotoRef)
	assert.Equal(t, later, app.UpdatedAt)
	assert.Equal(t, now, app.CreatedAt)
}

func TestApplyEdit(t *testing.T) {
	now := time.Now()
	app, err := NewApplication("u1", validSubmission(), now)
	require.NoError(t, err)
	require.NoError(t, app.ApplyApproval("static/qr_codes/u1.png", now))

	app.ApplyEdit("New Name", "", "New Address", now.Add(time.Minute))

	assert.Equal(t, "New Name", app.FullName)
	assert.Empty(t, app.DOB, "absent fields overwrite to empty")
	assert.Equal(t, "New Address", app.Address)
	assert.Equal(t, StatusApproved, app.Status, "edit must not touch status")
	assert.NotEmpty(t, app.ArtifactRef, "edit must not touch the artifact reference")
	assert.Equal(t, "uploads/photo_u1_abc.png", app.PhotoRef, "edit must not touch file references")
}

func TestApplyApproval(t *testing.T) {
	now := time.Now()
	app, err := NewApplication("u1", validSubmission(), now)
	require.NoError(t, err)

	err = app.ApplyApproval("", now)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Equal(t, StatusPending, app.Status, "failed approval must not change status")

	require.NoError(t, app.ApplyApproval("static/qr_codes/u1.png", now))
	assert.True(t, app.IsApproved())
	assert.Equal(t, "static/qr_codes/u1.png", app.ArtifactRef)

	// Re-approval of an approved application is a valid no-op correction.
	require.NoError(t, app.ApplyApproval("static/qr_codes/u1.png", now.Add(time.Minute)))
	assert.True(t, app.IsApproved())
}

func TestApplyRejection(t *testing.T) {
	now := time.Now()
	app, err := NewApplication("u1", validSubmission(), now)
	require.NoError(t, err)
	require.NoError(t, app.ApplyApproval("static/qr_codes/u1.png", now))

	app.ApplyRejection(now.Add(time.Minute))

	assert.Equal(t, StatusRejected, app.Status)
	assert.Equal(t, "static/qr_codes/u1.png", app.ArtifactRef,
		"rejection after approval retains the artifact reference")

	// Rejecting twice is a valid correction path.
	app.ApplyRejection(now.Add(2 * time.Minute))
	assert.Equal(t, StatusRejected, app.Status)
}

func TestParseDecision(t *testing.T) {
	for raw, want := range map[string]Status{"approved": StatusApproved, "rejected": StatusRejected} {
		got, err := ParseDecision(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, raw := range []string{"", "pending", "Approved", "APPROVED", "done"} {
		_, err := ParseDecision(raw)
		require.Error(t, err, "decision %q must be rejected", raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

func TestStatusDisplay(t *testing.T) {
	assert.Equal(t, "Pending", StatusPending.Display())
	assert.Equal(t, "Approved", StatusApproved.Display())
	assert.Equal(t, "Rejected", StatusRejected.Display())
	assert.Equal(t, "", Status("").Display())
}
