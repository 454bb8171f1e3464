package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civreg/internal/application/models"
	"civreg/pkg/platform/sentinel"
)

type ApplicationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ApplicationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestApplicationStoreSuite(t *testing.T) {
	suite.Run(t, new(ApplicationStoreSuite))
}

func (s *ApplicationStoreSuite) newApplication(uid string, createdAt time.Time) *models.Application {
	return &models.Application{
		UID:         uid,
		FullName:    "Applicant " + uid,
		DOB:         "1990-01-01",
		Address:     "1 Main St",
		PhotoRef:    "uploads/photo_" + uid + ".png",
		DocumentRef: "uploads/document_" + uid + ".pdf",
		Status:      models.StatusPending,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func (s *ApplicationStoreSuite) TestUpsertAndFind() {
	s.Run("finds stored application", func() {
		app := s.newApplication("u1", time.Now())
		s.Require().NoError(s.store.Upsert(s.ctx, app))

		found, err := s.store.FindByUID(s.ctx, "u1")
		s.Require().NoError(err)
		s.Equal(app.FullName, found.FullName)
	})

	s.Run("returns ErrNotFound for unknown uid", func() {
		_, err := s.store.FindByUID(s.ctx, "missing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("upsert replaces the existing record", func() {
		app := s.newApplication("u2", time.Now())
		s.Require().NoError(s.store.Upsert(s.ctx, app))

		app.FullName = "Renamed"
		s.Require().NoError(s.store.Upsert(s.ctx, app))

		found, err := s.store.FindByUID(s.ctx, "u2")
		s.Require().NoError(err)
		s.Equal("Renamed", found.FullName)
	})

	s.Run("returned record is a copy", func() {
		app := s.newApplication("u3", time.Now())
		s.Require().NoError(s.store.Upsert(s.ctx, app))

		found, err := s.store.FindByUID(s.ctx, "u3")
		s.Require().NoError(err)
		found.FullName = "mutated"

		again, err := s.store.FindByUID(s.ctx, "u3")
		s.Require().NoError(err)
		s.Equal("Applicant u3", again.FullName)
	})
}

func (s *ApplicationStoreSuite) TestList() {
	base := time.Now()
	s.Require().NoError(s.store.Upsert(s.ctx, s.newApplication("b", base.Add(time.Second))))
	s.Require().NoError(s.store.Upsert(s.ctx, s.newApplication("a", base.Add(2*time.Second))))
	s.Require().NoError(s.store.Upsert(s.ctx, s.newApplication("c", base)))

	apps, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(apps, 3)
	s.Equal("c", apps[0].UID)
	s.Equal("b", apps[1].UID)
	s.Equal("a", apps[2].UID)
}

func (s *ApplicationStoreSuite) TestExecute() {
	s.Run("commits on success", func() {
		s.Require().NoError(s.store.Upsert(s.ctx, s.newApplication("u1", time.Now())))

		updated, err := s.store.Execute(s.ctx, "u1", func(app *models.Application) error {
			app.Status = models.StatusApproved
			app.ArtifactRef = "static/qr_codes/u1.png"
			return nil
		})
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, updated.Status)

		found, err := s.store.FindByUID(s.ctx, "u1")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, found.Status)
	})

	s.Run("discards the whole mutation when fn fails", func() {
		s.Require().NoError(s.store.Upsert(s.ctx, s.newApplication("u2", time.Now())))

		boom := errors.New("artifact generation failed")
		_, err := s.store.Execute(s.ctx, "u2", func(app *models.Application) error {
			app.Status = models.StatusApproved
			app.ArtifactRef = "static/qr_codes/u2.png"
			return boom
		})
		s.Require().ErrorIs(err, boom)

		found, err := s.store.FindByUID(s.ctx, "u2")
		s.Require().NoError(err)
		s.Equal(models.StatusPending, found.Status)
		s.Empty(found.ArtifactRef)
	})

	s.Run("returns ErrNotFound without invoking fn", func() {
		called := false
		_, err := s.store.Execute(s.ctx, "missing", func(app *models.Application) error {
			called = true
			return nil
		})
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		s.False(called)
	})
}
