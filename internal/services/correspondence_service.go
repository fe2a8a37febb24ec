package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/events"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
	"github.com/lampoon-ads/backend/internal/repositories"
	"go.uber.org/zap"
)

type CorrespondenceService struct {
	correspondence CorrespondenceStore
	advertisers    AdvertiserStore
	lifecycle      *Lifecycle
	log            *zap.Logger
}

func NewCorrespondenceService(
	correspondence CorrespondenceStore,
	advertisers AdvertiserStore,
	lifecycle *Lifecycle,
	log *zap.Logger,
) *CorrespondenceService {
	return &CorrespondenceService{
		correspondence: correspondence,
		advertisers:    advertisers,
		lifecycle:      lifecycle,
		log:            log,
	}
}

func (s *CorrespondenceService) List(ctx context.Context, f repositories.CorrespondenceFilter) ([]models.Correspondence, error) {
	return s.correspondence.List(ctx, f)
}

func (s *CorrespondenceService) Get(ctx context.Context, id uuid.UUID) (*models.Correspondence, error) {
	c, err := s.correspondence.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "correspondence")
	}
	return c, nil
}

// Create logs a communication entered by staff.
func (s *CorrespondenceService) Create(ctx context.Context, actor rbac.Actor, c *models.Correspondence) error {
	owner, err := s.advertisers.GetByID(ctx, c.AdvertiserID)
	if err != nil {
		return wrap(err, "advertiser")
	}
	if !rbac.Allowed(actor, rbac.ActionCreate, rbac.CorrespondenceSubject(owner)) {
		return ErrForbidden
	}
	if err := c.Validate(); err != nil {
		return wrap(err, "correspondence")
	}
	if err := s.correspondence.Create(ctx, c); err != nil {
		return wrap(err, "create correspondence")
	}

	s.lifecycle.entity(ctx, actor, models.EntityCorrespondence, models.VerbCreated, &c.ID, nil)
	s.lifecycle.publish(ctx, events.EventCorrespondence, map[string]any{
		"correspondence_id": c.ID.String(),
		"advertiser_id":     c.AdvertiserID.String(),
		"title":             c.Title(),
	})
	return nil
}

// SetReceptive is the only edit allowed on a logged communication.
func (s *CorrespondenceService) SetReceptive(ctx context.Context, actor rbac.Actor, id uuid.UUID, receptive *int) (*models.Correspondence, error) {
	c, err := s.correspondence.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "correspondence")
	}
	owner, err := s.advertisers.GetByID(ctx, c.AdvertiserID)
	if err != nil {
		return nil, wrap(err, "advertiser")
	}
	if !rbac.Allowed(actor, rbac.ActionUpdate, rbac.CorrespondenceSubject(owner)) {
		return nil, ErrForbidden
	}
	if err := models.ValidReceptive(receptive); err != nil {
		return nil, wrap(err, "correspondence")
	}
	if err := s.correspondence.UpdateReceptive(ctx, id, receptive); err != nil {
		return nil, wrap(err, "correspondence")
	}
	c.Receptive = receptive

	s.lifecycle.entity(ctx, actor, models.EntityCorrespondence, models.VerbUpdated, &id, map[string]any{"receptive": receptive})
	return c, nil
}

func (s *CorrespondenceService) Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	c, err := s.correspondence.GetByID(ctx, id)
	if err != nil {
		return wrap(err, "correspondence")
	}
	owner, err := s.advertisers.GetByID(ctx, c.AdvertiserID)
	if err != nil {
		return wrap(err, "advertiser")
	}
	if !rbac.CanDelete(actor, rbac.CorrespondenceSubject(owner)) {
		return ErrForbidden
	}
	if err := s.correspondence.Delete(ctx, id); err != nil {
		return wrap(err, "correspondence")
	}
	s.lifecycle.entity(ctx, actor, models.EntityCorrespondence, models.VerbDeleted, &id, nil)
	return nil
}
