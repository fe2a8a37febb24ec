package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/events"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
	"github.com/lampoon-ads/backend/internal/repositories"
	"github.com/lampoon-ads/backend/internal/workflow"
	"go.uber.org/zap"
)

type AdvertService struct {
	tx          Transactor
	adverts     AdvertStore
	advertisers AdvertiserStore
	issues      IssueStore
	lifecycle   *Lifecycle
	policy      workflow.PaidUpdatePolicy
	log         *zap.Logger
}

func NewAdvertService(
	tx Transactor,
	adverts AdvertStore,
	advertisers AdvertiserStore,
	issues IssueStore,
	lifecycle *Lifecycle,
	policy workflow.PaidUpdatePolicy,
	log *zap.Logger,
) *AdvertService {
	return &AdvertService{
		tx:          tx,
		adverts:     adverts,
		advertisers: advertisers,
		issues:      issues,
		lifecycle:   lifecycle,
		policy:      policy,
		log:         log,
	}
}

// AdvertInput holds the fields an advertiser controls on their own
// contract. An empty ImageFile on update keeps the stored image.
type AdvertInput struct {
	Size        string
	Description string
	ImageFile   string
	IssueIDs    []uuid.UUID
}

func (in AdvertInput) applyTo(a *models.Advert) {
	a.Size = in.Size
	a.Description = in.Description
	if in.ImageFile != "" {
		a.ImageFile = in.ImageFile
	}
	a.IssueIDs = in.IssueIDs
}

// usable enforces the registration gate for callers that skipped it.
func usable(profile *models.Advertiser) error {
	switch {
	case profile == nil:
		return ErrNoProfile
	case !profile.Approved:
		return ErrNotApproved
	}
	return nil
}

func (s *AdvertService) ListMine(ctx context.Context, profile *models.Advertiser, limit, offset int) ([]models.AdvertWithAdvertiser, error) {
	if err := usable(profile); err != nil {
		return nil, err
	}
	return s.adverts.List(ctx, repositories.AdvertFilter{AdvertiserID: &profile.ID, Limit: limit, Offset: offset})
}

func (s *AdvertService) CreateMine(ctx context.Context, user *models.User, profile *models.Advertiser, in AdvertInput) (*models.Advert, error) {
	if err := usable(profile); err != nil {
		return nil, err
	}
	a := &models.Advert{AdvertiserID: profile.ID}
	in.applyTo(a)
	if err := s.create(ctx, rbac.ActorFor(user), a, profile); err != nil {
		return nil, err
	}
	return a, nil
}

// GetMine reports adverts of other advertisers as not found.
func (s *AdvertService) GetMine(ctx context.Context, profile *models.Advertiser, id uuid.UUID) (*models.Advert, error) {
	if err := usable(profile); err != nil {
		return nil, err
	}
	a, err := s.adverts.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "advert")
	}
	if a.AdvertiserID != profile.ID {
		return nil, wrap(repositories.ErrNotFound, "advert")
	}
	return a, nil
}

func (s *AdvertService) UpdateMine(ctx context.Context, user *models.User, profile *models.Advertiser, id uuid.UUID, in AdvertInput) (*models.Advert, error) {
	if err := usable(profile); err != nil {
		return nil, err
	}
	var (
		saved *models.Advert
		ns    []workflow.Notification
	)
	actor := rbac.ActorFor(user)

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		prior, err := s.adverts.GetForUpdate(ctx, id)
		if err != nil {
			return wrap(err, "advert")
		}
		if prior.AdvertiserID != profile.ID {
			return wrap(repositories.ErrNotFound, "advert")
		}

		next := *prior
		in.applyTo(&next)
		if err := s.write(ctx, &next); err != nil {
			return err
		}
		s.lifecycle.entity(ctx, actor, models.EntityAdvert, models.VerbUpdated, &next.ID, nil)
		ns = workflow.AdvertSaved(prior, &next, profile, s.policy)
		saved = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterSave(ctx, saved, ns)
	return saved, nil
}

func (s *AdvertService) List(ctx context.Context, f repositories.AdvertFilter) ([]models.AdvertWithAdvertiser, error) {
	return s.adverts.List(ctx, f)
}

func (s *AdvertService) Get(ctx context.Context, id uuid.UUID) (*models.Advert, error) {
	a, err := s.adverts.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "advert")
	}
	return a, nil
}

// Create saves a staff-entered advert with every field.
func (s *AdvertService) Create(ctx context.Context, actor rbac.Actor, a *models.Advert) error {
	owner, err := s.advertisers.GetByID(ctx, a.AdvertiserID)
	if err != nil {
		return wrap(err, "advertiser")
	}
	return s.create(ctx, actor, a, owner)
}

func (s *AdvertService) create(ctx context.Context, actor rbac.Actor, a *models.Advert, owner *models.Advertiser) error {
	if !rbac.Allowed(actor, rbac.ActionCreate, rbac.AdvertSubject(owner)) {
		return ErrForbidden
	}

	var ns []workflow.Notification
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := a.Validate(); err != nil {
			return wrap(err, "advert")
		}
		if err := s.checkIssues(ctx, a.IssueIDs); err != nil {
			return err
		}
		if err := s.adverts.Create(ctx, a); err != nil {
			return wrap(err, "create advert")
		}
		s.lifecycle.entity(ctx, actor, models.EntityAdvert, models.VerbCreated, &a.ID, map[string]any{"paid": a.Paid})
		ns = workflow.AdvertSaved(nil, a, owner, s.policy)
		return nil
	})
	if err != nil {
		return err
	}

	s.afterSave(ctx, a, ns)
	return nil
}

// Update writes a over the stored advert with the same id. Permission
// follows the stored advert's advertiser; the email goes to the new one.
func (s *AdvertService) Update(ctx context.Context, actor rbac.Actor, a *models.Advert) error {
	var ns []workflow.Notification
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		prior, err := s.adverts.GetForUpdate(ctx, a.ID)
		if err != nil {
			return wrap(err, "advert")
		}
		priorOwner, err := s.advertisers.GetByID(ctx, prior.AdvertiserID)
		if err != nil {
			return wrap(err, "advertiser")
		}
		if !rbac.Allowed(actor, rbac.ActionUpdate, rbac.AdvertSubject(priorOwner)) {
			return ErrForbidden
		}

		owner := priorOwner
		if a.AdvertiserID != prior.AdvertiserID {
			if owner, err = s.advertisers.GetByID(ctx, a.AdvertiserID); err != nil {
				return wrap(err, "advertiser")
			}
		}
		if a.ImageFile == "" {
			a.ImageFile = prior.ImageFile
		}
		a.CreatedAt = prior.CreatedAt

		if err := s.write(ctx, a); err != nil {
			return err
		}
		s.lifecycle.entity(ctx, actor, models.EntityAdvert, models.VerbUpdated, &a.ID, map[string]any{"paid": a.Paid})
		ns = workflow.AdvertSaved(prior, a, owner, s.policy)
		return nil
	})
	if err != nil {
		return err
	}

	s.afterSave(ctx, a, ns)
	return nil
}

func (s *AdvertService) write(ctx context.Context, a *models.Advert) error {
	if err := a.Validate(); err != nil {
		return wrap(err, "advert")
	}
	if err := s.checkIssues(ctx, a.IssueIDs); err != nil {
		return err
	}
	if err := s.adverts.Update(ctx, a); err != nil {
		return wrap(err, "update advert")
	}
	return nil
}

func (s *AdvertService) Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.adverts.GetForUpdate(ctx, id)
		if err != nil {
			return wrap(err, "advert")
		}
		owner, err := s.advertisers.GetByID(ctx, a.AdvertiserID)
		if err != nil {
			return wrap(err, "advertiser")
		}
		if !rbac.CanDelete(actor, rbac.AdvertSubject(owner)) {
			return ErrForbidden
		}
		if err := s.adverts.Delete(ctx, id); err != nil {
			return wrap(err, "delete advert")
		}
		s.lifecycle.entity(ctx, actor, models.EntityAdvert, models.VerbDeleted, &id, nil)
		return nil
	})
	if err != nil {
		return err
	}

	s.lifecycle.publish(ctx, events.EventAdvertDeleted, map[string]any{"advert_id": id.String()})
	return nil
}

// checkIssues requires ids to be distinct existing issues.
func (s *AdvertService) checkIssues(ctx context.Context, ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return invalid("issue %s listed twice", id)
		}
		seen[id] = true
	}
	n, err := s.issues.CountExisting(ctx, ids)
	if err != nil {
		return wrap(err, "issues")
	}
	if n != len(ids) {
		return invalid("%d of %d issues do not exist", len(ids)-n, len(ids))
	}
	return nil
}

func (s *AdvertService) afterSave(ctx context.Context, a *models.Advert, ns []workflow.Notification) {
	s.lifecycle.publish(ctx, events.EventAdvertSaved, map[string]any{
		"advert_id":     a.ID.String(),
		"advertiser_id": a.AdvertiserID.String(),
		"paid":          a.Paid,
	})
	s.lifecycle.dispatch(ctx, ns)
}
