package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/events"
	"github.com/lampoon-ads/backend/internal/metrics"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
	"github.com/lampoon-ads/backend/internal/repositories"
	"github.com/lampoon-ads/backend/internal/workflow"
	"go.uber.org/zap"
)

type AdvertiserService struct {
	tx             Transactor
	advertisers    AdvertiserStore
	users          UserStore
	adverts        AdvertStore
	correspondence CorrespondenceStore
	lifecycle      *Lifecycle
	metrics        *metrics.Metrics
	log            *zap.Logger
}

func NewAdvertiserService(
	tx Transactor,
	advertisers AdvertiserStore,
	users UserStore,
	adverts AdvertStore,
	correspondence CorrespondenceStore,
	lifecycle *Lifecycle,
	m *metrics.Metrics,
	log *zap.Logger,
) *AdvertiserService {
	return &AdvertiserService{
		tx:             tx,
		advertisers:    advertisers,
		users:          users,
		adverts:        adverts,
		correspondence: correspondence,
		lifecycle:      lifecycle,
		metrics:        m,
		log:            log,
	}
}

// RegistrationInput is what an advertiser may fill in about themselves.
// Approval, email and salesperson are never taken from it.
type RegistrationInput struct {
	Name      string
	Address1  string
	Address2  *string
	City      string
	State     string
	ZipCode   string
	Contact   string
	Position  string
	Telephone string
}

func (in RegistrationInput) applyTo(a *models.Advertiser) {
	a.Name = in.Name
	a.Address1 = in.Address1
	a.Address2 = in.Address2
	a.City = in.City
	a.State = in.State
	a.ZipCode = in.ZipCode
	a.Contact = in.Contact
	a.Position = in.Position
	a.Telephone = in.Telephone
}

// Register creates the user's advertiser profile, or updates its contact
// fields when one is already linked.
func (s *AdvertiserService) Register(ctx context.Context, user *models.User, in RegistrationInput) (*models.Advertiser, error) {
	var (
		saved *models.Advertiser
		ns    []workflow.Notification
	)
	actor := rbac.ActorFor(user)

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		// The caller's copy may predate a concurrent registration.
		fresh, err := s.users.GetForUpdate(ctx, user.ID)
		if err != nil {
			return wrap(err, "user")
		}
		user.AdvertiserID = fresh.AdvertiserID

		var prior *models.Advertiser
		next := &models.Advertiser{Email: user.Email}

		if user.AdvertiserID != nil {
			p, err := s.advertisers.GetForUpdate(ctx, *user.AdvertiserID)
			switch {
			case err == nil:
				prior = p
				cp := *p
				next = &cp
			case !errors.Is(err, repositories.ErrNotFound):
				return wrap(err, "advertiser")
			}
		}

		in.applyTo(next)
		next.Normalize()
		if err := next.Validate(); err != nil {
			return wrap(err, "advertiser")
		}

		if prior == nil {
			if err := s.advertisers.Create(ctx, next); err != nil {
				return wrap(err, "create advertiser")
			}
			if err := s.users.LinkAdvertiser(ctx, user.ID, next.ID); err != nil {
				return wrap(err, "link advertiser")
			}
			user.AdvertiserID = &next.ID
		} else if err := s.advertisers.Update(ctx, next); err != nil {
			return wrap(err, "update advertiser")
		}

		if user.FillNameFromContact(next.Contact) {
			if err := s.users.UpdateName(ctx, user.ID, user.FirstName, user.LastName); err != nil {
				return wrap(err, "update user name")
			}
		}

		s.lifecycle.entity(ctx, actor, models.EntityAdvertiser, savedVerb(prior), &next.ID, nil)
		ns = workflow.AdvertiserSaved(prior, next)
		saved = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterSave(ctx, saved, ns)
	return saved, nil
}

// Profile returns the user's advertiser, nil when none is linked, and
// the gate outcome for it.
func (s *AdvertiserService) Profile(ctx context.Context, user *models.User) (*models.Advertiser, rbac.GateOutcome, error) {
	if user == nil || user.AdvertiserID == nil {
		return nil, rbac.Gate(user, nil), nil
	}
	a, err := s.advertisers.GetByID(ctx, *user.AdvertiserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, rbac.Gate(user, nil), nil
		}
		return nil, rbac.GateRedirectToRegister, wrap(err, "advertiser")
	}
	return a, rbac.Gate(user, a), nil
}

func (s *AdvertiserService) List(ctx context.Context, f repositories.AdvertiserFilter) ([]models.Advertiser, error) {
	return s.advertisers.List(ctx, f)
}

// AdvertiserDetail is an advertiser with its adverts and correspondence.
type AdvertiserDetail struct {
	*models.Advertiser
	MailingAddress string                        `json:"mailing_address"`
	Adverts        []models.AdvertWithAdvertiser `json:"adverts"`
	Correspondence []models.Correspondence       `json:"correspondence"`
	History        []models.AuditLog             `json:"history"`
}

func (s *AdvertiserService) Get(ctx context.Context, id uuid.UUID) (*AdvertiserDetail, error) {
	a, err := s.advertisers.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "advertiser")
	}
	adverts, err := s.adverts.List(ctx, repositories.AdvertFilter{AdvertiserID: &id, Limit: 100})
	if err != nil {
		return nil, wrap(err, "adverts")
	}
	corr, err := s.correspondence.List(ctx, repositories.CorrespondenceFilter{AdvertiserID: &id, Limit: 100})
	if err != nil {
		return nil, wrap(err, "correspondence")
	}
	history, err := s.lifecycle.history(ctx, models.EntityAdvertiser, id)
	if err != nil {
		return nil, wrap(err, "history")
	}
	return &AdvertiserDetail{
		Advertiser:     a,
		MailingAddress: a.MailingAddress(),
		Adverts:        adverts,
		Correspondence: corr,
		History:        history,
	}, nil
}

// Create saves a staff-entered advertiser with every field.
func (s *AdvertiserService) Create(ctx context.Context, actor rbac.Actor, a *models.Advertiser) error {
	if !rbac.Allowed(actor, rbac.ActionCreate, rbac.AdvertiserSubject(a)) {
		return ErrForbidden
	}

	var ns []workflow.Notification
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a.Normalize()
		if err := a.Validate(); err != nil {
			return wrap(err, "advertiser")
		}
		if err := s.checkSalesperson(ctx, a.SalespersonID); err != nil {
			return err
		}
		if err := s.advertisers.Create(ctx, a); err != nil {
			return wrap(err, "create advertiser")
		}
		s.lifecycle.entity(ctx, actor, models.EntityAdvertiser, models.VerbCreated, &a.ID, nil)
		ns = workflow.AdvertiserSaved(nil, a)
		return nil
	})
	if err != nil {
		return err
	}

	s.afterSave(ctx, a, ns)
	return nil
}

// KeepStored names staff fields an update copies from the stored row
// instead of taking them from the incoming advertiser.
type KeepStored struct {
	Approved    bool
	Salesperson bool
}

// Update writes a over the stored advertiser with the same id, except
// for the fields keep names.
func (s *AdvertiserService) Update(ctx context.Context, actor rbac.Actor, a *models.Advertiser, keep KeepStored) error {
	var ns []workflow.Notification
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		ns, err = s.save(ctx, actor, a, keep)
		return err
	})
	if err != nil {
		return err
	}

	s.afterSave(ctx, a, ns)
	return nil
}

// save runs inside a transaction: lock the stored row, check, write,
// and decide the notifications.
func (s *AdvertiserService) save(ctx context.Context, actor rbac.Actor, next *models.Advertiser, keep KeepStored) ([]workflow.Notification, error) {
	prior, err := s.advertisers.GetForUpdate(ctx, next.ID)
	if err != nil {
		return nil, wrap(err, "advertiser")
	}
	if !rbac.Allowed(actor, rbac.ActionUpdate, rbac.AdvertiserSubject(prior)) {
		return nil, ErrForbidden
	}
	if keep.Approved {
		next.Approved = prior.Approved
	}
	if keep.Salesperson {
		next.SalespersonID = prior.SalespersonID
	}

	next.Normalize()
	if err := next.Validate(); err != nil {
		return nil, wrap(err, "advertiser")
	}
	if err := s.checkSalesperson(ctx, next.SalespersonID); err != nil {
		return nil, err
	}
	if err := s.advertisers.Update(ctx, next); err != nil {
		return nil, wrap(err, "update advertiser")
	}
	next.CreatedAt = prior.CreatedAt

	verb := models.VerbUpdated
	if prior.Approved != next.Approved {
		verb = models.VerbUnapproved
		if next.Approved {
			verb = models.VerbApproved
		}
		s.metrics.ApprovalChanges.WithLabelValues(strconv.FormatBool(next.Approved)).Inc()
	}
	s.lifecycle.entity(ctx, actor, models.EntityAdvertiser, verb, &next.ID, nil)

	return workflow.AdvertiserSaved(prior, next), nil
}

// ApprovalResult reports one record of a bulk approval change.
type ApprovalResult struct {
	ID    uuid.UUID `json:"id"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
}

// SetApproval sets approved on each advertiser, saving every record on
// its own so each gets its own workflow decision.
func (s *AdvertiserService) SetApproval(ctx context.Context, actor rbac.Actor, ids []uuid.UUID, approved bool) []ApprovalResult {
	results := make([]ApprovalResult, 0, len(ids))
	for _, id := range ids {
		var (
			saved *models.Advertiser
			ns    []workflow.Notification
		)
		err := s.tx.InTx(ctx, func(ctx context.Context) error {
			stored, err := s.advertisers.GetForUpdate(ctx, id)
			if err != nil {
				return wrap(err, "advertiser")
			}
			a := *stored
			a.Approved = approved
			ns, err = s.save(ctx, actor, &a, KeepStored{})
			saved = &a
			return err
		})

		res := ApprovalResult{ID: id, OK: err == nil}
		if err != nil {
			res.Error = err.Error()
		} else {
			s.afterSave(ctx, saved, ns)
		}
		results = append(results, res)
	}
	return results
}

func (s *AdvertiserService) Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.advertisers.GetForUpdate(ctx, id)
		if err != nil {
			return wrap(err, "advertiser")
		}
		if !rbac.CanDelete(actor, rbac.AdvertiserSubject(a)) {
			return ErrForbidden
		}
		if err := s.advertisers.Delete(ctx, id); err != nil {
			return wrap(err, "delete advertiser")
		}
		s.lifecycle.entity(ctx, actor, models.EntityAdvertiser, models.VerbDeleted, &id, map[string]any{"name": a.Name})
		return nil
	})
	if err != nil {
		return err
	}

	s.lifecycle.publish(ctx, events.EventAdvertiserDeleted, map[string]any{"advertiser_id": id.String()})
	return nil
}

func (s *AdvertiserService) checkSalesperson(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	u, err := s.users.GetByID(ctx, *id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid("salesperson %s does not exist", id)
		}
		return wrap(err, "salesperson")
	}
	if !u.IsStaff && !u.IsSuperuser {
		return invalid("salesperson must be a staff user")
	}
	return nil
}

func (s *AdvertiserService) afterSave(ctx context.Context, a *models.Advertiser, ns []workflow.Notification) {
	s.lifecycle.publish(ctx, events.EventAdvertiserSaved, map[string]any{
		"advertiser_id": a.ID.String(),
		"name":          a.Name,
		"approved":      a.Approved,
	})
	s.lifecycle.dispatch(ctx, ns)
}

func savedVerb(prior *models.Advertiser) string {
	if prior == nil {
		return models.VerbCreated
	}
	return models.VerbUpdated
}
