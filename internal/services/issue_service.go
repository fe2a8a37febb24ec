package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/events"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
	"github.com/lampoon-ads/backend/internal/repositories"
	"go.uber.org/zap"
)

type IssueService struct {
	issues    IssueStore
	lifecycle *Lifecycle
	log       *zap.Logger
}

func NewIssueService(issues IssueStore, lifecycle *Lifecycle, log *zap.Logger) *IssueService {
	return &IssueService{issues: issues, lifecycle: lifecycle, log: log}
}

func (s *IssueService) List(ctx context.Context, volume *int) ([]models.Issue, error) {
	return s.issues.List(ctx, volume)
}

func (s *IssueService) Get(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	i, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "issue")
	}
	return i, nil
}

func (s *IssueService) Create(ctx context.Context, actor rbac.Actor, i *models.Issue) error {
	if err := i.Validate(); err != nil {
		return wrap(err, "issue")
	}
	if err := s.issues.Create(ctx, i); err != nil {
		return duplicateIssue(err, i)
	}
	s.lifecycle.entity(ctx, actor, models.EntityIssue, models.VerbCreated, &i.ID, nil)
	s.lifecycle.publish(ctx, events.EventIssueSaved, map[string]any{"issue_id": i.ID.String(), "title": i.String()})
	return nil
}

func (s *IssueService) Update(ctx context.Context, actor rbac.Actor, i *models.Issue) error {
	if err := i.Validate(); err != nil {
		return wrap(err, "issue")
	}
	if err := s.issues.Update(ctx, i); err != nil {
		return duplicateIssue(err, i)
	}
	s.lifecycle.entity(ctx, actor, models.EntityIssue, models.VerbUpdated, &i.ID, nil)
	s.lifecycle.publish(ctx, events.EventIssueSaved, map[string]any{"issue_id": i.ID.String(), "title": i.String()})
	return nil
}

func (s *IssueService) Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	if !actor.Superuser {
		return ErrForbidden
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		return wrap(err, "issue")
	}
	s.lifecycle.entity(ctx, actor, models.EntityIssue, models.VerbDeleted, &id, nil)
	s.lifecycle.publish(ctx, events.EventIssueDeleted, map[string]any{"issue_id": id.String()})
	return nil
}

func duplicateIssue(err error, i *models.Issue) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return conflict("issue %d of volume %d already exists", i.IssueNumber, i.Volume)
	}
	return wrap(err, "issue")
}
