package services

import (
	"context"

	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
)

const recentActions = 5

type DashboardService struct {
	advertisers AdvertiserStore
	adverts     AdvertStore
	issues      IssueStore
	users       UserStore
	audit       AuditStore
}

func NewDashboardService(
	advertisers AdvertiserStore,
	adverts AdvertStore,
	issues IssueStore,
	users UserStore,
	audit AuditStore,
) *DashboardService {
	return &DashboardService{
		advertisers: advertisers,
		adverts:     adverts,
		issues:      issues,
		users:       users,
		audit:       audit,
	}
}

type Dashboard struct {
	PendingAdvertisers int               `json:"pending_advertisers"`
	UnpaidAdverts      int               `json:"unpaid_adverts"`
	Issues             int               `json:"issues"`
	Users              *int              `json:"users,omitempty"`
	RecentActions      []models.AuditLog `json:"recent_actions"`
}

func (s *DashboardService) Get(ctx context.Context, actor rbac.Actor) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.PendingAdvertisers, err = s.advertisers.CountByApproval(ctx, false); err != nil {
		return nil, wrap(err, "count advertisers")
	}
	if d.UnpaidAdverts, err = s.adverts.CountByPaid(ctx, false); err != nil {
		return nil, wrap(err, "count adverts")
	}
	if d.Issues, err = s.issues.Count(ctx); err != nil {
		return nil, wrap(err, "count issues")
	}
	if actor.Superuser {
		n, err := s.users.Count(ctx)
		if err != nil {
			return nil, wrap(err, "count users")
		}
		d.Users = &n
	}
	if d.RecentActions, err = s.audit.Recent(ctx, recentActions); err != nil {
		return nil, wrap(err, "recent actions")
	}
	return &d, nil
}
