package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/repositories"
)

// Transactor runs fn in one database transaction carried by ctx.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	LinkAdvertiser(ctx context.Context, userID, advertiserID uuid.UUID) error
	UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetRoles(ctx context.Context, id uuid.UUID, staff, superuser bool) error
	ListStaff(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
}

type AdvertiserStore interface {
	Create(ctx context.Context, a *models.Advertiser) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Advertiser, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Advertiser, error)
	Update(ctx context.Context, a *models.Advertiser) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f repositories.AdvertiserFilter) ([]models.Advertiser, error)
	CountByApproval(ctx context.Context, approved bool) (int, error)
}

type AdvertStore interface {
	Create(ctx context.Context, a *models.Advert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Advert, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Advert, error)
	Update(ctx context.Context, a *models.Advert) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f repositories.AdvertFilter) ([]models.AdvertWithAdvertiser, error)
	CountByPaid(ctx context.Context, paid bool) (int, error)
}

type IssueStore interface {
	Create(ctx context.Context, i *models.Issue) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	Update(ctx context.Context, i *models.Issue) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, volume *int) ([]models.Issue, error)
	CountExisting(ctx context.Context, ids []uuid.UUID) (int, error)
	Count(ctx context.Context) (int, error)
}

type CorrespondenceStore interface {
	Create(ctx context.Context, c *models.Correspondence) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Correspondence, error)
	UpdateReceptive(ctx context.Context, id uuid.UUID, receptive *int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f repositories.CorrespondenceFilter) ([]models.Correspondence, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
	Recent(ctx context.Context, limit int) ([]models.AuditLog, error)
	ForEntity(ctx context.Context, entityType string, id uuid.UUID, limit int) ([]models.AuditLog, error)
}
