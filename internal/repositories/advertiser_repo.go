package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lampoon-ads/backend/internal/db"
	"github.com/lampoon-ads/backend/internal/models"
)

type AdvertiserRepo struct {
	pool *pgxpool.Pool
}

func NewAdvertiserRepo(pool *pgxpool.Pool) *AdvertiserRepo {
	return &AdvertiserRepo{pool: pool}
}

const advertiserColumns = `id, name, address_1, address_2, city, state, zip_code, contact, position,
	telephone, email, approved, salesperson_id, created_at, updated_at`

func scanAdvertiser(row rowScanner) (*models.Advertiser, error) {
	var a models.Advertiser
	err := row.Scan(&a.ID, &a.Name, &a.Address1, &a.Address2, &a.City, &a.State, &a.ZipCode,
		&a.Contact, &a.Position, &a.Telephone, &a.Email, &a.Approved, &a.SalespersonID,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AdvertiserRepo) Create(ctx context.Context, a *models.Advertiser) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO advertisers (name, address_1, address_2, city, state, zip_code, contact, position,
		                         telephone, email, approved, salesperson_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, a.Name, a.Address1, a.Address2, a.City, a.State, a.ZipCode, a.Contact, a.Position,
		a.Telephone, a.Email, a.Approved, a.SalespersonID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return translate(err)
}

func (r *AdvertiserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Advertiser, error) {
	return scanAdvertiser(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+advertiserColumns+` FROM advertisers WHERE id = $1`, id))
}

// GetForUpdate reads the stored version and locks the row until the
// surrounding transaction ends.
func (r *AdvertiserRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Advertiser, error) {
	return scanAdvertiser(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+advertiserColumns+` FROM advertisers WHERE id = $1 FOR UPDATE`, id))
}

func (r *AdvertiserRepo) Update(ctx context.Context, a *models.Advertiser) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE advertisers SET name = $1, address_1 = $2, address_2 = $3, city = $4, state = $5,
		       zip_code = $6, contact = $7, position = $8, telephone = $9, email = $10,
		       approved = $11, salesperson_id = $12, updated_at = now()
		WHERE id = $13
		RETURNING updated_at
	`, a.Name, a.Address1, a.Address2, a.City, a.State, a.ZipCode, a.Contact, a.Position,
		a.Telephone, a.Email, a.Approved, a.SalespersonID, a.ID,
	).Scan(&a.UpdatedAt)
	return translate(err)
}

func (r *AdvertiserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM advertisers WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type AdvertiserFilter struct {
	City          *string
	State         *string
	Approved      *bool
	SalespersonID *uuid.UUID
	Query         string
	Limit         int
	Offset        int
}

func (r *AdvertiserRepo) List(ctx context.Context, f AdvertiserFilter) ([]models.Advertiser, error) {
	var w filter
	if f.City != nil {
		w.add("city = ?", *f.City)
	}
	if f.State != nil {
		w.add("state = ?", strings.ToUpper(*f.State))
	}
	if f.Approved != nil {
		w.add("approved = ?", *f.Approved)
	}
	if f.SalespersonID != nil {
		w.add("salesperson_id = ?", *f.SalespersonID)
	}
	if strings.TrimSpace(f.Query) != "" {
		w.add("(name ILIKE ? OR contact ILIKE ? OR email ILIKE ? OR telephone ILIKE ?)", likePattern(f.Query))
	}

	query := `SELECT ` + advertiserColumns + ` FROM advertisers` + w.clause() +
		` ORDER BY name` + w.page(f.Limit, f.Offset)

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Advertiser
	for rows.Next() {
		a, err := scanAdvertiser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AdvertiserRepo) CountByApproval(ctx context.Context, approved bool) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM advertisers WHERE approved = $1`, approved).Scan(&n)
	return n, err
}
