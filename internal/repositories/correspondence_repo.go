package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lampoon-ads/backend/internal/db"
	"github.com/lampoon-ads/backend/internal/models"
)

type CorrespondenceRepo struct {
	pool *pgxpool.Pool
}

func NewCorrespondenceRepo(pool *pgxpool.Pool) *CorrespondenceRepo {
	return &CorrespondenceRepo{pool: pool}
}

const correspondenceColumns = `id, advertiser_id, from_address, to_address, text, created_on, receptive`

func scanCorrespondence(row rowScanner) (*models.Correspondence, error) {
	var c models.Correspondence
	var receptive *int16
	if err := row.Scan(&c.ID, &c.AdvertiserID, &c.From, &c.To, &c.Text, &c.CreatedOn, &receptive); err != nil {
		return nil, translate(err)
	}
	if receptive != nil {
		v := int(*receptive)
		c.Receptive = &v
	}
	return &c, nil
}

func (r *CorrespondenceRepo) Create(ctx context.Context, c *models.Correspondence) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO correspondence (advertiser_id, from_address, to_address, text, receptive)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_on
	`, c.AdvertiserID, c.From, c.To, c.Text, c.Receptive).Scan(&c.ID, &c.CreatedOn)
	return translate(err)
}

func (r *CorrespondenceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Correspondence, error) {
	return scanCorrespondence(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+correspondenceColumns+` FROM correspondence WHERE id = $1`, id))
}

// UpdateReceptive is the only change allowed to a logged communication.
func (r *CorrespondenceRepo) UpdateReceptive(ctx context.Context, id uuid.UUID, receptive *int) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE correspondence SET receptive = $1 WHERE id = $2`, receptive, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CorrespondenceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM correspondence WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type CorrespondenceFilter struct {
	AdvertiserID *uuid.UUID
	From         *string
	To           *string
	Query        string
	Limit        int
	Offset       int
}

func (r *CorrespondenceRepo) List(ctx context.Context, f CorrespondenceFilter) ([]models.Correspondence, error) {
	var w filter
	if f.AdvertiserID != nil {
		w.add("advertiser_id = ?", *f.AdvertiserID)
	}
	if f.From != nil {
		w.add("from_address = ?", *f.From)
	}
	if f.To != nil {
		w.add("to_address = ?", *f.To)
	}
	if strings.TrimSpace(f.Query) != "" {
		w.add("(from_address ILIKE ? OR to_address ILIKE ? OR text ILIKE ?)", likePattern(f.Query))
	}

	query := `SELECT ` + correspondenceColumns + ` FROM correspondence` + w.clause() +
		` ORDER BY created_on DESC` + w.page(f.Limit, f.Offset)

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Correspondence
	for rows.Next() {
		c, err := scanCorrespondence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
