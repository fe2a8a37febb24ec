package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lampoon-ads/backend/internal/db"
	"github.com/lampoon-ads/backend/internal/models"
)

type AdvertRepo struct {
	pool *pgxpool.Pool
}

func NewAdvertRepo(pool *pgxpool.Pool) *AdvertRepo {
	return &AdvertRepo{pool: pool}
}

const advertColumns = `a.id, a.advertiser_id, a.size, a.description, a.image_file,
	a.final_price::text, a.paid, a.notes, a.created_at`

func scanAdvert(row rowScanner, extra ...any) (*models.Advert, error) {
	var a models.Advert
	dest := []any{&a.ID, &a.AdvertiserID, &a.Size, &a.Description, &a.ImageFile,
		&a.FinalPrice, &a.Paid, &a.Notes, &a.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// Create inserts the advert and its issue links. Call inside a
// transaction so both land together.
func (r *AdvertRepo) Create(ctx context.Context, a *models.Advert) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO adverts (advertiser_id, size, description, image_file, final_price, paid, notes)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		RETURNING id, created_at
	`, a.AdvertiserID, a.Size, a.Description, a.ImageFile, a.FinalPrice, a.Paid, a.Notes,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return translate(err)
	}
	return r.setIssues(ctx, a.ID, a.IssueIDs)
}

func (r *AdvertRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Advert, error) {
	return r.get(ctx, `SELECT `+advertColumns+` FROM adverts a WHERE a.id = $1`, id)
}

// GetForUpdate reads the stored version and locks the row.
func (r *AdvertRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Advert, error) {
	return r.get(ctx, `SELECT `+advertColumns+` FROM adverts a WHERE a.id = $1 FOR UPDATE`, id)
}

func (r *AdvertRepo) get(ctx context.Context, sql string, id uuid.UUID) (*models.Advert, error) {
	a, err := scanAdvert(db.Conn(ctx, r.pool).QueryRow(ctx, sql, id))
	if err != nil {
		return nil, err
	}
	issues, err := r.issueIDs(ctx, []uuid.UUID{a.ID})
	if err != nil {
		return nil, err
	}
	a.IssueIDs = issues[a.ID]
	return a, nil
}

func (r *AdvertRepo) Update(ctx context.Context, a *models.Advert) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE adverts SET advertiser_id = $1, size = $2, description = $3, image_file = $4,
		       final_price = $5::numeric, paid = $6, notes = $7
		WHERE id = $8
	`, a.AdvertiserID, a.Size, a.Description, a.ImageFile, a.FinalPrice, a.Paid, a.Notes, a.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return r.setIssues(ctx, a.ID, a.IssueIDs)
}

func (r *AdvertRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM adverts WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AdvertRepo) setIssues(ctx context.Context, advertID uuid.UUID, issueIDs []uuid.UUID) error {
	conn := db.Conn(ctx, r.pool)
	if _, err := conn.Exec(ctx, `DELETE FROM advert_issues WHERE advert_id = $1`, advertID); err != nil {
		return err
	}
	if len(issueIDs) == 0 {
		return nil
	}
	_, err := conn.Exec(ctx, `
		INSERT INTO advert_issues (advert_id, issue_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, advertID, uuidStrings(issueIDs))
	return translate(err)
}

func (r *AdvertRepo) issueIDs(ctx context.Context, advertIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(advertIDs))
	if len(advertIDs) == 0 {
		return out, nil
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT ai.advert_id, ai.issue_id
		FROM advert_issues ai
		JOIN issues i ON i.id = ai.issue_id
		WHERE ai.advert_id = ANY($1::uuid[])
		ORDER BY i.volume DESC, i.issue_number DESC
	`, uuidStrings(advertIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var advertID, issueID uuid.UUID
		if err := rows.Scan(&advertID, &issueID); err != nil {
			return nil, err
		}
		out[advertID] = append(out[advertID], issueID)
	}
	return out, rows.Err()
}

type AdvertFilter struct {
	AdvertiserID *uuid.UUID
	IssueID      *uuid.UUID
	Paid         *bool
	Size         *string
	Query        string
	Limit        int
	Offset       int
}

// List joins each advert with its advertiser's name and salesperson,
// newest first.
func (r *AdvertRepo) List(ctx context.Context, f AdvertFilter) ([]models.AdvertWithAdvertiser, error) {
	var w filter
	if f.AdvertiserID != nil {
		w.add("a.advertiser_id = ?", *f.AdvertiserID)
	}
	if f.IssueID != nil {
		w.add("EXISTS (SELECT 1 FROM advert_issues ai WHERE ai.advert_id = a.id AND ai.issue_id = ?)", *f.IssueID)
	}
	if f.Paid != nil {
		w.add("a.paid = ?", *f.Paid)
	}
	if f.Size != nil {
		w.add("a.size = ?", *f.Size)
	}
	if strings.TrimSpace(f.Query) != "" {
		w.add("a.description ILIKE ?", likePattern(f.Query))
	}

	query := `SELECT ` + advertColumns + `, adv.name, adv.salesperson_id
		FROM adverts a JOIN advertisers adv ON adv.id = a.advertiser_id` + w.clause() +
		` ORDER BY a.created_at DESC` + w.page(f.Limit, f.Offset)

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AdvertWithAdvertiser
	var ids []uuid.UUID
	for rows.Next() {
		var item models.AdvertWithAdvertiser
		a, err := scanAdvert(rows, &item.AdvertiserName, &item.SalespersonID)
		if err != nil {
			return nil, err
		}
		item.Advert = *a
		out = append(out, item)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	issues, err := r.issueIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].IssueIDs = issues[out[i].ID]
		out[i].IssuesCount = len(out[i].IssueIDs)
	}
	return out, nil
}

func (r *AdvertRepo) CountByPaid(ctx context.Context, paid bool) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM adverts WHERE paid = $1`, paid).Scan(&n)
	return n, err
}
