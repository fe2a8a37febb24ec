package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lampoon-ads/backend/internal/db"
	"github.com/lampoon-ads/backend/internal/models"
)

type IssueRepo struct {
	pool *pgxpool.Pool
}

func NewIssueRepo(pool *pgxpool.Pool) *IssueRepo {
	return &IssueRepo{pool: pool}
}

func (r *IssueRepo) Create(ctx context.Context, i *models.Issue) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO issues (title, volume, issue_number) VALUES ($1, $2, $3)
		RETURNING id
	`, i.Title, i.Volume, i.IssueNumber).Scan(&i.ID)
	return translate(err)
}

func (r *IssueRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	var i models.Issue
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, title, volume, issue_number FROM issues WHERE id = $1
	`, id).Scan(&i.ID, &i.Title, &i.Volume, &i.IssueNumber)
	if err != nil {
		return nil, translate(err)
	}
	return &i, nil
}

func (r *IssueRepo) Update(ctx context.Context, i *models.Issue) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE issues SET title = $1, volume = $2, issue_number = $3 WHERE id = $4
	`, i.Title, i.Volume, i.IssueNumber, i.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *IssueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List orders newest volume and number first.
func (r *IssueRepo) List(ctx context.Context, volume *int) ([]models.Issue, error) {
	var w filter
	if volume != nil {
		w.add("volume = ?", *volume)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT id, title, volume, issue_number FROM issues`+w.clause()+
			` ORDER BY volume DESC, issue_number DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Issue
	for rows.Next() {
		var i models.Issue
		if err := rows.Scan(&i.ID, &i.Title, &i.Volume, &i.IssueNumber); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// CountExisting returns how many of ids name an existing issue.
func (r *IssueRepo) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT count(*) FROM issues WHERE id = ANY($1::uuid[])`, uuidStrings(ids)).Scan(&n)
	return n, err
}

func (r *IssueRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM issues`).Scan(&n)
	return n, err
}
