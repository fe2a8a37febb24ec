package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lampoon-ads/backend/internal/db"
	"github.com/lampoon-ads/backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, is_staff, is_superuser,
	advertiser_id, created_at, last_login_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsStaff, &u.IsSuperuser, &u.AdvertiserID, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, is_staff, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsStaff, u.IsSuperuser,
	).Scan(&u.ID, &u.CreatedAt)
	return translate(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetForUpdate reads the user and locks the row until the surrounding
// transaction ends.
func (r *UserRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepo) LinkAdvertiser(ctx context.Context, userID, advertiserID uuid.UUID) error {
	return r.exec(ctx, `UPDATE users SET advertiser_id = $1 WHERE id = $2`, advertiserID, userID)
}

func (r *UserRepo) UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName string) error {
	return r.exec(ctx, `UPDATE users SET first_name = $1, last_name = $2 WHERE id = $3`, firstName, lastName, id)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
}

func (r *UserRepo) SetRoles(ctx context.Context, id uuid.UUID, staff, superuser bool) error {
	return r.exec(ctx, `UPDATE users SET is_staff = $1, is_superuser = $2 WHERE id = $3`, staff, superuser, id)
}

// ListStaff returns the users that may be assigned as salesperson.
func (r *UserRepo) ListStaff(ctx context.Context) ([]models.User, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_staff OR is_superuser ORDER BY last_name, first_name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepo) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
