package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/toystore_api/internal/models"
)

// UserRepository handles storefront customer records.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CountActive returns the number of ACTIVE customers.
func (r *UserRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE status = 'ACTIVE'`)
	return n, err
}

// upsertUser creates the customer or refreshes name and phone for a known email.
func upsertUser(ctx context.Context, q sqlx.QueryerContext, u *models.User) error {
	const stmt = `
        INSERT INTO users (email, name, phone)
        VALUES (LOWER($1), $2, $3)
        ON CONFLICT (email) DO UPDATE SET
            name = EXCLUDED.name,
            phone = EXCLUDED.phone,
            updated_at = NOW()
        RETURNING id, email, status, created_at, updated_at`
	return q.QueryRowxContext(ctx, stmt, u.Email, u.Name, u.Phone).
		Scan(&u.ID, &u.Email, &u.Status, &u.CreatedAt, &u.UpdatedAt)
}
