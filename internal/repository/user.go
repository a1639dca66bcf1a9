package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository reads the portal's user accounts. Account management
// itself lives in the identity service; the portal only needs the
// recipient list for event notification fan-out.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// ListEmails returns the email address of every portal user.
func (r *UserRepository) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT email FROM users ORDER BY email ASC`)
	if err != nil {
		return nil, fmt.Errorf("list user emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan user email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
