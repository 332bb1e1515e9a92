package repository

import (
	"context"
	"database/sql"
	"fmt"

	"socio-service/internal/domain"

	log "github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

type postgresStaffRepository struct {
	db *sql.DB
}

func NewPostgresStaffRepository(db *sql.DB) *postgresStaffRepository {
	return &postgresStaffRepository{db: db}
}

func (r *postgresStaffRepository) Create(ctx context.Context, user *domain.StaffUser) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	log.WithFields(log.Fields{
		"staff_id": user.ID,
		"username": user.Username,
		"role":     user.Role,
	}).Info("Creating new staff user in database")

	query := `
		INSERT INTO staff_users (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
	)

	if err != nil {
		log.WithError(err).WithField("username", user.Username).Error("Failed to create staff user")
		return fmt.Errorf("failed to create staff user: %w", err)
	}

	return nil
}

func (r *postgresStaffRepository) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	return r.getBy(ctx, "id", id)
}

func (r *postgresStaffRepository) GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error) {
	return r.getBy(ctx, "username", username)
}

func (r *postgresStaffRepository) getBy(ctx context.Context, column, value string) (*domain.StaffUser, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT id, username, email, password_hash, role, created_at
		FROM staff_users
		WHERE %s = $1
	`, column)

	var user domain.StaffUser
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrStaffNotFound
		}
		log.WithError(err).WithField(column, value).Error("Failed to get staff user")
		return nil, fmt.Errorf("failed to get staff user: %w", err)
	}

	return &user, nil
}

func (r *postgresStaffRepository) CountAdmins(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM staff_users WHERE role = $1`, domain.RoleAdmin,
	).Scan(&count)
	if err != nil {
		log.WithError(err).Error("Failed to count admin users")
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}

	return count, nil
}
