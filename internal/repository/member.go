package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"socio-service/internal/domain"

	log "github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) *postgresMemberRepository {
	return &postgresMemberRepository{db: db}
}

const memberColumns = `
	id, member_number, first_name, last_name, dni, email,
	phone, address, birth_date, category, role, standing,
	joined_at, terminated_at, dues_expiry_date, season_ticket,
	photo_url, created_at, updated_at
`

func scanMember(row interface{ Scan(...interface{}) error }) (*domain.Member, error) {
	var member domain.Member
	var birthDate, terminatedAt sql.NullTime

	err := row.Scan(
		&member.ID,
		&member.MemberNumber,
		&member.FirstName,
		&member.LastName,
		&member.DNI,
		&member.Email,
		&member.Phone,
		&member.Address,
		&birthDate,
		&member.Category,
		&member.Role,
		&member.Standing,
		&member.JoinedAt,
		&terminatedAt,
		&member.DuesExpiryDate,
		&member.SeasonTicket,
		&member.PhotoURL,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if birthDate.Valid {
		member.BirthDate = &birthDate.Time
	}
	if terminatedAt.Valid {
		member.TerminatedAt = &terminatedAt.Time
	}

	return &member, nil
}

func (r *postgresMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	log.WithFields(log.Fields{
		"member_id":     member.ID,
		"member_number": member.MemberNumber,
		"dni":           member.DNI,
	}).Info("Creating new member in database")

	query := `
		INSERT INTO members (
			id, member_number, first_name, last_name, dni, email,
			phone, address, birth_date, category, role, standing,
			joined_at, dues_expiry_date, season_ticket, photo_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	var birthDate interface{}
	if member.BirthDate != nil {
		birthDate = *member.BirthDate
	}

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.MemberNumber,
		member.FirstName,
		member.LastName,
		member.DNI,
		member.Email,
		member.Phone,
		member.Address,
		birthDate,
		member.Category,
		member.Role,
		member.Standing,
		member.JoinedAt,
		member.DuesExpiryDate,
		member.SeasonTicket,
		member.PhotoURL,
	)

	if err != nil {
		log.WithError(err).WithField("member_id", member.ID).Error("Failed to create member")
		return fmt.Errorf("failed to create member: %w", err)
	}

	log.WithField("member_id", member.ID).Info("Member successfully created")
	return nil
}

func (r *postgresMemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	return r.getBy(ctx, "id", id)
}

func (r *postgresMemberRepository) GetByDNI(ctx context.Context, dni string) (*domain.Member, error) {
	return r.getBy(ctx, "dni", dni)
}

func (r *postgresMemberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return r.getBy(ctx, "email", email)
}

func (r *postgresMemberRepository) getBy(ctx context.Context, column, value string) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM members WHERE %s = $1", memberColumns, column)

	member, err := scanMember(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrMemberNotFound
		}
		log.WithError(err).WithField(column, value).Error("Failed to get member")
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// NextMemberNumber returns the next sequential membership number. Numbers
// start at 1000 when the registry is empty.
func (r *postgresMemberRepository) NextMemberNumber(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT COALESCE(MAX(member_number::bigint), 999) + 1 FROM members`

	var next int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&next); err != nil {
		log.WithError(err).Error("Failed to compute next member number")
		return "", fmt.Errorf("failed to compute next member number: %w", err)
	}

	return fmt.Sprintf("%d", next), nil
}

func (r *postgresMemberRepository) Update(ctx context.Context, id string, fields *domain.MemberUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// Build dynamic SQL based on provided fields
	var setParts []string
	var args []interface{}
	argIndex := 1

	set := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if fields.FirstName != nil {
		set("first_name", *fields.FirstName)
	}
	if fields.LastName != nil {
		set("last_name", *fields.LastName)
	}
	if fields.DNI != nil {
		set("dni", *fields.DNI)
	}
	if fields.Email != nil {
		set("email", *fields.Email)
	}
	if fields.Phone != nil {
		set("phone", *fields.Phone)
	}
	if fields.Address != nil {
		set("address", *fields.Address)
	}
	if fields.Category != nil {
		set("category", *fields.Category)
	}
	if fields.Role != nil {
		set("role", *fields.Role)
	}
	if fields.Standing != nil {
		set("standing", *fields.Standing)
	}
	if fields.TerminatedAt != nil {
		set("terminated_at", *fields.TerminatedAt)
	}
	if fields.DuesExpiryDate != nil {
		set("dues_expiry_date", *fields.DuesExpiryDate)
	}
	if fields.SeasonTicket != nil {
		set("season_ticket", *fields.SeasonTicket)
	}
	if fields.PhotoURL != nil {
		set("photo_url", *fields.PhotoURL)
	}

	if len(setParts) == 0 {
		log.WithField("member_id", id).Info("No fields to update, skipping")
		return nil
	}

	setParts = append(setParts, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE members SET %s WHERE id = $%d",
		strings.Join(setParts, ", "),
		argIndex,
	)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).WithField("member_id", id).Error("Failed to update member")
		return fmt.Errorf("failed to update member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrMemberNotFound
	}

	log.WithField("member_id", id).Info("Member successfully updated")
	return nil
}

func (r *postgresMemberRepository) List(ctx context.Context, filter domain.MemberFilter) ([]domain.Member, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var whereParts []string
	var args []interface{}
	argIndex := 1

	if filter.Standing != "" {
		whereParts = append(whereParts, fmt.Sprintf("standing = $%d", argIndex))
		args = append(args, filter.Standing)
		argIndex++
	}
	if filter.Category != "" {
		whereParts = append(whereParts, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}
	if filter.Query != "" {
		whereParts = append(whereParts, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR dni ILIKE $%d OR member_number ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex,
		))
		args = append(args, "%"+filter.Query+"%")
		argIndex++
	}

	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM members %s", where)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.WithError(err).Error("Failed to count members")
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := fmt.Sprintf(
		"SELECT %s FROM members %s ORDER BY member_number::bigint ASC LIMIT $%d OFFSET $%d",
		memberColumns, where, argIndex, argIndex+1,
	)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to list members")
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members, err := collectMembers(rows)
	if err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *postgresMemberRepository) ListForExport(ctx context.Context, standing, category string) ([]domain.Member, error) {
	members, _, err := r.List(ctx, domain.MemberFilter{
		Standing: standing,
		Category: category,
		Page:     1,
		PageSize: 100000,
	})
	return members, err
}

func (r *postgresMemberRepository) ListOverdue(ctx context.Context, today time.Time) ([]domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s FROM members
		WHERE dues_expiry_date < $1 AND standing != $2
		ORDER BY dues_expiry_date ASC
	`, memberColumns)

	rows, err := r.db.QueryContext(ctx, query, today, domain.StandingTerminated)
	if err != nil {
		log.WithError(err).Error("Failed to list overdue members")
		return nil, fmt.Errorf("failed to list overdue members: %w", err)
	}
	defer rows.Close()

	return collectMembers(rows)
}

func (r *postgresMemberRepository) ListOldest(ctx context.Context, limit int) ([]domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT %s FROM members
		WHERE standing != $1
		ORDER BY joined_at ASC
		LIMIT $2
	`, memberColumns)

	rows, err := r.db.QueryContext(ctx, query, domain.StandingTerminated, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list oldest members")
		return nil, fmt.Errorf("failed to list oldest members: %w", err)
	}
	defer rows.Close()

	return collectMembers(rows)
}

func (r *postgresMemberRepository) Stats(ctx context.Context) (*domain.MemberStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE standing = $1),
			COUNT(*) FILTER (WHERE standing = $2),
			COUNT(*) FILTER (WHERE category = $3),
			COUNT(*) FILTER (WHERE standing = $4)
		FROM members
	`

	var stats domain.MemberStats
	err := r.db.QueryRowContext(ctx, query,
		domain.StandingActive,
		domain.StandingDelinquent,
		domain.CategoryLifetime,
		domain.StandingTerminated,
	).Scan(&stats.Total, &stats.Active, &stats.Delinquent, &stats.Lifetime, &stats.Terminated)

	if err != nil {
		log.WithError(err).Error("Failed to compute member stats")
		return nil, fmt.Errorf("failed to compute member stats: %w", err)
	}

	return &stats, nil
}

func (r *postgresMemberRepository) AppendStatusChange(ctx context.Context, change *domain.StatusChange) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO member_status_history (member_id, standing, reason, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		change.MemberID,
		change.Standing,
		change.Reason,
		change.ChangedBy,
		change.ChangedAt,
	)
	if err != nil {
		log.WithError(err).WithField("member_id", change.MemberID).Error("Failed to append status change")
		return fmt.Errorf("failed to append status change: %w", err)
	}

	return nil
}

func (r *postgresMemberRepository) ListStatusHistory(ctx context.Context, memberID string) ([]domain.StatusChange, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, member_id, standing, reason, changed_by, changed_at
		FROM member_status_history
		WHERE member_id = $1
		ORDER BY changed_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		log.WithError(err).WithField("member_id", memberID).Error("Failed to list status history")
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	var history []domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		if err := rows.Scan(
			&change.ID,
			&change.MemberID,
			&change.Standing,
			&change.Reason,
			&change.ChangedBy,
			&change.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan status change row: %w", err)
		}
		history = append(history, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over status change rows: %w", err)
	}

	return history, nil
}

func collectMembers(rows *sql.Rows) ([]domain.Member, error) {
	var members []domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan member row")
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, *member)
	}

	if err := rows.Err(); err != nil {
		log.WithError(err).Error("Error iterating over member rows")
		return nil, fmt.Errorf("error iterating over member rows: %w", err)
	}

	return members, nil
}
