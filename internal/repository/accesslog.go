package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"socio-service/internal/domain"

	log "github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

type postgresAccessLogRepository struct {
	db *sql.DB
}

func NewPostgresAccessLogRepository(db *sql.DB) *postgresAccessLogRepository {
	return &postgresAccessLogRepository{db: db}
}

// Insert appends one audit row. The standing/dues snapshot on the entry is
// stored as given and never recomputed.
func (r *postgresAccessLogRepository) Insert(ctx context.Context, entry *domain.AccessLogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO access_log (
			id, member_id, granted, reason,
			standing_status, dues_status, checked_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var checkedBy interface{}
	if entry.CheckedBy != "" {
		checkedBy = entry.CheckedBy
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.MemberID,
		entry.Granted,
		entry.Reason,
		entry.StandingStatus,
		entry.DuesStatus,
		checkedBy,
		entry.CreatedAt,
	)

	if err != nil {
		log.WithError(err).WithField("member_id", entry.MemberID).Error("Failed to insert access log entry")
		return fmt.Errorf("failed to insert access log entry: %w", err)
	}

	return nil
}

// List returns one page of audit entries, newest first. Member name and
// number are resolved live against the registry; an entry whose member has
// since disappeared shows "Unknown".
func (r *postgresAccessLogRepository) List(ctx context.Context, filter domain.AccessLogFilter) ([]domain.AccessLogEntry, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var whereParts []string
	var args []interface{}
	argIndex := 1

	if filter.MemberID != "" {
		whereParts = append(whereParts, fmt.Sprintf("a.member_id = $%d", argIndex))
		args = append(args, filter.MemberID)
		argIndex++
	}
	if filter.From != nil {
		whereParts = append(whereParts, fmt.Sprintf("a.created_at >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		whereParts = append(whereParts, fmt.Sprintf("a.created_at <= $%d", argIndex))
		args = append(args, *filter.To)
		argIndex++
	}

	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM access_log a %s", where)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.WithError(err).Error("Failed to count access log entries")
		return nil, 0, fmt.Errorf("failed to count access log entries: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := fmt.Sprintf(`
		SELECT a.id, a.member_id, a.granted, a.reason,
			a.standing_status, a.dues_status, a.checked_by, a.created_at,
			COALESCE(m.first_name || ' ' || m.last_name, 'Unknown'),
			COALESCE(m.member_number, '')
		FROM access_log a
		LEFT JOIN members m ON m.id = a.member_id
		%s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIndex, argIndex+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to list access log entries")
		return nil, 0, fmt.Errorf("failed to list access log entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AccessLogEntry
	for rows.Next() {
		var entry domain.AccessLogEntry
		var checkedBy sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.MemberID,
			&entry.Granted,
			&entry.Reason,
			&entry.StandingStatus,
			&entry.DuesStatus,
			&checkedBy,
			&entry.CreatedAt,
			&entry.MemberName,
			&entry.MemberNumber,
		)
		if err != nil {
			log.WithError(err).Error("Failed to scan access log row")
			return nil, 0, fmt.Errorf("failed to scan access log row: %w", err)
		}

		if checkedBy.Valid {
			entry.CheckedBy = checkedBy.String
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		log.WithError(err).Error("Error iterating over access log rows")
		return nil, 0, fmt.Errorf("error iterating over access log rows: %w", err)
	}

	return entries, total, nil
}
