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

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) *postgresMatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *domain.Match) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	log.WithFields(log.Fields{
		"match_id":  match.ID,
		"member_id": match.MemberID,
		"opponent":  match.Opponent,
	}).Info("Creating new match in database")

	query := `
		INSERT INTO matches (id, member_id, match_date, opponent, status)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		match.ID,
		match.MemberID,
		match.Date,
		match.Opponent,
		match.Status,
	)

	if err != nil {
		log.WithError(err).WithField("match_id", match.ID).Error("Failed to create match")
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

const matchSelect = `
	SELECT mt.id, mt.member_id, mt.match_date, mt.opponent, mt.status,
		mt.created_at, mt.updated_at,
		COALESCE(m.first_name || ' ' || m.last_name, 'Unknown'),
		COALESCE(m.member_number, '')
	FROM matches mt
	LEFT JOIN members m ON m.id = mt.member_id
`

func scanMatch(row interface{ Scan(...interface{}) error }) (*domain.Match, error) {
	var match domain.Match
	err := row.Scan(
		&match.ID,
		&match.MemberID,
		&match.Date,
		&match.Opponent,
		&match.Status,
		&match.CreatedAt,
		&match.UpdatedAt,
		&match.MemberName,
		&match.MemberNumber,
	)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := matchSelect + " WHERE mt.id = $1"

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrMatchNotFound
		}
		log.WithError(err).WithField("match_id", id).Error("Failed to get match")
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var whereParts []string
	var args []interface{}
	argIndex := 1

	if filter.MemberID != "" {
		whereParts = append(whereParts, fmt.Sprintf("mt.member_id = $%d", argIndex))
		args = append(args, filter.MemberID)
		argIndex++
	}
	if filter.Status != "" {
		whereParts = append(whereParts, fmt.Sprintf("mt.status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	query := matchSelect
	if len(whereParts) > 0 {
		query += " WHERE " + strings.Join(whereParts, " AND ")
	}
	query += " ORDER BY mt.match_date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to list matches")
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan match row")
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over match rows: %w", err)
	}

	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, id string, fields *domain.MatchUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var setParts []string
	var args []interface{}
	argIndex := 1

	if fields.Date != nil {
		setParts = append(setParts, fmt.Sprintf("match_date = $%d", argIndex))
		args = append(args, *fields.Date)
		argIndex++
	}
	if fields.Opponent != nil {
		setParts = append(setParts, fmt.Sprintf("opponent = $%d", argIndex))
		args = append(args, *fields.Opponent)
		argIndex++
	}
	if fields.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *fields.Status)
		argIndex++
	}

	if len(setParts) == 0 {
		log.WithField("match_id", id).Info("No fields to update, skipping")
		return nil
	}

	setParts = append(setParts, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE matches SET %s WHERE id = $%d",
		strings.Join(setParts, ", "),
		argIndex,
	)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).WithField("match_id", id).Error("Failed to update match")
		return fmt.Errorf("failed to update match: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrMatchNotFound
	}

	return nil
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		log.WithError(err).WithField("match_id", id).Error("Failed to delete match")
		return fmt.Errorf("failed to delete match: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrMatchNotFound
	}

	log.WithField("match_id", id).Info("Match successfully deleted")
	return nil
}
