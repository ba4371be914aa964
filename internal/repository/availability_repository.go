package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
)

// AvailabilityRepository encapsulates availability persistence. Update
// and Delete are conditional on ownership: the WHERE clause carries the
// user id so a caller can never touch another user's record.
type AvailabilityRepository interface {
	Upsert(ctx context.Context, entry *domain.Availability) error
	Update(ctx context.Context, entry *domain.Availability) error
	Delete(ctx context.Context, id, userID string) error
	GetByID(ctx context.Context, id string) (*domain.Availability, error)
	ListByUser(ctx context.Context, userID string, from, to *time.Time) ([]domain.Availability, error)
	ListByDate(ctx context.Context, date time.Time) ([]domain.Availability, error)
}

type availabilityRepository struct {
	pool *pgxpool.Pool
}

// NewAvailabilityRepository instantiates repository.
func NewAvailabilityRepository(pool *pgxpool.Pool) AvailabilityRepository {
	return &availabilityRepository{pool: pool}
}

// Upsert inserts or, when a record already exists for (user, date),
// updates it in place. The unique constraint makes a duplicate
// impossible rather than detectable.
func (r *availabilityRepository) Upsert(ctx context.Context, entry *domain.Availability) error {
	const query = `
        INSERT INTO availability (user_id, avail_date, status, service_id, notes)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id, avail_date)
        DO UPDATE SET status=EXCLUDED.status, service_id=EXCLUDED.service_id, notes=EXCLUDED.notes, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.UserID,
		entry.Date,
		entry.Status,
		entry.ServiceID,
		entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *availabilityRepository) Update(ctx context.Context, entry *domain.Availability) error {
	const query = `
        UPDATE availability SET status=$1, service_id=$2, notes=$3, updated_at=NOW()
        WHERE id=$4 AND user_id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		entry.Status,
		entry.ServiceID,
		entry.Notes,
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *availabilityRepository) Delete(ctx context.Context, id, userID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM availability WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *availabilityRepository) GetByID(ctx context.Context, id string) (*domain.Availability, error) {
	const query = `
        SELECT id, user_id, avail_date, status, service_id, notes, created_at, updated_at
        FROM availability WHERE id=$1`
	var entry domain.Availability
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Date,
		&entry.Status,
		&entry.ServiceID,
		&entry.Notes,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *availabilityRepository) ListByUser(ctx context.Context, userID string, from, to *time.Time) ([]domain.Availability, error) {
	query := `
        SELECT id, user_id, avail_date, status, service_id, notes, created_at, updated_at
        FROM availability WHERE user_id=$1`
	args := []any{userID}
	if from != nil {
		args = append(args, *from)
		query += ` AND avail_date >= $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND avail_date <= $3`
		} else {
			query += ` AND avail_date <= $2`
		}
	}
	query += ` ORDER BY avail_date ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAvailability(rows)
}

func (r *availabilityRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.Availability, error) {
	const query = `
        SELECT id, user_id, avail_date, status, service_id, notes, created_at, updated_at
        FROM availability WHERE avail_date=$1 ORDER BY user_id ASC`
	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAvailability(rows)
}

func scanAvailability(rows pgx.Rows) ([]domain.Availability, error) {
	var result []domain.Availability
	for rows.Next() {
		var entry domain.Availability
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Date,
			&entry.Status,
			&entry.ServiceID,
			&entry.Notes,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
