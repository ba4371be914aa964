package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
)

const assignmentColumns = `a.id, a.service_id, a.user_id, a.role, a.status, a.decline_reason,
               a.created_at, a.updated_at, s.title, s.service_date`

// AssignmentRepository encapsulates service assignment persistence.
// Reads join the owning service so callers get the denormalized
// title/date needed for confirmation display.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.ServiceAssignment) error
	GetByID(ctx context.Context, id string) (*domain.ServiceAssignment, error)
	GetByServiceAndUser(ctx context.Context, serviceID, userID string) (*domain.ServiceAssignment, error)
	// UpdateStatusFrom is the conditional write for a volunteer response:
	// it only succeeds while the row still holds the expected status.
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.AssignmentStatus, declineReason *string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.ServiceAssignment, error)
	ListByService(ctx context.Context, serviceID string) ([]domain.ServiceAssignment, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.ServiceAssignment) error {
	const query = `
        INSERT INTO service_assignments (service_id, user_id, role, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		assignment.ServiceID,
		assignment.UserID,
		assignment.Role,
		assignment.Status,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.ServiceAssignment, error) {
	query := `
        SELECT ` + assignmentColumns + `
        FROM service_assignments a
        JOIN services s ON s.id = a.service_id
        WHERE a.id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *assignmentRepository) GetByServiceAndUser(ctx context.Context, serviceID, userID string) (*domain.ServiceAssignment, error) {
	query := `
        SELECT ` + assignmentColumns + `
        FROM service_assignments a
        JOIN services s ON s.id = a.service_id
        WHERE a.service_id=$1 AND a.user_id=$2`
	return r.fetchSingle(ctx, query, serviceID, userID)
}

func (r *assignmentRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.ServiceAssignment, error) {
	var assignment domain.ServiceAssignment
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&assignment.ID,
		&assignment.ServiceID,
		&assignment.UserID,
		&assignment.Role,
		&assignment.Status,
		&assignment.DeclineReason,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
		&assignment.ServiceTitle,
		&assignment.ServiceDate,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.AssignmentStatus, declineReason *string) error {
	const query = `
        UPDATE service_assignments SET status=$1, decline_reason=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, to, declineReason, id, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.ServiceAssignment, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
        SELECT ` + assignmentColumns + `
        FROM service_assignments a
        JOIN services s ON s.id = a.service_id
        WHERE a.user_id=$1
        ORDER BY s.service_date ASC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepository) ListByService(ctx context.Context, serviceID string) ([]domain.ServiceAssignment, error) {
	query := `
        SELECT ` + assignmentColumns + `
        FROM service_assignments a
        JOIN services s ON s.id = a.service_id
        WHERE a.service_id=$1
        ORDER BY a.role ASC`
	rows, err := r.pool.Query(ctx, query, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func scanAssignments(rows pgx.Rows) ([]domain.ServiceAssignment, error) {
	var result []domain.ServiceAssignment
	for rows.Next() {
		var assignment domain.ServiceAssignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.ServiceID,
			&assignment.UserID,
			&assignment.Role,
			&assignment.Status,
			&assignment.DeclineReason,
			&assignment.CreatedAt,
			&assignment.UpdatedAt,
			&assignment.ServiceTitle,
			&assignment.ServiceDate,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}
