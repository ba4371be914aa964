package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
)

// SwapFilter captures listing parameters for swap requests.
type SwapFilter struct {
	Statuses      []domain.SwapStatus
	ParticipantID *string
	Limit         int
	Offset        int
}

// SwapRepository encapsulates swap request persistence. CompleteSwap is
// the single place the two-row swap-accept mutation lives; both updates
// commit together or not at all.
type SwapRepository interface {
	Create(ctx context.Context, swap *domain.SwapRequest) error
	GetByID(ctx context.Context, id string) (*domain.SwapRequest, error)
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.SwapStatus) error
	CompleteSwap(ctx context.Context, swap *domain.SwapRequest) error
	List(ctx context.Context, filter SwapFilter) ([]domain.SwapRequest, error)
}

type swapRepository struct {
	pool *pgxpool.Pool
}

// NewSwapRepository instantiates repository.
func NewSwapRepository(pool *pgxpool.Pool) SwapRepository {
	return &swapRepository{pool: pool}
}

func (r *swapRepository) Create(ctx context.Context, swap *domain.SwapRequest) error {
	const query = `
        INSERT INTO swap_requests (service_id, from_user_id, to_user_id, swap_date, message, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		swap.ServiceID,
		swap.FromUserID,
		swap.ToUserID,
		swap.Date,
		swap.Message,
		swap.Status,
	).Scan(&swap.ID, &swap.CreatedAt, &swap.UpdatedAt)
}

func (r *swapRepository) GetByID(ctx context.Context, id string) (*domain.SwapRequest, error) {
	const query = `
        SELECT id, service_id, from_user_id, to_user_id, swap_date, message, status, created_at, updated_at
        FROM swap_requests WHERE id=$1`
	var swap domain.SwapRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&swap.ID,
		&swap.ServiceID,
		&swap.FromUserID,
		&swap.ToUserID,
		&swap.Date,
		&swap.Message,
		&swap.Status,
		&swap.CreatedAt,
		&swap.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &swap, nil
}

func (r *swapRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.SwapStatus) error {
	const query = `UPDATE swap_requests SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CompleteSwap marks the request accepted and hands the assignment to
// the target user in one transaction. The moved assignment resets to
// PENDING: a swap transfers the obligation, not a confirmation. Either
// statement touching zero rows aborts the whole transaction.
func (r *swapRepository) CompleteSwap(ctx context.Context, swap *domain.SwapRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const markAccepted = `
        UPDATE swap_requests SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`
	cmd, err := tx.Exec(ctx, markAccepted, domain.SwapStatusAccepted, swap.ID, domain.SwapStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	const reassign = `
        UPDATE service_assignments
        SET user_id=$1, status=$2, decline_reason=NULL, updated_at=NOW()
        WHERE service_id=$3 AND user_id=$4`
	cmd, err = tx.Exec(ctx, reassign, swap.ToUserID, domain.AssignmentStatusPending, swap.ServiceID, swap.FromUserID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	swap.Status = domain.SwapStatusAccepted
	return nil
}

func (r *swapRepository) List(ctx context.Context, filter SwapFilter) ([]domain.SwapRequest, error) {
	base := `SELECT id, service_id, from_user_id, to_user_id, swap_date, message, status, created_at, updated_at
             FROM swap_requests`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ParticipantID != nil {
		args = append(args, *filter.ParticipantID)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(from_user_id=%s OR to_user_id=%s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SwapRequest
	for rows.Next() {
		var swap domain.SwapRequest
		if err := rows.Scan(
			&swap.ID,
			&swap.ServiceID,
			&swap.FromUserID,
			&swap.ToUserID,
			&swap.Date,
			&swap.Message,
			&swap.Status,
			&swap.CreatedAt,
			&swap.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, swap)
	}
	return result, rows.Err()
}
