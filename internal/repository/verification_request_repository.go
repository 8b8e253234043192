package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/travel-community/internal/domain"
)

// VerificationRequestFilter narrows the admin listing.
type VerificationRequestFilter struct {
	Status *domain.VerificationStatus
	Type   *domain.VerificationType
}

// VerificationRequestRepository persists verification requests.
type VerificationRequestRepository interface {
	// Create inserts a pending request. A second pending request for the same
	// user and type fails with ErrUniqueViolation.
	Create(ctx context.Context, req *domain.VerificationRequest) error
	GetByID(ctx context.Context, id string) (*domain.VerificationRequest, error)
	// UpdateFields applies fields only while the stored status is one of expected
	// (any status when expected is empty). ErrNotFound means no row matched.
	UpdateFields(ctx context.Context, id string, fields domain.VerificationRequestFields, expected ...domain.VerificationStatus) (*domain.VerificationRequest, error)
	ListByUser(ctx context.Context, userID string) ([]domain.VerificationRequest, error)
	ListWithUsers(ctx context.Context, filter VerificationRequestFilter) ([]domain.VerificationRequestView, error)
}

type verificationRequestRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationRequestRepository instantiates repository.
func NewVerificationRequestRepository(pool *pgxpool.Pool) VerificationRequestRepository {
	return &verificationRequestRepository{pool: pool}
}

const verificationRequestColumns = `id, user_id, verification_type, status, additional_info, verification_link, created_at, processed_at`

func (r *verificationRequestRepository) Create(ctx context.Context, req *domain.VerificationRequest) error {
	const query = `
        INSERT INTO verification_requests (user_id, verification_type, status, additional_info)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	info := req.AdditionalInfo
	if info == nil {
		info = map[string]any{}
	}
	err := r.pool.QueryRow(ctx, query,
		req.UserID,
		string(req.Type),
		string(req.Status),
		info,
	).Scan(&req.ID, &req.CreatedAt)
	return mapWriteError(err)
}

func (r *verificationRequestRepository) GetByID(ctx context.Context, id string) (*domain.VerificationRequest, error) {
	query := `SELECT ` + verificationRequestColumns + ` FROM verification_requests WHERE id=$1`
	req, err := scanVerificationRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapLookupError(err)
	}
	return req, nil
}

func (r *verificationRequestRepository) UpdateFields(ctx context.Context, id string, fields domain.VerificationRequestFields, expected ...domain.VerificationStatus) (*domain.VerificationRequest, error) {
	sets := []string{}
	args := []any{id}
	if fields.Status != nil {
		args = append(args, string(*fields.Status))
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if fields.ProcessedAt != nil {
		args = append(args, *fields.ProcessedAt)
		sets = append(sets, fmt.Sprintf("processed_at=$%d", len(args)))
	}
	if fields.VerificationLink != nil {
		args = append(args, *fields.VerificationLink)
		sets = append(sets, fmt.Sprintf("verification_link=$%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	clauses := []string{"id=$1"}
	if len(expected) > 0 {
		statuses := make([]string, len(expected))
		for i, status := range expected {
			statuses[i] = string(status)
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := fmt.Sprintf(`UPDATE verification_requests SET %s WHERE %s RETURNING %s`,
		strings.Join(sets, ", "), strings.Join(clauses, " AND "), verificationRequestColumns)
	req, err := scanVerificationRequest(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapLookupError(mapWriteError(err))
	}
	return req, nil
}

func (r *verificationRequestRepository) ListByUser(ctx context.Context, userID string) ([]domain.VerificationRequest, error) {
	query := `SELECT ` + verificationRequestColumns + `
        FROM verification_requests WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	defer rows.Close()

	var result []domain.VerificationRequest
	for rows.Next() {
		req, err := scanVerificationRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func (r *verificationRequestRepository) ListWithUsers(ctx context.Context, filter VerificationRequestFilter) ([]domain.VerificationRequestView, error) {
	base := `SELECT vr.id, vr.user_id, vr.verification_type, vr.status, vr.additional_info, vr.verification_link,
                    vr.created_at, vr.processed_at, COALESCE(u.name, ''), COALESCE(u.email, '')
             FROM verification_requests vr
             LEFT JOIN users u ON u.id = vr.user_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("vr.status=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		clauses = append(clauses, fmt.Sprintf("vr.verification_type=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY vr.created_at DESC`, base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VerificationRequestView
	for rows.Next() {
		var view domain.VerificationRequestView
		if err := rows.Scan(
			&view.ID,
			&view.UserID,
			&view.Type,
			&view.Status,
			&view.AdditionalInfo,
			&view.VerificationLink,
			&view.CreatedAt,
			&view.ProcessedAt,
			&view.UserName,
			&view.UserEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, rows.Err()
}

func scanVerificationRequest(row pgx.Row) (*domain.VerificationRequest, error) {
	var req domain.VerificationRequest
	if err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Type,
		&req.Status,
		&req.AdditionalInfo,
		&req.VerificationLink,
		&req.CreatedAt,
		&req.ProcessedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
