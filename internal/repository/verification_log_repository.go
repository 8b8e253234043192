package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/travel-community/internal/domain"
)

// VerificationLogRepository stores provider outcomes.
type VerificationLogRepository interface {
	Create(ctx context.Context, entry *domain.VerificationLog) error
	ListByUser(ctx context.Context, userID string) ([]domain.VerificationLog, error)
}

type verificationLogRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationLogRepository builds repository.
func NewVerificationLogRepository(pool *pgxpool.Pool) VerificationLogRepository {
	return &verificationLogRepository{pool: pool}
}

func (r *verificationLogRepository) Create(ctx context.Context, entry *domain.VerificationLog) error {
	const query = `
        INSERT INTO verification_logs (user_id, verification_type, status, reason)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.UserID,
		entry.VerificationType,
		string(entry.Status),
		entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *verificationLogRepository) ListByUser(ctx context.Context, userID string) ([]domain.VerificationLog, error) {
	const query = `
        SELECT id, user_id, verification_type, status, reason, created_at
        FROM verification_logs WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VerificationLog
	for rows.Next() {
		var entry domain.VerificationLog
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.VerificationType,
			&entry.Status,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
