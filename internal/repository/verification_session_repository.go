package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/travel-community/internal/domain"
)

// VerificationSessionRepository records hosted verification sessions.
type VerificationSessionRepository interface {
	Create(ctx context.Context, session *domain.VerificationSession) error
	ListByUser(ctx context.Context, userID string) ([]domain.VerificationSession, error)
}

type verificationSessionRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationSessionRepository builds repository.
func NewVerificationSessionRepository(pool *pgxpool.Pool) VerificationSessionRepository {
	return &verificationSessionRepository{pool: pool}
}

func (r *verificationSessionRepository) Create(ctx context.Context, session *domain.VerificationSession) error {
	const query = `
        INSERT INTO verification_sessions (user_id, verification_type, session_id, verification_url, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		session.UserID,
		string(session.Type),
		session.SessionID,
		session.VerificationURL,
		session.Status,
	).Scan(&session.ID, &session.CreatedAt)
}

func (r *verificationSessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.VerificationSession, error) {
	const query = `
        SELECT id, user_id, verification_type, session_id, verification_url, status, created_at
        FROM verification_sessions WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	defer rows.Close()

	var result []domain.VerificationSession
	for rows.Next() {
		var session domain.VerificationSession
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Type,
			&session.SessionID,
			&session.VerificationURL,
			&session.Status,
			&session.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	return result, rows.Err()
}
