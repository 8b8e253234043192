package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/travel-community/internal/domain"
)

// CommentRepository persists comments on posts and stay requests.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTarget(ctx context.Context, target domain.CommentTarget, targetID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (user_id, post_id, stay_request_id, content)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.UserID,
		comment.PostID,
		comment.StayRequestID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByTarget(ctx context.Context, target domain.CommentTarget, targetID string) ([]domain.Comment, error) {
	column := "c.post_id"
	switch target {
	case domain.CommentOnPost:
	case domain.CommentOnStayRequest:
		column = "c.stay_request_id"
	default:
		return nil, fmt.Errorf("unknown comment target %q", target)
	}

	query := fmt.Sprintf(`
        SELECT c.id, c.user_id, c.post_id, c.stay_request_id, c.content, COALESCE(u.name, ''), c.created_at
        FROM comments c
        LEFT JOIN users u ON u.id = c.user_id
        WHERE %s=$1 ORDER BY c.created_at ASC`, column)
	rows, err := r.pool.Query(ctx, query, targetID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.UserID,
			&comment.PostID,
			&comment.StayRequestID,
			&comment.Content,
			&comment.Author,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
