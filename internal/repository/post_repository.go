package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/travel-community/internal/domain"
)

// PostRepository persists forum posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	ListByForum(ctx context.Context, forum domain.ForumType, city string) ([]domain.Post, error)
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository instantiates repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

const postSelect = `
        SELECT p.id, p.user_id, p.forum_type, p.title, p.content, p.city, p.event_date, p.event_location,
               p.scam_type, p.scam_location, p.place_name, p.place_address, COALESCE(u.name, ''), p.created_at
        FROM posts p
        LEFT JOIN users u ON u.id = p.user_id`

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO posts (user_id, forum_type, title, content, city, event_date, event_location,
                           scam_type, scam_location, place_name, place_address)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		post.UserID,
		string(post.Forum),
		post.Title,
		post.Content,
		post.City,
		post.EventDate,
		post.EventLocation,
		post.ScamType,
		post.ScamLocation,
		post.PlaceName,
		post.PlaceAddress,
	).Scan(&post.ID, &post.CreatedAt)
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id=$1`, id))
	if err != nil {
		return nil, mapLookupError(err)
	}
	return post, nil
}

func (r *postRepository) ListByForum(ctx context.Context, forum domain.ForumType, city string) ([]domain.Post, error) {
	clauses := []string{"p.forum_type=$1"}
	args := []any{string(forum)}
	if city = strings.TrimSpace(city); city != "" {
		args = append(args, city)
		clauses = append(clauses, fmt.Sprintf("p.city=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY p.created_at DESC`, postSelect, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *post)
	}
	return result, rows.Err()
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Forum,
		&post.Title,
		&post.Content,
		&post.City,
		&post.EventDate,
		&post.EventLocation,
		&post.ScamType,
		&post.ScamLocation,
		&post.PlaceName,
		&post.PlaceAddress,
		&post.Author,
		&post.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}
