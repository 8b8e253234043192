package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/travel-community/internal/domain"
)

// StayRequestRepository persists accommodation requests.
type StayRequestRepository interface {
	Create(ctx context.Context, req *domain.StayRequest) error
	GetByID(ctx context.Context, id string) (*domain.StayRequest, error)
	List(ctx context.Context, city string) ([]domain.StayRequest, error)
}

type stayRequestRepository struct {
	pool *pgxpool.Pool
}

// NewStayRequestRepository instantiates repository.
func NewStayRequestRepository(pool *pgxpool.Pool) StayRequestRepository {
	return &stayRequestRepository{pool: pool}
}

const staySelect = `
        SELECT s.id, s.user_id, s.city, s.start_date, s.end_date, s.budget, s.description, COALESCE(u.name, ''), s.created_at
        FROM stay_requests s
        LEFT JOIN users u ON u.id = s.user_id`

func (r *stayRequestRepository) Create(ctx context.Context, req *domain.StayRequest) error {
	const query = `
        INSERT INTO stay_requests (user_id, city, start_date, end_date, budget, description)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		req.UserID,
		req.City,
		req.StartDate,
		req.EndDate,
		req.Budget,
		req.Description,
	).Scan(&req.ID, &req.CreatedAt)
}

func (r *stayRequestRepository) GetByID(ctx context.Context, id string) (*domain.StayRequest, error) {
	req, err := scanStayRequest(r.pool.QueryRow(ctx, staySelect+` WHERE s.id=$1`, id))
	if err != nil {
		return nil, mapLookupError(err)
	}
	return req, nil
}

func (r *stayRequestRepository) List(ctx context.Context, city string) ([]domain.StayRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if city = strings.TrimSpace(city); city != "" {
		args = append(args, city)
		clauses = append(clauses, fmt.Sprintf("s.city=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.created_at DESC`, staySelect, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StayRequest
	for rows.Next() {
		req, err := scanStayRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func scanStayRequest(row pgx.Row) (*domain.StayRequest, error) {
	var req domain.StayRequest
	if err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.City,
		&req.StartDate,
		&req.EndDate,
		&req.Budget,
		&req.Description,
		&req.Author,
		&req.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
