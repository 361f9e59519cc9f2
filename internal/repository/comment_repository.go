package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/climatecare/repairdesk/internal/domain"
)

// CommentRepository encapsulates specialist work-note persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (request_id, specialist_id, message)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.RequestID,
		comment.SpecialistID,
		comment.Message,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.request_id, c.specialist_id, c.message, c.created_at, u.full_name
        FROM comments c
        JOIN users u ON u.id = c.specialist_id
        WHERE c.request_id=$1
        ORDER BY c.created_at ASC`
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.RequestID,
			&comment.SpecialistID,
			&comment.Message,
			&comment.CreatedAt,
			&comment.SpecialistName,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
