package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/climatecare/repairdesk/internal/domain"
)

// RequestScope restricts listings to what the caller may see. Nil fields
// leave the dimension unconstrained.
type RequestScope struct {
	ClientID     *string
	SpecialistID *string
}

// RequestRepository encapsulates repair request persistence.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.Request) error
	Update(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	GetView(ctx context.Context, id string) (*domain.RequestView, error)
	List(ctx context.Context, scope RequestScope, filter domain.RequestFilter) ([]domain.RequestView, error)
	Delete(ctx context.Context, id string) error
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.Request) error {
	const query = `
        INSERT INTO requests (start_date, completion_date, equipment_model_id, issue_type_id,
            problem_description, repair_parts, status_id, client_id, specialist_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		req.StartDate,
		req.CompletionDate,
		req.EquipmentModelID,
		req.IssueTypeID,
		req.ProblemDescription,
		req.RepairParts,
		req.StatusID,
		req.ClientID,
		req.SpecialistID,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *requestRepository) Update(ctx context.Context, req *domain.Request) error {
	const query = `
        UPDATE requests SET start_date=$1, completion_date=$2, equipment_model_id=$3,
            issue_type_id=$4, problem_description=$5, repair_parts=$6, status_id=$7,
            client_id=$8, specialist_id=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		req.StartDate,
		req.CompletionDate,
		req.EquipmentModelID,
		req.IssueTypeID,
		req.ProblemDescription,
		req.RepairParts,
		req.StatusID,
		req.ClientID,
		req.SpecialistID,
		req.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	const query = `
        SELECT r.id, r.start_date, r.completion_date, r.equipment_model_id, r.issue_type_id,
               r.problem_description, r.repair_parts, r.status_id, r.client_id, r.specialist_id,
               r.created_at, r.updated_at, rs.id, rs.name, rs.is_final
        FROM requests r
        JOIN request_statuses rs ON rs.id = r.status_id
        WHERE r.id=$1`
	var req domain.Request
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.StartDate,
		&req.CompletionDate,
		&req.EquipmentModelID,
		&req.IssueTypeID,
		&req.ProblemDescription,
		&req.RepairParts,
		&req.StatusID,
		&req.ClientID,
		&req.SpecialistID,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.Status.ID,
		&req.Status.Name,
		&req.Status.IsFinal,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

const requestViewSelect = `
        SELECT r.id, r.start_date, r.completion_date,
               et.id, et.name, em.id, em.name, it.id, it.name,
               r.problem_description, r.repair_parts,
               rs.id, rs.name, rs.is_final,
               c.id, c.full_name, s.id, s.full_name,
               r.created_at, r.updated_at
        FROM requests r
        JOIN equipment_models em ON em.id = r.equipment_model_id
        JOIN equipment_types et ON et.id = em.equipment_type_id
        JOIN issue_types it ON it.id = r.issue_type_id
        JOIN request_statuses rs ON rs.id = r.status_id
        JOIN users c ON c.id = r.client_id
        LEFT JOIN users s ON s.id = r.specialist_id`

func (r *requestRepository) GetView(ctx context.Context, id string) (*domain.RequestView, error) {
	query := requestViewSelect + ` WHERE r.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	view, err := scanRequestView(row)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (r *requestRepository) List(ctx context.Context, scope RequestScope, filter domain.RequestFilter) ([]domain.RequestView, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if scope.ClientID != nil {
		args = append(args, *scope.ClientID)
		clauses = append(clauses, fmt.Sprintf("r.client_id=$%d", len(args)))
	}
	if scope.SpecialistID != nil {
		args = append(args, *scope.SpecialistID)
		clauses = append(clauses, fmt.Sprintf("r.specialist_id=$%d", len(args)))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		if _, err := uuid.Parse(q); err == nil {
			args = append(args, q)
			clauses = append(clauses, fmt.Sprintf("r.id=$%d", len(args)))
		} else {
			args = append(args, "%"+q+"%")
			clauses = append(clauses, fmt.Sprintf("r.problem_description ILIKE $%d", len(args)))
		}
	}
	if filter.StatusID != "" {
		args = append(args, filter.StatusID)
		clauses = append(clauses, fmt.Sprintf("r.status_id=$%d", len(args)))
	}
	if filter.EquipmentTypeID != "" {
		args = append(args, filter.EquipmentTypeID)
		clauses = append(clauses, fmt.Sprintf("em.equipment_type_id=$%d", len(args)))
	}
	if filter.IssueTypeID != "" {
		args = append(args, filter.IssueTypeID)
		clauses = append(clauses, fmt.Sprintf("r.issue_type_id=$%d", len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY r.created_at DESC, r.id DESC",
		requestViewSelect, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RequestView
	for rows.Next() {
		view, err := scanRequestView(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *view)
	}
	return result, rows.Err()
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRequestView(row pgx.Row) (*domain.RequestView, error) {
	var view domain.RequestView
	if err := row.Scan(
		&view.ID,
		&view.StartDate,
		&view.CompletionDate,
		&view.EquipmentTypeID,
		&view.EquipmentType,
		&view.EquipmentModelID,
		&view.EquipmentModel,
		&view.IssueTypeID,
		&view.IssueType,
		&view.ProblemDescription,
		&view.RepairParts,
		&view.Status.ID,
		&view.Status.Name,
		&view.Status.IsFinal,
		&view.ClientID,
		&view.ClientName,
		&view.SpecialistID,
		&view.SpecialistName,
		&view.CreatedAt,
		&view.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &view, nil
}
