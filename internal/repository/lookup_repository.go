package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/climatecare/repairdesk/internal/domain"
)

// LookupRepository serves reference data: statuses, equipment and issue
// catalogs, including the on-the-fly creation of models and issue types
// mentioned by new requests.
type LookupRepository interface {
	ListStatuses(ctx context.Context) ([]domain.Status, error)
	GetStatus(ctx context.Context, id string) (*domain.Status, error)
	FindStatusByName(ctx context.Context, name string) (*domain.Status, error)
	FirstNonFinalStatus(ctx context.Context) (*domain.Status, error)
	ListEquipmentTypes(ctx context.Context) ([]domain.EquipmentType, error)
	GetEquipmentType(ctx context.Context, id string) (*domain.EquipmentType, error)
	ListIssueTypes(ctx context.Context) ([]domain.IssueType, error)
	GetIssueType(ctx context.Context, id string) (*domain.IssueType, error)
	GetOrCreateEquipmentModel(ctx context.Context, equipmentTypeID, name string) (*domain.EquipmentModel, error)
	GetOrCreateIssueType(ctx context.Context, name string) (*domain.IssueType, error)
}

type lookupRepository struct {
	pool *pgxpool.Pool
}

// NewLookupRepository instantiates the repository.
func NewLookupRepository(pool *pgxpool.Pool) LookupRepository {
	return &lookupRepository{pool: pool}
}

func (r *lookupRepository) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	const query = `SELECT id, name, is_final FROM request_statuses ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Status
	for rows.Next() {
		var status domain.Status
		if err := rows.Scan(&status.ID, &status.Name, &status.IsFinal); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}

func (r *lookupRepository) GetStatus(ctx context.Context, id string) (*domain.Status, error) {
	const query = `SELECT id, name, is_final FROM request_statuses WHERE id=$1`
	return r.fetchStatus(ctx, query, id)
}

func (r *lookupRepository) FindStatusByName(ctx context.Context, name string) (*domain.Status, error) {
	const query = `SELECT id, name, is_final FROM request_statuses WHERE name=$1`
	return r.fetchStatus(ctx, query, name)
}

func (r *lookupRepository) FirstNonFinalStatus(ctx context.Context) (*domain.Status, error) {
	const query = `
        SELECT id, name, is_final FROM request_statuses
        WHERE is_final = FALSE
        ORDER BY sort_order ASC, name ASC
        LIMIT 1`
	var status domain.Status
	if err := r.pool.QueryRow(ctx, query).Scan(&status.ID, &status.Name, &status.IsFinal); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *lookupRepository) fetchStatus(ctx context.Context, query string, arg any) (*domain.Status, error) {
	var status domain.Status
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&status.ID, &status.Name, &status.IsFinal); err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *lookupRepository) ListEquipmentTypes(ctx context.Context) ([]domain.EquipmentType, error) {
	const query = `SELECT id, name FROM equipment_types ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EquipmentType
	for rows.Next() {
		var et domain.EquipmentType
		if err := rows.Scan(&et.ID, &et.Name); err != nil {
			return nil, err
		}
		result = append(result, et)
	}
	return result, rows.Err()
}

func (r *lookupRepository) GetEquipmentType(ctx context.Context, id string) (*domain.EquipmentType, error) {
	const query = `SELECT id, name FROM equipment_types WHERE id=$1`
	var et domain.EquipmentType
	if err := r.pool.QueryRow(ctx, query, id).Scan(&et.ID, &et.Name); err != nil {
		return nil, err
	}
	return &et, nil
}

func (r *lookupRepository) ListIssueTypes(ctx context.Context) ([]domain.IssueType, error) {
	const query = `SELECT id, name FROM issue_types ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssueType
	for rows.Next() {
		var it domain.IssueType
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

func (r *lookupRepository) GetIssueType(ctx context.Context, id string) (*domain.IssueType, error) {
	const query = `SELECT id, name FROM issue_types WHERE id=$1`
	var it domain.IssueType
	if err := r.pool.QueryRow(ctx, query, id).Scan(&it.ID, &it.Name); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *lookupRepository) GetOrCreateEquipmentModel(ctx context.Context, equipmentTypeID, name string) (*domain.EquipmentModel, error) {
	// Upsert keeps the lookup race-free under concurrent intake; the no-op
	// update makes RETURNING yield the existing row.
	const query = `
        INSERT INTO equipment_models (equipment_type_id, name)
        VALUES ($1,$2)
        ON CONFLICT (equipment_type_id, name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, equipment_type_id, name`
	var model domain.EquipmentModel
	if err := r.pool.QueryRow(ctx, query, equipmentTypeID, name).Scan(
		&model.ID,
		&model.EquipmentTypeID,
		&model.Name,
	); err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *lookupRepository) GetOrCreateIssueType(ctx context.Context, name string) (*domain.IssueType, error) {
	const query = `
        INSERT INTO issue_types (name)
        VALUES ($1)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, name`
	var it domain.IssueType
	if err := r.pool.QueryRow(ctx, query, name).Scan(&it.ID, &it.Name); err != nil {
		return nil, err
	}
	return &it, nil
}
