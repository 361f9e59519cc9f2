package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/stats"
)

// StatsRepository assembles the flat rows the statistics aggregator folds.
// All math happens in the stats package; this layer only joins names out.
type StatsRepository interface {
	CollectRecords(ctx context.Context) ([]stats.Record, error)
	CollectAssignments(ctx context.Context) ([]stats.Assignment, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) CollectRecords(ctx context.Context) ([]stats.Record, error) {
	const query = `
        SELECT r.start_date, r.completion_date, rs.is_final, et.name, it.name
        FROM requests r
        JOIN equipment_models em ON em.id = r.equipment_model_id
        JOIN equipment_types et ON et.id = em.equipment_type_id
        JOIN issue_types it ON it.id = r.issue_type_id
        JOIN request_statuses rs ON rs.id = r.status_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []stats.Record
	for rows.Next() {
		var record stats.Record
		if err := rows.Scan(
			&record.StartDate,
			&record.CompletionDate,
			&record.StatusIsFinal,
			&record.EquipmentType,
			&record.IssueType,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *statsRepository) CollectAssignments(ctx context.Context) ([]stats.Assignment, error) {
	const query = `
        SELECT u.id, u.full_name, rs.is_final
        FROM requests r
        JOIN users u ON u.id = r.specialist_id
        JOIN request_statuses rs ON rs.id = r.status_id
        WHERE u.role = $1`
	rows, err := r.pool.Query(ctx, query, domain.RoleSpecialist)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []stats.Assignment
	for rows.Next() {
		var row stats.Assignment
		if err := rows.Scan(&row.SpecialistID, &row.SpecialistName, &row.StatusIsFinal); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
