package dto

import "time"

// CategoryCountResponse is one histogram bucket.
type CategoryCountResponse struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SpecialistLoadResponse is one row of the open-work-per-specialist table.
type SpecialistLoadResponse struct {
	SpecialistID   string `json:"specialist_id"`
	SpecialistName string `json:"specialist_name"`
	ActiveRequests int    `json:"active_requests"`
}

// StatsOverviewResponse is the management dashboard payload.
// average_repair_days is null until at least one completed request yields a
// usable duration.
type StatsOverviewResponse struct {
	TotalRequests     int                      `json:"total_requests"`
	CompletedRequests int                      `json:"completed_requests"`
	AverageRepairDays *float64                 `json:"average_repair_days"`
	ByEquipmentType   []CategoryCountResponse  `json:"by_equipment_type"`
	ByIssueType       []CategoryCountResponse  `json:"by_issue_type"`
	SpecialistLoad    []SpecialistLoadResponse `json:"specialist_load"`
	GeneratedAt       time.Time                `json:"generated_at"`
}
