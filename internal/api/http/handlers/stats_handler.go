package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/climatecare/repairdesk/internal/api/dto"
	"github.com/climatecare/repairdesk/internal/auth"
	"github.com/climatecare/repairdesk/internal/service"
	"github.com/climatecare/repairdesk/internal/stats"
	apperrors "github.com/climatecare/repairdesk/pkg/util"
)

// StatsHandler serves the management dashboard.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{service: statsService}
}

// Overview GET /stats/overview.
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	overview, err := h.service.Overview(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statsOverviewResponse(overview)})
}

func statsOverviewResponse(overview *service.Overview) dto.StatsOverviewResponse {
	return dto.StatsOverviewResponse{
		TotalRequests:     overview.Summary.TotalRequests,
		CompletedRequests: overview.Summary.CompletedRequests,
		AverageRepairDays: overview.Summary.AverageRepairDays,
		ByEquipmentType:   categoryCounts(overview.Summary.ByEquipmentType),
		ByIssueType:       categoryCounts(overview.Summary.ByIssueType),
		SpecialistLoad:    specialistLoad(overview.SpecialistLoad),
		GeneratedAt:       overview.GeneratedAt,
	}
}

func categoryCounts(buckets []stats.CategoryCount) []dto.CategoryCountResponse {
	resp := make([]dto.CategoryCountResponse, 0, len(buckets))
	for _, bucket := range buckets {
		resp = append(resp, dto.CategoryCountResponse{Label: bucket.Label, Count: bucket.Count})
	}
	return resp
}

func specialistLoad(entries []stats.LoadEntry) []dto.SpecialistLoadResponse {
	resp := make([]dto.SpecialistLoadResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.SpecialistLoadResponse{
			SpecialistID:   entry.SpecialistID,
			SpecialistName: entry.SpecialistName,
			ActiveRequests: entry.ActiveRequests,
		})
	}
	return resp
}
