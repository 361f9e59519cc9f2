package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/climatecare/repairdesk/internal/api/dto"
	"github.com/climatecare/repairdesk/internal/auth"
	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/service"
	apperrors "github.com/climatecare/repairdesk/pkg/util"
)

// LookupsHandler serves the reference data request forms are built from.
type LookupsHandler struct {
	service *service.LookupService
}

// NewLookupsHandler constructs handler.
func NewLookupsHandler(lookupService *service.LookupService) *LookupsHandler {
	return &LookupsHandler{service: lookupService}
}

// Reference GET /lookups.
func (h *LookupsHandler) Reference(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	ref, err := h.service.Reference(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": referenceResponse(ref)})
}

// Form GET /lookups/form.
func (h *LookupsHandler) Form(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	form, err := h.service.FormLookups(c.Context(), principal.User)
	if err != nil {
		return err
	}

	resp := dto.FormLookupsResponse{
		ReferenceResponse: referenceResponse(&form.Reference),
		Specialists:       userOptions(form.Specialists),
		Clients:           userOptions(form.Clients),
	}
	if form.DefaultStatus != nil {
		resp.DefaultStatus = &dto.StatusResponse{
			ID:      form.DefaultStatus.ID,
			Name:    form.DefaultStatus.Name,
			IsFinal: form.DefaultStatus.IsFinal,
		}
	}
	return c.JSON(fiber.Map{"data": resp})
}

func referenceResponse(ref *service.Reference) dto.ReferenceResponse {
	resp := dto.ReferenceResponse{
		Statuses:       make([]dto.StatusResponse, 0, len(ref.Statuses)),
		EquipmentTypes: make([]dto.EquipmentTypeResponse, 0, len(ref.EquipmentTypes)),
		IssueTypes:     make([]dto.IssueTypeResponse, 0, len(ref.IssueTypes)),
	}
	for _, status := range ref.Statuses {
		resp.Statuses = append(resp.Statuses, dto.StatusResponse{
			ID:      status.ID,
			Name:    status.Name,
			IsFinal: status.IsFinal,
		})
	}
	for _, equipmentType := range ref.EquipmentTypes {
		resp.EquipmentTypes = append(resp.EquipmentTypes, dto.EquipmentTypeResponse{
			ID:   equipmentType.ID,
			Name: equipmentType.Name,
		})
	}
	for _, issueType := range ref.IssueTypes {
		resp.IssueTypes = append(resp.IssueTypes, dto.IssueTypeResponse{
			ID:   issueType.ID,
			Name: issueType.Name,
		})
	}
	return resp
}

func userOptions(users []domain.User) []dto.UserOptionResponse {
	options := make([]dto.UserOptionResponse, 0, len(users))
	for _, user := range users {
		options = append(options, dto.UserOptionResponse{ID: user.ID, FullName: user.FullName})
	}
	return options
}
