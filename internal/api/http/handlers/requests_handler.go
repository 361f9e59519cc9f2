package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/climatecare/repairdesk/internal/api/dto"
	"github.com/climatecare/repairdesk/internal/auth"
	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/service"
	apperrors "github.com/climatecare/repairdesk/pkg/util"
)

const dateLayout = "2006-01-02"

// RequestsHandler manages repair request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// List GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := domain.RequestFilter{
		Query:           c.Query("q"),
		StatusID:        c.Query("status_id"),
		EquipmentTypeID: c.Query("equipment_type_id"),
		IssueTypeID:     c.Query("issue_type_id"),
	}
	views, err := h.service.List(c.Context(), principal.User, filter)
	if err != nil {
		return err
	}
	items := make([]dto.RequestSummary, 0, len(views))
	for i := range views {
		items = append(items, requestSummary(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.Create(c.Context(), principal.User, service.RequestCreateInput{
		StartDate:          req.StartDate,
		CompletionDate:     req.CompletionDate,
		EquipmentTypeID:    req.EquipmentTypeID,
		EquipmentModelName: req.EquipmentModelName,
		IssueTypeID:        req.IssueTypeID,
		ProblemDescription: req.ProblemDescription,
		RepairParts:        req.RepairParts,
		StatusID:           req.StatusID,
		ClientID:           req.ClientID,
		SpecialistID:       req.SpecialistID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": requestSummary(view)})
}

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	detail, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(detail)})
}

// Update PUT /requests/:id.
func (h *RequestsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.Update(c.Context(), principal.User, c.Params("id"), service.RequestUpdateInput{
		StartDate:          req.StartDate,
		CompletionDate:     req.CompletionDate,
		EquipmentTypeID:    req.EquipmentTypeID,
		EquipmentModelName: req.EquipmentModelName,
		IssueTypeID:        req.IssueTypeID,
		ProblemDescription: req.ProblemDescription,
		RepairParts:        req.RepairParts,
		StatusID:           req.StatusID,
		SpecialistID:       req.SpecialistID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummary(view)})
}

// Delete DELETE /requests/:id.
func (h *RequestsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deleted"}})
}

// AddComment POST /requests/:id/comments.
func (h *RequestsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.AddComment(c.Context(), principal.User, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

func requestSummary(view *domain.RequestView) dto.RequestSummary {
	return dto.RequestSummary{
		ID:                 view.ID,
		StartDate:          view.StartDate.Format(dateLayout),
		CompletionDate:     formatDate(view.CompletionDate),
		EquipmentType:      view.EquipmentType,
		EquipmentTypeID:    view.EquipmentTypeID,
		EquipmentModel:     view.EquipmentModel,
		IssueType:          view.IssueType,
		IssueTypeID:        view.IssueTypeID,
		ProblemDescription: view.ProblemDescription,
		RepairParts:        view.RepairParts,
		Status: dto.StatusResponse{
			ID:      view.Status.ID,
			Name:    view.Status.Name,
			IsFinal: view.Status.IsFinal,
		},
		ClientID:       view.ClientID,
		ClientName:     view.ClientName,
		SpecialistID:   view.SpecialistID,
		SpecialistName: view.SpecialistName,
		CreatedAt:      view.CreatedAt,
		UpdatedAt:      view.UpdatedAt,
	}
}

func requestDetail(detail *service.RequestDetail) dto.RequestDetailResponse {
	comments := make([]dto.CommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		comments = append(comments, commentResponse(&detail.Comments[i]))
	}
	return dto.RequestDetailResponse{
		RequestSummary: requestSummary(&detail.Request),
		Comments:       comments,
		Permissions: dto.PermissionsResponse{
			CanEdit:             detail.Permissions.CanEdit,
			CanDelete:           detail.Permissions.CanDelete,
			CanComment:          detail.Permissions.CanComment,
			CanChangeStatus:     detail.Permissions.CanChangeStatus,
			CanAssignSpecialist: detail.Permissions.CanAssignSpecialist,
		},
		SurveyURL: detail.SurveyURL,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:             comment.ID,
		SpecialistID:   comment.SpecialistID,
		SpecialistName: comment.SpecialistName,
		Message:        comment.Message,
		CreatedAt:      comment.CreatedAt,
	}
}

func formatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(dateLayout)
	return &formatted
}
