package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/climatecare/repairdesk/internal/config"
	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/events"
	"github.com/climatecare/repairdesk/internal/rbac"
	"github.com/climatecare/repairdesk/internal/repository"
	"github.com/climatecare/repairdesk/internal/validate"
	apperrors "github.com/climatecare/repairdesk/pkg/util"
)

// RequestService coordinates the repair request lifecycle.
type RequestService struct {
	requests      repository.RequestRepository
	comments      repository.CommentRepository
	lookups       repository.LookupRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	surveyBaseURL string
}

// RequestDependencies bundles repositories for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	CommentRepo repository.CommentRepository
	LookupRepo  repository.LookupRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// RequestCreateInput describes the creation payload. Dates use the
// YYYY-MM-DD layout. ClientID is ignored for clients, who always file for
// themselves. An empty StatusID selects the configured default status. An
// empty or unknown IssueTypeID derives the issue category from the problem
// description instead.
type RequestCreateInput struct {
	StartDate          string
	CompletionDate     string
	EquipmentTypeID    string
	EquipmentModelName string
	IssueTypeID        string
	ProblemDescription string
	RepairParts        string
	StatusID           string
	ClientID           string
	SpecialistID       string
}

// RequestUpdateInput is a full replacement of a request's editable fields.
// An empty StatusID keeps the current status. A nil SpecialistID keeps the
// current assignee; pointing at an empty string clears it.
type RequestUpdateInput struct {
	StartDate          string
	CompletionDate     string
	EquipmentTypeID    string
	EquipmentModelName string
	IssueTypeID        string
	ProblemDescription string
	RepairParts        string
	StatusID           string
	SpecialistID       *string
}

// RequestPermissions tells the caller which follow-up actions the current
// actor may take on a request.
type RequestPermissions struct {
	CanEdit             bool
	CanDelete           bool
	CanComment          bool
	CanChangeStatus     bool
	CanAssignSpecialist bool
}

// RequestDetail combines the request view with its comments, the actor's
// permissions and, once the request is final, the quality survey link.
type RequestDetail struct {
	Request     domain.RequestView
	Comments    []domain.Comment
	Permissions RequestPermissions
	SurveyURL   string
}

// NewRequestService constructs the service.
func NewRequestService(cfg config.Config, deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:      deps.RequestRepo,
		comments:      deps.CommentRepo,
		lookups:       deps.LookupRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		surveyBaseURL: cfg.Survey.BaseURL,
	}
}

// List returns the requests visible to the actor, newest first. Clients see
// their own requests, specialists their assignments, managers and operators
// everything.
func (s *RequestService) List(ctx context.Context, actor *domain.User, filter domain.RequestFilter) ([]domain.RequestView, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	scope := repository.RequestScope{}
	switch actor.Role {
	case domain.RoleManager, domain.RoleOperator:
	case domain.RoleSpecialist:
		scope.SpecialistID = &actor.ID
	case domain.RoleClient:
		scope.ClientID = &actor.ID
	default:
		return nil, apperrors.NewForbidden("access denied")
	}
	views, err := s.requests.List(ctx, scope, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if views == nil {
		views = []domain.RequestView{}
	}
	return views, nil
}

// Get returns one request with comments and the actor's permissions.
func (s *RequestService) Get(ctx context.Context, actor *domain.User, id string) (*RequestDetail, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rbac.CanView(actor.Role, *req, actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	view, err := s.view(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	detail := &RequestDetail{
		Request:  *view,
		Comments: comments,
		Permissions: RequestPermissions{
			CanEdit:             rbac.CanEdit(actor.Role, *req, actor.ID),
			CanDelete:           rbac.CanDelete(actor.Role),
			CanComment:          rbac.CanComment(actor.Role, *req, actor.ID),
			CanChangeStatus:     actor.Role.IsStaff() && rbac.CanEdit(actor.Role, *req, actor.ID),
			CanAssignSpecialist: rbac.CanAssignSpecialist(actor.Role),
		},
	}
	if req.Status.IsFinal {
		detail.SurveyURL = SurveyURL(s.surveyBaseURL, req.ID)
	}
	return detail, nil
}

// Create files a new repair request. Clients always file for themselves;
// managers and operators file on a client's behalf and may pick the initial
// status and specialist.
func (s *RequestService) Create(ctx context.Context, actor *domain.User, input RequestCreateInput) (*domain.RequestView, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !rbac.CanCreate(actor.Role) {
		return nil, apperrors.NewForbidden("role cannot file requests")
	}

	fields, err := s.validateFields(ctx, requestFieldInput{
		StartDate:          input.StartDate,
		CompletionDate:     input.CompletionDate,
		EquipmentTypeID:    input.EquipmentTypeID,
		EquipmentModelName: input.EquipmentModelName,
		ProblemDescription: input.ProblemDescription,
	})
	if err != nil {
		return nil, err
	}

	clientID := actor.ID
	if actor.Role != domain.RoleClient {
		resolved, err := s.resolveClient(ctx, input.ClientID)
		if err != nil {
			return nil, err
		}
		clientID = resolved
	}

	var specialistID *string
	if chosen := strings.TrimSpace(input.SpecialistID); chosen != "" {
		if !rbac.CanAssignSpecialist(actor.Role) {
			return nil, apperrors.NewForbidden("cannot assign specialists")
		}
		specialist, err := s.resolveSpecialist(ctx, chosen)
		if err != nil {
			return nil, err
		}
		specialistID = &specialist.ID
	}

	// Picking an initial status is treated as a transition away from the
	// default, so the same role rules apply as on edit.
	status, err := defaultRequestStatus(ctx, s.lookups)
	if err != nil {
		return nil, err
	}
	if sid := strings.TrimSpace(input.StatusID); sid != "" {
		chosen, err := s.resolveStatus(ctx, sid)
		if err != nil {
			return nil, err
		}
		if !rbac.CanChangeStatus(actor.Role, *status, *chosen) {
			return nil, apperrors.NewForbidden("cannot set request status")
		}
		status = chosen
	}

	model, issue, err := s.resolveEquipment(ctx, fields, input.IssueTypeID)
	if err != nil {
		return nil, err
	}

	completion := fields.completion
	if status.IsFinal && completion == nil {
		completion = dateToday()
	}

	req := &domain.Request{
		StartDate:          fields.start,
		CompletionDate:     completion,
		EquipmentModelID:   model.ID,
		IssueTypeID:        issue.ID,
		ProblemDescription: fields.problem,
		RepairParts:        optionalText(input.RepairParts),
		StatusID:           status.ID,
		ClientID:           clientID,
		SpecialistID:       specialistID,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: req.ID,
		Actor:     eventActor(actor),
		Payload: events.RequestCreatedPayload{
			ClientID:      clientID,
			SpecialistID:  specialistID,
			StatusName:    status.Name,
			EquipmentType: model.Name,
		},
	})
	return s.view(ctx, req.ID)
}

// Update replaces the editable fields of a request, enforcing edit, status
// transition and assignment rules for the actor.
func (s *RequestService) Update(ctx context.Context, actor *domain.User, id string, input RequestUpdateInput) (*domain.RequestView, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rbac.CanEdit(actor.Role, *req, actor.ID) {
		return nil, apperrors.NewForbidden("cannot edit this request")
	}

	fields, err := s.validateFields(ctx, requestFieldInput{
		StartDate:          input.StartDate,
		CompletionDate:     input.CompletionDate,
		EquipmentTypeID:    input.EquipmentTypeID,
		EquipmentModelName: input.EquipmentModelName,
		ProblemDescription: input.ProblemDescription,
	})
	if err != nil {
		return nil, err
	}

	oldStatus := req.Status
	status := &oldStatus
	if sid := strings.TrimSpace(input.StatusID); sid != "" {
		chosen, err := s.resolveStatus(ctx, sid)
		if err != nil {
			return nil, err
		}
		if !rbac.CanChangeStatus(actor.Role, oldStatus, *chosen) {
			return nil, apperrors.NewForbidden("status change not allowed")
		}
		status = chosen
	}

	specialistID := req.SpecialistID
	if input.SpecialistID != nil {
		desired := optionalText(*input.SpecialistID)
		if !sameID(desired, req.SpecialistID) {
			if !rbac.CanAssignSpecialist(actor.Role) {
				return nil, apperrors.NewForbidden("cannot assign specialists")
			}
			if desired != nil {
				specialist, err := s.resolveSpecialist(ctx, *desired)
				if err != nil {
					return nil, err
				}
				desired = &specialist.ID
			}
			specialistID = desired
		}
	}

	model, issue, err := s.resolveEquipment(ctx, fields, input.IssueTypeID)
	if err != nil {
		return nil, err
	}

	completion := fields.completion
	if status.IsFinal && completion == nil {
		completion = dateToday()
	}

	req.StartDate = fields.start
	req.CompletionDate = completion
	req.EquipmentModelID = model.ID
	req.IssueTypeID = issue.ID
	req.ProblemDescription = fields.problem
	req.RepairParts = optionalText(input.RepairParts)
	req.StatusID = status.ID
	req.SpecialistID = specialistID
	req.Status = *status

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	if status.ID != oldStatus.ID {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventRequestStatusChanged,
			RequestID: req.ID,
			Actor:     eventActor(actor),
			Payload: events.RequestStatusChangedPayload{
				OldStatus: oldStatus.Name,
				NewStatus: status.Name,
				IsFinal:   status.IsFinal,
			},
		})
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestUpdated,
		RequestID: req.ID,
		Actor:     eventActor(actor),
		Payload: events.RequestUpdatedPayload{
			StatusName:   status.Name,
			SpecialistID: specialistID,
		},
	})
	return s.view(ctx, req.ID)
}

// Delete removes a request and its comments.
func (s *RequestService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !rbac.CanDelete(actor.Role) {
		return apperrors.NewForbidden("cannot delete requests")
	}
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, req.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestDeleted,
		RequestID: req.ID,
		Actor:     eventActor(actor),
		Payload:   events.RequestDeletedPayload{ClientID: req.ClientID},
	})
	return nil
}

// AddComment appends a work note from the assigned specialist.
func (s *RequestService) AddComment(ctx context.Context, actor *domain.User, requestID, message string) (*domain.Comment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanComment(actor.Role, *req, actor.ID) {
		return nil, apperrors.NewForbidden("only the assigned specialist may comment")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("invalid comment payload", map[string]any{"message": "message is required"})
	}
	comment := &domain.Comment{
		RequestID:    req.ID,
		SpecialistID: actor.ID,
		Message:      message,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	comment.SpecialistName = actor.FullName

	s.publishEvent(ctx, events.Event{
		Type:      events.EventCommentAdded,
		RequestID: req.ID,
		Actor:     eventActor(actor),
		Payload: events.CommentAddedPayload{
			CommentID:      comment.ID,
			SpecialistID:   actor.ID,
			MessagePreview: textPreview(message, 120),
		},
	})
	return comment, nil
}

// SurveyURL appends the request id to the quality survey base URL, honoring
// any query string the base already carries.
func SurveyURL(base, requestID string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "request_id=" + url.QueryEscape(requestID)
}

type requestFieldInput struct {
	StartDate          string
	CompletionDate     string
	EquipmentTypeID    string
	EquipmentModelName string
	ProblemDescription string
}

type requestFields struct {
	start           time.Time
	completion      *time.Time
	equipmentTypeID string
	modelName       string
	problem         string
}

func (s *RequestService) validateFields(ctx context.Context, input requestFieldInput) (*requestFields, error) {
	var v validate.Errors
	fields := &requestFields{}
	fields.start = v.RequiredDate("start_date", input.StartDate)
	fields.completion = v.OptionalDate("completion_date", input.CompletionDate)
	fields.equipmentTypeID = v.RequiredString("equipment_type_id", input.EquipmentTypeID, "equipment type is required")
	fields.modelName = v.RequiredString("equipment_model", input.EquipmentModelName, "equipment model is required")
	fields.problem = v.RequiredString("problem_description", input.ProblemDescription, "problem description is required")
	if !v.Empty() {
		return nil, apperrors.NewValidationError("invalid request payload", v.Details())
	}
	if _, err := s.lookups.GetEquipmentType(ctx, fields.equipmentTypeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("invalid request payload", map[string]any{"equipment_type_id": "unknown equipment type"})
		}
		return nil, apperrors.MapError(err)
	}
	return fields, nil
}

func (s *RequestService) resolveClient(ctx context.Context, clientID string) (string, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return "", apperrors.NewValidationError("invalid request payload", map[string]any{"client_id": "client is required"})
	}
	client, err := s.users.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewValidationError("invalid request payload", map[string]any{"client_id": "unknown client"})
		}
		return "", apperrors.MapError(err)
	}
	if client.Role != domain.RoleClient {
		return "", apperrors.NewValidationError("invalid request payload", map[string]any{"client_id": "account is not a client"})
	}
	return client.ID, nil
}

func (s *RequestService) resolveSpecialist(ctx context.Context, specialistID string) (*domain.User, error) {
	specialist, err := s.users.GetByID(ctx, specialistID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("invalid request payload", map[string]any{"specialist_id": "unknown specialist"})
		}
		return nil, apperrors.MapError(err)
	}
	if specialist.Role != domain.RoleSpecialist {
		return nil, apperrors.NewValidationError("invalid request payload", map[string]any{"specialist_id": "account is not a specialist"})
	}
	return specialist, nil
}

func (s *RequestService) resolveStatus(ctx context.Context, statusID string) (*domain.Status, error) {
	status, err := s.lookups.GetStatus(ctx, statusID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("invalid request payload", map[string]any{"status_id": "unknown status"})
		}
		return nil, apperrors.MapError(err)
	}
	return status, nil
}

// resolveEquipment upserts the equipment model and picks the issue category.
// A valid IssueTypeID wins; otherwise the category is derived from the
// problem description, creating it on first use.
func (s *RequestService) resolveEquipment(ctx context.Context, fields *requestFields, issueTypeID string) (*domain.EquipmentModel, *domain.IssueType, error) {
	model, err := s.lookups.GetOrCreateEquipmentModel(ctx, fields.equipmentTypeID, fields.modelName)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if issueTypeID = strings.TrimSpace(issueTypeID); issueTypeID != "" {
		issue, err := s.lookups.GetIssueType(ctx, issueTypeID)
		if err == nil {
			return model, issue, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.MapError(err)
		}
	}
	issue, err := s.lookups.GetOrCreateIssueType(ctx, domain.NormalizeIssueTypeName(fields.problem))
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return model, issue, nil
}

// defaultRequestStatus resolves the status assigned to new requests: the
// configured name when seeded, otherwise the first non-final status.
func defaultRequestStatus(ctx context.Context, lookups repository.LookupRepository) (*domain.Status, error) {
	status, err := lookups.FindStatusByName(ctx, domain.DefaultNewRequestStatusName)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	status, err = lookups.FirstNonFinalStatus(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConfigurationError("no non-final request status configured")
		}
		return nil, apperrors.MapError(err)
	}
	return status, nil
}

func (s *RequestService) getRequest(ctx context.Context, id string) (*domain.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

func (s *RequestService) view(ctx context.Context, id string) (*domain.RequestView, error) {
	view, err := s.requests.GetView(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return view, nil
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor *domain.User) events.Actor {
	return events.Actor{UserID: actor.ID, Role: actor.Role}
}

func optionalText(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func dateToday() *time.Time {
	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}

func textPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
