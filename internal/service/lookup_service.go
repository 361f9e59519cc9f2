package service

import (
	"context"

	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/rbac"
	"github.com/climatecare/repairdesk/internal/repository"
	apperrors "github.com/climatecare/repairdesk/pkg/util"
)

// LookupService serves the reference data request forms and filters build on.
type LookupService struct {
	lookups repository.LookupRepository
	users   repository.UserRepository
}

// LookupDependencies encapsulates repo requirements for the lookup service.
type LookupDependencies struct {
	LookupRepo repository.LookupRepository
	UserRepo   repository.UserRepository
}

// Reference bundles every reference list in one response so forms load with
// a single round trip.
type Reference struct {
	Statuses       []domain.Status
	EquipmentTypes []domain.EquipmentType
	IssueTypes     []domain.IssueType
}

// FormLookups extends Reference with the people pickers the request form
// offers to staff and the status a new request lands in when none is chosen.
type FormLookups struct {
	Reference
	Specialists   []domain.User
	Clients       []domain.User
	DefaultStatus *domain.Status
}

// NewLookupService constructs the service.
func NewLookupService(deps LookupDependencies) *LookupService {
	return &LookupService{lookups: deps.LookupRepo, users: deps.UserRepo}
}

// Reference returns the status, equipment type and issue type lists. Every
// authenticated role may read them; clients need them to file requests.
func (s *LookupService) Reference(ctx context.Context, actor *domain.User) (*Reference, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	statuses, err := s.lookups.ListStatuses(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	equipmentTypes, err := s.lookups.ListEquipmentTypes(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	issueTypes, err := s.lookups.ListIssueTypes(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ref := &Reference{
		Statuses:       statuses,
		EquipmentTypes: equipmentTypes,
		IssueTypes:     issueTypes,
	}
	if ref.Statuses == nil {
		ref.Statuses = []domain.Status{}
	}
	if ref.EquipmentTypes == nil {
		ref.EquipmentTypes = []domain.EquipmentType{}
	}
	if ref.IssueTypes == nil {
		ref.IssueTypes = []domain.IssueType{}
	}
	return ref, nil
}

// FormLookups returns everything the request create/edit form needs in one
// call. Only roles that may file requests get it; specialists work from the
// request detail instead. DefaultStatus stays nil when no usable status is
// seeded, so the form still renders while filing fails loudly.
func (s *LookupService) FormLookups(ctx context.Context, actor *domain.User) (*FormLookups, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !rbac.CanCreate(actor.Role) {
		return nil, apperrors.NewForbidden("role cannot file requests")
	}
	ref, err := s.Reference(ctx, actor)
	if err != nil {
		return nil, err
	}
	specialists, err := s.listByRole(ctx, domain.RoleSpecialist)
	if err != nil {
		return nil, err
	}
	clients, err := s.listByRole(ctx, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	form := &FormLookups{
		Reference:   *ref,
		Specialists: specialists,
		Clients:     clients,
	}
	status, err := s.DefaultStatus(ctx)
	if err == nil {
		form.DefaultStatus = status
	} else if apperrors.ToDomainError(err).Code != "CONFIGURATION_ERROR" {
		return nil, err
	}
	return form, nil
}

// DefaultStatus exposes the status assigned to requests filed without an
// explicit choice.
func (s *LookupService) DefaultStatus(ctx context.Context) (*domain.Status, error) {
	return defaultRequestStatus(ctx, s.lookups)
}

func (s *LookupService) listByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users, err := s.users.List(ctx, &role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
