// Package rbac decides what each role may do with repair requests.
//
// Every function is a pure predicate over the actor's role, the request's
// ownership fields and the finality of the statuses involved. The role set
// is closed; unknown or empty roles are denied everywhere.
package rbac

import "github.com/climatecare/repairdesk/internal/domain"

// CanCreate reports whether the role may file a new repair request.
// Specialists only service requests, they never open them.
func CanCreate(role domain.Role) bool {
	switch role {
	case domain.RoleManager, domain.RoleOperator, domain.RoleClient:
		return true
	default:
		return false
	}
}

// CanView reports whether the actor may read the request. Managers and
// operators see everything, specialists see their assignments, clients see
// their own requests.
func CanView(role domain.Role, req domain.Request, actorID string) bool {
	switch role {
	case domain.RoleManager, domain.RoleOperator:
		return true
	case domain.RoleSpecialist:
		return isAssigned(req, actorID)
	case domain.RoleClient:
		return isOwner(req, actorID)
	default:
		return false
	}
}

// CanEdit reports whether the actor may modify the request. Clients lose
// edit rights the moment the request reaches a final status; staff keep
// theirs.
func CanEdit(role domain.Role, req domain.Request, actorID string) bool {
	switch role {
	case domain.RoleManager, domain.RoleOperator:
		return true
	case domain.RoleSpecialist:
		return isAssigned(req, actorID)
	case domain.RoleClient:
		return isOwner(req, actorID) && !req.Status.IsFinal
	default:
		return false
	}
}

// CanDelete reports whether the role may remove requests entirely.
func CanDelete(role domain.Role) bool {
	return role == domain.RoleManager || role == domain.RoleOperator
}

// CanComment reports whether the actor may leave a work note on the
// request. Only the assigned specialist comments.
func CanComment(role domain.Role, req domain.Request, actorID string) bool {
	return role == domain.RoleSpecialist && isAssigned(req, actorID)
}

// CanChangeStatus reports whether the role may move a request from old to
// next. Keeping the current status is always allowed to whoever may edit;
// specialists may advance work but never reopen a finalized request.
func CanChangeStatus(role domain.Role, old, next domain.Status) bool {
	switch role {
	case domain.RoleManager, domain.RoleOperator:
		return true
	case domain.RoleSpecialist:
		if old.ID == next.ID {
			return true
		}
		if old.IsFinal && !next.IsFinal {
			return false
		}
		return true
	case domain.RoleClient:
		return old.ID == next.ID
	default:
		return false
	}
}

// CanAssignSpecialist reports whether the role may pick who services a
// request.
func CanAssignSpecialist(role domain.Role) bool {
	return role == domain.RoleManager || role == domain.RoleOperator
}

// CanManageUsers reports whether the role may administer accounts.
func CanManageUsers(role domain.Role) bool {
	return role == domain.RoleManager
}

// CanViewStatistics reports whether the role may read aggregate workshop
// statistics.
func CanViewStatistics(role domain.Role) bool {
	return role == domain.RoleManager
}

func isOwner(req domain.Request, actorID string) bool {
	return actorID != "" && req.ClientID == actorID
}

func isAssigned(req domain.Request, actorID string) bool {
	return actorID != "" && req.SpecialistID != nil && *req.SpecialistID == actorID
}
