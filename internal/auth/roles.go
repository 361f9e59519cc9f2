package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/pkg/util"
)

// RequireRoles gates a route to the given roles. With no arguments any
// authenticated caller passes. Fine-grained checks (ownership, status
// finality) stay in the services; this only trims routes whole roles have
// no business reaching.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role()]; !exists {
			return util.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireStaff gates a route to workshop personnel.
func RequireStaff() fiber.Handler {
	return RequireRoles(domain.RoleManager, domain.RoleOperator, domain.RoleSpecialist)
}
