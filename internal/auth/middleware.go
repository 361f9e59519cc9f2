package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/repository"
	"github.com/climatecare/repairdesk/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the authenticated caller, loaded fresh from storage on every
// request so role changes and deletions take effect immediately.
type Principal struct {
	User *domain.User
}

// ID returns the account id.
func (p *Principal) ID() string { return p.User.ID }

// Role returns the account role.
func (p *Principal) Role() domain.Role { return p.User.Role }

// Middleware validates bearer tokens and loads the principal into the
// request context.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs the auth middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return util.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return util.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return util.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewUnauthorized("account no longer exists")
		}
		return util.MapError(err)
	}
	if !user.Role.Valid() {
		return util.NewUnauthorized("account role not recognized")
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
