package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sheetdash/internal/model"
)

const (
	// AccountIDHeader and AccountRoleHeader are set by the upstream identity provider.
	AccountIDHeader   = "X-Account-ID"
	AccountRoleHeader = "X-Account-Role"

	ActorLocalKey = "actor"
)

// Identity trusts the identity headers and stores a model.Actor in locals.
// A missing or malformed account id or role answers 401.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(AccountIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or invalid account id")
		}
		role, err := model.ParseRole(c.Get(AccountRoleHeader, string(model.RoleUser)))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid account role")
		}
		c.Locals(ActorLocalKey, model.Actor{ID: id, Role: role})
		return c.Next()
	}
}

// RequireRole answers 403 unless the actor's role is at least min. It must run after Identity.
func RequireRole(min model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromCtx(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthenticated")
		}
		if !actor.Role.AtLeast(min) {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// ActorFromCtx returns the actor stored by Identity.
func ActorFromCtx(c *fiber.Ctx) (model.Actor, bool) {
	a, ok := c.Locals(ActorLocalKey).(model.Actor)
	return a, ok
}
