package middleware

import (
	"wager-backend/internal/domain"
	"wager-backend/internal/pkg/response"
	"wager-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// PrincipalHeader carries the caller identity, established by whatever sits
// in front of this service.
const PrincipalHeader = "X-Principal"

const (
	principalLocal  = "principal"
	rejectedLocal   = "principal_rejected"
	invalidIdentity = "Invalid principal"
)

// OperatorChecker is the privileged-operator predicate.
type OperatorChecker interface {
	IsOperator(p domain.Principal) bool
}

// Principal copies the caller identity from the request header into Locals.
// Malformed identities and the ledger's own accounts are never set.
func Principal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := domain.ParsePrincipal(c.Get(PrincipalHeader))
		switch {
		case p.IsZero():
		case validation.IsValidPrincipal(p.String()):
			c.Locals(principalLocal, domain.Principal(utils.CopyString(p.String())))
		default:
			c.Locals(rejectedLocal, true)
		}
		return c.Next()
	}
}

// RequirePrincipal rejects requests without a caller identity with 401, and
// requests naming an invalid or reserved identity with 403.
func RequirePrincipal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rejected, _ := c.Locals(rejectedLocal).(bool); rejected {
			return response.Error(c, invalidIdentity, fiber.StatusForbidden, nil)
		}
		if GetPrincipal(c).IsZero() {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireOperator rejects callers that are not operators with 403.
func RequireOperator(ops OperatorChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rejected, _ := c.Locals(rejectedLocal).(bool); rejected {
			return response.Error(c, invalidIdentity, fiber.StatusForbidden, nil)
		}
		p := GetPrincipal(c)
		if p.IsZero() {
			return response.Unauthorized(c, "Unauthorized")
		}
		if ops == nil || !ops.IsOperator(p) {
			return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}

// GetPrincipal returns the caller identity ("" when absent).
func GetPrincipal(c *fiber.Ctx) domain.Principal {
	p, _ := c.Locals(principalLocal).(domain.Principal)
	return p
}
