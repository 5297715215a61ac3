package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lumengate/lumengate/internal/auth"
)

// WalletKey is the locals key under which the authenticated wallet address is
// stored for downstream handlers.
const WalletKey = "wallet"

// BearerAuth validates the Authorization header as an access token and
// attaches the decoded wallet to the request. Refresh tokens are rejected
// here even when otherwise valid.
func BearerAuth(accessSecret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authz, "Bearer ") {
			return unauthorized(c, auth.CodeTokenInvalid, "Missing bearer token.")
		}

		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		wallet, err := auth.VerifyToken(tokenStr, auth.TokenKindAccess, accessSecret)
		if err != nil {
			if errors.Is(err, auth.ErrTokenWrongKind) {
				return unauthorized(c, auth.CodeTokenWrongKind, "Token kind is not accepted here.")
			}
			return unauthorized(c, auth.CodeTokenInvalid, "Invalid or expired token.")
		}

		c.Locals(WalletKey, wallet)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"code": code, "message": message})
}
