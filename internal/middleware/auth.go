// Package middleware provides authentication, logging, tracing and rate limiting for the HTTP layer.
package middleware

import (
	"context"
	"log/slog"
	"strings"

	"creepycorners/internal/auth"
	"creepycorners/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "token"

// TokenVerifier resolves a raw token to an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ExtractToken returns the session token: the cookie wins over the
// Authorization: Bearer header.
func ExtractToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Cookies(SessionCookie)); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SessionRequired rejects requests without a valid session token.
// A missing token is 401 MISSING_TOKEN; a bad, expired or revoked one is 403 INVALID_TOKEN.
func SessionRequired(verifier TokenVerifier, revocations RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewMissingTokenError())
		}

		id, err := authenticate(c, verifier, revocations, token)
		if err != nil {
			if models.HasCode(err, models.CodeInternal) {
				return models.RespondWithError(c, fiber.StatusInternalServerError, err)
			}
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}

		setIdentity(c, id)
		return c.Next()
	}
}

// SessionOptional attaches the caller's identity when a valid token is present
// and lets anonymous requests through.
func SessionOptional(verifier TokenVerifier, revocations RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := ExtractToken(c); token != "" {
			if id, err := authenticate(c, verifier, revocations, token); err == nil {
				setIdentity(c, id)
			}
		}
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, verifier TokenVerifier, revocations RevocationChecker, token string) (auth.Identity, error) {
	id, err := verifier.Verify(token)
	if err != nil {
		return auth.Identity{}, err
	}
	if revocations == nil {
		return id, nil
	}
	revoked, err := revocations.IsRevoked(c.UserContext(), id.TokenID)
	if err != nil {
		// Redis outages do not lock every user out.
		Logger.WarnContext(c.UserContext(), "token revocation check failed", slog.String("error", err.Error()))
		return id, nil
	}
	if revoked {
		return auth.Identity{}, models.NewInvalidTokenError(nil)
	}
	return id, nil
}

func setIdentity(c *fiber.Ctx, id auth.Identity) {
	c.Locals("userID", id.UserID)
	c.Locals("email", id.Email)
	c.Locals("identity", id)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, id.UserID))
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// CurrentIdentity returns the verified identity set by the session middleware.
func CurrentIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals("identity").(auth.Identity)
	return id, ok
}
