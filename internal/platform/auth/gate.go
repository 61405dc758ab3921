package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Gate returns the per-request authorization middleware. Each request runs a
// fixed sequence, terminal on first failure:
//
//  1. match the route policy; public routes short-circuit with no principal
//  2. extract the bearer token from the Authorization header
//  3. validate it with the token service
//  4. attach the principal to the request context
//  5. check the principal's role against the matched rule
//
// The gate is the only place that turns a token outcome into a status code:
// missing, malformed, bad-signature and expired tokens are 401, a valid
// principal with a role outside the permitted set is 403. Handlers only ever
// see an established principal.
func Gate(table *PolicyTable, tokens *TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rule := table.Match(c.Request().URL.Path)
			if rule.Kind == AccessPublic {
				return next(c)
			}

			tokenStr, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			principal, err := tokens.Validate(tokenStr, time.Now())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, statusMessage(err))
			}

			ctx := WithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))

			if rule.Kind == AccessRoles && !principal.Role.In(rule.Roles...) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}

			return next(c)
		}
	}
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header. The scheme comparison is case-insensitive.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func statusMessage(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "token expired"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "invalid token signature"
	default:
		return "malformed token"
	}
}
