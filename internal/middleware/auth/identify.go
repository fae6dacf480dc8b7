package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	CtxUserID  = "user_id"
	CtxIsAdmin = "is_admin"
)

// Identify reads an optional "Authorization: Bearer" token and records the
// caller on the echo context and request logger. Missing, malformed or
// expired tokens leave the request anonymous; nothing is rejected here.
func Identify(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			l := logging.FromContext(ctx)

			claims, err := tokens.ClaimsFromToken(raw, secret)
			if err != nil {
				l.Debug("bearer_token_ignored", "error", err)
				return next(c)
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxIsAdmin, claims.IsAdmin)

			l = l.With("user_id", claims.UserID, "is_admin", claims.IsAdmin)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserID returns the identified caller, if any.
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(CtxUserID).(string)
	return id, ok && id != ""
}

func IsAdmin(c echo.Context) bool {
	v, _ := c.Get(CtxIsAdmin).(bool)
	return v
}
