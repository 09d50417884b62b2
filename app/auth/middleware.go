package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Identity headers set by the upstream identity provider. Requests reach
// this service only through that proxy, so header contents are trusted.
const (
	HeaderStudentID = "X-Student-ID"
	HeaderUserRole  = "X-User-Role"

	RoleStudent = "student"
	RoleAdmin   = "admin"

	principalContextKey = "auth.principal"
)

type errorResponse struct {
	Error string `json:"error"`
}

// RequirePrincipal rejects requests without a valid identity assertion and
// stores the Principal on the echo context for handlers.
func RequirePrincipal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			rawID := strings.TrimSpace(ctx.Request().Header.Get(HeaderStudentID))
			role := strings.ToLower(strings.TrimSpace(ctx.Request().Header.Get(HeaderUserRole)))

			studentID, err := strconv.ParseUint(rawID, 10, 64)
			if err != nil || studentID == 0 {
				return ctx.JSON(http.StatusUnauthorized, &errorResponse{Error: "missing or invalid identity"})
			}
			if role != RoleStudent && role != RoleAdmin {
				return ctx.JSON(http.StatusUnauthorized, &errorResponse{Error: "missing or invalid role"})
			}

			ctx.Set(principalContextKey, Principal{
				StudentID: studentID,
				IsAdmin:   role == RoleAdmin,
			})
			return next(ctx)
		}
	}
}

// RequireAdmin guards the admin route group. Must run after
// RequirePrincipal.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			principal, ok := PrincipalFromContext(ctx)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, &errorResponse{Error: "missing or invalid identity"})
			}
			if !principal.IsAdmin {
				return ctx.JSON(http.StatusForbidden, &errorResponse{Error: "administrator role required"})
			}
			return next(ctx)
		}
	}
}

func PrincipalFromContext(ctx echo.Context) (Principal, bool) {
	principal, ok := ctx.Get(principalContextKey).(Principal)
	return principal, ok
}
