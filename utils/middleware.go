package utils

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"mechmarket-server/models"
)

// UserIDFromTokenMiddleware extracts the user ID from the JWT claims and
// stores it in the request context for downstream handlers.
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// RequireRole gates a route on the caller's role. The switch over
// models.Role is exhaustive on purpose; an unknown role in a token is
// rejected rather than falling through.
func RequireRole(allowed ...models.Role) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*AccessToken)

		switch claims.Role {
		case models.RoleOwner, models.RoleShop, models.RoleAdmin:
			// known role, check allowance below
		default:
			ctx.StopWithJSON(iris.StatusForbidden,
				iris.Map{"error": "forbidden", "message": "unknown role"})
			return
		}

		for _, role := range allowed {
			if claims.Role == role {
				ctx.Values().Set("userID", claims.ID)
				ctx.Values().Set("role", claims.Role)
				ctx.Next()
				return
			}
		}

		ctx.StopWithJSON(iris.StatusForbidden,
			iris.Map{"error": "forbidden", "message": "insufficient role"})
	}
}

// AdminOnlyMiddleware ensures the requester has the admin role.
func AdminOnlyMiddleware(ctx iris.Context) {
	RequireRole(models.RoleAdmin)(ctx)
}
