package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/velmart/velmart-api/models"
)

func roleFromContext(ctx *gin.Context) (string, bool) {
	userClaims, exists := ctx.Get("user")
	if !exists {
		return "", false
	}
	claims, ok := userClaims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	role, ok := claims["role"].(string)
	return role, ok
}

// RequireAdmin allows ops staff only.
func RequireAdmin() gin.HandlerFunc {
	return RequireAnyRole(models.RoleAdmin, models.RoleSuperAdmin)
}

// RequireAnyRole gates a route to the listed roles.
func RequireAnyRole(allowedRoles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role, ok := roleFromContext(ctx)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				ctx.Next()
				return
			}
		}

		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient role for this action"})
	}
}
