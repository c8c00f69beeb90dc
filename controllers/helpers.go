package controllers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/velmart/velmart-api/initializers"
	"github.com/velmart/velmart-api/models"
	"github.com/velmart/velmart-api/services"
)

var (
	coreOnce sync.Once
	coreSvc  *services.Core
)

func core() *services.Core {
	coreOnce.Do(func() {
		coreSvc = services.NewCore(initializers.DB, services.NewEtaClientFromEnv())
	})
	return coreSvc
}

// currentActor pulls the authenticated identity out of the JWT claims set
// by the auth middleware.
func currentActor(ctx *gin.Context) (models.Actor, bool) {
	userClaims, exists := ctx.Get("user")
	if !exists {
		return models.Actor{}, false
	}
	claims, ok := userClaims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, false
	}
	userID, idOk := claims["user_id"].(float64)
	role, roleOk := claims["role"].(string)
	if !idOk || !roleOk {
		return models.Actor{}, false
	}
	return models.Actor{UserID: int(userID), Role: role}, true
}

func requireActor(ctx *gin.Context) (models.Actor, bool) {
	actor, ok := currentActor(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Authentication required")
	}
	return actor, ok
}

// handleServiceError translates the service error taxonomy into client
// responses. Validation and authorization failures are never retried.
func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, "Resource not found")
	case errors.Is(err, services.ErrUnauthorized):
		sendErrorResponse(ctx, http.StatusUnauthorized, "Not authorized to perform this action")
	case errors.Is(err, services.ErrForbidden):
		sendErrorResponse(ctx, http.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrInvalidTransition):
		sendErrorResponse(ctx, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrConflict):
		sendErrorResponse(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		sendErrorResponse(ctx, http.StatusConflict, err.Error())
	default:
		log.Println("Unexpected service error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Internal server error")
	}
}
