package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"podopt/internal/api"
	"podopt/internal/optimize"
	"podopt/internal/services"
)

func errorBody(message, kind string) api.ErrorResponse {
	return api.ErrorResponse{Error: message, Kind: kind}
}

func writeError(c *gin.Context, status int, message, kind string) {
	c.JSON(status, errorBody(message, kind))
}

// statusFor maps an error onto an HTTP status. remoteStatus is used for
// failures reported by Auphonic.
func statusFor(err error, remoteStatus int) int {
	switch {
	case errors.Is(err, optimize.ErrOptimizationInFlight):
		return http.StatusConflict
	case errors.Is(err, optimize.ErrQueueFull), errors.Is(err, optimize.ErrDispatcherStopped):
		return http.StatusServiceUnavailable
	}
	switch services.Kind(err) {
	case services.KindConfiguration, services.KindValidation:
		return http.StatusUnprocessableEntity
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindRemote:
		return remoteStatus
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error, remoteStatus int) {
	status := statusFor(err, remoteStatus)
	kind := services.Kind(err)
	if errors.Is(err, optimize.ErrOptimizationInFlight) {
		kind = "conflict"
	}
	_ = c.Error(err)
	writeError(c, status, err.Error(), kind)
}
