package http

import (
	"errors"
	"net/http"

	"collaborative-workspace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HandleServiceError 把 Service 层的业务错误映射为 HTTP 状态码。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed), errors.Is(err, service.ErrInvalidToken):
		ErrorResponse(c, http.StatusUnauthorized, service.PublicMessage(err, err.Error()))
	case errors.Is(err, service.ErrRegistrationFailed), errors.Is(err, service.ErrMissingFields):
		ErrorResponse(c, http.StatusBadRequest, service.PublicMessage(err, err.Error()))
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrUserNotFound):
		ErrorResponse(c, http.StatusNotFound, service.PublicMessage(err, err.Error()))
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotRoomMember):
		ErrorResponse(c, http.StatusForbidden, service.PublicMessage(err, err.Error()))
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
