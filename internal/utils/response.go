package utils

import (
	"net/http"

	"healthcare-dashboard/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// Envelope is the body shape of every API response. Payloads are added under
// their own key (user, users, doctor, doctors, appointment, appointments).
type Envelope = gin.H

func respond(c *gin.Context, status int, success bool, message string, payload Envelope) {
	body := Envelope{"success": success, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, payload Envelope) {
	respond(c, http.StatusOK, true, message, payload)
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, payload Envelope) {
	respond(c, http.StatusCreated, true, message, payload)
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	respond(c, statusCode, false, errorMessage, nil)
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuth:
		return http.StatusUnauthorized
	case apperrors.KindPermission:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindState:
		return http.StatusConflict
	case apperrors.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError sends err with the status of its kind. Internal details are
// attached to the request for logging and never sent to the client.
func RespondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	_ = c.Error(err)
	if kind == apperrors.KindInternal {
		InternalServerError(c, "Something went wrong, please try again")
		return
	}
	Error(c, StatusFor(kind), apperrors.MessageOf(err))
}
