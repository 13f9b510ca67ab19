package server

import (
	"net/http"

	"github.com/jonathan/resume-scorer/internal/apperr"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindClient, apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindRateLimit:
		return http.StatusTooManyRequests
	case apperr.KindBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
