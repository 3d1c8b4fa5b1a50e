package httpadapter

import (
	"net/http"

	"github.com/kpetrov/docsqa/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotReady):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicErrorMessage hides provider internals from callers; the detailed
// error is logged server-side.
func publicErrorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid request"
	case domain.IsKind(err, domain.ErrNotReady):
		return "service is initializing, retry later"
	case domain.IsKind(err, domain.ErrGeneration):
		return "failed to generate an answer"
	default:
		return "internal error"
	}
}
