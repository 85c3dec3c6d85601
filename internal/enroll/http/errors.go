package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/service"
	"github.com/aussiebroadwan/totpenroll/pkg/mfasdk"
	"github.com/aussiebroadwan/totpenroll/pkg/slogx"
	"github.com/aussiebroadwan/totpenroll/pkg/totpx"
)

// writeServiceError maps service errors onto API errors. Anything unknown is
// logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, totpx.ErrInvalidInput):
		mfasdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)

	case errors.Is(err, service.ErrConfirmation):
		mfasdk.ErrInvalidCode.WithDescription(service.ErrConfirmation.Error()).WriteError(w)

	case errors.Is(err, service.ErrSessionExpired):
		mfasdk.ErrInvalidState.WithDescription("the enrollment expired, start a new one").WriteError(w)

	case errors.Is(err, service.ErrInvalidState):
		mfasdk.ErrInvalidState.WriteError(w)

	case errors.Is(err, service.ErrAccountNotFound):
		mfasdk.ErrNotFound.WithDescription("account not found").WriteError(w)

	case errors.Is(err, service.ErrEnrollmentNotFound):
		mfasdk.ErrNotFound.WithDescription("enrollment not found").WriteError(w)

	case errors.Is(err, service.ErrAuthenticatorNotFound):
		mfasdk.ErrNotFound.WithDescription("authenticator not found").WriteError(w)

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		mfasdk.ErrServerError.WriteError(w)
	}
}

func writeBadBody(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Warn("failed to parse request", "err", err)
	mfasdk.ErrInvalidRequest.WithDescription("Invalid JSON body").WriteError(w)
}
