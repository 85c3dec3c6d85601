package http

import (
	"net/http"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/service"
	"github.com/aussiebroadwan/totpenroll/pkg/httpx"
	"github.com/aussiebroadwan/totpenroll/pkg/idx"
	"github.com/aussiebroadwan/totpenroll/pkg/mfasdk"
	"github.com/aussiebroadwan/totpenroll/pkg/slogx"
	"github.com/aussiebroadwan/totpenroll/pkg/totpx"
)

// EnrollmentHandler serves the TOTP enrollment flow.
type EnrollmentHandler struct {
	EnrollmentService *service.EnrollmentService
	QREndpoint        string
	QRSize            int
}

// HandleStart handles POST /v1/accounts/{account}/mfa/totp/enrollments
//
//	@Summary		Start a TOTP enrollment
//	@Description	Generates a fresh secret for the account and returns it with the provisioning URI and a QR image URL.
//	@Description	Nothing is stored until the enrollment is confirmed; pending enrollments expire after the draft TTL.
//	@Tags			Enrollments
//	@Accept			json
//	@Produce		json
//	@Param			account	path		string							true	"Account ID"
//	@Param			request	body		mfasdk.EnrollmentStartRequest	true	"Device label"
//	@Success		201		{object}	mfasdk.EnrollmentResponse		"Pending enrollment"
//	@Failure		400		{object}	mfasdk.APIError					"Invalid request"
//	@Failure		404		{object}	mfasdk.APIError					"Account not found"
//	@Failure		429		{object}	mfasdk.APIError					"Rate limit exceeded"
//	@Router			/v1/accounts/{account}/mfa/totp/enrollments [post].
func (h *EnrollmentHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := r.PathValue("account")

	var req mfasdk.EnrollmentStartRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	sess, err := h.EnrollmentService.Begin(ctx, account, req.Label)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := h.render(sess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+sess.ID().String())
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleGet handles GET /v1/accounts/{account}/mfa/totp/enrollments/{id}
//
//	@Summary		Get a pending enrollment
//	@Description	Returns the secret and provisioning URI again while the enrollment is pending.
//	@Tags			Enrollments
//	@Produce		json
//	@Param			account	path		string						true	"Account ID"
//	@Param			id		path		string						true	"Enrollment ID"
//	@Success		200		{object}	mfasdk.EnrollmentResponse	"Pending enrollment"
//	@Failure		404		{object}	mfasdk.APIError				"Enrollment not found"
//	@Failure		409		{object}	mfasdk.APIError				"Enrollment confirmed, abandoned or expired"
//	@Router			/v1/accounts/{account}/mfa/totp/enrollments/{id} [get].
func (h *EnrollmentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	resp, err := h.render(sess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleConfirm handles POST /v1/accounts/{account}/mfa/totp/enrollments/{id}/confirm
//
//	@Summary		Confirm a TOTP enrollment
//	@Description	Checks a code from the authenticator app and, on a match, stores the authenticator.
//	@Description	A wrong code leaves the enrollment pending so the user can retry.
//	@Tags			Enrollments
//	@Accept			json
//	@Produce		json
//	@Param			account	path		string						true	"Account ID"
//	@Param			id		path		string						true	"Enrollment ID"
//	@Param			request	body		mfasdk.CodeRequest			true	"TOTP code"
//	@Success		201		{object}	mfasdk.AuthenticatorResponse	"Confirmed authenticator"
//	@Failure		400		{object}	mfasdk.APIError				"Invalid request or code"
//	@Failure		404		{object}	mfasdk.APIError				"Enrollment not found"
//	@Failure		409		{object}	mfasdk.APIError				"Enrollment confirmed, abandoned or expired"
//	@Failure		429		{object}	mfasdk.APIError				"Rate limit exceeded"
//	@Router			/v1/accounts/{account}/mfa/totp/enrollments/{id}/confirm [post].
func (h *EnrollmentHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	account := r.PathValue("account")

	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, service.ErrEnrollmentNotFound)
		return
	}

	var req mfasdk.CodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	auth, err := h.EnrollmentService.Confirm(ctx, account, id, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("authenticator enrolled", "account_id", account, "authenticator_id", auth.ID)
	httpx.WriteJSON(w, http.StatusCreated, authenticatorResponse(auth))
}

// HandleAbandon handles DELETE /v1/accounts/{account}/mfa/totp/enrollments/{id}
//
//	@Summary	Abandon a pending enrollment
//	@Tags		Enrollments
//	@Param		account	path	string	true	"Account ID"
//	@Param		id		path	string	true	"Enrollment ID"
//	@Success	204		"Enrollment abandoned"
//	@Failure	404		{object}	mfasdk.APIError	"Enrollment not found"
//	@Failure	409		{object}	mfasdk.APIError	"Enrollment no longer pending"
//	@Router		/v1/accounts/{account}/mfa/totp/enrollments/{id} [delete].
func (h *EnrollmentHandler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")

	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, service.ErrEnrollmentNotFound)
		return
	}

	if err := h.EnrollmentService.Abandon(account, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EnrollmentHandler) lookup(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, service.ErrEnrollmentNotFound)
		return nil, false
	}

	sess, err := h.EnrollmentService.Get(r.PathValue("account"), id)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return sess, true
}

// render builds the pending-enrollment payload. Fails with ErrInvalidState
// once the session has left Draft, so the secret is never shown again.
func (h *EnrollmentHandler) render(sess *service.Session) (mfasdk.EnrollmentResponse, error) {
	secret, err := sess.Secret()
	if err != nil {
		return mfasdk.EnrollmentResponse{}, err
	}
	uri, err := sess.ProvisioningURI()
	if err != nil {
		return mfasdk.EnrollmentResponse{}, err
	}

	return mfasdk.EnrollmentResponse{
		EnrollmentID:    sess.ID().String(),
		Label:           sess.Label(),
		Account:         sess.AccountID(),
		Issuer:          sess.Issuer(),
		Secret:          secret,
		ProvisioningURI: uri,
		QRImageURL:      totpx.QRImageURL(h.QREndpoint, uri, h.QRSize),
		ExpiresAt:       sess.ExpiresAt(),
	}, nil
}
