package http

import (
	"net/http"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/service"
	"github.com/aussiebroadwan/totpenroll/pkg/httpx"
	"github.com/aussiebroadwan/totpenroll/pkg/mfasdk"
	"github.com/aussiebroadwan/totpenroll/pkg/slogx"
)

type AuthenticatorsHandler struct {
	AuthenticatorService *service.AuthenticatorService
}

// HandleList handles GET /v1/accounts/{account}/authenticators
//
//	@Summary	List confirmed authenticators
//	@Tags		Authenticators
//	@Produce	json
//	@Param		account	path		string								true	"Account ID"
//	@Success	200		{object}	mfasdk.AuthenticatorListResponse	"Authenticators, without secrets"
//	@Failure	404		{object}	mfasdk.APIError						"Account not found"
//	@Router		/v1/accounts/{account}/authenticators [get].
func (h *AuthenticatorsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	auths, err := h.AuthenticatorService.List(r.Context(), r.PathValue("account"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := mfasdk.AuthenticatorListResponse{
		Authenticators: make([]mfasdk.AuthenticatorResponse, 0, len(auths)),
	}
	for _, a := range auths {
		resp.Authenticators = append(resp.Authenticators, authenticatorResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /v1/accounts/{account}/authenticators/{id}
//
//	@Summary	Remove an authenticator
//	@Tags		Authenticators
//	@Param		account	path	string	true	"Account ID"
//	@Param		id		path	string	true	"Authenticator ID"
//	@Success	204		"Authenticator removed"
//	@Failure	404		{object}	mfasdk.APIError	"Authenticator not found"
//	@Router		/v1/accounts/{account}/authenticators/{id} [delete].
func (h *AuthenticatorsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.AuthenticatorService.Delete(r.Context(), r.PathValue("account"), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify handles POST /v1/accounts/{account}/mfa/totp/verify
//
//	@Summary		Verify a TOTP code
//	@Description	Checks a code against every confirmed authenticator of the account. A wrong code is not an error: the response reports valid=false.
//	@Tags			Authenticators
//	@Accept			json
//	@Produce		json
//	@Param			account	path		string					true	"Account ID"
//	@Param			request	body		mfasdk.CodeRequest		true	"TOTP code"
//	@Success		200		{object}	mfasdk.VerifyResponse	"Verification result"
//	@Failure		400		{object}	mfasdk.APIError			"Invalid request"
//	@Failure		404		{object}	mfasdk.APIError			"Account not found"
//	@Failure		429		{object}	mfasdk.APIError			"Rate limit exceeded"
//	@Router			/v1/accounts/{account}/mfa/totp/verify [post].
func (h *AuthenticatorsHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	account := r.PathValue("account")

	var req mfasdk.CodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	auth, ok, err := h.AuthenticatorService.Verify(ctx, account, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		log.Warn("invalid TOTP code", "account_id", account)
		httpx.WriteJSON(w, http.StatusOK, mfasdk.VerifyResponse{Valid: false})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfasdk.VerifyResponse{
		Valid:           true,
		AuthenticatorID: auth.ID,
	})
}

func authenticatorResponse(a domain.Authenticator) mfasdk.AuthenticatorResponse {
	return mfasdk.AuthenticatorResponse{
		ID:         a.ID,
		Name:       a.Name,
		AccountID:  a.AccountID,
		CreatedAt:  a.CreatedAt,
		LastUsedAt: a.LastUsedAt,
	}
}
