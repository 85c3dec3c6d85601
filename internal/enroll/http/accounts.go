package http

import (
	"net/http"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/service"
	"github.com/aussiebroadwan/totpenroll/pkg/httpx"
	"github.com/aussiebroadwan/totpenroll/pkg/mfasdk"
)

// AccountsHandler manages the local account directory.
type AccountsHandler struct {
	AccountService *service.AccountService
}

// HandleUpsert handles PUT /v1/accounts/{account}
//
//	@Summary		Create or update an account
//	@Description	Records the display name and, optionally, the issuer shown in authenticator apps.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			account	path		string						true	"Account ID"
//	@Param			request	body		mfasdk.AccountUpsertRequest	true	"Account details"
//	@Success		200		{object}	mfasdk.AccountResponse		"Account"
//	@Failure		400		{object}	mfasdk.APIError				"Invalid request"
//	@Router			/v1/accounts/{account} [put].
func (h *AccountsHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var req mfasdk.AccountUpsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	a, err := h.AccountService.Upsert(r.Context(), r.PathValue("account"), req.DisplayName, req.IssuerName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountResponse(a))
}

// HandleGet handles GET /v1/accounts/{account}
//
//	@Summary	Get an account
//	@Tags		Accounts
//	@Produce	json
//	@Param		account	path		string					true	"Account ID"
//	@Success	200		{object}	mfasdk.AccountResponse	"Account"
//	@Failure	404		{object}	mfasdk.APIError			"Account not found"
//	@Router		/v1/accounts/{account} [get].
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.AccountService.Get(r.Context(), r.PathValue("account"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountResponse(a))
}

// HandleDelete handles DELETE /v1/accounts/{account}. Authenticators and
// pending enrollments go with it.
//
//	@Summary	Delete an account
//	@Tags		Accounts
//	@Param		account	path	string	true	"Account ID"
//	@Success	204		"Account deleted"
//	@Failure	404		{object}	mfasdk.APIError	"Account not found"
//	@Router		/v1/accounts/{account} [delete].
func (h *AccountsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.AccountService.Delete(r.Context(), r.PathValue("account")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func accountResponse(a domain.Account) mfasdk.AccountResponse {
	return mfasdk.AccountResponse{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		IssuerName:  a.IssuerName,
		CreatedAt:   a.CreatedAt,
	}
}
