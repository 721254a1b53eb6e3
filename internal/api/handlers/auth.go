package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/baharkarakas/wallet-ops/internal/api/httpx"
	"github.com/baharkarakas/wallet-ops/internal/api/validate"
	"github.com/baharkarakas/wallet-ops/internal/auth"
	"github.com/baharkarakas/wallet-ops/internal/repository"
)

// AuthHandler issues session tokens for local development. Production
// sessions come from the session service sharing JWT_SECRET.
type AuthHandler struct {
	TM     *auth.TokenManager
	Admins repository.Admins
}

func NewAuthHandler(tm *auth.TokenManager, admins repository.Admins) *AuthHandler {
	return &AuthHandler{TM: tm, Admins: admins}
}

type devTokenReq struct {
	UID string `json:"uid"`
}

type tokenResp struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *AuthHandler) DevToken(w http.ResponseWriter, r *http.Request) {
	var req devTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", nil)
		return
	}
	if err := validate.Collect(validate.Required("uid", req.UID)); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "invalid request", err)
		return
	}
	if _, err := h.Admins.GetAdmin(r.Context(), req.UID); err != nil {
		httpx.Error(w, err)
		return
	}
	tok, exp, err := h.TM.Issue(req.UID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{AccessToken: tok, ExpiresAt: exp})
}
