package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/wallet-ops/internal/api/httpx"
	"github.com/baharkarakas/wallet-ops/internal/middleware"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/services"
)

type LedgerHandler struct {
	Console *services.Console
}

func NewLedgerHandler(c *services.Console) *LedgerHandler { return &LedgerHandler{Console: c} }

func (h *LedgerHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := h.Console.ReverseTransaction(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"reversal_id": id})
}

func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a number", nil)
			return
		}
		limit = n
	}
	txs, err := h.Console.ListTransactions(r.Context(), middleware.Credential(r.Context()), limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txs)
}

func (h *LedgerHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Console.GetTransaction(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ref := models.AccountRef{Kind: models.AccountKind(chi.URLParam(r, "kind")), ID: chi.URLParam(r, "id")}
	acc, err := h.Console.GetAccount(r.Context(), middleware.Credential(r.Context()), ref)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, acc)
}

func (h *LedgerHandler) ResetPin(w http.ResponseWriter, r *http.Request) {
	pin, err := h.Console.ResetUserPin(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"pin": pin})
}
