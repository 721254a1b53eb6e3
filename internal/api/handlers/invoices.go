package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/wallet-ops/internal/api/httpx"
	"github.com/baharkarakas/wallet-ops/internal/api/validate"
	"github.com/baharkarakas/wallet-ops/internal/middleware"
	"github.com/baharkarakas/wallet-ops/internal/models"
	"github.com/baharkarakas/wallet-ops/internal/services"
)

type InvoiceHandler struct {
	Console *services.Console
}

func NewInvoiceHandler(c *services.Console) *InvoiceHandler { return &InvoiceHandler{Console: c} }

type invoiceReq struct {
	MerchantID string      `json:"merchant_id"`
	Amount     int64       `json:"amount"`
	TargetPlan models.Plan `json:"target_plan"`
}

type refundReq struct {
	PayerID string `json:"payer_id"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", nil)
		return false
	}
	return true
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceReq
	if !decode(w, r, &req) {
		return
	}
	if err := validate.Collect(
		validate.Required("merchant_id", req.MerchantID),
		validate.MinInt("amount", req.Amount, 1),
		validate.Plan("target_plan", req.TargetPlan),
	); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "invalid request", err)
		return
	}
	inv, err := h.Console.CreateInvoice(r.Context(), middleware.Credential(r.Context()), req.MerchantID, req.Amount, req.TargetPlan)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req invoiceReq
	if !decode(w, r, &req) {
		return
	}
	if err := validate.Collect(
		validate.MinInt("amount", req.Amount, 1),
		validate.Plan("target_plan", req.TargetPlan),
	); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "invalid request", err)
		return
	}
	inv, err := h.Console.EditInvoice(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"), req.Amount, req.TargetPlan)
	h.respond(w, inv, err)
}

func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Console.CancelInvoice(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"))
	h.respond(w, inv, err)
}

func (h *InvoiceHandler) Approve(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Console.ApproveInvoice(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"))
	h.respond(w, inv, err)
}

func (h *InvoiceHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Console.SuspendInvoice(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"))
	h.respond(w, inv, err)
}

func (h *InvoiceHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req refundReq
	if !decode(w, r, &req) {
		return
	}
	inv, err := h.Console.RefundInvoice(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"), req.PayerID)
	h.respond(w, inv, err)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Console.GetInvoice(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"))
	h.respond(w, inv, err)
}

func (h *InvoiceHandler) ListForMerchant(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Console.ListMerchantInvoices(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, invs)
}

func (h *InvoiceHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	ns, err := h.Console.ListNotifications(r.Context(), middleware.Credential(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ns)
}

func (h *InvoiceHandler) respond(w http.ResponseWriter, inv models.Invoice, err error) {
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, inv)
}
