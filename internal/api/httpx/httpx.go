package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{models.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{models.ErrNotFound, http.StatusNotFound, "not_found"},
	{models.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{models.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
	{models.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
	{models.ErrValidation, http.StatusBadRequest, "validation_error"},
	{models.ErrConflict, http.StatusConflict, "conflict"},
	{models.ErrUnsupported, http.StatusBadRequest, "unsupported"},
}

// Status maps a core error to its HTTP status and code.
func Status(err error) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// Error writes err with the status of its taxonomy. Unclassified errors are
// not echoed to the client.
func Error(w http.ResponseWriter, err error) {
	status, code := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	WriteError(w, status, code, msg, nil)
}
