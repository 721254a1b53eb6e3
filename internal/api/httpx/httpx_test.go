package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: no token", models.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("%w: invoice x", models.ErrNotFound), http.StatusNotFound},
		{models.ErrInvalidState, http.StatusConflict},
		{models.ErrAlreadyProcessed, http.StatusConflict},
		{models.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{models.ErrValidation, http.StatusBadRequest},
		{models.ErrConflict, http.StatusConflict},
		{models.ErrUnsupported, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("dial tcp 10.0.0.3:5432: refused"))
	var body APIError
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusInternalServerError || body.Error != "internal error" {
		t.Fatalf("got %d %+v", rec.Code, body)
	}
}
