package validate

import (
	"errors"
	"testing"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

func TestCollect(t *testing.T) {
	if err := Collect(Required("merchant_id", "m1"), MinInt("amount", 5, 1), Plan("target_plan", models.PlanPro)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Collect(Required("merchant_id", " "), MinInt("amount", 0, 1), Plan("target_plan", "GOLD"))
	var errs Errs
	if !errors.As(err, &errs) || len(errs) != 3 {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("field errors should match ErrValidation")
	}
	if got := errs.Error(); got != `merchant_id: required; amount: must be >= 1; target_plan: unknown plan "GOLD"` {
		t.Fatalf("message = %q", got)
	}
}
