package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baharkarakas/wallet-ops/internal/models"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Unwrap lets callers match field errors as models.ErrValidation.
func (e Errs) Unwrap() error { return models.ErrValidation }

// Collect returns nil when every check passed.
func Collect(checks ...*ErrField) error {
	var errs Errs
	for _, c := range checks {
		if c != nil {
			errs = append(errs, *c)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinInt(field string, v, min int64) *ErrField {
	if v < min {
		return &ErrField{Field: field, Msg: "must be >= " + strconv.FormatInt(min, 10)}
	}
	return nil
}

func Plan(field string, p models.Plan) *ErrField {
	if !p.Valid() {
		return &ErrField{Field: field, Msg: fmt.Sprintf("unknown plan %q", p)}
	}
	return nil
}
