package models

import (
	"fmt"
	"strings"
	"time"
)

type AccountKind string

const (
	AccountUser     AccountKind = "user"
	AccountMerchant AccountKind = "merchant"
)

func (k AccountKind) Valid() bool { return k == AccountUser || k == AccountMerchant }

type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// AccountRef addresses a balance-holding document.
type AccountRef struct {
	Kind AccountKind `json:"kind"`
	ID   string      `json:"id"`
}

func UserRef(id string) AccountRef     { return AccountRef{Kind: AccountUser, ID: id} }
func MerchantRef(id string) AccountRef { return AccountRef{Kind: AccountMerchant, ID: id} }

func (r AccountRef) String() string { return string(r.Kind) + "/" + r.ID }

func (r AccountRef) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown account kind %q", ErrValidation, r.Kind)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: account id required", ErrValidation)
	}
	return nil
}

// Account is a user or merchant wallet. Balance is in minor units and is
// written only through the ledger package.
type Account struct {
	ID            string      `json:"id"`
	Kind          AccountKind `json:"kind"`
	DisplayName   string      `json:"display_name,omitempty"`
	Balance       int64       `json:"balance"`
	IsFrozen      bool        `json:"is_frozen"`
	Tier          string      `json:"tier,omitempty"`
	Plan          Plan        `json:"plan,omitempty"`
	PinHash       string      `json:"-"`
	PlanUpdatedAt *time.Time  `json:"plan_updated_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (a Account) Ref() AccountRef { return AccountRef{Kind: a.Kind, ID: a.ID} }

func (a Account) Validate() error {
	if err := a.Ref().Validate(); err != nil {
		return err
	}
	if a.Balance < 0 {
		return fmt.Errorf("%w: balance must be >= 0", ErrValidation)
	}
	if a.Plan != "" && !a.Plan.Valid() {
		return fmt.Errorf("%w: unknown plan %q", ErrValidation, a.Plan)
	}
	return nil
}
