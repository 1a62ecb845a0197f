package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/go-playground/validator.v9"
)

// BillingCycle partitions plans for display.
type BillingCycle string

const (
	Monthly BillingCycle = "monthly"
	Yearly  BillingCycle = "yearly"
)

// SubscriptionPlan is one row of the packages collection.
type SubscriptionPlan struct {
	ID           string          `json:"id"`
	PlanName     string          `json:"planName"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	BillingCycle BillingCycle    `json:"billingCycle"`
	IsActive     bool            `json:"isActive"`
	Features     []string        `json:"features"`
}

// Key returns the plan's identifier.
func (p SubscriptionPlan) Key() string { return p.ID }

// PlanSearchFields are the fields a search query is matched against.
func PlanSearchFields(p SubscriptionPlan) []string {
	return []string{p.PlanName}
}

// Draft field keys accepted by PlanDraft.Set.
const (
	FieldPlanName     = "planName"
	FieldDescription  = "description"
	FieldPrice        = "price"
	FieldBillingCycle = "billingCycle"
	FieldIsActive     = "isActive"
)

// PlanDraft is an editable copy of a plan's mutable fields.
type PlanDraft struct {
	PlanName     string       `validate:"required,max=64"`
	Description  string       `validate:"max=256"`
	Price        decimal.Decimal
	BillingCycle BillingCycle `validate:"required,oneof=monthly yearly"`
	IsActive     bool
	Features     []string

	orig SubscriptionPlan
}

// NewPlanDraft copies the editable fields of p.
func NewPlanDraft(p SubscriptionPlan) *PlanDraft {
	return &PlanDraft{
		PlanName:     p.PlanName,
		Description:  p.Description,
		Price:        p.Price,
		BillingCycle: p.BillingCycle,
		IsActive:     p.IsActive,
		Features:     slices.Clone(p.Features),
		orig:         p,
	}
}

// Set updates one scalar field from its text form.
func (d *PlanDraft) Set(key, value string) error {
	switch key {
	case FieldPlanName:
		d.PlanName = value
	case FieldDescription:
		d.Description = value
	case FieldPrice:
		price, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid price %q", value)
		}
		d.Price = price
	case FieldBillingCycle:
		d.BillingCycle = BillingCycle(strings.ToLower(strings.TrimSpace(value)))
	case FieldIsActive:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid isActive %q", value)
		}
		d.IsActive = b
	default:
		return fmt.Errorf("unknown plan field %q", key)
	}
	return nil
}

// AddFeature appends an empty feature line.
func (d *PlanDraft) AddFeature() {
	d.Features = append(d.Features, "")
}

// UpdateFeature replaces the feature at index i.
func (d *PlanDraft) UpdateFeature(i int, value string) error {
	if i < 0 || i >= len(d.Features) {
		return fmt.Errorf("feature %d of %d: %w", i, len(d.Features), ErrIndexOutOfRange)
	}
	d.Features[i] = value
	return nil
}

// RemoveFeature deletes the feature at index i, keeping the order of the rest.
func (d *PlanDraft) RemoveFeature(i int) error {
	if i < 0 || i >= len(d.Features) {
		return fmt.Errorf("feature %d of %d: %w", i, len(d.Features), ErrIndexOutOfRange)
	}
	d.Features = slices.Delete(d.Features, i, i+1)
	return nil
}

var validate = validator.New()

// Validate checks the draft before it is sent anywhere.
func (d *PlanDraft) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s: failed %q check", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	if d.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

// cleanFeatures drops blank lines and trims the rest.
func (d *PlanDraft) cleanFeatures() []string {
	out := make([]string, 0, len(d.Features))
	for _, f := range d.Features {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Patch returns the fields that differ from the plan the draft was opened on.
func (d *PlanDraft) Patch() map[string]any {
	patch := map[string]any{}
	if d.PlanName != d.orig.PlanName {
		patch[FieldPlanName] = d.PlanName
	}
	if d.Description != d.orig.Description {
		patch[FieldDescription] = d.Description
	}
	if !d.Price.Equal(d.orig.Price) {
		patch[FieldPrice] = json.Number(d.Price.String())
	}
	if d.BillingCycle != d.orig.BillingCycle {
		patch[FieldBillingCycle] = string(d.BillingCycle)
	}
	if d.IsActive != d.orig.IsActive {
		patch[FieldIsActive] = d.IsActive
	}
	if features := d.cleanFeatures(); !slices.Equal(features, d.orig.Features) {
		patch["features"] = features
	}
	return patch
}

// Apply returns p with the draft's fields merged in.
func (d *PlanDraft) Apply(p SubscriptionPlan) SubscriptionPlan {
	p.PlanName = d.PlanName
	p.Description = d.Description
	p.Price = d.Price
	p.BillingCycle = d.BillingCycle
	p.IsActive = d.IsActive
	p.Features = d.cleanFeatures()
	return p
}

// ApplyPlanPatch merges a patch produced by PlanDraft.Patch into a copy of p.
func ApplyPlanPatch(p SubscriptionPlan, patch map[string]any) (SubscriptionPlan, error) {
	p.Features = slices.Clone(p.Features)
	for k, v := range patch {
		switch k {
		case FieldPlanName, FieldDescription, FieldBillingCycle:
			s, ok := v.(string)
			if !ok {
				return p, fmt.Errorf("%s: expected string, got %T", k, v)
			}
			switch k {
			case FieldPlanName:
				p.PlanName = s
			case FieldDescription:
				p.Description = s
			default:
				p.BillingCycle = BillingCycle(s)
			}
		case FieldPrice:
			price, err := toDecimal(v)
			if err != nil {
				return p, fmt.Errorf("price: %w", err)
			}
			p.Price = price
		case FieldIsActive:
			b, ok := v.(bool)
			if !ok {
				return p, fmt.Errorf("isActive: expected bool, got %T", v)
			}
			p.IsActive = b
		case "features":
			fs, ok := v.([]string)
			if !ok {
				return p, fmt.Errorf("features: expected []string, got %T", v)
			}
			p.Features = slices.Clone(fs)
		default:
			return p, fmt.Errorf("unknown plan field %q", k)
		}
	}
	return p, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(x)
	case float64:
		return decimal.NewFromFloat(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	}
	return decimal.Decimal{}, fmt.Errorf("unsupported type %T", v)
}
