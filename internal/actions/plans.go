package actions

import (
	"context"
	"slices"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/model"
)

// PlanFromRecord maps a backend plan record to a model.SubscriptionPlan.
func PlanFromRecord(r client.PlanRecord) model.SubscriptionPlan {
	features := slices.Clone(r.Features)
	if features == nil {
		features = []string{}
	}
	return model.SubscriptionPlan{
		ID:           string(r.ID),
		PlanName:     r.PlanName,
		Description:  r.Description,
		Price:        r.Price,
		BillingCycle: model.BillingCycle(r.BillingCycle),
		IsActive:     r.IsActive,
		Features:     features,
	}
}

func ListPlans(ctx context.Context, c *client.Client, loc locale.Locale) ([]model.SubscriptionPlan, error) {
	recs, err := c.ListSubscriptions(ctx, loc)
	if err != nil {
		return nil, err
	}
	plans := make([]model.SubscriptionPlan, 0, len(recs))
	for _, r := range recs {
		plans = append(plans, PlanFromRecord(r))
	}
	return plans, nil
}

func UpdatePlan(ctx context.Context, c *client.Client, id string, patch map[string]any, loc locale.Locale) error {
	return c.UpdateSubscription(ctx, id, patch, loc)
}
