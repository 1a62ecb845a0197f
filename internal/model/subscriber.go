package model

import "time"

// PlanTier is the plan a subscriber is on.
type PlanTier string

const (
	TierBasic   PlanTier = "Basic"
	TierPro     PlanTier = "Pro"
	TierPremium PlanTier = "Premium"
)

// Tiers lists plan tiers in display order.
var Tiers = []PlanTier{TierBasic, TierPro, TierPremium}

// SubscriberStatus marks subscriptions close to their end date.
type SubscriberStatus string

const (
	SubscriberActive   SubscriberStatus = "active"
	SubscriberExpiring SubscriberStatus = "expiring"
)

// Subscriber is one row of the subscribers collection.
type Subscriber struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Plan      PlanTier         `json:"plan"`
	StartDate time.Time        `json:"startDate"`
	EndDate   time.Time        `json:"endDate"`
	Status    SubscriberStatus `json:"status"`
}

// Key returns the subscriber's identifier.
func (s Subscriber) Key() string { return s.ID }

// SubscriberSearchFields are the fields a search query is matched against.
func SubscriberSearchFields(s Subscriber) []string {
	return []string{s.Name, s.Email, string(s.Plan)}
}

// CountByTier counts subscribers per plan tier.
func CountByTier(subs []Subscriber) map[PlanTier]int {
	counts := make(map[PlanTier]int, len(Tiers))
	for _, s := range subs {
		counts[s.Plan]++
	}
	return counts
}
