package source

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chupakbra/pbadm/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SampleUsers returns the demo users shown in static mode.
func SampleUsers() []model.User {
	names := []struct{ name, email string }{
		{"John Doe", "john@example.com"},
		{"Sarah Smith", "sarah@example.com"},
		{"Mike Johnson", "mike@example.com"},
		{"Emily Brown", "emily@example.com"},
		{"David Wilson", "david@example.com"},
		{"Lisa Anderson", "lisa@example.com"},
		{"James Taylor", "james@example.com"},
		{"Olivia Martin", "olivia@example.com"},
		{"Daniel Lee", "daniel@example.com"},
		{"Sophia Clark", "sophia@example.com"},
		{"Ethan Lewis", "ethan@example.com"},
		{"Ava Walker", "ava@example.com"},
	}
	users := make([]model.User, 0, len(names))
	for i, n := range names {
		status := model.UserActive
		if i%5 == 4 {
			status = model.UserBlocked
		}
		users = append(users, model.User{
			ID:        fmt.Sprintf("u%02d", i+1),
			Name:      n.name,
			Email:     n.email,
			Status:    status,
			CreatedAt: day("2024-01-01").AddDate(0, 0, 9*i),
		})
	}
	return users
}

// SampleSubscribers returns the subscriber roster. The backend has no
// subscribers endpoint, so this is the only source for that screen.
func SampleSubscribers() []model.Subscriber {
	return []model.Subscriber{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Plan: model.TierPremium, StartDate: day("2024-01-15"), EndDate: day("2025-01-15"), Status: model.SubscriberActive},
		{ID: "2", Name: "Sarah Smith", Email: "sarah@example.com", Plan: model.TierPro, StartDate: day("2024-03-01"), EndDate: day("2024-12-31"), Status: model.SubscriberExpiring},
		{ID: "3", Name: "Mike Johnson", Email: "mike@example.com", Plan: model.TierBasic, StartDate: day("2024-02-10"), EndDate: day("2025-02-10"), Status: model.SubscriberActive},
		{ID: "4", Name: "Emily Brown", Email: "emily@example.com", Plan: model.TierPremium, StartDate: day("2024-01-20"), EndDate: day("2025-01-20"), Status: model.SubscriberActive},
		{ID: "5", Name: "David Wilson", Email: "david@example.com", Plan: model.TierPro, StartDate: day("2024-04-05"), EndDate: day("2025-04-05"), Status: model.SubscriberActive},
		{ID: "6", Name: "Lisa Anderson", Email: "lisa@example.com", Plan: model.TierBasic, StartDate: day("2024-03-15"), EndDate: day("2024-12-28"), Status: model.SubscriberExpiring},
	}
}

// SamplePlans returns the demo packages shown in static mode.
func SamplePlans() []model.SubscriptionPlan {
	return []model.SubscriptionPlan{
		{
			ID:           "1",
			PlanName:     "Basic",
			Description:  "Perfect for individuals getting started",
			Price:        decimal.RequireFromString("9.99"),
			BillingCycle: model.Monthly,
			IsActive:     true,
			Features:     []string{"5 Projects", "10GB Storage", "Basic Support", "Mobile App"},
		},
		{
			ID:           "2",
			PlanName:     "Pro",
			Description:  "Best for professionals and small teams",
			Price:        decimal.RequireFromString("24.99"),
			BillingCycle: model.Monthly,
			IsActive:     true,
			Features:     []string{"Unlimited Projects", "100GB Storage", "Priority Support", "Advanced Analytics", "Team Collaboration"},
		},
		{
			ID:           "3",
			PlanName:     "Premium",
			Description:  "For large teams and enterprises",
			Price:        decimal.RequireFromString("49.99"),
			BillingCycle: model.Monthly,
			IsActive:     true,
			Features:     []string{"Unlimited Everything", "Custom Storage", "24/7 Support", "Advanced Security", "API Access", "Custom Integrations"},
		},
	}
}

// NewPlan returns an empty package with a fresh id.
func NewPlan() model.SubscriptionPlan {
	return model.SubscriptionPlan{
		ID:           uuid.NewString(),
		Price:        decimal.Zero,
		BillingCycle: model.Monthly,
		IsActive:     true,
		Features:     []string{""},
	}
}

// PopularPlan is the plan name flagged as most popular.
const PopularPlan = "Pro"

// Activity is one entry of the dashboard's recent activity feed.
type Activity struct {
	User   string `json:"user"`
	Action string `json:"action"`
	When   string `json:"when"`
}

// RecentActivity returns the dashboard activity feed.
func RecentActivity() []Activity {
	return []Activity{
		{"John Doe", "Subscribed to Premium", "2 minutes ago"},
		{"Sarah Smith", "Created new account", "15 minutes ago"},
		{"Mike Johnson", "Upgraded to Pro", "1 hour ago"},
		{"Emily Brown", "Renewed subscription", "2 hours ago"},
		{"David Wilson", "Created new account", "3 hours ago"},
	}
}
