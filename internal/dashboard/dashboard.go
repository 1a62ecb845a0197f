// Package dashboard gathers the overview numbers shown after login.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/model"
	"github.com/chupakbra/pbadm/internal/source"
)

const scanPageSize = 100

// Stats are the dashboard stat cards.
type Stats struct {
	TotalUsers          int               `json:"totalUsers"`
	Subscribers         int               `json:"subscribers"`
	ExpiringSubscribers int               `json:"expiringSubscribers"`
	ActivePlans         int               `json:"activePlans"`
	TotalPlans          int               `json:"totalPlans"`
	Activity            []source.Activity `json:"recentActivity"`
}

// Collect fills Stats from the given sources. A failing card is left at zero
// and its error is joined into the returned error.
func Collect(ctx context.Context, set source.Set, loc locale.Locale) (Stats, error) {
	st := Stats{Activity: source.RecentActivity()}
	var errs []error

	if n, err := countUsers(ctx, set.Users); err != nil {
		errs = append(errs, fmt.Errorf("users: %w", err))
	} else {
		st.TotalUsers = n
	}

	subs, err := scan(ctx, set.Subscribers, loc)
	if err != nil {
		errs = append(errs, fmt.Errorf("subscribers: %w", err))
	}
	st.Subscribers = len(subs)
	for _, s := range subs {
		if s.Status == model.SubscriberExpiring {
			st.ExpiringSubscribers++
		}
	}

	plans, err := scan(ctx, set.Plans, loc)
	if err != nil {
		errs = append(errs, fmt.Errorf("plans: %w", err))
	}
	st.TotalPlans = len(plans)
	for _, p := range plans {
		if p.IsActive {
			st.ActivePlans++
		}
	}

	return st, errors.Join(errs...)
}

// countUsers asks for one user per page so the page count is the user count.
func countUsers(ctx context.Context, src collection.Source[model.User]) (int, error) {
	page, err := src.List(ctx, collection.PageRequest{Page: 1, Size: 1})
	if err != nil {
		return 0, err
	}
	if len(page.Items) == 0 {
		return 0, nil
	}
	return page.TotalPages, nil
}

func scan[T collection.Entity](ctx context.Context, src collection.Source[T], loc locale.Locale) ([]T, error) {
	var all []T
	for n := 1; ; n++ {
		page, err := src.List(ctx, collection.PageRequest{Page: n, Size: scanPageSize, Locale: loc})
		if err != nil {
			return all, err
		}
		all = append(all, page.Items...)
		if n >= page.TotalPages {
			return all, nil
		}
	}
}
