// Package source composes the data sources behind each screen: the REST API
// or in-process fixtures.
package source

import (
	"fmt"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/config"
	"github.com/chupakbra/pbadm/internal/model"
)

// Set holds one source per collection.
type Set struct {
	Kind        string
	Users       collection.Source[model.User]
	Subscribers collection.Source[model.Subscriber]
	Plans       collection.Source[model.SubscriptionPlan]
	// Client is nil in static mode.
	Client *client.Client
}

// Static returns fixture sources for every collection.
func Static() Set {
	return Set{
		Kind:        config.SourceStatic,
		Users:       collection.NewFixture(SampleUsers(), model.ApplyUserPatch),
		Subscribers: collection.NewFixture(SampleSubscribers(), nil),
		Plans:       collection.NewFixture(SamplePlans(), model.ApplyPlanPatch),
	}
}

// Remote returns API-backed users and plans. Subscribers stay fixture-backed.
func Remote(c *client.Client) Set {
	return Set{
		Kind:        config.SourceRemote,
		Users:       NewRemoteUsers(c),
		Subscribers: collection.NewFixture(SampleSubscribers(), nil),
		Plans:       NewRemotePlans(c),
		Client:      c,
	}
}

// For selects sources for a server profile. c may be nil in static mode.
func For(cfg *config.ServerConfig, c *client.Client) (Set, error) {
	switch cfg.Source {
	case config.SourceStatic:
		return Static(), nil
	case config.SourceRemote, "":
		if c == nil {
			return Set{}, fmt.Errorf("remote source needs a client")
		}
		return Remote(c), nil
	default:
		return Set{}, fmt.Errorf("unknown source %q", cfg.Source)
	}
}
