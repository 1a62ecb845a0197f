package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/chupakbra/pbadm/internal/actions"
	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/model"
)

// RemoteUsers is the users collection backed by the REST API. Paging is done
// by the server.
type RemoteUsers struct {
	c *client.Client
}

func NewRemoteUsers(c *client.Client) *RemoteUsers { return &RemoteUsers{c: c} }

func (s *RemoteUsers) List(ctx context.Context, req collection.PageRequest) (collection.Page[model.User], error) {
	if err := req.Validate(); err != nil {
		return collection.Page[model.User]{}, err
	}
	users, total, err := actions.ListUsers(ctx, s.c, req.Page, req.Size)
	if err != nil {
		return collection.Page[model.User]{}, fmt.Errorf("listing users: %w", err)
	}
	return collection.Page[model.User]{Items: users, Number: req.Page, TotalPages: max(total, 1)}, nil
}

func (s *RemoteUsers) Update(ctx context.Context, id string, patch map[string]any, _ locale.Locale) error {
	if id == "" {
		return fmt.Errorf("empty id: %w", collection.ErrInvalidArgument)
	}
	return unsupported(actions.UpdateUser(ctx, s.c, id, patch))
}

func (s *RemoteUsers) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("empty id: %w", collection.ErrInvalidArgument)
	}
	return unsupported(actions.DeleteUser(ctx, s.c, id))
}

// RemotePlans is the packages collection backed by the REST API. The server
// returns every plan at once, so pages are cut client-side.
type RemotePlans struct {
	c *client.Client
}

func NewRemotePlans(c *client.Client) *RemotePlans { return &RemotePlans{c: c} }

func (s *RemotePlans) List(ctx context.Context, req collection.PageRequest) (collection.Page[model.SubscriptionPlan], error) {
	if err := req.Validate(); err != nil {
		return collection.Page[model.SubscriptionPlan]{}, err
	}
	plans, err := actions.ListPlans(ctx, s.c, req.Locale)
	if err != nil {
		return collection.Page[model.SubscriptionPlan]{}, fmt.Errorf("listing plans: %w", err)
	}
	return collection.Paginate(plans, req.Page, req.Size), nil
}

func (s *RemotePlans) Update(ctx context.Context, id string, patch map[string]any, loc locale.Locale) error {
	if id == "" {
		return fmt.Errorf("empty id: %w", collection.ErrInvalidArgument)
	}
	return actions.UpdatePlan(ctx, s.c, id, patch, loc)
}

// Delete is not offered by the backend.
func (s *RemotePlans) Delete(_ context.Context, id string) error {
	return fmt.Errorf("deleting plan %s: %w", id, collection.ErrUnsupported)
}

func unsupported(err error) error {
	if errors.Is(err, client.ErrEndpointNotConfigured) {
		return fmt.Errorf("%w: %w", collection.ErrUnsupported, err)
	}
	return err
}
