package actions

import (
	"context"
	"time"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/model"
)

// UserFromRecord maps a backend user record to a model.User. An unparseable
// createdAt leaves CreatedAt zero.
func UserFromRecord(r client.UserRecord) model.User {
	u := model.User{
		ID:     string(r.ID),
		Name:   r.Name,
		Email:  r.Email,
		Status: model.StatusFromDeleted(r.IsDeleted),
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		u.CreatedAt = t
	}
	return u
}

func ListUsers(ctx context.Context, c *client.Client, page, limit int) ([]model.User, int, error) {
	recs, totalPages, err := c.ListUsers(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	users := make([]model.User, 0, len(recs))
	for _, r := range recs {
		users = append(users, UserFromRecord(r))
	}
	return users, totalPages, nil
}

func UpdateUser(ctx context.Context, c *client.Client, id string, patch map[string]any) error {
	return c.PatchUser(ctx, id, patch)
}

func DeleteUser(ctx context.Context, c *client.Client, id string) error {
	return c.DeleteUser(ctx, id)
}
