// Package model defines the entities managed by the admin console.
package model

import (
	"fmt"
	"time"
)

// UserStatus is the display status derived from the backend's isDeleted flag.
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
)

// User is one row of the users collection.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Key returns the user's identifier.
func (u User) Key() string { return u.ID }

// Blocked reports whether the user is blocked.
func (u User) Blocked() bool { return u.Status == UserBlocked }

// UserSearchFields are the fields a search query is matched against.
func UserSearchFields(u User) []string {
	return []string{u.Name, u.Email}
}

// StatusFromDeleted maps the backend flag to a display status.
func StatusFromDeleted(isDeleted bool) UserStatus {
	if isDeleted {
		return UserBlocked
	}
	return UserActive
}

// BlockPatch is the patch that sets a user's blocked flag.
func BlockPatch(blocked bool) map[string]any {
	return map[string]any{"isDeleted": blocked}
}

// ApplyUserPatch merges a patch into a copy of u. Unknown keys are rejected.
func ApplyUserPatch(u User, patch map[string]any) (User, error) {
	for k, v := range patch {
		switch k {
		case "isDeleted":
			b, ok := v.(bool)
			if !ok {
				return u, fmt.Errorf("isDeleted: expected bool, got %T", v)
			}
			u.Status = StatusFromDeleted(b)
		case "name":
			s, ok := v.(string)
			if !ok {
				return u, fmt.Errorf("name: expected string, got %T", v)
			}
			u.Name = s
		case "email":
			s, ok := v.(string)
			if !ok {
				return u, fmt.Errorf("email: expected string, got %T", v)
			}
			u.Email = s
		default:
			return u, fmt.Errorf("unknown user field %q", k)
		}
	}
	return u, nil
}
