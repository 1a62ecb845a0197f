package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID is a record key that the server may send as a string or a number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// UserRecord is a user as returned by the users endpoint.
type UserRecord struct {
	ID        ID     `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IsDeleted bool   `json:"isDeleted"`
	CreatedAt string `json:"createdAt"`
}

type usersResponse struct {
	Data struct {
		Users      []UserRecord `json:"users"`
		Pagination struct {
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	} `json:"data"`
}

// PlanRecord is a subscription plan as returned by the subscription endpoint.
type PlanRecord struct {
	ID           ID              `json:"_id"`
	PlanName     string          `json:"planName"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	BillingCycle string          `json:"billingCycle"`
	IsActive     bool            `json:"isActive"`
	Features     []string        `json:"features"`
}

type plansResponse struct {
	Data []PlanRecord `json:"data"`
}
