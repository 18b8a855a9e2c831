package domain

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
)

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrEmptyOrder      = errors.New("empty_order")
	ErrInvalidQuantity = errors.New("invalid_quantity")
)

// OrderItem requests Amount units of one resource.
type OrderItem struct {
	ResourceID string `json:"id"`
	Amount     int64  `json:"amount"`
}

// Order is a transient purchase request; it is owned by the request and
// discarded after processing.
type Order struct {
	CustomerID snowflake.ID `json:"customerId"`
	Items      []OrderItem  `json:"items"`
}

// Validate rejects malformed orders before any entity is loaded.
func (o Order) Validate() error {
	if o.CustomerID == 0 {
		return ErrInvalidCustomer
	}
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range o.Items {
		if item.ResourceID == "" || item.Amount < 1 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// ResourceIDs lists the distinct resource ids the order references.
func (o Order) ResourceIDs() []string {
	return lo.Uniq(lo.Map(o.Items, func(item OrderItem, _ int) string {
		return item.ResourceID
	}))
}
