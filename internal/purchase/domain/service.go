package domain

import (
	"context"

	billdomain "github.com/harborline/shopd/internal/bill/domain"
	userdomain "github.com/harborline/shopd/internal/user/domain"
)

// PurchaseResult is returned to the caller after a committed purchase.
type PurchaseResult struct {
	Bill billdomain.Bill `json:"bill"`
	User userdomain.User `json:"user"`
}

// RefundResult is returned after a committed refund; the bill is the
// deleted document.
type RefundResult struct {
	RefundedBill billdomain.Bill `json:"refundedBill"`
	User         userdomain.User `json:"user"`
}

// Service drives the purchase/refund workflow across the relational and
// document stores.
type Service interface {
	Purchase(ctx context.Context, order Order) (*PurchaseResult, error)
	Refund(ctx context.Context, billID string) (*RefundResult, error)
}
