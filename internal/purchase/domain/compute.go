package domain

import (
	billdomain "github.com/harborline/shopd/internal/bill/domain"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	userdomain "github.com/harborline/shopd/internal/user/domain"
	"github.com/shopspring/decimal"
)

// Outcome is the pure result of applying an order or a refund: the bill
// plus fresh copies of every mutated entity. Nothing here has touched a
// store yet.
type Outcome struct {
	Bill      billdomain.Bill
	Customer  userdomain.User
	Resources []resourcedomain.Resource
}

// BuildPurchase computes the bill, the decremented resources and the
// debited customer for an order. Inputs are taken by value and returned
// as new values; no I/O, no shared mutation.
func BuildPurchase(order Order, customer userdomain.User, resources map[string]resourcedomain.Resource) (Outcome, error) {
	bill := billdomain.Bill{CustomerID: int64(customer.ID)}
	total := decimal.Zero

	updated := make(map[string]resourcedomain.Resource, len(resources))
	for id, res := range resources {
		updated[id] = res
	}

	for _, item := range order.Items {
		res, ok := updated[item.ResourceID]
		if !ok {
			return Outcome{}, &NotFoundError{Entity: "resources", IDs: []string{item.ResourceID}}
		}
		if res.Amount < item.Amount {
			return Outcome{}, &ExhaustedError{
				ResourceID: res.ID,
				Name:       res.Name,
				Available:  res.Amount,
				Requested:  item.Amount,
			}
		}

		// Snapshot name and price into the bill; the receipt must stay
		// readable after the resource changes or disappears.
		bill.Items = append(bill.Items, billdomain.BillItem{
			ResourceID: res.ID,
			Name:       res.Name,
			Quantity:   item.Amount,
			Price:      res.Price.InexactFloat64(),
		})
		total = total.Add(res.Price.Mul(decimal.NewFromInt(item.Amount)))

		res.Amount -= item.Amount
		updated[item.ResourceID] = res
	}

	bill.Total = total.InexactFloat64()

	debited, err := userdomain.ApplyBalanceDelta(customer, total.Neg())
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Bill:      bill,
		Customer:  debited,
		Resources: collect(updated),
	}, nil
}

// BuildRefund reverses a bill: resource amounts are restored and the
// customer is credited the recorded total.
func BuildRefund(bill billdomain.Bill, customer userdomain.User, resources map[string]resourcedomain.Resource) (Outcome, error) {
	updated := make(map[string]resourcedomain.Resource, len(resources))
	for id, res := range resources {
		updated[id] = res
	}

	for _, item := range bill.Items {
		res, ok := updated[item.ResourceID]
		if !ok {
			return Outcome{}, &NotFoundError{Entity: "resources", IDs: []string{item.ResourceID}}
		}
		res.Amount += item.Quantity
		updated[item.ResourceID] = res
	}

	credited, err := userdomain.ApplyBalanceDelta(customer, decimal.NewFromFloat(bill.Total))
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Bill:      bill,
		Customer:  credited,
		Resources: collect(updated),
	}, nil
}

func collect(resources map[string]resourcedomain.Resource) []resourcedomain.Resource {
	out := make([]resourcedomain.Resource, 0, len(resources))
	for _, res := range resources {
		out = append(out, res)
	}
	return out
}
