package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	billdomain "github.com/harborline/shopd/internal/bill/domain"
	"github.com/harborline/shopd/internal/observability/metrics"
	purchasedomain "github.com/harborline/shopd/internal/purchase/domain"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	userdomain "github.com/harborline/shopd/internal/user/domain"
	"github.com/harborline/shopd/pkg/repository"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service is the purchase/refund orchestrator. Invariants are checked
// before any mutation; the relational group (customer + resources) is
// persisted concurrently and the bill is only touched after that group
// committed, so a bill never points at state that was not applied.
type Service struct {
	log *zap.Logger

	users     userdomain.Repository
	resources resourcedomain.Repository
	bills     billdomain.Repository
	metrics   *metrics.Shop
}

// ServiceParam collects the orchestrator dependencies.
type ServiceParam struct {
	fx.In

	Log       *zap.Logger
	Users     userdomain.Repository
	Resources resourcedomain.Repository
	Bills     billdomain.Repository
	Metrics   *metrics.Shop `optional:"true"`
}

// NewService constructs the orchestrator.
func NewService(p ServiceParam) purchasedomain.Service {
	return &Service{
		log:       p.Log.Named("purchase.service"),
		users:     p.Users,
		resources: p.Resources,
		bills:     p.Bills,
		metrics:   p.Metrics,
	}
}

func (s *Service) Purchase(ctx context.Context, order purchasedomain.Order) (*purchasedomain.PurchaseResult, error) {
	result, err := s.purchase(ctx, order)
	if err != nil {
		s.fail(ctx, "purchase", err)
		return nil, &purchasedomain.OperationError{Op: "purchase", Err: err}
	}
	s.metrics.RecordOperation("purchase", "success")
	return result, nil
}

func (s *Service) purchase(ctx context.Context, order purchasedomain.Order) (*purchasedomain.PurchaseResult, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.users.FindByID(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, &purchasedomain.NotFoundError{Entity: "customer", IDs: []string{order.CustomerID.String()}}
	}

	resources, err := s.loadResources(ctx, order.ResourceIDs())
	if err != nil {
		return nil, err
	}

	outcome, err := purchasedomain.BuildPurchase(order, *customer, resources)
	if err != nil {
		return nil, err
	}

	if err := s.persistOutcome(ctx, outcome); err != nil {
		return nil, err
	}

	// The bill is the durable record of a purchase that already happened
	// against inventory and balance, so it is created last.
	bill, err := s.bills.Create(ctx, &outcome.Bill)
	if err != nil {
		return nil, &purchasedomain.PersistenceError{Group: "bill", Err: err}
	}

	return &purchasedomain.PurchaseResult{
		Bill: *bill,
		User: outcome.Customer.Sanitized(),
	}, nil
}

func (s *Service) Refund(ctx context.Context, billID string) (*purchasedomain.RefundResult, error) {
	result, err := s.refund(ctx, billID)
	if err != nil {
		s.fail(ctx, "refund", err)
		return nil, &purchasedomain.OperationError{Op: "refund", Err: err}
	}
	s.metrics.RecordOperation("refund", "success")
	return result, nil
}

func (s *Service) refund(ctx context.Context, billID string) (*purchasedomain.RefundResult, error) {
	if billID == "" {
		return nil, &purchasedomain.NotFoundError{Entity: "bill"}
	}

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, &purchasedomain.NotFoundError{Entity: "bill", IDs: []string{billID}}
	}

	customer, err := s.users.FindByID(ctx, snowflake.ID(bill.CustomerID))
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, &purchasedomain.NotFoundError{Entity: "customer"}
	}

	// A deleted resource makes the bill non-refundable: its snapshot
	// cannot restore a row that no longer exists.
	resources, err := s.loadResources(ctx, bill.ItemResourceIDs())
	if err != nil {
		return nil, err
	}

	outcome, err := purchasedomain.BuildRefund(*bill, *customer, resources)
	if err != nil {
		return nil, err
	}

	if err := s.persistOutcome(ctx, outcome); err != nil {
		return nil, err
	}

	deleted, err := s.bills.Delete(ctx, bill.ID)
	if err != nil {
		return nil, &purchasedomain.PersistenceError{Group: "bill", Err: err}
	}
	if deleted == nil {
		// Raced with another refund; balances are already restored, so
		// surface the conflict rather than pretending the delete landed.
		return nil, &purchasedomain.NotFoundError{Entity: "bill", IDs: []string{bill.ID}}
	}

	return &purchasedomain.RefundResult{
		RefundedBill: *deleted,
		User:         outcome.Customer.Sanitized(),
	}, nil
}

// loadResources batch-loads the id set and reports every missing id at
// once, not just the first.
func (s *Service) loadResources(ctx context.Context, ids []string) (map[string]resourcedomain.Resource, error) {
	found, err := s.resources.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(found, func(res resourcedomain.Resource) string { return res.ID })

	if len(byID) != len(ids) {
		missing := lo.Filter(ids, func(id string, _ int) bool {
			_, ok := byID[id]
			return !ok
		})
		return nil, &purchasedomain.NotFoundError{Entity: "resources", IDs: missing}
	}
	return byID, nil
}

// persistOutcome writes the customer and every resource concurrently.
// There is no cross-store transaction here; the optimistic versions on
// both row types are what keeps racing writers from committing twice.
func (s *Service) persistOutcome(ctx context.Context, outcome purchasedomain.Outcome) error {
	g, gctx := errgroup.WithContext(ctx)

	customer := outcome.Customer
	g.Go(func() error {
		if err := s.users.Save(gctx, &customer); err != nil {
			return &purchasedomain.PersistenceError{
				Group:     "customer",
				Transient: errors.Is(err, repository.ErrStaleVersion),
				Err:       err,
			}
		}
		return nil
	})

	for _, res := range outcome.Resources {
		res := res
		g.Go(func() error {
			if err := s.resources.Save(gctx, &res); err != nil {
				return &purchasedomain.PersistenceError{
					Group:     "resources",
					Transient: errors.Is(err, repository.ErrStaleVersion),
					Err:       err,
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// fail logs the nested cause before the envelope hides it from callers.
func (s *Service) fail(ctx context.Context, op string, err error) {
	s.metrics.RecordOperation(op, "failure")
	var pErr *purchasedomain.PersistenceError
	if errors.As(err, &pErr) {
		s.log.Error("store write failed after invariants passed",
			zap.String("operation", op),
			zap.String("group", pErr.Group),
			zap.Bool("transient", pErr.Transient),
			zap.Error(pErr.Err),
		)
		return
	}
	s.log.Warn("operation rejected",
		zap.String("operation", op),
		zap.Error(err),
	)
}
