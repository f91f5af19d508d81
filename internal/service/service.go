//go:generate mockgen -source ./service.go -destination=./mocks/service.go -package=mock_service
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bayoubeans/coffee-orders/internal/aggregate"
	"github.com/bayoubeans/coffee-orders/internal/audit"
	"github.com/bayoubeans/coffee-orders/internal/auth"
	"github.com/bayoubeans/coffee-orders/internal/idgen"
	"github.com/bayoubeans/coffee-orders/internal/metrics"
	"github.com/bayoubeans/coffee-orders/internal/recordstore"
	"github.com/bayoubeans/coffee-orders/internal/repository"
)

type OrderRepository interface {
	FetchAll(ctx context.Context) ([]repository.Order, error)
	FetchByID(ctx context.Context, id string) (*repository.Order, error)
	Insert(ctx context.Context, order *repository.Order) error
	Update(ctx context.Context, id string, patch repository.OrderPatch) (recordstore.Record, error)
	DeleteByID(ctx context.Context, id string) error
}

type Authenticator interface {
	Login(ctx context.Context, userName, secret string) (auth.LoginResult, error)
}

// OrderSummary is one row of the list-orders view.
type OrderSummary struct {
	ID           string
	CustomerName string
}

// Service exposes the operator intents over validated primitive inputs. It
// performs no console I/O; the CLI and HTTP layers own presentation.
type Service struct {
	orders OrderRepository
	authn  Authenticator
	ids    idgen.Generator
	audit  audit.Log
	logger *zap.Logger

	timeNow func() time.Time
}

func New(orders OrderRepository, authn Authenticator, ids idgen.Generator, auditLog audit.Log, logger *zap.Logger) *Service {
	return &Service{
		orders:  orders,
		authn:   authn,
		ids:     ids,
		audit:   auditLog,
		logger:  logger,
		timeNow: time.Now,
	}
}

// TotalSpent reports per-line costs and the spend total for one customer.
// Aggregation runs over a fresh full scan, so the result is a point-in-time
// snapshot with no isolation against concurrent writers.
func (s *Service) TotalSpent(ctx context.Context, customerName string) ([]aggregate.LineItem, decimal.Decimal, error) {
	orders, err := s.orders.FetchAll(ctx)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("total_spent").Inc()
		return nil, decimal.Zero, err
	}

	items, total := aggregate.TotalSpent(orders, customerName)
	return items, total, nil
}

// CoffeeTypes reports the distinct coffee types a customer has ordered,
// first-seen order preserved. A customer with no orders yields an empty
// list, not an error.
func (s *Service) CoffeeTypes(ctx context.Context, customerName string) ([]string, error) {
	orders, err := s.orders.FetchAll(ctx)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("coffee_types").Inc()
		return nil, err
	}
	return aggregate.DistinctCoffeeTypes(orders, customerName), nil
}

func (s *Service) OrderDetails(ctx context.Context, orderID string) (*repository.Order, error) {
	return s.orders.FetchByID(ctx, orderID)
}

// AddOrder places a new order. The order date is fixed to "now" in
// date-only form and the id comes from the injected generator.
func (s *Service) AddOrder(ctx context.Context, customerName, coffeeType string, quantity int, price decimal.Decimal) (string, error) {
	if quantity < 0 {
		return "", fmt.Errorf("%w: quantity must not be negative", repository.ErrValidation)
	}
	if price.IsNegative() {
		return "", fmt.Errorf("%w: price must not be negative", repository.ErrValidation)
	}

	now := s.timeNow().UTC()
	order := &repository.Order{
		ID:           s.ids.NewOrderID(),
		CustomerName: customerName,
		CoffeeType:   coffeeType,
		Quantity:     quantity,
		Price:        price,
		OrderDate:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("add_order").Inc()
		s.recordAudit(ctx, audit.Entry{
			Action:   "add_order",
			OrderID:  order.ID,
			Customer: customerName,
			Outcome:  "error",
			Detail:   err.Error(),
		})
		return "", err
	}

	metrics.OrdersCreatedTotal.Inc()
	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("customer", customerName))
	s.recordAudit(ctx, audit.Entry{
		Action:   "add_order",
		OrderID:  order.ID,
		Customer: customerName,
		Outcome:  "ok",
	})
	return order.ID, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	orders, err := s.orders.FetchAll(ctx)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("list_orders").Inc()
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, OrderSummary{ID: order.ID, CustomerName: order.CustomerName})
	}
	return summaries, nil
}

// UpdateOrder revises coffee type, quantity and/or price of a stored order.
// Fields left nil in the patch keep their stored value; an empty patch
// changes nothing.
func (s *Service) UpdateOrder(ctx context.Context, orderID string, patch repository.OrderPatch) (recordstore.Record, error) {
	updated, err := s.orders.Update(ctx, orderID, patch)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("update_order").Inc()
		return nil, err
	}

	metrics.OrdersUpdatedTotal.Inc()
	s.recordAudit(ctx, audit.Entry{
		Action:  "update_order",
		OrderID: orderID,
		Outcome: "ok",
		Detail:  fmt.Sprintf("%d field(s) changed", len(updated)),
	})
	return updated, nil
}

// DeleteOrder removes an order. Deleting an id that does not exist is a
// successful no-op.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	if err := s.orders.DeleteByID(ctx, orderID); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("delete_order").Inc()
		return err
	}

	metrics.OrdersDeletedTotal.Inc()
	s.recordAudit(ctx, audit.Entry{
		Action:  "delete_order",
		OrderID: orderID,
		Outcome: "ok",
	})
	return nil
}

func (s *Service) Login(ctx context.Context, userName, secret string) (auth.LoginResult, error) {
	result, err := s.authn.Login(ctx, userName, secret)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("unavailable").Inc()
		return 0, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(result.String()).Inc()
	s.recordAudit(ctx, audit.Entry{
		Action:  "login",
		Actor:   userName,
		Outcome: result.String(),
	})
	return result, nil
}

func (s *Service) recordAudit(ctx context.Context, entry audit.Entry) {
	entry.Timestamp = s.timeNow().UTC()
	s.audit.LogEntry(ctx, entry)
}
