package records

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bayoubeans/coffee-orders/internal/recordstore"
	"github.com/bayoubeans/coffee-orders/internal/repository"
)

const (
	fieldOrderID      = "orderId"
	fieldCustomerName = "customerName"
	fieldCoffeeType   = "coffeeType"
	fieldQuantity     = "quantity"
	fieldPrice        = "price"
	fieldOrderDate    = "orderDate"

	dateLayout = "2006-01-02"
)

type OrderRepo struct {
	store recordstore.Store
}

func NewOrderRepo(store recordstore.Store) *OrderRepo {
	return &OrderRepo{store: store}
}

// FetchAll returns every stored order in store-defined order. Callers must
// not rely on any particular ordering.
func (r *OrderRepo) FetchAll(ctx context.Context) ([]repository.Order, error) {
	recs, err := r.store.ScanAll(ctx, recordstore.OrdersCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	orders := make([]repository.Order, 0, len(recs))
	for _, rec := range recs {
		order, err := orderFromRecord(rec)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *OrderRepo) FetchByID(ctx context.Context, id string) (*repository.Order, error) {
	rec, err := r.store.Get(ctx, recordstore.OrdersCollection, id)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}

	order, err := orderFromRecord(rec)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Insert writes a new order under its caller-generated id. The id space is
// checked explicitly before the write so a colliding key surfaces as
// ErrDuplicateKey instead of silently overwriting the stored record.
func (r *OrderRepo) Insert(ctx context.Context, order *repository.Order) error {
	_, err := r.store.Get(ctx, recordstore.OrdersCollection, order.ID)
	if err == nil {
		return fmt.Errorf("%w: order %s", repository.ErrDuplicateKey, order.ID)
	}
	if !errors.Is(err, recordstore.ErrNotFound) {
		return fmt.Errorf("failed to check order %s: %w", order.ID, err)
	}

	if err := r.store.Put(ctx, recordstore.OrdersCollection, order.ID, orderToRecord(order)); err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.ID, err)
	}
	return nil
}

// Update applies the supplied fields to a stored order, leaving omitted
// fields untouched. The current record is fetched first so an absent id is
// reported before anything is written. An empty patch is a no-op.
func (r *OrderRepo) Update(ctx context.Context, id string, patch repository.OrderPatch) (recordstore.Record, error) {
	if _, err := r.FetchByID(ctx, id); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return recordstore.Record{}, nil
	}

	fields := recordstore.Record{}
	if patch.CoffeeType != nil {
		fields[fieldCoffeeType] = *patch.CoffeeType
	}
	if patch.Quantity != nil {
		fields[fieldQuantity] = strconv.Itoa(*patch.Quantity)
	}
	if patch.Price != nil {
		fields[fieldPrice] = patch.Price.String()
	}

	updated, err := r.store.UpdateFields(ctx, recordstore.OrdersCollection, id, fields)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to update order %s: %w", id, err)
	}
	return updated, nil
}

// DeleteByID is idempotent: deleting an absent order is not an error.
func (r *OrderRepo) DeleteByID(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, recordstore.OrdersCollection, id); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	return nil
}

func orderToRecord(order *repository.Order) recordstore.Record {
	return recordstore.Record{
		fieldOrderID:      order.ID,
		fieldCustomerName: order.CustomerName,
		fieldCoffeeType:   order.CoffeeType,
		fieldQuantity:     strconv.Itoa(order.Quantity),
		fieldPrice:        order.Price.String(),
		fieldOrderDate:    order.OrderDate.Format(dateLayout),
	}
}

func orderFromRecord(rec recordstore.Record) (repository.Order, error) {
	qty, err := repository.ParseQuantity(rec[fieldQuantity])
	if err != nil {
		return repository.Order{}, fmt.Errorf("order %s: %w", rec[fieldOrderID], err)
	}

	price, err := repository.ParsePrice(rec[fieldPrice])
	if err != nil {
		return repository.Order{}, fmt.Errorf("order %s: %w", rec[fieldOrderID], err)
	}

	var orderDate time.Time
	if raw := rec[fieldOrderDate]; raw != "" {
		orderDate, err = time.Parse(dateLayout, raw)
		if err != nil {
			return repository.Order{}, fmt.Errorf("%w: order %s has bad orderDate %q", repository.ErrValidation, rec[fieldOrderID], raw)
		}
	}

	return repository.Order{
		ID:           rec[fieldOrderID],
		CustomerName: rec[fieldCustomerName],
		CoffeeType:   rec[fieldCoffeeType],
		Quantity:     qty,
		Price:        price,
		OrderDate:    orderDate,
	}, nil
}
