package records_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bayoubeans/coffee-orders/internal/recordstore"
	mock_recordstore "github.com/bayoubeans/coffee-orders/internal/recordstore/mocks"
	"github.com/bayoubeans/coffee-orders/internal/repository"
	"github.com/bayoubeans/coffee-orders/internal/repository/records"
)

func testOrder() *repository.Order {
	return &repository.Order{
		ID:           "order_42",
		CustomerName: "Alex",
		CoffeeType:   "Latte",
		Quantity:     2,
		Price:        decimal.RequireFromString("3.50"),
		OrderDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testRecord() recordstore.Record {
	return recordstore.Record{
		"orderId":      "order_42",
		"customerName": "Alex",
		"coffeeType":   "Latte",
		"quantity":     "2",
		"price":        "3.50",
		"orderDate":    "2026-09-01",
	}
}

func TestOrderRepo_FetchByID(t *testing.T) {
	ctx := context.Background()

	t.Run("order found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(testRecord(), nil)

		order, err := repo.FetchByID(ctx, "order_42")
		require.NoError(t, err)
		assert.Equal(t, "order_42", order.ID)
		assert.Equal(t, "Alex", order.CustomerName)
		assert.Equal(t, "Latte", order.CoffeeType)
		assert.Equal(t, 2, order.Quantity)
		assert.True(t, order.Price.Equal(decimal.RequireFromString("3.50")))
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), order.OrderDate)
	})

	t.Run("order not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "missing").
			Return(nil, recordstore.ErrNotFound)

		order, err := repo.FetchByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, order)
	})

	t.Run("store unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(nil, recordstore.ErrUnavailable)

		_, err := repo.FetchByID(ctx, "order_42")
		assert.ErrorIs(t, err, recordstore.ErrUnavailable)
	})

	t.Run("bad numeric field in stored record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		rec := testRecord()
		rec["quantity"] = "two"
		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(rec, nil)

		_, err := repo.FetchByID(ctx, "order_42")
		assert.ErrorIs(t, err, repository.ErrValidation)
	})
}

func TestOrderRepo_FetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("maps every scanned record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		second := testRecord()
		second["orderId"] = "order_43"
		second["customerName"] = "Maria"
		mockStore.EXPECT().ScanAll(gomock.Any(), recordstore.OrdersCollection).
			Return([]recordstore.Record{testRecord(), second}, nil)

		orders, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "order_42", orders[0].ID)
		assert.Equal(t, "Maria", orders[1].CustomerName)
	})

	t.Run("scan failure propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		mockStore.EXPECT().ScanAll(gomock.Any(), recordstore.OrdersCollection).
			Return(nil, recordstore.ErrUnavailable)

		_, err := repo.FetchAll(ctx)
		assert.ErrorIs(t, err, recordstore.ErrUnavailable)
	})
}

func TestOrderRepo_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(nil, recordstore.ErrNotFound)
		mockStore.EXPECT().Put(gomock.Any(), recordstore.OrdersCollection, "order_42", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, rec recordstore.Record) error {
				assert.Equal(t, "order_42", rec["orderId"])
				assert.Equal(t, "Alex", rec["customerName"])
				assert.Equal(t, "2", rec["quantity"])
				assert.Equal(t, "3.50", rec["price"])
				assert.Equal(t, "2026-09-01", rec["orderDate"])
				return nil
			})

		err := repo.Insert(ctx, testOrder())
		assert.NoError(t, err)
	})

	t.Run("colliding id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(testRecord(), nil)

		err := repo.Insert(ctx, testOrder())
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	})

	t.Run("store error on existence check", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(nil, recordstore.ErrUnavailable)

		err := repo.Insert(ctx, testOrder())
		assert.ErrorIs(t, err, recordstore.ErrUnavailable)
	})
}

func TestOrderRepo_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update sends only supplied fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		qty := 5
		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(testRecord(), nil)
		mockStore.EXPECT().UpdateFields(gomock.Any(), recordstore.OrdersCollection, "order_42",
			recordstore.Record{"quantity": "5"}).
			Return(recordstore.Record{"quantity": "5"}, nil)

		updated, err := repo.Update(ctx, "order_42", repository.OrderPatch{Quantity: &qty})
		require.NoError(t, err)
		assert.Equal(t, recordstore.Record{"quantity": "5"}, updated)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(testRecord(), nil)

		updated, err := repo.Update(ctx, "order_42", repository.OrderPatch{})
		require.NoError(t, err)
		assert.Empty(t, updated)
	})

	t.Run("absent order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		qty := 5
		mockStore.EXPECT().Get(gomock.Any(), recordstore.OrdersCollection, "missing").
			Return(nil, recordstore.ErrNotFound)

		_, err := repo.Update(ctx, "missing", repository.OrderPatch{Quantity: &qty})
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})
}

func TestOrderRepo_DeleteByID(t *testing.T) {
	ctx := context.Background()

	t.Run("delete issues store delete", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		mockStore.EXPECT().Delete(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(nil)

		assert.NoError(t, repo.DeleteByID(ctx, "order_42"))
	})

	t.Run("store failure propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mock_recordstore.NewMockStore(ctrl)
		repo := records.NewOrderRepo(mockStore)

		expectedErr := errors.New("connection reset")
		mockStore.EXPECT().Delete(gomock.Any(), recordstore.OrdersCollection, "order_42").
			Return(expectedErr)

		err := repo.DeleteByID(ctx, "order_42")
		assert.ErrorIs(t, err, expectedErr)
	})
}

// Round-trip against the in-memory store: insert then fetch returns an order
// equal field-for-field, and deleting an absent id stays a no-op.
func TestOrderRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := records.NewOrderRepo(recordstore.NewMemoryStore())

	order := testOrder()
	require.NoError(t, repo.Insert(ctx, order))

	got, err := repo.FetchByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, order.CustomerName, got.CustomerName)
	assert.Equal(t, order.CoffeeType, got.CoffeeType)
	assert.Equal(t, order.Quantity, got.Quantity)
	assert.True(t, order.Price.Equal(got.Price))
	assert.Equal(t, order.OrderDate, got.OrderDate)

	assert.ErrorIs(t, repo.Insert(ctx, order), repository.ErrDuplicateKey)

	require.NoError(t, repo.DeleteByID(ctx, order.ID))
	require.NoError(t, repo.DeleteByID(ctx, order.ID))

	_, err = repo.FetchByID(ctx, order.ID)
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
}
