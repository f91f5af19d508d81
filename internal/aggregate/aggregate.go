// Package aggregate holds the pure reporting functions over an in-memory
// list of orders. Customer matching is exact and case-sensitive: "alex" and
// "Alex" are different customers.
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/bayoubeans/coffee-orders/internal/repository"
)

// LineItem is one order's contribution to a customer's spend total.
type LineItem struct {
	OrderID    string
	CoffeeType string
	Quantity   int
	UnitPrice  decimal.Decimal
	Cost       decimal.Decimal
}

// TotalSpent computes per-line costs and the spend total for one customer.
// Accumulation stays in decimal form; rounding to two places is left to the
// presentation layer so long histories do not compound rounding error.
func TotalSpent(orders []repository.Order, customerName string) ([]LineItem, decimal.Decimal) {
	var items []LineItem
	total := decimal.Zero

	for _, order := range orders {
		if order.CustomerName != customerName {
			continue
		}
		cost := order.Price.Mul(decimal.NewFromInt(int64(order.Quantity)))
		items = append(items, LineItem{
			OrderID:    order.ID,
			CoffeeType: order.CoffeeType,
			Quantity:   order.Quantity,
			UnitPrice:  order.Price,
			Cost:       cost,
		})
		total = total.Add(cost)
	}
	return items, total
}

// DistinctCoffeeTypes collects the coffee-type labels a customer has ordered,
// de-duplicated, preserving first-seen order. A customer with no orders
// yields an empty slice, never nil and never an error.
func DistinctCoffeeTypes(orders []repository.Order, customerName string) []string {
	types := []string{}
	seen := make(map[string]struct{})

	for _, order := range orders {
		if order.CustomerName != customerName {
			continue
		}
		if _, ok := seen[order.CoffeeType]; ok {
			continue
		}
		seen[order.CoffeeType] = struct{}{}
		types = append(types, order.CoffeeType)
	}
	return types
}
