package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bayoubeans/coffee-orders/internal/aggregate"
	"github.com/bayoubeans/coffee-orders/internal/auth"
	"github.com/bayoubeans/coffee-orders/internal/recordstore"
	"github.com/bayoubeans/coffee-orders/internal/repository"
	"github.com/bayoubeans/coffee-orders/internal/service"
)

type Service interface {
	TotalSpent(ctx context.Context, customerName string) ([]aggregate.LineItem, decimal.Decimal, error)
	CoffeeTypes(ctx context.Context, customerName string) ([]string, error)
	OrderDetails(ctx context.Context, orderID string) (*repository.Order, error)
	AddOrder(ctx context.Context, customerName, coffeeType string, quantity int, price decimal.Decimal) (string, error)
	ListOrders(ctx context.Context) ([]service.OrderSummary, error)
	UpdateOrder(ctx context.Context, orderID string, patch repository.OrderPatch) (recordstore.Record, error)
	DeleteOrder(ctx context.Context, orderID string) error
	Login(ctx context.Context, userName, secret string) (auth.LoginResult, error)
}

// Handler drives the interactive prompt loop. It owns all console I/O; the
// service below it never prints.
type Handler struct {
	svc Service
	in  *bufio.Reader
	out io.Writer
	eof bool
}

func New(svc Service, in io.Reader, out io.Writer) *Handler {
	return &Handler{
		svc: svc,
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Run executes the login prompt followed by the menu loop until the operator
// exits or the context is cancelled.
func (h *Handler) Run(ctx context.Context) error {
	if ok := h.handleLogin(ctx); !ok {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		h.printMenu()
		option := h.prompt("Choose an option: ")
		if h.eof && option == "" {
			return nil
		}

		switch option {
		case "1":
			h.handleTotalSpent(ctx)
		case "2":
			h.handleCoffeeTypes(ctx)
		case "3":
			h.handleOrderDetails(ctx)
		case "4":
			h.handleAddOrder(ctx)
		case "5":
			h.handleListOrders(ctx)
		case "6":
			h.handleUpdateOrder(ctx)
		case "7":
			h.handleDeleteOrder(ctx)
		case "8", "exit", "q":
			fmt.Fprintln(h.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(h.out, "Invalid option!")
		}
	}
}

func (h *Handler) printMenu() {
	fmt.Fprintln(h.out, "\nWelcome to Bayou Beans Coffee Order Lookup!")
	fmt.Fprintln(h.out, "1. View total spent by customer.")
	fmt.Fprintln(h.out, "2. View coffee types ordered by customer.")
	fmt.Fprintln(h.out, "3. Get full order details by Order ID.")
	fmt.Fprintln(h.out, "4. Add a new order.")
	fmt.Fprintln(h.out, "5. List all orders.")
	fmt.Fprintln(h.out, "6. Update an order.")
	fmt.Fprintln(h.out, "7. Delete an order.")
	fmt.Fprintln(h.out, "8. Exit.")
}

func (h *Handler) prompt(label string) string {
	fmt.Fprint(h.out, label)
	line, err := h.in.ReadString('\n')
	if err != nil {
		h.eof = true
	}
	return strings.TrimSpace(line)
}

func (h *Handler) handleLogin(ctx context.Context) bool {
	fmt.Fprintln(h.out, "Hello! Please log in to access the system:")
	username := h.prompt("Username: ")
	password := h.prompt("Password: ")
	if h.eof && username == "" && password == "" {
		return false
	}

	result, err := h.svc.Login(ctx, username, password)
	if err != nil {
		h.printError(err)
		return false
	}

	switch result {
	case auth.LoginSuccess:
		fmt.Fprintln(h.out, "Login succeeded!")
		return true
	case auth.LoginUserNotFound:
		fmt.Fprintln(h.out, "User not found.")
	case auth.LoginWrongSecret:
		fmt.Fprintln(h.out, "Incorrect password.")
	}
	return false
}

func (h *Handler) handleTotalSpent(ctx context.Context) {
	name := h.prompt("Enter customer name: ")

	items, total, err := h.svc.TotalSpent(ctx, name)
	if err != nil {
		h.printError(err)
		return
	}

	for _, item := range items {
		fmt.Fprintf(h.out, "%s: %d %ss. Each is $%s = %d * %s = $%s\n",
			item.OrderID, item.Quantity, item.CoffeeType,
			item.UnitPrice.String(), item.Quantity, item.UnitPrice.String(),
			item.Cost.StringFixed(2))
	}
	fmt.Fprintf(h.out, "TOTAL THAT %s HAS SPENT: $%s\n", strings.ToUpper(name), total.StringFixed(2))
}

func (h *Handler) handleCoffeeTypes(ctx context.Context) {
	name := h.prompt("Enter customer name: ")

	types, err := h.svc.CoffeeTypes(ctx, name)
	if err != nil {
		h.printError(err)
		return
	}

	if len(types) > 0 {
		fmt.Fprintf(h.out, "%s: %s\n", name, strings.Join(types, ", "))
	} else {
		fmt.Fprintf(h.out, "%s has not ordered anything yet.\n", name)
	}
}

func (h *Handler) handleOrderDetails(ctx context.Context) {
	orderID := h.prompt("Enter order ID: ")

	order, err := h.svc.OrderDetails(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			fmt.Fprintln(h.out, "Order not found.")
			return
		}
		h.printError(err)
		return
	}

	fmt.Fprintln(h.out, "Order Details:")
	fmt.Fprintf(h.out, "Order ID: %s\n", order.ID)
	fmt.Fprintf(h.out, "Customer Name: %s\n", order.CustomerName)
	fmt.Fprintf(h.out, "Coffee Type: %s\n", order.CoffeeType)
	fmt.Fprintf(h.out, "Quantity: %d\n", order.Quantity)
	fmt.Fprintf(h.out, "Price per unit: $%s\n", order.Price.String())
	fmt.Fprintf(h.out, "Order Date: %s\n", order.OrderDate.Format("2006-01-02"))
}

func (h *Handler) handleAddOrder(ctx context.Context) {
	customerName := h.prompt("What is the customer's name? ")
	coffeeType := h.prompt("Coffee Type? ")

	quantity, err := repository.ParseQuantity(h.prompt("How many coffees? "))
	if err != nil {
		h.printError(err)
		return
	}
	price, err := repository.ParsePrice(h.prompt("Price per unit? "))
	if err != nil {
		h.printError(err)
		return
	}

	orderID, err := h.svc.AddOrder(ctx, customerName, coffeeType, quantity, price)
	if err != nil {
		fmt.Fprintln(h.out, "Failed to add order! ERROR:", err)
		return
	}
	fmt.Fprintf(h.out, "Order %s for %s has been successfully placed!\n", orderID, customerName)
}

func (h *Handler) handleListOrders(ctx context.Context) {
	summaries, err := h.svc.ListOrders(ctx)
	if err != nil {
		h.printError(err)
		return
	}

	if len(summaries) == 0 {
		fmt.Fprintln(h.out, "No orders found.")
		return
	}

	fmt.Fprintln(h.out, "All Orders:")
	for _, summary := range summaries {
		fmt.Fprintf(h.out, "%s: %s\n", summary.ID, summary.CustomerName)
	}
}

func (h *Handler) handleUpdateOrder(ctx context.Context) {
	orderID := h.prompt("Enter order ID to update: ")

	order, err := h.svc.OrderDetails(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			fmt.Fprintln(h.out, "Order not found.")
			return
		}
		h.printError(err)
		return
	}

	// Blank input keeps the stored value; only answered prompts go into the
	// patch.
	var patch repository.OrderPatch

	if input := h.prompt(fmt.Sprintf("New coffee type [%s]: ", order.CoffeeType)); input != "" {
		patch.CoffeeType = &input
	}
	if input := h.prompt(fmt.Sprintf("New quantity [%d]: ", order.Quantity)); input != "" {
		quantity, err := repository.ParseQuantity(input)
		if err != nil {
			h.printError(err)
			return
		}
		patch.Quantity = &quantity
	}
	if input := h.prompt(fmt.Sprintf("New price [%s]: ", order.Price.String())); input != "" {
		price, err := repository.ParsePrice(input)
		if err != nil {
			h.printError(err)
			return
		}
		patch.Price = &price
	}

	updated, err := h.svc.UpdateOrder(ctx, orderID, patch)
	if err != nil {
		fmt.Fprintln(h.out, "Failed to update order:", err)
		return
	}
	fmt.Fprintln(h.out, "Order updated successfully:", formatRecord(updated))
}

func (h *Handler) handleDeleteOrder(ctx context.Context) {
	orderID := h.prompt("Enter order ID to delete: ")

	if err := h.svc.DeleteOrder(ctx, orderID); err != nil {
		fmt.Fprintln(h.out, "Failed to delete order:", err)
		return
	}
	fmt.Fprintf(h.out, "Order %s has been deleted.\n", orderID)
}

func (h *Handler) printError(err error) {
	if errors.Is(err, recordstore.ErrUnavailable) {
		fmt.Fprintln(h.out, "Record store is unavailable, try again later.")
		return
	}
	fmt.Fprintln(h.out, "Error:", err)
}

func formatRecord(record recordstore.Record) string {
	if len(record) == 0 {
		return "(no fields changed)"
	}
	parts := make([]string, 0, len(record))
	for field, value := range record {
		parts = append(parts, field+"="+value)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
