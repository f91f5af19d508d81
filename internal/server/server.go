//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/bayoubeans/coffee-orders/internal/aggregate"
	"github.com/bayoubeans/coffee-orders/internal/audit"
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

type Server struct {
	svc      Service
	auditLog audit.Log
	server   *http.Server
}

func New(svc Service, auditLog audit.Log) *Server {
	return &Server{
		svc:      svc,
		auditLog: auditLog,
	}
}

func (s *Server) Run(port string) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Printf("Server starting on port %s", port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Println("Shutting down HTTP server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/").Subrouter()
	api.Use(s.auditLogMiddleware, s.basicAuthMiddleware)

	api.HandleFunc("/orders", s.handleAddOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", s.handleOrderDetails).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", s.handleUpdateOrder).Methods(http.MethodPatch)
	api.HandleFunc("/orders/{id}", s.handleDeleteOrder).Methods(http.MethodDelete)

	api.HandleFunc("/customers/{name}/total-spent", s.handleTotalSpent).Methods(http.MethodGet)
	api.HandleFunc("/customers/{name}/coffee-types", s.handleCoffeeTypes).Methods(http.MethodGet)

	return router
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		result, err := s.svc.Login(r.Context(), username, password)
		if err != nil || result != auth.LoginSuccess {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrObjectNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, repository.ErrDuplicateKey):
		respondError(w, http.StatusConflict, "Order id already exists")
	case errors.Is(err, recordstore.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "Record store unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}

type lineItemResponse struct {
	OrderID    string `json:"order_id"`
	CoffeeType string `json:"coffee_type"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	Cost       string `json:"cost"`
}

func (s *Server) handleTotalSpent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	items, total, err := s.svc.TotalSpent(r.Context(), name)
	if err != nil {
		respondFailure(w, err)
		return
	}

	lineItems := make([]lineItemResponse, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, lineItemResponse{
			OrderID:    item.OrderID,
			CoffeeType: item.CoffeeType,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.String(),
			Cost:       item.Cost.StringFixed(2),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"customer":   name,
		"line_items": lineItems,
		"total":      total.StringFixed(2),
	})
}

func (s *Server) handleCoffeeTypes(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	types, err := s.svc.CoffeeTypes(r.Context(), name)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"customer":     name,
		"coffee_types": types,
	})
}

func (s *Server) handleOrderDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := s.svc.OrderDetails(r.Context(), id)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order_id":      order.ID,
		"customer_name": order.CustomerName,
		"coffee_type":   order.CoffeeType,
		"quantity":      order.Quantity,
		"price":         order.Price.String(),
		"order_date":    order.OrderDate.Format("2006-01-02"),
	})
}

func (s *Server) handleAddOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName string `json:"customer_name"`
		CoffeeType   string `json:"coffee_type"`
		Quantity     string `json:"quantity"`
		Price        string `json:"price"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	quantity, err := repository.ParseQuantity(req.Quantity)
	if err != nil {
		respondFailure(w, err)
		return
	}
	price, err := repository.ParsePrice(req.Price)
	if err != nil {
		respondFailure(w, err)
		return
	}

	orderID, err := s.svc.AddOrder(r.Context(), req.CustomerName, req.CoffeeType, quantity, price)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"order_id": orderID})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.ListOrders(r.Context())
	if err != nil {
		respondFailure(w, err)
		return
	}

	type row struct {
		OrderID      string `json:"order_id"`
		CustomerName string `json:"customer_name"`
	}
	rows := make([]row, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, row{OrderID: summary.ID, CustomerName: summary.CustomerName})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": rows})
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		CoffeeType *string `json:"coffee_type"`
		Quantity   *string `json:"quantity"`
		Price      *string `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var patch repository.OrderPatch
	patch.CoffeeType = req.CoffeeType
	if req.Quantity != nil {
		quantity, err := repository.ParseQuantity(*req.Quantity)
		if err != nil {
			respondFailure(w, err)
			return
		}
		patch.Quantity = &quantity
	}
	if req.Price != nil {
		price, err := repository.ParsePrice(*req.Price)
		if err != nil {
			respondFailure(w, err)
			return
		}
		patch.Price = &price
	}

	updated, err := s.svc.UpdateOrder(r.Context(), id, patch)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"updated": updated})
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.svc.DeleteOrder(r.Context(), id); err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Order deleted"})
}
