package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bayoubeans/coffee-orders/internal/audit"
)

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := audit.Entry{
			Timestamp: time.Now().UTC(),
			Action:    actionName(r.URL.Path, r.Method),
			Detail:    r.Method + " " + r.URL.Path,
		}

		if username, _, ok := r.BasicAuth(); ok {
			entry.Actor = username
		}

		if id, ok := pathSegmentAfter(r.URL.Path, "orders"); ok {
			entry.OrderID = id
		}
		if name, ok := pathSegmentAfter(r.URL.Path, "customers"); ok {
			entry.Customer = name
		}

		wrw := newResponseWriterWrapper(w)
		next.ServeHTTP(wrw, r)

		entry.Outcome = http.StatusText(wrw.GetStatusCode())
		s.auditLog.LogEntry(r.Context(), entry)
	})
}

func pathSegmentAfter(path, segment string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if part == segment && i+1 < len(parts) {
			return parts[i+1], true
		}
	}
	return "", false
}

func actionName(path, method string) string {
	switch {
	case strings.Contains(path, "/total-spent"):
		return "total_spent"
	case strings.Contains(path, "/coffee-types"):
		return "coffee_types"
	case strings.HasPrefix(path, "/orders"):
		switch method {
		case http.MethodPost:
			return "add_order"
		case http.MethodPatch:
			return "update_order"
		case http.MethodDelete:
			return "delete_order"
		default:
			if strings.Trim(path, "/") == "orders" {
				return "list_orders"
			}
			return "order_details"
		}
	}
	return "unknown"
}
