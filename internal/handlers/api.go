package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tinchoocaltana1/becacnc/internal/apperr"
	"github.com/tinchoocaltana1/becacnc/internal/models"
	"github.com/tinchoocaltana1/becacnc/internal/services"
)

// APIHandler serves the JSON admin API.
type APIHandler struct {
	Orders   *services.OrderService
	Products *services.ProductService
	Stats    *services.StatsService
	Auth     *services.AuthService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type productRequest struct {
	Description string     `json:"description"`
	Size        string     `json:"size"`
	Quantity    flexNumber `json:"quantity"`
	UnitCost    flexNumber `json:"unit_cost"`
	UnitPrice   flexNumber `json:"unit_price"`
}

type createOrderRequest struct {
	ClientName string           `json:"client_name"`
	Products   []productRequest `json:"products"`
}

// actor is the admin behind the request, empty when unauthenticated.
func actor(r *http.Request) string {
	if c := ClaimsFromContext(r.Context()); c != nil {
		return c.Username
	}
	return ""
}

func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			slog.Warn("Failed login attempt", "username", req.Username, "ip", clientIP(r))
			writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		writeError(w, r, apperr.Internal("error logging in", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *APIHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	inputs := make([]services.ProductInput, 0, len(req.Products))
	for _, p := range req.Products {
		inputs = append(inputs, services.ProductInput{
			Description: p.Description,
			Size:        p.Size,
			Quantity:    string(p.Quantity),
			UnitCost:    string(p.UnitCost),
			UnitPrice:   string(p.UnitPrice),
		})
	}

	id, err := h.Orders.Create(r.Context(), req.ClientName, inputs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Admin action", "action", "create_order", "order_id", id, "by", actor(r))
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Order and products created successfully",
		"order_id": id,
	})
}

// ListOrders lists every order, or only those with ?status=.
func (h *APIHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []models.OrderSummary
		err    error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		orders, err = h.Orders.ListByStatus(r.Context(), status)
	} else {
		orders, err = h.Orders.List(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *APIHandler) listOrdersWithStatus(status models.OrderStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := h.Orders.ListByStatus(r.Context(), string(status))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func (h *APIHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *APIHandler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Orders.Complete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Admin action", "action", "complete_order", "order_id", id, "by", actor(r))
	writeMessage(w, http.StatusOK, "Order marked as completed")
}

func (h *APIHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Admin action", "action", "delete_order", "order_id", id, "by", actor(r))
	writeMessage(w, http.StatusOK, "Order and its products deleted successfully")
}

func (h *APIHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *APIHandler) ListProductsByOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderId")
	if err != nil {
		writeError(w, r, apperr.Validation("invalid order_id", map[string]string{"order_id": "must be a positive integer"}))
		return
	}
	products, err := h.Products.ListByOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *APIHandler) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	done, err := h.Products.Toggle(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product status updated successfully",
		"is_done": done,
	})
}

func (h *APIHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Admin action", "action", "delete_product", "product_id", id, "by", actor(r))
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

func (h *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	report, err := h.Stats.Report(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *APIHandler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	month, err := h.Stats.Monthly(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, month)
}

func (h *APIHandler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	week, err := h.Stats.Weekly(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

func (h *APIHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Stats.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// Register mounts the API on mux. Everything except login and the health
// check requires a bearer token; login is rate limited per client.
func (h *APIHandler) Register(mux *http.ServeMux, loginLimiter *RateLimiter) {
	auth := RequireAuth(h.Auth)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/auth/login", loginLimiter.Middleware(h.Login))

	mux.HandleFunc("POST /api/orders", auth(h.CreateOrder))
	mux.HandleFunc("GET /api/orders", auth(h.ListOrders))
	mux.HandleFunc("GET /api/orders/pending", auth(h.listOrdersWithStatus(models.StatusPending)))
	mux.HandleFunc("GET /api/orders/completed", auth(h.listOrdersWithStatus(models.StatusCompleted)))
	mux.HandleFunc("GET /api/orders/{id}", auth(h.GetOrder))
	mux.HandleFunc("PATCH /api/orders/{id}", auth(h.CompleteOrder))
	mux.HandleFunc("DELETE /api/orders/{id}", auth(h.DeleteOrder))

	mux.HandleFunc("GET /api/products", auth(h.ListProducts))
	mux.HandleFunc("GET /api/products/{orderId}", auth(h.ListProductsByOrder))
	mux.HandleFunc("PATCH /api/products/{productId}", auth(h.ToggleProduct))
	mux.HandleFunc("DELETE /api/products/{productId}", auth(h.DeleteProduct))

	mux.HandleFunc("GET /api/stats", auth(h.Stats))
	mux.HandleFunc("GET /api/stats/monthly", auth(h.MonthlyStats))
	mux.HandleFunc("GET /api/stats/weekly", auth(h.WeeklyStats))
	mux.HandleFunc("GET /api/stats/dashboard", auth(h.Dashboard))
}
