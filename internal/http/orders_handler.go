package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	r "github.com/fjod/go_cart/bookstore-orders/internal/repository"
	"github.com/fjod/go_cart/bookstore-orders/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type OrdersHandler struct {
	orders  service.OrderService
	timeout time.Duration
	log     *slog.Logger
}

func NewOrdersHandler(orders service.OrderService, timeout time.Duration, log *slog.Logger) *OrdersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
		log:     log,
	}
}

type PlaceOrderRequestDTO struct {
	CustomerForm *domain.CustomerForm `json:"customerForm"`
	Cart         *domain.ShoppingCart `json:"cart"`
}

type PlaceOrderResponseDTO struct {
	OrderID int64 `json:"orderId"`
}

type CustomerDTO struct {
	CustomerID int64  `json:"customerId"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	CCLast4    string `json:"ccLast4"`
	CCExpDate  string `json:"ccExpDate"`
}

type LineItemDTO struct {
	BookID   int64           `json:"bookId"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type OrderDetailsDTO struct {
	OrderID            int64           `json:"orderId"`
	ConfirmationNumber int64           `json:"confirmationNumber"`
	Amount             decimal.Decimal `json:"amount"`
	DateCreated        string          `json:"dateCreated"`
	Customer           CustomerDTO     `json:"customer"`
	Items              []LineItemDTO   `json:"items"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// POST /api/v1/orders
func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	var body PlaceOrderRequestDTO
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if body.CustomerForm == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "customerForm is required")
		return
	}
	if body.Cart == nil {
		body.Cart = &domain.ShoppingCart{}
	}

	orderID, err := h.orders.PlaceOrder(ctx, body.CustomerForm, body.Cart)
	if err != nil {
		h.handleServiceError(w, req, err)
		return
	}

	respondJSON(w, http.StatusCreated, PlaceOrderResponseDTO{OrderID: orderID})
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrderDetails(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	orderIDParam := chi.URLParam(req, "order_id")
	if orderIDParam == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}
	orderID, err := strconv.ParseInt(orderIDParam, 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a positive integer")
		return
	}

	details, err := h.orders.GetOrderDetails(ctx, orderID)
	if err != nil {
		h.handleServiceError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrderDetails(details))
}

func (h *OrdersHandler) handleServiceError(w http.ResponseWriter, req *http.Request, err error) {
	var validationErr *service.ValidationError
	var placementErr *service.PlacementFailedError
	var persistenceErr *service.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: validationErr.Message,
			Code:  "validation_failed",
			Field: validationErr.Field,
		})
	case errors.Is(err, r.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.As(err, &persistenceErr):
		h.log.ErrorContext(req.Context(), "persistence fault", "op", persistenceErr.Op, "error", err)
		respondError(w, http.StatusServiceUnavailable, "persistence_error", "storage unavailable")
	case errors.As(err, &placementErr):
		h.log.ErrorContext(req.Context(), "order placement rolled back", "error", err)
		respondError(w, http.StatusInternalServerError, "placement_failed", "order could not be placed")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		h.log.ErrorContext(req.Context(), "request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func convertOrderDetails(d *domain.OrderDetails) OrderDetailsDTO {
	items := make([]LineItemDTO, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, LineItemDTO{
			BookID:   item.LineItem.BookID,
			Title:    item.Book.Title,
			Author:   item.Book.Author,
			Price:    item.Book.Price,
			Quantity: item.LineItem.Quantity,
		})
	}

	return OrderDetailsDTO{
		OrderID:            d.Order.OrderID,
		ConfirmationNumber: d.Order.ConfirmationNumber,
		Amount:             d.Order.Amount,
		DateCreated:        d.Order.DateCreated.UTC().Format(time.RFC3339),
		Customer: CustomerDTO{
			CustomerID: d.Customer.CustomerID,
			Name:       d.Customer.Name,
			Address:    d.Customer.Address,
			Phone:      d.Customer.Phone,
			Email:      d.Customer.Email,
			CCLast4:    lastFour(d.Customer.CCNumber),
			CCExpDate:  d.Customer.CCExpDate.Format("2006-01"),
		},
		Items: items,
	}
}

// lastFour keeps only the trailing card digits for display
func lastFour(ccNumber string) string {
	digits := make([]byte, 0, len(ccNumber))
	for i := 0; i < len(ccNumber); i++ {
		if ccNumber[i] >= '0' && ccNumber[i] <= '9' {
			digits = append(digits, ccNumber[i])
		}
	}
	if len(digits) <= 4 {
		return string(digits)
	}
	return string(digits[len(digits)-4:])
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
