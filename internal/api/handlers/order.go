package handlers

import (
	"net/http"

	"github.com/Dev0031/quanttrader/internal/orchestrator"
	"github.com/labstack/echo/v4"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orchestrator *orchestrator.Orchestrator
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orch *orchestrator.Orchestrator) *OrderHandler {
	return &OrderHandler{orchestrator: orch}
}

// OrderData represents order data for API
type OrderData struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Side           string  `json:"side"`
	Type           string  `json:"type"`
	Quantity       float64 `json:"quantity"`
	Price          float64 `json:"price"`
	StopPrice      float64 `json:"stopPrice,omitempty"`
	Status         string  `json:"status"`
	FilledQuantity float64 `json:"filledQuantity"`
	AvgFillPrice   float64 `json:"avgFillPrice"`
	Strategy       string  `json:"strategy,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// GetOrders returns all orders
func (h *OrderHandler) GetOrders(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	status := c.QueryParam("status")
	limit := c.QueryParam("limit")

	// In real implementation, would fetch from executor
	_ = symbol
	_ = status
	_ = limit

	orders := []OrderData{}
	return c.JSON(http.StatusOK, orders)
}

// GetOpenOrders returns all open orders
func (h *OrderHandler) GetOpenOrders(c echo.Context) error {
	symbol := c.QueryParam("symbol")

	// In real implementation, would fetch from executor
	_ = symbol

	orders := []OrderData{}
	return c.JSON(http.StatusOK, orders)
}

// PlaceOrderRequest represents order placement request
type PlaceOrderRequest struct {
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Type      string  `json:"type"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
	StopPrice float64 `json:"stopPrice,omitempty"`
}

// PlaceOrderResponse represents order placement response
type PlaceOrderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// PlaceOrder places a new order
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	// Validate request
	if req.Symbol == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Symbol is required"})
	}
	if req.Side == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Side is required"})
	}
	if req.Type == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Type is required"})
	}
	if req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Quantity must be positive"})
	}

	// In real implementation, would place via executor
	response := PlaceOrderResponse{
		OrderID: "mock-order-id",
		Status:  "PENDING",
		Message: "Order placed successfully",
	}

	return c.JSON(http.StatusOK, response)
}

// CancelOrder cancels an order
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	orderID := c.Param("id")

	// In real implementation, would cancel via executor
	_ = orderID

	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled", "orderId": orderID})
}
