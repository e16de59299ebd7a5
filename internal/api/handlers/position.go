package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dev0031/quanttrader/internal/orchestrator"
	"github.com/labstack/echo/v4"
)

// PositionHandler handles position endpoints
type PositionHandler struct {
	orchestrator *orchestrator.Orchestrator
}

// NewPositionHandler creates a new position handler
func NewPositionHandler(orch *orchestrator.Orchestrator) *PositionHandler {
	return &PositionHandler{orchestrator: orch}
}

// GetPositions returns all open positions
func (h *PositionHandler) GetPositions(c echo.Context) error {
	// In real implementation, would fetch from executor
	positions := []PositionData{}
	return c.JSON(http.StatusOK, positions)
}

// GetPosition returns a specific position
func (h *PositionHandler) GetPosition(c echo.Context) error {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid position ID"})
	}

	// In real implementation, would fetch from executor
	_ = id
	return c.JSON(http.StatusNotFound, map[string]string{"error": "Position not found"})
}

// ClosePosition closes a position
func (h *PositionHandler) ClosePosition(c echo.Context) error {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid position ID"})
	}

	// In real implementation, would close via executor
	_ = id
	return c.JSON(http.StatusOK, map[string]string{"status": "closed"})
}

// UpdateStopLossRequest represents stop loss update request
type UpdateStopLossRequest struct {
	StopLoss float64 `json:"stopLoss"`
}

// UpdateStopLoss updates a position's stop loss
func (h *PositionHandler) UpdateStopLoss(c echo.Context) error {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid position ID"})
	}

	var req UpdateStopLossRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	// In real implementation, would update via executor
	_ = id
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

// UpdateTakeProfitRequest represents take profit update request
type UpdateTakeProfitRequest struct {
	TakeProfit float64 `json:"takeProfit"`
}

// UpdateTakeProfit updates a position's take profit
func (h *PositionHandler) UpdateTakeProfit(c echo.Context) error {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid position ID"})
	}

	var req UpdateTakeProfitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	// In real implementation, would update via executor
	_ = id
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}
