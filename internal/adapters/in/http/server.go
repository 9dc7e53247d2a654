// Package http exposes the operator API: split request lookups, dead-letter
// inspection and the manual recovery actions that events never trigger on
// their own.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"splitship/internal/core/application/usecases/commands"
	"splitship/internal/core/application/usecases/queries"
	"splitship/internal/pkg/errs"
)

// Error is the JSON error body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	resetHandler              commands.ResetSplitRequestCommandHandler
	cancelPaymentOrderHandler commands.CancelPaymentOrderCommandHandler

	// Query handlers
	getSplitRequestHandler queries.GetSplitRequestQueryHandler
	getDeadLettersHandler  queries.GetDeadLettersQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	resetHandler commands.ResetSplitRequestCommandHandler,
	cancelPaymentOrderHandler commands.CancelPaymentOrderCommandHandler,
	getSplitRequestHandler queries.GetSplitRequestQueryHandler,
	getDeadLettersHandler queries.GetDeadLettersQueryHandler,
) *Server {
	return &Server{
		resetHandler:              resetHandler,
		cancelPaymentOrderHandler: cancelPaymentOrderHandler,
		getSplitRequestHandler:    getSplitRequestHandler,
		getDeadLettersHandler:     getDeadLettersHandler,
	}
}

// RegisterRoutes binds all operator API routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.GetHealth)
	e.GET("/api/v1/split-requests/:orderID", s.GetSplitRequest)
	e.POST("/api/v1/split-requests/:orderID/reset", s.ResetSplitRequest)
	e.POST("/api/v1/split-requests/:orderID/cancel-payment-order", s.CancelPaymentOrder)
	e.GET("/api/v1/dead-letters", s.GetDeadLetters)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetSplitRequest handles GET /api/v1/split-requests/:orderID - retrieves the
// split request of a primary order, including its hold records.
func (s *Server) GetSplitRequest(ctx echo.Context) error {
	query, err := queries.NewGetSplitRequestQuery(ctx.Param("orderID"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id: " + err.Error(),
		})
	}

	response, err := s.getSplitRequestHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "No split request for this order",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve split request",
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// ResetSplitRequest handles POST /api/v1/split-requests/:orderID/reset - moves
// a Failed request back to Pending so the next delivery retries the saga.
func (s *Server) ResetSplitRequest(ctx echo.Context) error {
	cmd, err := commands.NewResetSplitRequestCommand(ctx.Param("orderID"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id: " + err.Error(),
		})
	}

	if handleErr := s.resetHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		switch {
		case errors.Is(handleErr, errs.ErrObjectNotFound):
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "No split request for this order",
			})
		case errors.Is(handleErr, errs.ErrValueIsInvalid):
			return ctx.JSON(http.StatusConflict, Error{
				Code:    http.StatusConflict,
				Message: "Split request is not in a resettable state: " + handleErr.Error(),
			})
		default:
			return ctx.JSON(http.StatusInternalServerError, Error{
				Code:    http.StatusInternalServerError,
				Message: "Failed to reset split request",
			})
		}
	}

	return ctx.NoContent(http.StatusNoContent)
}

type cancelPaymentOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelPaymentOrder handles POST /api/v1/split-requests/:orderID/cancel-payment-order -
// cancels the supplemental payment order after its primary order was cancelled.
func (s *Server) CancelPaymentOrder(ctx echo.Context) error {
	var body cancelPaymentOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewCancelPaymentOrderCommand(ctx.Param("orderID"), body.Reason)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id: " + err.Error(),
		})
	}

	if handleErr := s.cancelPaymentOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		switch {
		case errors.Is(handleErr, errs.ErrObjectNotFound):
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "No split request for this order",
			})
		case errors.Is(handleErr, commands.ErrNoPaymentOrder),
			errors.Is(handleErr, commands.ErrPaymentOrderAlreadyCancelled):
			return ctx.JSON(http.StatusConflict, Error{
				Code:    http.StatusConflict,
				Message: handleErr.Error(),
			})
		default:
			return ctx.JSON(http.StatusInternalServerError, Error{
				Code:    http.StatusInternalServerError,
				Message: "Failed to cancel payment order",
			})
		}
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetDeadLetters handles GET /api/v1/dead-letters - retrieves the newest
// dead-lettered events, optionally limited by the "limit" query parameter.
func (s *Server) GetDeadLetters(ctx echo.Context) error {
	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return ctx.JSON(http.StatusBadRequest, Error{
				Code:    http.StatusBadRequest,
				Message: "Invalid limit",
			})
		}
		limit = parsed
	}

	deadLetters, err := s.getDeadLettersHandler.Handle(ctx.Request().Context(), queries.NewGetDeadLettersQuery(limit))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve dead letters",
		})
	}

	return ctx.JSON(http.StatusOK, deadLetters)
}
