package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/draftea/order-saga/order-service/application"
	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/models"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
)

// OrderHandlers contains order HTTP handlers
type OrderHandlers struct {
	manager         *application.OrderSagaManager
	getOrder        *application.GetOrder
	getOrderHistory *application.GetOrderHistory
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(
	manager *application.OrderSagaManager,
	getOrder *application.GetOrder,
	getOrderHistory *application.GetOrderHistory,
) *OrderHandlers {
	return &OrderHandlers{
		manager:         manager,
		getOrder:        getOrder,
		getOrderHistory: getOrderHistory,
	}
}

// SubmitOrder handles order submission requests
func (h *OrderHandlers) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var cmd application.SubmitOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.manager.SubmitNewOrder(r.Context(), &cmd)
	if err != nil && !(order != nil && errors.Is(err, domain.ErrDispatchFailure)) {
		writeError(w, r, err)
		return
	}
	// the order is committed; redrive resends the validation request

	writeJSON(w, http.StatusCreated, application.NewOrderResponse(order))
}

// GetOrder handles order retrieval requests
func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	response, err := h.getOrder.Execute(r.Context(), &application.GetOrderQuery{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetOrderHistory handles stage history requests
func (h *OrderHandlers) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	response, err := h.getOrderHistory.Execute(r.Context(), &application.GetOrderHistoryQuery{OrderID: chi.URLParam(r, "id")})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// MarkPickedUp handles pickup confirmations
func (h *OrderHandlers) MarkPickedUp(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.manager.MarkPickedUp(r.Context(), orderID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CancelOrder handles cancellation requests
func (h *OrderHandlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.manager.CancelOrder(r.Context(), orderID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.SubmitOrder)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Get("/history", h.GetOrderHistory)
			r.Post("/pickup", h.MarkPickedUp)
			r.Post("/cancel", h.CancelOrder)
		})
	})
}

func orderIDParam(r *http.Request) (models.ID, error) {
	raw := chi.URLParam(r, "id")
	orderID, err := models.NewID(raw)
	if err != nil {
		return "", errors.Wrapf(domain.ErrOrderNotFound, "invalid order ID %q", raw)
	}
	return orderID, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPersistenceFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zlog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
