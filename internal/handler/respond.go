package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/amankrmj01/bakery-order-service/internal/domain/discount"
	"github.com/amankrmj01/bakery-order-service/internal/domain/order"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// writeDomainError maps domain errors onto HTTP statuses. Unclassified
// errors are logged and surface as 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr *order.ValidationError
		pErr *order.ProductNotFoundError
		sErr *order.StockUnavailableError
		aErr *order.PaymentAmountMismatchError
		tErr *order.InvalidTransitionError
	)

	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &aErr):
		writeError(w, http.StatusBadRequest, aErr.Error())
	case errors.As(err, &pErr):
		writeError(w, http.StatusUnprocessableEntity, pErr.Error())
	case errors.As(err, &sErr):
		writeError(w, http.StatusUnprocessableEntity, sErr.Error())
	case errors.Is(err, discount.ErrInvalidCode),
		errors.Is(err, discount.ErrExpired),
		errors.Is(err, discount.ErrUsageLimitReached):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &tErr):
		writeError(w, http.StatusConflict, tErr.Error())
	case errors.Is(err, order.ErrStatusConflict):
		writeError(w, http.StatusConflict, order.ErrStatusConflict.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
