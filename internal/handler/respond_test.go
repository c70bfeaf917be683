package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amankrmj01/bakery-order-service/internal/domain/discount"
	"github.com/amankrmj01/bakery-order-service/internal/domain/order"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "validation error",
			err:    &order.ValidationError{Reason: "customer name is required"},
			status: http.StatusBadRequest,
		},
		{
			name: "payment amount mismatch",
			err: &order.PaymentAmountMismatchError{
				Provided: decimal.RequireFromString("10.00"),
				Total:    decimal.RequireFromString("21.60"),
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "product not found",
			err:    &order.ProductNotFoundError{ProductID: "p1"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "stock unavailable",
			err:    &order.StockUnavailableError{ProductID: "p1", ProductName: "Croissant"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "invalid discount code",
			err:    errors.Wrap(discount.ErrInvalidCode, "resolve discount code"),
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "expired discount code",
			err:    discount.ErrExpired,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "invalid transition",
			err:    &order.InvalidTransitionError{From: order.StatusDelivered, To: order.StatusCancelled},
			status: http.StatusConflict,
		},
		{
			name:   "status conflict",
			err:    order.ErrStatusConflict,
			status: http.StatusConflict,
		},
		{
			name:   "not found",
			err:    order.ErrNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "unclassified",
			err:    errors.New("pool exhausted"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders/x", nil)
			w := httptest.NewRecorder()

			writeDomainError(w, req, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body errorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.status, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteDomainError_HidesInternals(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders/x", nil)
	w := httptest.NewRecorder()

	writeDomainError(w, req, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	var body errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Message)
}

func TestFilterFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/orders?userId=user-1&status=PENDING&deliveryType=DELIVERY"+
			"&minAmount=10.00&maxAmount=99.50"+
			"&createdFrom=2025-03-01T00:00:00Z&createdTo=2025-03-14T00:00:00Z", nil)

	f, err := filterFromQuery(req)
	require.NoError(t, err)

	assert.Equal(t, "user-1", f.UserID)
	assert.Equal(t, order.StatusPending, f.Status)
	assert.Equal(t, order.DeliveryDelivery, f.DeliveryType)
	require.NotNil(t, f.MinAmount)
	assert.Equal(t, "10.00", f.MinAmount.StringFixed(2))
	require.NotNil(t, f.MaxAmount)
	assert.Equal(t, "99.50", f.MaxAmount.StringFixed(2))
	require.NotNil(t, f.CreatedFrom)
	require.NotNil(t, f.CreatedTo)
}

func TestFilterFromQuery_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)

	f, err := filterFromQuery(req)
	require.NoError(t, err)

	assert.Empty(t, f.UserID)
	assert.Nil(t, f.MinAmount)
	assert.Nil(t, f.CreatedFrom)
}

func TestFilterFromQuery_BadValues(t *testing.T) {
	for _, q := range []string{
		"minAmount=ten",
		"maxAmount=;;",
		"createdFrom=yesterday",
		"createdTo=03/14/2025",
	} {
		req := httptest.NewRequest(http.MethodGet, "/orders?"+q, nil)

		_, err := filterFromQuery(req)

		var vErr *order.ValidationError
		require.ErrorAs(t, err, &vErr, "query %q should be rejected", q)
	}
}
