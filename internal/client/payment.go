package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/amankrmj01/bakery-order-service/internal/domain/payment"
)

// PaymentClient talks to the payment service.
type PaymentClient struct {
	c httpClient
}

var _ payment.Client = (*PaymentClient)(nil)

// NewPaymentClient creates a PaymentClient for the given base URL.
func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{c: newHTTPClient(baseURL, timeout)}
}

type createPaymentRequest struct {
	OrderID        string          `json:"orderId"`
	UserID         string          `json:"userId"`
	PaymentMethod  string          `json:"paymentMethod"`
	Amount         decimal.Decimal `json:"amount"`
	CurrencyCode   string          `json:"currencyCode"`
	Description    string          `json:"description"`
	CardLastFour   string          `json:"cardLastFour,omitempty"`
	CardBrand      string          `json:"cardBrand,omitempty"`
	CardType       string          `json:"cardType,omitempty"`
	WalletProvider string          `json:"digitalWalletProvider,omitempty"`
	BankName       string          `json:"bankName,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

type paymentResponse struct {
	ID      string          `json:"id"`
	OrderID string          `json:"orderId"`
	Status  string          `json:"status"`
	Amount  decimal.Decimal `json:"amount"`
}

// CreatePayment requests payment creation for a persisted order.
func (p *PaymentClient) CreatePayment(ctx context.Context, req payment.Request) (*payment.Payment, error) {
	var resp paymentResponse
	err := p.c.do(ctx, http.MethodPost, "/api/payments", createPaymentRequest{
		OrderID:        req.OrderID,
		UserID:         req.UserID,
		PaymentMethod:  req.Method,
		Amount:         req.Amount,
		CurrencyCode:   req.Currency,
		Description:    req.Description,
		CardLastFour:   req.CardLastFour,
		CardBrand:      req.CardBrand,
		CardType:       req.CardType,
		WalletProvider: req.WalletProvider,
		BankName:       req.BankName,
		Notes:          req.Notes,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return mapPayment(resp), nil
}

// GetByOrder returns the payment for an order.
func (p *PaymentClient) GetByOrder(ctx context.Context, orderID string) (*payment.Payment, error) {
	var resp paymentResponse
	err := p.c.do(ctx, http.MethodGet, "/api/payments/order/"+url.PathEscape(orderID), nil, &resp)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, errors.Wrapf(payment.ErrNotFound, "order %s", orderID)
		}
		return nil, err
	}
	return mapPayment(resp), nil
}

// CancelPayment requests cancellation of a payment.
func (p *PaymentClient) CancelPayment(ctx context.Context, paymentID, reason string) error {
	body := struct {
		Reason string `json:"reason"`
	}{Reason: reason}
	return p.c.do(ctx, http.MethodPost, "/api/payments/"+url.PathEscape(paymentID)+"/cancel", body, nil)
}

func mapPayment(resp paymentResponse) *payment.Payment {
	return &payment.Payment{
		ID:      resp.ID,
		OrderID: resp.OrderID,
		Status:  resp.Status,
		Amount:  resp.Amount,
	}
}
