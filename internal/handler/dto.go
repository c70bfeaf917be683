package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amankrmj01/bakery-order-service/internal/domain/order"
)

type createOrderRequest struct {
	UserID        string `json:"userId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`

	DeliveryType        string     `json:"deliveryType"`
	DeliveryAddress     string     `json:"deliveryAddress"`
	DeliveryDate        *time.Time `json:"deliveryDate"`
	SpecialInstructions string     `json:"specialInstructions"`

	Items        []itemRequest `json:"items"`
	DiscountCode string        `json:"discountCode"`

	PaymentMethod  string          `json:"paymentMethod"`
	PaymentAmount  decimal.Decimal `json:"paymentAmount"`
	CurrencyCode   string          `json:"currencyCode"`
	CardLastFour   string          `json:"cardLastFour"`
	CardBrand      string          `json:"cardBrand"`
	CardType       string          `json:"cardType"`
	WalletProvider string          `json:"digitalWalletProvider"`
	BankName       string          `json:"bankName"`
	PaymentNotes   string          `json:"paymentNotes"`
}

type itemRequest struct {
	ProductID           string           `json:"productId"`
	Quantity            int              `json:"quantity"`
	UnitPriceOverride   *decimal.Decimal `json:"unitPriceOverride"`
	SpecialInstructions string           `json:"specialInstructions"`
}

func (r createOrderRequest) toDomain() order.CreateRequest {
	items := make([]order.ItemRequest, len(r.Items))
	for i, it := range r.Items {
		items[i] = order.ItemRequest{
			ProductID:           it.ProductID,
			Quantity:            it.Quantity,
			UnitPriceOverride:   it.UnitPriceOverride,
			SpecialInstructions: it.SpecialInstructions,
		}
	}

	return order.CreateRequest{
		UserID:              r.UserID,
		CustomerName:        r.CustomerName,
		CustomerEmail:       r.CustomerEmail,
		CustomerPhone:       r.CustomerPhone,
		DeliveryType:        order.DeliveryType(r.DeliveryType),
		DeliveryAddress:     r.DeliveryAddress,
		DeliveryDate:        r.DeliveryDate,
		SpecialInstructions: r.SpecialInstructions,
		Items:               items,
		DiscountCode:        r.DiscountCode,
		PaymentMethod:       r.PaymentMethod,
		PaymentAmount:       r.PaymentAmount,
		Currency:            r.CurrencyCode,
		CardLastFour:        r.CardLastFour,
		CardBrand:           r.CardBrand,
		CardType:            r.CardType,
		WalletProvider:      r.WalletProvider,
		BankName:            r.BankName,
		PaymentNotes:        r.PaymentNotes,
	}
}

type statusUpdateRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type paymentCallbackRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type orderResponse struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	UserID      string `json:"userId"`

	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone,omitempty"`

	Status              string     `json:"status"`
	DeliveryType        string     `json:"deliveryType"`
	DeliveryAddress     string     `json:"deliveryAddress,omitempty"`
	DeliveryDate        *time.Time `json:"deliveryDate,omitempty"`
	SpecialInstructions string     `json:"specialInstructions,omitempty"`

	Items []itemResponse `json:"items"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`

	DiscountCode       string          `json:"discountCode,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`

	EstimatedPrepMinutes int        `json:"estimatedPreparationMinutes"`
	EstimatedReadyAt     *time.Time `json:"estimatedReadyTime,omitempty"`

	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	ConfirmedAt        *time.Time `json:"confirmedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
}

type itemResponse struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"productId"`
	ProductSKU          string          `json:"productSku"`
	ProductName         string          `json:"productName"`
	ProductCategory     string          `json:"productCategory,omitempty"`
	ProductDescription  string          `json:"productDescription,omitempty"`
	ProductImageURL     string          `json:"productImageUrl,omitempty"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	DiscountPerItem     decimal.Decimal `json:"discountPerItem"`
	EffectiveUnitPrice  decimal.Decimal `json:"effectiveUnitPrice"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	PrepTimeMinutes     int             `json:"preparationTimeMinutes"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]itemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemResponse{
			ID:                  it.ID,
			ProductID:           it.ProductID,
			ProductSKU:          it.ProductSKU,
			ProductName:         it.ProductName,
			ProductCategory:     it.ProductCategory,
			ProductDescription:  it.ProductDescription,
			ProductImageURL:     it.ProductImageURL,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			DiscountPerItem:     it.DiscountPerItem,
			EffectiveUnitPrice:  it.EffectiveUnitPrice(),
			Subtotal:            it.Subtotal(),
			PrepTimeMinutes:     it.PrepTimeMinutes,
			SpecialInstructions: it.SpecialInstructions,
		}
	}

	return orderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		UserID:               o.UserID,
		CustomerName:         o.CustomerName,
		CustomerEmail:        o.CustomerEmail,
		CustomerPhone:        o.CustomerPhone,
		Status:               string(o.Status),
		DeliveryType:         string(o.DeliveryType),
		DeliveryAddress:      o.DeliveryAddress,
		DeliveryDate:         o.DeliveryDate,
		SpecialInstructions:  o.SpecialInstructions,
		Items:                items,
		Subtotal:             o.Subtotal,
		TaxAmount:            o.TaxAmount,
		DiscountAmount:       o.DiscountAmount,
		DeliveryFee:          o.DeliveryFee,
		TotalAmount:          o.TotalAmount,
		DiscountCode:         o.DiscountCode,
		DiscountPercentage:   o.DiscountPercentage,
		EstimatedPrepMinutes: o.EstimatedPrepMinutes,
		EstimatedReadyAt:     o.EstimatedReadyAt,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		ConfirmedAt:          o.ConfirmedAt,
		CompletedAt:          o.CompletedAt,
		CancelledAt:          o.CancelledAt,
		CancellationReason:   o.CancellationReason,
	}
}

func toOrderResponses(orders []*order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

type statisticsResponse struct {
	TotalOrders     int64           `json:"totalOrders"`
	PendingOrders   int64           `json:"pendingOrders"`
	CompletedOrders int64           `json:"completedOrders"`
	CancelledOrders int64           `json:"cancelledOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	AverageValue    decimal.Decimal `json:"averageOrderValue"`
}
