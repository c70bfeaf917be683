package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/amankrmj01/bakery-order-service/internal/domain/inventory"
	"github.com/amankrmj01/bakery-order-service/internal/domain/product"
)

// ProductClient talks to the product service's catalog and inventory
// endpoints. It implements both product.Catalog and inventory.Client since
// the product service owns stock.
type ProductClient struct {
	c httpClient
}

var (
	_ product.Catalog  = (*ProductClient)(nil)
	_ inventory.Client = (*ProductClient)(nil)
)

// NewProductClient creates a ProductClient for the given base URL.
func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{c: newHTTPClient(baseURL, timeout)}
}

type productResponse struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        categoryRef     `json:"category"`
	EffectivePrice  decimal.Decimal `json:"effectivePrice"`
	PrimaryImageURL string          `json:"primaryImageUrl"`
	PrepTimeMinutes int             `json:"preparationTimeMinutes"`
}

// categoryRef tolerates both a bare string and the product service's nested
// category object.
type categoryRef struct {
	Name string `json:"name"`
}

func (c *categoryRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		c.Name = string(data[1 : len(data)-1])
		return nil
	}
	type alias categoryRef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	c.Name = a.Name
	return nil
}

// GetProduct fetches a product snapshot by id.
func (p *ProductClient) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	var resp productResponse
	err := p.c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &resp)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, errors.Wrapf(product.ErrNotFound, "product %s", id)
		}
		return nil, err
	}

	return &product.Product{
		ID:              resp.ID,
		SKU:             resp.SKU,
		Name:            resp.Name,
		Category:        resp.Category.Name,
		Description:     resp.Description,
		ImageURL:        resp.PrimaryImageURL,
		Price:           resp.EffectivePrice,
		PrepTimeMinutes: resp.PrepTimeMinutes,
	}, nil
}

// CheckAvailability reports whether the product has at least qty units in
// stock.
func (p *ProductClient) CheckAvailability(ctx context.Context, id string, qty int) (bool, error) {
	var resp struct {
		Sufficient bool `json:"sufficient"`
	}
	path := "/api/inventory/product/" + url.PathEscape(id) + "/availability?quantity=" + strconv.Itoa(qty)
	if err := p.c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Sufficient, nil
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// Reserve places a hold on qty units of the product.
func (p *ProductClient) Reserve(ctx context.Context, id string, qty int) (bool, error) {
	var resp struct {
		Success bool `json:"success"`
	}
	path := "/api/inventory/product/" + url.PathEscape(id) + "/reserve"
	if err := p.c.do(ctx, http.MethodPost, path, quantityRequest{Quantity: qty}, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Release frees a previously reserved hold.
func (p *ProductClient) Release(ctx context.Context, id string, qty int) error {
	path := "/api/inventory/product/" + url.PathEscape(id) + "/release-reserved"
	return p.c.do(ctx, http.MethodPost, path, quantityRequest{Quantity: qty}, nil)
}

// Consume converts a hold into a permanent deduction.
func (p *ProductClient) Consume(ctx context.Context, id string, qty int) error {
	path := "/api/inventory/product/" + url.PathEscape(id) + "/consume"
	return p.c.do(ctx, http.MethodPost, path, quantityRequest{Quantity: qty}, nil)
}
