package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"RocketShoes/internal/cart"
)

const DefaultClientTimeout = 3 * time.Second

var (
	ErrNotFound    = errors.New("inventory: not found")
	ErrBadStatus   = errors.New("inventory: bad status")
	ErrUnavailable = errors.New("inventory: unavailable")
)

// Client talks to the inventory service and satisfies cart.Inventory.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetStock(ctx context.Context, productID int) (cart.Stock, error) {
	var st cart.Stock
	if err := c.get(ctx, fmt.Sprintf("%s/stock/%d", c.BaseURL, productID), &st); err != nil {
		return cart.Stock{}, err
	}
	return st, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int) (cart.Product, error) {
	var p cart.Product
	if err := c.get(ctx, fmt.Sprintf("%s/products/%d", c.BaseURL, productID), &p); err != nil {
		return cart.Product{}, err
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}
