// Package shopapi is the typed client for the external storefront REST API.
// The console owns no product or user data; every mutation here is the
// authoritative server round-trip the UI state is reconciled against.
package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopfront/adminweb/internal/metrics"
)

// Product is the backend's canonical product representation.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

// ProductInput is the editable subset submitted on create and update.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

// ListQuery narrows GET /products. Zero value means the full collection.
type ListQuery struct {
	Search   string
	Category string
}

// APIError is a backend rejection (non-2xx with a decodable message). The
// message is surfaced to the user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to the storefront backend. Every request carries the
// configured timeout; nothing is retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	err := c.do(ctx, "login", http.MethodPost, "/users/login", "", loginRequest{Email: email, Password: password}, &out, "message")
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// Register creates an account. The caller logs in separately afterwards.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	return c.do(ctx, "register", http.MethodPost, "/users/register", "", registerRequest{Username: username, Email: email, Password: password}, nil, "message")
}

type listResponse struct {
	Products []Product `json:"products"`
}

// ListProducts fetches the product collection. No authentication required.
func (c *Client) ListProducts(ctx context.Context, q ListQuery) ([]Product, error) {
	path := "/products"
	vals := url.Values{}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	if q.Category != "" {
		vals.Set("category", q.Category)
	}
	if len(vals) > 0 {
		path += "?" + vals.Encode()
	}

	var out listResponse
	if err := c.do(ctx, "list_products", http.MethodGet, path, "", nil, &out, "error"); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// CreateProduct submits a new product with the bearer token attached and
// returns the server's canonical representation (server-assigned id).
func (c *Client) CreateProduct(ctx context.Context, token string, in ProductInput) (Product, error) {
	var out Product
	err := c.do(ctx, "create_product", http.MethodPost, "/products", token, in, &out, "error")
	return out, err
}

// UpdateProduct replaces the editable fields of the product with the given
// id and returns the server's updated representation.
func (c *Client) UpdateProduct(ctx context.Context, token string, id int, in ProductInput) (Product, error) {
	var out Product
	err := c.do(ctx, "update_product", http.MethodPut, "/products/"+strconv.Itoa(id), token, in, &out, "error")
	return out, err
}

// DeleteProduct removes the product with the given id.
func (c *Client) DeleteProduct(ctx context.Context, token string, id int) error {
	return c.do(ctx, "delete_product", http.MethodDelete, "/products/"+strconv.Itoa(id), token, nil, nil, "error")
}

// do runs one round-trip. errKey names the JSON field rejections carry: the
// /users routes answer {"message": ...}, the /products routes {"error": ...}.
func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any, errKey string) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestsTotal.WithLabelValues(op, "rejected").Inc()
		return decodeAPIError(resp, errKey)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.BackendRequestsTotal.WithLabelValues(op, "error").Inc()
			return fmt.Errorf("decode response: %w", err)
		}
	}
	metrics.BackendRequestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

func decodeAPIError(resp *http.Response, errKey string) error {
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if msg, ok := payload[errKey].(string); ok && msg != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
		// Some routes use the other key inconsistently; take either.
		for _, k := range []string{"error", "message"} {
			if msg, ok := payload[k].(string); ok && msg != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: msg}
			}
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("request failed with status %d", resp.StatusCode)}
}
