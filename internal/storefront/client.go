package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/internal/cart"
	pkgerrors "github.com/khatmdev/quadramall-sub001/pkg/errors"
	"github.com/khatmdev/quadramall-sub001/pkg/types"
)

const cartPath = "/api/v1/cart"

const responseBodyReadLimit int64 = 1024

var errBaseURLRequired = errors.New("cart api base url is required")

// CartAPI is the cart service surface the session depends on.
type CartAPI interface {
	FetchCart(ctx context.Context) ([]cart.StoreGroup, error)
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*cart.Item, error)
	UpdateVariant(ctx context.Context, itemID, variantID uuid.UUID, addonIDs []uuid.UUID) (*cart.Item, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteAddon(ctx context.Context, itemID, addonID uuid.UUID) (*cart.Item, error)
	DeleteStoreItems(ctx context.Context, storeID uuid.UUID) (int, error)
}

// Client talks to the cart REST API on behalf of one signed-in shopper.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithAccessToken sends token as a bearer credential on every request.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// NewClient builds a cart API client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("parse cart api base url: %w", err)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) FetchCart(ctx context.Context) ([]cart.StoreGroup, error) {
	var groups []cart.StoreGroup
	if err := c.do(ctx, http.MethodGet, cartPath, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*cart.Item, error) {
	body := map[string]any{"quantity": quantity}
	var item cart.Item
	if err := c.do(ctx, http.MethodPut, itemPath(itemID, "quantity"), body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateVariant(ctx context.Context, itemID, variantID uuid.UUID, addonIDs []uuid.UUID) (*cart.Item, error) {
	if addonIDs == nil {
		addonIDs = []uuid.UUID{}
	}
	body := map[string]any{"variant_id": variantID, "addon_ids": addonIDs}
	var item cart.Item
	if err := c.do(ctx, http.MethodPut, itemPath(itemID, "variant"), body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes a line. A line that is already gone counts as deleted.
func (c *Client) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	err := c.do(ctx, http.MethodDelete, itemPath(itemID), nil, nil)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil
	}
	return err
}

func (c *Client) DeleteAddon(ctx context.Context, itemID, addonID uuid.UUID) (*cart.Item, error) {
	var item cart.Item
	if err := c.do(ctx, http.MethodDelete, itemPath(itemID, "addons", addonID.String()), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteStoreItems removes every line of one store in a single request.
func (c *Client) DeleteStoreItems(ctx context.Context, storeID uuid.UUID) (int, error) {
	var out struct {
		Removed int `json:"removed"`
	}
	if err := c.do(ctx, http.MethodDelete, cartPath+"/stores/"+storeID.String(), nil, &out); err != nil {
		return 0, err
	}
	return out.Removed, nil
}

func itemPath(itemID uuid.UUID, parts ...string) string {
	path := cartPath + "/items/" + itemID.String()
	for _, p := range parts {
		path += "/" + url.PathEscape(p)
	}
	return path
}

// do sends one request and decodes the data envelope into out. Error envelopes
// become typed errors carrying the server's code and message.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "cart api client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal cart request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build cart request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute cart request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart response")
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart payload")
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	code := pkgerrors.CodeForStatus(resp.StatusCode)

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		if c := pkgerrors.Code(envelope.Error.Code); pkgerrors.KnownCode(c) {
			code = c
		}
		return pkgerrors.New(code, envelope.Error.Message).WithDetails(envelope.Error.Details)
	}
	return pkgerrors.Wrap(code, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), "cart request failed")
}
