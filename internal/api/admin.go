package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"keebshop/internal/domain"
)

func adminProductPath(id int64) string { return "/admin/products/" + strconv.FormatInt(id, 10) }
func adminOrderPath(id int64) string   { return "/admin/orders/" + strconv.FormatInt(id, 10) }

func (c *Client) AdminProducts(ctx context.Context) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/admin/products", nil, nil, &raw); err != nil {
		return nil, err
	}
	return listOrPage[domain.Product](raw)
}

func (c *Client) AdminProduct(ctx context.Context, id int64) (domain.Product, error) {
	var out domain.Product
	err := c.doJSON(ctx, http.MethodGet, adminProductPath(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var out domain.Product
	err := c.doJSON(ctx, http.MethodPost, "/admin/products", nil, p, &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, p domain.Product) (domain.Product, error) {
	var out domain.Product
	err := c.doJSON(ctx, http.MethodPut, adminProductPath(id), nil, p, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, adminProductPath(id), nil, nil, nil)
}

func (c *Client) AdminOrders(ctx context.Context) ([]domain.Order, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/admin/orders", nil, nil, &raw); err != nil {
		return nil, err
	}
	return listOrPage[domain.Order](raw)
}

func (c *Client) AdminOrder(ctx context.Context, id int64) (domain.Order, error) {
	var out domain.Order
	err := c.doJSON(ctx, http.MethodGet, adminOrderPath(id), nil, nil, &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	var out domain.Order
	q := url.Values{"status": {string(status)}}
	err := c.doJSON(ctx, http.MethodPut, adminOrderPath(id)+"/status", q, nil, &out)
	return out, err
}

// UploadProductImage posts the file as multipart field "file" and returns the
// stored image path from the plain-text response body.
func (c *Client) UploadProductImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	const path = "/products/upload-image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path, nil), &buf)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var stored string
	err = c.send(req, path, func(r io.Reader) error {
		raw, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read upload response: %w", err)
		}
		stored = strings.Trim(strings.TrimSpace(string(raw)), `"`)
		return nil
	})
	return stored, err
}

// listOrPage accepts either a bare JSON array or a paginated envelope.
func listOrPage[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	}
	var page domain.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return page.Content, nil
}
