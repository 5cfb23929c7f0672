package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"syscall"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 5 * time.Second
)

const (
	MsgNetwork     = "Network error - Please check if server is running"
	MsgUnreachable = "Unable to connect to server. Please check if the server is running."
	MsgTimeout     = "Request timed out - Please try again"
)

// User is a record as returned by the API.
type User struct {
	ID        string    `json:"id"`
	LegacyID  string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key is the record identifier, falling back to "_id" for older servers.
func (u User) Key() string {
	if u.ID != "" {
		return u.ID
	}
	return u.LegacyID
}

// Image is a file to upload under the "image" field.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Payload is the body of a create or update. Empty strings are omitted,
// and Image wins over ImageURL when both are set.
type Payload struct {
	Name     string
	Email    string
	ImageURL string
	Image    *Image
}

// Error is returned for every failed call. Network is true when the
// server never produced a response.
type Error struct {
	StatusCode int
	Message    string
	Network    bool
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// Client talks to the user records API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	users := make([]User, 0)
	if err := c.do(ctx, http.MethodGet, "/users", nil, "", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, p Payload) (*User, error) {
	body, contentType, err := encodePayload(p)
	if err != nil {
		return nil, err
	}
	var u User
	if err := c.do(ctx, http.MethodPost, "/users", body, contentType, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, p Payload) (*User, error) {
	body, contentType, err := encodePayload(p)
	if err != nil {
		return nil, err
	}
	var u User
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), body, contentType, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes the record and returns the server's confirmation.
func (c *Client) DeleteUser(ctx context.Context, id string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, "", &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Message: err.Error(), Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return networkError(err)
	}
	if res.StatusCode >= 400 {
		return serverError(res.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{StatusCode: res.StatusCode, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	return nil
}

func serverError(status int, raw []byte) *Error {
	var body struct {
		Error string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status code %d", status)
	}
	return &Error{StatusCode: status, Message: msg}
}

func networkError(err error) *Error {
	msg := MsgNetwork
	var nerr net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		msg = MsgUnreachable
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &nerr) && nerr.Timeout():
		msg = MsgTimeout
	}
	return &Error{Message: msg, Network: true, Err: err}
}

func encodePayload(p Payload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ key, val string }{
		{"name", p.Name},
		{"email", p.Email},
	}
	if p.Image == nil {
		fields = append(fields, struct{ key, val string }{"imageUrl", p.ImageURL})
	}
	for _, f := range fields {
		if f.val == "" {
			continue
		}
		if err := w.WriteField(f.key, f.val); err != nil {
			return nil, "", err
		}
	}

	if p.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, p.Image.Filename))
		ct := p.Image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(p.Image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
