// Package httpgw is the REST implementation of the Remote Gateway.
package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"metrodoc/internal/gateway"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
)

const defaultTimeout = 30 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the traced default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// Client talks to the MetroDoc REST API.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ gateway.Gateway = (*Client)(nil)

// New returns a client for the API rooted at baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count,omitempty"`
}

type errorEnvelope struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

type request struct {
	op          string
	method      string
	path        string // escaped, ids go through url.PathEscape
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	u := *c.base
	u.RawPath = c.base.EscapedPath() + r.path
	p, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", r.op, err)
	}
	u.Path = p
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", r.op, err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token, ok := gateway.TokenFrom(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send performs the request and converts transport failures and error statuses into errors.
// On success the caller owns the response body.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", r.op, ctxErr)
		}
		return nil, &model.RemoteError{Op: r.op, Message: "Unable to reach the server: " + err.Error()}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, decodeError(r.op, resp)
	}
	return resp, nil
}

func decodeError(op string, resp *http.Response) error {
	re := &model.RemoteError{Op: op, Status: resp.StatusCode}
	var env errorEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err == nil {
		re.Code = env.Error.Code
		re.Message = env.Error.Message
		if re.Message == "" {
			re.Message = env.Message
		}
	}
	return re
}

// call sends r and decodes the data member of the success envelope into out.
func (c *Client) call(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &model.RemoteError{Op: r.op, Status: resp.StatusCode, Message: "Malformed server response"}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &model.RemoteError{Op: r.op, Status: resp.StatusCode, Message: "Malformed server response"}
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return model.AuthResult{}, err
	}
	var res model.AuthResult
	err = c.call(ctx, request{op: "Login", method: http.MethodPost, path: "/auth/login", body: body, contentType: "application/json"}, &res)
	return res, err
}

func (c *Client) Register(ctx context.Context, reg model.Registration) (model.AuthResult, error) {
	body, err := jsonBody(reg)
	if err != nil {
		return model.AuthResult{}, err
	}
	var res model.AuthResult
	err = c.call(ctx, request{op: "Register", method: http.MethodPost, path: "/auth/register", body: body, contentType: "application/json"}, &res)
	return res, err
}

func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.call(ctx, request{op: "CurrentUser", method: http.MethodGet, path: "/auth/me"}, &u)
	return u, err
}

func (c *Client) FetchAllDocuments(ctx context.Context) ([]model.Document, error) {
	docs := []model.Document{}
	err := c.call(ctx, request{op: "FetchAllDocuments", method: http.MethodGet, path: "/documents"}, &docs)
	return docs, err
}

func (c *Client) SearchDocuments(ctx context.Context, req query.Request) ([]model.Document, error) {
	q := url.Values{}
	q.Set("q", req.Text)
	if req.Department != "" {
		q.Set("department", req.Department)
	}
	if req.Sort != "" {
		q.Set("sort", string(req.Sort))
	}
	docs := []model.Document{}
	err := c.call(ctx, request{op: "SearchDocuments", method: http.MethodGet, path: "/documents/search", query: q}, &docs)
	return docs, err
}

func (c *Client) FetchDocumentByID(ctx context.Context, id string) (model.Document, error) {
	var d model.Document
	err := c.call(ctx, request{op: "FetchDocumentByID", method: http.MethodGet, path: "/documents/" + url.PathEscape(id)}, &d)
	return d, err
}

func (c *Client) CreateDocument(ctx context.Context, r io.Reader, fileName string, meta model.Metadata) (model.Document, error) {
	if r == nil {
		return model.Document{}, fmt.Errorf("create document: %w: file is required", model.ErrInvalid)
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	tags, err := json.Marshal(meta.Tags)
	if err != nil {
		return model.Document{}, err
	}
	fields := map[string]string{
		"title":       meta.Title,
		"description": meta.Description,
		"department":  meta.Department,
		"priority":    string(meta.Priority),
		"tags":        string(tags),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return model.Document{}, err
		}
	}
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return model.Document{}, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return model.Document{}, fmt.Errorf("create document: read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return model.Document{}, err
	}

	var d model.Document
	err = c.call(ctx, request{
		op:          "CreateDocument",
		method:      http.MethodPost,
		path:        "/documents/upload",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &d)
	return d, err
}

func (c *Client) UpdateDocument(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error) {
	body, err := jsonBody(patch)
	if err != nil {
		return model.Document{}, err
	}
	var d model.Document
	err = c.call(ctx, request{
		op:          "UpdateDocument",
		method:      http.MethodPut,
		path:        "/documents/" + url.PathEscape(id),
		body:        body,
		contentType: "application/json",
	}, &d)
	return d, err
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.call(ctx, request{op: "DeleteDocument", method: http.MethodDelete, path: "/documents/" + url.PathEscape(id)}, nil)
}

func (c *Client) FetchDocumentSummary(ctx context.Context, id string) (model.Summary, error) {
	var s model.Summary
	err := c.call(ctx, request{op: "FetchDocumentSummary", method: http.MethodGet, path: "/documents/" + url.PathEscape(id) + "/summary"}, &s)
	return s, err
}

func (c *Client) DownloadDocument(ctx context.Context, id string, w io.Writer) (int64, error) {
	if w == nil {
		return 0, errors.New("download document: nil writer")
	}
	resp, err := c.send(ctx, request{op: "DownloadDocument", method: http.MethodGet, path: "/documents/" + url.PathEscape(id) + "/download"})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download document: %w", err)
	}
	return n, nil
}

func (c *Client) notifications(ctx context.Context, op, path string) ([]model.Notification, error) {
	items := []model.Notification{}
	err := c.call(ctx, request{op: op, method: http.MethodGet, path: path}, &items)
	return items, err
}

func (c *Client) FetchAllNotifications(ctx context.Context) ([]model.Notification, error) {
	return c.notifications(ctx, "FetchAllNotifications", "/notifications")
}

func (c *Client) FetchCurrentNotifications(ctx context.Context) ([]model.Notification, error) {
	return c.notifications(ctx, "FetchCurrentNotifications", "/notifications/current")
}

func (c *Client) FetchPastNotifications(ctx context.Context) ([]model.Notification, error) {
	return c.notifications(ctx, "FetchPastNotifications", "/notifications/past")
}

func (c *Client) FetchUnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.call(ctx, request{op: "FetchUnreadCount", method: http.MethodGet, path: "/notifications/unread-count"}, &out)
	return out.Count, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	var n model.Notification
	err := c.call(ctx, request{op: "MarkNotificationRead", method: http.MethodPatch, path: "/notifications/" + url.PathEscape(id) + "/read"}, &n)
	return n, err
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.call(ctx, request{op: "MarkAllNotificationsRead", method: http.MethodPatch, path: "/notifications/read-all"}, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.call(ctx, request{op: "DeleteNotification", method: http.MethodDelete, path: "/notifications/" + url.PathEscape(id)}, nil)
}
