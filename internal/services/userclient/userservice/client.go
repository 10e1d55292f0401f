package userservice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	apperrors "github.com/louisbranch/userclient/internal/platform/errors"
	"github.com/louisbranch/userclient/internal/platform/timeouts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/louisbranch/userclient/internal/services/userclient/userservice"

	usersPath = "/users"
	pingPath  = "/users/ping"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// Config defines the inputs for a user service client.
type Config struct {
	// BaseURL is the user service origin, e.g. http://users:5000.
	BaseURL string
	// Timeout caps each request. Zero uses timeouts.UserServiceRequest.
	Timeout time.Duration
	// HTTPClient overrides the transport; nil uses a client with Timeout.
	HTTPClient *http.Client
}

// Client calls the user service list, create, and ping endpoints.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("user service base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse user service base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("user service base url %q must be http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("user service base url %q has no host", raw)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = timeouts.UserServiceRequest
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		tracer:     otel.Tracer(tracerName),
	}, nil
}

// BaseURL returns the normalized user service origin.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// ListUsers fetches the full user collection in server order.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, "userservice.ListUsers", http.MethodGet, usersPath, nil, func(body []byte) error {
		var payload listUsersResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return apperrors.Wrap(apperrors.CodeShapeMismatch, "decode user list", err)
		}
		if payload.Data == nil {
			return apperrors.New(apperrors.CodeShapeMismatch, "user list response has no data")
		}
		if payload.Data.Users == nil {
			return apperrors.New(apperrors.CodeShapeMismatch, "user list response has no data.users")
		}
		users = *payload.Data.Users
		return nil
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// CreateUser posts a new user. The success body is ignored.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode create user request: %w", err)
	}
	return c.do(ctx, "userservice.CreateUser", http.MethodPost, usersPath, payload, nil)
}

// Ping checks that the user service answers its ping route.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "userservice.Ping", http.MethodGet, pingPath, nil, nil)
}

// do performs one traced request. Transport failures and non-2xx statuses
// become NETWORK_FAILURE; decode reports SHAPE_MISMATCH itself.
func (c *Client) do(ctx context.Context, spanName, method, path string, body []byte, decode func([]byte) error) (err error) {
	if c == nil {
		return apperrors.New(apperrors.CodeUnavailable, "user service client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.endpoint(path)

	ctx, span := c.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", endpoint),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("error.type", string(apperrors.CodeOf(err))))
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNetworkFailure, method+" "+path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNetworkFailure, method+" "+path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNetworkFailure, "read "+method+" "+path+" response", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(method, path, resp.StatusCode, respBody)
	}
	if decode == nil {
		return nil
	}
	return decode(respBody)
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	return u.String()
}

// statusError builds a NETWORK_FAILURE carrying the status code and the
// service's own message when the body has one.
func statusError(method, path string, statusCode int, body []byte) error {
	metadata := map[string]string{
		apperrors.MetaStatus: strconv.Itoa(statusCode),
	}
	var reply statusResponse
	if err := json.Unmarshal(body, &reply); err == nil {
		if message := strings.TrimSpace(reply.Message); message != "" {
			metadata[apperrors.MetaMessage] = message
		}
	}
	return apperrors.WrapWithMetadata(
		apperrors.CodeNetworkFailure,
		fmt.Sprintf("%s %s returned %d", method, path, statusCode),
		metadata,
		nil,
	)
}
