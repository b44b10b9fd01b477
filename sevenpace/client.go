package sevenpace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"togglepace/internal/logger"
)

const tracerName = "togglepace/sevenpace"

// ErrUnexpectedStatus is wrapped by every error caused by a response status
// outside the accepted set.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// errDecodeResponse marks a response whose status was accepted but whose body
// could not be decoded.
var errDecodeResponse = errors.New("decode response")

// Client defines the 7pace Timetracker REST operations used by a sync.
type Client interface {
	ListWorklogs(ctx context.Context) ([]Worklog, error)
	DeleteWorklog(ctx context.Context, id string) error
	CurrentUser(ctx context.Context) (User, error)
	ListActivityTypes(ctx context.Context) ([]ActivityType, error)
	CreateWorklog(ctx context.Context, payload NewWorklog) (Worklog, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	APIVersion string
	Token      string
	UserAgent  string
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	apiVersion string
	token      string
	userAgent  string
	httpClient httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		return nil, errors.New("api version is required")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("api token is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPClient{
		baseURL:    baseURL,
		apiVersion: strings.TrimSpace(cfg.APIVersion),
		token:      strings.TrimSpace(cfg.Token),
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

// Worklog is an existing work log as returned by GET workLogs.
type Worklog struct {
	ID             string `json:"id"`
	Timestamp      string `json:"timestamp"`
	Length         int64  `json:"length"`
	Comment        string `json:"comment"`
	WorkItemID     *int64 `json:"workItemId"`
	ActivityTypeID string `json:"activityTypeId"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ActivityType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewWorklog is the POST workLogs body. The *Friendly fields are
// informational and ignored by the server.
type NewWorklog struct {
	Timestamp        string `json:"timeStamp"`
	Length           int64  `json:"length"`
	LengthFriendly   string `json:"lengthFriendly"`
	Comment          string `json:"comment"`
	WorkItemID       *int64 `json:"workItemId"`
	UserID           string `json:"userId"`
	ActivityTypeID   string `json:"activityTypeId"`
	ActivityFriendly string `json:"activityFriendly"`
}

type listWorklogsResponse struct {
	Data []Worklog `json:"data"`
}

type meResponse struct {
	Data struct {
		User User `json:"user"`
	} `json:"data"`
}

type activityTypesResponse struct {
	Data struct {
		ActivityTypes []ActivityType `json:"activityTypes"`
	} `json:"data"`
}

type createWorklogResponse struct {
	Data Worklog `json:"data"`
}

func (c *HTTPClient) ListWorklogs(ctx context.Context) ([]Worklog, error) {
	var out listWorklogsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/workLogs", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// DeleteWorklog succeeds on 200 or 204 only.
func (c *HTTPClient) DeleteWorklog(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("worklog id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/workLogs/"+url.PathEscape(id), nil, nil, http.StatusOK, http.StatusNoContent)
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (User, error) {
	var out meResponse
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(out.Data.User.ID) == "" {
		return User{}, errors.New("current user response has no user id")
	}
	return out.Data.User, nil
}

func (c *HTTPClient) ListActivityTypes(ctx context.Context) ([]ActivityType, error) {
	var out activityTypesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/activityTypes", nil, &out); err != nil {
		return nil, err
	}
	return out.Data.ActivityTypes, nil
}

// CreateWorklog succeeds on 200 only.
func (c *HTTPClient) CreateWorklog(ctx context.Context, payload NewWorklog) (Worklog, error) {
	var out createWorklogResponse
	err := c.doJSON(ctx, http.MethodPost, "/workLogs", payload, &out, http.StatusOK)
	if errors.Is(err, errDecodeResponse) {
		// Publishing is judged by status alone; the worklog exists.
		logger.Debug("worklog created with unreadable response", "err", err)
		return Worklog{}, nil
	}
	if err != nil {
		return Worklog{}, err
	}
	return out.Data, nil
}

// ActivityNames maps activity type ids to their display names.
func ActivityNames(types []ActivityType) map[string]string {
	out := make(map[string]string, len(types))
	for _, item := range types {
		out[item.ID] = item.Name
	}
	return out
}

// doJSON sends body as JSON and decodes the response into out. With no
// accepted statuses given, any 2xx status is a success.
func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, body any, out any, accepted ...int) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "sevenpace.request", trace.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", endpointPath),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	query := url.Values{}
	query.Set("api-version", c.apiVersion)
	requestURL := c.baseURL + endpointPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	logger.Debug("sevenpace request", "method", method, "path", endpointPath, "status", resp.StatusCode)

	if !statusAccepted(resp.StatusCode, accepted) {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"request %s %s: %w %d: %s",
			method,
			endpointPath,
			ErrUnexpectedStatus,
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w %s %s: %w", errDecodeResponse, method, endpointPath, err)
	}
	return nil
}

func statusAccepted(status int, accepted []int) bool {
	if len(accepted) == 0 {
		return status >= 200 && status < 300
	}
	return slices.Contains(accepted, status)
}
