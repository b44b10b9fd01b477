package toggl

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"togglepace/internal/logger"
	"togglepace/internal/timeutil"
)

const (
	DefaultBaseURL = "https://api.track.toggl.com/api/v9"
	tracerName     = "togglepace/toggl"
	// basicAuthPassword is the literal password Toggl expects next to an API token.
	basicAuthPassword = "api_token"
)

// Client defines the Toggl Track read operations used by a sync.
type Client interface {
	ListTimeEntries(ctx context.Context, from, to time.Time) ([]TimeEntry, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL    string
	Token      string
	UserAgent  string
	HTTPClient httpDoer
}

type HTTPClient struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient httpDoer
}

// TimeEntry is one Toggl time entry. Duration is negative while the timer is
// still running.
type TimeEntry struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspace_id"`
	ProjectID   *int64     `json:"project_id"`
	PID         *int64     `json:"pid"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop,omitempty"`
	Duration    int64      `json:"duration"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags,omitempty"`
}

// Project returns the entry's project id. The legacy pid field wins over
// project_id when both are present.
func (e TimeEntry) Project() (int64, bool) {
	if e.PID != nil {
		return *e.PID, true
	}
	if e.ProjectID != nil {
		return *e.ProjectID, true
	}
	return 0, false
}

// Running reports whether the entry is a pending timer.
func (e TimeEntry) Running() bool {
	return e.Duration < 0
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
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
		token:      strings.TrimSpace(cfg.Token),
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

// ListTimeEntries reads the current user's entries between from and to, as
// calendar dates. Toggl treats to as exclusive.
func (c *HTTPClient) ListTimeEntries(ctx context.Context, from, to time.Time) (entries []TimeEntry, err error) {
	const endpointPath = "/me/time_entries"

	ctx, span := otel.Tracer(tracerName).Start(ctx, "toggl.request", trace.WithAttributes(
		attribute.String("http.request.method", http.MethodGet),
		attribute.String("url.path", endpointPath),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	query := url.Values{}
	query.Set("start_date", timeutil.FormatDay(from))
	query.Set("end_date", timeutil.FormatDay(to))
	requestURL := c.baseURL + endpointPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request GET %s: %w", endpointPath, err)
	}
	req.SetBasicAuth(c.token, basicAuthPassword)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request GET %s failed: %w", endpointPath, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	logger.Debug("toggl request", "path", endpointPath, "status", resp.StatusCode, "from", query.Get("start_date"), "to", query.Get("end_date"))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf(
			"request GET %s failed with status %d: %s",
			endpointPath,
			resp.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode response GET %s: %w", endpointPath, err)
	}
	return entries, nil
}

// ProjectSource fetches the entries of one project for a week window.
type ProjectSource struct {
	Client    Client
	ProjectID int64
}

// FetchEntries returns the project's entries whose local start date lies in
// window, in the order Toggl returned them.
func (s ProjectSource) FetchEntries(ctx context.Context, window timeutil.Window) ([]TimeEntry, error) {
	if s.Client == nil {
		return nil, errors.New("toggl client is required")
	}
	entries, err := s.Client.ListTimeEntries(ctx, window.Start, window.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("fetch toggl entries for %s: %w", window, err)
	}
	return FilterEntries(entries, s.ProjectID, window), nil
}

func FilterEntries(entries []TimeEntry, projectID int64, window timeutil.Window) []TimeEntry {
	out := make([]TimeEntry, 0, len(entries))
	for _, entry := range entries {
		project, ok := entry.Project()
		if !ok || project != projectID {
			continue
		}
		if !window.Contains(entry.Start) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
