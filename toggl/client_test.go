package toggl

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"togglepace/internal/timeutil"
)

type fakeDoer struct {
	fn func(*http.Request) (*http.Response, error)
}

func (f fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return f.fn(req)
}

type fakeClient struct {
	entries  []TimeEntry
	err      error
	from, to time.Time
}

func (f *fakeClient) ListTimeEntries(_ context.Context, from, to time.Time) ([]TimeEntry, error) {
	f.from, f.to = from, to
	return f.entries, f.err
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestHTTPClient_ListTimeEntries(t *testing.T) {
	t.Parallel()

	doer := fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v9/me/time_entries" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "tok" || pass != "api_token" {
			t.Fatalf("unexpected basic auth %q/%q", user, pass)
		}
		if got := r.URL.Query().Get("start_date"); got != "2024-01-01" {
			t.Fatalf("unexpected start_date %q", got)
		}
		if got := r.URL.Query().Get("end_date"); got != "2024-01-08" {
			t.Fatalf("unexpected end_date %q", got)
		}
		return textResponse(http.StatusOK, `[
			{"id": 1, "workspace_id": 9, "pid": 42, "start": "2024-01-02T09:00:00+00:00", "duration": 3600, "description": "Bug 1234: fix crash"},
			{"id": 2, "workspace_id": 9, "project_id": 7, "start": "2024-01-03T09:00:00Z", "duration": -1704272400, "description": null}
		]`), nil
	}}

	client, err := NewClient(ClientConfig{Token: "tok", HTTPClient: doer})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries, err := client.ListTimeEntries(context.Background(), from, from.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("list time entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if project, ok := entries[0].Project(); !ok || project != 42 {
		t.Fatalf("unexpected project for first entry: %d %v", project, ok)
	}
	if entries[0].Duration != 3600 || entries[0].Description != "Bug 1234: fix crash" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if !entries[1].Running() || entries[1].Description != "" {
		t.Fatalf("expected running entry with empty description: %+v", entries[1])
	}
}

func TestHTTPClient_ListTimeEntriesStatusError(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientConfig{
		BaseURL: "https://toggl.example/api/v9",
		Token:   "tok",
		HTTPClient: fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
			return textResponse(http.StatusForbidden, "Incorrect username and/or password"), nil
		}},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.ListTimeEntries(context.Background(), time.Now(), time.Now())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatalf("expected missing token error")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "not a url", Token: "t"}); err == nil {
		t.Fatalf("expected invalid URL error")
	}
}

func TestProjectSource_FetchEntriesFiltersProjectAndWindow(t *testing.T) {
	t.Parallel()

	window := timeutil.WeekWindow(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC), false)
	fake := &fakeClient{entries: []TimeEntry{
		{ID: 1, PID: int64Ptr(42), Start: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Duration: 60},
		{ID: 2, PID: int64Ptr(7), Start: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), Duration: 60},
		{ID: 3, ProjectID: int64Ptr(42), Start: time.Date(2024, 1, 7, 22, 0, 0, 0, time.UTC), Duration: 60},
		{ID: 4, PID: int64Ptr(42), Start: time.Date(2024, 1, 8, 0, 30, 0, 0, time.UTC), Duration: 60},
		{ID: 5, Start: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), Duration: 60},
	}}

	source := ProjectSource{Client: fake, ProjectID: 42}
	entries, err := source.FetchEntries(context.Background(), window)
	if err != nil {
		t.Fatalf("fetch entries: %v", err)
	}

	if got := timeutil.FormatDay(fake.from); got != "2024-01-01" {
		t.Fatalf("unexpected from %s", got)
	}
	if got := timeutil.FormatDay(fake.to); got != "2024-01-08" {
		t.Fatalf("end date must be exclusive day after window end, got %s", got)
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("unexpected filtered ids %v", ids)
	}
}

func TestProjectSource_FetchEntriesWrapsError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	source := ProjectSource{Client: &fakeClient{err: boom}, ProjectID: 1}
	_, err := source.FetchEntries(context.Background(), timeutil.WeekWindow(time.Now(), false))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestTimeEntry_DecodesStop(t *testing.T) {
	t.Parallel()

	var entry TimeEntry
	payload := `{"id": 3, "start": "2024-01-02T09:00:00Z", "stop": "2024-01-02T10:00:00Z", "duration": 3600, "tags": ["x"]}`
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Stop == nil || entry.Stop.Sub(entry.Start) != time.Hour {
		t.Fatalf("unexpected stop: %+v", entry.Stop)
	}
	if _, ok := entry.Project(); ok {
		t.Fatalf("entry without project must not report one")
	}
}
