package measurements

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient points a Client at an httptest TLS server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	c, err := New("ignored", "test-token", "", 5*time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.baseURL = server.URL + "/measurements/v1"
	c.http = server.Client()
	return c
}

func TestLatest(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"Properties": [{"ElectricalPower": "123"}]}`)) //nolint:errcheck
	})

	result, err := c.Latest(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}

	if gotPath != "/measurements/v1/devices/abc-123" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "latest=true" {
		t.Errorf("query = %q, want latest=true", gotQuery)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", gotAuth)
	}
	if _, ok := result["Properties"]; !ok {
		t.Errorf("result = %v, missing Properties", result)
	}
}

func TestAggregated(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`)) //nolint:errcheck
	})

	window := Range{
		Start: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	_, err := c.Aggregated(context.Background(), "abc", "ElectricalPower", IntervalDay, AggregationAvg, window)
	if err != nil {
		t.Fatalf("Aggregated() error = %v", err)
	}

	if want := "/measurements/v1/devices/abc/properties/ElectricalPower/day"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if got := gotQuery["Aggregation"]; len(got) != 1 || got[0] != "avg" {
		t.Errorf("Aggregation = %v, want avg", got)
	}
	if got := gotQuery["IntervalStart"]; len(got) != 1 || !strings.HasPrefix(got[0], "2026-06-01") {
		t.Errorf("IntervalStart = %v", got)
	}
}

func TestTotalDefaultsAggregation(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`)) //nolint:errcheck
	})

	if _, err := c.Total(context.Background(), "abc", "", Range{}); err != nil {
		t.Fatalf("Total() error = %v", err)
	}
	if got := gotQuery["Aggregation"]; len(got) != 1 || got[0] != "sum" {
		t.Errorf("Aggregation = %v, want default sum", got)
	}
	if _, ok := gotQuery["IntervalStart"]; ok {
		t.Error("empty window must not send IntervalStart")
	}
}

func TestRequestFailed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := c.Latest(context.Background(), "abc")
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("error = %v, want ErrRequestFailed", err)
	}
}

func TestNewWithMissingCA(t *testing.T) {
	if _, err := New("host", "token", "/nonexistent/ca.pem", time.Second); err == nil {
		t.Error("expected error for missing CA file")
	}
}
