package measurements

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Sentinel errors.
var (
	// ErrRequestFailed indicates a non-2xx response from the controller.
	ErrRequestFailed = errors.New("measurements: request failed")
)

// Aggregation functions accepted by the controller.
const (
	AggregationSum = "sum"
	AggregationAvg = "avg"
	AggregationMin = "min"
	AggregationMax = "max"
)

// Intervals accepted for aggregated queries.
const (
	IntervalHour  = "hour"
	IntervalDay   = "day"
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Range is an optional time window for a query. Zero fields are omitted.
type Range struct {
	Start time.Time
	End   time.Time
}

// Client queries the Niko controller's measurements REST API.
//
// The API lives at https://{host}/measurements/v1 on the controller and
// authenticates with the same JWT as the hobby broker, as a bearer
// token. Responses are controller-defined JSON documents; they are
// returned decoded but unshaped, since their layout varies per device
// type and firmware.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a measurements client.
//
// Parameters:
//   - host: Controller hostname or IP
//   - token: Hobby JWT, sent as the bearer token
//   - caCertPath: Controller CA certificate; empty skips verification
//   - timeout: Per-request timeout
//
// Returns:
//   - *Client: Ready client
//   - error: If the CA certificate cannot be loaded
func New(host, token, caCertPath string, timeout time.Duration) (*Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if caCertPath == "" {
		tlsConfig.InsecureSkipVerify = true //nolint:gosec // No CA configured; lab setups only
	} else {
		pem, err := os.ReadFile(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("reading CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates parsed from %s", caCertPath)
		}
		tlsConfig.RootCAs = pool
	}

	return &Client{
		baseURL: fmt.Sprintf("https://%s/measurements/v1", host),
		token:   token,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: tlsConfig,
			},
		},
	}, nil
}

// Latest returns the most recent measurements for a device.
func (c *Client) Latest(ctx context.Context, deviceUUID string) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("/devices/%s", deviceUUID), url.Values{"latest": {"true"}})
}

// Raw returns raw measurement values for one device property within an
// optional time window.
func (c *Client) Raw(ctx context.Context, deviceUUID, property string, window Range) (map[string]any, error) {
	return c.get(ctx,
		fmt.Sprintf("/devices/%s/properties/%s", deviceUUID, property),
		window.query(nil),
	)
}

// Aggregated returns measurement values for one device property, bucketed
// by interval and folded with the given aggregation function.
func (c *Client) Aggregated(ctx context.Context, deviceUUID, property, interval, aggregation string, window Range) (map[string]any, error) {
	if aggregation == "" {
		aggregation = AggregationSum
	}
	return c.get(ctx,
		fmt.Sprintf("/devices/%s/properties/%s/%s", deviceUUID, property, interval),
		window.query(url.Values{"Aggregation": {aggregation}}),
	)
}

// Total returns aggregated values across all properties of a device.
func (c *Client) Total(ctx context.Context, deviceUUID, aggregation string, window Range) (map[string]any, error) {
	if aggregation == "" {
		aggregation = AggregationSum
	}
	return c.get(ctx,
		fmt.Sprintf("/devices/%s/total", deviceUUID),
		window.query(url.Values{"Aggregation": {aggregation}}),
	)
}

// query folds the window into query parameters, in the controller's
// IntervalStart/IntervalEnd convention.
func (r Range) query(params url.Values) url.Values {
	if params == nil {
		params = url.Values{}
	}
	if !r.Start.IsZero() {
		params.Set("IntervalStart", r.Start.UTC().Format(time.RFC3339))
	}
	if !r.End.IsZero() {
		params.Set("IntervalEnd", r.End.UTC().Format(time.RFC3339))
	}
	return params
}

// get performs an authenticated GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	rsp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(rsp.Body, 512)) //nolint:errcheck // Body is diagnostic only
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrRequestFailed, path, rsp.StatusCode, body)
	}

	var decoded map[string]any
	if err := json.NewDecoder(rsp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return decoded, nil
}
