package influxdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/jvanacker/solshade/internal/infrastructure/config"
	"github.com/jvanacker/solshade/internal/infrastructure/logging"
)

const (
	// defaultBatchSize is the number of points buffered before a write.
	defaultBatchSize = 20

	// defaultFlushInterval is the maximum buffering delay in seconds.
	defaultFlushInterval = 10

	// healthTimeout bounds the startup health probe.
	healthTimeout = 5 * time.Second
)

// Client writes solshade telemetry to InfluxDB.
//
// Writes are asynchronous and batched; losing telemetry is acceptable,
// blocking the control loop is not. Write errors are drained to the log.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	logger   *logging.Logger
}

// New creates a connected telemetry client.
//
// Parameters:
//   - cfg: InfluxDB settings from config.yaml
//   - logger: Structured logger
//
// Returns:
//   - *Client: Ready client
//   - error: If the server health probe fails
func New(cfg config.InfluxDBConfig, logger *logging.Logger) (*Client, error) {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}

	options := influxdb2.DefaultOptions().
		SetBatchSize(uint(batchSize)).
		SetFlushInterval(uint(flushInterval * 1000))

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, options)

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb health check: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("influxdb unhealthy: %s", health.Status)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		logger:   logger,
	}

	// Drain async write errors into the log.
	go func() {
		for err := range c.writeAPI.Errors() {
			logger.Warn("influxdb write failed", "error", err)
		}
	}()

	return c, nil
}

// Close flushes buffered points and releases the client.
func (c *Client) Close() {
	c.writeAPI.Flush()
	c.client.Close()
}
