package influxdb

import (
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/jvanacker/solshade/internal/infrastructure/logging"
	"github.com/jvanacker/solshade/internal/solar"
)

// captureWriteAPI records points instead of sending them to a server.
type captureWriteAPI struct {
	points []*write.Point
}

func (c *captureWriteAPI) WriteRecord(string) {}

func (c *captureWriteAPI) WritePoint(p *write.Point) { c.points = append(c.points, p) }

func (c *captureWriteAPI) Flush() {}

func (c *captureWriteAPI) Errors() <-chan error { return nil }

func (c *captureWriteAPI) SetWriteFailedCallback(api.WriteFailedCallback) {}

func newCaptureClient() (*Client, *captureWriteAPI) {
	capture := &captureWriteAPI{}
	return &Client{writeAPI: capture, logger: logging.Default()}, capture
}

func fieldValue(t *testing.T, p *write.Point, key string) interface{} {
	t.Helper()
	for _, f := range p.FieldList() {
		if f.Key == key {
			return f.Value
		}
	}
	t.Fatalf("field %q missing", key)
	return nil
}

func tagValue(t *testing.T, p *write.Point, key string) string {
	t.Helper()
	for _, tag := range p.TagList() {
		if tag.Key == key {
			return tag.Value
		}
	}
	t.Fatalf("tag %q missing", key)
	return ""
}

func TestWriteHeatSample(t *testing.T) {
	client, capture := newCaptureClient()

	at := time.Date(2026, 6, 21, 14, 0, 0, 0, time.UTC)
	client.WriteHeatSample("living-west", solar.Sample{
		At:       at,
		Sun:      solar.Position{Azimuth: 221.5, Elevation: 55.2},
		Angle:    48.5,
		BackSide: false,
		Heat:     25.0,
	})

	if len(capture.points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(capture.points))
	}
	p := capture.points[0]

	if p.Name() != "solar_heat" {
		t.Errorf("measurement = %q, want solar_heat", p.Name())
	}
	if got := tagValue(t, p, "screen"); got != "living-west" {
		t.Errorf("screen tag = %q, want living-west", got)
	}
	if got := fieldValue(t, p, "heat"); got != 25.0 {
		t.Errorf("heat = %v, want 25", got)
	}
	if got := fieldValue(t, p, "elevation"); got != 55.2 {
		t.Errorf("elevation = %v, want 55.2", got)
	}
	if got := fieldValue(t, p, "back_side"); got != false {
		t.Errorf("back_side = %v, want false", got)
	}
	if !p.Time().Equal(at) {
		t.Errorf("point time = %v, want the sample time %v", p.Time(), at)
	}
}

func TestWritePositionCommand(t *testing.T) {
	client, capture := newCaptureClient()

	fixed := time.Date(2026, 6, 21, 14, 0, 30, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	client.WritePositionCommand("living-west", 0, 25.0)

	if len(capture.points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(capture.points))
	}
	p := capture.points[0]

	if p.Name() != "screen_position" {
		t.Errorf("measurement = %q, want screen_position", p.Name())
	}
	if got := tagValue(t, p, "screen"); got != "living-west" {
		t.Errorf("screen tag = %q, want living-west", got)
	}
	if got := fieldValue(t, p, "position"); got != int64(0) {
		t.Errorf("position = %v (%T), want 0", got, got)
	}
	if got := fieldValue(t, p, "heat"); got != 25.0 {
		t.Errorf("heat = %v, want 25", got)
	}
	if !p.Time().Equal(fixed) {
		t.Errorf("point time = %v, want %v", p.Time(), fixed)
	}
}
