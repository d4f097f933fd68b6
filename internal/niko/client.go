package niko

import (
	"fmt"
	"sync"
	"time"

	"github.com/jvanacker/solshade/internal/infrastructure/config"
	"github.com/jvanacker/solshade/internal/infrastructure/logging"
	"github.com/jvanacker/solshade/internal/infrastructure/mqtt"
)

// Conn is the transport the gateway runs over.
//
// *mqtt.Client satisfies it; tests substitute an in-memory fake so the
// protocol layer can be exercised without a broker.
type Conn interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
	Close() error
}

// Gateway speaks the hobby API on top of a Conn.
//
// It demultiplexes incoming frames to typed callbacks, emulates
// request/response over the cmd/rsp topic pairs, and shapes the control
// payloads the controller expects.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Gateway struct {
	conn   Conn
	logger *logging.Logger

	// requestTimeout bounds each Request call unless the caller's
	// context expires first.
	requestTimeout time.Duration

	// pending holds response waiters per rsp topic, FIFO per topic.
	// The demux checks these before the callback registries so a
	// response never double-delivers as an event.
	pending   map[string][]chan *Frame
	pendingMu sync.Mutex

	// Callback registries, delivered in registration order.
	deviceCallbacks       []DeviceCallback
	locationCallbacks     []LocationCallback
	notificationCallbacks []NotificationCallback
	systemCallbacks       []SystemCallback
	errorCallbacks        []ErrorCallback
	callbackMu            sync.RWMutex

	closed   bool
	closedMu sync.Mutex
}

// NewGateway wraps an already-connected Conn and subscribes to all hobby
// event, error and response topics. Responses and events flow through
// the same demultiplexer; pending request waiters claim response frames
// before the event path sees them.
//
// Parameters:
//   - conn: Connected transport
//   - logger: Structured logger (scoped with component=niko by the caller)
//
// Returns:
//   - *Gateway: Ready gateway
//   - error: If any subscription fails
func NewGateway(conn Conn, logger *logging.Logger) (*Gateway, error) {
	g := &Gateway{
		conn:           conn,
		logger:         logger,
		requestTimeout: defaultRequestTimeout,
		pending:        make(map[string][]chan *Frame),
	}

	topics := append(eventTopics(), responseTopics()...)
	for _, topic := range topics {
		if err := conn.Subscribe(topic, qosAtLeastOnce, g.handleMessage); err != nil {
			return nil, fmt.Errorf("subscribing %s: %w", topic, err)
		}
	}

	return g, nil
}

// Connect dials the hobby broker and returns a ready gateway.
//
// This is the production entry point; it composes mqtt.Connect with
// NewGateway. The bounded retry behaviour lives in the transport.
func Connect(cfg config.NikoConfig, logger *logging.Logger) (*Gateway, error) {
	conn, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, err
	}
	conn.SetLogger(logger)

	g, err := NewGateway(conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return g, nil
}

const (
	qosAtLeastOnce = 1

	// defaultRequestTimeout bounds request/response round trips. The
	// controller normally answers within a second; discovery of a large
	// installation can take a few.
	defaultRequestTimeout = 10 * time.Second
)

// SetRequestTimeout overrides the default request deadline.
func (g *Gateway) SetRequestTimeout(d time.Duration) {
	if d > 0 {
		g.requestTimeout = d
	}
}

// IsConnected reports whether the underlying transport is connected.
func (g *Gateway) IsConnected() bool {
	return g.conn.IsConnected()
}

// Close shuts the gateway down.
//
// Outstanding requests fail with ErrClosed. The underlying transport is
// closed as well.
func (g *Gateway) Close() error {
	g.closedMu.Lock()
	if g.closed {
		g.closedMu.Unlock()
		return nil
	}
	g.closed = true
	g.closedMu.Unlock()

	g.pendingMu.Lock()
	for topic, waiters := range g.pending {
		for _, ch := range waiters {
			close(ch)
		}
		delete(g.pending, topic)
	}
	g.pendingMu.Unlock()

	return g.conn.Close()
}

// isClosed reports whether Close has been called.
func (g *Gateway) isClosed() bool {
	g.closedMu.Lock()
	defer g.closedMu.Unlock()
	return g.closed
}
