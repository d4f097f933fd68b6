package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jvanacker/solshade/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectGrace is how long each connection attempt waits for
	// the broker's CONNACK when the config does not specify one.
	defaultConnectGrace = 5 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options for the hobby broker.
//
// This configures:
//   - Broker URL (always ssl://, the hobby API is TLS-only)
//   - Client ID for identification
//   - Username/JWT-token credentials
//   - TLS with the controller's CA certificate (or unverified for labs)
//   - Auto-reconnect for transport-level drops after the initial connect
func buildClientOptions(cfg config.NikoConfig) (*pahomqtt.ClientOptions, error) {
	opts := pahomqtt.NewClientOptions()

	brokerURL := fmt.Sprintf("ssl://%s:%d", cfg.Host, cfg.Port)
	opts.AddBroker(brokerURL)

	opts.SetClientID(cfg.ClientID)

	// The hobby API authenticates with the Niko-issued username and
	// uses the JWT as the MQTT password.
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Token)

	opts.SetCleanSession(true)

	// The bounded retry budget in Connect() covers startup; after that,
	// paho's auto-reconnect handles transport-level drops.
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(defaultKeepAlive)
	opts.SetKeepAlive(defaultKeepAlive)

	tlsConfig, err := buildTLSConfig(cfg.CACert)
	if err != nil {
		return nil, err
	}
	opts.SetTLSConfig(tlsConfig)

	return opts, nil
}

// buildTLSConfig builds the TLS configuration for the controller connection.
//
// The controller serves a certificate signed by Niko's own CA, so the CA
// file must be trusted explicitly. Without a CA file, verification is
// skipped; acceptable only on isolated lab networks.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	if caCertPath == "" {
		return &tls.Config{
			MinVersion:         tlsMinVersion,
			InsecureSkipVerify: true, //nolint:gosec // No CA configured; lab setups only
		}, nil
	}

	pem, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading CA certificate: %w", ErrConnectionFailed, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: no certificates parsed from %s", ErrConnectionFailed, caCertPath)
	}

	return &tls.Config{
		MinVersion: tlsMinVersion,
		RootCAs:    pool,
	}, nil
}
