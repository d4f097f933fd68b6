package mqtt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jvanacker/solshade/internal/infrastructure/config"
)

func TestValidateTopic(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		wantErr bool
	}{
		{"valid cmd topic", "hobby/control/devices/cmd", false},
		{"valid nested", "hobby/notification/evt", false},
		{"empty", "", true},
		{"plus wildcard", "hobby/+/cmd", true},
		{"hash wildcard", "hobby/#", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTopic(tt.topic)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTopic(%q) error = %v, wantErr %v", tt.topic, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTopic) {
				t.Errorf("validateTopic(%q) error = %v, want ErrInvalidTopic", tt.topic, err)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.NikoConfig{
		Host:     "192.168.1.10",
		Port:     8884,
		Username: "hobby",
		Token:    "eyJhbGciOiJIUzI1NiJ9.payload.sig",
		ClientID: "solshade-test",
	}

	opts, err := buildClientOptions(cfg)
	if err != nil {
		t.Fatalf("buildClientOptions() error = %v", err)
	}

	if len(opts.Servers) != 1 {
		t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "ssl://192.168.1.10:8884" {
		t.Errorf("broker URL = %q, want ssl://192.168.1.10:8884", got)
	}
	if opts.ClientID != "solshade-test" {
		t.Errorf("client ID = %q, want solshade-test", opts.ClientID)
	}
	if opts.Username != "hobby" {
		t.Errorf("username = %q, want hobby", opts.Username)
	}
	if opts.Password != cfg.Token {
		t.Error("password should carry the JWT token")
	}
	if !opts.AutoReconnect {
		t.Error("auto-reconnect should be enabled")
	}
}

func TestBuildTLSConfigWithoutCA(t *testing.T) {
	tlsCfg, err := buildTLSConfig("")
	if err != nil {
		t.Fatalf("buildTLSConfig(\"\") error = %v", err)
	}
	if !tlsCfg.InsecureSkipVerify {
		t.Error("without a CA file verification should be skipped")
	}
}

func TestBuildTLSConfigMissingFile(t *testing.T) {
	_, err := buildTLSConfig("/nonexistent/ca.pem")
	if err == nil {
		t.Fatal("expected error for missing CA file")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("error = %v, want ErrConnectionFailed", err)
	}
}

func TestBuildTLSConfigInvalidPEM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(path, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := buildTLSConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid PEM")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("error = %v, want ErrConnectionFailed", err)
	}
}

func TestPublishNotConnected(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	err := c.Publish("hobby/control/devices/cmd", 0, false, []byte("{}"))
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeNotConnected(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	err := c.Subscribe("hobby/control/devices/evt", 0, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestCloseNilClient(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}
