// Package config loads the gesture modality configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/ayusman/gesturemodality/internal/control"
	"github.com/ayusman/gesturemodality/internal/mmi"
)

// MMI transports.
const (
	TransportHTTP      = "http"
	TransportWebSocket = "ws"
)

// Config holds every setting of the gesture modality.
type Config struct {
	// DataDir holds the SQLite database. Defaults to ~/.gesturemodality.
	DataDir string `env:"GESTUREMODALITY_DATA_DIR"`
	// HTTPAddr is the status API address. Empty disables it.
	HTTPAddr string `env:"GESTUREMODALITY_HTTP_ADDR" envDefault:":8080"`
	// StaticDir is served at / by the status server when set.
	StaticDir string `env:"GESTUREMODALITY_STATIC_DIR"`

	// SensorURL is the WebSocket URL of the sensor bridge.
	SensorURL string `env:"GESTUREMODALITY_SENSOR_URL" envDefault:"ws://localhost:8090/sensor"`
	// ReplayFile plays back a recording instead of connecting to the bridge.
	ReplayFile string `env:"GESTUREMODALITY_REPLAY_FILE"`

	MMITransport string `env:"GESTUREMODALITY_MMI_TRANSPORT" envDefault:"http"`
	MMIHost      string `env:"GESTUREMODALITY_MMI_HOST" envDefault:"localhost"`
	MMIPort      int    `env:"GESTUREMODALITY_MMI_PORT" envDefault:"8000"`
	MMIUser      string `env:"GESTUREMODALITY_MMI_USER" envDefault:"User1"`
	Modality     string `env:"GESTUREMODALITY_MODALITY" envDefault:"GESTURES"`

	ControlNetwork string `env:"GESTUREMODALITY_CONTROL_NETWORK" envDefault:"unix"`
	// ControlAddress defaults to control.DefaultAddress().
	ControlAddress string `env:"GESTUREMODALITY_CONTROL_ADDRESS"`
	ControlVerbose bool   `env:"GESTUREMODALITY_CONTROL_VERBOSE"`

	OTelEndpoint string `env:"GESTUREMODALITY_OTEL_ENDPOINT"`

	Tray bool `env:"GESTUREMODALITY_TRAY"`
}

// Load parses the environment and fills in derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, ".gesturemodality")
	}
	if cfg.ControlAddress == "" {
		cfg.ControlAddress = control.DefaultAddress()
	}

	return cfg, cfg.Validate()
}

// Validate checks values env cannot check by type.
func (c Config) Validate() error {
	switch c.MMITransport {
	case TransportHTTP, TransportWebSocket:
	default:
		return fmt.Errorf("unsupported MMI transport %q", c.MMITransport)
	}
	switch c.ControlNetwork {
	case "unix", "tcp":
	default:
		return fmt.Errorf("unsupported control network %q", c.ControlNetwork)
	}
	if c.MMIPort <= 0 || c.MMIPort > 65535 {
		return fmt.Errorf("invalid MMI port %d", c.MMIPort)
	}
	if strings.TrimSpace(c.Modality) == "" {
		return errors.New("modality name is required")
	}
	return nil
}

// DBPath returns the SQLite database path.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "gesturemodality.db")
}

// MMIEndpoint returns the interaction manager endpoint.
func (c Config) MMIEndpoint() mmi.Endpoint {
	return mmi.Endpoint{
		Host:     c.MMIHost,
		Port:     c.MMIPort,
		User:     c.MMIUser,
		Modality: c.Modality,
	}
}

// ControlConfig returns the control server configuration.
func (c Config) ControlConfig() control.Config {
	return control.Config{
		Network: c.ControlNetwork,
		Address: c.ControlAddress,
		Verbose: c.ControlVerbose,
	}
}
