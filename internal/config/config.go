// Package config resolves runtime configuration from the environment.
//
// Every knob has a sane default and can be overridden through environment
// variables or a .env file in the working directory, e.g.
//
//	BROADCAST_PORT=13117
//	BROADCAST_INTERVAL=0.5
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvBroadcastAddr     = "BROADCAST_ADDR"
	EnvBroadcastPort     = "BROADCAST_PORT"
	EnvBroadcastInterval = "BROADCAST_INTERVAL"
	EnvMaxTCPConnections = "MAX_TCP_CONNECTIONS"
	EnvSegmentSize       = "UDP_SEGMENT_SIZE"
	EnvIdleTimeout       = "UDP_IDLE_TIMEOUT"
	EnvTCPChunkSize      = "TCP_CHUNK_SIZE"
	EnvDSCP              = "TRANSFER_DSCP"
)

// Defaults.
const (
	DefaultBroadcastAddr     = "255.255.255.255"
	DefaultBroadcastPort     = 13118
	DefaultBroadcastInterval = time.Second
	DefaultMaxTCPConnections = 999
	DefaultSegmentSize       = 1024
	DefaultIdleTimeout       = time.Second
	DefaultTCPChunkSize      = 4096
	DefaultDSCP              = 0x0A // QoS for high throughput
)

// Config holds every resolved knob the engine needs. The protocol identity
// (magic cookie, message type codes) is deliberately not configurable — it
// lives as compile-time constants in the protocol package.
type Config struct {
	BroadcastAddr     string        // where offers are sent
	BroadcastPort     int           // well-known discovery port
	BroadcastInterval time.Duration // one Offer per tick
	MaxTCPConnections int           // cap on concurrent TCP transfers
	SegmentSize       int           // UDP payload bytes per segment
	IdleTimeout       time.Duration // UDP client receive timeout
	TCPChunkSize      int           // server-side TCP write chunk
	DSCP              int           // TOS marking for transfer sockets
}

// Load reads a .env file if one is present, then resolves the configuration
// from environment variables, falling back to defaults.
func Load() (*Config, error) {
	// A missing .env is fine; only report real read failures.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{BroadcastAddr: envStr(EnvBroadcastAddr, DefaultBroadcastAddr)}

	var err error
	if cfg.BroadcastPort, err = envInt(EnvBroadcastPort, DefaultBroadcastPort); err != nil {
		return nil, err
	}
	if cfg.BroadcastInterval, err = envSeconds(EnvBroadcastInterval, DefaultBroadcastInterval); err != nil {
		return nil, err
	}
	if cfg.MaxTCPConnections, err = envInt(EnvMaxTCPConnections, DefaultMaxTCPConnections); err != nil {
		return nil, err
	}
	if cfg.SegmentSize, err = envInt(EnvSegmentSize, DefaultSegmentSize); err != nil {
		return nil, err
	}
	if cfg.IdleTimeout, err = envSeconds(EnvIdleTimeout, DefaultIdleTimeout); err != nil {
		return nil, err
	}
	if cfg.TCPChunkSize, err = envInt(EnvTCPChunkSize, DefaultTCPChunkSize); err != nil {
		return nil, err
	}
	if cfg.DSCP, err = envInt(EnvDSCP, DefaultDSCP); err != nil {
		return nil, err
	}

	if cfg.SegmentSize <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %d", EnvSegmentSize, cfg.SegmentSize)
	}
	if cfg.TCPChunkSize <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %d", EnvTCPChunkSize, cfg.TCPChunkSize)
	}
	if cfg.BroadcastPort < 1 || cfg.BroadcastPort > 65535 {
		return nil, fmt.Errorf("%s out of range: %d", EnvBroadcastPort, cfg.BroadcastPort)
	}

	return cfg, nil
}

func envStr(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, val)
	}
	return n, nil
}

// envSeconds parses a float number of seconds (matching the .env convention
// of BROADCAST_INTERVAL=1.0) into a Duration.
func envSeconds(key string, def time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, val)
	}
	return time.Duration(f * float64(time.Second)), nil
}
