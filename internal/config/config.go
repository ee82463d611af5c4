// File: internal/config/config.go
// Package config layers the serve command configuration: defaults, then a
// TOML file, then HIOLOAD_TCP_* environment variables, with explicitly set
// command-line flags winning over both.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/momentics/hioload-tcp/internal/logging"
	"github.com/momentics/hioload-tcp/protocol"
	"github.com/momentics/hioload-tcp/server"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

// Config holds CLI configuration for hioload-tcp serve.
type Config struct {
	Port        int
	Family      string
	BindAddress string
	Backlog     int
	BufferSize  int
	PollTimeout time.Duration
	Framing     string
	MaxFrame    int
	MaxClients  int
	MaxPending  int

	LogLevel    string
	LogFormat   string
	MetricsAddr string // empty disables the HTTP endpoint
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	sc := server.DefaultConfig()
	return Config{
		Port:        sc.Port,
		Family:      sc.Family.String(),
		BindAddress: sc.BindAddress,
		Backlog:     sc.Backlog,
		BufferSize:  sc.BufferSize,
		PollTimeout: sc.PollTimeout,
		Framing:     sc.Framing.String(),
		MaxPending:  sc.MaxPending,
		LogLevel:    "info",
		LogFormat:   logging.FormatConsole,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != logging.FormatConsole && c.LogFormat != logging.FormatJSON {
		return fmt.Errorf("log format must be %q or %q", logging.FormatConsole, logging.FormatJSON)
	}
	sc, err := c.ServerConfig()
	if err != nil {
		return err
	}
	return sc.Validate()
}

// ServerConfig converts c into a server.Config.
func (c *Config) ServerConfig() (server.Config, error) {
	family, err := tcp.ParseFamily(c.Family)
	if err != nil {
		return server.Config{}, err
	}
	framing, err := protocol.ParseFraming(c.Framing)
	if err != nil {
		return server.Config{}, err
	}
	sc := server.DefaultConfig()
	sc.Port = c.Port
	sc.Family = family
	sc.BindAddress = c.BindAddress
	sc.Backlog = c.Backlog
	sc.BufferSize = c.BufferSize
	sc.PollTimeout = c.PollTimeout
	sc.Framing = framing
	sc.MaxFrame = c.MaxFrame
	sc.MaxClients = c.MaxClients
	sc.MaxPending = c.MaxPending
	return sc, nil
}

// configSetter only applies a value when its flag was not set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses an environment value. Zero is a legal value here,
// port 0 selects an ephemeral port.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}
