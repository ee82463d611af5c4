package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with TOML-friendly types. Integers are pointers
// so an explicit 0 in the file is told apart from an absent key.
type FileConfig struct {
	Port        *int   `toml:"port"`
	Family      string `toml:"family"`
	BindAddress string `toml:"bind_address"`
	Backlog     *int   `toml:"backlog"`
	BufferSize  *int   `toml:"buffer_size"`
	PollTimeout string `toml:"poll_timeout"`
	Framing     string `toml:"framing"`
	MaxFrame    *int   `toml:"max_frame"`
	MaxPending  *int   `toml:"max_pending"`
	MaxClients  *int   `toml:"max_clients"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	MetricsAddr string `toml:"metrics_addr"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.hioload-tcp/config.toml, or "" without a
// home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".hioload-tcp", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies fc to cfg, skipping flags present in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("port", fc.Port, &cfg.Port)
	s.setString("family", fc.Family, &cfg.Family)
	s.setString("bind", fc.BindAddress, &cfg.BindAddress)
	s.setInt("backlog", fc.Backlog, &cfg.Backlog)
	s.setInt("buffer-size", fc.BufferSize, &cfg.BufferSize)
	s.setString("framing", fc.Framing, &cfg.Framing)
	s.setInt("max-frame", fc.MaxFrame, &cfg.MaxFrame)
	s.setInt("max-pending", fc.MaxPending, &cfg.MaxPending)
	s.setInt("max-clients", fc.MaxClients, &cfg.MaxClients)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	return s.setDuration("poll-timeout", fc.PollTimeout, &cfg.PollTimeout)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
