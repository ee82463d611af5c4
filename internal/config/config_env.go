package config

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "HIOLOAD_TCP_"

// ApplyEnvConfig applies configuration from HIOLOAD_TCP_* environment
// variables, skipping flags present in changed.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("family", os.Getenv(EnvPrefix+"FAMILY"), &cfg.Family)
	s.setString("bind", os.Getenv(EnvPrefix+"BIND_ADDRESS"), &cfg.BindAddress)
	s.setString("framing", os.Getenv(EnvPrefix+"FRAMING"), &cfg.Framing)
	s.setString("log-level", os.Getenv(EnvPrefix+"LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv(EnvPrefix+"LOG_FORMAT"), &cfg.LogFormat)
	s.setString("metrics-addr", os.Getenv(EnvPrefix+"METRICS_ADDR"), &cfg.MetricsAddr)

	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"port", "PORT", &cfg.Port},
		{"backlog", "BACKLOG", &cfg.Backlog},
		{"buffer-size", "BUFFER_SIZE", &cfg.BufferSize},
		{"max-frame", "MAX_FRAME", &cfg.MaxFrame},
		{"max-pending", "MAX_PENDING", &cfg.MaxPending},
		{"max-clients", "MAX_CLIENTS", &cfg.MaxClients},
	}
	for _, v := range ints {
		if err := s.setIntFromString(v.flag, os.Getenv(EnvPrefix+v.env), v.dst); err != nil {
			return err
		}
	}

	return s.setDuration("poll-timeout", os.Getenv(EnvPrefix+"POLL_TIMEOUT"), &cfg.PollTimeout)
}
