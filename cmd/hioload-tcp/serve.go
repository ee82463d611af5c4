package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/momentics/hioload-tcp/affinity"
	"github.com/momentics/hioload-tcp/control"
	"github.com/momentics/hioload-tcp/internal/config"
	"github.com/momentics/hioload-tcp/internal/logging"
	"github.com/momentics/hioload-tcp/server"
)

// snapshotEvery bounds how often the serve loop publishes debug state.
const snapshotEvery = time.Second

func newServeCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	var (
		cfgPath string
		cpu     int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the echo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultConfigPath()
			}
			if cfgFile != "" && !config.FileExists(cfgFile) {
				cfgFile = ""
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if err := loadConfig(&cfg, cfgFile, changed); err != nil {
				return err
			}

			log, err := logging.New(os.Stderr, cfg.LogFormat, "trace")
			if err != nil {
				return err
			}
			if err := logging.SetGlobalLevel(cfg.LogLevel); err != nil {
				return err
			}
			log.Info().Interface("config", cfg).Str("config_file", cfgFile).Msg("configuration")

			if cpu >= 0 {
				unpin, err := affinity.Pin(cpu)
				if err != nil {
					return err
				}
				defer unpin()
				log.Info().Int("cpu", cpu).Msg("serve loop pinned")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, cfgFile, changed, log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.hioload-tcp/config.toml)")
	f.IntVar(&cfg.Port, "port", cfg.Port, "listen port (0..65534, 0 picks an ephemeral port)")
	f.StringVar(&cfg.Family, "family", cfg.Family, "address family: ipv4 or ipv6")
	f.StringVar(&cfg.BindAddress, "bind", cfg.BindAddress, `bind address, "any" or an IP literal`)
	f.IntVar(&cfg.Backlog, "backlog", cfg.Backlog, "listen backlog")
	f.IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "per-connection receive buffer in bytes")
	f.DurationVar(&cfg.PollTimeout, "poll-timeout", cfg.PollTimeout, "bounded wait of each readiness poll")
	f.StringVar(&cfg.Framing, "framing", cfg.Framing, "message framing: length or delimiter")
	f.IntVar(&cfg.MaxFrame, "max-frame", cfg.MaxFrame, "largest length-prefixed payload (0 = what fits in the buffer)")
	f.IntVar(&cfg.MaxPending, "max-pending", cfg.MaxPending, "outbound bytes queued per client before it is dropped")
	f.IntVar(&cfg.MaxClients, "max-clients", cfg.MaxClients, "client limit (0 = unlimited)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	f.IntVar(&cpu, "cpu", -1, "pin the serve loop to this logical CPU (-1 = no pinning)")
	f.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics and /debug/state on this address")
	return cmd
}

// loadConfig layers file and environment values over cfg and validates it.
func loadConfig(cfg *config.Config, cfgFile string, changed map[string]bool) error {
	if cfgFile != "" {
		fc, err := config.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := config.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

func serve(ctx context.Context, cfg config.Config, cfgFile string, changed map[string]bool, log zerolog.Logger) error {
	sc, err := cfg.ServerConfig()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := control.NewMetrics(reg)

	snap := control.NewSnapshot()
	var last time.Time
	publish := func(s *server.Server) {
		if now := time.Now(); now.Sub(last) >= snapshotEvery {
			last = now
			snap.Set(map[string]any{
				"state":        s.State().String(),
				"port":         s.Port(),
				"clients":      s.ClientCount(),
				"poll_timeout": s.PollTimeout().String(),
			})
		}
	}

	srv := server.New(sc,
		server.WithLogger(log),
		server.WithMetrics(metrics),
		server.WithTickHook(publish),
	)
	if err := srv.Init(); err != nil {
		return err
	}
	defer srv.Close()
	publish(srv)

	if cfg.MetricsAddr != "" {
		probes := control.NewDebugProbes()
		control.RegisterPlatformProbes(probes)
		probes.RegisterProbe("server", func() any { return snap.Get() })

		hs := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           control.NewHandler(reg, probes),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics endpoint failed")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = hs.Shutdown(sctx)
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint listening")
	}

	if cfgFile != "" {
		go func() {
			err := control.WatchFile(ctx, cfgFile, control.DefaultDebounce, func() {
				reload(cfg, cfgFile, changed, srv, log)
			})
			if err != nil {
				log.Warn().Err(err).Msg("config watcher stopped")
			}
		}()
	}

	if err := srv.Serve(ctx, server.Echo()); err != nil {
		return err
	}
	log.Info().Msg("received signal, stopping")
	return nil
}

// reload re-reads cfgFile and applies the settings that can change while
// serving: log level and poll timeout. Other changes need a restart.
func reload(base config.Config, cfgFile string, changed map[string]bool, srv *server.Server, log zerolog.Logger) {
	next := base
	if err := loadConfig(&next, cfgFile, changed); err != nil {
		log.Warn().Err(err).Msg("config reload rejected")
		return
	}
	if err := logging.SetGlobalLevel(next.LogLevel); err != nil {
		log.Warn().Err(err).Msg("config reload rejected")
		return
	}
	if err := srv.SetPollTimeout(next.PollTimeout); err != nil && next.PollTimeout > 0 {
		log.Warn().Err(err).Msg("poll timeout not applied")
	}
	log.Info().
		Str("log_level", next.LogLevel).
		Dur("poll_timeout", srv.PollTimeout()).
		Msg("configuration reloaded")
}
