// File: cmd/hioload-tcp/main.go
// Command hioload-tcp runs the polling TCP echo server and a matching client.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-tcp/internal/logging"
)

var exampleUsage = strings.TrimSpace(`
  hioload-tcp serve --port 9999 --framing length --metrics-addr :9100
  hioload-tcp serve --config $HOME/.hioload-tcp/config.toml
  hioload-tcp send --port 9999 --framing delimiter hello
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	log, _ := logging.New(os.Stderr, logging.FormatConsole, "info")

	root := &cobra.Command{
		Use:           "hioload-tcp",
		Short:         "Single-threaded polling TCP server with delimiter and length-prefixed framing",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newSendCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("hioload-tcp")
		os.Exit(1)
	}
}
