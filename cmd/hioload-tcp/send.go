package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-tcp/client"
	"github.com/momentics/hioload-tcp/internal/logging"
	"github.com/momentics/hioload-tcp/protocol"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

func newSendCmd() *cobra.Command {
	var (
		host     string
		port     int
		family   string
		framing  string
		timeout  time.Duration
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "send [flags] message...",
		Short: "Send one framed message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(os.Stderr, logging.FormatConsole, logLevel)
			if err != nil {
				return err
			}
			fam, err := tcp.ParseFamily(family)
			if err != nil {
				return err
			}
			fr, err := protocol.ParseFraming(framing)
			if err != nil {
				return err
			}

			cfg := client.DefaultConfig()
			cfg.Family = fam
			cfg.DialTimeout = timeout
			c := client.New(cfg, client.WithLogger(log))

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := c.Connect(ctx, host, port); err != nil {
				return err
			}
			defer c.Close()

			payload := []byte(strings.Join(args, " "))
			if fr == protocol.FramingDelimiter {
				err = c.Send(payload)
			} else {
				err = c.SendLengthPrefixed(payload)
			}
			if err != nil {
				return err
			}

			if err := c.SetDeadline(time.Now().Add(timeout)); err != nil {
				return err
			}
			reply, err := c.Receive()
			if err != nil {
				return err
			}
			msgs, _, _ := fr.Decode(reply, 0)
			if len(msgs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%q\n", reply)
				return nil
			}
			for _, m := range msgs {
				fmt.Fprintln(cmd.OutOrStdout(), string(m.Payload))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&host, "host", "127.0.0.1", "server host")
	f.IntVar(&port, "port", 9999, "server port")
	f.StringVar(&family, "family", "ipv4", "address family: ipv4 or ipv6")
	f.StringVar(&framing, "framing", "length", "message framing: length or delimiter")
	f.DurationVar(&timeout, "timeout", 5*time.Second, "connect and reply timeout")
	f.StringVar(&logLevel, "log-level", "warn", "log level")
	return cmd
}
