// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// interactive ISC teaching server client
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katzenpost/isc/client"
	"github.com/katzenpost/isc/client/config"
	"github.com/katzenpost/isc/client/instrument"
	"github.com/katzenpost/isc/common"
)

// Config holds the command line configuration.
type Config struct {
	ConfigFile string
	Host       string
	Port       int
	LogLevel   string
	Metrics    string
}

func newRootCommand() *cobra.Command {
	var cfg Config

	cmd := &cobra.Command{
		Use:   "iscclient",
		Short: "Interactive client for the ISC teaching server",
		Long: `iscclient connects to an ISC teaching server and relays chat
between users.  Lines starting with "/" are commands; everything else is sent
as chat text.

Commands:
• /task <shift|vigenere|RSA> <encode|decode> <count>
• /task hash <verify|hash>
• /task DifHel
• /crypt <cipher> <message> <key...>
• /decrypt <cipher> <index> <key...>
• /clear
• /connect [host port], /disconnect, /quit`,
		Example: `
  # Connect to a server on the local machine
  iscclient --host 127.0.0.1 --port 8000

  # Use a configuration file
  iscclient -c /etc/isc/client.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.ConfigFile, "config", "c", "",
		"path to the client configuration file (TOML format)")
	cmd.Flags().StringVar(&cfg.Host, "host", "", "server host, overrides the configuration file")
	cmd.Flags().IntVar(&cfg.Port, "port", 0, "server port, overrides the configuration file")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", "", "log level (ERROR, WARNING, NOTICE, INFO, DEBUG)")
	cmd.Flags().StringVar(&cfg.Metrics, "metrics", "", "host:port to serve prometheus metrics on")

	return cmd
}

func main() {
	common.ExecuteWithFang(context.Background(), newRootCommand())
}

func loadConfig(cfg Config) (*config.Config, error) {
	var (
		clientCfg *config.Config
		err       error
	)
	if cfg.ConfigFile != "" {
		if clientCfg, err = config.LoadFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	} else {
		clientCfg = config.Default()
	}
	if cfg.Host != "" {
		clientCfg.Server.Host = cfg.Host
	}
	if cfg.Port != 0 {
		clientCfg.Server.Port = cfg.Port
	}
	if cfg.LogLevel != "" {
		clientCfg.Logging.Level = cfg.LogLevel
	}
	if cfg.Metrics != "" {
		clientCfg.Metrics.Address = cfg.Metrics
	}
	if err = clientCfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return clientCfg, nil
}

func run(ctx context.Context, cmd *cobra.Command, cfg Config) error {
	clientCfg, err := loadConfig(cfg)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	c, err := client.New(clientCfg, p.print)
	if err != nil {
		return fmt.Errorf("failed to create client: %v", err)
	}
	defer c.Shutdown()

	if addr := clientCfg.Metrics.Address; addr != "" {
		srv, bound, err := instrument.Serve(addr)
		if err != nil {
			return fmt.Errorf("failed to serve metrics: %v", err)
		}
		defer srv.Close()
		p.notice("Serving metrics on http://" + bound + "/metrics")
	}

	// A failed connect is reported through the printer, /connect retries.
	c.Open(ctx, clientCfg.Server.Host, clientCfg.Server.Port)

	lines := make(chan string)
	go readLines(cmd.InOrStdin(), lines)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleLine(ctx, c, clientCfg, p, line); quit {
				return nil
			}
		}
	}
}

func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

// handleLine runs the front-end commands itself and hands everything else
// to the client.  It returns true when the user asked to quit.
func handleLine(ctx context.Context, c *client.Client, cfg *config.Config, p *printer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/disconnect":
		c.Close()
	case "/connect":
		host, port := cfg.Server.Host, cfg.Server.Port
		if len(fields) == 3 {
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				p.notice("Port must be a number.")
				return false
			}
			host, port = fields[1], n
		}
		if err := c.Open(ctx, host, port); err == client.ErrAlreadyConnected {
			p.notice(err.Error())
		}
	default:
		c.SendUserText(line)
	}
	return false
}
