// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package config implements the configuration for the ISC client.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/katzenpost/isc/client/internal/proxy"
)

const (
	defaultLogLevel            = "NOTICE"
	defaultHost                = "127.0.0.1"
	defaultPort                = 8000
	defaultDialTimeout         = 10
	defaultResponseTimeout     = 2
	defaultHashResponseTimeout = 3
	defaultInboxCapacity       = 64
)

var defaultLogging = Logging{
	Disable: false,
	File:    "",
	Level:   defaultLogLevel,
}

// Server is the teaching server to connect to.
type Server struct {
	// Host is the server host name or address.
	Host string

	// Port is the server TCP port.
	Port int

	// DialTimeout is the number of seconds a connect attempt may take.
	DialTimeout int
}

// Address returns the host:port dial string.
func (s *Server) Address() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

func (s *Server) validate() error {
	if s.Host == "" {
		s.Host = defaultHost
	}
	if s.Port == 0 {
		s.Port = defaultPort
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("config: Server: Port %d is invalid", s.Port)
	}
	if s.DialTimeout == 0 {
		s.DialTimeout = defaultDialTimeout
	}
	if s.DialTimeout < 0 {
		return fmt.Errorf("config: Server: DialTimeout %d is invalid", s.DialTimeout)
	}
	return nil
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stdout will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (lCfg *Logging) validate() error {
	lvl := strings.ToUpper(lCfg.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", lCfg.Level)
	}
	lCfg.Level = lvl // Force uppercase.
	return nil
}

// Debug is the debug configuration.
type Debug struct {
	// ResponseTimeout is the number of seconds a task waits for the server
	// to answer one round.
	ResponseTimeout int

	// HashResponseTimeout is ResponseTimeout for the hash tasks, whose
	// first round carries three frames.
	HashResponseTimeout int

	// InboxCapacity is the number of unconsumed server frames kept before
	// the oldest is dropped.
	InboxCapacity int
}

func (d *Debug) fixup() {
	if d.ResponseTimeout <= 0 {
		d.ResponseTimeout = defaultResponseTimeout
	}
	if d.HashResponseTimeout <= 0 {
		d.HashResponseTimeout = defaultHashResponseTimeout
	}
	if d.InboxCapacity <= 0 {
		d.InboxCapacity = defaultInboxCapacity
	}
}

// ResponseTimeoutDuration returns ResponseTimeout as a time.Duration.
func (d *Debug) ResponseTimeoutDuration() time.Duration {
	return time.Duration(d.ResponseTimeout) * time.Second
}

// HashResponseTimeoutDuration returns HashResponseTimeout as a time.Duration.
func (d *Debug) HashResponseTimeoutDuration() time.Duration {
	return time.Duration(d.HashResponseTimeout) * time.Second
}

// UpstreamProxy is the outgoing connection proxy configuration.
type UpstreamProxy struct {
	// Type is the proxy type (Eg: "none"," socks5").
	Type string

	// Network is the proxy address' network, only `tcp` is supported.
	Network string

	// Address is the proxy's address.
	Address string

	// User is the optional proxy username.
	User string

	// Password is the optional proxy password.
	Password string
}

func (uCfg *UpstreamProxy) toProxyConfig() (*proxy.Config, error) {
	cfg := &proxy.Config{}
	if uCfg != nil {
		cfg = &proxy.Config{
			Type:     uCfg.Type,
			Network:  uCfg.Network,
			Address:  uCfg.Address,
			User:     uCfg.User,
			Password: uCfg.Password,
		}
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Metrics is the prometheus metrics configuration.
type Metrics struct {
	// Address is the host:port the /metrics endpoint listens on.  Metrics
	// are not served when it is empty.
	Address string
}

// Config is the top level client configuration.
type Config struct {
	Server        *Server
	Logging       *Logging
	UpstreamProxy *UpstreamProxy
	Debug         *Debug
	Metrics       *Metrics

	upstreamProxy *proxy.Config
}

// UpstreamProxyConfig returns the configured upstream proxy, suitable for
// internal use.
func (c *Config) UpstreamProxyConfig() *proxy.Config {
	return c.upstreamProxy
}

// DialTimeout returns the connect timeout.
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.Server.DialTimeout) * time.Second
}

// FixupAndValidate applies defaults to config entries and validates the
// configuration sections.
func (c *Config) FixupAndValidate() error {
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Logging == nil {
		l := defaultLogging
		c.Logging = &l
	}
	if c.Debug == nil {
		c.Debug = &Debug{}
	}
	if c.Metrics == nil {
		c.Metrics = &Metrics{}
	}
	c.Debug.fixup()

	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if c.Metrics.Address != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Address); err != nil {
			return fmt.Errorf("config: Metrics: Address '%v' is invalid: %v", c.Metrics.Address, err)
		}
	}
	uCfg, err := c.UpstreamProxy.toProxyConfig()
	if err != nil {
		return err
	}
	c.upstreamProxy = uCfg
	return nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)
	if err := cfg.FixupAndValidate(); err != nil {
		panic("BUG: default config is invalid: " + err.Error())
	}
	return cfg
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses, and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	if f == "" {
		return nil, errors.New("config: config file must be specified")
	}
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return Load(b)
}
