// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package proxy implements the support for an upstream (outgoing) proxy.
package proxy

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const (
	typeNone   = "none"
	typeSocks5 = "socks5"

	netTCP = "tcp"

	maxSocks5AuthLen = 255
)

// Config is the proxy configuration.
type Config struct {
	// Type is the proxy type ("none" or "socks5").
	Type string

	// Network is the proxy address' network, only "tcp" is supported.
	Network string

	// Address is the proxy's host:port.
	Address string

	// User is the optional proxy username.
	User string

	// Password is the optional proxy password.
	Password string

	auth *proxy.Auth
}

// DialContextFn is a function that matches the Dialer.DialContext prototype.
type DialContextFn func(context.Context, string, string) (net.Conn, error)

// FixupAndValidate applies defaults to config entires and validates the
// supplied configuration.
func (cfg *Config) FixupAndValidate() error {
	cfg.Type = strings.ToLower(cfg.Type)
	switch cfg.Type {
	case "":
		cfg.Type = typeNone
	case typeNone:
	case typeSocks5:
		uLen, pLen := len(cfg.User), len(cfg.Password)
		if uLen > maxSocks5AuthLen {
			return fmt.Errorf("proxy/config: User too long")
		}
		if pLen > maxSocks5AuthLen {
			return fmt.Errorf("proxy/config: Password too long")
		}
		if uLen != 0 && pLen == 0 || uLen == 0 && pLen != 0 {
			return fmt.Errorf("proxy/config: Both User and Password must be specified")
		}
		if uLen != 0 {
			cfg.auth = &proxy.Auth{
				User:     cfg.User,
				Password: cfg.Password,
			}
		}

		cfg.Network = strings.ToLower(cfg.Network)
		if cfg.Network == "" {
			cfg.Network = netTCP
		}
		if cfg.Network != netTCP {
			return fmt.Errorf("proxy/config: Network '%v' is invalid", cfg.Network)
		}
		if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
			return fmt.Errorf("proxy/config: Address '%v' is invalid: %v", cfg.Address, err)
		}
	default:
		return fmt.Errorf("proxy/config: Type '%v' is invalid", cfg.Type)
	}
	return nil
}

// ToDialContext returns a function matching Dialer.DialContext() that dials
// through the configured proxy, or a direct dialer with the given timeout
// when no proxy is configured.
func (cfg *Config) ToDialContext(timeout time.Duration) DialContextFn {
	direct := &net.Dialer{Timeout: timeout}
	if cfg == nil {
		return direct.DialContext
	}
	switch cfg.Type {
	case typeNone, "":
		return direct.DialContext
	case typeSocks5:
		return func(ctx context.Context, network, address string) (net.Conn, error) {
			d, err := proxy.SOCKS5(cfg.Network, cfg.Address, cfg.auth, direct)
			if err != nil {
				return nil, err
			}
			if cd, ok := d.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, address)
			}
			return d.Dial(network, address)
		}
	default:
		panic("proxy: ToDialContext(): invalid type: " + cfg.Type)
	}
}
