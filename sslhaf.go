// Copyright 2025 The caddy-sslhaf Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sslhaf passively fingerprints TLS clients from the bytes of their
// ClientHello, in the spirit of Apache's mod_sslhaf. A listener wrapper
// watches the read path of each connection without terminating or altering
// the TLS session, and an HTTP handler publishes the extracted fields as
// request variables, so clients can be told apart by how their TLS stack is
// built rather than by what their User-Agent claims.
package sslhaf

import (
	"net"
	"strconv"

	"github.com/caddyserver/caddy/v2"
	"github.com/caddyserver/caddy/v2/caddyconfig/caddyfile"
	"go.uber.org/zap"

	"github.com/sslhaf/caddy-sslhaf/clienthello"
)

func init() {
	caddy.RegisterModule(ListenerWrapper{})
}

// ListenerWrapper inspects the first bytes of each accepted connection for a
// TLS or SSLv2 ClientHello and records the client's handshake fingerprint.
// It reads nothing from the network itself: it only observes bytes the
// server was reading anyway, so non-TLS and malformed-TLS connections pass
// through untouched.
//
// It must be placed BEFORE the "tls" listener wrapper so it sees the
// handshake in the clear.
type ListenerWrapper struct {
	// MaxRecordSize bounds how large a ClientHello record will be buffered
	// per connection. Records declaring more than this are not inspected
	// (and not allocated for). Default: 16384, which is also the ceiling.
	MaxRecordSize int `json:"max_record_size,omitempty"`

	logger *zap.Logger
	store  *helloStore
}

// CaddyModule returns the Caddy module information.
func (ListenerWrapper) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID:  "caddy.listeners.sslhaf",
		New: func() caddy.Module { return new(ListenerWrapper) },
	}
}

// Provision sets up the listener wrapper.
func (lw *ListenerWrapper) Provision(ctx caddy.Context) error {
	lw.logger = ctx.Logger()
	lw.store = defaultStore
	if lw.MaxRecordSize <= 0 || lw.MaxRecordSize > clienthello.MaxRecordLength {
		lw.MaxRecordSize = clienthello.MaxRecordLength
	}
	sslhafMetrics.init.Do(initMetrics)
	return nil
}

// WrapListener wraps l so that accepted connections are fingerprinted.
func (lw *ListenerWrapper) WrapListener(l net.Listener) net.Listener {
	return &sniffListener{Listener: l, wrapper: lw}
}

// UnmarshalCaddyfile sets up the listener wrapper from Caddyfile tokens.
// Syntax:
//
//	sslhaf {
//		max_record_size <bytes>
//	}
func (lw *ListenerWrapper) UnmarshalCaddyfile(d *caddyfile.Dispenser) error {
	d.Next() // consume wrapper name

	// No same-line options are supported
	if d.NextArg() {
		return d.ArgErr()
	}

	for d.NextBlock(0) {
		switch d.Val() {
		case "max_record_size":
			if !d.NextArg() {
				return d.ArgErr()
			}
			n, err := strconv.Atoi(d.Val())
			if err != nil {
				return d.Errf("parsing sslhaf max_record_size: %v", err)
			}
			lw.MaxRecordSize = n
		default:
			return d.ArgErr()
		}
	}
	return nil
}

// Interface guards
var (
	_ caddy.Provisioner     = (*ListenerWrapper)(nil)
	_ caddy.Module          = (*ListenerWrapper)(nil)
	_ caddy.ListenerWrapper = (*ListenerWrapper)(nil)
	_ caddyfile.Unmarshaler = (*ListenerWrapper)(nil)
)
