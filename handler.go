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

package sslhaf

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/caddyserver/caddy/v2"
	"github.com/caddyserver/caddy/v2/caddyconfig/caddyfile"
	"github.com/caddyserver/caddy/v2/caddyconfig/httpcaddyfile"
	"github.com/caddyserver/caddy/v2/modules/caddyhttp"
)

func init() {
	caddy.RegisterModule(Handler{})
	httpcaddyfile.RegisterHandlerDirective("sslhaf", parseCaddyfileHandler)
}

// Handler publishes the handshake captured for the request's connection as
// request variables, usable in log formats and placeholders as
// {http.vars.*}. The keys mirror mod_sslhaf's SSLHAF_* environment
// variables:
//
//	sslhaf.handshake        handshake version, "2" or "3"
//	sslhaf.protocol         advertised protocol, e.g. "3.1" for TLS 1.0
//	sslhaf.suites           GREASE-filtered decimal suite fingerprint
//	sslhaf.suites_raw       comma-joined hex suite tokens as transmitted
//	sslhaf.compression      comma-joined hex compression methods
//	sslhaf.extensions_len   number of extensions seen
//	sslhaf.extensions       GREASE-filtered decimal extension fingerprint
//	sslhaf.curves           GREASE-filtered decimal supported-groups fingerprint
//	sslhaf.ec_point_formats GREASE-filtered decimal point-format fingerprint
//	sslhaf.raw              reconstructed record as hex, for audit logs
//	sslhaf.first_request    "1" on the first request of a connection only
//
// If no handshake was captured (plain HTTP, malformed TLS), no variables are
// set; that is a normal outcome, not an error.
type Handler struct{}

// CaddyModule returns the Caddy module information.
func (Handler) CaddyModule() caddy.ModuleInfo {
	return caddy.ModuleInfo{
		ID:  "http.handlers.sslhaf",
		New: func() caddy.Module { return new(Handler) },
	}
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request, next caddyhttp.Handler) error {
	cap := defaultStore.lookup(r.RemoteAddr)
	if cap == nil {
		return next.ServeHTTP(w, r)
	}

	ctx := r.Context()
	hello := cap.hello
	caddyhttp.SetVar(ctx, "sslhaf.handshake", hello.HandshakeVersion)
	caddyhttp.SetVar(ctx, "sslhaf.protocol", hello.ProtocolVersion)
	caddyhttp.SetVar(ctx, "sslhaf.suites", hello.SuitesFingerprint())
	caddyhttp.SetVar(ctx, "sslhaf.suites_raw", strings.Join(hello.CipherSuites, ","))
	caddyhttp.SetVar(ctx, "sslhaf.compression", strings.Join(hello.CompressionMethods, ","))
	caddyhttp.SetVar(ctx, "sslhaf.extensions_len", strconv.Itoa(len(hello.Extensions)))
	caddyhttp.SetVar(ctx, "sslhaf.extensions", hello.ExtensionsFingerprint())
	caddyhttp.SetVar(ctx, "sslhaf.curves", hello.SupportedGroupsFingerprint())
	caddyhttp.SetVar(ctx, "sslhaf.ec_point_formats", hello.ECPointFormatsFingerprint())
	caddyhttp.SetVar(ctx, "sslhaf.raw", hello.Raw)

	// Fingerprints don't change across requests on one connection; marking
	// the first request lets log configs record each client once.
	if cap.requests.Add(1) == 1 {
		caddyhttp.SetVar(ctx, "sslhaf.first_request", "1")
	}

	return next.ServeHTTP(w, r)
}

// UnmarshalCaddyfile sets up the handler from Caddyfile tokens. Syntax:
//
//	sslhaf
//
// The handler takes no options.
func (h *Handler) UnmarshalCaddyfile(d *caddyfile.Dispenser) error {
	d.Next() // consume directive name
	if d.NextArg() {
		return d.ArgErr()
	}
	return nil
}

func parseCaddyfileHandler(helper httpcaddyfile.Helper) (caddyhttp.MiddlewareHandler, error) {
	var h Handler
	if err := h.UnmarshalCaddyfile(helper.Dispenser); err != nil {
		return nil, err
	}
	return h, nil
}

// Interface guards
var (
	_ caddy.Module                = (*Handler)(nil)
	_ caddyhttp.MiddlewareHandler = (*Handler)(nil)
	_ caddyfile.Unmarshaler       = (*Handler)(nil)
)
