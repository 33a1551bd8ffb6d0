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
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sslhaf/caddy-sslhaf/clienthello"
)

// helloStore is the rendezvous between the listener wrapper and the HTTP
// handler. Caddy provisions the two modules independently with no shared
// context, so captured handshakes are parked here, keyed by remote address,
// for the life of the connection. Entries are removed when the connection
// closes.
type helloStore struct {
	mu    sync.RWMutex
	conns map[string]*capture
}

// capture holds one connection's decoded handshake plus a request counter,
// so the handler can mark the first request of the connection (the
// SSLHAF_LOG convention: fingerprints don't change across requests on one
// connection, so downstream logging only needs the first).
type capture struct {
	hello    *clienthello.Hello
	requests atomic.Uint64
}

var defaultStore = &helloStore{conns: make(map[string]*capture)}

func (s *helloStore) put(addr string, h *clienthello.Hello) {
	s.mu.Lock()
	s.conns[addr] = &capture{hello: h}
	s.mu.Unlock()
}

func (s *helloStore) lookup(addr string) *capture {
	s.mu.RLock()
	c := s.conns[addr]
	s.mu.RUnlock()
	return c
}

func (s *helloStore) drop(addr string) {
	s.mu.Lock()
	delete(s.conns, addr)
	s.mu.Unlock()
}

// Lookup returns the ClientHello captured for the connection with the given
// remote address, or nil if none was captured. Other plugins may use this to
// make policy decisions from the fingerprint.
func Lookup(remoteAddr string) *clienthello.Hello {
	if c := defaultStore.lookup(remoteAddr); c != nil {
		return c.hello
	}
	return nil
}

type sniffListener struct {
	net.Listener
	wrapper *ListenerWrapper
}

// Accept waits for and returns the next connection, wrapped so that its
// reads are observed by a fresh Sniffer.
func (l *sniffListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &sniffConn{
		Conn:    c,
		wrapper: l.wrapper,
		sniffer: clienthello.NewSniffer(l.wrapper.MaxRecordSize),
	}, nil
}

// sniffConn feeds every chunk the server reads to the connection's Sniffer
// until it goes inert, then becomes a plain pass-through. Parse failures
// never surface as connection errors; the bytes are always handed to the
// caller exactly as read.
type sniffConn struct {
	net.Conn
	wrapper *ListenerWrapper
	sniffer *clienthello.Sniffer
	done    bool
}

func (c *sniffConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if c.done || n == 0 {
		return n, err
	}
	// net.Conn is not read from concurrently, so the sniffer has a single
	// writer.
	c.sniffer.Feed(p[:n])
	if c.sniffer.Done() {
		c.finish()
	}
	return n, err
}

// finish records the outcome of inspection, exactly once per connection.
func (c *sniffConn) finish() {
	c.done = true
	remote := c.RemoteAddr().String()

	switch hello, err := c.sniffer.Hello(), c.sniffer.Err(); {
	case err != nil:
		sslhafMetrics.connections.WithLabelValues(outcomeLabel(err)).Inc()
		c.wrapper.logger.Debug("client hello not parsed",
			zap.String("remote", remote),
			zap.Error(err))
	case hello == nil:
		sslhafMetrics.connections.WithLabelValues("no_hello").Inc()
	default:
		c.wrapper.store.put(remote, hello)
		sslhafMetrics.connections.WithLabelValues("hello").Inc()
		c.wrapper.logger.Info("captured client hello",
			zap.String("remote", remote),
			zap.String("handshake", hello.HandshakeVersion),
			zap.String("protocol", hello.ProtocolVersion),
			zap.Int("suites", len(hello.CipherSuites)),
			zap.Int("extensions", len(hello.Extensions)))
	}
}

func (c *sniffConn) Close() error {
	if !c.done {
		// Connection went away mid-record; release the partial buffer.
		c.sniffer.Abort()
		c.done = true
	}
	c.wrapper.store.drop(c.RemoteAddr().String())
	return c.Conn.Close()
}
