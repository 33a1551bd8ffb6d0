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

// Package clienthello reassembles and decodes the first TLS/SSL record of a
// connection in order to fingerprint the client from the structure of its
// ClientHello: protocol version, cipher suites, compression methods,
// extensions, supported groups, and EC point formats. It understands both the
// legacy SSLv2 framing and SSLv3+/TLS record framing, handles input delivered
// in arbitrary chunks, and never interprets anything past the first record.
//
// The package is purely computational: no I/O, no goroutines, no shared
// state. A Sniffer belongs to exactly one connection and must not be used
// from more than one goroutine at a time.
package clienthello

import "errors"

// Failure reasons reported by the Sniffer and the decoders. All of these are
// connection-local: they end inspection of the connection that produced them
// but say nothing about the health of the process or the transport.
var (
	// ErrNotTLS means the first byte of the connection matches neither the
	// SSLv3+/TLS record framing nor the legacy SSLv2 ClientHello marker.
	ErrNotTLS = errors.New("first byte does not indicate an SSL/TLS handshake")

	// ErrInsufficientHeader means a record header was split across reads
	// before it could be examined. Headers are expected to arrive whole;
	// cross-read header buffering is deliberately not attempted.
	ErrInsufficientHeader = errors.New("record header split across reads")

	// ErrRecordTooLarge means the declared record length exceeds the
	// configured ceiling. The ceiling is a resource guard, not a protocol
	// limit.
	ErrRecordTooLarge = errors.New("record length exceeds limit")

	// ErrZeroLength means the record declares a length of zero bytes.
	ErrZeroLength = errors.New("record declares zero length")

	// ErrNotClientHello means the SSLv2 framing carried a message type
	// other than ClientHello.
	ErrNotClientHello = errors.New("SSLv2 message is not a ClientHello")

	// ErrLengthMismatch means a declared length does not fit inside its
	// enclosing structure.
	ErrLengthMismatch = errors.New("declared length exceeds enclosing structure")

	// ErrTruncated means a fixed-size read would run past the end of the
	// buffered record.
	ErrTruncated = errors.New("truncated handshake data")
)

// Hello is the decoded ClientHello. All list fields preserve wire order and
// duplicates; order is part of the fingerprint. Token fields hold lowercase
// hex with SSLv2-era leading-zero suppression applied where noted. A Hello is
// immutable once returned by the Sniffer.
type Hello struct {
	// HandshakeVersion is "2" for the legacy SSLv2 framing and "3" for
	// SSLv3+/TLS record framing.
	HandshakeVersion string

	// ProtocolVersion is the advertised protocol as "major.minor", e.g.
	// "3.1" for TLS 1.0. For SSLv3+ this is the version from inside the
	// ClientHello body, which overrides the record-layer version; some
	// clients pin the record layer to TLS 1.0 for compatibility.
	ProtocolVersion string

	// CipherSuites holds one hex token per offered suite. SSLv2 suites are
	// 3 bytes and SSLv3+ suites 2 bytes; in both cases leading zero bytes
	// are suppressed, so 0x000004 renders as "04" and 0x010080 as "010080".
	CipherSuites []string

	// CompressionMethods holds one two-digit hex token per method. Empty
	// for SSLv2, which has no compression negotiation.
	CompressionMethods []string

	// Extensions holds one four-digit hex token per extension type, in the
	// order transmitted.
	Extensions []string

	// SupportedGroups holds the group codes from the supported_groups
	// extension (type 10), four hex digits each. Nil if the extension was
	// not present.
	SupportedGroups []string

	// ECPointFormats holds the codes from the ec_point_formats extension
	// (type 11), two hex digits each. Nil if the extension was not present.
	ECPointFormats []string

	// Raw is the reconstructed record (header plus handshake body) as a hex
	// string, for audit logging and replay. It is not used for
	// fingerprinting.
	Raw string
}
