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

package clienthello

import "fmt"

// decodeV2 decodes a fully reassembled SSLv2 ClientHello. body is the record
// content after the 5-byte legacy header; high/low is the advertised version
// and wireSwapped records whether the wire carried it low byte first (the
// historical 0x0002 marker), which matters only for reproducing the raw dump.
//
// Only the cipher-spec region is fingerprinted; the session ID and challenge
// are irrelevant to identity.
func decodeV2(body []byte, high, low byte, wireSwapped bool) (*Hello, error) {
	h := &Hello{
		HandshakeVersion: "2",
		ProtocolVersion:  fmt.Sprintf("%d.%d", high, low),
	}

	// Reconstruct a canonical record for the raw dump. The legacy framing
	// bytes were consumed during reassembly, so they are re-encoded here:
	// marker, original length byte, message type, then the version in the
	// order it appeared on the wire.
	raw := make([]byte, 0, 5+len(body))
	raw = append(raw, 0x80, byte(len(body)+3), 0x01)
	if wireSwapped {
		raw = append(raw, low, high)
	} else {
		raw = append(raw, high, low)
	}
	raw = append(raw, body...)
	h.Raw = ToHex(raw)

	// Body layout: cipher-spec length, session ID length, challenge length
	// (u16 each), then the three regions in that order.
	r := newFieldReader(body)
	csLen, err := r.u16()
	if err != nil {
		return nil, err
	}
	if err := r.skip(4); err != nil {
		return nil, err
	}
	suites, err := r.take(csLen)
	if err != nil {
		return nil, err
	}

	// Each SSLv2 suite is 3 bytes; a trailing partial suite is silently
	// dropped, as legacy implementations did.
	count := len(suites) / 3
	h.CipherSuites = make([]string, 0, count)
	for i := 0; i < count; i++ {
		h.CipherSuites = append(h.CipherSuites, suiteTokenV2(suites[i*3], suites[i*3+1], suites[i*3+2]))
	}
	return h, nil
}

// suiteTokenV2 renders a 3-byte SSLv2 suite with leading zero bytes
// suppressed: {00,00,04} is "04", {01,00,80} is "010080".
func suiteTokenV2(b0, b1, b2 byte) string {
	tok := make([]byte, 0, 6)
	if b0 != 0 {
		tok = appendHexByte(tok, b0)
		tok = appendHexByte(tok, b1)
	} else if b1 != 0 {
		tok = appendHexByte(tok, b1)
	}
	tok = appendHexByte(tok, b2)
	return string(tok)
}
