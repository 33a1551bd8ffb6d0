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

// Extension types the decoder interprets. Everything else is skipped over by
// its declared length without being read.
const (
	extSupportedGroups = 10
	extECPointFormats  = 11
)

// decodeV3 decodes a fully reassembled SSLv3+/TLS handshake record. record is
// the record payload: handshake message type, 24-bit length, then the
// ClientHello body. outerHigh/outerLow is the record-layer version, used only
// for the raw dump; the version inside the ClientHello is authoritative.
//
// A handshake record whose message is not a ClientHello returns (nil, nil):
// it is legitimate traffic, just not the message of interest.
func decodeV3(record []byte, outerHigh, outerLow byte) (*Hello, error) {
	if len(record) < 4 {
		return nil, ErrTruncated
	}
	if record[0] != 1 {
		return nil, nil
	}
	msgLen := int(record[1])<<16 | int(record[2])<<8 | int(record[3])
	if msgLen > len(record)-4 {
		return nil, ErrLengthMismatch
	}

	// Raw dump: record header rebuilt from the outer version, then the
	// handshake bytes verbatim.
	raw := make([]byte, 0, 5+len(record))
	raw = append(raw, recordHandshake, outerHigh, outerLow, byte((msgLen+4)>>8), byte(msgLen+4))
	raw = append(raw, record...)

	h := &Hello{
		HandshakeVersion: "3",
		Raw:              ToHex(raw),
	}

	// The declared message length, not the record length, is the parsing
	// budget from here on.
	r := newFieldReader(record[4 : 4+msgLen])

	ver, err := r.take(2)
	if err != nil {
		return nil, err
	}
	h.ProtocolVersion = fmt.Sprintf("%d.%d", ver[0], ver[1])

	// Client random.
	if err := r.skip(32); err != nil {
		return nil, err
	}

	// Session ID.
	idLen, err := r.u8()
	if err != nil {
		return nil, err
	}
	if err := r.skip(int(idLen)); err != nil {
		return nil, err
	}

	// Cipher suites: length is in bytes, two bytes per suite.
	csBytes, err := r.u16()
	if err != nil {
		return nil, err
	}
	count := csBytes / 2
	suites, err := r.take(count * 2)
	if err != nil {
		return nil, err
	}
	h.CipherSuites = make([]string, 0, count)
	for i := 0; i < count; i++ {
		h.CipherSuites = append(h.CipherSuites, suiteTokenV3(suites[i*2], suites[i*2+1]))
	}

	// Compression methods.
	compLen, err := r.u8()
	if err != nil {
		return nil, err
	}
	comp, err := r.take(int(compLen))
	if err != nil {
		return nil, err
	}
	h.CompressionMethods = make([]string, 0, len(comp))
	for _, m := range comp {
		h.CompressionMethods = append(h.CompressionMethods, string(appendHexByte(nil, m)))
	}

	// Extensions are optional; a message ending at the compression methods
	// is a complete ClientHello.
	if r.remaining() == 0 {
		return h, nil
	}

	extTotal, err := r.u16()
	if err != nil {
		return nil, err
	}
	extData, err := r.take(extTotal)
	if err != nil {
		return nil, err
	}

	er := newFieldReader(extData)
	for er.remaining() > 0 {
		typBytes, err := er.take(2)
		if err != nil {
			return nil, err
		}
		extType := int(typBytes[0])<<8 | int(typBytes[1])
		h.Extensions = append(h.Extensions, string(appendHexByte(appendHexByte(nil, typBytes[0]), typBytes[1])))

		extLen, err := er.u16()
		if err != nil {
			return nil, err
		}
		payload, err := er.take(extLen)
		if err != nil {
			return nil, err
		}

		switch extType {
		case extSupportedGroups:
			groups, err := decodeSupportedGroups(payload)
			if err != nil {
				return nil, err
			}
			h.SupportedGroups = groups
		case extECPointFormats:
			formats, err := decodeECPointFormats(payload)
			if err != nil {
				return nil, err
			}
			h.ECPointFormats = formats
		}
	}

	return h, nil
}

// decodeSupportedGroups parses the supported_groups extension payload: a
// 2-byte list length followed by 2-byte group codes.
func decodeSupportedGroups(payload []byte) ([]string, error) {
	r := newFieldReader(payload)
	listLen, err := r.u16()
	if err != nil {
		return nil, err
	}
	data, err := r.take(listLen)
	if err != nil {
		return nil, err
	}
	groups := make([]string, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		groups = append(groups, string(appendHexByte(appendHexByte(nil, data[i]), data[i+1])))
	}
	return groups, nil
}

// decodeECPointFormats parses the ec_point_formats extension payload: a
// 1-byte list length followed by 1-byte format codes.
func decodeECPointFormats(payload []byte) ([]string, error) {
	r := newFieldReader(payload)
	listLen, err := r.u8()
	if err != nil {
		return nil, err
	}
	data, err := r.take(int(listLen))
	if err != nil {
		return nil, err
	}
	formats := make([]string, 0, len(data))
	for _, f := range data {
		formats = append(formats, string(appendHexByte(nil, f)))
	}
	return formats, nil
}

// suiteTokenV3 renders a 2-byte suite with the leading zero byte suppressed:
// 0x0005 is "05", 0xc02b is "c02b".
func suiteTokenV3(hi, lo byte) string {
	tok := make([]byte, 0, 4)
	if hi != 0 {
		tok = appendHexByte(tok, hi)
	}
	tok = appendHexByte(tok, lo)
	return string(tok)
}
