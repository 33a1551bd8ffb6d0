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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// v2Body builds an SSLv2 ClientHello body: cipher-spec length, session-ID
// length, challenge length, then the three regions.
func v2Body(suites []byte, sessionID, challenge []byte) []byte {
	body := appendU16(nil, len(suites))
	body = appendU16(body, len(sessionID))
	body = appendU16(body, len(challenge))
	body = append(body, suites...)
	body = append(body, sessionID...)
	return append(body, challenge...)
}

// TestDecodeV2GoogleBot mirrors the handshake the Google crawler used to
// send: an SSLv2 hello advertising protocol 3.1 with a mix of SSLv2 and
// SSLv3 suite codes.
func TestDecodeV2GoogleBot(t *testing.T) {
	suites := []byte{
		0x00, 0x00, 0x04,
		0x01, 0x00, 0x80,
		0x00, 0x00, 0x05,
		0x00, 0x00, 0x0a,
	}
	body := v2Body(suites, nil, make([]byte, 16))

	h, err := decodeV2(body, 3, 1, false)
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, "2", h.HandshakeVersion)
	assert.Equal(t, "3.1", h.ProtocolVersion)
	assert.Equal(t, []string{"04", "010080", "05", "0a"}, h.CipherSuites)
	assert.Empty(t, h.CompressionMethods)
	assert.Empty(t, h.Extensions)
}

func TestDecodeV2Raw(t *testing.T) {
	body := v2Body([]byte{0x00, 0x00, 0x04}, nil, nil)
	h, err := decodeV2(body, 3, 1, false)
	require.NoError(t, err)

	// Marker, original length byte, message type, version, then the body.
	want := ToHex(append([]byte{0x80, byte(len(body) + 3), 0x01, 0x03, 0x01}, body...))
	assert.Equal(t, want, h.Raw)
}

func TestDecodeV2RawVersionSwap(t *testing.T) {
	// SSLv2 proper advertises 0x0002; the raw dump reproduces the wire
	// order even though the parsed version is 2.0.
	body := v2Body([]byte{0x01, 0x00, 0x80}, nil, nil)
	h, err := decodeV2(body, 2, 0, true)
	require.NoError(t, err)

	assert.Equal(t, "2.0", h.ProtocolVersion)
	want := ToHex(append([]byte{0x80, byte(len(body) + 3), 0x01, 0x00, 0x02}, body...))
	assert.Equal(t, want, h.Raw)
}

// TestDecodeV2FloorDivision: a cipher-spec length that is not a multiple of
// three drops the trailing partial suite instead of failing, matching legacy
// behavior.
func TestDecodeV2FloorDivision(t *testing.T) {
	suites := []byte{0x00, 0x00, 0x04, 0x01, 0x00} // 5 bytes: one suite and scrap
	body := v2Body(suites, nil, nil)

	h, err := decodeV2(body, 3, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"04"}, h.CipherSuites)
}

func TestDecodeV2Truncated(t *testing.T) {
	// Fewer than the six header bytes.
	_, err := decodeV2([]byte{0x00, 0x0c, 0x00}, 3, 1, false)
	assert.ErrorIs(t, err, ErrTruncated)

	// Declared cipher-spec length exceeds the remaining body.
	body := appendU16(nil, 64)
	body = appendU16(body, 0)
	body = appendU16(body, 0)
	body = append(body, 0x00, 0x00, 0x04)
	_, err = decodeV2(body, 3, 1, false)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeV2Idempotent(t *testing.T) {
	body := v2Body([]byte{0x00, 0x00, 0x04, 0x00, 0x00, 0x05}, nil, make([]byte, 16))
	first, err := decodeV2(body, 3, 1, false)
	require.NoError(t, err)
	second, err := decodeV2(body, 3, 1, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
