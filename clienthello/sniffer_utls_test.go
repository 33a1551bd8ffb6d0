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

package clienthello_test

import (
	"net"
	"strings"
	"testing"

	utls "github.com/refraction-networking/utls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sslhaf/caddy-sslhaf/clienthello"
)

// TestSnifferParsesChromeHello decodes a ClientHello produced by a real TLS
// stack (uTLS imitating Chrome) rather than a hand-built fixture. Chrome
// sends GREASE values in its suites, extensions, and groups, so this also
// exercises the normalizer against realistic input.
func TestSnifferParsesChromeHello(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	uconn := utls.UClient(client, &utls.Config{
		ServerName:         "fingerprint.example",
		InsecureSkipVerify: true,
	}, utls.HelloChrome_Auto)
	require.NoError(t, uconn.BuildHandshakeState())

	msg := uconn.HandshakeState.Hello.Raw
	require.NotEmpty(t, msg)
	record := append([]byte{0x16, 0x03, 0x01, byte(len(msg) >> 8), byte(len(msg))}, msg...)

	s := clienthello.NewSniffer(0)
	s.Feed(record)

	require.True(t, s.Done())
	require.NoError(t, s.Err())
	h := s.Hello()
	require.NotNil(t, h)

	assert.Equal(t, "3", h.HandshakeVersion)
	// Chrome pins the hello body version to TLS 1.2 and negotiates 1.3 via
	// the supported_versions extension.
	assert.Equal(t, "3.3", h.ProtocolVersion)
	assert.NotEmpty(t, h.CipherSuites)
	assert.NotEmpty(t, h.Extensions)
	assert.NotEmpty(t, h.SupportedGroups)
	assert.Equal(t, []string{"00"}, h.CompressionMethods)

	// GREASE must be present on the wire but absent from the fingerprints.
	suiteFP := h.SuitesFingerprint()
	assert.NotEmpty(t, suiteFP)
	assert.Less(t, len(strings.Split(suiteFP, "-")), len(h.CipherSuites),
		"expected at least one GREASE suite to be filtered")

	groupFP := h.SupportedGroupsFingerprint()
	assert.NotEmpty(t, groupFP)
	assert.Less(t, len(strings.Split(groupFP, "-")), len(h.SupportedGroups),
		"expected at least one GREASE group to be filtered")

	// The raw dump is the record exactly as reassembled.
	assert.Equal(t, clienthello.ToHex(record), h.Raw)
}
