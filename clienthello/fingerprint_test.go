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
)

func TestFingerprintDecimalJoin(t *testing.T) {
	assert.Equal(t, "4865-4866-255", Fingerprint([]string{"1301", "1302", "00ff"}))
	assert.Equal(t, "10", Fingerprint([]string{"000a"}))
	// Suppressed tokens from the suite decoders parse the same way.
	assert.Equal(t, "4-65664-5", Fingerprint([]string{"04", "010080", "05"}))
}

func TestFingerprintDropsGrease(t *testing.T) {
	assert.Equal(t, "4865-10",
		Fingerprint([]string{"0a0a", "1301", "fafa", "000a", "baba"}))

	// All 16 reserved codes interleaved with ordinary values: only the
	// ordinary values survive, in their original relative order.
	all := []string{
		"0a0a", "001d", "1a1a", "2a2a", "3a3a", "0017", "4a4a", "5a5a",
		"6a6a", "7a7a", "8a8a", "9a9a", "aaaa", "baba", "caca", "dada",
		"eaea", "0018", "fafa",
	}
	assert.Equal(t, "29-23-24", Fingerprint(all))

	// Nothing but GREASE yields an empty fingerprint.
	assert.Equal(t, "", Fingerprint([]string{"0a0a", "fafa"}))
}

func TestFingerprintEmpty(t *testing.T) {
	assert.Equal(t, "", Fingerprint(nil))
	assert.Equal(t, "", Fingerprint([]string{}))
}

func TestFingerprintSkipsGarbageTokens(t *testing.T) {
	assert.Equal(t, "10", Fingerprint([]string{"zz", "000a", ""}))
}

func TestHelloFingerprintMethods(t *testing.T) {
	h := &Hello{
		CipherSuites:    []string{"1301", "0a0a", "c02b"},
		Extensions:      []string{"000b", "000a", "0023", "000d", "000f"},
		SupportedGroups: []string{"aaaa", "001d", "0017"},
		ECPointFormats:  []string{"00", "01", "02"},
	}
	assert.Equal(t, "4865-49195", h.SuitesFingerprint())
	assert.Equal(t, "11-10-35-13-15", h.ExtensionsFingerprint())
	assert.Equal(t, "29-23", h.SupportedGroupsFingerprint())
	assert.Equal(t, "0-1-2", h.ECPointFormatsFingerprint())
}
