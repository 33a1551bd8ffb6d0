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
	"strconv"
	"strings"
)

// greaseTokens are the 16 reserved GREASE codes (RFC 8701). Clients insert
// them at random to keep servers honest about unknown values, so they carry
// no identity and must not survive into a fingerprint.
var greaseTokens = map[string]struct{}{
	"0a0a": {}, "1a1a": {}, "2a2a": {}, "3a3a": {},
	"4a4a": {}, "5a5a": {}, "6a6a": {}, "7a7a": {},
	"8a8a": {}, "9a9a": {}, "aaaa": {}, "baba": {},
	"caca": {}, "dada": {}, "eaea": {}, "fafa": {},
}

// Fingerprint renders a list of hex tokens in canonical decimal form: GREASE
// tokens are dropped, the survivors are converted to unsigned decimal and
// joined with hyphens, preserving relative order. An empty or absent list
// yields the empty string; tokens that are not valid hex are skipped.
func Fingerprint(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		if _, grease := greaseTokens[tok]; grease {
			continue
		}
		v, err := strconv.ParseUint(tok, 16, 32)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.FormatUint(v, 10))
	}
	return b.String()
}

// SuitesFingerprint is the canonical decimal form of the cipher-suite list.
func (h *Hello) SuitesFingerprint() string { return Fingerprint(h.CipherSuites) }

// ExtensionsFingerprint is the canonical decimal form of the extension-type
// list.
func (h *Hello) ExtensionsFingerprint() string { return Fingerprint(h.Extensions) }

// SupportedGroupsFingerprint is the canonical decimal form of the
// supported-groups list.
func (h *Hello) SupportedGroupsFingerprint() string { return Fingerprint(h.SupportedGroups) }

// ECPointFormatsFingerprint is the canonical decimal form of the EC
// point-format list.
func (h *Hello) ECPointFormatsFingerprint() string { return Fingerprint(h.ECPointFormats) }
