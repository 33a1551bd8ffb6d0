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

import "encoding/hex"

const hexDigits = "0123456789abcdef"

// appendHexByte appends the two lowercase hex digits of b to dst. Used in the
// token-building loops so each token costs one small allocation at most.
func appendHexByte(dst []byte, b byte) []byte {
	return append(dst, hexDigits[b>>4], hexDigits[b&0x0f])
}

// ToHex renders data as lowercase hex, two digits per byte, no separators.
func ToHex(data []byte) string {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = appendHexByte(out, b)
	}
	return string(out)
}

// FromHex decodes an even-length hex string produced by ToHex.
func FromHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
