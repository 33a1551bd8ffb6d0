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

// fieldReader is a bounds-checked cursor over a fixed buffer. Every read
// either returns exactly what was asked for or fails with ErrTruncated, so
// the decoders never index the record buffer directly. This is the single
// choke point that keeps hostile length fields from walking off the end of
// the buffer.
type fieldReader struct {
	buf []byte
	off int
}

func newFieldReader(buf []byte) *fieldReader {
	return &fieldReader{buf: buf}
}

// remaining reports how many unread bytes are left.
func (r *fieldReader) remaining() int {
	return len(r.buf) - r.off
}

func (r *fieldReader) u8() (byte, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncated
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// u16 reads a big-endian 16-bit value.
func (r *fieldReader) u16() (int, error) {
	if r.remaining() < 2 {
		return 0, ErrTruncated
	}
	v := int(r.buf[r.off])<<8 | int(r.buf[r.off+1])
	r.off += 2
	return v, nil
}

// u24 reads a big-endian 24-bit value, the length form used by handshake
// messages.
func (r *fieldReader) u24() (int, error) {
	if r.remaining() < 3 {
		return 0, ErrTruncated
	}
	v := int(r.buf[r.off])<<16 | int(r.buf[r.off+1])<<8 | int(r.buf[r.off+2])
	r.off += 3
	return v, nil
}

// take returns the next n bytes as a subslice of the underlying buffer. The
// slice aliases the record buffer and is only valid while decoding.
func (r *fieldReader) take(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, ErrTruncated
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *fieldReader) skip(n int) error {
	if n < 0 || r.remaining() < n {
		return ErrTruncated
	}
	r.off += n
	return nil
}
