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

// MaxRecordLength is the hard ceiling on the size of the record the Sniffer
// will buffer. It is a denial-of-service guard, not a protocol limit: a
// record declaring more than this is rejected before any buffer is allocated.
const MaxRecordLength = 16384

// TLS record content types and the SSLv2 ClientHello marker, as they appear
// in the first byte of a connection.
const (
	recordChangeCipherSpec = 20
	recordHandshake        = 22
	recordApplicationData  = 23
	sslv2Marker            = 128
)

type phase int

const (
	// phaseAwaiting: no record is being buffered; the next byte classifies
	// the connection.
	phaseAwaiting phase = iota
	// phaseBuffering: a record of known length is being collected across
	// reads.
	phaseBuffering
	// phaseInert: the first record has been decoded (or classification
	// failed); all further input is ignored. Terminal.
	phaseInert
)

// Sniffer consumes the byte stream of one connection, chunk by chunk, and
// reassembles the first TLS/SSL record into a decoded Hello. Chunk boundaries
// carry no meaning: a record may arrive one byte at a time or several records
// may arrive in a single chunk. After the first record completes — whether or
// not it decoded — the Sniffer goes inert and Feed becomes a no-op, so the
// cost per connection is bounded by one record buffer.
//
// A Sniffer is owned by a single connection and is not safe for concurrent
// use. Chunks must be fed in wire order.
type Sniffer struct {
	limit int
	phase phase

	// helloVersion is 2 for legacy SSLv2 framing, 3 for SSLv3+/TLS record
	// framing. Set once when the first byte is classified.
	helloVersion int

	// recordType is the outer content-type byte for SSLv3+ framing. Only
	// handshake records are decoded; other types are buffered to keep the
	// length accounting honest, then dropped.
	recordType byte

	// Advertised protocol version from the framing. For SSLv2 the wire may
	// carry the two bytes reversed (the historical 0x0002 marker);
	// verSwapped records that so the raw dump can reproduce wire order.
	protoHigh, protoLow byte
	verSwapped          bool

	buf  []byte
	toGo int

	hello *Hello
	err   error
}

// NewSniffer returns a Sniffer for one connection. limit bounds the record
// size that will be buffered; values outside (0, MaxRecordLength] fall back
// to MaxRecordLength.
func NewSniffer(limit int) *Sniffer {
	if limit <= 0 || limit > MaxRecordLength {
		limit = MaxRecordLength
	}
	return &Sniffer{limit: limit}
}

// Done reports whether inspection of this connection has finished. Once true
// it stays true, and Hello and Err are final.
func (s *Sniffer) Done() bool { return s.phase == phaseInert }

// Hello returns the decoded ClientHello, or nil. Nil with a nil Err is a
// normal outcome: the first record was valid TLS but not a ClientHello.
func (s *Sniffer) Hello() *Hello { return s.hello }

// Err returns the reason inspection failed, or nil. Any returned error is
// one of the package's sentinel errors and is connection-local; it must not
// be treated as a transport failure.
func (s *Sniffer) Err() error { return s.err }

// Feed consumes one chunk of connection bytes. The chunk may be empty, may
// split a record at any offset, and is not retained. Feed never fails from
// the caller's perspective; parse failures are recorded and exposed via Err.
func (s *Sniffer) Feed(chunk []byte) {
	for len(chunk) > 0 && s.phase != phaseInert {
		if s.phase == phaseAwaiting {
			chunk = s.beginRecord(chunk)
			continue
		}

		// Buffering: copy what we can of the remainder of the record.
		n := min(s.toGo, len(chunk))
		filled := len(s.buf) - s.toGo
		copy(s.buf[filled:], chunk[:n])
		s.toGo -= n
		chunk = chunk[n:]

		if s.toGo == 0 {
			s.finishRecord()
		}
	}
}

// Abort forces the Sniffer inert and releases any partially buffered record.
// Intended for the owner of the connection to call when it gives up on a
// stalled peer; the Sniffer itself has no notion of time.
func (s *Sniffer) Abort() {
	if s.phase == phaseInert {
		return
	}
	s.buf = nil
	s.toGo = 0
	s.phase = phaseInert
}

// beginRecord classifies the first byte of a fresh record, validates the
// header, and allocates the record buffer. It returns the unconsumed tail of
// the chunk, or nil after a failure.
func (s *Sniffer) beginRecord(chunk []byte) []byte {
	switch b := chunk[0]; b {
	case recordHandshake, recordChangeCipherSpec, recordApplicationData:
		// SSLv3+/TLS framing: type, 2-byte version, 2-byte length. The
		// header is expected to arrive in one read.
		if len(chunk) < 5 {
			return s.fail(ErrInsufficientHeader)
		}
		s.helloVersion = 3
		s.recordType = b
		if s.protoHigh == 0 {
			s.protoHigh, s.protoLow = chunk[1], chunk[2]
		}
		length := int(chunk[3])<<8 | int(chunk[4])
		if err := s.checkLength(length); err != nil {
			return s.fail(err)
		}
		s.buf = make([]byte, length)
		s.toGo = length
		s.phase = phaseBuffering
		return chunk[5:]

	case sslv2Marker:
		// Legacy SSLv2 ClientHello framing: 0x80, length, message type,
		// 2-byte version.
		if len(chunk) < 5 {
			return s.fail(ErrInsufficientHeader)
		}
		if chunk[2] != 1 {
			return s.fail(ErrNotClientHello)
		}
		s.helloVersion = 2
		if chunk[3] == 0x00 && chunk[4] == 0x02 {
			// SSLv2 proper writes its version as 0x0002, low byte first.
			s.protoHigh, s.protoLow = chunk[4], chunk[3]
			s.verSwapped = true
		} else {
			s.protoHigh, s.protoLow = chunk[3], chunk[4]
		}
		// Message type and version count against the declared length and
		// have already been consumed.
		length := int(chunk[1]) - 3
		if err := s.checkLength(length); err != nil {
			return s.fail(err)
		}
		s.buf = make([]byte, length)
		s.toGo = length
		s.phase = phaseBuffering
		return chunk[5:]

	default:
		return s.fail(ErrNotTLS)
	}
}

func (s *Sniffer) checkLength(length int) error {
	if length <= 0 {
		return ErrZeroLength
	}
	if length > s.limit {
		return ErrRecordTooLarge
	}
	return nil
}

// finishRecord runs the decoder for the completed record, releases the
// buffer, and goes inert. Only the first record of a connection is ever of
// interest: the ClientHello is always the client's first message.
func (s *Sniffer) finishRecord() {
	switch {
	case s.helloVersion == 2:
		s.hello, s.err = decodeV2(s.buf, s.protoHigh, s.protoLow, s.verSwapped)
	case s.recordType == recordHandshake:
		s.hello, s.err = decodeV3(s.buf, s.protoHigh, s.protoLow)
	default:
		// Change-cipher-spec or application data as the first record:
		// legitimate TLS, just nothing to fingerprint.
	}
	s.buf = nil
	s.phase = phaseInert
}

func (s *Sniffer) fail(err error) []byte {
	s.err = err
	s.buf = nil
	s.toGo = 0
	s.phase = phaseInert
	return nil
}
