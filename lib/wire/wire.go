// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// RequestSize is the exact encoded size of a Reading.
	RequestSize = 16

	// MaxReplySize bounds a reply, NUL terminator included.
	MaxReplySize = 128

	// KindReading is the kind value producers put in every request.
	// The collector does not interpret it.
	KindReading int32 = 1
)

// Reading is one temperature sample from one producer.
type Reading struct {
	Kind        int32
	ProducerID  int32
	Temperature float64
}

// SizeError reports a request whose length is not RequestSize.
type SizeError struct {
	Size int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("malformed reading: %d bytes, want %d", e.Size, RequestSize)
}

// Encode returns the RequestSize-byte encoding of r.
func (r Reading) Encode() []byte {
	buffer := make([]byte, RequestSize)
	binary.LittleEndian.PutUint32(buffer[0:4], uint32(r.Kind))
	binary.LittleEndian.PutUint32(buffer[4:8], uint32(r.ProducerID))
	binary.LittleEndian.PutUint64(buffer[8:16], math.Float64bits(r.Temperature))
	return buffer
}

// Decode parses a request. Anything other than exactly RequestSize
// bytes is rejected with a *SizeError. A non-finite temperature is
// rejected as well: one NaN would poison every average computed while
// it stays in the window.
func Decode(data []byte) (Reading, error) {
	if len(data) != RequestSize {
		return Reading{}, &SizeError{Size: len(data)}
	}
	reading := Reading{
		Kind:        int32(binary.LittleEndian.Uint32(data[0:4])),
		ProducerID:  int32(binary.LittleEndian.Uint32(data[4:8])),
		Temperature: math.Float64frombits(binary.LittleEndian.Uint64(data[8:16])),
	}
	if math.IsNaN(reading.Temperature) || math.IsInf(reading.Temperature, 0) {
		return reading, fmt.Errorf("malformed reading: temperature %v is not finite", reading.Temperature)
	}
	return reading, nil
}

// Ack formats the acknowledgment for an accepted reading.
func Ack(r Reading) []byte {
	return terminate(fmt.Sprintf("ACK: received %.3f from pid %d", r.Temperature, r.ProducerID))
}

// Nak formats the reply for a rejected request.
func Nak(reason error) []byte {
	return terminate("NAK: " + reason.Error())
}

// terminate appends the NUL terminator, truncating text so the result
// fits in MaxReplySize.
func terminate(text string) []byte {
	if len(text) > MaxReplySize-1 {
		text = text[:MaxReplySize-1]
	}
	reply := make([]byte, len(text)+1)
	copy(reply, text)
	return reply
}

// ReplyText extracts the text of a reply: everything before the first
// NUL, or the whole buffer if there is none.
func ReplyText(reply []byte) string {
	if end := bytes.IndexByte(reply, 0); end >= 0 {
		return string(reply[:end])
	}
	return string(reply)
}
