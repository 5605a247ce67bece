// SPDX-FileCopyrightText: Copyright (C) 2025  The ISC client authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package wire implements the ISC framing used by the teaching server.
//
// A frame is a 6 byte header, "ISC" followed by a type tag and a big endian
// uint16 slot count, and then slot count 4 byte slots.  A slot carries either
// one character, UTF-8 encoded and left padded with zero bytes, or a big
// endian uint32 when the frame holds cipher arithmetic.
package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/katzenpost/isc/core/wire/constants"
)

// Placeholder replaces slots that are not valid UTF-8 when decoding text.
const Placeholder = "*"

// Type is the frame type tag.
type Type byte

const (
	// TypeText is plain chat text between users.
	TypeText Type = 't'

	// TypeServer is a message to or from the authoritative peer.
	TypeServer Type = 's'

	// TypeImage is an image payload.  The client reads and discards it.
	TypeImage Type = 'i'
)

// String returns the tag as a one character string.
func (t Type) String() string {
	return string(rune(t))
}

// Header is a decoded frame header.
type Header struct {
	Type  Type
	Count uint16
}

// ToBytes serializes the header.
func (h *Header) ToBytes() []byte {
	out := make([]byte, constants.HeaderLength)
	copy(out, constants.Signature)
	out[3] = byte(h.Type)
	binary.BigEndian.PutUint16(out[4:6], h.Count)
	return out
}

// ImageSize returns the image dimensions carried in the count field of an
// image header: the high byte is the width and the low byte the height.
func (h *Header) ImageSize() (width, height int) {
	return int(h.Count >> 8), int(h.Count & 0xff)
}

// PayloadLength returns the number of payload bytes following the header.
//
// Image frames have been sized both as width*height and as
// width*height*3 by different server versions; this client reads
// width*height*3 (one RGB triple per pixel).
func (h *Header) PayloadLength() int {
	if h.Type == TypeImage {
		w, ht := h.ImageSize()
		return w * ht * constants.ImageBytesPerPixel
	}
	return int(h.Count) * constants.SlotLength
}

// ParseHeader decodes a header from b, which must hold at least
// HeaderLength bytes.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < constants.HeaderLength {
		return nil, ErrShortHeader
	}
	if !bytes.Equal(b[:3], []byte(constants.Signature)) {
		return nil, &SignatureError{Got: append([]byte{}, b[:3]...)}
	}
	return &Header{
		Type:  Type(b[3]),
		Count: binary.BigEndian.Uint16(b[4:6]),
	}, nil
}

// Frame is one complete protocol message.
type Frame struct {
	Header
	Payload []byte
}

// ToBytes serializes the frame.
func (f *Frame) ToBytes() []byte {
	out := f.Header.ToBytes()
	return append(out, f.Payload...)
}

// Text decodes the payload as text.
func (f *Frame) Text() string {
	return DecodeText(f.Payload)
}

// Values decodes the payload as slot integers.
func (f *Frame) Values() []uint32 {
	return DecodeValues(f.Payload)
}

// EncodeSlot returns the slot carrying r.
func EncodeSlot(r rune) ([constants.SlotLength]byte, error) {
	var slot [constants.SlotLength]byte
	n := utf8.RuneLen(r)
	if n < 0 || n > constants.SlotLength {
		return slot, &SlotOverflowError{Rune: r}
	}
	utf8.EncodeRune(slot[constants.SlotLength-n:], r)
	return slot, nil
}

// NewTextFrame builds a frame carrying one slot per character of text.
func NewTextFrame(t Type, text string) (*Frame, error) {
	runes := []rune(text)
	if len(runes) > constants.MaxSlots {
		return nil, ErrTooManySlots
	}
	payload := make([]byte, 0, len(runes)*constants.SlotLength)
	for i, r := range runes {
		slot, err := EncodeSlot(r)
		if err != nil {
			return nil, &SlotOverflowError{Index: i, Rune: r}
		}
		payload = append(payload, slot[:]...)
	}
	return &Frame{
		Header:  Header{Type: t, Count: uint16(len(runes))},
		Payload: payload,
	}, nil
}

// NewValuesFrame builds a frame carrying one big endian slot per value.
func NewValuesFrame(t Type, values []uint32) (*Frame, error) {
	if len(values) > constants.MaxSlots {
		return nil, ErrTooManySlots
	}
	return &Frame{
		Header:  Header{Type: t, Count: uint16(len(values))},
		Payload: valuesPayload(values),
	}, nil
}

func valuesPayload(values []uint32) []byte {
	payload := make([]byte, len(values)*constants.SlotLength)
	for i, v := range values {
		binary.BigEndian.PutUint32(payload[i*constants.SlotLength:], v)
	}
	return payload
}

// Encode returns the wire encoding of text as a frame of type t.
func Encode(t Type, text string) ([]byte, error) {
	f, err := NewTextFrame(t, text)
	if err != nil {
		return nil, err
	}
	return f.ToBytes(), nil
}

// EncodeValues returns the wire encoding of values as a frame of type t.
func EncodeValues(t Type, values []uint32) ([]byte, error) {
	f, err := NewValuesFrame(t, values)
	if err != nil {
		return nil, err
	}
	return f.ToBytes(), nil
}

func slots(payload []byte) [][]byte {
	out := make([][]byte, 0, (len(payload)+constants.SlotLength-1)/constants.SlotLength)
	for i := 0; i < len(payload); i += constants.SlotLength {
		end := i + constants.SlotLength
		if end > len(payload) {
			end = len(payload)
		}
		out = append(out, payload[i:end])
	}
	return out
}

// DecodeText decodes every slot independently as UTF-8, replacing invalid
// slots with Placeholder, and strips the NUL padding.
func DecodeText(payload []byte) string {
	var sb strings.Builder
	for _, s := range slots(payload) {
		if !utf8.Valid(s) {
			sb.WriteString(Placeholder)
			continue
		}
		sb.Write(s)
	}
	return strings.ReplaceAll(sb.String(), "\x00", "")
}

// DecodeValues decodes every slot as a big endian uint32.  A trailing
// partial slot is read as if it were left padded.
func DecodeValues(payload []byte) []uint32 {
	s := slots(payload)
	out := make([]uint32, len(s))
	for i, slot := range s {
		var v uint32
		for _, b := range slot {
			v = v<<8 | uint32(b)
		}
		out[i] = v
	}
	return out
}

// ValuesToText renders slot integers the way the peer would display them.
func ValuesToText(values []uint32) string {
	return DecodeText(valuesPayload(values))
}

// ReadHeader reads and parses exactly one header from r.
func ReadHeader(r io.Reader) (*Header, error) {
	var b [constants.HeaderLength]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, err
	}
	return ParseHeader(b[:])
}

// ReadFrame reads one complete frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, h.PayloadLength())
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &Frame{Header: *h, Payload: payload}, nil
}
