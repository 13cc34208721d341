// Package protocol builds the binary frames understood by the device
// firmware.
//
// Frame layout:
//
//	[0xAA 0x55][len][payload ...][checksum]
//
// checksum is the sum of the payload bytes modulo 256. All multi-byte fields
// are little-endian.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ghalamif/padlink/internal/domain"
)

const (
	Header0 byte = 0xAA
	Header1 byte = 0x55

	// ControlPayloadLen is 4 float32 axes plus 2 flag bytes.
	ControlPayloadLen = 4*4 + 2
	// ControlFrameLen is header + length + payload + checksum.
	ControlFrameLen = 2 + 1 + ControlPayloadLen + 1

	headerLen = 3
)

var (
	ErrShortFrame  = errors.New("protocol: short frame")
	ErrBadHeader   = errors.New("protocol: bad header")
	ErrBadLength   = errors.New("protocol: length mismatch")
	ErrBadChecksum = errors.New("protocol: checksum mismatch")
)

// ControlPayload is the decoded form of the primary frame kind.
type ControlPayload struct {
	RightStickY float32
	RightStickX float32
	LeftStickY  float32
	LeftStickX  float32
	FlagA       uint8
	FlagB       uint8
}

// Encode builds the control frame for s. Axes are written negated in the
// order right Y, right X, left Y, left X. Back and Start are carried as the
// two control flag bytes.
func Encode(s domain.ControllerSnapshot) []byte {
	return encodeControl(ControlPayload{
		RightStickY: float32(-s.RightStickY),
		RightStickX: float32(-s.RightStickX),
		LeftStickY:  float32(-s.LeftStickY),
		LeftStickX:  float32(-s.LeftStickX),
		FlagA:       boolByte(s.Back),
		FlagB:       boolByte(s.Start),
	})
}

// EncodeAuxiliary builds a control frame with zeroed axes and only the first
// flag byte set from flag.
func EncodeAuxiliary(flag bool) []byte {
	return encodeControl(ControlPayload{FlagA: boolByte(flag)})
}

func encodeControl(p ControlPayload) []byte {
	payload := make([]byte, ControlPayloadLen)
	binary.LittleEndian.PutUint32(payload[0:4], math.Float32bits(p.RightStickY))
	binary.LittleEndian.PutUint32(payload[4:8], math.Float32bits(p.RightStickX))
	binary.LittleEndian.PutUint32(payload[8:12], math.Float32bits(p.LeftStickY))
	binary.LittleEndian.PutUint32(payload[12:16], math.Float32bits(p.LeftStickX))
	payload[16] = p.FlagA
	payload[17] = p.FlagB
	return Frame(payload)
}

// Frame wraps an arbitrary payload with header, length and checksum.
// Payloads longer than 255 bytes cannot be described by the length byte and
// cause a panic.
func Frame(payload []byte) []byte {
	if len(payload) > math.MaxUint8 {
		panic(fmt.Sprintf("protocol: payload too long (%d bytes)", len(payload)))
	}
	out := make([]byte, 0, headerLen+len(payload)+1)
	out = append(out, Header0, Header1, byte(len(payload)))
	out = append(out, payload...)
	return append(out, Checksum(payload))
}

// Checksum is the byte sum of payload modulo 256.
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// Unframe validates header, length and checksum and returns the payload.
func Unframe(frame []byte) ([]byte, error) {
	if len(frame) < headerLen+1 {
		return nil, ErrShortFrame
	}
	if frame[0] != Header0 || frame[1] != Header1 {
		return nil, ErrBadHeader
	}
	n := int(frame[2])
	if len(frame) != headerLen+n+1 {
		return nil, fmt.Errorf("%w: header says %d, frame carries %d", ErrBadLength, n, len(frame)-headerLen-1)
	}
	payload := frame[headerLen : headerLen+n]
	if got, want := frame[len(frame)-1], Checksum(payload); got != want {
		return nil, fmt.Errorf("%w: got 0x%02X want 0x%02X", ErrBadChecksum, got, want)
	}
	return payload, nil
}

// DecodeControl parses a control frame. Used by diagnostics and tests.
func DecodeControl(frame []byte) (ControlPayload, error) {
	payload, err := Unframe(frame)
	if err != nil {
		return ControlPayload{}, err
	}
	if len(payload) != ControlPayloadLen {
		return ControlPayload{}, fmt.Errorf("%w: control payload is %d bytes", ErrBadLength, len(payload))
	}
	return ControlPayload{
		RightStickY: math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4])),
		RightStickX: math.Float32frombits(binary.LittleEndian.Uint32(payload[4:8])),
		LeftStickY:  math.Float32frombits(binary.LittleEndian.Uint32(payload[8:12])),
		LeftStickX:  math.Float32frombits(binary.LittleEndian.Uint32(payload[12:16])),
		FlagA:       payload[16],
		FlagB:       payload[17],
	}, nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
