package wire

import (
	"errors"
	"fmt"
)

// Protocol opcodes.
const (
	OpSetPower byte = 0x71
	OpSetColor byte = 0x31
	OpGetState byte = 0x81
)

// Protocol words and write masks.
const (
	WordTerminator byte = 0x0f
	WordOn         byte = 0x23
	WordOff        byte = 0x24

	// MaskColors selects the RGB channels of a color-set frame,
	// MaskWhites the warm/cold channels, MaskBoth all five.
	MaskColors byte = 0xf0
	MaskWhites byte = 0x0f
	MaskBoth   byte = MaskColors & MaskWhites
)

// Framing errors.
var (
	// ErrChecksumMismatch indicates the trailing byte does not equal the
	// modular sum of the preceding bytes. The frame must not be acted upon.
	ErrChecksumMismatch = errors.New("frame checksum mismatch")

	// ErrLengthMismatch indicates the frame is not the expected length.
	ErrLengthMismatch = errors.New("frame length mismatch")
)

// Checksum computes the sum of the payload bytes modulo 256.
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// AppendChecksum returns the payload with its checksum byte appended.
func AppendChecksum(payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+1)
	frame = append(frame, payload...)
	return append(frame, Checksum(payload))
}

// BuildFrame assembles a checksummed command frame from an opcode and its
// payload bytes.
func BuildFrame(opcode byte, payload ...byte) []byte {
	frame := make([]byte, 0, len(payload)+2)
	frame = append(frame, opcode)
	frame = append(frame, payload...)
	return append(frame, Checksum(frame))
}

// ValidateFrame checks that a received frame has the expected length and a
// correct trailing checksum.
func ValidateFrame(frame []byte, expectedLen int) error {
	if len(frame) != expectedLen {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrLengthMismatch, len(frame), expectedLen)
	}
	if expectedLen < 1 {
		return nil
	}
	if frame[expectedLen-1] != Checksum(frame[:expectedLen-1]) {
		return ErrChecksumMismatch
	}
	return nil
}

// PowerFrame builds the power-set command frame.
func PowerFrame(on bool) []byte {
	return BuildFrame(OpSetPower, powerWord(on), WordTerminator)
}

// PowerReply builds the acknowledgment the device echoes for a power set.
func PowerReply(on bool) []byte {
	return AppendChecksum([]byte{WordTerminator, OpSetPower, powerWord(on)})
}

// ColorFrame builds the color-set command frame. The mask selects which
// channels the device writes (MaskColors, MaskWhites or MaskBoth).
func ColorFrame(r, g, b, warm, cold, mask byte) []byte {
	return BuildFrame(OpSetColor, r, g, b, warm, cold, mask, WordTerminator)
}

// StateQueryFrame builds the state-query command frame.
func StateQueryFrame() []byte {
	return BuildFrame(OpGetState, 0x8a, 0x8b)
}

func powerWord(on bool) byte {
	if on {
		return WordOn
	}
	return WordOff
}
