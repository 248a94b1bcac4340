package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    byte
	}{
		{name: "empty", payload: nil, want: 0},
		{name: "single byte", payload: []byte{0x42}, want: 0x42},
		{name: "wraps modulo 256", payload: []byte{0xff, 0x02}, want: 0x01},
		{name: "power on frame body", payload: []byte{0x71, 0x23, 0x0f}, want: 0xa3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.payload); got != tt.want {
				t.Errorf("Checksum(% x) = %#02x, want %#02x", tt.payload, got, tt.want)
			}
		})
	}
}

func TestValidateFrame(t *testing.T) {
	frame := AppendChecksum([]byte{0x31, 0x10, 0x20, 0x30, 0x00, 0x00, 0xf0, 0x0f})

	if err := ValidateFrame(frame, len(frame)); err != nil {
		t.Fatalf("ValidateFrame of a well-formed frame failed: %v", err)
	}

	t.Run("corrupted checksum byte", func(t *testing.T) {
		bad := append([]byte(nil), frame...)
		bad[len(bad)-1]++
		err := ValidateFrame(bad, len(bad))
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("expected ErrChecksumMismatch, got %v", err)
		}
	})

	t.Run("corrupted payload byte", func(t *testing.T) {
		bad := append([]byte(nil), frame...)
		bad[1] ^= 0x80
		err := ValidateFrame(bad, len(bad))
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("expected ErrChecksumMismatch, got %v", err)
		}
	})

	t.Run("wrong length", func(t *testing.T) {
		err := ValidateFrame(frame, len(frame)+1)
		if !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("expected ErrLengthMismatch, got %v", err)
		}
	})
}

// Any payload with its modular sum appended validates; flipping the trailing
// byte always fails.
func TestValidateFrameProperty(t *testing.T) {
	payload := []byte{0x81}
	for i := 0; i < 32; i++ {
		frame := AppendChecksum(payload)
		if err := ValidateFrame(frame, len(frame)); err != nil {
			t.Fatalf("valid frame of length %d rejected: %v", len(frame), err)
		}

		frame[len(frame)-1] ^= 0x01
		if err := ValidateFrame(frame, len(frame)); !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("corrupt frame of length %d accepted: %v", len(frame), err)
		}

		payload = append(payload, byte(i*7+3))
	}
}

func TestPowerFrame(t *testing.T) {
	on := PowerFrame(true)
	if !bytes.Equal(on, []byte{0x71, 0x23, 0x0f, 0xa3}) {
		t.Errorf("PowerFrame(true) = % x", on)
	}

	off := PowerFrame(false)
	if !bytes.Equal(off, []byte{0x71, 0x24, 0x0f, 0xa4}) {
		t.Errorf("PowerFrame(false) = % x", off)
	}
}

func TestPowerReply(t *testing.T) {
	on := PowerReply(true)
	if !bytes.Equal(on, []byte{0x0f, 0x71, 0x23, 0xa3}) {
		t.Errorf("PowerReply(true) = % x", on)
	}

	off := PowerReply(false)
	if !bytes.Equal(off, []byte{0x0f, 0x71, 0x24, 0xa4}) {
		t.Errorf("PowerReply(false) = % x", off)
	}
}

func TestColorFrame(t *testing.T) {
	frame := ColorFrame(0x10, 0x20, 0x30, 0x00, 0x00, MaskColors)
	want := AppendChecksum([]byte{0x31, 0x10, 0x20, 0x30, 0x00, 0x00, 0xf0, 0x0f})
	if !bytes.Equal(frame, want) {
		t.Errorf("ColorFrame = % x, want % x", frame, want)
	}

	if err := ValidateFrame(frame, len(frame)); err != nil {
		t.Errorf("ColorFrame does not validate: %v", err)
	}
}

func TestStateQueryFrame(t *testing.T) {
	frame := StateQueryFrame()
	if !bytes.Equal(frame, []byte{0x81, 0x8a, 0x8b, 0x96}) {
		t.Errorf("StateQueryFrame = % x", frame)
	}
}
