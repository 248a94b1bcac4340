package lednet

import (
	"errors"
	"io"
	"net"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/homectl/homectl-go/pkg/color"
	"github.com/homectl/homectl-go/pkg/wire"
)

// fakeLamp emulates an LEDNET controller on a loopback TCP listener. Each
// connection carries exactly one exchange, mirroring the real hardware's
// short-lived connection model.
type fakeLamp struct {
	ln net.Listener

	mu         sync.Mutex
	on         bool
	r, g, b    byte
	warm, cold byte

	// Failure injection.
	dropStateReply bool // close the connection instead of answering a state query
	corruptState   bool // flip a bit in the state reply after checksumming
	wrongPowerEcho bool // acknowledge power sets with garbage
	silent         bool // accept and never reply
}

func newFakeLamp(t *testing.T) *fakeLamp {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	lamp := &fakeLamp{ln: ln}
	go lamp.serve()
	t.Cleanup(func() { ln.Close() })
	return lamp
}

func (l *fakeLamp) addr() netip.AddrPort {
	return netip.MustParseAddrPort(l.ln.Addr().String())
}

func (l *fakeLamp) serve() {
	// Exchanges are handled strictly in order so that a setter's
	// follow-up refresh always observes the preceding write.
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return
		}
		l.handle(conn)
	}
}

func (l *fakeLamp) handle(conn net.Conn) {
	defer conn.Close()

	var op [1]byte
	if _, err := io.ReadFull(conn, op[:]); err != nil {
		return
	}

	// Remaining frame length per opcode, without the opcode byte.
	var rest int
	switch op[0] {
	case wire.OpSetPower, wire.OpGetState:
		rest = 3
	case wire.OpSetColor:
		rest = 8
	default:
		return
	}

	frame := make([]byte, rest)
	if _, err := io.ReadFull(conn, frame); err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.silent {
		time.Sleep(500 * time.Millisecond)
		return
	}

	switch op[0] {
	case wire.OpSetPower:
		l.on = frame[0] == wire.WordOn
		if l.wrongPowerEcho {
			conn.Write([]byte{0xde, 0xad, 0xbe, 0xef})
			return
		}
		conn.Write(wire.PowerReply(l.on))

	case wire.OpSetColor:
		r, g, b, warm, cold, mask := frame[0], frame[1], frame[2], frame[3], frame[4], frame[5]
		if mask == wire.MaskColors || mask == wire.MaskBoth {
			l.r, l.g, l.b = r, g, b
		}
		if mask == wire.MaskWhites || mask == wire.MaskBoth {
			l.warm, l.cold = warm, cold
		}
		// No acknowledgment for color frames.

	case wire.OpGetState:
		if l.dropStateReply {
			return
		}
		payload := make([]byte, wire.StateReplyLen-1)
		payload[0] = wire.OpGetState
		payload[2] = wire.WordOff
		if l.on {
			payload[2] = wire.WordOn
		}
		payload[6], payload[7], payload[8] = l.r, l.g, l.b
		payload[9], payload[11] = l.warm, l.cold
		reply := wire.AppendChecksum(payload)
		if l.corruptState {
			reply[6] ^= 0x40
		}
		conn.Write(reply)
	}
}

func (l *fakeLamp) device(opts ...Option) *Device {
	return New(l.addr(), "HF-LPB100-ZJ200", opts...)
}

func TestRefresh(t *testing.T) {
	lamp := newFakeLamp(t)
	lamp.on = true
	lamp.r, lamp.g, lamp.b = 0x10, 0x20, 0x30
	lamp.warm, lamp.cold = 0x05, 0x07

	dev := lamp.device()
	if err := dev.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if !dev.IsOn() {
		t.Error("IsOn = false, want true")
	}
	if got := dev.RGBExact(); got != (color.RGB{R: 0x10, G: 0x20, B: 0x30}) {
		t.Errorf("RGBExact = %v, want #102030", got)
	}
	if dev.CCTTemperature() == 0 {
		t.Error("CCTTemperature = 0 for a nonzero warm/cold pair")
	}
	if dev.CCTBrightness() <= 0 {
		t.Errorf("CCTBrightness = %v, want > 0", dev.CCTBrightness())
	}
}

func TestRefreshChecksumMismatch(t *testing.T) {
	lamp := newFakeLamp(t)
	lamp.corruptState = true

	err := lamp.device().Refresh()
	if !errors.Is(err, wire.ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestRefreshTimeout(t *testing.T) {
	lamp := newFakeLamp(t)
	lamp.silent = true

	dev := lamp.device(WithTimeout(50 * time.Millisecond))
	if err := dev.Refresh(); err == nil {
		t.Error("Refresh against a silent device should time out")
	}
}

func TestSetOn(t *testing.T) {
	lamp := newFakeLamp(t)

	dev := lamp.device()
	if err := dev.SetOn(true); err != nil {
		t.Fatalf("SetOn(true) failed: %v", err)
	}
	if !dev.IsOn() {
		t.Error("shadow state not refreshed after SetOn(true)")
	}

	if err := dev.SetOn(false); err != nil {
		t.Fatalf("SetOn(false) failed: %v", err)
	}
	if dev.IsOn() {
		t.Error("shadow state not refreshed after SetOn(false)")
	}
}

func TestSetOnUnexpectedReply(t *testing.T) {
	lamp := newFakeLamp(t)
	lamp.wrongPowerEcho = true

	err := lamp.device().SetOn(true)
	if !errors.Is(err, ErrUnexpectedReply) {
		t.Errorf("expected ErrUnexpectedReply, got %v", err)
	}
}

func TestSetterPropagatesRefreshFailure(t *testing.T) {
	lamp := newFakeLamp(t)
	lamp.dropStateReply = true

	// The power set itself succeeds; the mandatory refresh afterwards
	// must surface its failure.
	err := lamp.device(WithTimeout(100 * time.Millisecond)).SetOn(true)
	if err == nil {
		t.Error("SetOn should fail when the post-set refresh fails")
	}
}

func TestRGBSetExact(t *testing.T) {
	lamp := newFakeLamp(t)

	dev := lamp.device()
	want := color.RGB{R: 0xff, G: 0x40, B: 0x00}
	if err := dev.RGBSetExact(want); err != nil {
		t.Fatalf("RGBSetExact failed: %v", err)
	}

	if got := dev.RGBExact(); got != want {
		t.Errorf("shadow color after set = %v, want %v", got, want)
	}
	lamp.mu.Lock()
	if lamp.warm != 0 || lamp.cold != 0 {
		t.Error("color-only set must not touch the white channels")
	}
	lamp.mu.Unlock()
}

func TestRGBSetAppliesBrightness(t *testing.T) {
	lamp := newFakeLamp(t)

	dev := lamp.device()
	if err := dev.RGBSet(color.RGB{R: 255}, 0.5); err != nil {
		t.Fatalf("RGBSet failed: %v", err)
	}

	lamp.mu.Lock()
	r := lamp.r
	lamp.mu.Unlock()
	if r != 128 {
		t.Errorf("red channel = %d, want 128 (full red at half value)", r)
	}
}

func TestCCTSetScalesBrightness(t *testing.T) {
	lamp := newFakeLamp(t)

	dev := lamp.device()
	if err := dev.CCTSet(6500, 0.5); err != nil {
		t.Fatalf("CCTSet failed: %v", err)
	}

	lamp.mu.Lock()
	warm, cold := lamp.warm, lamp.cold
	r, g, b := lamp.r, lamp.g, lamp.b
	lamp.mu.Unlock()

	if warm != 0 {
		t.Errorf("warm channel = %d, want 0 at 6500K", warm)
	}
	if cold != 127 {
		t.Errorf("cold channel = %d, want 127 (255 halved)", cold)
	}
	if r != 0 || g != 0 || b != 0 {
		t.Error("white-only set must not touch the color channels")
	}
}

func TestSetWarmCold(t *testing.T) {
	lamp := newFakeLamp(t)

	dev := lamp.device()
	if err := dev.SetWarmCold(0x20, 0x80); err != nil {
		t.Fatalf("SetWarmCold failed: %v", err)
	}

	lamp.mu.Lock()
	warm, cold := lamp.warm, lamp.cold
	lamp.mu.Unlock()
	if warm != 0x20 || cold != 0x80 {
		t.Errorf("channels = (%#02x, %#02x), want (0x20, 0x80)", warm, cold)
	}
}

func TestSetRGBCCT(t *testing.T) {
	lamp := newFakeLamp(t)

	dev := lamp.device()
	if err := dev.SetRGBCCT(color.RGB{R: 0x11, G: 0x22, B: 0x33}, 2800); err != nil {
		t.Fatalf("SetRGBCCT failed: %v", err)
	}

	lamp.mu.Lock()
	defer lamp.mu.Unlock()
	if lamp.r != 0x11 || lamp.g != 0x22 || lamp.b != 0x33 {
		t.Errorf("color channels = (%#02x, %#02x, %#02x)", lamp.r, lamp.g, lamp.b)
	}
	if lamp.warm != 255 || lamp.cold != 0 {
		t.Errorf("white channels = (%d, %d), want (255, 0) at 2800K", lamp.warm, lamp.cold)
	}
}

func TestGettersDoNoIO(t *testing.T) {
	// No listener behind this address; getters must still return the
	// (empty) shadow state without attempting a connection.
	dev := New(netip.MustParseAddrPort("127.0.0.1:1"), "HF-LPB100-ZJ200")

	if dev.IsOn() {
		t.Error("fresh device should report off")
	}
	if dev.RGBExact() != (color.RGB{}) {
		t.Error("fresh device should report black")
	}
	if dev.CCTTemperature() != 0 || dev.CCTBrightness() != 0 {
		t.Error("fresh device should report zero CCT state")
	}
	if got := dev.Name(); got != "LEDNET:HF-LPB100-ZJ200" {
		t.Errorf("Name = %q", got)
	}
	if dev.Port() != 1 {
		t.Errorf("Port = %d, want 1", dev.Port())
	}
}

func TestSupportedModel(t *testing.T) {
	if !SupportedModel("HF-LPB100-ZJ200") {
		t.Error("HF-LPB100-ZJ200 should be supported")
	}
	if SupportedModel("HF-XX-UNKNOWN") {
		t.Error("unknown model should not be supported")
	}
}
