package discovery

import (
	"io"
	"net"
	"net/netip"
	"strconv"
	"testing"
	"time"

	"github.com/homectl/homectl-go/pkg/lednet"
	"github.com/homectl/homectl-go/pkg/wire"
)

// responder answers discovery probes on a loopback UDP socket with a fixed
// set of reply payloads.
type responder struct {
	conn net.PacketConn
}

func newResponder(t *testing.T, replies ...string) *responder {
	t.Helper()

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 64)
		for {
			n, raddr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			if string(buf[:n]) != lednet.ProbeMessage {
				continue
			}
			for _, r := range replies {
				conn.WriteTo([]byte(r), raddr)
			}
		}
	}()

	return &responder{conn: conn}
}

func (r *responder) port(t *testing.T) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(r.conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("split responder addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse responder port: %v", err)
	}
	return port
}

// newStateServer runs a minimal control endpoint that answers every state
// query with a fixed powered-on state.
func newStateServer(t *testing.T) uint16 {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen tcp: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				query := make([]byte, 4)
				if _, err := io.ReadFull(c, query); err != nil {
					return
				}
				payload := make([]byte, wire.StateReplyLen-1)
				payload[0] = wire.OpGetState
				payload[2] = wire.WordOn
				payload[6], payload[7], payload[8] = 1, 2, 3
				payload[9], payload[11] = 4, 5
				c.Write(wire.AppendChecksum(payload))
			}(conn)
		}
	}()

	ap := netip.MustParseAddrPort(ln.Addr().String())
	return ap.Port()
}

func testConfig(t *testing.T, r *responder, controlPort uint16) Config {
	return Config{
		Port:           r.port(t),
		ControlPort:    controlPort,
		ReadTimeout:    200 * time.Millisecond,
		ResolveTimeout: 400 * time.Millisecond,
		ScanDeadline:   2 * time.Second,
		Targets:        []netip.Addr{netip.MustParseAddr("127.0.0.1")},
		DeviceOptions:  []lednet.Option{lednet.WithTimeout(200 * time.Millisecond)},
		listenPacket: func(int) (net.PacketConn, error) {
			return net.ListenPacket("udp4", "127.0.0.1:0")
		},
	}
}

func TestResolveFindsDevice(t *testing.T) {
	control := newStateServer(t)
	r := newResponder(t, "10.0.0.9,F0FE6B5A6D68,HF-LPB100-ZJ200")

	dev, err := Resolve(netip.MustParseAddr("127.0.0.1"), testConfig(t, r, control))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if dev == nil {
		t.Fatal("Resolve found nothing")
	}

	// The device lives at the reply's source address, not the IP named
	// in the reply text.
	if got := dev.Address(); got != netip.MustParseAddr("127.0.0.1") {
		t.Errorf("device address = %v, want 127.0.0.1", got)
	}
	if dev.Port() != control {
		t.Errorf("device port = %d, want control port %d", dev.Port(), control)
	}
	if !dev.IsOn() {
		t.Error("initial refresh should have loaded the powered-on state")
	}
}

func TestResolveUnsupportedModelFindsNothing(t *testing.T) {
	control := newStateServer(t)
	r := newResponder(t, "10.0.0.9,F0FE6B5A6D68,HF-XX-UNKNOWN")

	dev, err := Resolve(netip.MustParseAddr("127.0.0.1"), testConfig(t, r, control))
	if err != nil {
		t.Fatalf("unsupported model must not be an error, got %v", err)
	}
	if dev != nil {
		t.Errorf("unsupported model yielded device %v", dev)
	}
}

func TestResolveTimeoutFindsNothing(t *testing.T) {
	r := newResponder(t) // answers probes with nothing

	dev, err := Resolve(netip.MustParseAddr("127.0.0.1"), testConfig(t, r, 1))
	if err != nil {
		t.Fatalf("timeout must not be an error, got %v", err)
	}
	if dev != nil {
		t.Errorf("expected nothing, got %v", dev)
	}
}

func TestResolveRefreshFailureIsFatal(t *testing.T) {
	// Nothing listens on the control port: the matched reply cannot be
	// refreshed, which is a hard failure when resolving one address.
	r := newResponder(t, "10.0.0.9,F0FE6B5A6D68,HF-LPB100-ZJ200")

	_, err := Resolve(netip.MustParseAddr("127.0.0.1"), testConfig(t, r, 1))
	if err == nil {
		t.Error("expected the refresh failure to propagate")
	}
}

func TestScanCollectsSupportedDevices(t *testing.T) {
	control := newStateServer(t)
	r := newResponder(t,
		"10.0.0.8,F0FE6B000001,HF-XX-UNKNOWN",
		"10.0.0.9,F0FE6B000002,HF-LPB100-ZJ200",
	)

	devices, err := Scan(testConfig(t, r, control))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("found %d devices, want 1 (unsupported model skipped)", len(devices))
	}
	if devices[0].Model() != "HF-LPB100-ZJ200" {
		t.Errorf("model = %q", devices[0].Model())
	}
}

func TestScanHonorsMaxDevices(t *testing.T) {
	control := newStateServer(t)
	reply := "10.0.0.9,F0FE6B5A6D68,HF-LPB100-ZJ200"
	r := newResponder(t, reply, reply, reply, reply, reply)

	cfg := testConfig(t, r, control)
	cfg.MaxDevices = 2

	devices, err := Scan(cfg)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("collected %d devices, want cap of 2", len(devices))
	}
}

func TestScanSkipsDevicesThatFailRefresh(t *testing.T) {
	// Control port is dead; the matched replies cannot be refreshed.
	// A broadcast scan drops them and finishes normally.
	r := newResponder(t, "10.0.0.9,F0FE6B5A6D68,HF-LPB100-ZJ200")

	devices, err := Scan(testConfig(t, r, 1))
	if err != nil {
		t.Fatalf("Scan should survive per-reply refresh failures, got %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("found %d devices, want 0", len(devices))
	}
}

func TestBroadcastOf(t *testing.T) {
	tests := []struct {
		name string
		cidr string
		want string
	}{
		{name: "slash 24", cidr: "192.168.1.10/24", want: "192.168.1.255"},
		{name: "slash 16", cidr: "10.1.2.3/16", want: "10.1.255.255"},
		{name: "slash 30", cidr: "172.16.0.5/30", want: "172.16.0.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip, ipnet, err := net.ParseCIDR(tt.cidr)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.cidr, err)
			}
			ipnet.IP = ip

			got, ok := broadcastOf(ipnet)
			if !ok {
				t.Fatalf("broadcastOf(%q) found no IPv4 broadcast", tt.cidr)
			}
			if got != netip.MustParseAddr(tt.want) {
				t.Errorf("broadcastOf(%q) = %v, want %v", tt.cidr, got, tt.want)
			}
		})
	}
}
