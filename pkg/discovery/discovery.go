package discovery

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/homectl/homectl-go/pkg/lednet"
	"github.com/homectl/homectl-go/pkg/protolog"
)

// Defaults.
const (
	// DefaultReadTimeout is how long a broadcast scan waits for the next
	// reply before concluding no more are coming.
	DefaultReadTimeout = 2 * time.Second

	// DefaultResolveTimeout bounds a single-address probe.
	DefaultResolveTimeout = 2500 * time.Millisecond

	// DefaultScanDeadline is the absolute bound on one broadcast scan,
	// guarding against a replier that streams datagrams forever.
	DefaultScanDeadline = 10 * time.Second

	// DefaultMaxDevices caps how many devices one scan collects.
	DefaultMaxDevices = 64

	// replyBufferSize fits the longest documented discovery reply.
	replyBufferSize = 128
)

// Config tunes a discovery run. The zero value uses the protocol defaults.
type Config struct {
	// Port is the UDP port to bind and probe (default 48899).
	Port int

	// ControlPort is the TCP port discovered devices are controlled on
	// (default 5577).
	ControlPort uint16

	// ReadTimeout is the per-datagram wait during a broadcast scan.
	ReadTimeout time.Duration

	// ResolveTimeout bounds a Resolve probe.
	ResolveTimeout time.Duration

	// ScanDeadline is the absolute bound on one broadcast scan.
	ScanDeadline time.Duration

	// MaxDevices caps how many devices one scan collects.
	MaxDevices int

	// Targets overrides the probe targets. When empty, Scan derives the
	// broadcast address of every up, broadcast-capable IPv4 interface.
	Targets []netip.Addr

	// Logger receives protocol events. Nil disables logging.
	Logger protolog.Logger

	// DeviceOptions are applied to every constructed device.
	DeviceOptions []lednet.Option

	// listenPacket overrides socket creation in tests.
	listenPacket func(port int) (net.PacketConn, error)
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = lednet.DiscoveryPort
	}
	if c.ControlPort == 0 {
		c.ControlPort = lednet.ControlPort
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.ResolveTimeout == 0 {
		c.ResolveTimeout = DefaultResolveTimeout
	}
	if c.ScanDeadline == 0 {
		c.ScanDeadline = DefaultScanDeadline
	}
	if c.MaxDevices == 0 {
		c.MaxDevices = DefaultMaxDevices
	}
	if c.Logger == nil {
		c.Logger = protolog.NoopLogger{}
	}
	if c.listenPacket == nil {
		c.listenPacket = func(port int) (net.PacketConn, error) {
			return net.ListenUDP("udp4", &net.UDPAddr{Port: port})
		}
	}
	return c
}

// Scan probes the local network and collects every supported device that
// answers before the read timeout elapses. An empty result is not an error.
// A reply whose initial state refresh fails is skipped; the scan goes on.
func Scan(cfg Config) ([]*lednet.Device, error) {
	cfg = cfg.withDefaults()

	conn, err := cfg.listenPacket(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("bind discovery socket: %w", err)
	}
	defer conn.Close()

	targets := cfg.Targets
	if len(targets) == 0 {
		targets, err = broadcastAddrs()
		if err != nil {
			return nil, err
		}
	}

	// Go enables SO_BROADCAST on datagram sockets, so broadcast targets
	// need no extra socket setup.
	for _, target := range targets {
		if err := sendProbe(conn, target, cfg); err != nil {
			return nil, err
		}
	}

	deadline := time.Now().Add(cfg.ScanDeadline)
	var devices []*lednet.Device
	buf := make([]byte, replyBufferSize)

	for len(devices) < cfg.MaxDevices {
		window := cfg.ReadTimeout
		if remaining := time.Until(deadline); remaining < window {
			window = remaining
		}
		if window <= 0 {
			break
		}
		if err := conn.SetReadDeadline(time.Now().Add(window)); err != nil {
			return devices, fmt.Errorf("set read deadline: %w", err)
		}

		n, raddr, err := conn.ReadFrom(buf)
		if err != nil {
			if isTimeout(err) {
				// No more replies coming. This is the normal way
				// a scan ends.
				break
			}
			return devices, fmt.Errorf("read discovery reply: %w", err)
		}

		dev, err := cfg.handleReply(buf[:n], raddr)
		if err != nil {
			// The reply matched but the device could not be
			// refreshed. Drop it and keep scanning.
			cfg.Logger.Log(protolog.NewErrorEvent("", raddr.String(), "scan", err))
			continue
		}
		if dev != nil {
			devices = append(devices, dev)
		}
	}

	return devices, nil
}

// Resolve probes a single address and returns the device behind it, or
// (nil, nil) when the timeout elapses without a valid reply.
func Resolve(addr netip.Addr, cfg Config) (*lednet.Device, error) {
	cfg = cfg.withDefaults()

	conn, err := cfg.listenPacket(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("bind discovery socket: %w", err)
	}
	defer conn.Close()

	if err := sendProbe(conn, addr, cfg); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(cfg.ResolveTimeout)
	buf := make([]byte, replyBufferSize)

	for {
		if time.Now().After(deadline) {
			return nil, nil
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}

		n, raddr, err := conn.ReadFrom(buf)
		if err != nil {
			if isTimeout(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("read discovery reply: %w", err)
		}

		dev, err := cfg.handleReply(buf[:n], raddr)
		if err != nil {
			// Resolving one known address: a device that answers
			// but cannot be refreshed is a hard failure.
			return nil, err
		}
		if dev != nil {
			return dev, nil
		}
	}
}

// handleReply parses one discovery datagram. It returns (nil, nil) for
// replies that should be ignored and an error only when a matched device
// fails its initial refresh.
func (c Config) handleReply(payload []byte, raddr net.Addr) (*lednet.Device, error) {
	text := string(payload)

	fields := strings.Split(text, ",")
	if len(fields) < 3 {
		c.Logger.Log(protolog.Event{
			Time:      time.Now(),
			Device:    raddr.String(),
			Discovery: &protolog.DiscoveryEvent{Payload: text, Skipped: true},
		})
		return nil, nil
	}

	model := fields[2]
	if !lednet.SupportedModel(model) {
		c.Logger.Log(protolog.Event{
			Time:      time.Now(),
			Device:    raddr.String(),
			Discovery: &protolog.DiscoveryEvent{Payload: text, Model: model, Skipped: true},
		})
		return nil, nil
	}

	ip, err := replyIP(raddr)
	if err != nil {
		return nil, err
	}

	c.Logger.Log(protolog.Event{
		Time:      time.Now(),
		Device:    raddr.String(),
		Discovery: &protolog.DiscoveryEvent{Payload: text, Model: model},
	})

	dev := lednet.New(netip.AddrPortFrom(ip, c.ControlPort), model, c.DeviceOptions...)
	if err := dev.Refresh(); err != nil {
		return nil, fmt.Errorf("initial refresh of %s: %w", raddr, err)
	}
	return dev, nil
}

// replyIP extracts the source IP of a discovery reply. The device is
// controlled at that address, not at whatever IP the reply text claims.
func replyIP(raddr net.Addr) (netip.Addr, error) {
	udp, ok := raddr.(*net.UDPAddr)
	if !ok {
		return netip.Addr{}, fmt.Errorf("unexpected reply address type %T", raddr)
	}
	ip, ok := netip.AddrFromSlice(udp.IP)
	if !ok {
		return netip.Addr{}, fmt.Errorf("invalid reply address %v", udp.IP)
	}
	return ip.Unmap(), nil
}

func sendProbe(conn net.PacketConn, target netip.Addr, cfg Config) error {
	dst := &net.UDPAddr{IP: target.AsSlice(), Port: cfg.Port}

	cfg.Logger.Log(protolog.Event{
		Time:      time.Now(),
		Direction: protolog.DirectionOut,
		Discovery: &protolog.DiscoveryEvent{Target: dst.String(), Payload: lednet.ProbeMessage},
	})

	n, err := conn.WriteTo([]byte(lednet.ProbeMessage), dst)
	if err != nil {
		return fmt.Errorf("send probe to %s: %w", dst, err)
	}
	if n != len(lednet.ProbeMessage) {
		return fmt.Errorf("short probe write to %s: %d of %d bytes", dst, n, len(lednet.ProbeMessage))
	}
	return nil
}

// broadcastAddrs returns the broadcast address of every up,
// broadcast-capable IPv4 interface.
func broadcastAddrs() ([]netip.Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	var addrs []netip.Addr
	for _, ifi := range ifaces {
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagBroadcast == 0 {
			continue
		}
		ifAddrs, err := ifi.Addrs()
		if err != nil {
			continue
		}
		for _, a := range ifAddrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if bcast, ok := broadcastOf(ipnet); ok {
				addrs = append(addrs, bcast)
			}
		}
	}
	return addrs, nil
}

// broadcastOf computes the directed broadcast address of an IPv4 network.
func broadcastOf(ipnet *net.IPNet) (netip.Addr, bool) {
	ip4 := ipnet.IP.To4()
	if ip4 == nil {
		return netip.Addr{}, false
	}
	mask := ipnet.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return netip.Addr{}, false
	}

	var b [4]byte
	for i := range b {
		b[i] = ip4[i] | ^mask[i]
	}
	return netip.AddrFrom4(b), true
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
