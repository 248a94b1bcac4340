package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/dchest/uniuri"
	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/homectl/homectl-go/internal/config"
	"github.com/homectl/homectl-go/pkg/command"
	"github.com/homectl/homectl-go/pkg/device"
	"github.com/homectl/homectl-go/pkg/discovery"
	"github.com/homectl/homectl-go/pkg/lednet"
)

// connectTimeout bounds the initial broker handshake.
const connectTimeout = 10 * time.Second

// newClient is swapped out by tests.
var newClient = paho.NewClient

// Bridge connects the local light network to an MQTT broker.
type Bridge struct {
	cfg    *config.Config
	log    *slog.Logger
	client paho.Client

	// scan is the discovery sweep; replaceable for tests.
	scan func() ([]*lednet.Device, error)

	mu      sync.RWMutex
	devices map[netip.Addr]device.Device
}

// New builds a bridge from the configuration. Run does the connecting.
func New(cfg *config.Config, log *slog.Logger) *Bridge {
	b := &Bridge{
		cfg:     cfg,
		log:     log,
		devices: make(map[netip.Addr]device.Device),
	}
	b.scan = func() ([]*lednet.Device, error) {
		return discovery.Scan(discovery.Config{
			ReadTimeout:  cfg.Discovery.ReadTimeout,
			ScanDeadline: cfg.Discovery.ScanDeadline,
			MaxDevices:   cfg.Discovery.MaxDevices,
		})
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Bridge.BrokerURI).
		SetClientID("homectl_" + uniuri.New()).
		SetUsername(cfg.Bridge.Username).
		SetPassword(cfg.Bridge.Password).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(paho.Client) {
			log.Info("connected to mqtt broker", "uri", cfg.Bridge.BrokerURI)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn("mqtt connection lost", "error", err)
		})
	b.client = newClient(opts)

	return b
}

// Run connects to the broker, subscribes to the command topic and keeps
// rediscovering devices until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	token := b.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect to %s: timeout", b.cfg.Bridge.BrokerURI)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", b.cfg.Bridge.BrokerURI, err)
	}
	defer b.client.Disconnect(250)

	setTopic := b.cfg.Bridge.TopicPrefix + "/set/+"
	if token := b.client.Subscribe(setTopic, 1, b.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", setTopic, token.Error())
	}
	defer b.client.Unsubscribe(setTopic)
	b.log.Info("subscribed", "topic", setTopic)

	b.discover()

	ticker := time.NewTicker(b.cfg.Bridge.DiscoverInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.discover()
		case <-ctx.Done():
			b.log.Info("bridge shutting down")
			return nil
		}
	}
}

// Device returns the known device at an address, if any.
func (b *Bridge) Device(addr netip.Addr) (device.Device, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	dev, ok := b.devices[addr]
	return dev, ok
}

// discover sweeps the network and publishes the state of everything found.
func (b *Bridge) discover() {
	devices, err := b.scan()
	if err != nil {
		discoveryRuns.WithLabelValues("error").Inc()
		b.log.Warn("discovery sweep failed", "error", err)
		return
	}
	discoveryRuns.WithLabelValues("ok").Inc()

	b.mu.Lock()
	for _, dev := range devices {
		b.devices[dev.Address()] = dev
	}
	known := len(b.devices)
	b.mu.Unlock()
	devicesKnown.Set(float64(known))

	b.log.Info("discovery sweep finished", "found", len(devices), "known", known)
	for _, dev := range devices {
		b.publishStatus(dev)
	}
}

// handleMessage applies one set payload to the addressed device.
func (b *Bridge) handleMessage(_ paho.Client, msg paho.Message) {
	addr, err := b.deviceAddr(msg.Topic())
	if err != nil {
		b.log.Warn("ignoring message", "topic", msg.Topic(), "error", err)
		return
	}

	dev, ok := b.Device(addr)
	if !ok {
		b.log.Warn("no such device", "addr", addr)
		return
	}

	cmds, err := parseSetPayload(msg.Payload())
	if err != nil {
		b.log.Warn("bad payload", "addr", addr, "error", err)
		return
	}

	for _, cmd := range cmds {
		if _, err := command.Exec(dev, cmd); err != nil {
			outcome := "error"
			if errors.Is(err, command.ErrNotSupported) {
				outcome = "unsupported"
			}
			commandsApplied.WithLabelValues(cmd.Op.String(), outcome).Inc()
			b.log.Warn("command failed", "addr", addr, "op", cmd.Op, "error", err)
			return
		}
		commandsApplied.WithLabelValues(cmd.Op.String(), "ok").Inc()
	}

	b.publishStatus(dev)
}

// deviceAddr extracts the device IP from a <prefix>/set/<ip> topic.
func (b *Bridge) deviceAddr(topic string) (netip.Addr, error) {
	prefix := b.cfg.Bridge.TopicPrefix + "/set/"
	rest, ok := strings.CutPrefix(topic, prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return netip.Addr{}, fmt.Errorf("topic %q does not match %s<ip>", topic, prefix)
	}
	addr, err := netip.ParseAddr(rest)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("topic %q: %w", topic, err)
	}
	return addr, nil
}

func (b *Bridge) publishStatus(dev device.Device) {
	payload, err := statusFor(dev)
	if err != nil {
		b.log.Warn("encode status", "addr", dev.Address(), "error", err)
		return
	}

	topic := fmt.Sprintf("%s/status/%s", b.cfg.Bridge.TopicPrefix, dev.Address())
	if token := b.client.Publish(topic, 1, true, payload); token.Wait() && token.Error() != nil {
		b.log.Warn("publish status", "topic", topic, "error", token.Error())
	}
}
