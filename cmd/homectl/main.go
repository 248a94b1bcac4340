// Command homectl discovers and controls LEDNET WiFi lights from the
// command line.
//
// Usage:
//
//	homectl [flags] <command> [args]
//
// Commands:
//
//	discover                     Scan the network for supported lights
//	state <ip>                   Print the light's current state
//	on <ip>                      Turn the light on
//	off <ip>                     Turn the light off
//	rgb <ip> <color> [percent]   Set color ("#rrggbb" or "r,g,b") and brightness
//	cct <ip> <kelvin> [percent]  Set white temperature and brightness
//	brightness <ip> <percent>    Set brightness, keeping the current color
//	shell                        Start an interactive shell
//
// Flags:
//
//	-config string   Configuration file path
//	-timeout dur     Per-exchange network timeout (default 2s)
//	-debug           Log every protocol exchange
//
// Examples:
//
//	homectl discover
//	homectl rgb 192.168.1.42 "#ff8000" 50
//	homectl cct 192.168.1.42 4000
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"

	"github.com/homectl/homectl-go/cmd/homectl/interactive"
	"github.com/homectl/homectl-go/internal/config"
	"github.com/homectl/homectl-go/pkg/color"
	"github.com/homectl/homectl-go/pkg/command"
	"github.com/homectl/homectl-go/pkg/discovery"
	"github.com/homectl/homectl-go/pkg/lednet"
	"github.com/homectl/homectl-go/pkg/protolog"
)

var (
	configPath = flag.String("config", "", "Configuration file path")
	timeout    = flag.Duration("timeout", lednet.DefaultTimeout, "Per-exchange network timeout")
	debug      = flag.Bool("debug", false, "Log every protocol exchange")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "homectl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: homectl [flags] <command> [args]\n\n"+
			"Commands:\n"+
			"  discover                     Scan the network for supported lights\n"+
			"  state <ip>                   Print the light's current state\n"+
			"  on <ip>                      Turn the light on\n"+
			"  off <ip>                     Turn the light off\n"+
			"  rgb <ip> <color> [percent]   Set color and brightness\n"+
			"  cct <ip> <kelvin> [percent]  Set white temperature and brightness\n"+
			"  brightness <ip> <percent>    Set brightness, keeping the color\n"+
			"  shell                        Start an interactive shell\n\n"+
			"Flags:\n")
	flag.PrintDefaults()
}

func run(verb string, args []string) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	discoverCfg := discovery.Config{
		ReadTimeout:  cfg.Discovery.ReadTimeout,
		ScanDeadline: cfg.Discovery.ScanDeadline,
		MaxDevices:   cfg.Discovery.MaxDevices,
	}
	if *debug {
		logger := protolog.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		discoverCfg.Logger = logger
		discoverCfg.DeviceOptions = []lednet.Option{
			lednet.WithLogger(logger),
			lednet.WithTimeout(*timeout),
		}
	} else {
		discoverCfg.DeviceOptions = []lednet.Option{lednet.WithTimeout(*timeout)}
	}

	switch verb {
	case "discover":
		return cmdDiscover(discoverCfg)
	case "shell":
		return interactive.New(discoverCfg).Run()
	case "state", "on", "off", "rgb", "cct", "brightness":
		if len(args) < 1 {
			return fmt.Errorf("%s: device address required", verb)
		}
		dev, err := resolveDevice(args[0], discoverCfg)
		if err != nil {
			return err
		}
		return cmdDevice(dev, verb, args[1:])
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
}

func cmdDiscover(cfg discovery.Config) error {
	devices, err := discovery.Scan(cfg)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("no supported devices found")
		return nil
	}
	for _, dev := range devices {
		fmt.Println(dev)
	}
	return nil
}

func resolveDevice(arg string, cfg discovery.Config) (*lednet.Device, error) {
	addr, err := netip.ParseAddr(arg)
	if err != nil {
		return nil, fmt.Errorf("bad device address %q: %w", arg, err)
	}
	dev, err := discovery.Resolve(addr, cfg)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, fmt.Errorf("no supported device at %s", addr)
	}
	return dev, nil
}

func cmdDevice(dev *lednet.Device, verb string, args []string) error {
	switch verb {
	case "state":
		fmt.Println(dev)
		return nil
	case "on":
		_, err := command.Exec(dev, command.On())
		return err
	case "off":
		_, err := command.Exec(dev, command.Off())
		return err
	case "rgb":
		if len(args) < 1 {
			return fmt.Errorf("rgb: color required")
		}
		c, err := color.Parse(args[0])
		if err != nil {
			return err
		}
		if len(args) >= 2 {
			b, err := parsePercent(args[1])
			if err != nil {
				return err
			}
			_, err = command.Exec(dev, command.RGBSet(c, b))
			return err
		}
		_, err = command.Exec(dev, command.RGBSetColor(c))
		return err
	case "cct":
		if len(args) < 1 {
			return fmt.Errorf("cct: kelvin required")
		}
		kelvin, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return fmt.Errorf("bad kelvin %q: %w", args[0], err)
		}
		if len(args) >= 2 {
			b, err := parsePercent(args[1])
			if err != nil {
				return err
			}
			_, err = command.Exec(dev, command.CCTSet(uint16(kelvin), b))
			return err
		}
		_, err = command.Exec(dev, command.CCTSetTemperature(uint16(kelvin)))
		return err
	case "brightness":
		if len(args) < 1 {
			return fmt.Errorf("brightness: percent required")
		}
		b, err := parsePercent(args[0])
		if err != nil {
			return err
		}
		_, err = command.Exec(dev, command.RGBSetBrightness(b))
		return err
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
}

// parsePercent converts "0".."100" into a fraction.
func parsePercent(arg string) (float64, error) {
	p, err := strconv.Atoi(arg)
	if err != nil || p < 0 || p > 100 {
		return 0, fmt.Errorf("bad brightness %q: want 0..100", arg)
	}
	return float64(p) / 100, nil
}
