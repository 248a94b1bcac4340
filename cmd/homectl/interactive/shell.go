// Package interactive provides the interactive shell for homectl.
package interactive

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/homectl/homectl-go/pkg/color"
	"github.com/homectl/homectl-go/pkg/command"
	"github.com/homectl/homectl-go/pkg/device"
	"github.com/homectl/homectl-go/pkg/discovery"
)

// Shell is a line-oriented control loop over discovered lights.
type Shell struct {
	cfg discovery.Config

	// current is the light commands without an explicit address go to.
	current device.Device
	known   map[netip.Addr]device.Device
}

// New creates a shell. Run does the prompting.
func New(cfg discovery.Config) *Shell {
	return &Shell{
		cfg:   cfg,
		known: make(map[netip.Addr]device.Device),
	}
}

// Run reads commands until quit or EOF.
func (s *Shell) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "homectl> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("create readline: %w", err)
	}
	defer rl.Close()

	s.printHelp(rl)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			// EOF
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return nil
		}

		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}

		switch cmd := strings.ToLower(fields[0]); cmd {
		case "help", "?":
			s.printHelp(rl)
		case "quit", "exit", "q":
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return nil
		default:
			if err := s.dispatch(rl, cmd, fields[1:]); err != nil {
				fmt.Fprintf(rl.Stdout(), "Error: %v\n", err)
			}
		}
	}
}

func (s *Shell) printHelp(rl *readline.Instance) {
	fmt.Fprintln(rl.Stdout(), `
Commands:
  discover               Scan the network and list supported lights
  use <ip>               Select the light further commands apply to
  state                  Print the selected light's state
  on | off               Switch power
  rgb <color> [percent]  Set color ("#rrggbb" or "r,g,b") and brightness
  cct <kelvin> [percent] Set white temperature and brightness
  brightness <percent>   Set brightness, keeping the current color
  help                   Show this help
  quit                   Exit`)
}

func (s *Shell) dispatch(rl *readline.Instance, cmd string, args []string) error {
	switch cmd {
	case "discover":
		return s.cmdDiscover(rl)
	case "use":
		return s.cmdUse(rl, args)
	case "state":
		dev, err := s.selected()
		if err != nil {
			return err
		}
		if err := dev.Refresh(); err != nil {
			return err
		}
		fmt.Fprintln(rl.Stdout(), dev)
		return nil
	case "on", "off":
		dev, err := s.selected()
		if err != nil {
			return err
		}
		c := command.On()
		if cmd == "off" {
			c = command.Off()
		}
		_, err = command.Exec(dev, c)
		return err
	case "rgb":
		return s.cmdRGB(args)
	case "cct":
		return s.cmdCCT(args)
	case "brightness":
		dev, err := s.selected()
		if err != nil {
			return err
		}
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
		return fmt.Errorf("unknown command %q (type 'help' for commands)", cmd)
	}
}

func (s *Shell) cmdDiscover(rl *readline.Instance) error {
	fmt.Fprintln(rl.Stdout(), "Scanning...")
	devices, err := discovery.Scan(s.cfg)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(rl.Stdout(), "No supported devices found")
		return nil
	}
	for _, dev := range devices {
		s.known[dev.Address()] = dev
		fmt.Fprintf(rl.Stdout(), "  %s\n", dev)
	}
	if s.current == nil && len(devices) == 1 {
		s.current = devices[0]
		fmt.Fprintf(rl.Stdout(), "Selected %s\n", s.current.Address())
	}
	return nil
}

func (s *Shell) cmdUse(rl *readline.Instance, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("use: device address required")
	}
	addr, err := netip.ParseAddr(args[0])
	if err != nil {
		return fmt.Errorf("bad device address %q: %w", args[0], err)
	}

	if dev, ok := s.known[addr]; ok {
		s.current = dev
		return nil
	}

	dev, err := discovery.Resolve(addr, s.cfg)
	if err != nil {
		return err
	}
	if dev == nil {
		return fmt.Errorf("no supported device at %s", addr)
	}
	s.known[addr] = dev
	s.current = dev
	fmt.Fprintf(rl.Stdout(), "Selected %s\n", dev)
	return nil
}

func (s *Shell) cmdRGB(args []string) error {
	dev, err := s.selected()
	if err != nil {
		return err
	}
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
}

func (s *Shell) cmdCCT(args []string) error {
	dev, err := s.selected()
	if err != nil {
		return err
	}
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
}

func (s *Shell) selected() (device.Device, error) {
	if s.current == nil {
		return nil, fmt.Errorf("no light selected; run 'discover' or 'use <ip>'")
	}
	return s.current, nil
}

func parsePercent(arg string) (float64, error) {
	p, err := strconv.Atoi(arg)
	if err != nil || p < 0 || p > 100 {
		return 0, fmt.Errorf("bad brightness %q: want 0..100", arg)
	}
	return float64(p) / 100, nil
}
