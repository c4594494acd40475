package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bat6/host/config"
	"bat6/host/link"
	"bat6/host/serial"
	"bat6/protocol"
	"bat6/pvmodel"
)

var (
	device     = flag.String("device", "", "Serial device path (overrides the panel file)")
	baud       = flag.Int("baud", 0, "Baud rate (overrides the panel file)")
	parity     = flag.String("parity", "", "Parity: none, even or odd")
	panelFile  = flag.String("config", "", "Panel file (YAML) to load on connect")
	verbose    = flag.Bool("verbose", false, "Echo every command sent")
	batch      = flag.Bool("batch", false, "Load the panel file and exit")
	statusWait = flag.Duration("wait", 200*time.Millisecond, "Time to wait for status after loading")
)

func main() {
	flag.Parse()

	var panels *config.Config
	if *panelFile != "" {
		var err error
		panels, err = config.Load(*panelFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	sc := serialConfig(panels)
	fmt.Printf("Connecting to emulator on %s (protocol v%s)...\n", sc.Device, protocol.Version)
	conn, err := link.Connect(sc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()
	conn.Verbose = *verbose
	conn.Log = func(format string, args ...any) {
		fmt.Printf(format+"\n", args...)
	}

	if panels != nil {
		if err := loadPanels(conn, panels); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		drainStatus(conn, *statusWait)
	}
	if *batch {
		return
	}

	go func() {
		for line := range conn.Lines() {
			fmt.Printf("\n< %s\n> ", line)
		}
	}()

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]

		switch cmd {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "set":
			if err := cmdSet(conn, parts[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "load":
			if panels == nil {
				fmt.Fprintln(os.Stderr, "Error: no panel file given (-config)")
				continue
			}
			if err := loadPanels(conn, panels); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "list":
			listPanels(panels)

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func serialConfig(panels *config.Config) *serial.Config {
	sc := serial.DefaultConfig("/dev/ttyUSB0")
	if panels != nil {
		if panels.Device != "" {
			sc.Device = panels.Device
		}
		if panels.Baud != 0 {
			sc.Baud = panels.Baud
		}
		if panels.Parity != "" {
			sc.Parity = panels.Parity
		}
	}
	if *device != "" {
		sc.Device = *device
	}
	if *baud != 0 {
		sc.Baud = *baud
	}
	if *parity != "" {
		sc.Parity = *parity
	}
	return sc
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  set <model> <param> <value> - Set voc (mV), isc (mA), vt (mV) or g (%)")
	fmt.Println("  load                        - Send every model from the panel file")
	fmt.Println("  list                        - Show the panel file")
	fmt.Println("  help                        - Show this help message")
	fmt.Println("  quit/exit/q                 - Exit the program")
	fmt.Println()
}

func cmdSet(conn *link.Link, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: set <model> <param> <value>")
	}
	model, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid model %q", args[0])
	}
	p, v, err := link.ParseSetting(args[1], args[2])
	if err != nil {
		return err
	}
	if err := conn.SendSetting(model, p, v); err != nil {
		return fmt.Errorf("failed to send %s: %w", p, err)
	}
	return nil
}

func loadPanels(conn *link.Link, panels *config.Config) error {
	for i, m := range panels.Models {
		slot := m.SlotOr(i)
		if err := conn.SendModel(slot, m.Cell()); err != nil {
			return fmt.Errorf("model %q: %w", m.Label(i), err)
		}
		fmt.Printf("Loaded %s into slot %d\n", m.Label(i), slot)
	}
	return nil
}

func listPanels(panels *config.Config) {
	if panels == nil {
		fmt.Println("No panel file loaded")
		return
	}
	for i, m := range panels.Models {
		c := m.Cell()
		fmt.Printf("  %2d %-12s Voc=%sV Isc=%sA Vt=%sV G=%d%%  MPP=%sW\n",
			m.SlotOr(i), m.Label(i), c.Voc, c.Isc, c.Vt, m.Irradiance(), mppPower(c))
	}
	if len(panels.Models) > 1 {
		ch := panels.Series()
		fmt.Printf("  in series:      Voc=%sV Iph=%sA\n", ch.Voc(), ch.PhotoCurrent())
	}
}

func mppPower(c pvmodel.Cell) string {
	v, i := pvmodel.MaxPowerPoint(c)
	return pvmodel.Power(v, i).String()
}

func drainStatus(conn *link.Link, wait time.Duration) {
	for {
		line, err := conn.WaitLine(wait)
		if err != nil {
			return
		}
		fmt.Printf("< %s\n", line)
	}
}
