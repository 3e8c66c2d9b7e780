package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"blhal/host/serial"
)

var (
	monitorOpts = struct {
		device string
		baud   int
	}{}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Open the firmware console on UART0",
		Long: "Stream the board's UART0 console and forward typed lines to it. Lines starting with ':' " +
			"are local commands: :baud <rate>, :flush, :help and :quit.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := serial.DefaultConfig(monitorOpts.device)
			cfg.Baud = monitorOpts.baud
			m := newMonitor(cfg, serial.Open, cmd.OutOrStdout())
			return m.run(cmd.InOrStdin())
		},
	}
)

func init() {
	monitorCmd.Flags().StringVarP(&monitorOpts.device, "device", "d", "/dev/ttyUSB0", "Serial device path")
	monitorCmd.Flags().IntVarP(&monitorOpts.baud, "baud", "b", serial.DefaultBaud, "Console baud rate")

	rootCmd.AddCommand(monitorCmd)
}

// lockedWriter serialises console output from the port pump and the
// command loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type openFunc func(*serial.Config) (serial.Port, error)

// monitor is one console session. The port is reopened when the baud rate
// changes.
type monitor struct {
	cfg  serial.Config
	open openFunc
	out  io.Writer

	port serial.Port
	stop chan struct{}
	wg   sync.WaitGroup
}

func newMonitor(cfg *serial.Config, open openFunc, out io.Writer) *monitor {
	return &monitor{cfg: *cfg, open: open, out: &lockedWriter{w: out}}
}

// connect opens the port and starts copying its output.
func (m *monitor) connect() error {
	port, err := m.open(&m.cfg)
	if err != nil {
		return err
	}
	m.port = port
	m.stop = make(chan struct{})
	m.wg.Add(1)
	go m.pump(port, m.stop)
	return nil
}

func (m *monitor) disconnect() error {
	if m.port == nil {
		return nil
	}
	close(m.stop)
	err := m.port.Close()
	m.wg.Wait()
	m.port = nil
	return err
}

// pump copies port output until stop is closed. Read timeouts surface as
// io.EOF and are not fatal.
func (m *monitor) pump(port serial.Port, stop <-chan struct{}) {
	defer m.wg.Done()
	buf := make([]byte, 256)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			m.out.Write(buf[:n])
		}
		select {
		case <-stop:
			return
		default:
		}
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(m.out, "\nconsole read error: %v\n", err)
			return
		}
	}
}

// localCommand is a parsed ':' line.
type localCommand struct {
	name string
	args []string
}

var errNotLocal = errors.New("not a local command")

// parseLocal splits a ':' line into a command and its arguments.
func parseLocal(line string) (localCommand, error) {
	if len(line) == 0 || line[0] != ':' {
		return localCommand{}, errNotLocal
	}
	fields, err := shlex.Split(line[1:])
	if err != nil {
		return localCommand{}, fmt.Errorf("failed to parse %q: %w", line, err)
	}
	if len(fields) == 0 {
		return localCommand{}, fmt.Errorf("empty command")
	}
	return localCommand{name: fields[0], args: fields[1:]}, nil
}

// run forwards lines from in until EOF or :quit.
func (m *monitor) run(in io.Reader) error {
	if err := m.connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer m.disconnect()

	fmt.Fprintf(m.out, "connected to %s at %d baud (:help for commands)\n", m.cfg.Device, m.cfg.Baud)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()

		cmd, err := parseLocal(line)
		if errors.Is(err, errNotLocal) {
			if _, err := io.WriteString(m.port, line+"\r\n"); err != nil {
				return fmt.Errorf("failed to write to console: %w", err)
			}
			continue
		}
		if err != nil {
			fmt.Fprintf(m.out, "error: %v\n", err)
			continue
		}

		quit, err := m.exec(cmd)
		if err != nil {
			fmt.Fprintf(m.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// exec runs a local command and reports whether the session should end.
func (m *monitor) exec(cmd localCommand) (bool, error) {
	switch cmd.name {
	case "quit", "q":
		return true, nil

	case "help", "?":
		fmt.Fprintln(m.out, "local commands:")
		fmt.Fprintln(m.out, "  :baud <rate>  - reopen the port at a new baud rate")
		fmt.Fprintln(m.out, "  :flush        - discard unread console input")
		fmt.Fprintln(m.out, "  :quit / :q    - leave the monitor")
		return false, nil

	case "flush":
		return false, m.port.Flush()

	case "baud":
		if len(cmd.args) != 1 {
			return false, fmt.Errorf("usage: :baud <rate>")
		}
		baud, err := strconv.Atoi(cmd.args[0])
		if err != nil || baud <= 0 {
			return false, fmt.Errorf("invalid baud rate %q", cmd.args[0])
		}
		if err := m.disconnect(); err != nil {
			return false, err
		}
		m.cfg.Baud = baud
		if err := m.connect(); err != nil {
			return true, fmt.Errorf("failed to reopen at %d baud: %w", baud, err)
		}
		fmt.Fprintf(m.out, "reopened at %d baud\n", baud)
		return false, nil
	}
	return false, fmt.Errorf("unknown command :%s (type :help)", cmd.name)
}
