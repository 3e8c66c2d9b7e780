package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"blhal/core"
	"blhal/host/board"
	"blhal/mmio"
)

var (
	clocksOpts = struct {
		profile string
		xtal    uint32
		sysclk  string
		uart    uint32
		spi     uint32
		noXtal  bool
		writes  bool
	}{}

	clocksCmd = &cobra.Command{
		Use:   "clocks",
		Short: "Freeze a clock configuration on a simulated BL602",
		Long: "Run the clock freeze sequence of a board profile against a simulated register file " +
			"and print the resulting clock tree, the console setup and, optionally, every register write.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			return runClocks(cmd.OutOrStdout(), p, clocksOpts.noXtal, clocksOpts.writes || verbose)
		},
	}
)

func init() {
	clocksCmd.Flags().StringVarP(&clocksOpts.profile, "profile", "p", "", "Board profile JSON file (default: DT-BL10 module)")
	clocksCmd.Flags().Uint32Var(&clocksOpts.xtal, "xtal", 0, "Crystal frequency in Hz, 0 for RC32M only")
	clocksCmd.Flags().StringVar(&clocksOpts.sysclk, "sysclk", "", "System clock: rc32m, pll48m, pll120m, pll160m or pll192m")
	clocksCmd.Flags().Uint32Var(&clocksOpts.uart, "uart", 0, "UART clock in Hz")
	clocksCmd.Flags().Uint32Var(&clocksOpts.spi, "spi", 0, "SPI clock in Hz")
	clocksCmd.Flags().BoolVar(&clocksOpts.noXtal, "no-xtal", false, "Simulate a crystal that never becomes ready")
	clocksCmd.Flags().BoolVarP(&clocksOpts.writes, "writes", "w", false, "Print the register write log")

	rootCmd.AddCommand(clocksCmd)
}

// loadProfile reads the profile file, if any, and applies flag overrides.
func loadProfile(cmd *cobra.Command) (*board.Profile, error) {
	p := board.DefaultProfile()
	if clocksOpts.profile != "" {
		data, err := os.ReadFile(clocksOpts.profile)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile: %w", err)
		}
		if p, err = board.LoadConfig(data); err != nil {
			return nil, fmt.Errorf("failed to parse profile %s: %w", clocksOpts.profile, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("xtal") {
		p.XtalHz = clocksOpts.xtal
		if p.XtalHz == 0 && !flags.Changed("sysclk") {
			p.Sysclk = "rc32m"
		}
	}
	if flags.Changed("sysclk") {
		p.Sysclk = clocksOpts.sysclk
	}
	if flags.Changed("uart") {
		p.UARTClkHz = clocksOpts.uart
	}
	if flags.Changed("spi") {
		p.SPIClkHz = clocksOpts.spi
	}
	return p, nil
}

// guard runs fn and turns a HAL panic carrying an error into a return value.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	fn()
	return nil
}

func freeze(b core.Strict, cfg *core.ClkCfg) (clocks core.Clocks, err error) {
	perr := guard(func() {
		clocks, err = b.Freeze(cfg)
	})
	if perr != nil {
		return core.Clocks{}, perr
	}
	return clocks, err
}

// runClocks freezes the profile on a fresh simulated chip and reports the
// outcome to w. A crystal timeout falls back to RC32M like the firmware does.
func runClocks(w io.Writer, p *board.Profile, xtalDead, showWrites bool) error {
	sim := mmio.NewSim()
	if !xtalDead {
		sim.OnLoad(core.AON_TSEN, func(v uint32) uint32 { return v | core.AON_TSEN_XTAL_RDY })
	}
	periph := core.SimPeripherals(sim, core.NewSimHart())

	core.ClearTrace()
	clocks, err := freeze(p.Builder(), periph.ClkCfg)
	if errors.Is(err, core.ErrXtalTimeout) {
		fmt.Fprintln(w, "crystal not ready, falling back to RC32M")
		clocks, err = freeze(core.NewStrict(), periph.ClkCfg)
	}
	if err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}

	fmt.Fprintf(w, "profile %s\n", p.Name)
	fmt.Fprintf(w, "  %s\n", clocks)

	con := p.Console
	err = guard(func() {
		tx := periph.Pins[con.TXPin].IntoUART()
		rx := periph.Pins[con.RXPin].IntoUART()
		periph.UARTMux[tx.UARTSignal()].Into(core.UART0TX)
		periph.UARTMux[rx.UARTSignal()].Into(core.UART0RX)
		periph.UART0.Configure(clocks, core.UARTConfig{BaudRate: con.Baud})
	})
	if err != nil {
		return fmt.Errorf("profile %s: console at %d baud: %w", p.Name, con.Baud, err)
	}
	fmt.Fprintf(w, "  console uart0 %d baud on GPIO%d (tx) / GPIO%d (rx)\n", con.Baud, con.TXPin, con.RXPin)

	if showWrites {
		fmt.Fprintln(w, "register writes:")
		for i, a := range sim.Writes() {
			fmt.Fprintf(w, "  %4d %-22s 0x%08x\n", i, regName(a.Addr), a.Value)
		}
	}

	core.SetDebugWriter(func(s string) { fmt.Fprintln(w, s) })
	defer core.SetDebugWriter(func(string) {})
	core.DumpTrace()
	return nil
}
