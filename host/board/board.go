// Package board loads JSON board profiles for the host tool.
package board

import (
	"encoding/json"
	"fmt"

	"blhal/core"
)

// Profile describes a BL602 board: its crystal and the clock targets the
// firmware freezes at boot.
type Profile struct {
	Name string `json:"name"`

	// XtalHz is the crystal frequency; 0 runs from RC32M only
	XtalHz uint32 `json:"xtal_hz"`

	// Sysclk is one of "rc32m", "pll48m", "pll120m", "pll160m", "pll192m"
	Sysclk string `json:"sysclk"`

	UARTClkHz uint32 `json:"uart_clk_hz,omitempty"`
	SPIClkHz  uint32 `json:"spi_clk_hz,omitempty"`

	Console ConsoleConfig `json:"console"`
}

// ConsoleConfig is the UART0 debug console.
type ConsoleConfig struct {
	TXPin uint8  `json:"tx_pin"`
	RXPin uint8  `json:"rx_pin"`
	Baud  uint32 `json:"baud"`
}

var sysclkNames = map[string]core.SysclkFreq{
	"rc32m":   core.SysclkRC32M,
	"pll48m":  core.SysclkPLL48M,
	"pll120m": core.SysclkPLL120M,
	"pll160m": core.SysclkPLL160M,
	"pll192m": core.SysclkPLL192M,
}

// LoadConfig parses a JSON profile and returns it with defaults applied
func LoadConfig(jsonData []byte) (*Profile, error) {
	var p Profile

	if err := json.Unmarshal(jsonData, &p); err != nil {
		return nil, err
	}

	applyDefaults(&p)

	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// applyDefaults fills in missing values with the values of a stock DT-BL10
// module
func applyDefaults(p *Profile) {
	if p.Name == "" {
		p.Name = "bl602"
	}
	if p.Sysclk == "" {
		if p.XtalHz != 0 {
			p.Sysclk = "pll160m"
		} else {
			p.Sysclk = "rc32m"
		}
	}

	// Default console on the boot ROM pins
	if p.Console.TXPin == 0 && p.Console.RXPin == 0 {
		p.Console.TXPin = 16
		p.Console.RXPin = 7
	}
	if p.Console.Baud == 0 {
		p.Console.Baud = 115200
	}
}

func (p *Profile) validate() error {
	if _, ok := sysclkNames[p.Sysclk]; !ok {
		return fmt.Errorf("profile %s: unknown sysclk %q", p.Name, p.Sysclk)
	}
	if p.Console.TXPin >= core.NumPins || p.Console.RXPin >= core.NumPins {
		return fmt.Errorf("profile %s: console pins %d/%d: %w", p.Name, p.Console.TXPin, p.Console.RXPin, core.ErrInvalidPin)
	}
	if p.Console.TXPin%8 == p.Console.RXPin%8 {
		return fmt.Errorf("profile %s: console pins %d and %d share UART signal %d",
			p.Name, p.Console.TXPin, p.Console.RXPin, p.Console.TXPin%8)
	}
	return nil
}

// Builder returns the clock builder the profile describes. Freezing it may
// still panic when a requested frequency cannot be reached exactly.
func (p *Profile) Builder() core.Strict {
	return core.NewStrict().
		UsePLL(p.XtalHz).
		SysClk(sysclkNames[p.Sysclk]).
		UARTClk(p.UARTClkHz).
		SPIClk(p.SPIClkHz)
}

// DefaultProfile returns the profile of a DT-BL10 module: 40 MHz crystal,
// 160 MHz core clock and the console on GPIO16/GPIO7.
func DefaultProfile() *Profile {
	return &Profile{
		Name:    "dt-bl10",
		XtalHz:  40_000_000,
		Sysclk:  "pll160m",
		Console: ConsoleConfig{TXPin: 16, RXPin: 7, Baud: 115200},
	}
}
