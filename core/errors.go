package core

import "errors"

var (
	// Clock configuration. All but ErrXtalTimeout are fatal and raised with panic.
	ErrUnsupportedXtal      = errors.New("unsupported PLL crystal frequency")
	ErrUnreachableSysclk    = errors.New("unreachable system clock")
	ErrUnreachableUARTClock = errors.New("unreachable uart_clk")
	ErrUnreachableSPIClock  = errors.New("unreachable spi_clk")
	ErrXtalTimeout          = errors.New("crystal ready timeout")
	ErrClockFrozen          = errors.New("clock configuration already frozen")

	// Interrupts
	ErrUnknownInterrupt = errors.New("unknown interrupt has no irq number")
	ErrNotInstalled     = errors.New("trap vector not installed")
	ErrInstalled        = errors.New("trap vector already installed")

	// Peripherals
	ErrPinMode               = errors.New("pin not configured for this operation")
	ErrInvalidPin            = errors.New("invalid pin")
	ErrUnreachableBaud       = errors.New("unreachable baud rate")
	ErrUnreachableFreq       = errors.New("unreachable bus frequency")
	ErrUnreachableTimerClock = errors.New("unreachable timer clock")
	ErrInvalidMatch          = errors.New("timer match register out of range")
	ErrInvalidDuty           = errors.New("invalid duty cycle")

	// Bus transfers. These are returned, not raised.
	ErrRxEmpty     = errors.New("rx fifo empty")
	ErrTxOverflow  = errors.New("tx fifo overflow")
	ErrTxUnderflow = errors.New("tx fifo underflow")
	ErrRxOverflow  = errors.New("rx fifo overflow")
	ErrRxUnderflow = errors.New("rx fifo underflow")
	ErrI2CTimeout  = errors.New("i2c fifo timeout")
	ErrSPITimeout  = errors.New("spi fifo timeout")
	ErrI2CLength   = errors.New("i2c packet length out of range")

	// DMA. Only ErrDMATransfer is returned, the others are raised.
	ErrDMADisabled = errors.New("dma controller disabled")
	ErrDMABusy     = errors.New("dma channel busy")
	ErrDMALength   = errors.New("dma transfer length out of range")
	ErrDMATransfer = errors.New("dma transfer error")
)
