//go:build rp2040

// Firmware entry point for RP2040 boards (Raspberry Pi Pico pinout).
//
// Pin assignment:
//
//	GPIO2..GPIO9   TRS jack contacts (jack 0 tip/ring .. jack 3 tip/ring)
//	GPIO15         side tone buzzer (PWM)
//	GPIO16         key LED
//	GPIO25         status LED (onboard)
//	USB CDC        binary interface port
//	UART0 (0/1)    debug console, 115200 baud
package main

import (
	"machine"
	"time"

	"superkey/console"
	"superkey/core"
	"superkey/intf"
)

func main() {
	// Give USB CDC a moment to enumerate before anything talks.
	time.Sleep(500 * time.Millisecond)

	gpio := &pinDriver{}
	tone, err := newToneDriver(machine.GPIO15)
	if err != nil {
		hang()
	}

	dev, err := core.NewDevice(core.Hardware{
		GPIO: gpio,
		Tone: tone,
		// TODO: back this with the RP2040's flash so configuration
		// survives power cycles; machine.Flash plus a wear-leveling
		// page rotation would do.
		Storage: core.NewMemBackend(4096),
		JackPins: [core.PinCount]core.GPIOPin{
			core.GPIOPin(machine.GPIO2), core.GPIOPin(machine.GPIO3),
			core.GPIOPin(machine.GPIO4), core.GPIOPin(machine.GPIO5),
			core.GPIOPin(machine.GPIO6), core.GPIOPin(machine.GPIO7),
			core.GPIOPin(machine.GPIO8), core.GPIOPin(machine.GPIO9),
		},
		LEDPins: [core.LEDCount]core.GPIOPin{
			core.GPIOPin(machine.GPIO25),
			core.GPIOPin(machine.GPIO16),
		},
	})
	if err != nil {
		hang()
	}
	gpio.sys = dev.Sys

	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: 115200, TX: machine.UART0_TX_PIN, RX: machine.UART0_RX_PIN})

	intfSerial := &serialDriver{port: machine.Serial, sys: dev.Sys, event: core.EventIntfRxComplete}
	consSerial := &serialDriver{port: uart, sys: dev.Sys, event: core.EventConsoleRxComplete}

	port := intf.New(dev, intfSerial)
	cons := console.New(dev, consSerial)

	dev.Handle(core.EventIntfRxComplete, port.PumpRx)
	dev.Handle(core.EventConsoleRxComplete, cons.PumpRx)
	dev.AddTask(50*core.TicksPerMillisecond, port.Tick)

	go tickLoop(dev.Sys)
	go intfSerial.poll()
	go consSerial.poll()

	dev.Run()
}

// tickLoop advances the system clock at a fixed 1 ms period. Sleeping until
// an absolute deadline keeps the period drift-free even when a step runs
// long.
func tickLoop(sys *core.Sys) {
	next := time.Now()
	for {
		next = next.Add(time.Millisecond)
		time.Sleep(time.Until(next))
		sys.AdvanceTick()
	}
}

func hang() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.Set(!led.Get())
		time.Sleep(100 * time.Millisecond)
	}
}
