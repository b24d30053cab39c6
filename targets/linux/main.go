//go:build linux

// Firmware entry point for Linux single-board computers (Raspberry Pi and
// friends) using the GPIO character device. The debug console runs on
// stdin/stdout; the binary interface port is optional and attaches to a
// serial device.
//
// Default pin assignment mirrors the RP2040 target:
//
//	offsets 2..9   TRS jack contacts (jack 0 tip/ring .. jack 3 tip/ring)
//	offset 15      side tone (drives an external active buzzer)
//	offset 16      key LED
//	offset 25      status LED
package main

import (
	"flag"
	"fmt"
	"os"

	"superkey/console"
	"superkey/core"
	"superkey/host/serial"
	"superkey/intf"
)

func main() {
	chipName := flag.String("chip", "gpiochip0", "GPIO character device")
	storagePath := flag.String("storage", "superkey-storage.bin", "persistent storage file")
	intfDevice := flag.String("intf", "", "serial device for the interface port (optional)")
	flag.Parse()

	gpio, err := newChipDriver(*chipName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "superkey: open %s: %v\n", *chipName, err)
		os.Exit(1)
	}
	defer gpio.Close()

	backend, err := newFileBackend(*storagePath, 4096)
	if err != nil {
		fmt.Fprintf(os.Stderr, "superkey: storage %s: %v\n", *storagePath, err)
		os.Exit(1)
	}

	dev, err := core.NewDevice(core.Hardware{
		GPIO:    gpio,
		Tone:    &gpioTone{gpio: gpio, pin: 15},
		Storage: backend,
		JackPins: [core.PinCount]core.GPIOPin{
			2, 3, 4, 5, 6, 7, 8, 9,
		},
		LEDPins: [core.LEDCount]core.GPIOPin{25, 16},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "superkey: %v\n", err)
		os.Exit(1)
	}
	gpio.sys = dev.Sys

	cons := console.New(dev, newStreamDriver(os.Stdin, os.Stdout, dev.Sys, core.EventConsoleRxComplete))
	dev.Handle(core.EventConsoleRxComplete, cons.PumpRx)

	if *intfDevice != "" {
		port, err := serial.Open(serial.DefaultConfig(*intfDevice))
		if err != nil {
			fmt.Fprintf(os.Stderr, "superkey: interface port %s: %v\n", *intfDevice, err)
			os.Exit(1)
		}
		drv := newStreamDriver(port, port, dev.Sys, core.EventIntfRxComplete)
		p := intf.New(dev, drv)
		dev.Handle(core.EventIntfRxComplete, p.PumpRx)
		dev.AddTask(50*core.TicksPerMillisecond, p.Tick)
	}

	go tickLoop(dev.Sys)

	fmt.Println("superkey " + core.VersionString())
	fmt.Print("> ")
	dev.Run()
}
