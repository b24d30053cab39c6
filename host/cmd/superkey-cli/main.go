// superkey-cli talks to a keyer over its binary interface port.
//
// One-shot usage:
//
//	superkey-cli -device /dev/ttyACM0 -wpm 25
//	superkey-cli -device /dev/ttyACM0 -send "cq cq de k1abc"
//
// With no action flags it drops into an interactive shell.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"superkey/host/superkey"
)

func main() {
	device := flag.String("device", "/dev/ttyACM0", "serial device of the interface port")
	baud := flag.Int("baud", 115200, "baud rate")
	wpm := flag.Float64("wpm", 0, "set keying speed and exit")
	send := flag.String("send", "", "key the given text and exit")
	playMsg := flag.Int("play", -1, "play the given quick message slot and exit")
	panicKey := flag.Bool("panic", false, "release the key output and exit")
	version := flag.Bool("version", false, "print firmware version and exit")
	flag.Parse()

	client, err := superkey.Dial(*device, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "superkey-cli: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "superkey-cli: no response from device: %v\n", err)
		os.Exit(1)
	}

	oneShot := false
	fail := func(err error) {
		fmt.Fprintf(os.Stderr, "superkey-cli: %v\n", err)
		os.Exit(1)
	}

	if *panicKey {
		oneShot = true
		if err := client.Panic(); err != nil {
			fail(err)
		}
	}
	if *version {
		oneShot = true
		v, err := client.Version()
		if err != nil {
			fail(err)
		}
		fmt.Println(v)
	}
	if *wpm != 0 {
		oneShot = true
		applied, err := client.SetWPM(float32(*wpm))
		if err != nil {
			fail(err)
		}
		fmt.Printf("wpm set to %g\n", applied)
	}
	if *send != "" {
		oneShot = true
		n, err := client.Autokey(*send)
		if err != nil {
			fail(err)
		}
		fmt.Printf("queued %d of %d characters\n", n, len(*send))
	}
	if *playMsg >= 0 {
		oneShot = true
		if err := client.PlayQuickMsg(uint8(*playMsg)); err != nil {
			fail(err)
		}
	}
	if oneShot {
		return
	}

	interactive(client)
}

func interactive(client *superkey.Client) {
	fmt.Println("superkey-cli interactive mode, 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		runCommand(client, strings.Fields(scanner.Text()))
		fmt.Print("> ")
	}
}

func runCommand(client *superkey.Client, args []string) {
	if len(args) == 0 {
		return
	}
	report := func(err error) {
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}

	switch args[0] {
	case "help":
		fmt.Print(`commands:
  ping                  check the device is alive
  version               firmware version
  wpm [value]           get or set speed
  scale <el> [value]    get or set element scale (0=dot 1=dash 2=espace 3=lspace 4=wspace)
  invert [on|off]       swap paddles
  buzzer [on|off]       side tone enable
  freq [hz]             side tone frequency
  trainer [on|off]      suppress key output
  send <text>           key text
  pending               queued element count
  msg <slot> [text]     get or set a quick message
  msgclear <slot>       empty a quick message slot
  play <slot>           key a quick message
  panic                 release the key output
  defaults              restore factory configuration
  quit
`)

	case "quit", "exit":
		os.Exit(0)

	case "ping":
		if err := client.Ping(); err != nil {
			report(err)
		} else {
			fmt.Println("ok")
		}

	case "version":
		v, err := client.Version()
		if err != nil {
			report(err)
			return
		}
		fmt.Println(v)

	case "wpm":
		if len(args) == 1 {
			v, err := client.WPM()
			if err != nil {
				report(err)
				return
			}
			fmt.Printf("%g\n", v)
			return
		}
		f, err := strconv.ParseFloat(args[1], 32)
		if err != nil {
			fmt.Println("bad value")
			return
		}
		applied, err := client.SetWPM(float32(f))
		if err != nil {
			report(err)
			return
		}
		fmt.Printf("%g\n", applied)

	case "scale":
		if len(args) < 2 {
			fmt.Println("usage: scale <element> [value]")
			return
		}
		el, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("bad element")
			return
		}
		if len(args) == 2 {
			v, err := client.ElementScale(uint8(el))
			if err != nil {
				report(err)
				return
			}
			fmt.Printf("%g\n", v)
			return
		}
		f, err := strconv.ParseFloat(args[2], 32)
		if err != nil {
			fmt.Println("bad value")
			return
		}
		applied, err := client.SetElementScale(uint8(el), float32(f))
		if err != nil {
			report(err)
			return
		}
		fmt.Printf("%g\n", applied)

	case "invert":
		if len(args) == 1 {
			v, err := client.InvertPaddles()
			if err != nil {
				report(err)
				return
			}
			fmt.Println(onOff(v))
			return
		}
		report(client.SetInvertPaddles(args[1] == "on"))

	case "buzzer":
		if len(args) == 1 {
			v, err := client.BuzzerEnabled()
			if err != nil {
				report(err)
				return
			}
			fmt.Println(onOff(v))
			return
		}
		report(client.SetBuzzerEnabled(args[1] == "on"))

	case "freq":
		if len(args) == 1 {
			v, err := client.BuzzerFrequency()
			if err != nil {
				report(err)
				return
			}
			fmt.Printf("%dhz\n", v)
			return
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("bad value")
			return
		}
		applied, err := client.SetBuzzerFrequency(uint16(n))
		if err != nil {
			report(err)
			return
		}
		fmt.Printf("%dhz\n", applied)

	case "trainer":
		if len(args) == 1 {
			v, err := client.TrainerMode()
			if err != nil {
				report(err)
				return
			}
			fmt.Println(onOff(v))
			return
		}
		report(client.SetTrainerMode(args[1] == "on"))

	case "send":
		if len(args) < 2 {
			fmt.Println("usage: send <text>")
			return
		}
		text := strings.Join(args[1:], " ")
		n, err := client.Autokey(text)
		if err != nil {
			report(err)
			return
		}
		fmt.Printf("queued %d of %d characters\n", n, len(text))

	case "pending":
		n, err := client.AutokeyPending()
		if err != nil {
			report(err)
			return
		}
		fmt.Println(n)

	case "msg":
		if len(args) < 2 {
			fmt.Println("usage: msg <slot> [text]")
			return
		}
		slot, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("bad slot")
			return
		}
		if len(args) == 2 {
			msg, err := client.QuickMsg(uint8(slot))
			if err != nil {
				report(err)
				return
			}
			fmt.Println(msg)
			return
		}
		report(client.SetQuickMsg(uint8(slot), strings.Join(args[2:], " ")))

	case "msgclear":
		if len(args) < 2 {
			fmt.Println("usage: msgclear <slot>")
			return
		}
		slot, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("bad slot")
			return
		}
		report(client.InvalidateQuickMsg(uint8(slot)))

	case "play":
		if len(args) < 2 {
			fmt.Println("usage: play <slot>")
			return
		}
		slot, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("bad slot")
			return
		}
		report(client.PlayQuickMsg(uint8(slot)))

	case "panic":
		report(client.Panic())

	case "defaults":
		report(client.RestoreDefaults())

	default:
		fmt.Println("unknown command, try help")
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
