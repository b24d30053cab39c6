// superkey-wav renders Morse text to a WAV file using the exact element
// timing the firmware would key, so a rendered file is also a timing
// reference for listening tests.
//
//	superkey-wav -wpm 20 -o cq.wav "cq cq de k1abc"
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"superkey/core"
)

func main() {
	wpm := flag.Float64("wpm", 20, "keying speed in words per minute")
	freq := flag.Float64("freq", 700, "tone frequency in Hz")
	rate := flag.Int("rate", 44100, "sample rate")
	out := flag.String("o", "out.wav", "output file")
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if text == "" {
		fmt.Fprintln(os.Stderr, "superkey-wav: no text given")
		os.Exit(1)
	}
	if *wpm < float64(core.WPMMin) || *wpm > float64(core.WPMMax) {
		fmt.Fprintf(os.Stderr, "superkey-wav: wpm must be between %g and %g\n",
			float64(core.WPMMin), float64(core.WPMMax))
		os.Exit(1)
	}

	var elements []core.Element
	for i := 0; i < len(text); i++ {
		var ok bool
		elements, ok = core.AppendElements(elements, text[i])
		if !ok {
			fmt.Fprintf(os.Stderr, "superkey-wav: cannot encode %q\n", text[i])
			os.Exit(1)
		}
	}

	ticks := core.TicksForWPM(core.WPM(*wpm), core.DefaultElementScales())
	samples := render(elements, ticks, *rate, *freq)

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "superkey-wav: %v\n", err)
		os.Exit(1)
	}
	enc := wav.NewEncoder(f, *rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: *rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		fmt.Fprintf(os.Stderr, "superkey-wav: %v\n", err)
		os.Exit(1)
	}
	if err := enc.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "superkey-wav: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "superkey-wav: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d elements, %.2fs\n", *out, len(elements),
		float64(len(samples))/float64(*rate))
}

// render lays the elements out on a timeline the same way the keyer does:
// every keyed element is followed by an inter-element space, and explicit
// space elements only add the portion of their gap not already covered.
func render(elements []core.Element, ticks core.ElementTicks, rate int, freq float64) []int {
	var samples []int
	afterKeyed := false
	prevWasLetterSpace := false

	for _, el := range elements {
		if el.Keyed() {
			samples = appendTone(samples, rate, freq, int(ticks[el]))
			samples = appendSilence(samples, rate, int(ticks[core.ElementElementSpace]))
			afterKeyed = true
			prevWasLetterSpace = false
			continue
		}
		gap := int(ticks[el])
		if afterKeyed {
			gap -= int(ticks[core.ElementElementSpace])
		}
		if prevWasLetterSpace {
			gap -= int(ticks[core.ElementLetterSpace]) - int(ticks[core.ElementElementSpace])
		}
		if gap > 0 {
			samples = appendSilence(samples, rate, gap)
		}
		// afterKeyed stays set through a chain of spaces: the inter-element
		// space emitted after the last tone is credited against every one.
		prevWasLetterSpace = el == core.ElementLetterSpace
	}
	return samples
}

func appendTone(samples []int, rate int, freq float64, ms int) []int {
	n := rate * ms / 1000
	// 5ms raised-cosine edges keep the keying clicks out of the audio.
	edge := rate * 5 / 1000
	if edge*2 > n {
		edge = n / 2
	}
	for i := 0; i < n; i++ {
		amp := 0.6
		if i < edge {
			amp *= 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(edge)))
		} else if i >= n-edge {
			amp *= 0.5 * (1 - math.Cos(math.Pi*float64(n-1-i)/float64(edge)))
		}
		v := amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		samples = append(samples, int(v*32767))
	}
	return samples
}

func appendSilence(samples []int, rate, ms int) []int {
	n := rate * ms / 1000
	for i := 0; i < n; i++ {
		samples = append(samples, 0)
	}
	return samples
}
