// Device assembly and the main dispatch loop.
// The firmware is a single loop: sleep until something is pending, then run
// the handlers for every pending event. The keyer runs every tick; slower
// housekeeping (configuration flush, pin reconfiguration, the heartbeat)
// runs as periodic tasks counted down in ticks.
package core

// Hardware gathers a target's drivers and pin assignment.
type Hardware struct {
	GPIO    GPIODriver
	Tone    ToneDriver
	Storage StorageBackend

	JackPins [PinCount]GPIOPin
	LEDPins  [LEDCount]GPIOPin
}

// Device wires the firmware modules together and runs the dispatch loop.
type Device struct {
	Sys      *Sys
	Config   *ConfigStore
	IO       *IO
	LEDs     *LEDs
	Buzzer   *Buzzer
	Keyer    *Keyer
	QuickMsg *QuickMsgs

	handlers [eventCount]func()
	tasks    []task
}

type task struct {
	period Tick
	left   Tick
	fn     func(Tick)
}

// keyerOutputs fans the keyer's single keyed flag out to the key line, the
// key LED and the side tone.
type keyerOutputs struct {
	io     *IO
	leds   *LEDs
	buzzer *Buzzer
}

func (o keyerOutputs) SetKeyLine(on bool)   { o.io.SetOutput(PinTypeKeyOutput, on) }
func (o keyerOutputs) SetIndicator(on bool) { o.leds.SetOn(LEDKey, on) }
func (o keyerOutputs) SetSideTone(on bool)  { o.buzzer.SetOn(on) }

// NewDevice builds the firmware from a target's hardware. It installs a
// fail handler that forces the outputs into a safe state before halting.
func NewDevice(hw Hardware) (*Device, error) {
	storage, err := NewStorage(hw.Storage)
	if err != nil {
		return nil, err
	}

	d := &Device{Sys: NewSys()}
	d.Config = NewConfigStore(d.Sys, storage)
	d.IO = NewIO(d.Config, hw.GPIO, hw.JackPins)
	d.LEDs = NewLEDs(d.Config, hw.GPIO, hw.LEDPins)
	d.Buzzer = NewBuzzer(d.Config, hw.Tone)
	d.Keyer = NewKeyer(d.Config, d.IO, keyerOutputs{d.IO, d.LEDs, d.Buzzer})
	d.QuickMsg = NewQuickMsgs(storage)

	d.AddTask(TicksPerMillisecond, d.Keyer.Tick)
	d.AddTask(50*TicksPerMillisecond, d.IO.Tick)
	d.AddTask(50*TicksPerMillisecond, d.LEDs.Tick)
	d.AddTask(50*TicksPerMillisecond, d.Buzzer.Tick)
	d.AddTask(TicksPerSecond, d.Config.Tick)
	d.AddTask(TicksPerSecond, d.heartbeat)

	SetFailHandler(d.failSafe)
	return d, nil
}

// Handle registers fn to run when ev is pending. Tick and IO events are
// handled internally; targets register handlers for the serial events.
func (d *Device) Handle(ev Event, fn func()) {
	if ev >= eventCount {
		FailCode(FailCodeInvalidEvent)
	}
	d.handlers[ev] = fn
}

// AddTask registers fn to run every period ticks, starting one period from
// now.
func (d *Device) AddTask(period Tick, fn func(Tick)) {
	if period == 0 {
		Fail()
	}
	d.tasks = append(d.tasks, task{period: period, left: period, fn: fn})
}

// Step waits for events and dispatches them once. One call handles one
// batch; the tick handler runs once per batch even if several ticks
// coalesced while a handler ran long.
func (d *Device) Step() {
	events := d.Sys.Wait()
	for ev := Event(0); ev < eventCount; ev++ {
		if !events.Has(ev) {
			continue
		}
		switch ev {
		case EventTick:
			d.runTasks()
		case EventIOState:
			// React to a pin change right away instead of waiting out
			// the rest of the current tick.
			d.Keyer.Tick(d.Sys.Tick())
		default:
			if h := d.handlers[ev]; h != nil {
				h()
			}
		}
	}
}

// Run runs the dispatch loop forever.
func (d *Device) Run() {
	for {
		d.Step()
	}
}

func (d *Device) runTasks() {
	now := d.Sys.Tick()
	for i := range d.tasks {
		t := &d.tasks[i]
		t.left--
		if t.left == 0 {
			t.left = t.period
			t.fn(now)
		}
	}
}

// heartbeat blinks the status LED so a bricked device is distinguishable
// from an idle one.
func (d *Device) heartbeat(Tick) {
	d.LEDs.Toggle(LEDStatus)
}

// failSafe releases everything that can be externally visible. Called from
// the fail handler on the way down; errors from the drivers are ignored
// because there is nothing left to do about them.
func (d *Device) failSafe(uint8) {
	d.IO.SetOutput(PinTypeKeyOutput, false)
	d.Buzzer.SetOn(false)
	d.LEDs.SetOn(LEDKey, false)
	d.LEDs.SetOn(LEDStatus, true)
}
