package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"bar-chord-seq/midi"
	"bar-chord-seq/sequencer"
)

var logger = log.New(os.Stderr, "miditest: ", 0)

func main() {
	inName := pflag.String("in", "", "input port (substring match)")
	outName := pflag.String("out", "", "output port (substring match)")
	division := pflag.Int("division", midi.PPQN, "MIDI clocks per beat for monitor")
	pflag.Usage = usage
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		return
	}

	switch pflag.Arg(0) {
	case "list":
		listPorts()
	case "monitor":
		monitor(*inName, *division)
	case "cv":
		testCV(*outName)
	case "leds":
		testLEDs()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  monitor  - Print clock beats and note/CC events (--in)")
	fmt.Println("  cv       - Step root and chord outputs through every value (--out)")
	fmt.Println("  leds     - Show the bar/root/chord layout on a Launchpad")
	fmt.Println("")
	pflag.PrintDefaults()
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, err := midi.Ports()
	if err != nil {
		fmt.Printf("\n%v\n", err)
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func monitor(name string, division int) {
	if name == "" {
		logger.Fatalf("monitor needs --in")
	}
	port, err := midi.FindInPort(name)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	in, err := midi.NewInputPort(port)
	if err != nil {
		logger.Fatalf("open %s: %v", name, err)
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.ID())

	divider := midi.NewClockDivider(division)
	var lastBeat time.Time
	beats := 0

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case midi.Clock:
				if !divider.Tick() {
					continue
				}
				now := time.Now()
				bpm := ""
				if !lastBeat.IsZero() {
					bpm = fmt.Sprintf("  %.1f bpm", 60/now.Sub(lastBeat).Seconds())
				}
				lastBeat = now
				beats++
				fmt.Printf("[%s] beat %d%s\n", now.Format("15:04:05.000"), beats, bpm)
			case midi.Start:
				divider.Reset()
				beats = 0
				fmt.Println("start")
			case midi.Stop:
				fmt.Println("stop")
			case midi.Continue:
				fmt.Println("continue")
			case midi.NoteOn:
				fmt.Printf("note on  ch%d %d vel %d\n", ev.Channel+1, ev.Note, ev.Velocity)
			case midi.NoteOff:
				fmt.Printf("note off ch%d %d\n", ev.Channel+1, ev.Note)
			case midi.CC:
				fmt.Printf("cc       ch%d %d = %d\n", ev.Channel+1, ev.Note, ev.Velocity)
			}
		}
	}
}

func testCV(name string) {
	if name == "" {
		logger.Fatalf("cv needs --out")
	}
	port, err := midi.FindOutPort(name)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	cfg := midi.DefaultCVConfig()
	cfg.GateNote = 60
	out, err := midi.OpenCVOutput(port, cfg)
	if err != nil {
		logger.Fatalf("open %s: %v", name, err)
	}
	defer out.Close()

	fmt.Printf("Sending to %s\n", port.String())

	for root := 0; root < sequencer.NumRoots; root++ {
		fmt.Printf("  root %-2s (note %d)\n", sequencer.NoteName(root), out.RootNote(float64(root)/12))
		if err := out.SetCV(float64(root)/12, sequencer.DefaultChord, 1); err != nil {
			logger.Fatalf("send: %v", err)
		}
		time.Sleep(250 * time.Millisecond)
	}
	for chord := 0; chord < sequencer.NumChords; chord++ {
		fmt.Printf("  chord %s (%d)\n", sequencer.ChordName(chord), chord)
		if err := out.SetCV(0, float64(chord), 1); err != nil {
			logger.Fatalf("send: %v", err)
		}
		time.Sleep(250 * time.Millisecond)
	}

	fmt.Println("Done!")
}

func testLEDs() {
	fmt.Println("Looking for Launchpad...")

	dm := midi.NewDeviceManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dm.Run(ctx)

	var ctrl midi.Controller
	select {
	case ev, ok := <-dm.Events():
		if !ok || ev.Type != midi.DeviceConnected {
			fmt.Println("Launchpad not found")
			return
		}
		ctrl = ev.Controller
	case <-time.After(5 * time.Second):
		fmt.Println("Launchpad not found")
		return
	}

	fmt.Printf("Found %s\n", ctrl.ID())

	m := sequencer.NewManager(sequencer.New(), sequencer.DefaultRate)
	var updates []midi.LEDUpdate
	for _, led := range m.RenderLEDs() {
		updates = append(updates, midi.LEDUpdate{Row: led.Row, Col: led.Col, Color: led.Color, Channel: led.Channel})
	}
	if err := ctrl.SetLEDBatch(updates); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()

	for i := range updates {
		updates[i].Color = [3]uint8{}
		updates[i].Channel = midi.ChannelStatic
	}
	ctrl.SetLEDBatch(updates)

	fmt.Println("Done!")
}
