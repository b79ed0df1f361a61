package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"bar-chord-seq/config"
	"bar-chord-seq/debug"
	"bar-chord-seq/midi"
	"bar-chord-seq/sequencer"
	"bar-chord-seq/theme"
	"bar-chord-seq/tui"
)

var logger = log.New(os.Stderr, "bar-chord-seq: ", 0)

func main() {
	var (
		project   = pflag.StringP("project", "p", "", "project to load (latest save)")
		debugLog  = pflag.Bool("debug", false, "write a debug log to ~/.config/bar-chord-seq/debug.log")
		rate      = pflag.Int("rate", 0, "evaluation cycles per second (0 uses the config)")
		clockPort = pflag.String("clock-port", "", "MIDI input carrying clock/reset (substring match)")
		outPort   = pflag.String("out-port", "", "MIDI output for root/chord (substring match)")
		noTUI     = pflag.Bool("no-tui", false, "run headless until interrupted")
		list      = pflag.Bool("list", false, "list projects and saves, then exit")
	)
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Printf("config: %v (using defaults)", err)
		cfg = config.DefaultConfig()
	}
	if *rate > 0 {
		cfg.Engine.Rate = *rate
	}
	if *clockPort != "" {
		cfg.Clock.PortName = *clockPort
	}
	if *outPort != "" {
		cfg.Output.PortName = *outPort
	}
	cfg.Validate()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			logger.Fatalf("debug log: %v", err)
		}
		defer debug.Disable()
	}

	store, err := sequencer.DefaultStore()
	if err != nil {
		logger.Fatalf("project store: %v", err)
	}

	if *list {
		if err := listSaves(store); err != nil {
			logger.Fatalf("list: %v", err)
		}
		return
	}

	manager := sequencer.NewManager(sequencer.New(), cfg.Engine.Rate)
	manager.SetControls(controlsFromConfig(cfg.Controls))

	projectName := *project
	if projectName == "" {
		projectName = cfg.UI.LastProject
	}
	if projectName != "" {
		projectName = sequencer.ProjectName(projectName)
		if err := manager.LoadProject(store, projectName, ""); err != nil {
			debug.Log("main", "%v", err)
			if *project != "" {
				logger.Printf("%v", err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Clock.PortName != "" {
		in, err := openInput(cfg.Clock.PortName)
		if err != nil {
			logger.Fatalf("clock input: %v", err)
		}
		defer in.Close()
		router := sequencer.NewRouter(manager, mappingFromConfig(cfg))
		go router.Run(ctx, in.Events())
	}

	if cfg.Output.PortName != "" {
		out, err := openOutput(cfg.Output)
		if err != nil {
			logger.Fatalf("output: %v", err)
		}
		defer out.Close()
		manager.SetOutput(out)
	}

	var portNames []string
	for _, c := range cfg.AutoConnectControllers() {
		portNames = append(portNames, c.PortName)
	}
	deviceMgr := midi.NewDeviceManager(portNames...)
	go deviceMgr.Run(ctx)

	manager.StartRuntime(ctx)

	if *noTUI {
		fmt.Printf("bar-chord-seq running headless at %d cycles/s (ctrl+c to stop)\n", manager.Rate())
		serveDevices(ctx, deviceMgr, manager)
	} else {
		palette, err := theme.LoadOrDefault(cfg.UI.Palette)
		if err != nil {
			debug.Log("main", "palette %s: %v", cfg.UI.Palette, err)
		}

		m := tui.NewModel(tui.Options{
			Manager:   manager,
			DeviceMgr: deviceMgr,
			Theme:     theme.New(palette),
			Store:     store,
			Config:    cfg,
			Project:   projectName,
		})
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		final, err := p.Run()
		if err != nil && ctx.Err() == nil {
			logger.Printf("tui: %v", err)
		}
		if fm, ok := final.(tui.Model); ok {
			projectName = fm.Project()
		}
	}

	cfg.Controls = controlsToConfig(manager.Controls())
	cfg.UI.LastProject = projectName
	if err := cfg.Save(); err != nil {
		logger.Printf("save config: %v", err)
	}
}

// serveDevices attaches connected Launchpads to the manager until ctx is done
func serveDevices(ctx context.Context, deviceMgr *midi.DeviceManager, manager *sequencer.Manager) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-deviceMgr.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case midi.DeviceConnected:
				manager.SetController(ev.Controller)
				go func(c midi.Controller) {
					for pad := range c.PadEvents() {
						manager.HandlePad(pad.Row, pad.Col)
					}
				}(ev.Controller)
			case midi.DeviceDisconnected:
				manager.SetController(nil)
			}
		}
	}
}

func openInput(name string) (*midi.InputPort, error) {
	port, err := midi.FindInPort(name)
	if err != nil {
		return nil, err
	}
	return midi.NewInputPort(port)
}

func openOutput(oc config.OutputConfig) (*midi.CVOutput, error) {
	port, err := midi.FindOutPort(oc.PortName)
	if err != nil {
		return nil, err
	}
	return midi.OpenCVOutput(port, midi.CVConfig{
		Channel:  uint8(oc.Channel),
		BaseNote: uint8(oc.BaseNote),
		ChordCC:  uint8(oc.ChordCC),
		GateNote: uint8(oc.GateNote),
	})
}

func mappingFromConfig(cfg *config.Config) sequencer.Mapping {
	return sequencer.Mapping{
		Channel:     cfg.Clock.Channel,
		Division:    cfg.Clock.Division,
		ClockNote:   cfg.Clock.ClockNote,
		ResetNote:   cfg.Clock.ResetNote,
		StartResets: cfg.Clock.StartResets,
		LengthCC:    cfg.Mapping.LengthCC,
		BeatsCC:     cfg.Mapping.BeatsCC,
		BarCC:       cfg.Mapping.BarCC,
		RootCC:      cfg.Mapping.RootCC,
		ChordCC:     cfg.Mapping.ChordCC,
	}
}

func controlsFromConfig(c config.ControlsConfig) sequencer.Controls {
	return sequencer.Controls{
		Length:      c.Length,
		BeatsPerBar: c.BeatsPerBar,
		Bar:         c.Bar,
		Root:        c.Root,
		Chord:       c.Chord,
	}
}

func controlsToConfig(c sequencer.Controls) config.ControlsConfig {
	return config.ControlsConfig{
		Length:      c.Length,
		BeatsPerBar: c.BeatsPerBar,
		Bar:         c.Bar,
		Root:        c.Root,
		Chord:       c.Chord,
	}
}

func listSaves(store *sequencer.Store) error {
	projects, err := store.ListProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("no projects in", store.Dir)
		return nil
	}
	for _, p := range projects {
		saves, err := store.ListSaves(p)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d saves)\n", p, len(saves))
		for _, s := range saves {
			name := ""
			if s.Name != "" {
				name = "  " + s.Name
			}
			fmt.Printf("  %s  %s%s\n", s.Filename, humanize.Time(s.Timestamp), name)
		}
	}
	return nil
}
