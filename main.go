package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mrdg/organ/audio"
	"github.com/mrdg/organ/midi"
	"golang.org/x/term"
)

func main() {
	var (
		port      = flag.String("midi", "", "MIDI input port name (substring), \"none\" to disable")
		ports     = flag.Bool("ports", false, "list MIDI input ports and exit")
		stop      = flag.Int("stop", 3, "initial stop")
		stopsFile = flag.String("stops", "", "JSON file with the stop table")
		transpose = flag.Int("transpose", 0, "semitones added to incoming notes")
		frames    = flag.Int("frames", 16, "frames per buffer")
		render    = flag.String("render", "", "render to this WAV file instead of playing")
		notes     = flag.String("notes", "60,64,67", "comma separated notes to render")
		seconds   = flag.Float64("seconds", 4, "length of the rendered file")
		run       = flag.String("run", "", "file with console commands to run at startup")
		debug     = flag.Bool("debug", false, "log note events and voice steals")
	)
	flag.Parse()

	if *ports {
		names, err := midi.Ports()
		if err != nil {
			log.Fatal(err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	stops := audio.DefaultRegistry()
	if *stopsFile != "" {
		f, err := os.Open(*stopsFile)
		if err != nil {
			log.Fatal(err)
		}
		stops, err = audio.LoadStops(f)
		f.Close()
		if err != nil {
			log.Fatalf("%s: %v", *stopsFile, err)
		}
	}

	explicitStop := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "stop" {
			explicitStop = true
		}
	})
	first, err := initialStop(stops, *stop, explicitStop)
	if err != nil {
		log.Fatal(err)
	}

	organ := audio.NewOrgan(audio.SampleRate, stops)
	organ.SetDebug(*debug)
	if err := organ.SetRegistration(first); err != nil {
		log.Fatal(err)
	}
	props := audio.NewProps()
	reverbs := audio.DefaultReverbs()
	for _, r := range reverbs {
		log.Printf("engine: reverb line of %d samples, feedback %v", r.Length(), r.Feedback())
	}
	engine := audio.NewEngine(props, organ, reverbs...)

	if *render != "" {
		chord, err := parseNotes(*notes)
		if err != nil {
			log.Fatal(err)
		}
		for n := range chord {
			chord[n] += *transpose
		}
		f, err := os.Create(*render)
		if err != nil {
			log.Fatal(err)
		}
		w := bufio.NewWriter(f)
		if err := renderWAV(w, engine, chord, *seconds, *frames); err != nil {
			f.Close()
			log.Fatal(err)
		}
		if err := w.Flush(); err != nil {
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctrl := newController(props, organ, *transpose)
	ctrl.debug = *debug

	midiQueue := midi.NewQueue(1024)
	console := midi.NewQueue(256)
	ctrl.addSource("midi", midiQueue)
	ctrl.addSource("console", console)

	if *port != "none" {
		in, err := midi.OpenInput(*port, midiQueue)
		if err != nil {
			log.Printf("midi: %v", err)
		} else {
			log.Printf("midi: listening to %s", in.Name())
			defer in.Close()
		}
	}

	sink, err := audio.NewSink(*frames)
	if err != nil {
		log.Fatal(err)
	}
	defer sink.Close()
	sink.AddTicker(ctrl)
	sink.AddSources(engine)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The console only writes to queues that the sink drains, so it must run
	// alongside sink.Run.
	env := &env{props: props, stops: stops, console: console, ctrl: ctrl}
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	go func() {
		if err := runConsole(env, *run, interactive); err != nil {
			log.Print(err)
			cancel()
			return
		}
		if interactive {
			cancel()
		}
	}()

	if err := sink.Run(ctx); err != nil {
		log.Print(err)
	}
}

// initialStop returns the stop to start with. A default that the stop table
// is too short for falls back to the first stop; an explicit choice is checked.
func initialStop(stops *audio.Registry, stop int, explicit bool) (int, error) {
	if _, err := stops.Stop(stop); err != nil {
		if explicit {
			return 0, fmt.Errorf("-stop %d: %w", stop, err)
		}
		return 0, nil
	}
	return stop, nil
}

// runConsole evaluates the script, if any, and then reads commands from the
// terminal when interactive is set.
func runConsole(env *env, script string, interactive bool) error {
	if script != "" {
		if err := runScript(env, script); err != nil {
			return err
		}
	}
	if interactive {
		return repl(env)
	}
	return nil
}

func runScript(env *env, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if _, err := env.eval(text); err != nil {
			return fmt.Errorf("%s:%d: %w", file, line, err)
		}
	}
	return scanner.Err()
}
