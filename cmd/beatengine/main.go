// Command beatengine is a REPL front end over the engine control API
// (§6). The engine is created once at startup from the command-line
// flags; the REPL then reads start/stop/clear/status/add_afunc/
// add_events/tempo/render_to_disk/kill-all/quit, one line at a time.
// The REPL has no command for pre- or post-mixer control callbacks;
// those are available only through the engine package API.
//
// Grounded on the teacher's own REPL shape (main.go's REPL function
// over an Input/Parser pair), modernised to golang.org/x/term's
// line-editing Terminal instead of a hand-rolled bufio reader.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/beatengine/beatengine/engine"
)

var (
	sampleRate = flag.Uint("rate", 44100, "sample rate in Hz")
	nchnls     = flag.Uint("chans", 1, "channel count")
	blockSize  = flag.Uint("block", 64, "block size in samples")
	tempo      = flag.Float64("tempo", 60, "initial tempo in beats per minute")
	renderPath = flag.String("render", "", "if set, render a short demo to this WAV path and exit instead of starting a REPL")
)

func init() {
	flag.Parse()
}

// stdIO adapts os.Stdin/os.Stdout to the io.ReadWriter term.Terminal
// wants.
type stdIO struct {
	io.Reader
	io.Writer
}

func main() {
	cfg := engine.Config{
		SampleRate: uint32(*sampleRate),
		Nchnls:     uint32(*nchnls),
		BlockSize:  uint32(*blockSize),
		Tempo:      *tempo,
		Diag:       engine.StdDiag{},
	}

	e, err := engine.NewEngine(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create:", err)
		os.Exit(1)
	}

	if *renderPath != "" {
		runDemoRender(e, *renderPath)
		return
	}

	t := term.NewTerminal(stdIO{os.Stdin, os.Stdout}, "beatengine> ")
	repl(t, e)
}

// runDemoRender preloads a short one-shot beat graph and renders it
// offline, a non-interactive equivalent of "create; add_afunc; add_events; render_to_disk":
// a 440 Hz tone plus an event at beat 4 that clears the engine, which
// leaves the graph empty so the render finishes.
func runDemoRender(e *engine.Engine, path string) {
	e.AddGenerator(newToySine(440, 0.2))
	e.AddEvents(engine.NewEvent(func(ctx *engine.BlockCtx, _ []any) engine.EventResult {
		e.Clear()
		return engine.NothingResult()
	}, 4))
	if err := e.RenderToDisk(path); err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		os.Exit(1)
	}
}

func repl(t *term.Terminal, e *engine.Engine) {
	for {
		line, err := t.ReadLine()
		if err != nil {
			return
		}
		if err := dispatch(t, e, line); err != nil {
			fmt.Fprintln(t, err)
		}
	}
}

// dispatch implements the §6 engine control CLI. It returns an error
// for malformed input, and passes through any error from Start,
// RenderToDisk or KillAll; stop, clear, status and the add commands
// never fail.
func dispatch(t *term.Terminal, e *engine.Engine, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "start":
		return e.Start(nil)
	case "stop":
		e.Stop()
		return nil
	case "clear":
		e.Clear()
		return nil
	case "status":
		fmt.Fprintln(t, e.String())
		return nil
	case "add_afunc":
		hz, gain := 440.0, 0.2
		if len(args) > 0 {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("add_afunc: bad hz %q: %w", args[0], err)
			}
			hz = v
		}
		if len(args) > 1 {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("add_afunc: bad gain %q: %w", args[1], err)
			}
			gain = v
		}
		e.AddGenerator(newToySine(hz, gain))
		return nil
	case "add_events":
		if len(args) < 1 {
			return fmt.Errorf("add_events: want a start beat")
		}
		beat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("add_events: bad beat %q: %w", args[0], err)
		}
		e.AddEvents(engine.NewEvent(func(ctx *engine.BlockCtx, _ []any) engine.EventResult {
			return engine.GenResult(newToySine(220, 0.2))
		}, beat))
		return nil
	case "tempo":
		if len(args) < 1 {
			fmt.Fprintln(t, e.Events().Tempo())
			return nil
		}
		bpm, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("tempo: bad value %q: %w", args[0], err)
		}
		e.Events().SetTempo(bpm)
		return nil
	case "render_to_disk":
		if len(args) < 1 {
			return fmt.Errorf("render_to_disk: want a path")
		}
		return e.RenderToDisk(args[0])
	case "kill-all":
		return engine.KillAll()
	case "quit", "exit":
		os.Exit(0)
		return nil
	default:
		return fmt.Errorf("%s: unrecognized", cmd)
	}
}
