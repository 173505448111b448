package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mrdg/organ/audio"
	"github.com/mrdg/organ/dub"
	"github.com/mrdg/organ/midi"
)

const consoleVelocity = 100

type env struct {
	props   *audio.Props
	stops   *audio.Registry
	console *midi.Queue
	ctrl    *controller
}

func (e *env) eval(input string) (string, error) {
	command, err := dub.Parse(input)
	if err != nil {
		return "", err
	}
	name := string(command.Name)
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if len(command.Args) < cmd.minArgs || len(command.Args) > cmd.maxArgs {
			return "", fmt.Errorf("%s: wrong number of arguments, usage: %s", cmd.name, cmd.usage)
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return "", fmt.Errorf("unknown command: %s", name)
}

func repl(env *env) error {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		items = append(items, readline.PcItem(cmd.name))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "> ",
		AutoComplete: readline.NewPrefixCompleter(items...),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if result, err := env.eval(line); err != nil {
			fmt.Println(err)
		} else if result != "" {
			fmt.Println(result)
		}
	}
}

type command struct {
	name    string
	usage   string
	run     func(*env, []dub.Node) (string, error)
	minArgs int
	maxArgs int
}

var commands []command

func init() {
	// assigned in init because helpCommand refers to commands
	commands = []command{
		{"stop", "stop <number|name>", stopCommand, 1, 1},
		{"stops", "stops", stopsCommand, 0, 0},
		{"set", "set <property> <value>", setCommand, 2, 2},
		{"get", "get [property]", getCommand, 0, 1},
		{"preset", "preset <name>", presetCommand, 1, 1},
		{"presets", "presets", presetsCommand, 0, 0},
		{"on", "on <note> [channel]", noteOnCommand, 1, 2},
		{"off", "off <note> [channel]", noteOffCommand, 1, 2},
		{"panic", "panic", panicCommand, 0, 0},
		{"help", "help", helpCommand, 0, 0},
	}
}

func stopCommand(env *env, args []dub.Node) (string, error) {
	var stop int
	switch v := args[0].(type) {
	case dub.Int:
		stop = int(v)
	case dub.Identifier:
		n, ok := env.stops.Lookup(string(v))
		if !ok {
			return "", fmt.Errorf("unknown stop: %s", v)
		}
		stop = n
	case dub.String:
		n, ok := env.stops.Lookup(string(v))
		if !ok {
			return "", fmt.Errorf("unknown stop: %s", v)
		}
		stop = n
	default:
		return "", fmt.Errorf("argument error: expected a stop number or name")
	}
	s, err := env.stops.Stop(stop)
	if err != nil {
		return "", err
	}
	if err := env.props.Set(audio.PropStop, stop); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d: %s", stop, s.Name), nil
}

func stopsCommand(env *env, args []dub.Node) (string, error) {
	v, err := env.props.Get(audio.PropStop)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for n, s := range env.stops.Stops() {
		marker := " "
		if n == v.(int) {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d: %-14s %v\n", marker, n, s.Name, s.Harmonics)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func setCommand(env *env, args []dub.Node) (string, error) {
	var prop string
	if err := readArgs(args[:1], &prop); err != nil {
		return "", err
	}
	switch v := args[1].(type) {
	case dub.Int:
		return "", env.props.Set(prop, int(v))
	case dub.Float:
		return "", env.props.Set(prop, float64(v))
	default:
		return "", fmt.Errorf("unsupported property type: %v", v)
	}
}

func getCommand(env *env, args []dub.Node) (string, error) {
	keys := env.props.Keys()
	if len(args) == 1 {
		var prop string
		if err := readArgs(args, &prop); err != nil {
			return "", err
		}
		keys = []string{prop}
	}
	var lines []string
	for _, key := range keys {
		v, err := env.props.Get(key)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s = %v", key, v))
	}
	return strings.Join(lines, "\n"), nil
}

func presetCommand(env *env, args []dub.Node) (string, error) {
	var name string
	if err := readArgs(args, &name); err != nil {
		return "", err
	}
	return "", audio.LoadPreset(name, env.props)
}

func presetsCommand(env *env, args []dub.Node) (string, error) {
	return strings.Join(audio.Presets(), "\n"), nil
}

func noteOnCommand(env *env, args []dub.Node) (string, error) {
	return "", sendNote(env, 0x90, args)
}

func noteOffCommand(env *env, args []dub.Node) (string, error) {
	return "", sendNote(env, 0x80, args)
}

// sendNote queues a complete channel message so console notes take the same
// path through the decoder as notes from a keyboard.
func sendNote(env *env, status byte, args []dub.Node) error {
	var note, channel int
	dest := []interface{}{&note, &channel}
	if err := readArgs(args, dest[:len(args)]...); err != nil {
		return err
	}
	if note < 0 || note > 127 {
		return fmt.Errorf("note %d not in 0-127", note)
	}
	if channel < 0 || channel > 15 {
		return fmt.Errorf("channel %d not in 0-15", channel)
	}
	env.console.Write([]byte{status | byte(channel), byte(note), consoleVelocity})
	return nil
}

func panicCommand(env *env, args []dub.Node) (string, error) {
	env.ctrl.releaseAll()
	return "", nil
}

func helpCommand(env *env, args []dub.Node) (string, error) {
	var lines []string
	for _, cmd := range commands {
		lines = append(lines, cmd.usage)
	}
	return strings.Join(lines, "\n"), nil
}

func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) != len(slots) {
		return errors.New("not enough arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch f := arg.(type) {
			case dub.Float:
				*p = float64(f)
			case dub.Int:
				*p = float64(f)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			n, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(n)
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}
