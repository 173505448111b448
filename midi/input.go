package midi

import (
	"errors"
	"fmt"
	"log"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Input forwards every byte received on a MIDI input port to a Queue.
type Input struct {
	drv  *rtmididrv.Driver
	in   drivers.In
	stop func()
}

// Ports lists the names of the available MIDI input ports.
func Ports() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	defer drv.Close()
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

// OpenInput opens the first input port whose name contains name, or the
// first port at all if name is empty, and starts pushing its bytes to q.
func OpenInput(name string, q *Queue) (*Input, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi driver: %w", err)
	}
	in, err := findIn(drv, name)
	if err != nil {
		drv.Close()
		return nil, err
	}
	if err := in.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("open %s: %w", in, err)
	}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		q.Write(msg)
	}, gomidi.HandleError(func(err error) {
		log.Printf("midi: %s: %v", in, err)
	}))
	if err != nil {
		in.Close()
		drv.Close()
		return nil, fmt.Errorf("listen to %s: %w", in, err)
	}
	return &Input{drv: drv, in: in, stop: stop}, nil
}

func findIn(drv *rtmididrv.Driver, name string) (drivers.In, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	if len(ins) == 0 {
		return nil, errors.New("no midi input ports")
	}
	if name == "" {
		return ins[0], nil
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("midi input %q not found", name)
}

func (i *Input) Name() string { return i.in.String() }

func (i *Input) Close() error {
	i.stop()
	err := i.in.Close()
	if cerr := i.drv.Close(); err == nil {
		err = cerr
	}
	return err
}
