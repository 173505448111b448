package audio

import (
	"context"
	"errors"
	"log"

	"github.com/gordonklaus/portaudio"
)

// Source mixes one frame of interleaved stereo samples into its argument.
type Source interface {
	Process(out []int16)
}

// Ticker is called once before every frame.
type Ticker interface {
	Tick()
}

// Sink pushes fixed-size frames to the default output device using blocking
// writes, so all control and synthesis work happens on the goroutine that
// calls Run.
type Sink struct {
	sources []Source
	tickers []Ticker
	stream  *portaudio.Stream
	buf     []int16
}

func NewSink(frames int) (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s := Sink{buf: make([]int16, frames*numChannels)}
	stream, err := portaudio.OpenDefaultStream(0, numChannels, SampleRate, frames, s.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return &s, nil
}

func (s *Sink) AddSources(sources ...Source) {
	s.sources = append(s.sources, sources...)
}

func (s *Sink) AddTicker(ticker Ticker) {
	s.tickers = append(s.tickers, ticker)
}

// Run renders and writes frames until ctx is cancelled.
func (s *Sink) Run(ctx context.Context) error {
	if err := s.stream.Start(); err != nil {
		return err
	}
	defer s.stream.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		s.Process(s.buf)
		if err := s.stream.Write(); err != nil {
			if errors.Is(err, portaudio.OutputUnderflowed) {
				log.Printf("sink: output underflow")
				continue
			}
			return err
		}
	}
}

// Process runs the tickers and mixes all sources into out.
func (s *Sink) Process(out []int16) {
	for i := range out {
		out[i] = 0
	}
	for _, ticker := range s.tickers {
		ticker.Tick()
	}
	for _, source := range s.sources {
		source.Process(out)
	}
}

func (s *Sink) Close() error {
	err := s.stream.Close()
	portaudio.Terminate()
	return err
}
