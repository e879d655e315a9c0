package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/sotto-labs/sotto-core/internal/config"
)

// CaptureSource reads mono int16 frames from the default input device.
type CaptureSource struct {
	cfg    config.AudioConfig
	log    *slog.Logger
	stream *portaudio.Stream
	frames chan Frame
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewCaptureSource(cfg config.AudioConfig, log *slog.Logger) *CaptureSource {
	return &CaptureSource{
		cfg:    cfg,
		log:    log.With(slog.String("component", "audio")),
		frames: make(chan Frame, 8),
		done:   make(chan struct{}),
	}
}

func (c *CaptureSource) SampleRate() int  { return c.cfg.SampleRate }
func (c *CaptureSource) FrameLength() int { return c.cfg.FrameLength }

func (c *CaptureSource) Start() (<-chan Frame, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	buf := make([]int16, c.cfg.FrameLength)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(c.cfg.SampleRate), len(buf), buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start capture stream: %w", err)
	}
	c.stream = stream

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.frames)
		for {
			select {
			case <-c.done:
				return
			default:
			}
			if err := stream.Read(); err != nil {
				c.log.Error("capture stream ended", slog.String("error", err.Error()))
				return
			}
			frame := make(Frame, len(buf))
			copy(frame, buf)
			select {
			case c.frames <- frame:
			case <-c.done:
				return
			}
		}
	}()

	c.log.Info("audio capture started",
		slog.Int("sample_rate", c.cfg.SampleRate),
		slog.Int("frame_length", c.cfg.FrameLength))

	return c.frames, nil
}

func (c *CaptureSource) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		if c.stream != nil {
			_ = c.stream.Stop()
			err = c.stream.Close()
		}
		c.wg.Wait()
		portaudio.Terminate()
	})
	return err
}
