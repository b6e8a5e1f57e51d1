// Package playback streams processed audio to a playback device through
// miniaudio. Samples are queued as 16-bit PCM in a ring buffer that the
// device callback drains.
package playback

import (
	"context"
	"encoding/binary"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/smallnest/ringbuffer"

	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

const (
	bytesPerSample = 2
	pollInterval   = 5 * time.Millisecond
)

// GetLogger returns the playback module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("playback")
}

// Queue holds PCM between the producer and the device callback.
type Queue struct {
	ring      *ringbuffer.RingBuffer
	frameSize int
	underruns atomic.Int64
	closed    atomic.Bool
}

// NewQueue creates a queue holding up to frames frames of channels channels.
func NewQueue(channels, frames int) *Queue {
	frameSize := channels * bytesPerSample
	return &Queue{ring: ringbuffer.New(frames * frameSize), frameSize: frameSize}
}

// Enqueue converts samples to 16-bit PCM and appends them, waiting for
// space while the queue is full.
func (q *Queue) Enqueue(ctx context.Context, samples []float64) error {
	pcm := encodeS16(make([]byte, len(samples)*bytesPerSample), samples)
	for len(pcm) > 0 {
		if q.closed.Load() {
			return errors.Newf("playback queue closed").
				Component("playback").
				Category(errors.CategoryState).
				Build()
		}
		free := q.ring.Free()
		free -= free % q.frameSize
		if free == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
			continue
		}
		n, err := q.ring.Write(pcm[:min(free, len(pcm))])
		if err != nil && !errors.Is(err, ringbuffer.ErrIsFull) {
			return errors.New(err).
				Component("playback").
				Category(errors.CategorySystem).
				Context("operation", "enqueue_pcm").
				Build()
		}
		pcm = pcm[n:]
	}
	return nil
}

// Fill copies queued PCM into out and pads the rest with silence. It
// reports how many bytes came from the queue.
func (q *Queue) Fill(out []byte) int {
	n, err := q.ring.Read(out)
	if err != nil && !errors.Is(err, ringbuffer.ErrIsEmpty) {
		GetLogger().Warn("playback queue read failed", logger.Error(err))
	}
	if n < len(out) {
		clear(out[n:])
		if !q.closed.Load() {
			q.underruns.Add(1)
		}
	}
	return n
}

// Buffered returns the number of queued bytes.
func (q *Queue) Buffered() int {
	return q.ring.Length()
}

// Underruns counts callbacks that found fewer bytes than requested.
func (q *Queue) Underruns() int64 {
	return q.underruns.Load()
}

// Drain waits until the queue is empty or ctx is done.
func (q *Queue) Drain(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for q.ring.Length() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close makes later Enqueue calls fail.
func (q *Queue) Close() {
	q.closed.Store(true)
}

// encodeS16 writes samples as little-endian 16-bit PCM, clipping at full scale.
func encodeS16(dst []byte, samples []float64) []byte {
	for i, v := range samples {
		s := int16(max(-32768, min(32767, v*32768)))
		binary.LittleEndian.PutUint16(dst[i*bytesPerSample:], uint16(s))
	}
	return dst
}

// Player owns a miniaudio context and playback device fed from a Queue.
type Player struct {
	queue  *Queue
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	closeOnce sync.Once
}

// backendForPlatform returns the preferred miniaudio backend.
func backendForPlatform() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}

// NewPlayer opens the default playback device for the given format with
// bufferDuration of queued audio.
func NewPlayer(channels, sampleRate int, bufferDuration time.Duration) (*Player, error) {
	log := GetLogger()
	frames := max(int(bufferDuration.Seconds()*float64(sampleRate)), 1)
	p := &Player{queue: NewQueue(channels, frames)}

	mctx, err := malgo.InitContext([]malgo.Backend{backendForPlatform()}, malgo.ContextConfig{}, func(message string) {
		log.Debug("miniaudio", logger.String("message", message))
	})
	if err != nil {
		return nil, errors.New(err).
			Component("playback").
			Category(errors.CategoryAudio).
			Context("operation", "init_context").
			Context("os", runtime.GOOS).
			Build()
	}
	p.ctx = mctx

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(channels)
	cfg.SampleRate = uint32(sampleRate)
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, _ []byte, _ uint32) {
			p.queue.Fill(output)
		},
	}
	device, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, errors.New(err).
			Component("playback").
			Category(errors.CategoryAudio).
			Context("operation", "init_device").
			Context("channels", channels).
			Context("sample_rate", sampleRate).
			Build()
	}
	p.device = device
	return p, nil
}

// Queue returns the queue feeding the device.
func (p *Player) Queue() *Queue {
	return p.queue
}

// Start begins playback.
func (p *Player) Start() error {
	if err := p.device.Start(); err != nil {
		return errors.New(err).
			Component("playback").
			Category(errors.CategoryAudio).
			Context("operation", "start_device").
			Build()
	}
	return nil
}

// Close stops the device and releases the context.
func (p *Player) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.queue.Close()
		if p.device != nil {
			_ = p.device.Stop()
			p.device.Uninit()
		}
		if p.ctx != nil {
			err = p.ctx.Uninit()
			p.ctx.Free()
		}
		if n := p.queue.Underruns(); n > 0 {
			GetLogger().Info("playback finished with underruns", logger.Int64("underruns", n))
		}
	})
	return err
}
