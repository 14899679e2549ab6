package audio

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const defaultRingSize = 4096

// Capture wraps a PortAudio input stream and keeps a ring of the most recent
// mono samples. The stream callback writes; the frame loop reads.
type Capture struct {
	stream     *portaudio.Stream
	sampleRate float64
	channels   int
	device     *portaudio.DeviceInfo

	mu   sync.RWMutex
	ring []float32
	head int

	out []float32
}

// Config controls how a Capture instance is created.
type Config struct {
	// DeviceName selects an input device by substring match; empty picks the
	// best available input.
	DeviceName string
	// RingSize is the number of mono samples retained for analysis.
	RingSize int
	Channels int
}

// NewCapture opens and starts a PortAudio input stream.
func NewCapture(cfg Config) (*Capture, error) {
	if cfg.RingSize <= 0 {
		cfg.RingSize = defaultRingSize
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}

	device, err := findDevice(cfg.DeviceName)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		sampleRate: device.DefaultSampleRate,
		channels:   cfg.Channels,
		device:     device,
		ring:       make([]float32, cfg.RingSize),
		out:        make([]float32, cfg.RingSize),
	}

	framesPerBuffer := cfg.RingSize / cfg.Channels
	if framesPerBuffer < 64 {
		framesPerBuffer = portaudio.FramesPerBufferUnspecified
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      c.sampleRate,
		FramesPerBuffer: framesPerBuffer,
	}, c.process)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	c.stream = stream

	if err := c.stream.Start(); err != nil {
		_ = c.stream.Close()
		return nil, fmt.Errorf("start stream: %w", err)
	}
	return c, nil
}

// Close stops and closes the stream.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Stop(); err != nil && !isAlreadyStopped(err) {
		return err
	}
	return c.stream.Close()
}

// SampleRate returns the stream sample rate.
func (c *Capture) SampleRate() float64 { return c.sampleRate }

// Device returns the PortAudio device behind the stream.
func (c *Capture) Device() *portaudio.DeviceInfo { return c.device }

// Latest copies the most recent samples, oldest first, into an internal
// buffer reused across calls. The caller must consume it before the next
// call.
func (c *Capture) Latest() []float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.ring)
	copy(c.out, c.ring[c.head:])
	copy(c.out[n-c.head:], c.ring[:c.head])
	return c.out
}

// process is the stream callback. Multichannel input is mixed down to mono
// before entering the ring.
func (c *Capture) process(in []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channels <= 1 {
		for _, v := range in {
			c.pushOne(v)
		}
		return
	}
	frames := len(in) / c.channels
	for f := 0; f < frames; f++ {
		sum := float32(0)
		base := f * c.channels
		for ch := 0; ch < c.channels; ch++ {
			sum += in[base+ch]
		}
		c.pushOne(sum / float32(c.channels))
	}
}

func (c *Capture) pushOne(v float32) {
	c.ring[c.head] = v
	c.head++
	if c.head == len(c.ring) {
		c.head = 0
	}
}

func findDevice(name string) (*portaudio.DeviceInfo, error) {
	if name != "" {
		return findDeviceByName(name)
	}

	if dev, err := portaudio.DefaultInputDevice(); err == nil && dev != nil && dev.MaxInputChannels > 0 {
		return dev, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}
	if best := pickBestInput(devices); best != nil {
		return best, nil
	}
	return nil, fmt.Errorf("no suitable audio input device found")
}

func findDeviceByName(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}

	name = strings.ToLower(name)
	for _, device := range devices {
		if device.MaxInputChannels == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(device.Name), name) {
			return device, nil
		}
	}
	return nil, fmt.Errorf("audio device %q not found", name)
}

// pickBestInput prefers loopback/monitor devices so the visuals follow
// whatever the machine is playing, falling back to any input.
func pickBestInput(devices []*portaudio.DeviceInfo) *portaudio.DeviceInfo {
	type scored struct {
		dev   *portaudio.DeviceInfo
		score int
	}

	keywords := []string{"monitor", "loopback", "stereo mix", "what u hear"}

	var results []scored
	for _, d := range devices {
		if d == nil || d.MaxInputChannels <= 0 {
			continue
		}
		score := d.MaxInputChannels
		lower := strings.ToLower(d.Name)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				score += 20
				break
			}
		}
		if strings.Contains(lower, "default") {
			score += 10
		}
		results = append(results, scored{dev: d, score: score})
	}
	if len(results) == 0 {
		return nil
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return strings.ToLower(results[i].dev.Name) < strings.ToLower(results[j].dev.Name)
		}
		return results[i].score > results[j].score
	})
	return results[0].dev
}

// isAlreadyStopped matches the PortAudio error for stopping a stopped stream.
func isAlreadyStopped(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "PaErrorCode -9986")
}

// AutoDetectDevice returns the input device that would be chosen by default.
func AutoDetectDevice() (*portaudio.DeviceInfo, error) {
	return findDevice("")
}
