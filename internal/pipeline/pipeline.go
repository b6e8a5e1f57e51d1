// Package pipeline hosts one slot per catalog filter and swaps in freshly
// configured instances when the settings panel requests a rebuild.
package pipeline

import (
	"slices"
	"sync"
	"time"

	"github.com/go-audio/audio"

	"github.com/tphakala/go-audiofilters/internal/audiofilters"
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
	"github.com/tphakala/go-audiofilters/internal/observability/metrics"
)

// GetLogger returns the pipeline module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("pipeline")
}

// Factory builds filter instances by catalog name.
type Factory interface {
	CreateFilter(name string) (audiofilters.AudioFilter, bool)
}

// SlotState is the lifecycle state of a filter slot.
type SlotState int

const (
	// StateAbsent means the slot holds no instance.
	StateAbsent SlotState = iota
	// StateActive means the slot holds a live instance.
	StateActive
	// StateRebuilding means a replacement is being built; the previous
	// instance keeps processing until it is swapped.
	StateRebuilding
)

func (s SlotState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateActive:
		return "active"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SlotState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TransitionFunc observes slot state changes.
type TransitionFunc func(name string, from, to SlotState)

// SlotStatus describes one slot.
type SlotStatus struct {
	Name            string    `json:"name"`
	State           SlotState `json:"state"`
	BufferedSamples int       `json:"buffered_samples"`
}

type slot struct {
	name   string
	state  SlotState
	filter audiofilters.AudioFilter
}

// Pipeline runs the active filters in catalog order. Rebuild, Close and
// the read accessors may be called from a control goroutine while another
// goroutine calls Process.
type Pipeline struct {
	factory    Factory
	channels   int
	sampleRate int
	metrics    *metrics.PipelineMetrics
	onChange   TransitionFunc

	// rebuildMu serializes rebuilds; mu guards the slots.
	rebuildMu sync.Mutex
	mu        sync.Mutex
	slots     []*slot
	closed    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records rebuilds and processing.
func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithTransitionHook calls fn on every slot state change, with the slot
// lock held; fn must not call back into the pipeline.
func WithTransitionHook(fn TransitionFunc) Option {
	return func(p *Pipeline) {
		p.onChange = fn
	}
}

// New creates a pipeline for the given stream format with every slot
// absent. Call Start to build the enabled filters.
func New(factory Factory, channels, sampleRate int, opts ...Option) (*Pipeline, error) {
	if factory == nil {
		return nil, errors.Newf("filter factory is nil").
			Component("pipeline").
			Category(errors.CategoryValidation).
			Build()
	}
	if channels < 1 || sampleRate < 1 {
		return nil, errors.Newf("invalid stream format: %d channels at %d Hz", channels, sampleRate).
			Component("pipeline").
			Category(errors.CategoryValidation).
			Context("channels", channels).
			Context("sample_rate", sampleRate).
			Build()
	}

	p := &Pipeline{factory: factory, channels: channels, sampleRate: sampleRate}
	for _, opt := range opts {
		opt(p)
	}
	for _, name := range audiofilters.FilterNames() {
		p.slots = append(p.slots, &slot{name: name})
	}
	return p, nil
}

// Format returns the stream channel count and sample rate.
func (p *Pipeline) Format() (channels, sampleRate int) {
	return p.channels, p.sampleRate
}

// Start builds every slot from the current settings.
func (p *Pipeline) Start() error {
	var errs []error
	for _, name := range audiofilters.FilterNames() {
		if err := p.Rebuild(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rebuild replaces the named slot with a freshly built instance. The new
// instance is installed when it accepts the stream format and its settings
// enable it; otherwise the slot becomes absent. The previous instance keeps
// processing until the swap.
func (p *Pipeline) Rebuild(name string) error {
	p.rebuildMu.Lock()
	defer p.rebuildMu.Unlock()

	start := time.Now()
	s, err := p.beginRebuild(name)
	if err != nil {
		return err
	}

	f, ok := p.factory.CreateFilter(name)
	if !ok {
		p.abortRebuild(s)
		p.recordRebuild(name, metrics.RebuildFailed, start)
		return errors.Newf("factory has no filter named %q", name).
			Component("pipeline").
			Category(errors.CategoryNotFound).
			Context("filter", name).
			Build()
	}

	supported := f.SetAudioParameters(p.channels, p.sampleRate)
	enabled := f.SetParams()
	if !supported || !enabled {
		f = nil
	}

	prev, installed := p.finishRebuild(s, f)
	switch {
	case installed:
		p.recordRebuild(name, metrics.RebuildInstalled, start)
	case prev != StateAbsent:
		p.recordRebuild(name, metrics.RebuildRemoved, start)
	default:
		p.recordRebuild(name, metrics.RebuildSkipped, start)
	}

	GetLogger().Debug("slot rebuilt",
		logger.String("filter", name),
		logger.Bool("enabled", enabled),
		logger.Bool("format_supported", supported),
		logger.Bool("installed", installed),
		logger.Duration("took", time.Since(start)))
	return nil
}

// beginRebuild marks an active slot as rebuilding.
func (p *Pipeline) beginRebuild(name string) (*slot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.Newf("pipeline is closed").
			Component("pipeline").
			Category(errors.CategoryState).
			Context("filter", name).
			Build()
	}
	i := slices.IndexFunc(p.slots, func(s *slot) bool { return s.name == name })
	if i < 0 {
		return nil, errors.Newf("no pipeline slot for %q", name).
			Component("pipeline").
			Category(errors.CategoryNotFound).
			Context("filter", name).
			Build()
	}
	s := p.slots[i]
	if s.state == StateActive {
		p.transition(s, StateRebuilding)
	}
	return s, nil
}

// finishRebuild swaps f into s, or empties s when f is nil. It returns the
// state the slot had before the rebuild started.
func (p *Pipeline) finishRebuild(s *slot, f audiofilters.AudioFilter) (prev SlotState, installed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev = s.state
	if prev == StateRebuilding {
		prev = StateActive
	}
	if p.closed {
		return prev, false
	}

	s.filter = f
	if f != nil {
		p.transition(s, StateActive)
	} else {
		p.transition(s, StateAbsent)
	}
	if p.metrics != nil {
		p.metrics.SetSlotActive(s.name, f != nil)
	}
	return prev, f != nil
}

// abortRebuild returns a rebuilding slot to service with its old instance.
func (p *Pipeline) abortRebuild(s *slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.state == StateRebuilding && !p.closed {
		p.transition(s, StateActive)
	}
}

func (p *Pipeline) transition(s *slot, to SlotState) {
	from := s.state
	s.state = to
	if p.onChange != nil && from != to {
		p.onChange(s.name, from, to)
	}
}

func (p *Pipeline) recordRebuild(name, result string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordRebuild(name, result, time.Since(start).Seconds())
	}
}

// Process runs buf through every installed filter in catalog order and
// returns the total added latency in seconds.
func (p *Pipeline) Process(buf *audio.FloatBuffer, flush bool) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if buf == nil || p.closed {
		return 0
	}
	frames := len(buf.Data) / p.channels
	latency := 0.0
	for _, s := range p.slots {
		if s.filter == nil {
			continue
		}
		start := time.Now()
		added := s.filter.Filter(buf, flush)
		latency += added
		if p.metrics != nil {
			p.metrics.RecordProcessed(s.name, frames, time.Since(start).Seconds(), added)
		}
	}
	return latency
}

// ClearBuffers drops the internal state of every installed filter.
func (p *Pipeline) ClearBuffers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if s.filter != nil {
			s.filter.ClearBuffers()
		}
	}
}

// State returns the state of the named slot; unknown names are absent.
func (p *Pipeline) State(name string) SlotState {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if s.name == name {
			return s.state
		}
	}
	return StateAbsent
}

// Active returns the names of the installed filters in processing order.
func (p *Pipeline) Active() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var names []string
	for _, s := range p.slots {
		if s.filter != nil {
			names = append(names, s.name)
		}
	}
	return names
}

// Status describes every slot in catalog order.
func (p *Pipeline) Status() []SlotStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SlotStatus, 0, len(p.slots))
	for _, s := range p.slots {
		st := SlotStatus{Name: s.name, State: s.state}
		if s.filter != nil {
			st.BufferedSamples = s.filter.BufferedSamples()
		}
		out = append(out, st)
	}
	return out
}

// Close releases every instance. Later rebuilds fail and Process is a
// no-op. Close is idempotent.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for _, s := range p.slots {
		s.filter = nil
		p.transition(s, StateAbsent)
		if p.metrics != nil {
			p.metrics.SetSlotActive(s.name, false)
		}
	}
	GetLogger().Info("pipeline closed")
	return nil
}
