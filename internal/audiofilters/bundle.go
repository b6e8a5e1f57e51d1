package audiofilters

import (
	"sync"

	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
	"github.com/tphakala/go-audiofilters/internal/observability/metrics"
)

// Rebuilder is implemented by the host pipeline. Rebuild replaces the
// named filter's slot with a freshly configured instance.
type Rebuilder interface {
	Rebuild(name string) error
}

// RebuilderFunc adapts a function to Rebuilder.
type RebuilderFunc func(name string) error

// Rebuild calls fn(name).
func (fn RebuilderFunc) Rebuild(name string) error {
	return fn(name)
}

// Bundle is the filter factory. It owns no filter instances; every
// CreateInstance call returns a new object owned by the caller.
type Bundle struct {
	store   conf.Store
	metrics *metrics.FilterMetrics
	report  *conf.ValidationReport

	mu        sync.RWMutex
	rebuilder Rebuilder

	// editMu serializes settings edits from panels and equalizer GUIs,
	// from the read of the group through the rebuild request.
	editMu sync.Mutex
}

// Option configures a Bundle.
type Option func(*Bundle)

// WithMetrics records factory and settings activity.
func WithMetrics(m *metrics.FilterMetrics) Option {
	return func(b *Bundle) {
		b.metrics = m
	}
}

// WithRebuilder sets the rebuilder used by Equalizer GUI instances.
func WithRebuilder(r Rebuilder) Option {
	return func(b *Bundle) {
		b.rebuilder = r
	}
}

type constructor func(b *Bundle) any

var constructors = map[string]constructor{
	NameBS2B:            func(b *Bundle) any { return newBS2B(b.store) },
	NameEqualizer:       func(b *Bundle) any { return newEqualizer(b.store) },
	NameEqualizerGUI:    func(b *Bundle) any { return newEqualizerGUI(b) },
	NameVoiceRemoval:    func(b *Bundle) any { return newVoiceRemoval(b.store) },
	NamePhaseReverse:    func(b *Bundle) any { return newPhaseReverse(b.store) },
	NameEcho:            func(b *Bundle) any { return newEcho(b.store) },
	NameDysonCompressor: func(b *Bundle) any { return newDysonCompressor(b.store) },
}

// New normalizes the stored settings and returns the factory. Bad stored
// values are corrected silently; an error means the store is missing or
// could not persist the corrections.
func New(store conf.Store, opts ...Option) (*Bundle, error) {
	b := &Bundle{store: store}
	for _, opt := range opts {
		opt(b)
	}

	report, err := conf.NormalizeSettings(store)
	if err != nil {
		return nil, errors.New(err).
			Component("audiofilters").
			Category(errors.CategoryConfiguration).
			Context("operation", "bundle_init").
			Build()
	}
	b.report = report

	if b.metrics != nil {
		for _, r := range report.Reset {
			b.metrics.RecordValidatorReset(r.Key)
		}
		b.metrics.RecordValidatorWrites(report.Writes)
		if report.EqualizerDisabled {
			b.metrics.RecordEqualizerAutoDisabled()
		}
	}

	GetLogger().Info("filter bundle ready",
		logger.Int("modules", len(catalog)),
		logger.Int("initialized_keys", len(report.Initialized)),
		logger.Int("reset_keys", len(report.Reset)),
		logger.Int("bands_created", report.BandsCreated),
		logger.Bool("equalizer_disabled", report.EqualizerDisabled))

	return b, nil
}

// Store returns the settings store.
func (b *Bundle) Store() conf.Store {
	return b.store
}

// ValidationReport returns what startup normalization changed.
func (b *Bundle) ValidationReport() *conf.ValidationReport {
	return b.report
}

// SetRebuilder replaces the rebuilder handed to Equalizer GUI instances
// created afterwards. The pipeline depends on the bundle, so it is usually
// attached after construction.
func (b *Bundle) SetRebuilder(r Rebuilder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rebuilder = r
}

func (b *Bundle) currentRebuilder() Rebuilder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rebuilder
}

// ModulesInfo returns the catalog in enumeration order.
func (b *Bundle) ModulesInfo() []ModuleInfo {
	return Catalog()
}

// CreateInstance returns a new AudioFilter or Extension for name, or nil
// when name is not in the catalog. Lookup is exact and case-sensitive.
func (b *Bundle) CreateInstance(name string) any {
	ctor, ok := constructors[name]
	if !ok {
		if b.metrics != nil {
			b.metrics.RecordUnknownLookup()
		}
		GetLogger().Debug("unknown module requested", logger.String("name", name))
		return nil
	}
	instance := ctor(b)
	if b.metrics != nil {
		kind := KindAudioFilter
		if _, ok := instance.(Extension); ok {
			kind = KindExtension
		}
		b.metrics.RecordInstanceCreated(name, kind.String())
	}
	return instance
}

// CreateFilter is CreateInstance restricted to AudioFilter entries.
func (b *Bundle) CreateFilter(name string) (AudioFilter, bool) {
	if _, ok := constructors[name]; !ok {
		return nil, false
	}
	f, ok := b.CreateInstance(name).(AudioFilter)
	return f, ok
}

// SettingsPanel returns a panel bound to the bundle's store. r receives a
// rebuild request after every committed group edit.
func (b *Bundle) SettingsPanel(r Rebuilder) *Panel {
	return &Panel{bundle: b, store: b.store, rebuilder: r}
}

// edit runs fn under the bundle's edit lock.
func (b *Bundle) edit(fn func() error) error {
	b.editMu.Lock()
	defer b.editMu.Unlock()
	return fn()
}

// requestRebuild asks r to rebuild name. A nil r only persists.
func (b *Bundle) requestRebuild(r Rebuilder, name string) error {
	if b.metrics != nil {
		b.metrics.RecordRebuildRequest(name)
	}
	if r == nil {
		GetLogger().Debug("no rebuilder attached, settings persisted only", logger.String("filter", name))
		return nil
	}
	if err := r.Rebuild(name); err != nil {
		return errors.New(err).
			Component("audiofilters").
			Category(errors.CategoryPipeline).
			Context("filter", name).
			Context("operation", "rebuild_request").
			Build()
	}
	return nil
}

func (b *Bundle) recordWrite(group string) {
	if b.metrics != nil {
		b.metrics.RecordSettingsWrite(group)
	}
}

func (b *Bundle) recordRejected(group string) {
	if b.metrics != nil {
		b.metrics.RecordSettingsRejected(group)
	}
}
