package conf

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

// EnvPrefix is the prefix for environment variables overriding stored keys.
// Equalizer/nbits is read from AUDIOFILTERS_EQUALIZER_NBITS.
const EnvPrefix = "AUDIOFILTERS"

// keyDelimiter keeps "/"-separated setting names flat inside viper so that
// "Equalizer" (a bool) and "Equalizer/nbits" can coexist.
const keyDelimiter = "::"

// Store is the persistent key/value settings store shared by every filter.
type Store interface {
	// Init writes def under key only when key is absent and reports whether
	// it wrote.
	Init(key string, def any) (bool, error)
	IsSet(key string) bool
	GetBool(key string) bool
	GetInt(key string) int
	GetFloat64(key string) float64
	Set(key string, value any) error
	Save() error
	Keys() []string
}

// ViperStore is a Store backed by viper and persisted as flat YAML.
type ViperStore struct {
	mu        sync.Mutex
	v         *viper.Viper
	fs        afero.Fs
	path      string
	canonical map[string]string
	autosave  bool
	writes    int
	log       logger.Logger
}

// StoreOption configures a ViperStore.
type StoreOption func(*ViperStore)

// WithFs sets the filesystem used for loading and saving.
func WithFs(fs afero.Fs) StoreOption {
	return func(s *ViperStore) { s.fs = fs }
}

// WithAutosave controls whether every Set is persisted immediately.
// Autosave is on by default.
func WithAutosave(enabled bool) StoreOption {
	return func(s *ViperStore) { s.autosave = enabled }
}

// WithEnvOverrides lets AUDIOFILTERS_* environment variables override stored values.
func WithEnvOverrides() StoreOption {
	return func(s *ViperStore) {
		s.v.SetEnvPrefix(EnvPrefix)
		s.v.SetEnvKeyReplacer(strings.NewReplacer("/", "_", "-", "_", " ", "_"))
		s.v.AutomaticEnv()
	}
}

// NewViperStore opens the settings file at path. A missing file is not an
// error; the store starts empty and the file is created on the first save.
// An empty path gives a memory-only store.
func NewViperStore(path string, opts ...StoreOption) (*ViperStore, error) {
	s := &ViperStore{
		v:         viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter)),
		fs:        afero.NewOsFs(),
		path:      path,
		canonical: make(map[string]string),
		autosave:  true,
		log:       GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.v.SetFs(s.fs)
	s.v.SetConfigType("yaml")

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ViperStore) load() error {
	if s.path == "" {
		return nil
	}

	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return errors.New(err).
			Component("configuration").
			Category(errors.CategoryFileIO).
			Context("operation", "stat_settings_file").
			FileContext(s.path).
			Build()
	}
	if !exists {
		s.log.Info("settings file not found, starting with defaults", logger.String("path", s.path))
		return nil
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return errors.New(err).
			Component("configuration").
			Category(errors.CategoryFileIO).
			Context("operation", "read_settings_file").
			FileContext(s.path).
			Build()
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.New(fmt.Errorf("error parsing settings file: %w", err)).
			Component("configuration").
			Category(errors.CategoryFileParsing).
			Context("operation", "parse_settings_file").
			FileContext(s.path).
			Build()
	}
	for key := range raw {
		s.canonical[strings.ToLower(key)] = key
	}

	if err := s.v.ReadConfig(bytes.NewReader(data)); err != nil {
		return errors.New(fmt.Errorf("error loading settings: %w", err)).
			Component("configuration").
			Category(errors.CategoryFileParsing).
			Context("operation", "load_settings").
			Build()
	}

	s.log.Debug("settings loaded", logger.String("path", s.path), logger.Int("keys", len(raw)))
	return nil
}

// Path returns the settings file path.
func (s *ViperStore) Path() string {
	return s.path
}

// Init writes def under key when key is absent.
func (s *ViperStore) Init(key string, def any) (bool, error) {
	if s.IsSet(key) {
		return false, nil
	}
	return true, s.Set(key, def)
}

// IsSet reports whether key holds a value.
func (s *ViperStore) IsSet(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.IsSet(key)
}

// GetBool returns the value of key as a bool, false when absent.
func (s *ViperStore) GetBool(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetBool(key)
}

// GetInt returns the value of key as an int, 0 when absent or not numeric.
func (s *ViperStore) GetInt(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetInt(key)
}

// GetFloat64 returns the value of key as a float64, 0 when absent.
func (s *ViperStore) GetFloat64(key string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetFloat64(key)
}

// Set stores value under key and persists the store when autosave is on.
func (s *ViperStore) Set(key string, value any) error {
	s.mu.Lock()
	s.v.Set(key, value)
	s.canonical[strings.ToLower(key)] = key
	s.writes++
	autosave := s.autosave
	s.mu.Unlock()

	s.log.Trace("setting written", logger.String("key", key), logger.Any("value", value))

	if autosave {
		return s.Save()
	}
	return nil
}

// WriteCount returns the number of Set calls performed on this store.
func (s *ViperStore) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Keys returns every stored key in its canonical spelling, sorted.
func (s *ViperStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keysLocked()
}

func (s *ViperStore) keysLocked() []string {
	keys := make([]string, 0, len(s.canonical))
	for _, lower := range s.v.AllKeys() {
		keys = append(keys, s.canonicalKey(lower))
	}
	slices.Sort(keys)
	return keys
}

func (s *ViperStore) canonicalKey(lower string) string {
	if key, ok := s.canonical[lower]; ok {
		return key
	}
	return lower
}

// Snapshot returns every stored value keyed by canonical name.
func (s *ViperStore) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ViperStore) snapshotLocked() map[string]any {
	out := make(map[string]any, len(s.canonical))
	for _, lower := range s.v.AllKeys() {
		out[s.canonicalKey(lower)] = s.v.Get(lower)
	}
	return out
}

// Save writes the store to its file atomically. Memory-only stores do nothing.
// The snapshot is taken and written under one lock.
func (s *ViperStore) Save() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	yamlData, err := yaml.Marshal(s.snapshotLocked())
	if err != nil {
		return errors.New(fmt.Errorf("error marshaling settings to YAML: %w", err)).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Context("operation", "marshal_settings").
			Build()
	}
	return writeFileAtomic(s.fs, s.path, yamlData)
}

// writeFileAtomic writes data through a temporary file in the target
// directory and renames it into place.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fileError(err, "create_settings_dir", path)
	}

	tempFile, err := afero.TempFile(fs, dir, "settings-*.yaml")
	if err != nil {
		return fileError(err, "create_temp_file", path)
	}
	tempFileName := tempFile.Name()
	defer func() { _ = fs.Remove(tempFileName) }()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fileError(err, "write_temp_file", path)
	}
	if err := tempFile.Close(); err != nil {
		return fileError(err, "close_temp_file", path)
	}
	if err := fs.Rename(tempFileName, path); err != nil {
		return fileError(err, "rename_settings_file", path)
	}
	return nil
}

func fileError(err error, operation, path string) error {
	return errors.New(err).
		Component("configuration").
		Category(errors.CategoryFileIO).
		Context("operation", operation).
		FileContext(path).
		Build()
}
