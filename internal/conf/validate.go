package conf

import (
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

// ResetEntry records a stored value replaced by its default.
type ResetEntry struct {
	Key     string `json:"key"`
	Was     int    `json:"was"`
	Default int    `json:"default"`
}

// ValidationReport describes what NormalizeSettings changed.
type ValidationReport struct {
	Initialized       []string     `json:"initialized"`
	Reset             []ResetEntry `json:"reset"`
	BandsCreated      int          `json:"bands_created"`
	EqualizerDisabled bool         `json:"equalizer_disabled"`
	Writes            int          `json:"writes"`
}

// Changed reports whether the run wrote anything.
func (r *ValidationReport) Changed() bool {
	return r.Writes > 0
}

// NormalizeSettings brings the store into a consistent state before any
// filter is instantiated:
//   - absent keys get their defaults
//   - out-of-range equalizer nbits, band count and frequency bounds are
//     replaced with their defaults
//   - the preamp and every band up to the band count get a neutral value
//     when absent
//   - an enabled equalizer whose entries are all neutral is disabled
//
// A second run without external changes writes nothing. Bad stored values
// are never reported as errors; an error means the store could not persist.
func NormalizeSettings(store Store) (*ValidationReport, error) {
	if store == nil {
		return nil, errors.Newf("settings store is nil").
			Component("configuration").
			Category(errors.CategoryValidation).
			Context("operation", "normalize_settings").
			Build()
	}

	log := GetLogger()
	report := &ValidationReport{}

	for _, d := range Defaults() {
		wrote, err := store.Init(d.Key, d.Value)
		if err != nil {
			return report, wrapNormalizeError(err, d.Key)
		}
		if wrote {
			report.Initialized = append(report.Initialized, d.Key)
			report.Writes++
		}
	}

	for _, r := range EqualizerRanges() {
		v := store.GetInt(r.Key)
		if r.Contains(v) {
			continue
		}
		if err := store.Set(r.Key, r.Default); err != nil {
			return report, wrapNormalizeError(err, r.Key)
		}
		report.Reset = append(report.Reset, ResetEntry{Key: r.Key, Was: v, Default: r.Default})
		report.Writes++
		log.Info("stored value out of range, reset to default",
			logger.String("key", r.Key),
			logger.Int("value", v),
			logger.Int("default", r.Default))
	}

	count := store.GetInt(KeyEqualizerCount)
	for i := PreampBand; i < count; i++ {
		key := EqualizerBandKey(i)
		wrote, err := store.Init(key, NeutralBand)
		if err != nil {
			return report, wrapNormalizeError(err, key)
		}
		if wrote {
			report.BandsCreated++
			report.Writes++
		}
	}

	if store.GetBool(KeyEqualizer) && allBandsNeutral(store, count) {
		if err := store.Set(KeyEqualizer, false); err != nil {
			return report, wrapNormalizeError(err, KeyEqualizer)
		}
		report.EqualizerDisabled = true
		report.Writes++
		log.Info("equalizer disabled, all bands neutral")
	}

	log.Debug("settings normalized",
		logger.Int("writes", report.Writes),
		logger.Int("initialized", len(report.Initialized)),
		logger.Int("reset", len(report.Reset)),
		logger.Int("bands_created", report.BandsCreated))

	return report, nil
}

func allBandsNeutral(store Store, count int) bool {
	for i := PreampBand; i < count; i++ {
		if store.GetInt(EqualizerBandKey(i)) != NeutralBand {
			return false
		}
	}
	return true
}

func wrapNormalizeError(err error, key string) error {
	return errors.New(err).
		Component("configuration").
		Category(errors.CategoryConfiguration).
		Context("operation", "normalize_settings").
		Context("key", key).
		Build()
}
