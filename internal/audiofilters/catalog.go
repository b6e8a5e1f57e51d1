// Package audiofilters registers the bundle's audio filters and extensions,
// builds fresh instances by name and drives the settings panel.
package audiofilters

import "github.com/tphakala/go-audiofilters/internal/logger"

// Kind classifies a catalog entry.
type Kind int

const (
	// KindAudioFilter marks a sample-processing filter hosted in a pipeline slot.
	KindAudioFilter Kind = iota
	// KindExtension marks a non-processing component such as an editor.
	KindExtension
)

// String returns the lowercase wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAudioFilter:
		return "audio_filter"
	case KindExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Catalog entry names. These are the lookup keys of CreateInstance.
const (
	NameBS2B            = "BS2B"
	NameEqualizer       = "Equalizer"
	NameEqualizerGUI    = "Equalizer GUI"
	NameVoiceRemoval    = "VoiceRemoval"
	NamePhaseReverse    = "PhaseReverse"
	NameEcho            = "Echo"
	NameDysonCompressor = "DysonCompressor"
)

// ModuleInfo describes one catalog entry.
type ModuleInfo struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

var catalog = []ModuleInfo{
	{NameBS2B, KindAudioFilter},
	{NameEqualizer, KindAudioFilter},
	{NameEqualizerGUI, KindExtension},
	{NameVoiceRemoval, KindAudioFilter},
	{NamePhaseReverse, KindAudioFilter},
	{NameEcho, KindAudioFilter},
	{NameDysonCompressor, KindAudioFilter},
}

// Catalog returns a copy of the catalog in enumeration order.
func Catalog() []ModuleInfo {
	out := make([]ModuleInfo, len(catalog))
	copy(out, catalog)
	return out
}

// FilterNames returns the names of the AudioFilter entries in catalog order.
func FilterNames() []string {
	names := make([]string, 0, len(catalog))
	for _, m := range catalog {
		if m.Kind == KindAudioFilter {
			names = append(names, m.Name)
		}
	}
	return names
}

// GetLogger returns the audiofilters module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("audiofilters")
}
