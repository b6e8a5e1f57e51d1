package audiofilters

import (
	"sync"
	"testing"

	"github.com/go-audio/audio"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audiofilters/internal/conf"
)

const testConfigPath = "/config/" + conf.ConfigFileName

// newTestStore opens a store over an in-memory file holding content.
func newTestStore(t *testing.T, content string) *conf.ViperStore {
	t.Helper()
	fs := afero.NewMemMapFs()
	if content != "" {
		require.NoError(t, afero.WriteFile(fs, testConfigPath, []byte(content), 0o644))
	}
	store, err := conf.NewViperStore(testConfigPath, conf.WithFs(fs))
	require.NoError(t, err)
	return store
}

// newTestBundle returns a bundle over a normalized in-memory store.
func newTestBundle(t *testing.T, content string, opts ...Option) (*Bundle, *conf.ViperStore) {
	t.Helper()
	store := newTestStore(t, content)
	b, err := New(store, opts...)
	require.NoError(t, err)
	return b, store
}

// recordingRebuilder remembers every rebuild request.
type recordingRebuilder struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (r *recordingRebuilder) Rebuild(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	return r.err
}

func (r *recordingRebuilder) requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func newBuffer(channels, sampleRate int, data []float64) *audio.FloatBuffer {
	return &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:   data,
	}
}

// interleave builds a stereo buffer from two channel slices of equal length.
func interleave(left, right []float64) []float64 {
	out := make([]float64, 0, 2*len(left))
	for i := range left {
		out = append(out, left[i], right[i])
	}
	return out
}
