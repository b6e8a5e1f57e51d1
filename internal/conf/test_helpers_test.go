package conf

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testConfigPath = "/config/" + ConfigFileName

// newMemoryStore returns a store on an in-memory filesystem, with autosave on
// so every write exercises persistence.
func newMemoryStore(t *testing.T) (*ViperStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewViperStore(testConfigPath, WithFs(fs))
	require.NoError(t, err)
	return store, fs
}

// newStoreFromYAML writes content to the in-memory settings file and opens it.
func newStoreFromYAML(t *testing.T, content string) (*ViperStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testConfigPath, []byte(content), 0o644))
	store, err := NewViperStore(testConfigPath, WithFs(fs))
	require.NoError(t, err)
	return store, fs
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	var v int
	_, err := fmt.Sscanf(s, "%d", &v)
	require.NoError(t, err)
	return v
}
