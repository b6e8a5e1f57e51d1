package dsp

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultKernelTTL is how long an unused designed kernel is kept.
const DefaultKernelTTL = 10 * time.Minute

// KernelCache memoizes DesignLinearPhaseFIR. Equalizer rebuilds with an
// unchanged layout and band set reuse the kernel instead of redesigning it.
// Cached kernels are shared and must not be modified.
type KernelCache struct {
	c *cache.Cache
}

// NewKernelCache creates a cache whose entries expire ttl after they were
// stored. Expired entries are purged on the next store, so no janitor
// goroutine runs.
func NewKernelCache(ttl time.Duration) *KernelCache {
	return &KernelCache{c: cache.New(ttl, 0)}
}

// Design returns the cached kernel for the parameters or designs and stores
// a new one.
func (k *KernelCache) Design(size int, sampleRate float64, freqs, gainsDB []float64) ([]float64, error) {
	if len(freqs) != len(gainsDB) {
		return DesignLinearPhaseFIR(size, sampleRate, freqs, gainsDB)
	}
	key := kernelKey(size, sampleRate, freqs, gainsDB)
	if v, ok := k.c.Get(key); ok {
		return v.([]float64), nil
	}

	kernel, err := DesignLinearPhaseFIR(size, sampleRate, freqs, gainsDB)
	if err != nil {
		return nil, err
	}
	k.c.DeleteExpired()
	k.c.SetDefault(key, kernel)
	return kernel, nil
}

// Len returns the number of cached kernels, expired ones included.
func (k *KernelCache) Len() int {
	return k.c.ItemCount()
}

func kernelKey(size int, sampleRate float64, freqs, gainsDB []float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d@%g", size, sampleRate)
	for i := range freqs {
		fmt.Fprintf(&b, "|%g:%g", freqs[i], gainsDB[i])
	}
	return b.String()
}
