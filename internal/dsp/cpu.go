package dsp

import (
	"github.com/klauspost/cpuid/v2"
)

// CPUInfo describes the host CPU as far as the vectorized kernels care.
type CPUInfo struct {
	Brand        string   `json:"brand"`
	LogicalCores int      `json:"logical_cores"`
	SIMD         []string `json:"simd"`
}

// simdFeatures are the instruction sets the FIR and scaling kernels can use.
var simdFeatures = []struct {
	id   cpuid.FeatureID
	name string
}{
	{cpuid.SSE2, "sse2"},
	{cpuid.AVX, "avx"},
	{cpuid.AVX2, "avx2"},
	{cpuid.FMA3, "fma3"},
	{cpuid.AVX512F, "avx512f"},
	{cpuid.ASIMD, "neon"},
}

// DetectCPU reports the host CPU brand, core count and available SIMD
// instruction sets.
func DetectCPU() CPUInfo {
	info := CPUInfo{
		Brand:        cpuid.CPU.BrandName,
		LogicalCores: cpuid.CPU.LogicalCores,
		SIMD:         []string{},
	}
	for _, f := range simdFeatures {
		if cpuid.CPU.Supports(f.id) {
			info.SIMD = append(info.SIMD, f.name)
		}
	}
	return info
}
