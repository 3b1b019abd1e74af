// Package cpu describes the host processors available to band fitting.
//
// It reports the processing-unit count used to resolve automatic worker
// counts and the SIMD extensions the vector kernels will dispatch to.
// Feature detection runs once and is cached; the processing-unit count is
// read on every call so that a constructor sees the value current at the
// time it runs. Both can be overridden for tests.
package cpu

import (
	"runtime"
	"sync"
)

// Features describes host capabilities relevant to interpolation workloads.
type Features struct {
	// x86/amd64 SIMD features
	HasSSE2 bool
	HasAVX  bool
	HasAVX2 bool

	// ARM SIMD features
	HasNEON bool

	// Runtime information
	Architecture string // runtime.GOARCH (e.g., "amd64", "arm64")
}

// SIMD returns a short name for the widest vector extension present.
func (f Features) SIMD() string {
	switch {
	case f.HasAVX2:
		return "AVX2"
	case f.HasAVX:
		return "AVX"
	case f.HasSSE2:
		return "SSE2"
	case f.HasNEON:
		return "NEON"
	default:
		return "None"
	}
}

var (
	detectedFeatures Features
	detectOnce       sync.Once
	detectMutex      sync.Mutex

	// forcedFeatures and forcedUnits override detection for testing.
	forcedFeatures *Features
	forcedUnits    int
	forcedMutex    sync.RWMutex
)

// DetectFeatures returns the SIMD features available on the current system.
// Detection is performed once and cached.
func DetectFeatures() Features {
	forcedMutex.RLock()
	forced := forcedFeatures
	forcedMutex.RUnlock()

	if forced != nil {
		return *forced
	}

	detectMutex.Lock()
	detectOnce.Do(func() {
		detectedFeatures = detectFeaturesImpl()
	})
	features := detectedFeatures
	detectMutex.Unlock()

	return features
}

// ProcessingUnits returns the number of logical CPUs usable by the process.
func ProcessingUnits() int {
	forcedMutex.RLock()
	n := forcedUnits
	forcedMutex.RUnlock()

	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// SetForcedFeatures overrides feature detection. Intended for tests.
func SetForcedFeatures(f Features) {
	forcedMutex.Lock()
	defer forcedMutex.Unlock()
	forced := f
	forcedFeatures = &forced
}

// SetForcedProcessingUnits overrides the processing-unit count. Values <= 0
// restore the runtime count. Intended for tests.
func SetForcedProcessingUnits(n int) {
	forcedMutex.Lock()
	forcedUnits = n
	forcedMutex.Unlock()
}

// ResetDetection clears all overrides and the detection cache.
func ResetDetection() {
	forcedMutex.Lock()
	forcedFeatures = nil
	forcedUnits = 0
	forcedMutex.Unlock()

	detectMutex.Lock()
	detectOnce = sync.Once{}
	detectedFeatures = Features{}
	detectMutex.Unlock()
}
