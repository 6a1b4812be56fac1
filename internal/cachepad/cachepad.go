// Package cachepad detects the host's L1 cache line size and compares it
// against the skip list's ASSUMED_CACHE_LINE_SIZE configuration constant,
// so a mismatch (e.g. a 128-byte-line ARM host running with the default
// 64-byte assumption) can be logged instead of silently costing extra
// cross-CPU traffic on the node's hot (forward, flags) fields.
package cachepad

import "github.com/klauspost/cpuid/v2"

// Detected returns the cache line size reported by CPUID, or 0 if the CPU
// feature wasn't detected (cpuid falls back silently on unsupported
// platforms; 0 means "unknown", not "no padding needed").
func Detected() int {
	return cpuid.CPU.CacheLine
}

// Mismatch reports whether the assumed cache line size (a skip-list
// Config field) differs from the size CPUID actually detected. A detected
// size of 0 (unknown) never counts as a mismatch — there's nothing
// actionable to log.
func Mismatch(assumed int) (detected int, mismatched bool) {
	detected = Detected()
	if detected <= 0 {
		return detected, false
	}
	return detected, detected != assumed
}
