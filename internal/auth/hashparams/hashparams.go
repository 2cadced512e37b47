// Package hashparams holds the argon2id cost limits shared by the password
// hasher and the configuration loader. A record hashed within these limits
// always verifies.
package hashparams

import (
	"errors"
	"fmt"
)

const (
	MinTime      = 1
	MaxTime      = 16
	MinMemoryKiB = 8
	MaxMemoryKiB = 256 * 1024
	MinThreads   = 1
	MaxThreads   = 255
	MaxKeyLen    = 128
)

var (
	ErrTimeOutOfRange    = errors.New("argon2 time out of range")
	ErrMemoryOutOfRange  = errors.New("argon2 memory out of range")
	ErrThreadsOutOfRange = errors.New("argon2 threads out of range")
)

// Check reports the first parameter outside its limits.
func Check(time, memoryKiB, threads int) error {
	switch {
	case time < MinTime || time > MaxTime:
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrTimeOutOfRange, time, MinTime, MaxTime)
	case memoryKiB < MinMemoryKiB || memoryKiB > MaxMemoryKiB:
		return fmt.Errorf("%w: %d KiB not in [%d, %d]", ErrMemoryOutOfRange, memoryKiB, MinMemoryKiB, MaxMemoryKiB)
	case threads < MinThreads || threads > MaxThreads:
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrThreadsOutOfRange, threads, MinThreads, MaxThreads)
	}
	return nil
}

// Clamp pulls each value into its limits.
func Clamp(time, memoryKiB, threads int) (uint32, uint32, uint8) {
	return uint32(clamp(time, MinTime, MaxTime)),
		uint32(clamp(memoryKiB, MinMemoryKiB, MaxMemoryKiB)),
		uint8(clamp(threads, MinThreads, MaxThreads))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
