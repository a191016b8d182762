package jobs

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// StackBytesPerFiber scales the reserved fiber stack with the fiber count so
// total reservation stays predictable.
const StackBytesPerFiber = 1024

// Sizing is the argument set handed to Scheduler.Init.
type Sizing struct {
	Workers         int
	Fibers          int
	FiberStackBytes int
}

// Size derives the pool sizing from the configured fiber count. A positive
// workers override replaces the host processor count.
func Size(numFibers, workers int) Sizing {
	if workers <= 0 {
		workers = ProcessorCount()
	}
	return Sizing{
		Workers:         workers,
		Fibers:          numFibers,
		FiberStackBytes: numFibers * StackBytesPerFiber,
	}
}

// ProcessorCount returns the host's logical processor count.
func ProcessorCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
