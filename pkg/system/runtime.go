package system

import (
	"fmt"
	"runtime"
)

// RuntimeStats is the Go runtime view reported by the health endpoint.
// Host level CPU and memory are exported by the process collector on
// /metrics.
type RuntimeStats struct {
	Goroutines int    `json:"goroutines"`
	HeapAlloc  string `json:"heap_alloc"`
	HeapInuse  string `json:"heap_inuse"`
	StackInuse string `json:"stack_inuse"`
	SystemMem  string `json:"system_mem"`
	GCCycles   uint32 `json:"gc_cycles"`
}

// ReadRuntimeStats samples the Go runtime
func ReadRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  FormatBytes(m.HeapAlloc),
		HeapInuse:  FormatBytes(m.HeapInuse),
		StackInuse: FormatBytes(m.StackInuse),
		SystemMem:  FormatBytes(m.Sys),
		GCCycles:   m.NumGC,
	}
}

// FormatBytes renders a byte count with a binary unit
func FormatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1fGB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
