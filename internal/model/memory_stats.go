package model

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/Sagun15/edfi-apis-sub000/internal/logger"
)

func readAllocBytes() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

func countFieldsAndFilters() (int, int) {
	fields := 0
	filters := 0
	for _, m := range Registry {
		fields += len(m.Fields)
		filters += len(m.Filters)
	}
	return fields, filters
}

// logRegistryStats reports what was loaded and the heap it took.
func logRegistryStats(dir string, allocBefore uint64) {
	after := readAllocBytes()
	var delta uint64
	if after > allocBefore {
		delta = after - allocBefore
	}
	fields, filters := countFieldsAndFilters()
	limit, source := detectMemoryLimit()
	logger.Info("registry_loaded", map[string]any{
		"dir":          dir,
		"resources":    len(Registry),
		"fields":       fields,
		"filters":      filters,
		"heap_delta":   formatBytes(delta),
		"memory_limit": formatBytes(limit),
		"limit_source": source,
	})
}

// detectMemoryLimit best-effort detection of memory limit (cgroup or MemTotal). Returns bytes and source label.
func detectMemoryLimit() (uint64, string) {
	// cgroup v2: memory.max
	if data, err := os.ReadFile("/sys/fs/cgroup/memory.max"); err == nil {
		if v, ok := parseLimitValue(string(data)); ok {
			return v, "cgroup v2 memory.max"
		}
	}
	// cgroup v1
	if data, err := os.ReadFile("/sys/fs/cgroup/memory/memory.limit_in_bytes"); err == nil {
		if v, ok := parseLimitValue(string(data)); ok {
			return v, "cgroup v1 memory.limit_in_bytes"
		}
	}
	// /proc/meminfo
	if data, err := os.ReadFile("/proc/meminfo"); err == nil {
		for _, ln := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(ln, "MemTotal:") {
				fields := strings.Fields(ln)
				if len(fields) >= 2 {
					if kb, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
						return kb * 1024, "proc meminfo MemTotal"
					}
				}
			}
		}
	}
	return 0, "unknown"
}

func parseLimitValue(raw string) (uint64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "max" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatBytes(v uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case v >= gb:
		return strconv.FormatFloat(float64(v)/float64(gb), 'f', 2, 64) + " GB"
	case v >= mb:
		return strconv.FormatFloat(float64(v)/float64(mb), 'f', 2, 64) + " MB"
	case v >= kb:
		return strconv.FormatFloat(float64(v)/float64(kb), 'f', 2, 64) + " KB"
	default:
		return strconv.FormatUint(v, 10) + " B"
	}
}
