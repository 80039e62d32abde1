package health

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

// SystemMemoryChecker reports host memory pressure. The response cache
// holds every payload in process memory, so a host running short of RAM
// is the first sign the validity window is too long.
type SystemMemoryChecker struct {
	warnPercent     float64
	criticalPercent float64
	read            func(context.Context) (*mem.VirtualMemoryStat, error)
}

// NewSystemMemoryChecker creates a SystemMemoryChecker. Thresholds are
// used-memory percentages; zero or out of range values default to 85 and 95.
func NewSystemMemoryChecker(warnPercent, criticalPercent float64) *SystemMemoryChecker {
	if warnPercent <= 0 || warnPercent >= 100 {
		warnPercent = 85
	}
	if criticalPercent <= warnPercent || criticalPercent > 100 {
		criticalPercent = max(95, warnPercent)
	}
	return &SystemMemoryChecker{
		warnPercent:     warnPercent,
		criticalPercent: criticalPercent,
		read:            mem.VirtualMemoryWithContext,
	}
}

// Name returns "system_memory".
func (c *SystemMemoryChecker) Name() string { return "system_memory" }

// Check reads host memory usage.
func (c *SystemMemoryChecker) Check(ctx context.Context) Result {
	vm, err := c.read(ctx)
	if err != nil {
		// Unsupported platforms should not fail readiness.
		return Degraded("system memory unavailable").WithDetails(map[string]any{"error": err.Error()})
	}

	details := map[string]any{
		"total_bytes":     vm.Total,
		"available_bytes": vm.Available,
		"used_percent":    vm.UsedPercent,
	}
	msg := fmt.Sprintf("system memory used: %.1f%%", vm.UsedPercent)
	switch {
	case vm.UsedPercent >= c.criticalPercent:
		return Unhealthy(msg, ErrCheckFailed).WithDetails(details)
	case vm.UsedPercent >= c.warnPercent:
		return Degraded(msg).WithDetails(details)
	default:
		return Healthy(msg).WithDetails(details)
	}
}

var _ Checker = (*SystemMemoryChecker)(nil)
