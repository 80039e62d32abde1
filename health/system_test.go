package health

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/mem"
)

func TestSystemMemoryChecker(t *testing.T) {
	tests := []struct {
		name string
		used float64
		err  error
		want Status
	}{
		{"normal", 40, nil, StatusHealthy},
		{"high", 90, nil, StatusDegraded},
		{"critical", 97, nil, StatusUnhealthy},
		{"unavailable", 0, errors.New("not implemented"), StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSystemMemoryChecker(0, 0)
			c.read = func(context.Context) (*mem.VirtualMemoryStat, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &mem.VirtualMemoryStat{Total: 100, UsedPercent: tt.used}, nil
			}
			if got := c.Check(context.Background()).Status; got != tt.want {
				t.Errorf("Status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSystemMemoryChecker_Thresholds(t *testing.T) {
	c := NewSystemMemoryChecker(90, 50)
	if c.warnPercent != 90 || c.criticalPercent != 95 {
		t.Errorf("thresholds = %v/%v, want 90/95", c.warnPercent, c.criticalPercent)
	}
	if c.Name() != "system_memory" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestSystemMemoryChecker_Live(t *testing.T) {
	r := NewSystemMemoryChecker(0, 0).Check(context.Background())
	if r.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}
