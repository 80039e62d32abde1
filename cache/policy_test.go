package cache

import (
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Validity != 5*time.Minute {
		t.Errorf("Validity = %v, want 5m", p.Validity)
	}
	if p.Retention != 5*time.Minute {
		t.Errorf("Retention = %v, want 5m", p.Retention)
	}
	if p.SweepInterval != 10*time.Minute {
		t.Errorf("SweepInterval = %v, want 10m", p.SweepInterval)
	}
	if p.Coalesce {
		t.Error("Coalesce should default to false")
	}
}

func TestPolicy_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Policy
		want Policy
	}{
		{
			name: "zero",
			in:   Policy{},
			want: Policy{Validity: DefaultValidity, Retention: DefaultValidity, SweepInterval: DefaultSweepInterval},
		},
		{
			name: "retention follows validity",
			in:   Policy{Validity: time.Minute},
			want: Policy{Validity: time.Minute, Retention: time.Minute, SweepInterval: DefaultSweepInterval},
		},
		{
			name: "explicit values kept",
			in:   Policy{Validity: time.Minute, Retention: time.Hour, SweepInterval: 30 * time.Second, Coalesce: true},
			want: Policy{Validity: time.Minute, Retention: time.Hour, SweepInterval: 30 * time.Second, Coalesce: true},
		},
		{
			name: "negative treated as unset",
			in:   Policy{Validity: -1, Retention: -1, SweepInterval: -1},
			want: Policy{Validity: DefaultValidity, Retention: DefaultValidity, SweepInterval: DefaultSweepInterval},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPolicy_Unified(t *testing.T) {
	if !DefaultPolicy().Unified() {
		t.Error("default policy should be unified")
	}
	if !UnifiedPolicy(2 * time.Minute).Unified() {
		t.Error("UnifiedPolicy should be unified")
	}
	if (Policy{Validity: time.Minute, Retention: time.Hour}).Unified() {
		t.Error("distinct windows reported as unified")
	}
}
