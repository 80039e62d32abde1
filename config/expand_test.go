package config

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${OPSDASH_MISSING_B} c=${OPSDASH_MISSING_A}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("error = %v, want ErrMissingEnv", err)
	}
	if !strings.Contains(err.Error(), "OPSDASH_MISSING_A, OPSDASH_MISSING_B") {
		t.Fatalf("missing names not listed sorted: %v", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"5m", "5m", false},
		{"1d", "1d", false},
		{"90s", "1m30s", false},
		{"soon", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDuration(tt.in)
			if (err != nil) != tt.err {
				t.Fatalf("ParseDuration(%q) error = %v", tt.in, err)
			}
			if err == nil && d.String() != tt.want {
				t.Errorf("String() = %q, want %q", d.String(), tt.want)
			}
		})
	}
}
