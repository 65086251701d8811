package srs

import (
	"errors"
	"testing"
)

func TestParseQuality(t *testing.T) {
	for n := 0; n <= 5; n++ {
		q, err := ParseQuality(n)
		if err != nil {
			t.Errorf("ParseQuality(%d): %v", n, err)
		}
		if int(q) != n {
			t.Errorf("ParseQuality(%d) = %d", n, q)
		}
	}
	for _, n := range []int{-1, 6, 42} {
		if _, err := ParseQuality(n); !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("ParseQuality(%d) err = %v, want ErrInvalidQuality", n, err)
		}
	}
}

func TestQualityOutcome(t *testing.T) {
	tests := []struct {
		q    Quality
		want Outcome
	}{
		{Blackout, Fail},
		{Incorrect, Fail},
		{Familiar, Fail},
		{Difficult, Pass},
		{Hesitant, Pass},
		{Perfect, Pass},
	}
	for _, tt := range tests {
		if got := tt.q.Outcome(); got != tt.want {
			t.Errorf("%v.Outcome() = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestQualityString(t *testing.T) {
	if got := Perfect.String(); got != "Perfect" {
		t.Errorf("Perfect.String() = %q", got)
	}
	if got := Quality(9).String(); got != "Quality(9)" {
		t.Errorf("Quality(9).String() = %q", got)
	}
}

func TestSentinelErrorPrefix(t *testing.T) {
	for _, err := range []error{ErrInvalidQuality, ErrInvariantViolation} {
		if msg := err.Error(); len(msg) < 5 || msg[:5] != "srs: " {
			t.Errorf("%q should start with \"srs: \"", msg)
		}
	}
}
