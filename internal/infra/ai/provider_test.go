package ai

import (
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureReason
	}{
		{"nil", nil, FailureUnknown},
		{"rate limit phrase", errors.New("openai: rate limit exceeded"), FailureRateLimit},
		{"429 status", errors.New("API error 429: slow down"), FailureRateLimit},
		{"401 status", errors.New("API error 401"), FailureAuth},
		{"unauthorized", errors.New("request unauthorized"), FailureAuth},
		{"bad key", errors.New("invalid API key provided"), FailureAuth},
		{"timeout", errors.New("request timeout after 30s"), FailureTimeout},
		{"deadline", errors.New("context deadline exceeded"), FailureTimeout},
		{"anything else", errors.New("connection reset by peer"), FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestFallbackLineNeverEmpty(t *testing.T) {
	reasons := []FailureReason{FailureRateLimit, FailureAuth, FailureTimeout, FailureEmpty, FailureUnknown}
	for _, r := range reasons {
		if line := FallbackLine(r); line != DefaultFallback {
			t.Errorf("FallbackLine(%q) = %q, want the default fallback", r, line)
		}
	}
}

func TestBudgetGateEnforcesDailyLimit(t *testing.T) {
	gate := NewBudgetGate(1.00, 10.00)

	if !gate.CanSpend(0.50) {
		t.Error("fresh gate should allow spend within daily limit")
	}

	gate.RecordSpend(0.80)
	if gate.CanSpend(0.30) {
		t.Error("spend of 0.30 should be denied, would exceed daily limit of 1.00")
	}
	if !gate.CanSpend(0.20) {
		t.Error("spend of 0.20 should fit exactly within daily limit")
	}
}

func TestBudgetGateEnforcesMonthlyLimit(t *testing.T) {
	gate := NewBudgetGate(100.00, 5.00)

	gate.RecordSpend(4.90)
	if gate.CanSpend(0.50) {
		t.Error("spend should be denied by monthly limit even while under daily limit")
	}
}

func TestBudgetGateAccumulatesSpend(t *testing.T) {
	gate := NewBudgetGate(1.00, 10.00)

	gate.RecordSpend(0.25)
	gate.RecordSpend(0.25)

	if gate.CurrentDaySpend != 0.50 {
		t.Errorf("CurrentDaySpend = %v, want 0.50", gate.CurrentDaySpend)
	}
	if gate.CurrentMonthSpend != 0.50 {
		t.Errorf("CurrentMonthSpend = %v, want 0.50", gate.CurrentMonthSpend)
	}
}

func TestBudgetGateStatus(t *testing.T) {
	gate := NewBudgetGate(1.00, 10.00)
	gate.RecordSpend(0.25)

	want := "Day: $0.25/1.00 | Month: $0.25/10.00"
	if got := gate.GetStatus(); got != want {
		t.Errorf("GetStatus() = %q, want %q", got, want)
	}
}
