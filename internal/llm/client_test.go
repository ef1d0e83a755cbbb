package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

func TestNewAppliesTimeout(t *testing.T) {
	c := New(Config{
		BaseURL: "http://localhost:11434/v1",
		Timeout: 42 * time.Second,
	}, logger.Nop())

	if c == nil || c.api == nil {
		t.Fatal("New() returned an unusable client")
	}
}

func TestNewWithoutLimiterOrBreaker(t *testing.T) {
	c := New(Config{}, nil)

	if c.limiter != nil {
		t.Error("limiter configured without requests_per_second")
	}
	if c.breaker != nil {
		t.Error("breaker configured without breaker_enabled")
	}
}

func TestNewWithLimiterAndBreaker(t *testing.T) {
	c := New(Config{
		RequestsPerSecond: 2,
		Burst:             4,
		BreakerEnabled:    true,
	}, logger.Nop())

	if c.limiter == nil {
		t.Error("limiter missing")
	}
	if c.breaker == nil {
		t.Error("breaker missing")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", errors.New("request timeout"), true},
		{"rate limit", errors.New("429 rate limit exceeded"), true},
		{"server error", errors.New("status 503 service unavailable"), true},
		{"connection drop", errors.New("connection reset by peer"), true},
		{"bad request", errors.New("status 400 invalid model"), false},
		{"auth", errors.New("status 401 unauthorized"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransient(tt.err); got != tt.want {
				t.Errorf("isTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
