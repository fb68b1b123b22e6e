package util

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"ECONNRESET", syscall.ECONNRESET, true},
		{"ETIMEDOUT", syscall.ETIMEDOUT, true},
		{"ENOENT (not retryable)", syscall.ENOENT, false},
		{"timeout in message", errors.New("client timeout awaiting headers"), true},
		{"generic error", errors.New("invalid argument"), false},
		{"context canceled", context.Canceled, false},
		{"status 503", &RemoteFetchError{Status: 503, URL: "http://x/a"}, true},
		{"status 429", &RemoteFetchError{Status: 429, URL: "http://x/a"}, true},
		{"status 404 (not retryable)", &RemoteFetchError{Status: 404, URL: "http://x/a"}, false},
		{"status 400 with timeout text", &RemoteFetchError{Status: 400, URL: "http://x/timeout"}, false},
		{"transport failure", &RemoteFetchError{URL: "http://x/a", Err: syscall.ECONNREFUSED}, true},
		{"wrapped 502", fmt.Errorf("page 3: %w", &RemoteFetchError{Status: 502, URL: "http://x/a"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsRetryableError(tt.err)
			if result != tt.expected {
				t.Errorf("IsRetryableError(%v) = %v, expected %v", tt.err, result, tt.expected)
			}
		})
	}
}

func testRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 10 * time.Millisecond,
		MaxWait:     100 * time.Millisecond,
	}
}

func TestRetryWithBackoff_ImmediateSuccess(t *testing.T) {
	attempts := 0
	result, err := RetryWithBackoff(context.Background(), testRetryConfig(), func() (int, error) {
		attempts++
		return 42, nil
	}, "test operation")

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if result != 42 {
		t.Errorf("Expected result 42, got: %d", result)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	result, err := RetryWithBackoff(context.Background(), testRetryConfig(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", &RemoteFetchError{Status: 502, URL: "http://x"}
		}
		return "success", nil
	}, "test operation")

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected result 'success', got: %s", result)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestRetryWithBackoff_FailureAfterMaxRetries(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff(context.Background(), testRetryConfig(), func() (int, error) {
		attempts++
		return 0, syscall.ETIMEDOUT
	}, "test operation")

	if err == nil {
		t.Fatal("Expected error after max retries, got nil")
	}
	if !errors.Is(err, syscall.ETIMEDOUT) {
		t.Errorf("Expected wrapped ETIMEDOUT, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts (max), got: %d", attempts)
	}
}

func TestRetryWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff(context.Background(), testRetryConfig(), func() (int, error) {
		attempts++
		return 0, &RemoteFetchError{Status: 404, URL: "http://x"}
	}, "test operation")

	var fetchErr *RemoteFetchError
	if !errors.As(err, &fetchErr) || fetchErr.Status != 404 {
		t.Errorf("Expected RemoteFetchError 404, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry for non-retryable), got: %d", attempts)
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	cfg := &RetryConfig{MaxAttempts: 5, InitialWait: time.Second, MaxWait: time.Second}

	_, err := RetryWithBackoff(ctx, cfg, func() (int, error) {
		attempts++
		cancel()
		return 0, syscall.ECONNRESET
	}, "test operation")

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got: %d", attempts)
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxAttempts != 3 {
		t.Errorf("Expected MaxAttempts=3, got: %d", cfg.MaxAttempts)
	}
	if cfg.InitialWait != 250*time.Millisecond {
		t.Errorf("Expected InitialWait=250ms, got: %v", cfg.InitialWait)
	}
	if cfg.MaxWait != 5*time.Second {
		t.Errorf("Expected MaxWait=5s, got: %v", cfg.MaxWait)
	}
}
