package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestNetworkError_Retriable(t *testing.T) {
	base := errors.New("dial tcp: timeout")
	err := NewNetworkError("connect", base)

	if !IsRetriable(err) {
		t.Error("Expected network error to be retriable")
	}
	if !errors.Is(err, base) {
		t.Error("Expected Unwrap to reach the base error")
	}
}

func TestNetworkError_Fatal(t *testing.T) {
	err := NewFatalNetworkError("read", errors.New("protocol violation"))

	if IsRetriable(err) {
		t.Error("Expected fatal network error to be non-retriable")
	}
}

func TestConfigError_NeverRetriable(t *testing.T) {
	err := &ConfigError{Field: "window_length", Err: errors.New("must be positive")}

	if IsRetriable(err) {
		t.Error("Config errors must never be retriable")
	}
	if err.Error() != "config error [window_length]: must be positive" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}
}

func TestConfigError_Wrapped(t *testing.T) {
	inner := &ConfigError{Field: "nodes", Err: errors.New("must be positive")}
	wrapped := fmt.Errorf("loading session: %w", inner)

	var ce *ConfigError
	if !errors.As(wrapped, &ce) {
		t.Fatal("Expected errors.As to find ConfigError through wrapping")
	}
	if ce.Field != "nodes" {
		t.Errorf("Expected field nodes, got %s", ce.Field)
	}
}

func TestIsRetriable_PlainError(t *testing.T) {
	if IsRetriable(errors.New("plain")) {
		t.Error("Plain errors are not retriable")
	}
}
