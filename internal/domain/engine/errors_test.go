package engine

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err       error
		transient bool
		perm      bool
		precond   bool
		config    bool
	}{
		{NewTransientError("git clone", "timed out", nil), true, false, false, false},
		{NewPermissionError("chsh", "denied", "sudo chsh"), false, true, false, false},
		{NewPreconditionError("nvim", "asset missing"), false, false, true, false},
		{NewConfigError("cycle", nil), false, false, false, true},
	}

	for _, tc := range cases {
		if IsTransient(tc.err) != tc.transient {
			t.Errorf("IsTransient(%v) = %v", tc.err, !tc.transient)
		}
		if IsPermission(tc.err) != tc.perm {
			t.Errorf("IsPermission(%v) = %v", tc.err, !tc.perm)
		}
		if IsPrecondition(tc.err) != tc.precond {
			t.Errorf("IsPrecondition(%v) = %v", tc.err, !tc.precond)
		}
		if IsConfig(tc.err) != tc.config {
			t.Errorf("IsConfig(%v) = %v", tc.err, !tc.config)
		}
	}
}

func TestIsConfig_GraphSentinels(t *testing.T) {
	for _, err := range []error{ErrCyclicDependency, ErrMissingDep, ErrDuplicateStep, ErrUnknownStep} {
		if !IsConfig(fmt.Errorf("wrapped: %w", err)) {
			t.Errorf("IsConfig(%v) = false, want true", err)
		}
	}
}

func TestError_WrapsUnderlying(t *testing.T) {
	underlying := errors.New("connection reset")
	err := NewTransientError("apt-get update", "mirror unreachable", underlying)

	if !errors.Is(err, underlying) {
		t.Error("transient error should wrap its cause")
	}

	var typed *Error
	if !errors.As(err, &typed) {
		t.Fatal("errors.As should find *Error")
	}
	if typed.Kind != KindTransient {
		t.Errorf("Kind = %v, want %v", typed.Kind, KindTransient)
	}
}

func TestRemedyOf(t *testing.T) {
	err := NewPermissionError("chsh", "denied", "sudo chsh -s /usr/bin/zsh dev")
	if got := RemedyOf(err); got != "sudo chsh -s /usr/bin/zsh dev" {
		t.Errorf("RemedyOf() = %q", got)
	}
	if got := RemedyOf(errors.New("plain")); got != "" {
		t.Errorf("RemedyOf(plain) = %q, want empty", got)
	}
}

func TestError_Message(t *testing.T) {
	err := NewPreconditionError("fetch neovim release", "release has no asset")
	want := "fetch neovim release: release has no asset"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
