package engine

import (
	"errors"
	"testing"
)

func TestNewStepID_Valid(t *testing.T) {
	cases := []string{
		"pkg:install:zsh",
		"shell:clone:oh-my-zsh",
		"nvim:install:binary",
		"shell:clone:zsh-autosuggestions",
		"pkg:update:index",
		"single",
	}
	for _, value := range cases {
		id, err := NewStepID(value)
		if err != nil {
			t.Errorf("NewStepID(%q) error = %v", value, err)
		}
		if id.String() != value {
			t.Errorf("String() = %q, want %q", id.String(), value)
		}
	}
}

func TestNewStepID_Empty(t *testing.T) {
	_, err := NewStepID("  ")
	if !errors.Is(err, ErrEmptyStepID) {
		t.Errorf("NewStepID error = %v, want %v", err, ErrEmptyStepID)
	}
}

func TestNewStepID_Invalid(t *testing.T) {
	cases := []string{
		":leading",
		"trailing:",
		"has space:install",
		"double::colon",
	}
	for _, value := range cases {
		if _, err := NewStepID(value); !errors.Is(err, ErrInvalidStepID) {
			t.Errorf("NewStepID(%q) error = %v, want %v", value, err, ErrInvalidStepID)
		}
	}
}

func TestStepID_Provider(t *testing.T) {
	id := MustNewStepID("pkg:install:zsh")
	if id.Provider() != "pkg" {
		t.Errorf("Provider() = %q, want %q", id.Provider(), "pkg")
	}
}

func TestStepID_Equals(t *testing.T) {
	a := MustNewStepID("pkg:install:zsh")
	b := MustNewStepID("pkg:install:zsh")
	c := MustNewStepID("pkg:install:git")

	if !a.Equals(b) {
		t.Error("identical ids should be equal")
	}
	if a.Equals(c) {
		t.Error("different ids should not be equal")
	}
}

func TestStepID_IsZero(t *testing.T) {
	var zero StepID
	if !zero.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if MustNewStepID("pkg:install:zsh").IsZero() {
		t.Error("constructed id should not report IsZero")
	}
}
