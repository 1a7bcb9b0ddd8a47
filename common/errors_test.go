package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestInsufficientFundsErrorUnwrap(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("accept order: %w",
		&InsufficientFundsError{Required: "2", Available: "1.5"})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatal("expected wrapped ErrInsufficientFunds")
	}
	if !strings.Contains(err.Error(), "required 2 available 1.5") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestTransitionErrorUnwrap(t *testing.T) {
	t.Parallel()
	err := &TransitionError{Current: "completed", Attempted: "accept"}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatal("expected wrapped ErrInvalidTransition")
	}
	if !strings.Contains(err.Error(), "completed") {
		t.Fatalf("current status missing from message: %v", err)
	}
}

func TestStringSliceContains(t *testing.T) {
	t.Parallel()
	if !StringSliceContains([]string{" Bank_Account ", "mobile_money"}, "bank_account") {
		t.Fatal("expected fold-insensitive match")
	}
	if StringSliceContains(nil, "bank_account") {
		t.Fatal("unexpected match on empty haystack")
	}
}

func TestGenerateRandomHex(t *testing.T) {
	t.Parallel()
	a, err := GenerateRandomHex(8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateRandomHex(8)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 16 || a == b {
		t.Fatalf("expected two distinct 16 char strings, got %q %q", a, b)
	}
}
