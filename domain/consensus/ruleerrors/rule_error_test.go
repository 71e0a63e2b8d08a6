package ruleerrors

import (
	"testing"

	"github.com/pkg/errors"
)

func TestRuleErrorWrapping(t *testing.T) {
	outer := errors.Wrapf(ErrInvalidPoW, "block hash of %s is higher than expected max of %s", "ff", "0f")
	expectedOuterErr := "block hash of ff is higher than expected max of 0f: ErrInvalidPoW"

	if !errors.Is(outer, ErrInvalidPoW) {
		t.Fatal("TestRuleErrorWrapping: Outer should contain ErrInvalidPoW in it")
	}
	if errors.Is(outer, ErrBadMerkleRoot) {
		t.Fatal("TestRuleErrorWrapping: Outer should not match a different rule error")
	}

	rule := &RuleError{}
	if !errors.As(outer, rule) {
		t.Fatal("TestRuleErrorWrapping: Outer should contain RuleError in it")
	}
	if rule.message != "ErrInvalidPoW" {
		t.Fatalf("TestRuleErrorWrapping: Expected message = 'ErrInvalidPoW', found: '%s'", rule.message)
	}

	if outer.Error() != expectedOuterErr {
		t.Fatalf("TestRuleErrorWrapping: Expected %s. found: %s", expectedOuterErr, outer.Error())
	}
}

func TestRuleErrorInner(t *testing.T) {
	inner := errors.New("inner")
	rule := RuleError{message: "ErrBadBlockSignature", inner: inner}
	if rule.Error() != "ErrBadBlockSignature: inner" {
		t.Fatalf("TestRuleErrorInner: unexpected message %s", rule.Error())
	}
	if !errors.Is(rule, inner) {
		t.Fatal("TestRuleErrorInner: rule should unwrap to its inner error")
	}
	if errors.Cause(rule) != inner {
		t.Fatal("TestRuleErrorInner: Cause should return the inner error")
	}
}
