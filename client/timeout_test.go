package client

import (
	"testing"
	"time"
)

func TestMethodTimeoutsDefault(t *testing.T) {
	mt := newMethodTimeouts(5, nil)
	if got := mt.For("AddInts"); got != 5*time.Second {
		t.Errorf("For(unregistered) = %v, want 5s", got)
	}
}

func TestMethodTimeoutsPerMethodOverride(t *testing.T) {
	mt := newMethodTimeouts(5, map[string]int{"SlowOp": 30})
	if got := mt.For("SlowOp"); got != 30*time.Second {
		t.Errorf("For(SlowOp) = %v, want 30s", got)
	}
	if got := mt.For("FastOp"); got != 5*time.Second {
		t.Errorf("For(FastOp) = %v, want 5s", got)
	}
}

func TestMethodTimeoutsZeroMeansNoDeadline(t *testing.T) {
	mt := newMethodTimeouts(0, nil)
	if got := mt.For("Anything"); got != 0 {
		t.Errorf("For(Anything) = %v, want 0", got)
	}
}
