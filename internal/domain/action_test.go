package domain

import "testing"

func TestDefaultActionSet(t *testing.T) {
	set := DefaultActionSet()

	if set.Len() != 9 {
		t.Fatalf("Expected 9 actions, got %d", set.Len())
	}
	if !set.IsHold(0) {
		t.Error("Expected index 0 to be the no-op")
	}

	longs, shorts := 0, 0
	for i := 0; i < set.Len(); i++ {
		switch set.At(i).Direction {
		case Long:
			longs++
		case Short:
			shorts++
		}
	}
	if longs != 4 || shorts != 4 {
		t.Errorf("Expected 4 long and 4 short sizes, got %d/%d", longs, shorts)
	}
}

func TestActionSet_Target(t *testing.T) {
	set := DefaultActionSet()

	if set.Target(0) != 0 {
		t.Errorf("Expected zero target for HOLD, got %g", set.Target(0))
	}
	if set.Target(1) != 1 {
		t.Errorf("Expected target +1 for first long size, got %g", set.Target(1))
	}
	if set.Target(5) != -1 {
		t.Errorf("Expected target -1 for first short size, got %g", set.Target(5))
	}
}

func TestDirection_Sign(t *testing.T) {
	if Long.Sign() != 1 || Short.Sign() != -1 || Flat.Sign() != 0 {
		t.Error("Direction signs do not match +1/-1/0")
	}
}
