package debugger

import "testing"

func TestBreakpointManager_Add(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.Add(4)

	if bp == nil {
		t.Fatal("Add returned nil")
	}
	if bp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", bp.ID)
	}
	if bp.PC != 4 {
		t.Errorf("Expected pc 4, got %d", bp.PC)
	}
	if !bp.Enabled {
		t.Error("Breakpoint should be enabled by default")
	}
	if bp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", bp.HitCount)
	}
}

func TestBreakpointManager_AddMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.Add(4)
	bp2 := bm.Add(8)

	if bp1.ID == bp2.ID {
		t.Error("Breakpoint IDs should be unique")
	}
	if len(bm.All()) != 2 {
		t.Errorf("Expected 2 breakpoints, got %d", len(bm.All()))
	}
}

func TestBreakpointManager_AddDuplicate(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.Add(4)
	bp2 := bm.Add(4)

	if bp1.ID != bp2.ID {
		t.Error("Adding the same pc twice should return the existing breakpoint")
	}
	if len(bm.All()) != 1 {
		t.Errorf("Expected 1 breakpoint, got %d", len(bm.All()))
	}
}

func TestBreakpointManager_Delete(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(4)

	if !bm.Delete(4) {
		t.Error("Delete should report true for an existing breakpoint")
	}
	if bm.Get(4) != nil {
		t.Error("Get should return nil after delete")
	}
	if bm.Delete(4) {
		t.Error("Delete should report false for a missing breakpoint")
	}
}

func TestBreakpointManager_Get(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(4)

	if bm.Get(4) == nil {
		t.Error("Get should find a set breakpoint")
	}
	if bm.Get(8) != nil {
		t.Error("Get should return nil for an unset pc")
	}
}
