package debugger

import "testing"

func TestCommandHistory_AddAndGetAll(t *testing.T) {
	h := NewCommandHistory(10)

	h.Add("step")
	h.Add("continue")

	all := h.GetAll()
	if len(all) != 2 {
		t.Fatalf("Expected 2 commands, got %d", len(all))
	}
	if all[0] != "step" || all[1] != "continue" {
		t.Errorf("Unexpected history contents: %v", all)
	}
}

func TestCommandHistory_CollapsesRepeats(t *testing.T) {
	h := NewCommandHistory(10)

	h.Add("step")
	h.Add("step")

	if h.Size() != 1 {
		t.Errorf("Expected repeated command to collapse, got size %d", h.Size())
	}
}

func TestCommandHistory_IgnoresEmpty(t *testing.T) {
	h := NewCommandHistory(10)

	h.Add("")

	if h.Size() != 0 {
		t.Errorf("Expected empty command to be ignored, got size %d", h.Size())
	}
}

func TestCommandHistory_TrimsToMaxSize(t *testing.T) {
	h := NewCommandHistory(2)

	h.Add("a")
	h.Add("b")
	h.Add("c")

	all := h.GetAll()
	if len(all) != 2 {
		t.Fatalf("Expected history trimmed to 2, got %d", len(all))
	}
	if all[0] != "b" || all[1] != "c" {
		t.Errorf("Expected oldest entry dropped, got %v", all)
	}
}

func TestCommandHistory_PreviousAndNext(t *testing.T) {
	h := NewCommandHistory(10)
	h.Add("step")
	h.Add("continue")

	if got := h.Previous(); got != "continue" {
		t.Errorf("Expected Previous=continue, got %q", got)
	}
	if got := h.Previous(); got != "step" {
		t.Errorf("Expected Previous=step, got %q", got)
	}
	if got := h.Previous(); got != "" {
		t.Errorf("Expected Previous at start to return empty, got %q", got)
	}
	if got := h.Next(); got != "continue" {
		t.Errorf("Expected Next=continue, got %q", got)
	}
}

func TestCommandHistory_GetLast(t *testing.T) {
	h := NewCommandHistory(10)
	if got := h.GetLast(); got != "" {
		t.Errorf("Expected empty GetLast on empty history, got %q", got)
	}

	h.Add("step")
	h.Add("reset")
	if got := h.GetLast(); got != "reset" {
		t.Errorf("Expected GetLast=reset, got %q", got)
	}
}
