package assembly

import (
	"strings"

	"github.com/tickvm/tickvm/sourcemap"
)

// Instruction is a single compiled (Operation, arguments) pair.
type Instruction struct {
	Operation Operation  `json:"operation"`
	Arguments []Argument `json:"arguments"`
}

func (i Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(i.Operation.String())
	for _, a := range i.Arguments {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}
	return sb.String()
}

// DebugInfo maps compiled instruction indices back to their originating
// source Location, alongside the SourceUnit they came from. Grounded on
// original_source/arch/src/debug_info.rs, restructured as a slice (the
// instruction list is fixed-size and append-only) rather than a BTreeMap.
type DebugInfo struct {
	Locations []sourcemap.Location `json:"locations"`
	Unit      *sourcemap.Unit      `json:"-"`
}

// LocationFor returns the source Location recorded for instruction index
// pc, mirroring spec.md §6's pc_to_location() host binding.
func (d DebugInfo) LocationFor(pc int) (sourcemap.Location, bool) {
	if pc < 0 || pc >= len(d.Locations) {
		return sourcemap.Location{}, false
	}
	return d.Locations[pc], true
}

// Assembly is the compiler's output: the validated instruction list, the
// interned text section and its placement, and debug info.
type Assembly struct {
	Instructions    []Instruction `json:"instructions"`
	CodeSectionSize int           `json:"code_section_size"`
	TextSection     []byte        `json:"text_section"`
	DebugInfo       DebugInfo     `json:"debug_info"`
}
