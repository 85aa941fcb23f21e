package ram

import "fmt"

// RAMErrorKind narrows a RAM access failure. Callers translate these into
// the caller-appropriate error family: a load-time text-section copy
// failure becomes an assembly.AssemblyError{TooLarge}, while an
// instruction-time access failure becomes a vm.RuntimeError{InvalidAddress}.
type RAMErrorKind int

const (
	InvalidAddress RAMErrorKind = iota
	OutOfMemory
)

func (k RAMErrorKind) String() string {
	if k == OutOfMemory {
		return "out_of_memory"
	}
	return "invalid_address"
}

// RAMError is raised by RAM.Read/Write/WriteSlice.
type RAMError struct {
	Message string
	Kind    RAMErrorKind
	Address int
}

func (e *RAMError) Error() string { return e.Message }

func newRAMError(kind RAMErrorKind, address int, format string, args ...any) *RAMError {
	return &RAMError{Message: fmt.Sprintf(format, args...), Kind: kind, Address: address}
}
