package vm

import (
	"fmt"

	"github.com/tickvm/tickvm/assembly"
	"github.com/tickvm/tickvm/ram"
)

// RuntimeErrorKind categorizes a tick-time failure, spec.md §7.
type RuntimeErrorKind int

const (
	InvalidType RuntimeErrorKind = iota
	DividedByZero
	RegisterIsReadOnly
	InvalidRegister
	InvalidAddress
	StackOverflow
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case InvalidType:
		return "invalid_type"
	case DividedByZero:
		return "divided_by_zero"
	case RegisterIsReadOnly:
		return "register_is_read_only"
	case InvalidRegister:
		return "invalid_register"
	case InvalidAddress:
		return "invalid_address"
	case StackOverflow:
		return "stack_overflow"
	default:
		return "unknown"
	}
}

// RuntimeError is returned by tick() and transitions the VM to Error.
type RuntimeError struct {
	Message  string
	Kind     RuntimeErrorKind
	Register *assembly.RegisterKind
	Address  *int
}

func (e *RuntimeError) Error() string { return e.Message }

func newRuntimeError(kind RuntimeErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Kind: kind}
}

func newRegisterError(kind RuntimeErrorKind, register assembly.RegisterKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Kind: kind, Register: &register}
}

func newAddressError(address int, format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Kind: InvalidAddress, Address: &address}
}

// translateRAMError maps a ram.RAMError, reported in physical offsets,
// back into a RuntimeError carrying the program's logical address.
func translateRAMError(err error, codeSectionSize int) *RuntimeError {
	ramErr, ok := err.(*ram.RAMError)
	if !ok {
		return newRuntimeError(InvalidAddress, "%s", err.Error())
	}
	logical := ramErr.Address + codeSectionSize
	if ramErr.Kind == ram.OutOfMemory {
		return newAddressError(logical, "memory block at %d does not fit in ram", logical)
	}
	return newAddressError(logical, "address %d is out of bounds", logical)
}
