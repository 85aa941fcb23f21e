// Package assembly holds the types shared between the compiler and the VM:
// Limits, register/argument/operation kinds, the compiled Instruction and
// Assembly records, and the post-compile Assembly Validator.
package assembly

// Limits bounds the register file, pin count, stack depth and RAM size a
// compiled Assembly may address. Tagged for both TOML (host configuration,
// see the config package) and JSON (wire/persistence format, spec.md §6).
type Limits struct {
	RegularRegisters int `toml:"regular_registers" json:"regular_registers"`
	Pins             int `toml:"pins"              json:"pins"`
	StackSize        int `toml:"stack_size"        json:"stack_size"`
	RAMLength        int `toml:"ram_length"        json:"ram_length"`
}

// DefaultLimits returns spec.md §3's default Limits.
func DefaultLimits() Limits {
	return Limits{
		RegularRegisters: 16,
		Pins:             8,
		StackSize:        256,
		RAMLength:        16384,
	}
}
