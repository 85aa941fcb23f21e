// Package vm is the tick-driven interpreter: register file, stack, RAM,
// and the opcode dispatch loop, grounded on original_source/vm/src/vm.rs's
// tick/write_register/push_stack/pop_stack/execute_instruction split,
// restructured to avoid the original's self-aliasing unsafe pointer cast
// (tick here simply owns *VM exclusively for the duration of one
// instruction - no aliasing hazard in a single-goroutine design).
package vm

import (
	"math"
	"math/bits"
	"strconv"
	"unicode/utf8"

	"github.com/tickvm/tickvm/assembly"
	"github.com/tickvm/tickvm/ram"
	"github.com/tickvm/tickvm/sourcemap"
)

// DbgCallback receives the textual output of dbg/dbgs instructions.
type DbgCallback func(string)

// VM is the tick-driven interpreter described in spec.md §4.5.
type VM struct {
	limits      assembly.Limits
	registers   []float32
	stack       []float32
	pc          int
	sp          int
	ram         *ram.RAM
	asm         *assembly.Assembly
	status      Status
	dbgCallback DbgCallback
	trace       *executionTrace

	// pcWritten records whether the current instruction wrote PC, which
	// suppresses Tick's automatic advance even for a jump to itself.
	pcWritten bool
}

// New creates a VM with the given Limits, all state zeroed, status Idle.
func New(limits assembly.Limits) *VM {
	v := &VM{
		limits:    limits,
		registers: make([]float32, limits.RegularRegisters),
		stack:     make([]float32, limits.StackSize),
		ram:       ram.New(limits.RAMLength),
		status:    Idle,
	}
	return v
}

// Limits returns the Limits this VM was constructed with.
func (v *VM) Limits() assembly.Limits { return v.limits }

// Registers returns a snapshot of the register file.
func (v *VM) Registers() []float32 {
	out := make([]float32, len(v.registers))
	copy(out, v.registers)
	return out
}

// Stack returns a snapshot of the stack.
func (v *VM) Stack() []float32 {
	out := make([]float32, len(v.stack))
	copy(out, v.stack)
	return out
}

// PC returns the current program counter.
func (v *VM) PC() int { return v.pc }

// SP returns the current stack pointer.
func (v *VM) SP() int { return v.sp }

// RAM exposes the VM's memory for host inspection.
func (v *VM) RAM() *ram.RAM { return v.ram }

// Status returns the current VM status.
func (v *VM) Status() Status { return v.status }

// Assembly returns the currently loaded Assembly, or nil.
func (v *VM) Assembly() *assembly.Assembly { return v.asm }

// SetDbgCallback installs the sink for dbg/dbgs output.
func (v *VM) SetDbgCallback(cb DbgCallback) { v.dbgCallback = cb }

// PCToLocation resolves the current PC to a source Location via the
// loaded Assembly's debug info, the pc_to_location() host binding.
func (v *VM) PCToLocation() (sourcemap.Location, bool) {
	if v.asm == nil {
		return sourcemap.Location{}, false
	}
	return v.asm.DebugInfo.LocationFor(v.pc)
}

// LoadAssembly validates a against this VM's Limits, copies its text
// section into RAM at physical offset 0, and resets execution state.
func (v *VM) LoadAssembly(a *assembly.Assembly) error {
	if err := assembly.Validate(a, v.limits); err != nil {
		return err
	}

	freshRAM := ram.New(v.limits.RAMLength)
	if err := freshRAM.WriteSlice(0, a.TextSection); err != nil {
		ramErr, ok := err.(*ram.RAMError)
		kind := assembly.TooLarge
		msg := "text section does not fit in ram"
		if ok {
			msg = ramErr.Message
		}
		return &assembly.AssemblyError{Message: msg, Kind: kind}
	}

	v.asm = a
	v.ram = freshRAM
	v.pc = 0
	v.sp = 0
	for i := range v.registers {
		v.registers[i] = 0
	}
	for i := range v.stack {
		v.stack[i] = 0
	}
	v.status = Idle
	return nil
}

// UnloadAssembly clears the loaded Assembly and RAM.
func (v *VM) UnloadAssembly() {
	v.asm = nil
	v.ram = ram.New(v.limits.RAMLength)
	v.status = Idle
}

// Reset zeros pc, sp, registers and stack, and returns to Idle. The
// loaded Assembly and RAM contents are left untouched (spec.md T7).
func (v *VM) Reset() {
	v.status = Idle
	v.pc = 0
	v.sp = 0
	for i := range v.registers {
		v.registers[i] = 0
	}
	for i := range v.stack {
		v.stack[i] = 0
	}
}

// Tick executes at most one instruction, per the protocol in spec.md
// §4.5.
func (v *VM) Tick() (Status, error) {
	if v.status.Terminal() {
		return v.status, nil
	}

	if v.asm == nil {
		v.status = Idle
		return v.status, nil
	}

	n := len(v.asm.Instructions)
	if v.pc == n {
		v.status = Finished
		return v.status, nil
	}
	if v.pc > n {
		err := newAddressError(v.pc, "address %d is out of bounds (%d)", v.pc, n-1)
		v.status = Error
		return v.status, err
	}

	statusBefore := v.status
	oldPC := v.pc
	inst := v.asm.Instructions[oldPC]

	v.pcWritten = false
	explicit, err := v.executeInstruction(inst.Operation, inst.Arguments)
	if err != nil {
		v.status = Error
		v.recordTrace(oldPC, inst, statusBefore)
		return v.status, err
	}

	if explicit != nil {
		v.status = *explicit
	} else {
		v.status = Running
	}

	if (v.status == Running || v.status == Yield) && !v.pcWritten {
		if err := v.writeRegister(assembly.ProgramCounter(), float32(oldPC+1)); err != nil {
			v.status = Error
			v.recordTrace(oldPC, inst, statusBefore)
			return v.status, err
		}
	}

	v.recordTrace(oldPC, inst, statusBefore)
	return v.status, nil
}

func (v *VM) recordTrace(pc int, inst assembly.Instruction, statusBefore Status) {
	if v.trace == nil {
		return
	}
	loc, ok := v.asm.DebugInfo.LocationFor(pc)
	v.trace.record(TraceEntry{
		PC:           pc,
		Instruction:  inst.String(),
		Location:     loc,
		HasLocation:  ok,
		StatusBefore: statusBefore,
		StatusAfter:  v.status,
	})
}

// PushStack pushes value, failing StackOverflow if the stack is full.
func (v *VM) PushStack(value float32) error {
	if v.sp >= len(v.stack) {
		return newRuntimeError(StackOverflow, "stack overflow")
	}
	v.stack[v.sp] = value
	v.sp++
	return nil
}

// PopStack pops and returns the top of the stack, clearing its slot.
func (v *VM) PopStack() (float32, error) {
	if v.sp == 0 {
		return 0, newRuntimeError(StackOverflow, "stack overflow")
	}
	v.sp--
	val := v.stack[v.sp]
	v.stack[v.sp] = 0
	return val, nil
}

// PeekStack returns the top of the stack without popping it.
func (v *VM) PeekStack() (float32, error) {
	if v.sp == 0 {
		return 0, newRuntimeError(StackOverflow, "stack overflow")
	}
	return v.stack[v.sp-1], nil
}

// writeRegister writes value through the given register kind, following
// indirection and rejecting writes to the read-only stack pointer.
func (v *VM) writeRegister(r assembly.RegisterKind, value float32) error {
	switch r.Tag {
	case assembly.RegisterRegular:
		if r.ID < 0 || r.ID >= v.limits.RegularRegisters {
			return newRegisterError(InvalidRegister, r, "register %s is out of maximum registers", r)
		}
		if r.Mode == assembly.Indirect {
			inner := int(v.registers[r.ID])
			if inner < 0 || inner >= v.limits.RegularRegisters {
				return newRegisterError(InvalidRegister, r, "indirect register id %d is out of bounds", inner)
			}
			return v.writeRegister(assembly.Regular(inner, assembly.Direct), value)
		}
		v.registers[r.ID] = value
		return nil
	case assembly.RegisterProgramCounter:
		iv := int32(value)
		if iv < 0 {
			iv = 0
		}
		v.pc = int(iv)
		v.pcWritten = true
		return nil
	case assembly.RegisterStackPointer:
		return newRegisterError(RegisterIsReadOnly, r, "sp is read-only")
	default:
		return newRegisterError(InvalidRegister, r, "invalid register kind")
	}
}

func (v *VM) registerToFloat(r assembly.RegisterKind) (float32, error) {
	switch r.Tag {
	case assembly.RegisterRegular:
		if r.ID < 0 || r.ID >= v.limits.RegularRegisters {
			return 0, newRegisterError(InvalidRegister, r, "register %s is out of maximum registers", r)
		}
		if r.Mode == assembly.Indirect {
			inner := int(v.registers[r.ID])
			if inner < 0 || inner >= v.limits.RegularRegisters {
				return 0, newRegisterError(InvalidRegister, r, "indirect register id %d is out of bounds", inner)
			}
			return v.registers[inner], nil
		}
		return v.registers[r.ID], nil
	case assembly.RegisterProgramCounter:
		return float32(v.pc), nil
	case assembly.RegisterStackPointer:
		return float32(v.sp), nil
	default:
		return 0, newRegisterError(InvalidRegister, r, "invalid register kind")
	}
}

func (v *VM) argToFloat(a assembly.Argument) (float32, error) {
	switch a.Kind {
	case assembly.ArgRegister:
		return v.registerToFloat(a.Register)
	case assembly.ArgInt:
		return float32(a.Int), nil
	case assembly.ArgFloat:
		return a.Float, nil
	default:
		return 0, newRuntimeError(InvalidType, "argument %s can't be used as a value", a)
	}
}

func regArg(a assembly.Argument) (assembly.RegisterKind, error) {
	if a.Kind != assembly.ArgRegister {
		return assembly.RegisterKind{}, newRuntimeError(InvalidType, "expected register, got %s", a)
	}
	return a.Register, nil
}

// physicalOffset converts a compiled logical address (as produced by the
// compiler for string literals, or computed by a program at runtime) to
// a RAM byte offset, per spec.md §4.5's lb/lh/lw/sb/sh/sw translation.
func (v *VM) physicalOffset(addr int) int {
	return addr - v.asm.CodeSectionSize
}

func (v *VM) executeInstruction(op assembly.Operation, args []assembly.Argument) (*Status, error) {
	switch op {
	case assembly.OpAdd, assembly.OpSub, assembly.OpMul, assembly.OpDiv, assembly.OpMod:
		return nil, v.execArith(op, args)

	case assembly.OpMov:
		dst, err := regArg(args[0])
		if err != nil {
			return nil, err
		}
		val, err := v.argToFloat(args[1])
		if err != nil {
			return nil, err
		}
		return nil, v.writeRegister(dst, val)

	case assembly.OpJmp:
		val, err := v.argToFloat(args[0])
		if err != nil {
			return nil, err
		}
		return nil, v.writeRegister(assembly.ProgramCounter(), val)

	case assembly.OpBeq, assembly.OpBge, assembly.OpBgt, assembly.OpBle, assembly.OpBlt, assembly.OpBne:
		return nil, v.execBranch(op, args)

	case assembly.OpBeqz, assembly.OpBgez, assembly.OpBgtz, assembly.OpBlez, assembly.OpBltz, assembly.OpBnez:
		return nil, v.execBranchZero(op, args)

	case assembly.OpSeq, assembly.OpSge, assembly.OpSgt, assembly.OpSle, assembly.OpSlt, assembly.OpSne:
		return nil, v.execSet(op, args)

	case assembly.OpSeqz, assembly.OpSgez, assembly.OpSgtz, assembly.OpSlez, assembly.OpSltz, assembly.OpSnez:
		return nil, v.execSetZero(op, args)

	case assembly.OpPush:
		val, err := v.argToFloat(args[0])
		if err != nil {
			return nil, err
		}
		return nil, v.PushStack(val)

	case assembly.OpPop:
		dst, err := regArg(args[0])
		if err != nil {
			return nil, err
		}
		val, err := v.PopStack()
		if err != nil {
			return nil, err
		}
		return nil, v.writeRegister(dst, val)

	case assembly.OpPeek:
		dst, err := regArg(args[0])
		if err != nil {
			return nil, err
		}
		val, err := v.PeekStack()
		if err != nil {
			return nil, err
		}
		return nil, v.writeRegister(dst, val)

	case assembly.OpCall:
		target, err := v.argToFloat(args[0])
		if err != nil {
			return nil, err
		}
		pcVal, err := v.registerToFloat(assembly.ProgramCounter())
		if err != nil {
			return nil, err
		}
		if err := v.PushStack(pcVal + 1); err != nil {
			return nil, err
		}
		return nil, v.writeRegister(assembly.ProgramCounter(), target)

	case assembly.OpRet:
		target, err := v.PopStack()
		if err != nil {
			return nil, err
		}
		return nil, v.writeRegister(assembly.ProgramCounter(), target)

	case assembly.OpYield:
		s := Yield
		return &s, nil

	case assembly.OpHalt:
		s := Finished
		return &s, nil

	case assembly.OpAnd, assembly.OpOr, assembly.OpXor, assembly.OpNor,
		assembly.OpAndi, assembly.OpOri, assembly.OpXori,
		assembly.OpShr, assembly.OpShl, assembly.OpRor, assembly.OpRol:
		return nil, v.execBitwise(op, args)

	case assembly.OpSqrt, assembly.OpTrunc, assembly.OpCeil, assembly.OpFloor,
		assembly.OpAbs, assembly.OpExp, assembly.OpInf, assembly.OpNan:
		return nil, v.execMathUnary(op, args)

	case assembly.OpMax, assembly.OpMin, assembly.OpLog:
		return nil, v.execMathBinary(op, args)

	case assembly.OpLb, assembly.OpLh, assembly.OpLw:
		return nil, v.execLoad(op, args)

	case assembly.OpSb, assembly.OpSh, assembly.OpSw:
		return nil, v.execStore(op, args)

	case assembly.OpDbg:
		if v.dbgCallback == nil {
			return nil, nil
		}
		val, err := v.argToFloat(args[0])
		if err != nil {
			return nil, err
		}
		v.dbgCallback(formatFloat(val))
		return nil, nil

	case assembly.OpDbgs:
		return nil, v.execDbgs(args)

	default:
		return nil, newRuntimeError(InvalidType, "unimplemented operation %s", op)
	}
}

func (v *VM) execArith(op assembly.Operation, args []assembly.Argument) error {
	dst, err := regArg(args[0])
	if err != nil {
		return err
	}
	a, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}
	b, err := v.argToFloat(args[2])
	if err != nil {
		return err
	}

	var result float32
	switch op {
	case assembly.OpAdd:
		result = a + b
	case assembly.OpSub:
		result = a - b
	case assembly.OpMul:
		result = a * b
	case assembly.OpDiv:
		if b == 0 {
			return newRuntimeError(DividedByZero, "divide by zero")
		}
		result = a / b
	case assembly.OpMod:
		if b == 0 {
			return newRuntimeError(DividedByZero, "divide by zero")
		}
		result = float32(math.Mod(float64(a), float64(b)))
	}
	return v.writeRegister(dst, result)
}

func (v *VM) execBranch(op assembly.Operation, args []assembly.Argument) error {
	a, err := v.argToFloat(args[0])
	if err != nil {
		return err
	}
	b, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}

	var taken bool
	switch op {
	case assembly.OpBeq:
		taken = a == b
	case assembly.OpBge:
		taken = a >= b
	case assembly.OpBgt:
		taken = a > b
	case assembly.OpBle:
		taken = a <= b
	case assembly.OpBlt:
		taken = a < b
	case assembly.OpBne:
		taken = a != b
	}
	if !taken {
		return nil
	}
	target, err := v.argToFloat(args[2])
	if err != nil {
		return err
	}
	return v.writeRegister(assembly.ProgramCounter(), target)
}

func (v *VM) execBranchZero(op assembly.Operation, args []assembly.Argument) error {
	a, err := v.argToFloat(args[0])
	if err != nil {
		return err
	}

	var taken bool
	switch op {
	case assembly.OpBeqz:
		taken = a == 0
	case assembly.OpBgez:
		taken = a >= 0
	case assembly.OpBgtz:
		taken = a > 0
	case assembly.OpBlez:
		taken = a <= 0
	case assembly.OpBltz:
		taken = a < 0
	case assembly.OpBnez:
		taken = a != 0
	}
	if !taken {
		return nil
	}
	target, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}
	return v.writeRegister(assembly.ProgramCounter(), target)
}

func (v *VM) execSet(op assembly.Operation, args []assembly.Argument) error {
	dst, err := regArg(args[0])
	if err != nil {
		return err
	}
	a, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}
	b, err := v.argToFloat(args[2])
	if err != nil {
		return err
	}

	var result bool
	switch op {
	case assembly.OpSeq:
		result = a == b
	case assembly.OpSge:
		result = a >= b
	case assembly.OpSgt:
		result = a > b
	case assembly.OpSle:
		result = a <= b
	case assembly.OpSlt:
		result = a < b
	case assembly.OpSne:
		result = a != b
	}
	return v.writeRegister(dst, boolToFloat(result))
}

func (v *VM) execSetZero(op assembly.Operation, args []assembly.Argument) error {
	dst, err := regArg(args[0])
	if err != nil {
		return err
	}
	a, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}

	var result bool
	switch op {
	case assembly.OpSeqz:
		result = a == 0
	case assembly.OpSgez:
		result = a >= 0
	case assembly.OpSgtz:
		result = a > 0
	case assembly.OpSlez:
		result = a <= 0
	case assembly.OpSltz:
		result = a < 0
	case assembly.OpSnez:
		result = a != 0
	}
	return v.writeRegister(dst, boolToFloat(result))
}

func (v *VM) execBitwise(op assembly.Operation, args []assembly.Argument) error {
	dst, err := regArg(args[0])
	if err != nil {
		return err
	}
	af, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}
	bf, err := v.argToFloat(args[2])
	if err != nil {
		return err
	}
	a, b := int32(af), int32(bf)

	var result int32
	switch op {
	case assembly.OpAnd:
		result = boolToInt(a != 0 && b != 0)
	case assembly.OpOr:
		result = boolToInt(a != 0 || b != 0)
	case assembly.OpXor:
		result = boolToInt((a != 0) != (b != 0))
	case assembly.OpNor:
		result = boolToInt(a == 0 && b == 0)
	case assembly.OpAndi:
		result = a & b
	case assembly.OpOri:
		result = a | b
	case assembly.OpXori:
		result = a ^ b
	case assembly.OpShr:
		result = int32(uint32(a) >> (uint32(b) & 31))
	case assembly.OpShl:
		result = int32(uint32(a) << (uint32(b) & 31))
	case assembly.OpRor:
		result = int32(bits.RotateLeft32(uint32(a), -int(b)))
	case assembly.OpRol:
		result = int32(bits.RotateLeft32(uint32(a), int(b)))
	}
	return v.writeRegister(dst, float32(result))
}

func (v *VM) execMathUnary(op assembly.Operation, args []assembly.Argument) error {
	dst, err := regArg(args[0])
	if err != nil {
		return err
	}
	a, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}

	var result float32
	switch op {
	case assembly.OpSqrt:
		result = float32(math.Sqrt(float64(a)))
	case assembly.OpTrunc:
		result = float32(math.Trunc(float64(a)))
	case assembly.OpCeil:
		result = float32(math.Ceil(float64(a)))
	case assembly.OpFloor:
		result = float32(math.Floor(float64(a)))
	case assembly.OpAbs:
		result = float32(math.Abs(float64(a)))
	case assembly.OpExp:
		result = float32(math.Exp(float64(a)))
	case assembly.OpInf:
		result = boolToFloat(math.IsInf(float64(a), 0))
	case assembly.OpNan:
		result = boolToFloat(math.IsNaN(float64(a)))
	}
	return v.writeRegister(dst, result)
}

func (v *VM) execMathBinary(op assembly.Operation, args []assembly.Argument) error {
	dst, err := regArg(args[0])
	if err != nil {
		return err
	}
	a, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}
	b, err := v.argToFloat(args[2])
	if err != nil {
		return err
	}

	var result float32
	switch op {
	case assembly.OpMax:
		if a > b {
			result = a
		} else {
			result = b
		}
	case assembly.OpMin:
		if a < b {
			result = a
		} else {
			result = b
		}
	case assembly.OpLog:
		result = float32(math.Log(float64(b)) / math.Log(float64(a)))
	}
	return v.writeRegister(dst, result)
}

func (v *VM) execLoad(op assembly.Operation, args []assembly.Argument) error {
	dst, err := regArg(args[0])
	if err != nil {
		return err
	}
	addrF, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}
	width := loadStoreWidth(op)
	phys := v.physicalOffset(int(addrF))

	var buf [4]byte
	for i := 0; i < width; i++ {
		b, err := v.ram.Read(phys + i)
		if err != nil {
			return translateRAMError(err, v.asm.CodeSectionSize)
		}
		buf[i] = b
	}
	iv := int32(buf[0]) | int32(buf[1])<<8 | int32(buf[2])<<16 | int32(buf[3])<<24
	return v.writeRegister(dst, float32(iv))
}

func (v *VM) execStore(op assembly.Operation, args []assembly.Argument) error {
	addrF, err := v.argToFloat(args[0])
	if err != nil {
		return err
	}
	valF, err := v.argToFloat(args[1])
	if err != nil {
		return err
	}
	width := loadStoreWidth(op)
	phys := v.physicalOffset(int(addrF))
	iv := int32(valF)

	for i := 0; i < width; i++ {
		b := byte(iv >> (8 * uint(i)))
		if err := v.ram.Write(phys+i, b); err != nil {
			return translateRAMError(err, v.asm.CodeSectionSize)
		}
	}
	return nil
}

func (v *VM) execDbgs(args []assembly.Argument) error {
	if v.dbgCallback == nil {
		return nil
	}
	addrF, err := v.argToFloat(args[0])
	if err != nil {
		return err
	}
	phys := v.physicalOffset(int(addrF))

	var buf []byte
	for phys+len(buf) < v.limits.RAMLength {
		b, err := v.ram.Read(phys + len(buf))
		if err != nil {
			return translateRAMError(err, v.asm.CodeSectionSize)
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	v.dbgCallback(lossyUTF8(buf))
	return nil
}

func loadStoreWidth(op assembly.Operation) int {
	switch op {
	case assembly.OpLb, assembly.OpSb:
		return 1
	case assembly.OpLh, assembly.OpSh:
		return 2
	default:
		return 4
	}
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// lossyUTF8 replaces invalid byte sequences with the Unicode replacement
// character, mirroring String::from_utf8_lossy's behavior.
func lossyUTF8(buf []byte) string {
	if utf8.Valid(buf) {
		return string(buf)
	}
	var sb []rune
	for i := 0; i < len(buf); {
		r, size := utf8.DecodeRune(buf[i:])
		sb = append(sb, r)
		i += size
	}
	return string(sb)
}
