package assembly

import "github.com/tickvm/tickvm/sourcemap"

// OperandClass is the per-operand-position constraint from spec.md §6's
// opcode reference table.
type OperandClass int

const (
	// ClassWritableRegister accepts Regular{...} or ProgramCounter.
	ClassWritableRegister OperandClass = iota
	// ClassValue accepts "Number or Register" (Int, Float, or any Register).
	ClassValue
)

// operandRules lists, for every Operation, the class required at each
// argument position. Arity is implied by the rule length, which agrees
// with Operation.Arity() for every operation.
var operandRules = map[Operation][]OperandClass{
	OpAdd: {ClassWritableRegister, ClassValue, ClassValue},
	OpSub: {ClassWritableRegister, ClassValue, ClassValue},
	OpMul: {ClassWritableRegister, ClassValue, ClassValue},
	OpDiv: {ClassWritableRegister, ClassValue, ClassValue},
	OpMod: {ClassWritableRegister, ClassValue, ClassValue},

	OpMov: {ClassWritableRegister, ClassValue},
	OpJmp: {ClassValue},

	OpBeq: {ClassValue, ClassValue, ClassValue},
	OpBge: {ClassValue, ClassValue, ClassValue},
	OpBgt: {ClassValue, ClassValue, ClassValue},
	OpBle: {ClassValue, ClassValue, ClassValue},
	OpBlt: {ClassValue, ClassValue, ClassValue},
	OpBne: {ClassValue, ClassValue, ClassValue},

	OpBeqz: {ClassValue, ClassValue},
	OpBgez: {ClassValue, ClassValue},
	OpBgtz: {ClassValue, ClassValue},
	OpBlez: {ClassValue, ClassValue},
	OpBltz: {ClassValue, ClassValue},
	OpBnez: {ClassValue, ClassValue},

	OpSeq: {ClassWritableRegister, ClassValue, ClassValue},
	OpSge: {ClassWritableRegister, ClassValue, ClassValue},
	OpSgt: {ClassWritableRegister, ClassValue, ClassValue},
	OpSle: {ClassWritableRegister, ClassValue, ClassValue},
	OpSlt: {ClassWritableRegister, ClassValue, ClassValue},
	OpSne: {ClassWritableRegister, ClassValue, ClassValue},

	OpSeqz: {ClassWritableRegister, ClassValue},
	OpSgez: {ClassWritableRegister, ClassValue},
	OpSgtz: {ClassWritableRegister, ClassValue},
	OpSlez: {ClassWritableRegister, ClassValue},
	OpSltz: {ClassWritableRegister, ClassValue},
	OpSnez: {ClassWritableRegister, ClassValue},

	OpPush: {ClassValue},
	OpPop:  {ClassWritableRegister},
	OpPeek: {ClassWritableRegister},

	OpCall:  {ClassValue},
	OpRet:   {},
	OpYield: {},
	OpHalt:  {},

	OpAnd:  {ClassWritableRegister, ClassValue, ClassValue},
	OpOr:   {ClassWritableRegister, ClassValue, ClassValue},
	OpXor:  {ClassWritableRegister, ClassValue, ClassValue},
	OpNor:  {ClassWritableRegister, ClassValue, ClassValue},
	OpAndi: {ClassWritableRegister, ClassValue, ClassValue},
	OpOri:  {ClassWritableRegister, ClassValue, ClassValue},
	OpXori: {ClassWritableRegister, ClassValue, ClassValue},
	OpShr:  {ClassWritableRegister, ClassValue, ClassValue},
	OpShl:  {ClassWritableRegister, ClassValue, ClassValue},
	OpRor:  {ClassWritableRegister, ClassValue, ClassValue},
	OpRol:  {ClassWritableRegister, ClassValue, ClassValue},

	OpSqrt:  {ClassWritableRegister, ClassValue},
	OpTrunc: {ClassWritableRegister, ClassValue},
	OpCeil:  {ClassWritableRegister, ClassValue},
	OpFloor: {ClassWritableRegister, ClassValue},
	OpAbs:   {ClassWritableRegister, ClassValue},
	OpExp:   {ClassWritableRegister, ClassValue},
	OpInf:   {ClassWritableRegister, ClassValue},
	OpNan:   {ClassWritableRegister, ClassValue},

	OpMax: {ClassWritableRegister, ClassValue, ClassValue},
	OpMin: {ClassWritableRegister, ClassValue, ClassValue},
	OpLog: {ClassWritableRegister, ClassValue, ClassValue},

	OpLb: {ClassWritableRegister, ClassValue},
	OpLh: {ClassWritableRegister, ClassValue},
	OpLw: {ClassWritableRegister, ClassValue},
	OpSb: {ClassValue, ClassValue},
	OpSh: {ClassValue, ClassValue},
	OpSw: {ClassValue, ClassValue},

	OpDbg:  {ClassValue},
	OpDbgs: {ClassValue},
}

// Validate runs the Assembly Validator (spec.md §4.4) against a, using
// limits. The first failure aborts and is returned.
func Validate(a *Assembly, limits Limits) error {
	for idx, inst := range a.Instructions {
		loc := locationFor(a, idx)

		rules, ok := operandRules[inst.Operation]
		if !ok {
			return newAssemblyError(InvalidInstruction, loc, "unknown instruction %q", inst.Operation)
		}

		if len(inst.Arguments) != len(rules) {
			return newAssemblyError(InvalidInstruction, loc,
				"%s expects %d argument(s), got %d", inst.Operation, len(rules), len(inst.Arguments))
		}

		for i, arg := range inst.Arguments {
			if arg.Kind == ArgRegister && arg.Register.Tag == RegisterRegular {
				if arg.Register.ID < 0 || arg.Register.ID >= limits.RegularRegisters {
					return newAssemblyError(InvalidRegister, loc, "register id %d is out of bounds", arg.Register.ID)
				}
			}
			if arg.Kind == ArgPin {
				if arg.PinID < 0 || arg.PinID >= limits.Pins {
					return newAssemblyError(InvalidPin, loc, "pin id %d is out of bounds", arg.PinID)
				}
			}

			switch rules[i] {
			case ClassWritableRegister:
				if !arg.IsWritableRegister() {
					return newAssemblyError(InvalidInstruction, loc,
						"%s argument %d must be a writable register, got %s", inst.Operation, i, arg)
				}
			case ClassValue:
				if !arg.IsNumberOrRegister() {
					return newAssemblyError(InvalidInstruction, loc,
						"%s argument %d must be a number or register, got %s", inst.Operation, i, arg)
				}
			}
		}
	}

	if a.CodeSectionSize+len(a.TextSection) > limits.RAMLength {
		return newAssemblyError(TooLarge, nil, "assembly of %d bytes exceeds ram_length %d",
			a.CodeSectionSize+len(a.TextSection), limits.RAMLength)
	}

	return nil
}

func locationFor(a *Assembly, idx int) *sourcemap.Location {
	loc, ok := a.DebugInfo.LocationFor(idx)
	if !ok {
		return nil
	}
	return &loc
}
