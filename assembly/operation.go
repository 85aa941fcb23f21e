package assembly

import "strings"

// Operation is the compiled opcode enumeration from spec.md §6.
type Operation int

const (
	OpAdd Operation = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMov
	OpJmp
	OpBeq
	OpBge
	OpBgt
	OpBle
	OpBlt
	OpBne
	OpBeqz
	OpBgez
	OpBgtz
	OpBlez
	OpBltz
	OpBnez
	OpSeq
	OpSge
	OpSgt
	OpSle
	OpSlt
	OpSne
	OpSeqz
	OpSgez
	OpSgtz
	OpSlez
	OpSltz
	OpSnez
	OpPush
	OpPop
	OpPeek
	OpCall
	OpRet
	OpYield
	OpHalt
	OpAnd
	OpOr
	OpXor
	OpNor
	OpAndi
	OpOri
	OpXori
	OpShr
	OpShl
	OpRor
	OpRol
	OpSqrt
	OpTrunc
	OpCeil
	OpFloor
	OpAbs
	OpExp
	OpInf
	OpNan
	OpMax
	OpMin
	OpLog
	OpLb
	OpLh
	OpLw
	OpSb
	OpSh
	OpSw
	OpDbg
	OpDbgs
)

var operationNames = map[Operation]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod",
	OpMov: "mov", OpJmp: "jmp",
	OpBeq: "beq", OpBge: "bge", OpBgt: "bgt", OpBle: "ble", OpBlt: "blt", OpBne: "bne",
	OpBeqz: "beqz", OpBgez: "bgez", OpBgtz: "bgtz", OpBlez: "blez", OpBltz: "bltz", OpBnez: "bnez",
	OpSeq: "seq", OpSge: "sge", OpSgt: "sgt", OpSle: "sle", OpSlt: "slt", OpSne: "sne",
	OpSeqz: "seqz", OpSgez: "sgez", OpSgtz: "sgtz", OpSlez: "slez", OpSltz: "sltz", OpSnez: "snez",
	OpPush: "push", OpPop: "pop", OpPeek: "peek",
	OpCall: "call", OpRet: "ret", OpYield: "yield", OpHalt: "halt",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpNor: "nor",
	OpAndi: "andi", OpOri: "ori", OpXori: "xori",
	OpShr: "shr", OpShl: "shl", OpRor: "ror", OpRol: "rol",
	OpSqrt: "sqrt", OpTrunc: "trunc", OpCeil: "ceil", OpFloor: "floor",
	OpAbs: "abs", OpExp: "exp", OpInf: "inf", OpNan: "nan",
	OpMax: "max", OpMin: "min", OpLog: "log",
	OpLb: "lb", OpLh: "lh", OpLw: "lw", OpSb: "sb", OpSh: "sh", OpSw: "sw",
	OpDbg: "dbg", OpDbgs: "dbgs",
}

var namesToOperation = func() map[string]Operation {
	m := make(map[string]Operation, len(operationNames))
	for op, name := range operationNames {
		m[name] = op
	}
	return m
}()

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "<invalid operation>"
}

// ParseOperation resolves a lower-cased mnemonic to an Operation.
func ParseOperation(name string) (Operation, bool) {
	op, ok := namesToOperation[strings.ToLower(name)]
	return op, ok
}

// Arity returns the fixed argument count for an operation, per spec.md §6.
func (o Operation) Arity() int {
	switch o {
	case OpRet, OpYield, OpHalt:
		return 0
	case OpJmp, OpPush, OpPop, OpPeek, OpCall, OpDbg, OpDbgs:
		return 1
	case OpMov,
		OpBeqz, OpBgez, OpBgtz, OpBlez, OpBltz, OpBnez,
		OpSeqz, OpSgez, OpSgtz, OpSlez, OpSltz, OpSnez,
		OpSqrt, OpTrunc, OpCeil, OpFloor, OpAbs, OpExp, OpInf, OpNan,
		OpLb, OpLh, OpLw, OpSb, OpSh, OpSw:
		return 2
	default:
		return 3
	}
}
