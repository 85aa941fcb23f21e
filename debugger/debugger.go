// Package debugger is a thin host-side stepper around vm.VM: it is not
// part of the core tick interpreter (spec.md §1 scopes debuggers out of
// core), but drives one the way a host binding is expected to, calling
// Tick() once per step and exposing breakpoints/history/output the way
// the teacher's debugger package does for its own VM.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tickvm/tickvm/assembly"
	"github.com/tickvm/tickvm/vm"
)

// Debugger wraps a vm.VM with breakpoints, command history and an output
// buffer, grounded on the teacher's debugger/debugger.go.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	History     *CommandHistory

	Running bool

	Output strings.Builder
}

// NewDebugger wraps machine for interactive stepping.
func NewDebugger(machine *vm.VM, historySize int) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(historySize),
	}
}

// ExecuteCommand parses and runs a single command line, repeating the
// last recorded command on empty input (matching gdb-style debugger
// conventions). History is the sole record of "the last command" - there
// is no separate LastCommand field to keep in sync with it.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.History.GetLast()
	}
	if cmdLine == "" {
		return nil
	}
	d.History.Add(cmdLine)

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "step", "s":
		return d.cmdStep()
	case "continue", "c":
		return d.cmdContinue()
	case "reset":
		return d.cmdReset()
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "help", "h", "?":
		return d.cmdHelp()
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// cmdStep executes exactly one tick regardless of breakpoints.
func (d *Debugger) cmdStep() error {
	status, err := d.VM.Tick()
	if err != nil {
		d.Printf("runtime error: %v\n", err)
		return nil
	}
	d.Printf("pc=%d status=%s\n", d.VM.PC(), status)
	return nil
}

// cmdContinue ticks until the VM leaves Running, hits a breakpoint, or the
// tick itself errors.
func (d *Debugger) cmdContinue() error {
	d.Running = true
	defer func() { d.Running = false }()

	for {
		if bp := d.Breakpoints.Get(d.VM.PC()); bp != nil && bp.Enabled && d.VM.Status() != vm.Idle {
			bp.HitCount++
			d.Printf("breakpoint %d hit at pc=%d\n", bp.ID, bp.PC)
			return nil
		}

		status, err := d.VM.Tick()
		if err != nil {
			d.Printf("runtime error: %v\n", err)
			return nil
		}
		if status != vm.Running {
			d.Printf("stopped: pc=%d status=%s\n", d.VM.PC(), status)
			return nil
		}
	}
}

// cmdReset returns registers, stack, pc and sp to zero (spec.md T7).
func (d *Debugger) cmdReset() error {
	d.VM.Reset()
	d.Println("reset")
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break <pc>")
	}
	pc, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid instruction index: %s", args[0])
	}
	bp := d.Breakpoints.Add(pc)
	d.Printf("breakpoint %d set at pc=%d\n", bp.ID, bp.PC)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <pc>")
	}
	pc, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid instruction index: %s", args[0])
	}
	if !d.Breakpoints.Delete(pc) {
		return fmt.Errorf("no breakpoint at pc=%d", pc)
	}
	d.Printf("deleted breakpoint at pc=%d\n", pc)
	return nil
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: print <rN|pc|sp>")
	}
	name := args[0]
	switch {
	case strings.HasPrefix(name, "r"):
		idx, err := strconv.Atoi(name[1:])
		if err != nil {
			return fmt.Errorf("invalid register: %s", name)
		}
		regs := d.VM.Registers()
		if idx < 0 || idx >= len(regs) {
			return fmt.Errorf("register out of range: %s", name)
		}
		d.Printf("%s = %g\n", name, regs[idx])
	case name == "pc":
		d.Printf("pc = %d\n", d.VM.PC())
	case name == "sp":
		d.Printf("sp = %d\n", d.VM.SP())
	default:
		return fmt.Errorf("unknown operand: %s", name)
	}
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	what := "registers"
	if len(args) > 0 {
		what = args[0]
	}
	switch what {
	case "registers", "reg":
		for i, r := range d.VM.Registers() {
			d.Printf("r%d = %g\n", i, r)
		}
	case "stack":
		for i, s := range d.VM.Stack()[:d.VM.SP()] {
			d.Printf("[%d] = %g\n", i, s)
		}
	case "breakpoints", "break":
		for _, bp := range d.Breakpoints.All() {
			d.Printf("%d: pc=%d hits=%d\n", bp.ID, bp.PC, bp.HitCount)
		}
	case "history":
		all := d.History.GetAll()
		d.Printf("%d command(s) recorded\n", d.History.Size())
		for i, cmd := range all {
			d.Printf("%4d: %s\n", i, cmd)
		}
	default:
		return fmt.Errorf("unknown info target: %s", what)
	}
	return nil
}

func (d *Debugger) cmdHelp() error {
	d.Println("commands: step(s) continue(c) reset break(b) delete(d) print(p) info(i: registers|stack|breakpoints|history) help(h)")
	return nil
}

// CurrentInstruction returns the instruction at the VM's PC, if any.
func (d *Debugger) CurrentInstruction() (assembly.Instruction, bool) {
	asm := d.VM.Assembly()
	if asm == nil || d.VM.PC() < 0 || d.VM.PC() >= len(asm.Instructions) {
		return assembly.Instruction{}, false
	}
	return asm.Instructions[d.VM.PC()], true
}

// GetOutput returns and clears the accumulated output buffer.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf writes formatted text to the output buffer.
func (d *Debugger) Printf(format string, args ...any) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...any) {
	d.Output.WriteString(fmt.Sprintln(args...))
}
