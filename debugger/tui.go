package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the terminal stepper, grounded on the teacher's debugger/tui.go
// layout and key-binding conventions, re-pointed at vm.VM.Tick().
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView   *tview.TextView
	RegisterView *tview.TextView
	StackView    *tview.TextView
	RAMView      *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField

	RAMAddress int
}

// NewTUI builds and wires up the debugger's terminal interface.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{
		Debugger: d,
		App:      tview.NewApplication(),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.RAMView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.RAMView.SetBorder(true).SetTitle(" RAM ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
	t.CommandInput.SetInputCapture(t.handleCommandInputKey)
}

// handleCommandInputKey recalls previously executed commands with the
// up/down arrows, browsing Debugger.History without touching it.
func (t *TUI) handleCommandInputKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		if cmd := t.Debugger.History.Previous(); cmd != "" {
			t.CommandInput.SetText(cmd)
		}
		return nil
	case tcell.KeyDown:
		t.CommandInput.SetText(t.Debugger.History.Next())
		return nil
	}
	return event
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 2, false).
		AddItem(t.RAMView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF10, tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd != "" {
		t.executeCommand(cmd)
		t.CommandInput.SetText("")
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	t.RefreshAll()
}

// WriteOutput appends text to the output panel and scrolls to the end.
func (t *TUI) WriteOutput(text string) {
	fmt.Fprint(t.OutputView, text)
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from the current VM state.
func (t *TUI) RefreshAll() {
	t.updateSourceView()
	t.updateRegisterView()
	t.updateStackView()
	t.updateRAMView()
	t.App.Draw()
}

func (t *TUI) updateSourceView() {
	t.SourceView.Clear()

	asm := t.Debugger.VM.Assembly()
	if asm == nil {
		t.SourceView.SetText("[yellow]no assembly loaded[white]")
		return
	}

	pc := t.Debugger.VM.PC()
	var lines []string

	start := pc - 8
	if start < 0 {
		start = 0
	}
	end := pc + 8
	if end > len(asm.Instructions) {
		end = len(asm.Instructions)
	}

	for i := start; i < end; i++ {
		marker := "  "
		color := "white"
		if i == pc {
			marker = "->"
			color = "yellow"
		}
		if bp := t.Debugger.Breakpoints.Get(i); bp != nil && bp.Enabled {
			marker = "* "
		}

		text := asm.Instructions[i].String()
		if loc, ok := asm.DebugInfo.LocationFor(i); ok && asm.DebugInfo.Unit != nil {
			if src, ok2 := asm.DebugInfo.Unit.LineText(loc.Line); ok2 {
				text = strings.TrimSpace(src)
			}
		}

		lines = append(lines, fmt.Sprintf("[%s]%s %4d: %s[white]", color, marker, i, text))
	}

	t.SourceView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateRegisterView() {
	t.RegisterView.Clear()

	regs := t.Debugger.VM.Registers()
	var lines []string

	for i := 0; i < len(regs); i += 4 {
		var cols []string
		for j := i; j < i+4 && j < len(regs); j++ {
			cols = append(cols, fmt.Sprintf("r%-2d: %g", j, regs[j]))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("pc: %d   sp: %d   status: %s", t.Debugger.VM.PC(), t.Debugger.VM.SP(), t.Debugger.VM.Status()))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateStackView() {
	t.StackView.Clear()

	sp := t.Debugger.VM.SP()
	stack := t.Debugger.VM.Stack()

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]sp: %d[white]", sp))

	top := sp - 1
	for i := top; i >= 0 && i > top-16; i-- {
		marker := "  "
		if i == top {
			marker = "->"
		}
		lines = append(lines, fmt.Sprintf("%s [%d]: %g", marker, i, stack[i]))
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateRAMView() {
	t.RAMView.Clear()

	data := t.Debugger.VM.RAM().Bytes()
	addr := t.RAMAddress

	var lines []string
	for row := 0; row < 12 && addr+row*16 < len(data); row++ {
		rowAddr := addr + row*16
		line := fmt.Sprintf("%5d: ", rowAddr)

		var hexBytes []string
		var ascii []byte
		for col := 0; col < 16 && rowAddr+col < len(data); col++ {
			b := data[rowAddr+col]
			hexBytes = append(hexBytes, fmt.Sprintf("%02x", b))
			if b >= 32 && b < 127 {
				ascii = append(ascii, b)
			} else {
				ascii = append(ascii, '.')
			}
		}

		line += strings.Join(hexBytes, " ") + "  " + string(ascii)
		lines = append(lines, line)
	}

	t.RAMView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI event loop.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput("[green]tickvm debugger[white]\n")
	t.WriteOutput("F5 continue, F10/F11 step, up/down recall history, Ctrl+L refresh, Ctrl+C quit\n")
	t.WriteOutput("Type 'help' for the command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop terminates the TUI event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}
