package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/example/aqavm/isa"
)

// TUI is the text interface around a Debugger, grounded on the
// teacher's debugger/tui.go panel layout (tcell event loop, tview
// Flex panels) but reduced to the panels the byte-ISA actually needs:
// no disassembly/source panel since a 256-byte program fits on screen
// as a straight memory dump.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	Layout       *tview.Flex
	RegisterView *tview.TextView
	MemoryView   *tview.TextView
	StackView    *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField
}

// NewTUI builds a TUI around d.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{Debugger: d, App: tview.NewApplication()}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	top := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(t.RegisterView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	mainContent := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 9, 0, false).
		AddItem(t.MemoryView, 0, 1, false)

	t.Layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 3, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF10:
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

// WriteOutput appends text to the output panel and scrolls to it.
func (t *TUI) WriteOutput(text string) {
	fmt.Fprint(t.OutputView, text)
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current VM state.
func (t *TUI) RefreshAll() {
	t.updateRegisterView()
	t.updateMemoryView()
	t.updateStackView()
	t.App.Draw()
}

func (t *TUI) updateRegisterView() {
	vm := t.Debugger.VM
	names := [isa.RegisterCount]string{"R0", "R1", "R2", "R3", "PC", "STATUS", "SP"}
	var lines []string
	for i, name := range names {
		v, _ := vm.Reg(byte(i))
		lines = append(lines, fmt.Sprintf("%-6s 0x%02X (%3d)", name, v, v))
	}

	status := vm.Status()
	flag := func(b byte, lit, up string) string {
		if status&b != 0 {
			return up
		}
		return lit
	}
	lines = append(lines, "")
	lines = append(lines,
		flag(isa.StatusNegative, "n", "N")+
			flag(isa.StatusZero, "z", "Z")+
			flag(isa.StatusCarry, "c", "C")+
			flag(isa.StatusOverflow, "v", "V"))
	lines = append(lines, fmt.Sprintf("cycles %d  %s", vm.Cycles, vm.State))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateMemoryView() {
	vm := t.Debugger.VM
	pc := vm.PC()
	var lines []string
	const rowWidth = 16
	for row := 0; row < isa.MemorySize; row += rowWidth {
		marker := "  "
		if int(pc) >= row && int(pc) < row+rowWidth {
			marker = "->"
		}
		var cols []string
		for col := 0; col < rowWidth; col++ {
			b, _ := vm.Memory.Get(row + col)
			cols = append(cols, fmt.Sprintf("%02X", b))
		}
		lines = append(lines, fmt.Sprintf("%s%3d: %s", marker, row, strings.Join(cols, " ")))
	}
	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateStackView() {
	vm := t.Debugger.VM
	sp, _ := vm.Reg(isa.SP)
	var lines []string
	lines = append(lines, fmt.Sprintf("SP = %d", sp))
	for offset := 0; offset < 8; offset++ {
		addr := int(sp) + offset
		if addr >= isa.MemorySize {
			break
		}
		b, _ := vm.Memory.Get(addr)
		lines = append(lines, fmt.Sprintf("%3d: %02X", addr, b))
	}
	t.StackView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI event loop, refreshing panels once before blocking.
func (t *TUI) Run() error {
	t.RefreshAll()
	return t.App.SetRoot(t.Layout, true).EnableMouse(false).Run()
}
