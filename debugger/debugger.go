// Package debugger is an interactive front end around vm.VM: a
// breakpoint manager, command history, and a tview-based TUI, grounded
// on the teacher's debugger package but trimmed to the byte-ISA's much
// smaller register file and flat 256-byte memory.
package debugger

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/aqavm/config"
	"github.com/example/aqavm/isa"
	"github.com/example/aqavm/vm"
)

// Debugger owns the VM instance being inspected plus breakpoints,
// command history, and an output buffer the TUI drains after every
// command (mirrors the teacher's Debugger.Output/GetOutput split).
type Debugger struct {
	VM          *vm.VM
	Breakpoints *BreakpointManager
	History     *CommandHistory
	Output      bytes.Buffer

	breakOnHalt bool
}

// New creates a Debugger around machine, configured from cfg.Debugger.
func New(machine *vm.VM, cfg *config.Config) *Debugger {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(cfg.Debugger.HistorySize),
		breakOnHalt: cfg.Debugger.BreakOnHalt,
	}
}

func (d *Debugger) printf(format string, args ...any) {
	fmt.Fprintf(&d.Output, format, args...)
}

// GetOutput drains and returns everything written to Output since the
// last call.
func (d *Debugger) GetOutput() string {
	s := d.Output.String()
	d.Output.Reset()
	return s
}

// ExecuteCommand parses and runs one debugger command line.
func (d *Debugger) ExecuteCommand(line string) error {
	d.History.Add(line)

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "step", "s":
		return d.step()
	case "continue", "c", "run", "r":
		return d.run()
	case "break", "b":
		return d.addBreakpoint(args)
	case "clear":
		return d.clearBreakpoint(args)
	case "regs", "registers":
		d.printRegisters()
		return nil
	case "mem", "memory":
		return d.printMemory(args)
	case "reset":
		d.VM.Reset()
		d.printf("reset\n")
		return nil
	case "help", "?":
		d.printHelp()
		return nil
	default:
		return fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
}

func (d *Debugger) step() error {
	if d.VM.State == vm.StateHalted {
		// A freshly loaded VM is also Halted; only one that has executed
		// at least one cycle has actually stopped on HALT.
		if d.VM.Cycles > 0 {
			d.printf("program is halted\n")
			return nil
		}
		d.VM.State = vm.StateRunning
	}
	if err := d.VM.Step(); err != nil {
		return err
	}
	d.printf("pc=%d state=%s\n", d.VM.PC(), d.VM.State)
	return nil
}

// run executes Step in a loop, honoring breakpoints and breakOnHalt,
// the interactive counterpart to vm.VM.Run (which has no breakpoint
// hook of its own).
func (d *Debugger) run() error {
	if d.VM.State == vm.StateHalted {
		d.VM.State = vm.StateRunning
	}
	for d.VM.State == vm.StateRunning {
		if d.Breakpoints.At(d.VM.PC()) {
			d.printf("breakpoint hit at %d\n", d.VM.PC())
			return nil
		}
		if err := d.VM.Step(); err != nil {
			return err
		}
	}
	if d.VM.State == vm.StateHalted && d.breakOnHalt {
		d.printf("halted at pc=%d after %d cycles\n", d.VM.PC(), d.VM.Cycles)
	}
	return nil
}

func (d *Debugger) addBreakpoint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.Add(addr)
	d.printf("breakpoint %d set at %d\n", bp.ID, bp.Address)
	return nil
}

func (d *Debugger) clearBreakpoint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clear <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	if err := d.Breakpoints.Remove(addr); err != nil {
		return err
	}
	d.printf("breakpoint at %d cleared\n", addr)
	return nil
}

func parseAddress(s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), hexOrDec(s), 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", s, err)
	}
	if v >= isa.MemorySize {
		return 0, fmt.Errorf("address %d out of range [0,%d)", v, isa.MemorySize)
	}
	return byte(v), nil
}

func hexOrDec(s string) int {
	if strings.HasPrefix(s, "0x") {
		return 16
	}
	return 10
}

func (d *Debugger) printRegisters() {
	names := [isa.RegisterCount]string{"R0", "R1", "R2", "R3", "PC", "STATUS", "SP"}
	for i, name := range names {
		v, _ := d.VM.Reg(byte(i))
		d.printf("%-6s = %3d (0x%02X)\n", name, v, v)
	}
	d.printf("cycles = %d  state = %s\n", d.VM.Cycles, d.VM.State)
}

// printMemory dumps the whole 256-byte address space 16 bytes per row;
// the byte-ISA's memory is small enough that windowing, unlike the
// teacher's 4GB ARM address space, buys nothing.
func (d *Debugger) printMemory(args []string) error {
	highlight := -1
	if len(args) != 0 {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		highlight = int(addr)
	}
	const rowWidth = 16
	for row := 0; row < isa.MemorySize; row += rowWidth {
		marker := "  "
		if highlight >= row && highlight < row+rowWidth {
			marker = "->"
		}
		d.printf("%s%3d: ", marker, row)
		for col := 0; col < rowWidth; col++ {
			b, _ := d.VM.Memory.Get(row + col)
			d.printf("%02X ", b)
		}
		d.printf("\n")
	}
	return nil
}

func (d *Debugger) printHelp() {
	d.printf("commands: step, continue, break <addr>, clear <addr>, regs, mem [addr], reset, help\n")
}
