// Command aqavm assembles and runs byte-ISA programs: parse -> encode
// -> load -> step, with optional change-tracing, memory/register dumps,
// and an interactive debugger. Grounded on the teacher's main.go flag
// set and mode dispatch, trimmed to spec.md §6's CLI surface.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/aqavm/config"
	"github.com/example/aqavm/debugger"
	"github.com/example/aqavm/encoder"
	"github.com/example/aqavm/isa"
	"github.com/example/aqavm/parser"
	"github.com/example/aqavm/storage"
	"github.com/example/aqavm/vm"
)

func main() {
	var (
		verbose       = flag.Bool("v", false, "verbose system-register traces")
		registerTrace = flag.Bool("c", false, "register-change log")
		memoryTrace   = flag.Bool("m", false, "memory-change log")
		initialDump   = flag.Bool("i", false, "initial memory dump")
		finalDump     = flag.Bool("f", false, "final memory dump")
		regDump       = flag.Bool("r", false, "final register dump")
		memSize       = flag.Int("s", isa.MemorySize, "memory size (fixed 256 for the byte-ISA)")
		help          = flag.Bool("h", false, "show help")

		debugMode = flag.Bool("debug", false, "start in the command-line debugger")
		tuiMode   = flag.Bool("tui", false, "start in the TUI debugger")
		seed      = flag.Int64("seed", -1, "seed the RAND instruction deterministically")
	)

	flag.Parse()

	if *help || flag.NArg() == 0 {
		printHelp()
		if *help {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if *memSize != isa.MemorySize {
		fmt.Fprintf(os.Stderr, "warning: -s %d ignored; the byte-ISA's address space is fixed at %d bytes\n", *memSize, isa.MemorySize)
	}

	path := flag.Arg(0)
	source, err := os.ReadFile(path) // #nosec G304 -- user-specified source file path
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	program, errs := parser.NewParser(string(source), path).Parse()
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		os.Exit(1)
	}
	if len(errs.Warnings) > 0 && *verbose {
		fmt.Fprint(os.Stderr, errs.PrintWarnings())
	}

	image, err := encoder.Encode(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}

	machine := vm.NewVM()
	if *seed >= 0 {
		machine.Seed(uint64(*seed))
	}
	if err := machine.LoadProgram(image); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *initialDump {
		dumpMemory(os.Stdout, machine, "initial")
	}

	if *verbose {
		sysNames := map[int]string{isa.Counter: "PC", isa.Status: "STATUS", isa.SP: "SP"}
		detach := machine.Registers.Observe(storage.ObserverFunc(func(evt storage.ChangeEvent) {
			if name, ok := sysNames[evt.Index]; ok {
				fmt.Fprintf(os.Stdout, "%s <- %#02x\n", name, evt.Value)
			}
		}))
		defer detach()
	}
	if *registerTrace {
		detach := machine.Registers.Observe(storage.ObserverFunc(func(evt storage.ChangeEvent) {
			fmt.Fprintf(os.Stdout, "reg[%d] <- %#02x\n", evt.Index, evt.Value)
		}))
		defer detach()
	}
	if *memoryTrace {
		detach := machine.Memory.Observe(storage.ObserverFunc(func(evt storage.ChangeEvent) {
			fmt.Fprintf(os.Stdout, "mem[%d] <- %#02x\n", evt.Index, evt.Value)
		}))
		defer detach()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}

	if *debugMode || *tuiMode {
		dbg := debugger.New(machine, cfg)
		var runErr error
		if *tuiMode {
			runErr = debugger.RunTUI(dbg)
		} else {
			fmt.Printf("aqavm debugger - %s loaded, type \"help\" for commands\n", path)
			runErr = debugger.RunCLI(dbg)
		}
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "debugger error: %v\n", runErr)
			os.Exit(1)
		}
		return
	}

	if *verbose {
		fmt.Printf("running %s (entry pc=0)\n", path)
	}

	runErr := machine.Run()

	if *finalDump {
		dumpMemory(os.Stdout, machine, "final")
	}
	if *regDump {
		dumpRegisters(os.Stdout, machine)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", runErr)
		os.Exit(1)
	}
	if *verbose {
		fmt.Printf("halted after %d cycles\n", machine.Cycles)
	}
}

func dumpMemory(w *os.File, machine *vm.VM, label string) {
	fmt.Fprintf(w, "--- %s memory ---\n", label)
	const rowWidth = 16
	machine.Memory.All(func(index int, value byte) bool {
		if index%rowWidth == 0 {
			if index != 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%3d: ", index)
		}
		fmt.Fprintf(w, "%02X ", value)
		return true
	})
	fmt.Fprintln(w)
}

func dumpRegisters(w *os.File, machine *vm.VM) {
	fmt.Fprintln(w, "--- registers ---")
	names := [isa.RegisterCount]string{"R0", "R1", "R2", "R3", "PC", "STATUS", "SP"}
	for i, name := range names {
		v, _ := machine.Reg(byte(i))
		fmt.Fprintf(w, "%-6s = %#02x (%d)\n", name, v, v)
	}
}

func printHelp() {
	fmt.Printf(`aqavm - byte-ISA assembler and VM

Usage: aqavm [options] FILE

Options:
  -v          verbose system-register traces
  -c          register-change log
  -m          memory-change log
  -i          initial memory dump
  -f          final memory dump
  -r          final register dump
  -s SIZE     memory size (fixed %d for the byte-ISA)
  -h          show this help

  -debug      start in the command-line debugger
  -tui        start in the TUI debugger
  -seed N     seed the RAND instruction deterministically

Examples:
  aqavm program.s
  aqavm -v -r program.s
  aqavm -debug program.s
  aqavm -tui program.s
`, isa.MemorySize)
}
