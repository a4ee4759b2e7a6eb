package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI drives d from stdin/stdout, grounded on the teacher's
// debugger/interface.go RunCLI read-eval-print loop.
func RunCLI(d *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(aqavm-dbg) ")
		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())
		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := d.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("error: %v\n", err)
		}
		if output := d.GetOutput(); output != "" {
			fmt.Print(output)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

// RunTUI starts the full-screen debugger around d.
func RunTUI(d *Debugger) error {
	return NewTUI(d).Run()
}
