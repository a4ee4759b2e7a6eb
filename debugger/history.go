package debugger

import "sync"

// CommandHistory maintains a scrollback of executed debugger commands,
// grounded on the teacher's debugger/history.go Previous/Next cursor.
type CommandHistory struct {
	mu       sync.RWMutex
	commands []string
	maxSize  int
	position int
}

// NewCommandHistory creates a history capped at maxSize entries.
func NewCommandHistory(maxSize int) *CommandHistory {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &CommandHistory{commands: make([]string, 0, 64), maxSize: maxSize}
}

// Add records cmd, skipping empty input and immediate repeats.
func (h *CommandHistory) Add(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cmd == "" {
		return
	}
	if n := len(h.commands); n > 0 && h.commands[n-1] == cmd {
		h.position = n
		return
	}
	h.commands = append(h.commands, cmd)
	if len(h.commands) > h.maxSize {
		h.commands = h.commands[len(h.commands)-h.maxSize:]
	}
	h.position = len(h.commands)
}

// Previous moves the cursor back one entry and returns it.
func (h *CommandHistory) Previous() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.commands) == 0 || h.position == 0 {
		return ""
	}
	h.position--
	return h.commands[h.position]
}

// Next moves the cursor forward one entry and returns it, or "" past the end.
func (h *CommandHistory) Next() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.commands) == 0 || h.position >= len(h.commands)-1 {
		h.position = len(h.commands)
		return ""
	}
	h.position++
	return h.commands[h.position]
}
