package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// terminalRegion is a Display writing one labeled panel to the terminal.
// Scrolling is a no-op: the terminal scrolls naturally, so the "scroll to
// end" hint costs nothing here.
type terminalRegion struct {
	mu     sync.Mutex
	label  string
	out    io.Writer
	active bool
	last   string
}

func newTerminalRegion(label string, out io.Writer) *terminalRegion {
	return &terminalRegion{label: label, out: out}
}

func (r *terminalRegion) SetText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if text == r.last {
		return
	}
	r.last = text
	marker := " "
	if r.active {
		marker = "*"
	}
	fmt.Fprintf(r.out, "%s[%s] %s\n", marker, r.label, strings.ReplaceAll(text, "\n", "\n   "))
}

func (r *terminalRegion) SetActive(active bool) {
	r.mu.Lock()
	r.active = active
	r.mu.Unlock()
}

func (r *terminalRegion) ScrollToEnd() {}

// terminalStatus is the status text sink.
type terminalStatus struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func newTerminalStatus(out io.Writer) *terminalStatus {
	return &terminalStatus{out: out}
}

func (s *terminalStatus) SetStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == s.last {
		return
	}
	s.last = text
	fmt.Fprintf(s.out, "-- %s\n", text)
}

// parseSettings turns "key=value key2=value2" command arguments into the
// form-style map the session configuration consumes.
func parseSettings(args []string) map[string]string {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			continue
		}
		values[key] = value
	}
	return values
}
